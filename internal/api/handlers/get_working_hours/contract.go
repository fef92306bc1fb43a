package get_working_hours

import (
	"context"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

type ScheduleService interface {
	GetWorkingHours(ctx context.Context, doctorID domain.UserID) (*domain.WorkingHours, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
