package cancel_appointment

import (
	"context"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/internal/service/appointments/models"
)

type AppointmentService interface {
	Cancel(ctx context.Context, id domain.AppointmentID, req *models.CancelRequest) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
