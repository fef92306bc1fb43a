package get_appointment_events

import (
	"context"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

type AppointmentService interface {
	GetEvents(ctx context.Context, id domain.AppointmentID, actor domain.Actor) ([]*domain.AppointmentEvent, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
