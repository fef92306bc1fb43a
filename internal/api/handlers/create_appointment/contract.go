package create_appointment

import (
	"context"

	"github.com/m04kA/SMC-TherapyBookingService/internal/service/appointments/models"
	bookAppointment "github.com/m04kA/SMC-TherapyBookingService/internal/usecase/book_appointment"
)

type BookAppointmentUseCase interface {
	Execute(ctx context.Context, req *bookAppointment.Request) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
