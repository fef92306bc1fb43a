package attach_payment

import (
	"context"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/internal/service/appointments/models"
)

type PaymentService interface {
	AttachPaymentRef(ctx context.Context, id domain.AppointmentID, actor domain.Actor, ref string, method *string) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
