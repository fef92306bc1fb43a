package payment_webhook

import (
	"context"

	"github.com/m04kA/SMC-TherapyBookingService/internal/service/appointments/models"
)

type PaymentService interface {
	HandleEvent(ctx context.Context, eventType, ref string) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
