package payments

import (
	"context"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/internal/lifecycle"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id domain.AppointmentID) (*domain.Appointment, error)
	GetByPaymentRef(ctx context.Context, ref string) (*domain.Appointment, error)
	SetPaymentRef(ctx context.Context, id domain.AppointmentID, ref string, method *string) error
}

// Transitioner применяет события жизненного цикла к записи
type Transitioner interface {
	Transition(ctx context.Context, id domain.AppointmentID, cmd lifecycle.Command) (*domain.Appointment, error)
}

// Metrics счетчики webhook-событий
type Metrics interface {
	IncWebhookEvent(eventType, outcome string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
