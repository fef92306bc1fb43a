package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id domain.AppointmentID) (*domain.Appointment, error)
	GetByIDForUpdate(ctx context.Context, id domain.AppointmentID) (*domain.Appointment, error)
	GetByPatientID(ctx context.Context, patientID domain.UserID, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	GetByDoctorID(ctx context.Context, doctorID domain.UserID, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	Update(ctx context.Context, a *domain.Appointment, expectedStatus domain.AppointmentStatus, expectedPayment domain.PaymentStatus) error
	LogEvent(ctx context.Context, e *domain.AppointmentEvent) error
	GetEvents(ctx context.Context, appointmentID domain.AppointmentID) ([]*domain.AppointmentEvent, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчики переходов
type Metrics interface {
	IncTransition(event, outcome string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
