package book_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	FindByDoctorAndDate(ctx context.Context, doctorID domain.UserID, date time.Time, includeInactive bool) ([]*domain.Appointment, error)
	LogEvent(ctx context.Context, e *domain.AppointmentEvent) error
}

// WorkingHoursProvider шаблон рабочих часов врача (с сеткой по умолчанию)
type WorkingHoursProvider interface {
	GetWorkingHours(ctx context.Context, doctorID domain.UserID) (*domain.WorkingHours, error)
}

// IdentityClient интерфейс клиента сервиса идентификации
type IdentityClient interface {
	GetUser(ctx context.Context, id domain.UserID) (*domain.User, error)
}

// TherapyCatalogClient интерфейс клиента каталога терапий
type TherapyCatalogClient interface {
	GetTherapy(ctx context.Context, id domain.TherapyID) (*domain.Therapy, error)
}

// Locker блокировка календаря врача на дату
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчик бронирований
type Metrics interface {
	IncBooking(outcome string)
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
