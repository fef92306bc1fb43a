package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	// FindByDoctorAndDate получает записи врача на дату; includeInactive=false оставляет только занимающие время
	FindByDoctorAndDate(ctx context.Context, doctorID domain.UserID, date time.Time, includeInactive bool) ([]*domain.Appointment, error)
}

// WorkingHoursProvider возвращает шаблон рабочих часов врача (сохраненный или по умолчанию)
type WorkingHoursProvider interface {
	GetWorkingHours(ctx context.Context, doctorID domain.UserID) (*domain.WorkingHours, error)
}

// IdentityClient интерфейс клиента сервиса пользователей
type IdentityClient interface {
	GetUser(ctx context.Context, id domain.UserID) (*domain.User, error)
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
