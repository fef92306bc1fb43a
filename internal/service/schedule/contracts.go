package schedule

import (
	"context"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

// WorkingHoursRepository интерфейс репозитория шаблонов рабочих часов
type WorkingHoursRepository interface {
	GetByDoctor(ctx context.Context, doctorID domain.UserID) (*domain.WorkingHours, error)
	Replace(ctx context.Context, wh *domain.WorkingHours) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
