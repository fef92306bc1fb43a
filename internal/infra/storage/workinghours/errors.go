package workinghours

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/internal/infra/storage/pgerr"
)

var (
	// ErrWorkingHoursNotFound у врача нет сохраненного шаблона
	ErrWorkingHoursNotFound = errors.New("workinghours.repository: working hours not found")

	// ErrStoreUnavailable база данных недоступна
	ErrStoreUnavailable = domain.NewError(domain.ErrUnavailable, "working hours store unavailable")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("workinghours.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("workinghours.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("workinghours.repository: failed to scan row")
)

func classify(op string, err error) error {
	if pgerr.IsUnavailable(err) {
		return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrExecQuery, op, err)
}
