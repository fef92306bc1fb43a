package appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/internal/infra/storage/pgerr"
)

const paymentRefConstraint = "appointments_payment_ref_key"

var (
	// ErrAppointmentNotFound запись не найдена
	ErrAppointmentNotFound = domain.NewError(domain.ErrNotFound, "appointment not found")

	// ErrSlotTaken сработало ограничение на пересечение записей врача
	ErrSlotTaken = domain.NewError(domain.ErrConflict, "slot no longer available")

	// ErrConcurrentUpdate запись изменилась между чтением и обновлением
	ErrConcurrentUpdate = domain.NewError(domain.ErrConflict, "appointment was modified concurrently")

	// ErrPaymentRefTaken платежная ссылка уже привязана к другой записи
	ErrPaymentRefTaken = domain.NewError(domain.ErrConflict, "payment reference is already in use")

	// ErrStoreUnavailable база данных недоступна
	ErrStoreUnavailable = domain.NewError(domain.ErrUnavailable, "appointment store unavailable")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)

// classify сопоставляет ошибку драйвера доменной.
// Исходная ошибка остается в цепочке: txmanager по ней определяет конфликт сериализации.
func classify(op string, err error) error {
	switch {
	case pgerr.IsExclusionViolation(err):
		return fmt.Errorf("%w: %s: %w", ErrSlotTaken, op, err)
	case pgerr.IsUniqueViolation(err, paymentRefConstraint):
		return fmt.Errorf("%w: %s: %w", ErrPaymentRefTaken, op, err)
	case pgerr.IsUnavailable(err):
		return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrExecQuery, op, err)
}
