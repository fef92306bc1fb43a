package reschedule_appointment

import (
	"errors"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = domain.NewError(domain.ErrValidation, "invalid reschedule request")

	// ErrAppointmentNotFound запись не найдена или недоступна инициатору
	ErrAppointmentNotFound = domain.NewError(domain.ErrNotFound, "appointment not found")

	// ErrStartInPast новое время уже прошло
	ErrStartInPast = domain.NewError(domain.ErrValidation, "appointment must start in the future")

	// ErrSameTime новое время совпадает с текущим
	ErrSameTime = domain.NewError(domain.ErrValidation, "new time matches the current appointment time")

	// ErrOutsideWorkingHours интервал вне рабочих часов врача
	ErrOutsideWorkingHours = domain.NewError(domain.ErrValidation, "requested time is outside working hours")

	// ErrSlotNotAvailable интервал пересекается с другой записью врача
	ErrSlotNotAvailable = domain.NewError(domain.ErrConflict, "slot no longer available")

	// ErrScheduleBusy транзакция не прошла после всех повторов
	ErrScheduleBusy = domain.NewError(domain.ErrUnavailable, "schedule is busy, try again later")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_appointment: internal error")
)

// Исходы переноса для метрик
const (
	outcomeApplied  = "applied"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)
