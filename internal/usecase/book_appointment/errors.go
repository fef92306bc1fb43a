package book_appointment

import (
	"errors"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = domain.NewError(domain.ErrValidation, "invalid booking request")

	// ErrPatientNotAllowed записываться может только активный пациент
	ErrPatientNotAllowed = domain.NewError(domain.ErrForbidden, "only active patients can book appointments")

	// ErrDoctorNotFound врач не найден или неактивен
	ErrDoctorNotFound = domain.NewError(domain.ErrNotFound, "doctor not found")

	// ErrTherapyNotFound терапия не найдена
	ErrTherapyNotFound = domain.NewError(domain.ErrNotFound, "therapy not found")

	// ErrTherapyInactive терапия снята с публикации
	ErrTherapyInactive = domain.NewError(domain.ErrValidation, "therapy is not active")

	// ErrTherapyDoctorMismatch терапию ведет другой врач
	ErrTherapyDoctorMismatch = domain.NewError(domain.ErrValidation, "therapy does not belong to the doctor")

	// ErrSessionTypeNotOffered формат сессии недоступен для терапии
	ErrSessionTypeNotOffered = domain.NewError(domain.ErrValidation, "session type is not offered by the therapy")

	// ErrStartInPast время начала уже прошло
	ErrStartInPast = domain.NewError(domain.ErrValidation, "appointment must start in the future")

	// ErrOutsideWorkingHours интервал вне рабочих часов врача
	ErrOutsideWorkingHours = domain.NewError(domain.ErrValidation, "requested time is outside working hours")

	// ErrSlotNotAvailable интервал пересекается с другой записью врача
	ErrSlotNotAvailable = domain.NewError(domain.ErrConflict, "slot no longer available")

	// ErrScheduleBusy транзакция не прошла после всех повторов
	ErrScheduleBusy = domain.NewError(domain.ErrUnavailable, "schedule is busy, try again later")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("book_appointment: internal error")
)

// Исходы бронирования для метрик
const (
	outcomeCreated     = "created"
	outcomeConflict    = "conflict"
	outcomeRejected    = "rejected"
	outcomeUnavailable = "unavailable"
	outcomeFailed      = "failed"
)
