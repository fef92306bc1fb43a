package appointments

import (
	"errors"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

var (
	// ErrAppointmentNotFound запись не найдена
	ErrAppointmentNotFound = domain.NewError(domain.ErrNotFound, "appointment not found")

	// ErrAccessDenied у инициатора нет доступа к записи или списку
	ErrAccessDenied = domain.NewError(domain.ErrForbidden, "access denied")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("appointments.service: internal error")
)

// Исходы переходов для метрик
const (
	outcomeApplied  = "applied"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)
