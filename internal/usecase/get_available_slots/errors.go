package get_available_slots

import (
	"errors"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

var (
	// ErrDoctorNotFound возвращается, когда врач не найден или неактивен
	ErrDoctorNotFound = domain.NewError(domain.ErrNotFound, "doctor not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = domain.NewError(domain.ErrValidation, "invalid slots request")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
