package schedule

import (
	"errors"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

var (
	// ErrAccessDenied шаблон может менять только сам врач или администратор
	ErrAccessDenied = domain.NewError(domain.ErrForbidden, "only the doctor or an admin can change working hours")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("schedule.service: internal error")
)
