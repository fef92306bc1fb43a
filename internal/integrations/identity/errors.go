package identity

import (
	"errors"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

var (
	// ErrUserNotFound пользователь не найден в сервисе идентификации
	ErrUserNotFound = errors.New("identity client: user not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("identity client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("identity client: invalid response")

	// ErrServiceUnavailable сервис недоступен или разомкнут circuit breaker
	ErrServiceUnavailable = domain.NewError(domain.ErrUnavailable, "identity service unavailable")
)
