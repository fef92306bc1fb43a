package therapycatalog

import (
	"errors"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

var (
	// ErrTherapyNotFound терапия не найдена в каталоге
	ErrTherapyNotFound = domain.NewError(domain.ErrNotFound, "therapy not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("therapy catalog client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от каталога
	ErrInvalidResponse = errors.New("therapy catalog client: invalid response")

	// ErrServiceUnavailable каталог недоступен или разомкнут circuit breaker
	ErrServiceUnavailable = domain.NewError(domain.ErrUnavailable, "therapy catalog unavailable")
)
