package lock

import "github.com/m04kA/SMC-TherapyBookingService/internal/domain"

var (
	// ErrLockTimeout блокировку не удалось получить за отведенное время
	ErrLockTimeout = domain.NewError(domain.ErrUnavailable, "schedule is busy, try again later")
	// ErrLockStore хранилище блокировок недоступно
	ErrLockStore = domain.NewError(domain.ErrUnavailable, "lock store unavailable")
)
