package models

import "github.com/m04kA/SMC-TherapyBookingService/internal/domain"

var (
	// ErrInvalidStatus возвращается при некорректном статусе в фильтре
	ErrInvalidStatus = domain.NewError(domain.ErrValidation, "invalid appointment status")
)
