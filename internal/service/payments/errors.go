package payments

import (
	"errors"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

var (
	// ErrAppointmentNotFound запись не найдена по ID или платежной ссылке
	ErrAppointmentNotFound = domain.NewError(domain.ErrNotFound, "appointment not found")

	// ErrAccessDenied платежную ссылку привязывает пациент записи или администратор
	ErrAccessDenied = domain.NewError(domain.ErrForbidden, "access denied")

	// ErrInvalidPaymentRef пустая или слишком длинная ссылка
	ErrInvalidPaymentRef = domain.NewError(domain.ErrValidation, "payment reference must be 1-255 characters")

	// ErrPaymentRefAttached к записи уже привязан другой платеж, ожидающий оплаты
	ErrPaymentRefAttached = domain.NewError(domain.ErrConflict, "another payment is already pending for this appointment")

	// ErrUnknownEventType неизвестный тип webhook-события
	ErrUnknownEventType = domain.NewError(domain.ErrValidation, "unknown payment event type")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("payments.service: internal error")
)
