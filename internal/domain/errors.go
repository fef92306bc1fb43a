package domain

import "errors"

// Виды доменных ошибок. Конкретные ошибки пакетов оборачивают один из них,
// так что слой API сопоставляет HTTP-статус через errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnavailable       = errors.New("unavailable")
)

// Error доменная ошибка с сообщением для пользователя
type Error struct {
	Kind    error
	Message string
}

// NewError создает доменную ошибку указанного вида
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// KindOf возвращает вид доменной ошибки или nil, если ошибка не доменная
func KindOf(err error) error {
	for _, kind := range []error{
		ErrValidation,
		ErrNotFound,
		ErrForbidden,
		ErrConflict,
		ErrInvalidTransition,
		ErrUnavailable,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// PublicMessage возвращает сообщение для пользователя из цепочки ошибок
func PublicMessage(err error) (string, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Message, true
	}
	return "", false
}
