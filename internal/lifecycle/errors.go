package lifecycle

import "github.com/m04kA/SMC-TherapyBookingService/internal/domain"

var (
	// ErrTerminalState запись уже в финальном статусе
	ErrTerminalState = domain.NewError(domain.ErrInvalidTransition, "appointment is already in a final state")

	// ErrCancellationWindow до начала осталось 24 часа или меньше
	ErrCancellationWindow = domain.NewError(domain.ErrInvalidTransition, "cannot cancel within 24 hours of appointment")

	// ErrRescheduleWindow до начала осталось 2 часа или меньше, либо запись уже подтверждена
	ErrRescheduleWindow = domain.NewError(domain.ErrInvalidTransition, "cannot reschedule within 2 hours of appointment or after confirmation")

	// ErrNotCancellable запись в текущем статусе нельзя отменить
	ErrNotCancellable = domain.NewError(domain.ErrInvalidTransition, "appointment cannot be cancelled in its current status")

	// ErrNotConfirmed сессию нельзя начать без подтверждения оплатой
	ErrNotConfirmed = domain.NewError(domain.ErrInvalidTransition, "appointment must be confirmed before the session starts")

	// ErrAlreadyConfirmed запись уже подтверждена
	ErrAlreadyConfirmed = domain.NewError(domain.ErrInvalidTransition, "appointment is already confirmed")

	// ErrNotInProgress завершить можно только идущую сессию
	ErrNotInProgress = domain.NewError(domain.ErrInvalidTransition, "appointment must be in progress to be completed")

	// ErrAlreadyInProgress сессия уже идет
	ErrAlreadyInProgress = domain.NewError(domain.ErrInvalidTransition, "appointment is already in progress")

	// ErrNoShowNotAllowed неявку можно отметить только до начала сессии
	ErrNoShowNotAllowed = domain.NewError(domain.ErrInvalidTransition, "only scheduled or confirmed appointments can be marked as no-show")

	// ErrPaymentRequired подтверждение возможно только после оплаты
	ErrPaymentRequired = domain.NewError(domain.ErrInvalidTransition, "appointment is confirmed only after successful payment")

	// ErrAlreadyPaid оплата уже получена
	ErrAlreadyPaid = domain.NewError(domain.ErrInvalidTransition, "payment is already captured")

	// ErrAlreadyFailed оплата уже отмечена как неуспешная
	ErrAlreadyFailed = domain.NewError(domain.ErrInvalidTransition, "payment is already marked as failed")

	// ErrPaymentNotPending оплата не ожидается
	ErrPaymentNotPending = domain.NewError(domain.ErrInvalidTransition, "payment is not pending")

	// ErrAlreadyRefunded возврат уже выполнен
	ErrAlreadyRefunded = domain.NewError(domain.ErrInvalidTransition, "payment is already refunded")

	// ErrPaymentNotPaid возврат возможен только для оплаченной записи
	ErrPaymentNotPaid = domain.NewError(domain.ErrInvalidTransition, "only paid appointments can be refunded")

	// ErrNotRefundable состоявшуюся или пропущенную сессию вернуть нельзя
	ErrNotRefundable = domain.NewError(domain.ErrInvalidTransition, "completed or missed sessions cannot be refunded")

	// ErrNotRateable оценка доступна только после завершения сессии
	ErrNotRateable = domain.NewError(domain.ErrInvalidTransition, "only completed appointments can be rated")

	// ErrInvalidRating оценка вне диапазона 1..5
	ErrInvalidRating = domain.NewError(domain.ErrValidation, "rating must be an integer between 1 and 5")

	// ErrFeedbackTooLong слишком длинный отзыв
	ErrFeedbackTooLong = domain.NewError(domain.ErrValidation, "feedback cannot exceed 500 characters")

	// ErrReasonTooLong слишком длинная причина отмены
	ErrReasonTooLong = domain.NewError(domain.ErrValidation, "cancellation reason cannot exceed 500 characters")

	// ErrNotesTooLong слишком длинные заметки
	ErrNotesTooLong = domain.NewError(domain.ErrValidation, "notes cannot exceed 1000 characters")

	// ErrForbidden инициатор не может выполнить действие над записью
	ErrForbidden = domain.NewError(domain.ErrForbidden, "not allowed to perform this action on the appointment")

	// ErrUnknownEvent неизвестное событие
	ErrUnknownEvent = domain.NewError(domain.ErrValidation, "unknown appointment event")

	// ErrUnknownStatus неизвестный статус
	ErrUnknownStatus = domain.NewError(domain.ErrValidation, "unknown appointment status")

	// ErrStatusNotSettable статус нельзя выставить вручную
	ErrStatusNotSettable = domain.NewError(domain.ErrInvalidTransition, "status cannot be set directly")
)
