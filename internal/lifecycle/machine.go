package lifecycle

import (
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

// Event событие жизненного цикла записи
type Event string

const (
	EventConfirm          Event = "confirm"
	EventCancel           Event = "cancel"
	EventForceCancel      Event = "force_cancel"
	EventStart            Event = "start"
	EventComplete         Event = "complete"
	EventMarkNoShow       Event = "mark_no_show"
	EventPaymentSucceeded Event = "payment_succeeded"
	EventPaymentFailed    Event = "payment_failed"
	EventRefundIssued     Event = "refund_issued"
)

// IsPayment возвращает true для событий платежного провайдера
func (e Event) IsPayment() bool {
	switch e {
	case EventPaymentSucceeded, EventPaymentFailed, EventRefundIssued:
		return true
	}
	return false
}

func (e Event) String() string {
	return string(e)
}

// Command запрос на переход
type Command struct {
	Event Event
	Actor domain.Actor
	// Now текущий момент; окна отмены считаются от него
	Now time.Time
	// Location часовой пояс, в котором заданы дата и время записи
	Location *time.Location
	// Reason причина отмены, необязательна
	Reason string
	// DoctorNotes заметки врача, сохраняются при переходе, если заданы
	DoctorNotes *string
}

// Apply применяет событие к записи и возвращает новое состояние.
// Исходная запись не изменяется. При ошибке возвращается нулевое значение.
func Apply(appt domain.Appointment, cmd Command) (domain.Appointment, error) {
	if err := validateCommand(cmd); err != nil {
		return domain.Appointment{}, err
	}
	// права проверяются первыми: посторонний не должен узнать статус записи
	if err := authorize(&appt, cmd.Event, cmd.Actor); err != nil {
		return domain.Appointment{}, err
	}
	if err := checkTerminal(&appt, cmd.Event); err != nil {
		return domain.Appointment{}, err
	}

	next := appt
	var err error

	switch cmd.Event {
	case EventConfirm:
		err = confirm(&next)
	case EventCancel:
		err = cancel(&next, cmd)
	case EventForceCancel:
		markCancelled(&next, cmd.Actor.Role, cmd.Reason, cmd.Now)
	case EventStart:
		err = start(&next)
	case EventComplete:
		err = complete(&next)
	case EventMarkNoShow:
		err = markNoShow(&next)
	case EventPaymentSucceeded:
		err = paymentSucceeded(&next)
	case EventPaymentFailed:
		err = paymentFailed(&next)
	case EventRefundIssued:
		err = refundIssued(&next, cmd.Now)
	default:
		err = ErrUnknownEvent
	}
	if err != nil {
		return domain.Appointment{}, err
	}

	if cmd.DoctorNotes != nil && !cmd.Event.IsPayment() {
		notes := *cmd.DoctorNotes
		next.DoctorNotes = &notes
	}
	next.UpdatedAt = cmd.Now

	return next, nil
}

func validateCommand(cmd Command) error {
	if len([]rune(cmd.Reason)) > domain.MaxCancellationReasonLen {
		return ErrReasonTooLong
	}
	if cmd.DoctorNotes != nil && len([]rune(*cmd.DoctorNotes)) > domain.MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// checkTerminal финальные статусы не принимают событий.
// Исключение: возврат оплаты по уже отмененной записи.
func checkTerminal(appt *domain.Appointment, event Event) error {
	if !appt.IsTerminal() {
		return nil
	}
	if event == EventRefundIssued && appt.Status == domain.StatusCancelled {
		return nil
	}
	if event == EventRefundIssued {
		return ErrNotRefundable
	}
	return ErrTerminalState
}

func confirm(a *domain.Appointment) error {
	switch {
	case a.Status == domain.StatusConfirmed:
		return ErrAlreadyConfirmed
	case a.Status != domain.StatusScheduled:
		return ErrStatusNotSettable
	case a.PaymentStatus != domain.PaymentPaid:
		return ErrPaymentRequired
	}
	a.Status = domain.StatusConfirmed
	return nil
}

func cancel(a *domain.Appointment, cmd Command) error {
	if !IsCancellableStatus(a.Status) {
		return ErrNotCancellable
	}
	if !CanBeCancelled(a, cmd.Now, cmd.Location) {
		return ErrCancellationWindow
	}
	markCancelled(a, cmd.Actor.Role, cmd.Reason, cmd.Now)
	return nil
}

// markCancelled переводит запись в cancelled.
// Неоплаченная оплата отменяется, полученная остается до события возврата.
func markCancelled(a *domain.Appointment, by domain.Role, reason string, now time.Time) {
	a.Status = domain.StatusCancelled
	a.CancelledBy = &by
	at := now
	a.CancelledAt = &at
	if reason != "" {
		a.CancellationReason = &reason
	} else {
		a.CancellationReason = nil
	}
	if a.PaymentStatus == domain.PaymentPending || a.PaymentStatus == domain.PaymentFailed {
		a.PaymentStatus = domain.PaymentCancelled
	}
}

func start(a *domain.Appointment) error {
	switch a.Status {
	case domain.StatusConfirmed:
		a.Status = domain.StatusInProgress
		return nil
	case domain.StatusInProgress:
		return ErrAlreadyInProgress
	}
	return ErrNotConfirmed
}

func complete(a *domain.Appointment) error {
	if a.Status != domain.StatusInProgress {
		return ErrNotInProgress
	}
	a.Status = domain.StatusCompleted
	return nil
}

func markNoShow(a *domain.Appointment) error {
	if a.Status != domain.StatusScheduled && a.Status != domain.StatusConfirmed {
		return ErrNoShowNotAllowed
	}
	a.Status = domain.StatusNoShow
	return nil
}

func paymentSucceeded(a *domain.Appointment) error {
	switch a.PaymentStatus {
	case domain.PaymentPending, domain.PaymentFailed:
	case domain.PaymentPaid:
		return ErrAlreadyPaid
	default:
		return ErrPaymentNotPending
	}
	a.PaymentStatus = domain.PaymentPaid
	if a.Status == domain.StatusScheduled {
		a.Status = domain.StatusConfirmed
	}
	return nil
}

func paymentFailed(a *domain.Appointment) error {
	switch a.PaymentStatus {
	case domain.PaymentPending:
		a.PaymentStatus = domain.PaymentFailed
		return nil
	case domain.PaymentFailed:
		return ErrAlreadyFailed
	}
	return ErrPaymentNotPending
}

func refundIssued(a *domain.Appointment, now time.Time) error {
	switch a.PaymentStatus {
	case domain.PaymentPaid:
	case domain.PaymentRefunded:
		return ErrAlreadyRefunded
	default:
		return ErrPaymentNotPaid
	}
	if a.Status == domain.StatusCompleted || a.Status == domain.StatusNoShow {
		return ErrNotRefundable
	}
	if a.Status != domain.StatusCancelled {
		markCancelled(a, domain.RoleAdmin, domain.ReasonRefundedByAdmin, now)
	}
	a.PaymentStatus = domain.PaymentRefunded
	return nil
}
