package lifecycle

import (
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

// authorize матрица прав: кто может инициировать событие над конкретной записью
func authorize(a *domain.Appointment, event Event, actor domain.Actor) error {
	var allowed bool

	switch event {
	case EventCancel:
		allowed = actor.IsAdmin() ||
			(actor.Role == domain.RolePatient && actor.ID == a.PatientID) ||
			(actor.Role == domain.RoleDoctor && actor.ID == a.DoctorID)
	case EventForceCancel:
		allowed = actor.IsAdmin()
	case EventStart, EventComplete:
		allowed = actor.Role == domain.RoleDoctor && actor.ID == a.DoctorID
	case EventMarkNoShow:
		allowed = actor.IsAdmin() || (actor.Role == domain.RoleDoctor && actor.ID == a.DoctorID)
	case EventConfirm, EventPaymentSucceeded, EventPaymentFailed, EventRefundIssued:
		allowed = actor.IsAdmin() || actor.Role == domain.RoleSystem
	default:
		return ErrUnknownEvent
	}

	if !allowed {
		return ErrForbidden
	}
	return nil
}

// CanView проверяет доступ на чтение записи
func CanView(a *domain.Appointment, actor domain.Actor) bool {
	return actor.IsAdmin() || a.IsParticipant(actor.ID)
}

// IsCancellableStatus статусы, из которых доступна обычная отмена
func IsCancellableStatus(s domain.AppointmentStatus) bool {
	return s == domain.StatusScheduled || s == domain.StatusConfirmed
}

// CanBeCancelled до начала строго больше 24 часов и статус допускает отмену
func CanBeCancelled(a *domain.Appointment, now time.Time, loc *time.Location) bool {
	if !IsCancellableStatus(a.Status) {
		return false
	}
	return a.StartsAt(loc).Sub(now) > domain.CancellationWindow
}

// CanBeRescheduled перенос доступен до подтверждения и строго раньше чем за 2 часа
func CanBeRescheduled(a *domain.Appointment, now time.Time, loc *time.Location) bool {
	if a.Status != domain.StatusScheduled {
		return false
	}
	return a.StartsAt(loc).Sub(now) > domain.RescheduleWindow
}

// CanBeRated оценку можно оставить только после завершения сессии
func CanBeRated(a *domain.Appointment) bool {
	return a.Status == domain.StatusCompleted
}

// Rate сохраняет оценку участника. Пациент оценивает сессию, врач оценивает пациента.
// Повторная оценка перезаписывает предыдущую.
func Rate(appt domain.Appointment, actor domain.Actor, rating int, feedback *string, now time.Time) (domain.Appointment, error) {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return domain.Appointment{}, ErrInvalidRating
	}
	if feedback != nil && len([]rune(*feedback)) > domain.MaxFeedbackLength {
		return domain.Appointment{}, ErrFeedbackTooLong
	}

	isPatient := actor.Role == domain.RolePatient && actor.ID == appt.PatientID
	isDoctor := actor.Role == domain.RoleDoctor && actor.ID == appt.DoctorID
	if !isPatient && !isDoctor {
		return domain.Appointment{}, ErrForbidden
	}
	if !CanBeRated(&appt) {
		return domain.Appointment{}, ErrNotRateable
	}

	next := appt
	value := rating
	var text *string
	if feedback != nil {
		f := *feedback
		text = &f
	}
	if isPatient {
		next.Rating.PatientRating = &value
		next.Rating.PatientFeedback = text
	} else {
		next.Rating.DoctorRating = &value
		next.Rating.DoctorFeedback = text
	}
	at := now
	next.Rating.RatedAt = &at
	next.UpdatedAt = now

	return next, nil
}

// Reschedule закрывает запись при переносе: участник или администратор,
// статус scheduled и до начала больше 2 часов. Окно отмены не применяется.
func Reschedule(appt domain.Appointment, actor domain.Actor, to domain.AppointmentID, now time.Time, loc *time.Location) (domain.Appointment, error) {
	if !actor.IsAdmin() && !appt.IsParticipant(actor.ID) {
		return domain.Appointment{}, ErrForbidden
	}
	if appt.IsTerminal() {
		return domain.Appointment{}, ErrTerminalState
	}
	if !CanBeRescheduled(&appt, now, loc) {
		return domain.Appointment{}, ErrRescheduleWindow
	}

	next := appt
	markCancelled(&next, actor.Role, domain.ReasonRescheduled, now)
	target := to
	next.RescheduledTo = &target
	next.UpdatedAt = now

	return next, nil
}

// EventForStatus сопоставляет запрошенный статус событию.
// scheduled и confirmed вручную не выставляются: подтверждение приходит через оплату.
func EventForStatus(status domain.AppointmentStatus, actor domain.Actor) (Event, error) {
	switch status {
	case domain.StatusInProgress:
		return EventStart, nil
	case domain.StatusCompleted:
		return EventComplete, nil
	case domain.StatusNoShow:
		return EventMarkNoShow, nil
	case domain.StatusCancelled:
		if actor.IsAdmin() {
			return EventForceCancel, nil
		}
		return EventCancel, nil
	case domain.StatusScheduled, domain.StatusConfirmed:
		return "", ErrStatusNotSettable
	}
	return "", ErrUnknownStatus
}
