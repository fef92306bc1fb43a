package domain

import "time"

// AppointmentEvent запись журнала изменений записи на приём
type AppointmentEvent struct {
	ID                EventID
	AppointmentID     AppointmentID
	Event             string
	FromStatus        *AppointmentStatus
	ToStatus          AppointmentStatus
	FromPaymentStatus *PaymentStatus
	ToPaymentStatus   PaymentStatus
	ActorID           *UserID
	ActorRole         Role
	CreatedAt         time.Time
}

// NewAppointmentEvent строит событие перехода из состояния before в after
func NewAppointmentEvent(event string, before *Appointment, after *Appointment, actor Actor) *AppointmentEvent {
	e := &AppointmentEvent{
		ID:              NewEventID(),
		AppointmentID:   after.ID,
		Event:           event,
		ToStatus:        after.Status,
		ToPaymentStatus: after.PaymentStatus,
		ActorRole:       actor.Role,
	}
	if before != nil {
		status := before.Status
		payment := before.PaymentStatus
		e.FromStatus = &status
		e.FromPaymentStatus = &payment
	}
	if !actor.ID.IsZero() {
		id := actor.ID
		e.ActorID = &id
	}
	return e
}
