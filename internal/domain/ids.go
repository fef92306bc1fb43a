package domain

import "github.com/google/uuid"

// UserID идентификатор пользователя (пациент, врач, администратор)
type UserID struct{ uuid.UUID }

// TherapyID идентификатор терапии в каталоге
type TherapyID struct{ uuid.UUID }

// AppointmentID идентификатор записи на приём
type AppointmentID struct{ uuid.UUID }

// EventID идентификатор записи журнала событий
type EventID struct{ uuid.UUID }

func NewAppointmentID() AppointmentID { return AppointmentID{uuid.New()} }

func NewEventID() EventID { return EventID{uuid.New()} }

func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	return UserID{id}, err
}

func ParseTherapyID(s string) (TherapyID, error) {
	id, err := uuid.Parse(s)
	return TherapyID{id}, err
}

func ParseAppointmentID(s string) (AppointmentID, error) {
	id, err := uuid.Parse(s)
	return AppointmentID{id}, err
}

func (id UserID) IsZero() bool        { return id.UUID == uuid.Nil }
func (id TherapyID) IsZero() bool     { return id.UUID == uuid.Nil }
func (id AppointmentID) IsZero() bool { return id.UUID == uuid.Nil }
