package domain

import (
	"fmt"
	"slices"
	"time"
)

// AppointmentStatus статус записи на приём
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
	StatusNoShow     AppointmentStatus = "no_show"
)

// IsValid проверяет, что статус известен
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// IsTerminal возвращает true для статусов без дальнейших переходов
func (s AppointmentStatus) IsTerminal() bool {
	return slices.Contains(TerminalStatuses, s)
}

// OccupiesCalendar возвращает true, если запись в этом статусе занимает время врача
func (s AppointmentStatus) OccupiesCalendar() bool {
	return !slices.Contains(InactiveStatuses, s)
}

// PaymentStatus статус оплаты
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCancelled PaymentStatus = "cancelled"
)

// SessionType формат сессии
type SessionType string

const (
	SessionOnline   SessionType = "online"
	SessionInPerson SessionType = "in_person"
)

func (s SessionType) IsValid() bool {
	return s == SessionOnline || s == SessionInPerson
}

// Rating оценки пациента и врача после сессии
type Rating struct {
	PatientRating   *int
	PatientFeedback *string
	DoctorRating    *int
	DoctorFeedback  *string
	RatedAt         *time.Time
}

// Appointment запись на приём.
// Изменяется только через переходы пакета lifecycle.
type Appointment struct {
	ID        AppointmentID
	PatientID UserID
	DoctorID  UserID
	TherapyID TherapyID

	Range           TimeRange
	DurationMinutes int
	Status          AppointmentStatus
	SessionType     SessionType

	// Снимок цены терапии на момент бронирования
	Price    float64
	Currency string

	PaymentStatus PaymentStatus
	PaymentRef    *string
	PaymentMethod *string

	Notes        *string
	PatientNotes *string
	DoctorNotes  *string

	CancellationReason *string
	CancelledBy        *Role
	CancelledAt        *time.Time

	Rating Rating

	RescheduledFrom *AppointmentID
	RescheduledTo   *AppointmentID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OccupiesCalendar возвращает true, если запись занимает время в календаре врача
func (a *Appointment) OccupiesCalendar() bool {
	return a.Status.OccupiesCalendar()
}

// IsTerminal возвращает true, если запись в финальном статусе
func (a *Appointment) IsTerminal() bool {
	return a.Status.IsTerminal()
}

// StartsAt момент начала приёма
func (a *Appointment) StartsAt(loc *time.Location) time.Time {
	return a.Range.StartInstant(loc)
}

// IsParticipant возвращает true для пациента или врача этой записи
func (a *Appointment) IsParticipant(id UserID) bool {
	return a.PatientID == id || a.DoctorID == id
}

// ValidateTiming проверяет интервал и допуск длительности
func (a *Appointment) ValidateTiming() error {
	return ValidateTiming(a.Range, a.DurationMinutes)
}

// ValidateTiming проверяет, что end > start и длительность совпадает с интервалом с допуском 5 минут
func ValidateTiming(r TimeRange, durationMinutes int) error {
	if !r.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidTimeRange, r)
	}
	diff := durationMinutes - r.DurationMinutes()
	if diff < 0 {
		diff = -diff
	}
	if diff > DurationToleranceMinutes {
		return fmt.Errorf("%w: duration %d, range %d minutes", ErrDurationMismatch, durationMinutes, r.DurationMinutes())
	}
	return nil
}

// ErrDurationMismatch длительность не совпадает с интервалом
var ErrDurationMismatch = NewError(ErrValidation, "duration does not match the time range")
