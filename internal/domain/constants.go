package domain

import "time"

// Окна политики отмены и переноса
const (
	CancellationWindow = 24 * time.Hour
	RescheduleWindow   = 2 * time.Hour
)

// Ограничения записи
const (
	DurationToleranceMinutes = 5
	MinDurationMinutes       = 15
	MaxDurationMinutes       = 300
	MaxNotesLength           = 1000
	MaxFeedbackLength        = 500
	MaxCancellationReasonLen = 500
	MinRating                = 1
	MaxRating                = 5
)

// Параметры генерации слотов
const (
	DefaultSlotGranularityMinutes = 60
	MinSlotGranularityMinutes     = 5
	MaxSlotGranularityMinutes     = 480
	DefaultWorkdayStart           = "09:00"
	DefaultWorkdayEnd             = "18:00"
)

// Форматы даты и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Причины отмены, проставляемые системой
const (
	ReasonRefundedByAdmin = "Refunded by admin"
	ReasonRescheduled     = "Rescheduled"
)

// InactiveStatuses статусы, не занимающие место в календаре врача
var InactiveStatuses = []AppointmentStatus{
	StatusCancelled,
	StatusNoShow,
}

// TerminalStatuses статусы, из которых нет переходов
var TerminalStatuses = []AppointmentStatus{
	StatusCancelled,
	StatusCompleted,
	StatusNoShow,
}

// SupportedCurrencies валюты каталога терапий
var SupportedCurrencies = []string{"USD", "EUR", "GBP", "INR", "CAD", "AUD"}
