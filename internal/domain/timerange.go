package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/pkg/types"
)

// ErrInvalidTimeRange некорректный интервал времени
var ErrInvalidTimeRange = NewError(ErrValidation, "invalid time range: end must be after start, format HH:MM")

// TimeRange полуоткрытый интервал [Start, End) на конкретную дату
type TimeRange struct {
	Date  time.Time
	Start types.TimeString
	End   types.TimeString
}

// DateOnly обнуляет время, оставляя календарную дату в UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewTimeRange создает валидный интервал
func NewTimeRange(date time.Time, start, end types.TimeString) (TimeRange, error) {
	r := TimeRange{Date: DateOnly(date), Start: start, End: end}
	if !r.IsValid() {
		return TimeRange{}, fmt.Errorf("%w: %s-%s", ErrInvalidTimeRange, start, end)
	}
	return r, nil
}

// IsValid проверяет формат HH:MM обеих границ и end > start
func (r TimeRange) IsValid() bool {
	if r.Start.Validate() != nil || r.End.Validate() != nil {
		return false
	}
	return r.End.IsAfter(r.Start)
}

// Overlaps проверяет пересечение полуоткрытых интервалов; соприкосновение границ не считается
func (r TimeRange) Overlaps(other TimeRange) bool {
	if !r.SameDate(other) {
		return false
	}
	return r.Start.IsBefore(other.End) && other.Start.IsBefore(r.End)
}

// Contains возвращает true, если other целиком лежит внутри r
func (r TimeRange) Contains(other TimeRange) bool {
	if !r.SameDate(other) {
		return false
	}
	return !other.Start.IsBefore(r.Start) && !other.End.IsAfter(r.End)
}

// SameDate сравнивает календарные даты интервалов
func (r TimeRange) SameDate(other TimeRange) bool {
	return DateOnly(r.Date).Equal(DateOnly(other.Date))
}

// DurationMinutes длительность интервала в минутах
func (r TimeRange) DurationMinutes() int {
	return r.End.Minutes() - r.Start.Minutes()
}

// StartInstant момент начала в указанной временной зоне
func (r TimeRange) StartInstant(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := r.Date.Date()
	minutes := r.Start.Minutes()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, loc)
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%s %s-%s", r.Date.Format(DateFormat), r.Start, r.End)
}
