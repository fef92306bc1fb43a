package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/internal/calendar"
	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

// collectSlots собирает свободные слоты календаря.
// Для сегодняшней даты отбрасываются слоты, которые уже начались.
func collectSlots(cal *calendar.Calendar, granularity int, now time.Time, loc *time.Location) []Slot {
	slots := make([]Slot, 0)
	for r := range cal.FreeSlots(granularity) {
		if !r.StartInstant(loc).After(now) {
			continue
		}
		slots = append(slots, Slot{StartTime: r.Start, EndTime: r.End})
	}
	return slots
}

// isDateInPast проверяет, что дата раньше сегодняшней в часовом поясе расписания
func isDateInPast(date time.Time, now time.Time, loc *time.Location) bool {
	return domain.DateOnly(date).Before(domain.DateOnly(now.In(loc)))
}
