package calendar

import (
	"iter"
	"slices"
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/types"
)

// Calendar снимок дня одного врача: рабочие интервалы и занятые записи.
// Не изменяет состояние; для актуальных данных строится заново.
type Calendar struct {
	date   time.Time
	blocks []domain.TimeRange
	busy   []domain.TimeRange
}

// New строит календарь на дату. Смежные рабочие блоки склеиваются.
// Записи других дат и записи, не занимающие время (cancelled, no_show), отбрасываются.
func New(date time.Time, blocks []domain.TimeRange, appointments []*domain.Appointment) *Calendar {
	day := domain.DateOnly(date)
	c := &Calendar{date: day}

	for _, b := range blocks {
		b.Date = domain.DateOnly(b.Date)
		if b.Date.Equal(day) && b.IsValid() {
			c.blocks = append(c.blocks, b)
		}
	}
	c.blocks = mergeTouching(c.blocks)

	for _, a := range appointments {
		if a == nil || !a.OccupiesCalendar() {
			continue
		}
		r := a.Range
		r.Date = domain.DateOnly(r.Date)
		if r.Date.Equal(day) {
			c.busy = append(c.busy, r)
		}
	}
	sortRanges(c.busy)

	return c
}

// Date дата календаря
func (c *Calendar) Date() time.Time {
	return c.date
}

// Busy занятые интервалы в хронологическом порядке
func (c *Calendar) Busy() []domain.TimeRange {
	return slices.Clone(c.busy)
}

// IsFree возвращает true, если интервал валиден, лежит внутри рабочего блока
// и не пересекается ни с одной записью
func (c *Calendar) IsFree(r domain.TimeRange) bool {
	return c.WithinWorkingHours(r) && !c.HasConflict(r)
}

// WithinWorkingHours проверяет, что интервал целиком внутри одного непрерывного рабочего блока
func (c *Calendar) WithinWorkingHours(r domain.TimeRange) bool {
	if !r.IsValid() {
		return false
	}
	for _, b := range c.blocks {
		if b.Contains(r) {
			return true
		}
	}
	return false
}

// HasConflict проверяет пересечение с занятыми интервалами
func (c *Calendar) HasConflict(r domain.TimeRange) bool {
	for _, busy := range c.busy {
		if busy.Overlaps(r) {
			return true
		}
	}
	return false
}

// FreeSlots делит каждый рабочий блок на слоты длиной granularityMinutes
// и отдает свободные в хронологическом порядке. Последовательность ленивая
// и может обходиться повторно.
func (c *Calendar) FreeSlots(granularityMinutes int) iter.Seq[domain.TimeRange] {
	return func(yield func(domain.TimeRange) bool) {
		if granularityMinutes <= 0 {
			return
		}
		for _, b := range c.blocks {
			for start := b.Start.Minutes(); start+granularityMinutes <= b.End.Minutes(); start += granularityMinutes {
				slot, ok := c.slot(start, start+granularityMinutes)
				if !ok || c.HasConflict(slot) {
					continue
				}
				if !yield(slot) {
					return
				}
			}
		}
	}
}

func (c *Calendar) slot(startMinutes, endMinutes int) (domain.TimeRange, bool) {
	start, err := types.NewTimeStringFromMinutes(startMinutes)
	if err != nil {
		return domain.TimeRange{}, false
	}
	end, err := types.NewTimeStringFromMinutes(endMinutes)
	if err != nil {
		return domain.TimeRange{}, false
	}
	return domain.TimeRange{Date: c.date, Start: start, End: end}, true
}

func sortRanges(ranges []domain.TimeRange) {
	slices.SortFunc(ranges, func(a, b domain.TimeRange) int {
		return a.Start.Minutes() - b.Start.Minutes()
	})
}

// mergeTouching склеивает пересекающиеся и смежные блоки
func mergeTouching(blocks []domain.TimeRange) []domain.TimeRange {
	sortRanges(blocks)
	merged := make([]domain.TimeRange, 0, len(blocks))
	for _, b := range blocks {
		if n := len(merged); n > 0 && !b.Start.IsAfter(merged[n-1].End) {
			if b.End.IsAfter(merged[n-1].End) {
				merged[n-1].End = b.End
			}
			continue
		}
		merged = append(merged, b)
	}
	return merged
}
