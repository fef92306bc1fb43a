package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/pkg/types"
)

// ErrInvalidWorkingHours некорректный шаблон рабочих часов
var ErrInvalidWorkingHours = NewError(ErrValidation, "invalid working hours")

// TimeWindow интервал рабочего времени без привязки к дате
type TimeWindow struct {
	Start types.TimeString
	End   types.TimeString
}

// On привязывает окно к дате
func (w TimeWindow) On(date time.Time) TimeRange {
	return TimeRange{Date: DateOnly(date), Start: w.Start, End: w.End}
}

// WorkingHours шаблон рабочих часов врача по дням недели
type WorkingHours struct {
	DoctorID UserID
	Days     map[time.Weekday][]TimeWindow
}

// DefaultWorkingHours окно 09:00-18:00 на каждый день недели
func DefaultWorkingHours(doctorID UserID) *WorkingHours {
	return DailyWorkingHours(doctorID, DefaultWorkdayStart, DefaultWorkdayEnd)
}

// DailyWorkingHours одно окно [start, end) на каждый день недели
func DailyWorkingHours(doctorID UserID, start, end types.TimeString) *WorkingHours {
	days := make(map[time.Weekday][]TimeWindow, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		days[d] = []TimeWindow{{Start: start, End: end}}
	}
	return &WorkingHours{DoctorID: doctorID, Days: days}
}

// BlocksOn возвращает рабочие интервалы на дату в хронологическом порядке
func (wh *WorkingHours) BlocksOn(date time.Time) []TimeRange {
	if wh == nil {
		return nil
	}
	windows := wh.Days[date.Weekday()]
	blocks := make([]TimeRange, 0, len(windows))
	for _, w := range windows {
		blocks = append(blocks, w.On(date))
	}
	slices.SortFunc(blocks, func(a, b TimeRange) int {
		return a.Start.Minutes() - b.Start.Minutes()
	})
	return blocks
}

// Validate проверяет окна: корректный формат, end > start, без пересечений внутри дня
func (wh *WorkingHours) Validate() error {
	for day, windows := range wh.Days {
		sorted := slices.Clone(windows)
		slices.SortFunc(sorted, func(a, b TimeWindow) int {
			return a.Start.Minutes() - b.Start.Minutes()
		})
		for i, w := range sorted {
			r := TimeRange{Start: w.Start, End: w.End}
			if !r.IsValid() {
				return fmt.Errorf("%w: %s window %s-%s", ErrInvalidWorkingHours, day, w.Start, w.End)
			}
			if i > 0 && w.Start.IsBefore(sorted[i-1].End) {
				return fmt.Errorf("%w: %s windows %s-%s and %s-%s overlap", ErrInvalidWorkingHours,
					day, sorted[i-1].Start, sorted[i-1].End, w.Start, w.End)
			}
		}
	}
	return nil
}
