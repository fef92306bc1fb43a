package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/types"
)

// Window интервал рабочего времени
type Window struct {
	Start string `json:"start"` // "09:00"
	End   string `json:"end"`   // "10:00"
}

// WorkingHoursResponse шаблон рабочих часов по дням недели: ключи monday..sunday
type WorkingHoursResponse struct {
	DoctorID string              `json:"doctorId"`
	Days     map[string][]Window `json:"days"`
}

// WorkingHoursRequest новый шаблон; отсутствующий день означает выходной
type WorkingHoursRequest struct {
	Days map[string][]Window `json:"days"`
}

// ErrUnknownWeekday неизвестное название дня недели
var ErrUnknownWeekday = domain.NewError(domain.ErrValidation, "unknown weekday")

// FromDomain конвертирует шаблон в ответ API
func FromDomain(wh *domain.WorkingHours) *WorkingHoursResponse {
	resp := &WorkingHoursResponse{
		DoctorID: wh.DoctorID.String(),
		Days:     make(map[string][]Window, len(wh.Days)),
	}
	for day, windows := range wh.Days {
		out := make([]Window, 0, len(windows))
		for _, w := range windows {
			out = append(out, Window{Start: w.Start.String(), End: w.End.String()})
		}
		resp.Days[weekdayName(day)] = out
	}
	return resp
}

// ToDomain конвертирует запрос в шаблон врача. Окна не валидируются, это делает сервис
func (r *WorkingHoursRequest) ToDomain(doctorID domain.UserID) (*domain.WorkingHours, error) {
	wh := &domain.WorkingHours{DoctorID: doctorID, Days: make(map[time.Weekday][]domain.TimeWindow, len(r.Days))}
	for name, windows := range r.Days {
		day, ok := parseWeekday(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownWeekday, name)
		}
		for _, w := range windows {
			wh.Days[day] = append(wh.Days[day], domain.TimeWindow{
				Start: types.TimeString(w.Start),
				End:   types.TimeString(w.End),
			})
		}
	}
	return wh, nil
}

func weekdayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}

func parseWeekday(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(name, d.String()) {
			return d, true
		}
	}
	return 0, false
}
