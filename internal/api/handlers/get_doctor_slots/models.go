package get_doctor_slots

import (
	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-TherapyBookingService/internal/usecase/get_available_slots"
)

// SlotResponse свободный интервал
type SlotResponse struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// AvailableSlotsResponse свободные слоты врача на дату
type AvailableSlotsResponse struct {
	DoctorID           string         `json:"doctorId"`
	Date               string         `json:"date"`
	GranularityMinutes int            `json:"granularityMinutes"`
	Slots              []SlotResponse `json:"slots"`
}

func fromUseCase(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	out := &AvailableSlotsResponse{
		DoctorID:           resp.DoctorID.String(),
		Date:               resp.Date.Format(domain.DateFormat),
		GranularityMinutes: resp.GranularityMinutes,
		Slots:              make([]SlotResponse, 0, len(resp.Slots)),
	}
	for _, s := range resp.Slots {
		out.Slots = append(out.Slots, SlotResponse{
			StartTime: s.StartTime.String(),
			EndTime:   s.EndTime.String(),
		})
	}
	return out
}
