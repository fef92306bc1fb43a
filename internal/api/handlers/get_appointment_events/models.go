package get_appointment_events

import (
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

// EventResponse запись журнала
type EventResponse struct {
	ID                string    `json:"id"`
	Event             string    `json:"event"`
	FromStatus        *string   `json:"fromStatus,omitempty"`
	ToStatus          string    `json:"toStatus"`
	FromPaymentStatus *string   `json:"fromPaymentStatus,omitempty"`
	ToPaymentStatus   string    `json:"toPaymentStatus"`
	ActorID           *string   `json:"actorId,omitempty"`
	ActorRole         string    `json:"actorRole"`
	CreatedAt         time.Time `json:"createdAt"`
}

// EventListResponse журнал изменений записи
type EventListResponse struct {
	AppointmentID string          `json:"appointmentId"`
	Events        []EventResponse `json:"events"`
}

func fromDomain(id domain.AppointmentID, events []*domain.AppointmentEvent) *EventListResponse {
	resp := &EventListResponse{
		AppointmentID: id.String(),
		Events:        make([]EventResponse, 0, len(events)),
	}

	for _, e := range events {
		item := EventResponse{
			ID:              e.ID.String(),
			Event:           e.Event,
			ToStatus:        string(e.ToStatus),
			ToPaymentStatus: string(e.ToPaymentStatus),
			ActorRole:       string(e.ActorRole),
			CreatedAt:       e.CreatedAt,
		}
		if e.FromStatus != nil {
			s := string(*e.FromStatus)
			item.FromStatus = &s
		}
		if e.FromPaymentStatus != nil {
			s := string(*e.FromPaymentStatus)
			item.FromPaymentStatus = &s
		}
		if e.ActorID != nil {
			s := e.ActorID.String()
			item.ActorID = &s
		}
		resp.Events = append(resp.Events, item)
	}

	return resp
}
