package get_appointment_events

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-TherapyBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

const (
	msgUnauthorized         = "unauthorized"
	msgInvalidAppointmentID = "invalid appointment id"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/appointments/{appointmentId}/events
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	id, err := domain.ParseAppointmentID(mux.Vars(r)["appointmentId"])
	if err != nil {
		h.logger.Warn("GET /appointments/{id}/events - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	events, err := h.service.GetEvents(r.Context(), id, actor)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /appointments/{id}/events - Failed to get events: id=%s, error=%v", id, err)
		} else {
			h.logger.Warn("GET /appointments/{id}/events - Rejected: id=%s, status=%d", id, status)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, fromDomain(id, events))
}
