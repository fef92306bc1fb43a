package get_appointment

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

// Handle GET /api/v1/appointments/{appointmentId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	id, err := domain.ParseAppointmentID(mux.Vars(r)["appointmentId"])
	if err != nil {
		h.logger.Warn("GET /appointments/{id} - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	result, err := h.service.GetByID(r.Context(), id, actor)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /appointments/{id} - Failed to get appointment: id=%s, error=%v", id, err)
		} else {
			h.logger.Warn("GET /appointments/{id} - Rejected: id=%s, actor=%s, status=%d", id, actor.ID, status)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
