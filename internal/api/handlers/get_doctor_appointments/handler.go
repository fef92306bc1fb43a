package get_doctor_appointments

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-TherapyBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

const (
	msgUnauthorized    = "unauthorized"
	msgInvalidDoctorID = "invalid doctor id"
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

// Handle GET /api/v1/doctors/{doctorId}/appointments?status=&date=&upcoming=&includeInactive=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	ownerID, err := domain.ParseUserID(mux.Vars(r)["doctorId"])
	if err != nil {
		h.logger.Warn("GET /doctors/{id}/appointments - Invalid doctor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)
		return
	}

	req, err := handlers.ParseListQuery(r.URL.Query(), actor, ownerID)
	if err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.service.GetDoctorAppointments(r.Context(), req)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /doctors/{id}/appointments - Failed to list: doctor=%s, error=%v", ownerID, err)
		} else {
			h.logger.Warn("GET /doctors/{id}/appointments - Rejected: doctor=%s, actor=%s:%s, status=%d",
				ownerID, actor.Role, actor.ID, status)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
