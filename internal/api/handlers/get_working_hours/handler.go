package get_working_hours

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/internal/service/schedule/models"
)

const msgInvalidDoctorID = "invalid doctor id"

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/doctors/{doctorId}/working-hours
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID, err := domain.ParseUserID(mux.Vars(r)["doctorId"])
	if err != nil {
		h.logger.Warn("GET /doctors/{id}/working-hours - Invalid doctor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)
		return
	}

	wh, err := h.service.GetWorkingHours(r.Context(), doctorID)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /doctors/{id}/working-hours - Failed to get working hours: doctor=%s, error=%v", doctorID, err)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, models.FromDomain(wh))
}
