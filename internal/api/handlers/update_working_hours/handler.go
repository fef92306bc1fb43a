package update_working_hours

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-TherapyBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/internal/service/schedule/models"
)

const (
	msgUnauthorized       = "unauthorized"
	msgInvalidDoctorID    = "invalid doctor id"
	msgInvalidRequestBody = "invalid request body"
)

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

// Handle PUT /api/v1/doctors/{doctorId}/working-hours
// Шаблон заменяется целиком; изменять может сам врач или администратор
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	doctorID, err := domain.ParseUserID(mux.Vars(r)["doctorId"])
	if err != nil {
		h.logger.Warn("PUT /doctors/{id}/working-hours - Invalid doctor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)
		return
	}

	var req models.WorkingHoursRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /doctors/{id}/working-hours - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	wh, err := req.ToDomain(doctorID)
	if err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.service.ReplaceWorkingHours(r.Context(), actor, wh)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("PUT /doctors/{id}/working-hours - Failed to replace: doctor=%s, error=%v", doctorID, err)
		} else {
			h.logger.Warn("PUT /doctors/{id}/working-hours - Rejected: doctor=%s, actor=%s:%s, error=%v",
				doctorID, actor.Role, actor.ID, err)
		}
		return
	}

	h.logger.Info("PUT /doctors/{id}/working-hours - Working hours replaced: doctor=%s", doctorID)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomain(result))
}
