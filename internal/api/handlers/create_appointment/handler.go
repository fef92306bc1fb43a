package create_appointment

import (
	"net/http"

	"github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-TherapyBookingService/internal/api/middleware"
)

const (
	msgUnauthorized       = "unauthorized"
	msgInvalidRequestBody = "invalid request body"
)

type Handler struct {
	useCase BookAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase BookAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(actor)
	if err != nil {
		h.logger.Warn("POST /appointments - Invalid request: %v", err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("POST /appointments - Failed to book: patient=%s, doctor=%s, status=%d, error=%v",
				actor.ID, req.DoctorID, status, err)
		} else {
			h.logger.Warn("POST /appointments - Booking rejected: patient=%s, doctor=%s, status=%d, error=%v",
				actor.ID, req.DoctorID, status, err)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created: id=%s, patient=%s, doctor=%s",
		result.ID, actor.ID, result.DoctorID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
