package attach_payment

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
	msgInvalidRequestBody   = "invalid request body"
)

type Handler struct {
	service PaymentService
	logger  Logger
}

func NewHandler(service PaymentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{appointmentId}/payment
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	id, err := domain.ParseAppointmentID(mux.Vars(r)["appointmentId"])
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/payment - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req AttachPaymentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/{id}/payment - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.AttachPaymentRef(r.Context(), id, actor, req.PaymentRef, req.PaymentMethod)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("POST /appointments/{id}/payment - Failed to attach payment: id=%s, error=%v", id, err)
		} else {
			h.logger.Warn("POST /appointments/{id}/payment - Rejected: id=%s, status=%d, error=%v", id, status, err)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
