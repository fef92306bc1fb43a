package payment_webhook

import (
	"bytes"
	"io"
	"net/http"

	"github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

const (
	msgInvalidSignature   = "invalid signature"
	msgInvalidRequestBody = "invalid request body"

	maxBodyBytes = 64 << 10
)

type Handler struct {
	service PaymentService
	secret  string
	logger  Logger
}

func NewHandler(service PaymentService, secret string, logger Logger) *Handler {
	return &Handler{
		service: service,
		secret:  secret,
		logger:  logger,
	}
}

// Handle POST /api/v1/webhooks/payments
// Без валидной подписи событие не обрабатывается; при пустом секрете webhook отключен
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn("POST /webhooks/payments - Failed to read body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if h.secret == "" {
		h.logger.Error("POST /webhooks/payments - Webhook secret is not configured, event rejected")
		handlers.RespondUnauthorized(w, msgInvalidSignature)
		return
	}

	if !verify(h.secret, body, r.Header.Get(HeaderSignature)) {
		h.logger.Warn("POST /webhooks/payments - Invalid signature from %s", r.RemoteAddr)
		handlers.RespondUnauthorized(w, msgInvalidSignature)
		return
	}

	// DecodeJSON читает из r.Body, тело уже прочитано для подписи
	r.Body = io.NopCloser(bytes.NewReader(body))
	var event WebhookEvent
	if err := handlers.DecodeJSON(r, &event); err != nil {
		h.logger.Warn("POST /webhooks/payments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.HandleEvent(r.Context(), event.Type, event.PaymentRef)
	if err != nil {
		// повторная доставка или событие не по порядку: провайдеру отвечаем 409
		if domain.KindOf(err) == domain.ErrInvalidTransition {
			message, _ := domain.PublicMessage(err)
			h.logger.Warn("POST /webhooks/payments - Event not applicable: type=%s, ref=%s, error=%v",
				event.Type, event.PaymentRef, err)
			handlers.RespondConflict(w, message)
			return
		}
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("POST /webhooks/payments - Failed to handle event: type=%s, ref=%s, error=%v",
				event.Type, event.PaymentRef, err)
		} else {
			h.logger.Warn("POST /webhooks/payments - Event not applied: type=%s, ref=%s, status=%d, error=%v",
				event.Type, event.PaymentRef, status, err)
		}
		return
	}

	h.logger.Info("POST /webhooks/payments - Event applied: type=%s, appointment=%s, status=%s, payment=%s",
		event.Type, result.ID, result.Status, result.PaymentStatus)
	handlers.RespondJSON(w, http.StatusOK, result)
}
