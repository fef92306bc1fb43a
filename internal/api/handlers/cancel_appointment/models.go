package cancel_appointment

import (
	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/internal/service/appointments/models"
)

// CancelAppointmentRequest HTTP request model
type CancelAppointmentRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelAppointmentRequest) ToServiceRequest(actor domain.Actor) *models.CancelRequest {
	reason := ""
	if r.CancellationReason != nil {
		reason = *r.CancellationReason
	}

	return &models.CancelRequest{
		Actor:  actor,
		Reason: reason,
	}
}
