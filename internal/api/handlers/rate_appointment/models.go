package rate_appointment

import (
	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/internal/service/appointments/models"
)

// RateAppointmentRequest HTTP request model
type RateAppointmentRequest struct {
	Rating   int     `json:"rating"`
	Feedback *string `json:"feedback,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *RateAppointmentRequest) ToServiceRequest(actor domain.Actor) *models.RateRequest {
	return &models.RateRequest{
		Actor:    actor,
		Rating:   r.Rating,
		Feedback: r.Feedback,
	}
}
