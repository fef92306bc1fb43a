package reschedule_appointment

import (
	"github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	rescheduleAppointment "github.com/m04kA/SMC-TherapyBookingService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/types"
)

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	AppointmentDate string `json:"appointmentDate"` // "2024-06-10"
	StartTime       string `json:"startTime"`       // "09:00"
	EndTime         string `json:"endTime"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleRequest) ToUseCaseRequest(id domain.AppointmentID, actor domain.Actor) (*rescheduleAppointment.Request, error) {
	date, err := handlers.ParseDate(r.AppointmentDate)
	if err != nil {
		return nil, err
	}

	return &rescheduleAppointment.Request{
		AppointmentID: id,
		Actor:         actor,
		Date:          date,
		StartTime:     types.TimeString(r.StartTime),
		EndTime:       types.TimeString(r.EndTime),
	}, nil
}
