package create_appointment

import (
	"fmt"

	"github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	bookAppointment "github.com/m04kA/SMC-TherapyBookingService/internal/usecase/book_appointment"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/types"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	DoctorID        string  `json:"doctorId"`
	TherapyID       string  `json:"therapyId"`
	AppointmentDate string  `json:"appointmentDate"` // "2024-06-10"
	StartTime       string  `json:"startTime"`       // "09:00"
	EndTime         string  `json:"endTime"`         // "10:00"
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	SessionType     string  `json:"sessionType"` // online | in_person
	Notes           *string `json:"notes,omitempty"`
	PatientNotes    *string `json:"patientNotes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(actor domain.Actor) (*bookAppointment.Request, error) {
	doctorID, err := domain.ParseUserID(r.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("invalid doctorId: %w", err)
	}

	therapyID, err := domain.ParseTherapyID(r.TherapyID)
	if err != nil {
		return nil, fmt.Errorf("invalid therapyId: %w", err)
	}

	date, err := handlers.ParseDate(r.AppointmentDate)
	if err != nil {
		return nil, err
	}

	return &bookAppointment.Request{
		Actor:           actor,
		DoctorID:        doctorID,
		TherapyID:       therapyID,
		Date:            date,
		StartTime:       types.TimeString(r.StartTime),
		EndTime:         types.TimeString(r.EndTime),
		DurationMinutes: r.DurationMinutes,
		SessionType:     domain.SessionType(r.SessionType),
		Notes:           r.Notes,
		PatientNotes:    r.PatientNotes,
	}, nil
}
