package book_appointment

import (
	"fmt"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.Actor.Role != domain.RolePatient || req.Actor.ID.IsZero() {
		return ErrPatientNotAllowed
	}

	if req.DoctorID.IsZero() {
		return fmt.Errorf("%w: doctorId is required", ErrInvalidInput)
	}

	if req.TherapyID.IsZero() {
		return fmt.Errorf("%w: therapyId is required", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}

	if err := req.EndTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid endTime: %v", ErrInvalidInput, err)
	}

	if !req.SessionType.IsValid() {
		return fmt.Errorf("%w: sessionType must be online or in_person", ErrInvalidInput)
	}

	if req.DurationMinutes != nil {
		if err := validateDuration(*req.DurationMinutes); err != nil {
			return err
		}
	}

	if req.Notes != nil && len([]rune(*req.Notes)) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes cannot exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	if req.PatientNotes != nil && len([]rune(*req.PatientNotes)) > domain.MaxNotesLength {
		return fmt.Errorf("%w: patientNotes cannot exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

func validateDuration(minutes int) error {
	if minutes < domain.MinDurationMinutes || minutes > domain.MaxDurationMinutes {
		return fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}
	return nil
}

// validateTherapy проверяет, что терапия активна, принадлежит врачу и предлагает формат сессии
func validateTherapy(therapy *domain.Therapy, doctorID domain.UserID, sessionType domain.SessionType) error {
	if !therapy.IsActive {
		return ErrTherapyInactive
	}
	if therapy.DoctorID != doctorID {
		return ErrTherapyDoctorMismatch
	}
	if !therapy.Offers(sessionType) {
		return ErrSessionTypeNotOffered
	}
	return nil
}

// durationFor длительность из запроса, иначе длина самого интервала
func durationFor(req *Request, r domain.TimeRange) int {
	if req.DurationMinutes != nil {
		return *req.DurationMinutes
	}
	return r.DurationMinutes()
}
