package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.DoctorID.IsZero() {
		return fmt.Errorf("%w: doctorId is required", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.GranularityMinutes != 0 && (req.GranularityMinutes < domain.MinSlotGranularityMinutes ||
		req.GranularityMinutes > domain.MaxSlotGranularityMinutes) {
		return fmt.Errorf("%w: granularity must be between %d and %d minutes",
			ErrInvalidInput, domain.MinSlotGranularityMinutes, domain.MaxSlotGranularityMinutes)
	}

	return nil
}
