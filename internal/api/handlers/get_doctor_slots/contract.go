package get_doctor_slots

import (
	"context"

	getAvailableSlots "github.com/m04kA/SMC-TherapyBookingService/internal/usecase/get_available_slots"
)

type SlotsUseCase interface {
	Execute(ctx context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
