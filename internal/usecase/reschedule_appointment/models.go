package reschedule_appointment

import (
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/types"
)

// Request модель запроса на перенос записи
type Request struct {
	AppointmentID domain.AppointmentID
	Actor         domain.Actor
	Date          time.Time
	StartTime     types.TimeString
	EndTime       types.TimeString
}
