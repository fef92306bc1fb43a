package book_appointment

import (
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/types"
)

// Request модель запроса на запись
type Request struct {
	Actor     domain.Actor     // Пациент, от имени которого создается запись
	DoctorID  domain.UserID    // ID врача
	TherapyID domain.TherapyID // ID терапии
	Date      time.Time        // Дата приёма (без времени)
	StartTime types.TimeString // Время начала, "09:00"
	EndTime   types.TimeString // Время окончания, "10:00"
	// DurationMinutes длительность; по умолчанию берется из терапии
	DurationMinutes *int
	SessionType     domain.SessionType
	Notes           *string
	PatientNotes    *string
}
