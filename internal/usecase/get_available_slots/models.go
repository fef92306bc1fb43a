package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	DoctorID domain.UserID
	Date     time.Time // Дата без времени
	// GranularityMinutes длина слота; 0 означает значение по умолчанию
	GranularityMinutes int
}

// Response модель ответа со списком доступных слотов
type Response struct {
	DoctorID           domain.UserID
	Date               time.Time
	GranularityMinutes int
	Slots              []Slot
}

// Slot свободный интервал
type Slot struct {
	StartTime types.TimeString
	EndTime   types.TimeString
}
