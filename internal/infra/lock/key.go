package lock

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

const (
	BackendLocal = "local"
	BackendRedis = "redis"

	outcomeAcquired = "acquired"
	outcomeTimeout  = "timeout"
	outcomeError    = "error"
)

// DoctorDayKey ключ блокировки календаря врача на дату
func DoctorDayKey(doctorID domain.UserID, date time.Time) string {
	return fmt.Sprintf("doctor:%s:%s", doctorID, domain.DateOnly(date).Format(domain.DateFormat))
}

func observe(m Metrics, backend, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.ObserveLockWait(backend, outcome, time.Since(started))
}
