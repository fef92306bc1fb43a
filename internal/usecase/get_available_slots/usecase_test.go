package get_available_slots

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-TherapyBookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-TherapyBookingService/internal/service/schedule"
	"github.com/m04kA/SMC-TherapyBookingService/internal/testutil"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/logger"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/types"
)

var slotDate = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

type fixture struct {
	doctor *domain.User
	store  *testutil.AppointmentStore
	hours  *testutil.WorkingHoursStore
	clock  *testutil.Clock
	uc     *UseCase
}

func newFixture() *fixture {
	f := &fixture{
		doctor: &domain.User{ID: domain.UserID{UUID: uuid.New()}, Role: domain.RoleDoctor, IsActive: true},
		store:  testutil.NewAppointmentStore(),
		hours:  testutil.NewWorkingHoursStore(),
		clock:  testutil.NewClock(time.Date(2024, 6, 8, 12, 0, 0, 0, time.UTC)),
	}
	hours := schedule.NewService(f.hours, &testutil.TxManager{Store: f.store},
		domain.DefaultWorkdayStart, domain.DefaultWorkdayEnd, logger.Nop())
	f.uc = NewUseCase(f.store, hours, testutil.NewIdentity(f.doctor), 0, time.UTC, logger.Nop()).
		WithTimeProvider(f.clock)
	return f
}

func (f *fixture) book(start, end types.TimeString, status domain.AppointmentStatus) {
	f.store.Put(domain.Appointment{
		ID:              domain.NewAppointmentID(),
		PatientID:       domain.UserID{UUID: uuid.New()},
		DoctorID:        f.doctor.ID,
		TherapyID:       domain.TherapyID{UUID: uuid.New()},
		Range:           domain.TimeRange{Date: slotDate, Start: start, End: end},
		DurationMinutes: end.Minutes() - start.Minutes(),
		Status:          status,
		SessionType:     domain.SessionOnline,
		PaymentStatus:   domain.PaymentPending,
	})
}

func starts(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.StartTime.String())
	}
	return out
}

func TestUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("empty calendar uses default working day", func(t *testing.T) {
		f := newFixture()
		resp, err := f.uc.Execute(ctx, &Request{DoctorID: f.doctor.ID, Date: slotDate})
		require.NoError(t, err)

		assert.Equal(t, domain.DefaultSlotGranularityMinutes, resp.GranularityMinutes)
		assert.Equal(t, []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00"}, starts(resp.Slots))
		assert.Equal(t, types.TimeString("18:00"), resp.Slots[8].EndTime)
	})

	t.Run("busy and inactive appointments", func(t *testing.T) {
		f := newFixture()
		f.book("10:00", "11:00", domain.StatusConfirmed)
		f.book("13:30", "14:00", domain.StatusScheduled)
		f.book("15:00", "16:00", domain.StatusCancelled)
		f.book("16:00", "17:00", domain.StatusNoShow)

		resp, err := f.uc.Execute(ctx, &Request{DoctorID: f.doctor.ID, Date: slotDate})
		require.NoError(t, err)
		assert.Equal(t, []string{"09:00", "11:00", "12:00", "14:00", "15:00", "16:00", "17:00"}, starts(resp.Slots))

		resp, err = f.uc.Execute(ctx, &Request{DoctorID: f.doctor.ID, Date: slotDate, GranularityMinutes: 30})
		require.NoError(t, err)
		assert.Len(t, resp.Slots, 18-3)
		assert.NotContains(t, starts(resp.Slots), "13:30")
		assert.Contains(t, starts(resp.Slots), "13:00")
	})

	t.Run("today drops started slots", func(t *testing.T) {
		f := newFixture()
		f.clock.Set(time.Date(2024, 6, 10, 12, 30, 0, 0, time.UTC))

		resp, err := f.uc.Execute(ctx, &Request{DoctorID: f.doctor.ID, Date: slotDate})
		require.NoError(t, err)
		assert.Equal(t, []string{"13:00", "14:00", "15:00", "16:00", "17:00"}, starts(resp.Slots))
	})

	t.Run("past date", func(t *testing.T) {
		f := newFixture()
		f.clock.Set(time.Date(2024, 6, 11, 8, 0, 0, 0, time.UTC))

		resp, err := f.uc.Execute(ctx, &Request{DoctorID: f.doctor.ID, Date: slotDate})
		require.NoError(t, err)
		assert.Empty(t, resp.Slots)
	})

	t.Run("stored working hours", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.hours.Replace(ctx, &domain.WorkingHours{
			DoctorID: f.doctor.ID,
			Days: map[time.Weekday][]domain.TimeWindow{
				time.Monday: {{Start: "08:00", End: "09:00"}, {Start: "14:00", End: "15:30"}},
			},
		}))

		resp, err := f.uc.Execute(ctx, &Request{DoctorID: f.doctor.ID, Date: slotDate, GranularityMinutes: 45})
		require.NoError(t, err)
		assert.Equal(t, []string{"08:00", "14:00", "14:45"}, starts(resp.Slots))

		resp, err = f.uc.Execute(ctx, &Request{DoctorID: f.doctor.ID, Date: slotDate.AddDate(0, 0, 1)})
		require.NoError(t, err)
		assert.Empty(t, resp.Slots)
	})
}

func TestUseCase_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("granularity out of bounds", func(t *testing.T) {
		f := newFixture()
		for _, g := range []int{-1, 4, 481} {
			_, err := f.uc.Execute(ctx, &Request{DoctorID: f.doctor.ID, Date: slotDate, GranularityMinutes: g})
			assert.ErrorIs(t, err, domain.ErrValidation, "granularity %d", g)
		}
	})

	t.Run("missing date", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Execute(ctx, &Request{DoctorID: f.doctor.ID})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Execute(ctx, &Request{DoctorID: domain.UserID{UUID: uuid.New()}, Date: slotDate})
		assert.ErrorIs(t, err, ErrDoctorNotFound)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("user is not a doctor", func(t *testing.T) {
		f := newFixture()
		f.doctor.Role = domain.RolePatient
		_, err := f.uc.Execute(ctx, &Request{DoctorID: f.doctor.ID, Date: slotDate})
		assert.ErrorIs(t, err, ErrDoctorNotFound)
	})

	t.Run("store unavailable", func(t *testing.T) {
		f := newFixture()
		f.store.Err = fmt.Errorf("%w: connection refused", appointmentRepo.ErrStoreUnavailable)
		_, err := f.uc.Execute(ctx, &Request{DoctorID: f.doctor.ID, Date: slotDate})
		assert.ErrorIs(t, err, ErrInternal)
		assert.ErrorIs(t, err, domain.ErrUnavailable)
	})
}

// Два запроса без бронирований между ними дают одинаковый результат
func TestUseCase_Idempotent(t *testing.T) {
	faker := gofakeit.New(11)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		f := newFixture()
		for j := 0; j < faker.IntRange(0, 5); j++ {
			start := faker.IntRange(9*60, 16*60)
			s, _ := types.NewTimeStringFromMinutes(start)
			e, err := types.NewTimeStringFromMinutes(start + faker.IntRange(15, 120))
			require.NoError(t, err)
			f.book(s, e, domain.StatusScheduled)
		}
		req := &Request{DoctorID: f.doctor.ID, Date: slotDate, GranularityMinutes: faker.RandomInt([]int{15, 30, 60})}

		first, err := f.uc.Execute(ctx, req)
		require.NoError(t, err)
		second, err := f.uc.Execute(ctx, req)
		require.NoError(t, err)
		require.Equal(t, first.Slots, second.Slots)
	}
}
