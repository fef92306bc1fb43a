package lifecycle

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/ptr"
)

var (
	patientID = domain.UserID{UUID: uuid.New()}
	doctorID  = domain.UserID{UUID: uuid.New()}
	adminID   = domain.UserID{UUID: uuid.New()}

	patient = domain.Actor{ID: patientID, Role: domain.RolePatient}
	doctor  = domain.Actor{ID: doctorID, Role: domain.RoleDoctor}
	admin   = domain.Actor{ID: adminID, Role: domain.RoleAdmin}
	system  = domain.SystemActor()

	// Запись на 2024-06-10 10:00-11:00 UTC
	startsAt = time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
)

func newAppointment(status domain.AppointmentStatus, payment domain.PaymentStatus) domain.Appointment {
	return domain.Appointment{
		ID:              domain.NewAppointmentID(),
		PatientID:       patientID,
		DoctorID:        doctorID,
		TherapyID:       domain.TherapyID{UUID: uuid.New()},
		Range:           domain.TimeRange{Date: domain.DateOnly(startsAt), Start: "10:00", End: "11:00"},
		DurationMinutes: 60,
		Status:          status,
		SessionType:     domain.SessionOnline,
		Price:           100,
		Currency:        "USD",
		PaymentStatus:   payment,
	}
}

func cmd(event Event, actor domain.Actor, now time.Time) Command {
	return Command{Event: event, Actor: actor, Now: now, Location: time.UTC}
}

func TestApply_CancellationWindowBoundary(t *testing.T) {
	appt := newAppointment(domain.StatusScheduled, domain.PaymentPending)

	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{name: "24h and one minute before", now: startsAt.Add(-24*time.Hour - time.Minute)},
		{name: "exactly 24h before", now: startsAt.Add(-24 * time.Hour), wantErr: ErrCancellationWindow},
		{name: "23h59m before", now: startsAt.Add(-24*time.Hour + time.Minute), wantErr: ErrCancellationWindow},
		{name: "after start", now: startsAt.Add(time.Hour), wantErr: ErrCancellationWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Apply(appt, cmd(EventCancel, patient, tt.now))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, domain.ErrInvalidTransition)
				msg, _ := domain.PublicMessage(err)
				assert.Equal(t, "cannot cancel within 24 hours of appointment", msg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.StatusCancelled, next.Status)
		})
	}
}

func TestApply_CancelSetsMetadataAndDoesNotMutateInput(t *testing.T) {
	appt := newAppointment(domain.StatusConfirmed, domain.PaymentPaid)
	now := startsAt.Add(-72 * time.Hour)

	c := cmd(EventCancel, doctor, now)
	c.Reason = "doctor is sick"
	next, err := Apply(appt, c)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, next.Status)
	require.NotNil(t, next.CancelledBy)
	assert.Equal(t, domain.RoleDoctor, *next.CancelledBy)
	require.NotNil(t, next.CancelledAt)
	assert.Equal(t, now, *next.CancelledAt)
	assert.Equal(t, "doctor is sick", *next.CancellationReason)
	assert.Equal(t, domain.PaymentPaid, next.PaymentStatus, "captured payment stays until refund")

	assert.Equal(t, domain.StatusConfirmed, appt.Status)
	assert.Nil(t, appt.CancelledBy)
}

func TestApply_CancelReleasesPendingPayment(t *testing.T) {
	for _, payment := range []domain.PaymentStatus{domain.PaymentPending, domain.PaymentFailed} {
		appt := newAppointment(domain.StatusScheduled, payment)
		next, err := Apply(appt, cmd(EventCancel, patient, startsAt.Add(-48*time.Hour)))
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentCancelled, next.PaymentStatus)
	}
}

func TestApply_ForceCancelIgnoresWindow(t *testing.T) {
	now := startsAt.Add(-time.Hour)

	for _, status := range []domain.AppointmentStatus{domain.StatusScheduled, domain.StatusConfirmed, domain.StatusInProgress} {
		appt := newAppointment(status, domain.PaymentPaid)
		next, err := Apply(appt, cmd(EventForceCancel, admin, now))
		require.NoError(t, err, status)
		assert.Equal(t, domain.StatusCancelled, next.Status)
		assert.Equal(t, domain.RoleAdmin, *next.CancelledBy)
	}

	_, err := Apply(newAppointment(domain.StatusScheduled, domain.PaymentPending), cmd(EventForceCancel, patient, now))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestApply_SessionFlow(t *testing.T) {
	now := startsAt
	appt := newAppointment(domain.StatusScheduled, domain.PaymentPending)

	_, err := Apply(appt, cmd(EventStart, doctor, now))
	require.ErrorIs(t, err, ErrNotConfirmed)

	appt, err = Apply(appt, cmd(EventPaymentSucceeded, system, now))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, appt.Status)
	assert.Equal(t, domain.PaymentPaid, appt.PaymentStatus)

	_, err = Apply(appt, cmd(EventStart, patient, now))
	require.ErrorIs(t, err, domain.ErrForbidden)

	appt, err = Apply(appt, cmd(EventStart, doctor, now))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, appt.Status)

	_, err = Apply(appt, cmd(EventStart, doctor, now))
	require.ErrorIs(t, err, ErrAlreadyInProgress)

	c := cmd(EventComplete, doctor, now.Add(time.Hour))
	c.DoctorNotes = ptr.Ptr("follow up in two weeks")
	appt, err = Apply(appt, c)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, appt.Status)
	assert.Equal(t, "follow up in two weeks", *appt.DoctorNotes)
}

func TestApply_OtherDoctorIsForbidden(t *testing.T) {
	other := domain.Actor{ID: domain.UserID{UUID: uuid.New()}, Role: domain.RoleDoctor}
	appt := newAppointment(domain.StatusConfirmed, domain.PaymentPaid)

	for _, event := range []Event{EventStart, EventMarkNoShow, EventCancel} {
		_, err := Apply(appt, cmd(event, other, startsAt.Add(-72*time.Hour)))
		assert.ErrorIs(t, err, domain.ErrForbidden, event)
	}
}

func TestApply_StrangerDoesNotLearnTerminalStatus(t *testing.T) {
	stranger := domain.Actor{ID: domain.UserID{UUID: uuid.New()}, Role: domain.RolePatient}
	otherDoctor := domain.Actor{ID: domain.UserID{UUID: uuid.New()}, Role: domain.RoleDoctor}

	for _, status := range domain.TerminalStatuses {
		appt := newAppointment(status, domain.PaymentPending)

		_, err := Apply(appt, cmd(EventCancel, stranger, startsAt.Add(-72*time.Hour)))
		assert.ErrorIs(t, err, domain.ErrForbidden, status)
		assert.NotErrorIs(t, err, ErrTerminalState, status)

		_, err = Apply(appt, cmd(EventStart, otherDoctor, startsAt))
		assert.ErrorIs(t, err, domain.ErrForbidden, status)
	}
}

func TestApply_NoShow(t *testing.T) {
	for _, actor := range []domain.Actor{doctor, admin} {
		appt := newAppointment(domain.StatusConfirmed, domain.PaymentPaid)
		next, err := Apply(appt, cmd(EventMarkNoShow, actor, startsAt.Add(time.Hour)))
		require.NoError(t, err)
		assert.Equal(t, domain.StatusNoShow, next.Status)
		assert.False(t, next.OccupiesCalendar())
	}

	_, err := Apply(newAppointment(domain.StatusInProgress, domain.PaymentPaid), cmd(EventMarkNoShow, doctor, startsAt))
	assert.ErrorIs(t, err, ErrNoShowNotAllowed)
}

func TestApply_TerminalStatesAreClosed(t *testing.T) {
	events := []Event{EventConfirm, EventCancel, EventForceCancel, EventStart, EventComplete, EventMarkNoShow, EventPaymentSucceeded, EventPaymentFailed}
	actors := map[Event]domain.Actor{
		EventConfirm:          admin,
		EventCancel:           patient,
		EventForceCancel:      admin,
		EventStart:            doctor,
		EventComplete:         doctor,
		EventMarkNoShow:       doctor,
		EventPaymentSucceeded: system,
		EventPaymentFailed:    system,
	}

	for _, status := range domain.TerminalStatuses {
		for _, event := range events {
			appt := newAppointment(status, domain.PaymentPending)
			_, err := Apply(appt, cmd(event, actors[event], startsAt.Add(-72*time.Hour)))
			assert.ErrorIs(t, err, domain.ErrInvalidTransition, "%s from %s", event, status)
		}
	}

	for _, status := range []domain.AppointmentStatus{domain.StatusCompleted, domain.StatusNoShow} {
		_, err := Apply(newAppointment(status, domain.PaymentPaid), cmd(EventRefundIssued, admin, startsAt))
		assert.ErrorIs(t, err, ErrNotRefundable)
	}
}

func TestApply_PaymentLifecycle(t *testing.T) {
	now := startsAt.Add(-48 * time.Hour)

	t.Run("failure then retry succeeds", func(t *testing.T) {
		appt := newAppointment(domain.StatusScheduled, domain.PaymentPending)

		appt, err := Apply(appt, cmd(EventPaymentFailed, system, now))
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentFailed, appt.PaymentStatus)
		assert.Equal(t, domain.StatusScheduled, appt.Status)

		_, err = Apply(appt, cmd(EventPaymentFailed, system, now))
		assert.ErrorIs(t, err, ErrAlreadyFailed)

		appt, err = Apply(appt, cmd(EventPaymentSucceeded, system, now))
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentPaid, appt.PaymentStatus)
		assert.Equal(t, domain.StatusConfirmed, appt.Status)

		_, err = Apply(appt, cmd(EventPaymentSucceeded, system, now))
		assert.ErrorIs(t, err, ErrAlreadyPaid)
	})

	t.Run("refund cancels an active appointment", func(t *testing.T) {
		appt := newAppointment(domain.StatusConfirmed, domain.PaymentPaid)

		next, err := Apply(appt, cmd(EventRefundIssued, admin, now))
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentRefunded, next.PaymentStatus)
		assert.Equal(t, domain.StatusCancelled, next.Status)
		assert.Equal(t, domain.RoleAdmin, *next.CancelledBy)
		assert.Equal(t, domain.ReasonRefundedByAdmin, *next.CancellationReason)

		_, err = Apply(next, cmd(EventRefundIssued, admin, now))
		assert.ErrorIs(t, err, ErrAlreadyRefunded)
	})

	t.Run("refund after cancellation keeps cancellation metadata", func(t *testing.T) {
		appt := newAppointment(domain.StatusConfirmed, domain.PaymentPaid)
		c := cmd(EventCancel, patient, now)
		c.Reason = "travel"
		cancelled, err := Apply(appt, c)
		require.NoError(t, err)

		refunded, err := Apply(cancelled, cmd(EventRefundIssued, system, now.Add(time.Hour)))
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentRefunded, refunded.PaymentStatus)
		assert.Equal(t, domain.RolePatient, *refunded.CancelledBy)
		assert.Equal(t, "travel", *refunded.CancellationReason)
	})

	t.Run("refund requires captured payment", func(t *testing.T) {
		_, err := Apply(newAppointment(domain.StatusScheduled, domain.PaymentPending), cmd(EventRefundIssued, admin, now))
		assert.ErrorIs(t, err, ErrPaymentNotPaid)
	})

	t.Run("payment events are not for participants", func(t *testing.T) {
		_, err := Apply(newAppointment(domain.StatusScheduled, domain.PaymentPending), cmd(EventPaymentSucceeded, patient, now))
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestApply_Confirm(t *testing.T) {
	_, err := Apply(newAppointment(domain.StatusScheduled, domain.PaymentPending), cmd(EventConfirm, admin, startsAt))
	assert.ErrorIs(t, err, ErrPaymentRequired)

	next, err := Apply(newAppointment(domain.StatusScheduled, domain.PaymentPaid), cmd(EventConfirm, admin, startsAt))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, next.Status)

	_, err = Apply(next, cmd(EventConfirm, admin, startsAt))
	assert.ErrorIs(t, err, ErrAlreadyConfirmed)
}

func TestApply_ValidatesInput(t *testing.T) {
	appt := newAppointment(domain.StatusScheduled, domain.PaymentPending)

	c := cmd(EventCancel, patient, startsAt.Add(-72*time.Hour))
	c.Reason = string(make([]rune, domain.MaxCancellationReasonLen+1))
	_, err := Apply(appt, c)
	assert.ErrorIs(t, err, ErrReasonTooLong)

	_, err = Apply(appt, cmd(Event("teleport"), admin, startsAt))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEventForStatus(t *testing.T) {
	tests := []struct {
		status  domain.AppointmentStatus
		actor   domain.Actor
		want    Event
		wantErr error
	}{
		{status: domain.StatusInProgress, actor: doctor, want: EventStart},
		{status: domain.StatusCompleted, actor: doctor, want: EventComplete},
		{status: domain.StatusNoShow, actor: admin, want: EventMarkNoShow},
		{status: domain.StatusCancelled, actor: patient, want: EventCancel},
		{status: domain.StatusCancelled, actor: admin, want: EventForceCancel},
		{status: domain.StatusConfirmed, actor: admin, wantErr: domain.ErrInvalidTransition},
		{status: domain.StatusScheduled, actor: admin, wantErr: domain.ErrInvalidTransition},
		{status: "archived", actor: admin, wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(string(tt.status)+"/"+string(tt.actor.Role), func(t *testing.T) {
			got, err := EventForStatus(tt.status, tt.actor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
