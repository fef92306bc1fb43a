package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-TherapyBookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-TherapyBookingService/internal/lifecycle"
	"github.com/m04kA/SMC-TherapyBookingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-TherapyBookingService/internal/testutil"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/logger"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/ptr"
)

var (
	patient = domain.Actor{ID: domain.UserID{UUID: uuid.New()}, Role: domain.RolePatient}
	doctor  = domain.Actor{ID: domain.UserID{UUID: uuid.New()}, Role: domain.RoleDoctor}
	admin   = domain.Actor{ID: domain.UserID{UUID: uuid.New()}, Role: domain.RoleAdmin}
)

// Запись на 2024-06-10 09:00-10:00 UTC
var sessionStart = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store   *testutil.AppointmentStore
	clock   *testutil.Clock
	metrics *testutil.Metrics
	svc     *Service
}

func newFixture(t *testing.T, repo AppointmentRepository) *fixture {
	t.Helper()
	store := testutil.NewAppointmentStore()
	if repo == nil {
		repo = store
	}
	f := &fixture{
		store:   store,
		clock:   testutil.NewClock(sessionStart.Add(-72 * time.Hour)),
		metrics: testutil.NewMetrics(),
	}
	f.svc = NewService(repo, &testutil.TxManager{Store: store}, time.UTC, f.metrics, logger.Nop()).
		WithTimeProvider(f.clock)
	return f
}

func (f *fixture) put(status domain.AppointmentStatus, payment domain.PaymentStatus) domain.Appointment {
	a := domain.Appointment{
		ID:              domain.NewAppointmentID(),
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		TherapyID:       domain.TherapyID{UUID: uuid.New()},
		Range:           domain.TimeRange{Date: domain.DateOnly(sessionStart), Start: "09:00", End: "10:00"},
		DurationMinutes: 60,
		Status:          status,
		SessionType:     domain.SessionOnline,
		Price:           100,
		Currency:        "USD",
		PaymentStatus:   payment,
	}
	f.store.Put(a)
	return a
}

func TestService_CancelByPatient(t *testing.T) {
	f := newFixture(t, nil)
	appt := f.put(domain.StatusScheduled, domain.PaymentPending)

	resp, err := f.svc.Cancel(context.Background(), appt.ID, &models.CancelRequest{Actor: patient, Reason: "travel"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, "cancelled", resp.PaymentStatus)
	assert.Equal(t, "travel", *resp.CancellationReason)
	assert.Equal(t, "patient", *resp.CancelledBy)

	stored, _ := f.store.Get(appt.ID)
	assert.Equal(t, domain.StatusCancelled, stored.Status)

	events := f.store.Events(appt.ID)
	require.Len(t, events, 1)
	assert.Equal(t, "cancel", events[0].Event)
	assert.Equal(t, domain.StatusScheduled, *events[0].FromStatus)
	assert.Equal(t, domain.StatusCancelled, events[0].ToStatus)
	assert.Equal(t, patient.ID, *events[0].ActorID)

	assert.Equal(t, 1, f.metrics.Transitions["cancel:applied"])
}

func TestService_CancelWindow(t *testing.T) {
	f := newFixture(t, nil)
	appt := f.put(domain.StatusConfirmed, domain.PaymentPaid)
	f.clock.Set(sessionStart.Add(-time.Hour))

	_, err := f.svc.Cancel(context.Background(), appt.ID, &models.CancelRequest{Actor: patient})
	require.ErrorIs(t, err, lifecycle.ErrCancellationWindow)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	msg, ok := domain.PublicMessage(err)
	require.True(t, ok)
	assert.Equal(t, "cannot cancel within 24 hours of appointment", msg)

	stored, _ := f.store.Get(appt.ID)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
	assert.Empty(t, f.store.Events(appt.ID))
	assert.Equal(t, 1, f.metrics.Transitions["cancel:rejected"])

	t.Run("admin bypasses the window and keeps payment", func(t *testing.T) {
		resp, err := f.svc.Cancel(context.Background(), appt.ID, &models.CancelRequest{Actor: admin})
		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		assert.Equal(t, "paid", resp.PaymentStatus)
		assert.Equal(t, "force_cancel", f.store.Events(appt.ID)[0].Event)
	})

	t.Run("second cancel fails", func(t *testing.T) {
		_, err := f.svc.Cancel(context.Background(), appt.ID, &models.CancelRequest{Actor: admin})
		assert.ErrorIs(t, err, lifecycle.ErrTerminalState)
	})
}

func TestService_SessionFlowAndRating(t *testing.T) {
	f := newFixture(t, nil)
	appt := f.put(domain.StatusConfirmed, domain.PaymentPaid)
	ctx := context.Background()

	_, err := f.svc.Rate(ctx, appt.ID, &models.RateRequest{Actor: patient, Rating: 5})
	require.ErrorIs(t, err, lifecycle.ErrNotRateable)

	resp, err := f.svc.UpdateStatus(ctx, appt.ID, &models.UpdateStatusRequest{Actor: doctor, Status: "in_progress"})
	require.NoError(t, err)
	assert.Equal(t, "in_progress", resp.Status)

	resp, err = f.svc.UpdateStatus(ctx, appt.ID, &models.UpdateStatusRequest{
		Actor:       doctor,
		Status:      "completed",
		DoctorNotes: ptr.Ptr("follow up in two weeks"),
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "follow up in two weeks", *resp.DoctorNotes)

	_, err = f.svc.Rate(ctx, appt.ID, &models.RateRequest{Actor: patient, Rating: 5, Feedback: ptr.Ptr("great")})
	require.NoError(t, err)

	got, err := f.svc.GetByID(ctx, appt.ID, patient)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 5, *got.Rating.PatientRating)
	assert.Equal(t, "great", *got.Rating.PatientFeedback)

	_, err = f.svc.Rate(ctx, appt.ID, &models.RateRequest{Actor: patient, Rating: 6})
	assert.ErrorIs(t, err, domain.ErrValidation)

	events := f.store.Events(appt.ID)
	require.Len(t, events, 3)
	assert.Equal(t, "rated", events[2].Event)
}

func TestService_UpdateStatusRejections(t *testing.T) {
	f := newFixture(t, nil)
	appt := f.put(domain.StatusScheduled, domain.PaymentPending)
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, appt.ID, &models.UpdateStatusRequest{Actor: doctor, Status: "confirmed"})
	assert.ErrorIs(t, err, lifecycle.ErrStatusNotSettable)

	_, err = f.svc.UpdateStatus(ctx, appt.ID, &models.UpdateStatusRequest{Actor: doctor, Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.UpdateStatus(ctx, appt.ID, &models.UpdateStatusRequest{Actor: doctor, Status: "in_progress"})
	assert.ErrorIs(t, err, lifecycle.ErrNotConfirmed)

	_, err = f.svc.UpdateStatus(ctx, appt.ID, &models.UpdateStatusRequest{Actor: patient, Status: "no_show"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.UpdateStatus(ctx, domain.NewAppointmentID(), &models.UpdateStatusRequest{Actor: doctor, Status: "no_show"})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

// staleRepo отдает запись в состоянии, которое уже устарело к моменту обновления
type staleRepo struct {
	*testutil.AppointmentStore
}

func (r staleRepo) GetByIDForUpdate(ctx context.Context, id domain.AppointmentID) (*domain.Appointment, error) {
	a, err := r.AppointmentStore.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	stale := *a
	stale.Status = domain.StatusScheduled
	return &stale, nil
}

func TestService_TransitionDetectsConcurrentUpdate(t *testing.T) {
	store := testutil.NewAppointmentStore()
	f := newFixture(t, staleRepo{store})
	f.store = store
	f.svc.txManager = &testutil.TxManager{Store: store}
	appt := f.put(domain.StatusConfirmed, domain.PaymentPaid)

	_, err := f.svc.Cancel(context.Background(), appt.ID, &models.CancelRequest{Actor: patient})
	require.ErrorIs(t, err, appointmentRepo.ErrConcurrentUpdate)
	assert.ErrorIs(t, err, domain.ErrConflict)

	stored, _ := store.Get(appt.ID)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
}

// failingEvents не может записать журнал
type failingEvents struct {
	*testutil.AppointmentStore
}

func (r failingEvents) LogEvent(ctx context.Context, e *domain.AppointmentEvent) error {
	return errors.New("disk full")
}

func TestService_TransitionIsAtomic(t *testing.T) {
	store := testutil.NewAppointmentStore()
	f := newFixture(t, failingEvents{store})
	f.store = store
	f.svc.txManager = &testutil.TxManager{Store: store}
	appt := f.put(domain.StatusScheduled, domain.PaymentPending)

	_, err := f.svc.Cancel(context.Background(), appt.ID, &models.CancelRequest{Actor: patient})
	require.ErrorIs(t, err, ErrInternal)
	assert.Nil(t, domain.KindOf(err))

	stored, _ := store.Get(appt.ID)
	assert.Equal(t, domain.StatusScheduled, stored.Status, "update rolled back with the failed event write")
}

func TestService_StoreUnavailable(t *testing.T) {
	f := newFixture(t, nil)
	appt := f.put(domain.StatusScheduled, domain.PaymentPending)
	f.store.Err = appointmentRepo.ErrStoreUnavailable

	_, err := f.svc.Cancel(context.Background(), appt.ID, &models.CancelRequest{Actor: patient})
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Equal(t, 1, f.metrics.Transitions["cancel:failed"])
}

func TestService_GetByIDAccess(t *testing.T) {
	f := newFixture(t, nil)
	appt := f.put(domain.StatusScheduled, domain.PaymentPending)
	stranger := domain.Actor{ID: domain.UserID{UUID: uuid.New()}, Role: domain.RolePatient}

	_, err := f.svc.GetByID(context.Background(), appt.ID, stranger)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	resp, err := f.svc.GetByID(context.Background(), appt.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, appt.ID.String(), resp.ID)

	_, err = f.svc.GetEvents(context.Background(), appt.ID, stranger)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestService_Lists(t *testing.T) {
	f := newFixture(t, nil)
	active := f.put(domain.StatusScheduled, domain.PaymentPending)
	cancelled := f.put(domain.StatusCancelled, domain.PaymentCancelled)
	cancelled.Range.Start, cancelled.Range.End = "11:00", "12:00"
	f.store.Put(cancelled)
	ctx := context.Background()

	list, err := f.svc.GetPatientAppointments(ctx, &models.ListRequest{Actor: patient, OwnerID: patient.ID})
	require.NoError(t, err)
	require.Len(t, list.Appointments, 1)
	assert.Equal(t, active.ID.String(), list.Appointments[0].ID)

	list, err = f.svc.GetDoctorAppointments(ctx, &models.ListRequest{Actor: doctor, OwnerID: doctor.ID, IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, list.Appointments, 2)

	list, err = f.svc.GetDoctorAppointments(ctx, &models.ListRequest{
		Actor:   admin,
		OwnerID: doctor.ID,
		Status:  ptr.Ptr("cancelled"),
	})
	require.NoError(t, err)
	require.Len(t, list.Appointments, 1)
	assert.Equal(t, cancelled.ID.String(), list.Appointments[0].ID)

	_, err = f.svc.GetPatientAppointments(ctx, &models.ListRequest{Actor: doctor, OwnerID: patient.ID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetDoctorAppointments(ctx, &models.ListRequest{Actor: doctor, OwnerID: doctor.ID, Status: ptr.Ptr("done")})
	assert.ErrorIs(t, err, models.ErrInvalidStatus)

	f.clock.Set(sessionStart.AddDate(0, 0, 1))
	list, err = f.svc.GetPatientAppointments(ctx, &models.ListRequest{Actor: patient, OwnerID: patient.ID, Upcoming: true})
	require.NoError(t, err)
	assert.Empty(t, list.Appointments)
}
