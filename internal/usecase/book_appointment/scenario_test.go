package book_appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/internal/lifecycle"
	"github.com/m04kA/SMC-TherapyBookingService/internal/service/appointments"
	"github.com/m04kA/SMC-TherapyBookingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-TherapyBookingService/internal/service/payments"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/logger"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/ptr"
)

// Запись, конфликт, оплата через вебхук и отмена внутри окна
func TestBookPayCancelFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	second := f.addPatient()
	appts := appointments.NewService(f.store, f.tx, time.UTC, f.metrics, logger.Nop()).WithTimeProvider(f.clock)
	pays := payments.NewService(f.store, appts, f.metrics, logger.Nop())

	booked, err := f.uc.Execute(ctx, f.request(f.patient.ID, "09:00", "10:00"))
	require.NoError(t, err)
	id, err := domain.ParseAppointmentID(booked.ID)
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, f.request(second, "09:30", "10:30"))
	require.ErrorIs(t, err, domain.ErrConflict)

	patient := domain.Actor{ID: f.patient.ID, Role: domain.RolePatient}
	_, err = pays.AttachPaymentRef(ctx, id, patient, "pi_flow", ptr.Ptr("card"))
	require.NoError(t, err)

	paid, err := pays.OnPaymentSucceeded(ctx, "pi_flow")
	require.NoError(t, err)
	assert.Equal(t, "confirmed", paid.Status)
	assert.Equal(t, "paid", paid.PaymentStatus)

	// За час до начала пациент уже не может отменить
	f.clock.Set(time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC))
	_, err = appts.Cancel(ctx, id, &models.CancelRequest{Actor: patient, Reason: "sick"})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	require.ErrorIs(t, err, lifecycle.ErrCancellationWindow)

	admin := domain.Actor{ID: domain.UserID{UUID: uuid.New()}, Role: domain.RoleAdmin}
	cancelled, err := appts.Cancel(ctx, id, &models.CancelRequest{Actor: admin, Reason: "doctor sick"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, "paid", cancelled.PaymentStatus)

	events := f.store.Events(id)
	require.Len(t, events, 3)
	assert.Equal(t, "booked", events[0].Event)
	assert.Equal(t, domain.StatusConfirmed, events[1].ToStatus)
	assert.Equal(t, domain.StatusCancelled, events[2].ToStatus)

	// Освободившийся интервал снова доступен
	f.clock.Set(time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC))
	_, err = f.uc.Execute(ctx, f.request(second, "09:30", "10:30"))
	assert.NoError(t, err)
	_, err = f.uc.Execute(ctx, f.request(f.patient.ID, "09:00", "10:00"))
	assert.ErrorIs(t, err, domain.ErrConflict)
}
