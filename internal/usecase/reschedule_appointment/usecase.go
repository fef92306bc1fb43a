package reschedule_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-TherapyBookingService/internal/calendar"
	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-TherapyBookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-TherapyBookingService/internal/lifecycle"
	"github.com/m04kA/SMC-TherapyBookingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/txmanager"
)

// События журнала
const (
	eventRescheduled = "rescheduled"
	eventBooked      = "booked"
)

// UseCase use case для переноса записи на другое время
type UseCase struct {
	appointmentRepo AppointmentRepository
	workingHours    WorkingHoursProvider
	locker          Locker
	txManager       TransactionManager
	location        *time.Location
	metrics         Metrics
	timeProvider    TimeProvider
	tracer          trace.Tracer
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	workingHours WorkingHoursProvider,
	locker Locker,
	txManager TransactionManager,
	location *time.Location,
	metrics Metrics,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		appointmentRepo: appointmentRepo,
		workingHours:    workingHours,
		locker:          locker,
		txManager:       txManager,
		location:        location,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		tracer:          otel.Tracer("reschedule_appointment"),
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute переносит запись: создает новую на указанное время и закрывает старую.
// Обе записи изменяются в одной транзакции.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*models.AppointmentResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "reschedule_appointment.Execute", trace.WithAttributes(
		attribute.String("appointment.id", req.AppointmentID.String()),
		attribute.String("appointment.date", req.Date.Format(domain.DateFormat)),
	))
	defer span.End()

	created, err := uc.execute(ctx, req)
	uc.observe(err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("appointment.rescheduled_to", created.ID.String()))
	return models.FromDomainAppointment(created), nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*domain.Appointment, error) {
	uc.logger.Info("RescheduleAppointment: appointment=%s, actor=%s:%s, date=%s, time=%s-%s",
		req.AppointmentID, req.Actor.Role, req.Actor.ID, req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed: %v", err)
		return nil, err
	}

	timeRange, err := domain.NewTimeRange(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		uc.logger.Warn("RescheduleAppointment: invalid time range: %v", err)
		return nil, err
	}
	if err := validateDuration(timeRange); err != nil {
		uc.logger.Warn("RescheduleAppointment: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	if !timeRange.StartInstant(uc.location).After(now) {
		uc.logger.Warn("RescheduleAppointment: start %s is not in the future", timeRange)
		return nil, ErrStartInPast
	}

	// 2. Текущая запись нужна для ключа блокировки
	current, err := uc.appointmentRepo.GetByID(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("RescheduleAppointment: appointment=%s not found", req.AppointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("RescheduleAppointment: failed to get appointment=%s: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %w", ErrInternal, err)
	}
	if current.Range == timeRange {
		return nil, ErrSameTime
	}

	// 3. Блокировка календаря врача на новую дату
	release, err := uc.locker.Acquire(ctx, lock.DoctorDayKey(current.DoctorID, timeRange.Date))
	if err != nil {
		uc.logger.Warn("RescheduleAppointment: failed to lock calendar of doctor=%s on %s: %v",
			current.DoctorID, timeRange.Date.Format(domain.DateFormat), err)
		return nil, err
	}
	defer release()

	var result *domain.Appointment

	// 4. Закрытие старой записи и создание новой в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		old, err := uc.appointmentRepo.GetByIDForUpdate(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: failed to lock appointment: %w", ErrInternal, err)
		}

		newID := domain.NewAppointmentID()
		closed, err := lifecycle.Reschedule(*old, req.Actor, newID, now, uc.location)
		if err != nil {
			uc.logger.Warn("RescheduleAppointment: appointment=%s rejected: %v", old.ID, err)
			return err
		}

		wh, err := uc.workingHours.GetWorkingHours(txCtx, old.DoctorID)
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to get working hours: %v", err)
			return fmt.Errorf("%w: failed to get working hours: %w", ErrInternal, err)
		}

		existing, err := uc.appointmentRepo.FindByDoctorAndDate(txCtx, old.DoctorID, timeRange.Date, false)
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to get appointments: %v", err)
			return fmt.Errorf("%w: failed to get appointments: %w", ErrInternal, err)
		}

		cal := calendar.New(timeRange.Date, wh.BlocksOn(timeRange.Date), withoutAppointment(existing, old.ID))
		if cal.HasConflict(timeRange) {
			uc.logger.Warn("RescheduleAppointment: %s overlaps an appointment of doctor=%s", timeRange, old.DoctorID)
			return ErrSlotNotAvailable
		}
		if !cal.WithinWorkingHours(timeRange) {
			uc.logger.Warn("RescheduleAppointment: %s is outside working hours of doctor=%s", timeRange, old.DoctorID)
			return ErrOutsideWorkingHours
		}

		// Старая запись освобождает время до вставки новой, иначе сработает exclusion constraint
		if err := uc.appointmentRepo.Update(txCtx, &closed, old.Status, old.PaymentStatus); err != nil {
			if errors.Is(err, appointmentRepo.ErrConcurrentUpdate) {
				return err
			}
			uc.logger.Error("RescheduleAppointment: failed to close appointment=%s: %v", old.ID, err)
			return fmt.Errorf("%w: failed to close appointment: %w", ErrInternal, err)
		}

		created, err := uc.appointmentRepo.Create(txCtx, successor(old, newID, timeRange))
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrSlotTaken) {
				return ErrSlotNotAvailable
			}
			uc.logger.Error("RescheduleAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %w", ErrInternal, err)
		}

		if err := uc.appointmentRepo.LogEvent(txCtx, domain.NewAppointmentEvent(eventRescheduled, old, &closed, req.Actor)); err != nil {
			return fmt.Errorf("%w: failed to log event: %w", ErrInternal, err)
		}
		if err := uc.appointmentRepo.LogEvent(txCtx, domain.NewAppointmentEvent(eventBooked, nil, created, req.Actor)); err != nil {
			return fmt.Errorf("%w: failed to log event: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrRetriesExhausted) {
			uc.logger.Warn("RescheduleAppointment: serialization retries exhausted: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrScheduleBusy, err)
		}
		return nil, err
	}

	uc.logger.Info("RescheduleAppointment: appointment=%s moved to id=%s", req.AppointmentID, result.ID)
	return result, nil
}

// successor новая запись с теми же участниками, терапией и ценой
func successor(old *domain.Appointment, id domain.AppointmentID, r domain.TimeRange) *domain.Appointment {
	from := old.ID
	return &domain.Appointment{
		ID:              id,
		PatientID:       old.PatientID,
		DoctorID:        old.DoctorID,
		TherapyID:       old.TherapyID,
		Range:           r,
		DurationMinutes: r.DurationMinutes(),
		Status:          domain.StatusScheduled,
		SessionType:     old.SessionType,
		Price:           old.Price,
		Currency:        old.Currency,
		PaymentStatus:   domain.PaymentPending,
		Notes:           old.Notes,
		PatientNotes:    old.PatientNotes,
		RescheduledFrom: &from,
	}
}

func withoutAppointment(appts []*domain.Appointment, id domain.AppointmentID) []*domain.Appointment {
	out := make([]*domain.Appointment, 0, len(appts))
	for _, a := range appts {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}

func (uc *UseCase) observe(err error) {
	if uc.metrics == nil {
		return
	}
	switch {
	case err == nil:
		uc.metrics.IncTransition(eventRescheduled, outcomeApplied)
	case domain.KindOf(err) != nil && !errors.Is(err, domain.ErrUnavailable):
		uc.metrics.IncTransition(eventRescheduled, outcomeRejected)
	default:
		uc.metrics.IncTransition(eventRescheduled, outcomeFailed)
	}
}
