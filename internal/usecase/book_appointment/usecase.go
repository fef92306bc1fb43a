package book_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-TherapyBookingService/internal/calendar"
	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-TherapyBookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-TherapyBookingService/internal/integrations/identity"
	"github.com/m04kA/SMC-TherapyBookingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/txmanager"
)

// Событие журнала при создании записи
const eventBooked = "booked"

// UseCase use case для записи пациента на приём
type UseCase struct {
	appointmentRepo AppointmentRepository
	workingHours    WorkingHoursProvider
	identity        IdentityClient
	therapyCatalog  TherapyCatalogClient
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
	identity IdentityClient,
	therapyCatalog TherapyCatalogClient,
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
		identity:        identity,
		therapyCatalog:  therapyCatalog,
		locker:          locker,
		txManager:       txManager,
		location:        location,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		tracer:          otel.Tracer("book_appointment"),
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case записи на приём.
// Проверка свободного времени и вставка идут под блокировкой календаря врача
// на дату и в сериализуемой транзакции.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*models.AppointmentResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "book_appointment.Execute", trace.WithAttributes(
		attribute.String("doctor.id", req.DoctorID.String()),
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

	span.SetAttributes(attribute.String("appointment.id", created.ID.String()))
	return models.FromDomainAppointment(created), nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*domain.Appointment, error) {
	uc.logger.Info("BookAppointment: patient=%s, doctor=%s, therapy=%s, date=%s, time=%s-%s, session=%s",
		req.Actor.ID, req.DoctorID, req.TherapyID, req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime, req.SessionType)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Интервал
	timeRange, err := domain.NewTimeRange(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		uc.logger.Warn("BookAppointment: invalid time range: %v", err)
		return nil, err
	}

	// 3. Пациент, врач и терапия запрашиваются параллельно
	therapy, err := uc.lookup(ctx, req)
	if err != nil {
		return nil, err
	}

	// 4. Длительность и время начала
	duration := durationFor(req, timeRange)
	if err := validateDuration(duration); err != nil {
		uc.logger.Warn("BookAppointment: %v", err)
		return nil, err
	}
	if err := domain.ValidateTiming(timeRange, duration); err != nil {
		uc.logger.Warn("BookAppointment: timing validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	if !timeRange.StartInstant(uc.location).After(now) {
		uc.logger.Warn("BookAppointment: start %s is not in the future", timeRange)
		return nil, ErrStartInPast
	}

	// 5. Блокировка календаря врача на дату
	release, err := uc.locker.Acquire(ctx, lock.DoctorDayKey(req.DoctorID, timeRange.Date))
	if err != nil {
		uc.logger.Warn("BookAppointment: failed to lock calendar of doctor=%s on %s: %v",
			req.DoctorID, timeRange.Date.Format(domain.DateFormat), err)
		return nil, err
	}
	defer release()

	var result *domain.Appointment

	// 6. Проверка и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 6.1. Шаблон рабочих часов
		wh, err := uc.workingHours.GetWorkingHours(txCtx, req.DoctorID)
		if err != nil {
			uc.logger.Error("BookAppointment: failed to get working hours: %v", err)
			return fmt.Errorf("%w: failed to get working hours: %w", ErrInternal, err)
		}

		// 6.2. Активные записи врача на дату с блокировкой строк
		existing, err := uc.appointmentRepo.FindByDoctorAndDate(txCtx, req.DoctorID, timeRange.Date, false)
		if err != nil {
			uc.logger.Error("BookAppointment: failed to get appointments: %v", err)
			return fmt.Errorf("%w: failed to get appointments: %w", ErrInternal, err)
		}

		// 6.3. Проверка по календарю: пересечение важнее выхода за рабочие часы
		cal := calendar.New(timeRange.Date, wh.BlocksOn(timeRange.Date), existing)
		if cal.HasConflict(timeRange) {
			uc.logger.Warn("BookAppointment: %s overlaps an appointment of doctor=%s", timeRange, req.DoctorID)
			return ErrSlotNotAvailable
		}
		if !cal.WithinWorkingHours(timeRange) {
			uc.logger.Warn("BookAppointment: %s is outside working hours of doctor=%s", timeRange, req.DoctorID)
			return ErrOutsideWorkingHours
		}

		// 6.4. Создаем запись со снимком цены терапии
		appt := &domain.Appointment{
			ID:              domain.NewAppointmentID(),
			PatientID:       req.Actor.ID,
			DoctorID:        req.DoctorID,
			TherapyID:       req.TherapyID,
			Range:           timeRange,
			DurationMinutes: duration,
			Status:          domain.StatusScheduled,
			SessionType:     req.SessionType,
			Price:           therapy.Price,
			Currency:        therapy.Currency,
			PaymentStatus:   domain.PaymentPending,
			Notes:           req.Notes,
			PatientNotes:    req.PatientNotes,
		}

		created, err := uc.appointmentRepo.Create(txCtx, appt)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrSlotTaken) {
				uc.logger.Warn("BookAppointment: exclusion constraint rejected %s for doctor=%s", timeRange, req.DoctorID)
				return ErrSlotNotAvailable
			}
			uc.logger.Error("BookAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %w", ErrInternal, err)
		}

		// 6.5. Журнал
		if err := uc.appointmentRepo.LogEvent(txCtx, domain.NewAppointmentEvent(eventBooked, nil, created, req.Actor)); err != nil {
			uc.logger.Error("BookAppointment: failed to log event: %v", err)
			return fmt.Errorf("%w: failed to log event: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrRetriesExhausted) {
			uc.logger.Warn("BookAppointment: serialization retries exhausted: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrScheduleBusy, err)
		}
		return nil, err
	}

	uc.logger.Info("BookAppointment: successfully created appointment id=%s", result.ID)
	return result, nil
}

// lookup проверяет пациента, врача и терапию. Запросы идут параллельно,
// ошибка выбирается в фиксированном порядке: пациент, врач, терапия.
func (uc *UseCase) lookup(ctx context.Context, req *Request) (*domain.Therapy, error) {
	var therapy *domain.Therapy
	var patientErr, doctorErr, therapyErr error

	var g errgroup.Group

	g.Go(func() error {
		patientErr = uc.checkPatient(ctx, req.Actor.ID)
		return nil
	})

	g.Go(func() error {
		doctorErr = uc.checkDoctor(ctx, req.DoctorID)
		return nil
	})

	g.Go(func() error {
		therapy, therapyErr = uc.fetchTherapy(ctx, req.TherapyID)
		return nil
	})

	_ = g.Wait()

	if patientErr != nil {
		return nil, patientErr
	}
	if doctorErr != nil {
		return nil, doctorErr
	}
	if therapyErr != nil {
		return nil, therapyErr
	}

	if err := validateTherapy(therapy, req.DoctorID, req.SessionType); err != nil {
		uc.logger.Warn("BookAppointment: therapy=%s rejected: %v", req.TherapyID, err)
		return nil, err
	}
	return therapy, nil
}

func (uc *UseCase) checkPatient(ctx context.Context, patientID domain.UserID) error {
	patient, err := uc.identity.GetUser(ctx, patientID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			uc.logger.Warn("BookAppointment: patient=%s not found", patientID)
			return ErrPatientNotAllowed
		}
		uc.logger.Error("BookAppointment: failed to get patient=%s: %v", patientID, err)
		return fmt.Errorf("%w: failed to get patient: %w", ErrInternal, err)
	}
	if patient.Role != domain.RolePatient || !patient.IsActive {
		uc.logger.Warn("BookAppointment: user=%s is not an active patient", patientID)
		return ErrPatientNotAllowed
	}
	return nil
}

func (uc *UseCase) checkDoctor(ctx context.Context, doctorID domain.UserID) error {
	doctor, err := uc.identity.GetUser(ctx, doctorID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			uc.logger.Warn("BookAppointment: doctor=%s not found", doctorID)
			return ErrDoctorNotFound
		}
		uc.logger.Error("BookAppointment: failed to get doctor=%s: %v", doctorID, err)
		return fmt.Errorf("%w: failed to get doctor: %w", ErrInternal, err)
	}
	if doctor.Role != domain.RoleDoctor || !doctor.IsActive {
		uc.logger.Warn("BookAppointment: user=%s is not an active doctor", doctorID)
		return ErrDoctorNotFound
	}
	return nil
}

func (uc *UseCase) fetchTherapy(ctx context.Context, therapyID domain.TherapyID) (*domain.Therapy, error) {
	t, err := uc.therapyCatalog.GetTherapy(ctx, therapyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn("BookAppointment: therapy=%s not found", therapyID)
			return nil, ErrTherapyNotFound
		}
		uc.logger.Error("BookAppointment: failed to get therapy=%s: %v", therapyID, err)
		return nil, fmt.Errorf("%w: failed to get therapy: %w", ErrInternal, err)
	}
	return t, nil
}

func (uc *UseCase) observe(err error) {
	if uc.metrics == nil {
		return
	}
	switch {
	case err == nil:
		uc.metrics.IncBooking(outcomeCreated)
	case errors.Is(err, domain.ErrConflict):
		uc.metrics.IncBooking(outcomeConflict)
	case errors.Is(err, domain.ErrUnavailable):
		uc.metrics.IncBooking(outcomeUnavailable)
	case domain.KindOf(err) != nil:
		uc.metrics.IncBooking(outcomeRejected)
	default:
		uc.metrics.IncBooking(outcomeFailed)
	}
}
