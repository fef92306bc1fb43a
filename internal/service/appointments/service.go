package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-TherapyBookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-TherapyBookingService/internal/lifecycle"
	"github.com/m04kA/SMC-TherapyBookingService/internal/service/appointments/models"
)

// Событие журнала для оценки. Оценка не меняет статус и идет мимо машины состояний.
const eventRated = "rated"

// Service сервис записей: переходы состояний, оценки и чтение
type Service struct {
	repo         AppointmentRepository
	txManager    TransactionManager
	location     *time.Location
	metrics      Metrics
	timeProvider TimeProvider
	tracer       trace.Tracer
	logger       Logger
}

// NewService создает новый экземпляр сервиса записей.
// location часовой пояс, в котором заданы дата и время записей.
func NewService(
	repo AppointmentRepository,
	txManager TransactionManager,
	location *time.Location,
	metrics Metrics,
	logger Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		repo:         repo,
		txManager:    txManager,
		location:     location,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		tracer:       otel.Tracer("appointments"),
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Transition загружает запись под блокировкой, применяет событие и сохраняет
// результат одной транзакцией. Now и Location команды заполняются сервисом.
func (s *Service) Transition(ctx context.Context, id domain.AppointmentID, cmd lifecycle.Command) (*domain.Appointment, error) {
	ctx, span := s.tracer.Start(ctx, "appointments.Transition", trace.WithAttributes(
		attribute.String("appointment.id", id.String()),
		attribute.String("appointment.event", cmd.Event.String()),
		attribute.String("actor.role", string(cmd.Actor.Role)),
	))
	defer span.End()

	s.logger.Info("Transition: appointment=%s, event=%s, actor=%s:%s", id, cmd.Event, cmd.Actor.Role, cmd.Actor.ID)

	cmd.Now = s.timeProvider.Now()
	cmd.Location = s.location

	result, err := s.mutate(ctx, id, cmd.Event.String(), cmd.Actor, func(current domain.Appointment) (domain.Appointment, error) {
		return lifecycle.Apply(current, cmd)
	})
	s.observe(cmd.Event.String(), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.logger.Info("Transition: appointment=%s is now status=%s, payment=%s", id, result.Status, result.PaymentStatus)
	return result, nil
}

// Cancel отменяет запись. Администратор отменяет без ограничения по времени.
func (s *Service) Cancel(ctx context.Context, id domain.AppointmentID, req *models.CancelRequest) (*models.AppointmentResponse, error) {
	event := lifecycle.EventCancel
	if req.Actor.IsAdmin() {
		event = lifecycle.EventForceCancel
	}

	appt, err := s.Transition(ctx, id, lifecycle.Command{
		Event:  event,
		Actor:  req.Actor,
		Reason: req.Reason,
	})
	if err != nil {
		return nil, err
	}
	return models.FromDomainAppointment(appt), nil
}

// UpdateStatus переводит запись в запрошенный статус
func (s *Service) UpdateStatus(ctx context.Context, id domain.AppointmentID, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	event, err := lifecycle.EventForStatus(domain.AppointmentStatus(req.Status), req.Actor)
	if err != nil {
		s.logger.Warn("UpdateStatus: appointment=%s, status=%s rejected: %v", id, req.Status, err)
		return nil, err
	}

	appt, err := s.Transition(ctx, id, lifecycle.Command{
		Event:       event,
		Actor:       req.Actor,
		DoctorNotes: req.DoctorNotes,
	})
	if err != nil {
		return nil, err
	}
	return models.FromDomainAppointment(appt), nil
}

// Rate сохраняет оценку пациента или врача после завершения сессии
func (s *Service) Rate(ctx context.Context, id domain.AppointmentID, req *models.RateRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Rate: appointment=%s, rating=%d by %s:%s", id, req.Rating, req.Actor.Role, req.Actor.ID)

	now := s.timeProvider.Now()
	appt, err := s.mutate(ctx, id, eventRated, req.Actor, func(current domain.Appointment) (domain.Appointment, error) {
		return lifecycle.Rate(current, req.Actor, req.Rating, req.Feedback, now)
	})
	s.observe(eventRated, err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Rate: successfully rated appointment=%s", id)
	return models.FromDomainAppointment(appt), nil
}

// GetByID возвращает запись участнику или администратору
func (s *Service) GetByID(ctx context.Context, id domain.AppointmentID, actor domain.Actor) (*models.AppointmentResponse, error) {
	appt, err := s.load(ctx, "GetByID", id, actor)
	if err != nil {
		return nil, err
	}
	return models.FromDomainAppointment(appt), nil
}

// GetEvents возвращает журнал изменений записи
func (s *Service) GetEvents(ctx context.Context, id domain.AppointmentID, actor domain.Actor) ([]*domain.AppointmentEvent, error) {
	if _, err := s.load(ctx, "GetEvents", id, actor); err != nil {
		return nil, err
	}

	events, err := s.repo.GetEvents(ctx, id)
	if err != nil {
		s.logger.Error("GetEvents: repository error for appointment=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetEvents - repository error: %w", ErrInternal, err)
	}
	return events, nil
}

// GetPatientAppointments записи пациента. Доступно самому пациенту и администратору.
func (s *Service) GetPatientAppointments(ctx context.Context, req *models.ListRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetPatientAppointments: patient=%s by %s:%s", req.OwnerID, req.Actor.Role, req.Actor.ID)

	if !req.Actor.IsAdmin() && !(req.Actor.Role == domain.RolePatient && req.Actor.ID == req.OwnerID) {
		s.logger.Warn("GetPatientAppointments: access denied for %s:%s", req.Actor.Role, req.Actor.ID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter(s.timeProvider.Now().In(s.location))
	if err != nil {
		return nil, err
	}

	list, err := s.repo.GetByPatientID(ctx, req.OwnerID, filter)
	if err != nil {
		s.logger.Error("GetPatientAppointments: repository error for patient=%s: %v", req.OwnerID, err)
		return nil, fmt.Errorf("%w: GetPatientAppointments - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("GetPatientAppointments: fetched %d appointments for patient=%s", len(list), req.OwnerID)
	return models.FromDomainAppointmentList(list), nil
}

// GetDoctorAppointments записи врача. Доступно самому врачу и администратору.
func (s *Service) GetDoctorAppointments(ctx context.Context, req *models.ListRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetDoctorAppointments: doctor=%s by %s:%s", req.OwnerID, req.Actor.Role, req.Actor.ID)

	if !req.Actor.IsAdmin() && !(req.Actor.Role == domain.RoleDoctor && req.Actor.ID == req.OwnerID) {
		s.logger.Warn("GetDoctorAppointments: access denied for %s:%s", req.Actor.Role, req.Actor.ID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter(s.timeProvider.Now().In(s.location))
	if err != nil {
		return nil, err
	}

	list, err := s.repo.GetByDoctorID(ctx, req.OwnerID, filter)
	if err != nil {
		s.logger.Error("GetDoctorAppointments: repository error for doctor=%s: %v", req.OwnerID, err)
		return nil, fmt.Errorf("%w: GetDoctorAppointments - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("GetDoctorAppointments: fetched %d appointments for doctor=%s", len(list), req.OwnerID)
	return models.FromDomainAppointmentList(list), nil
}

// mutate читает запись с блокировкой строки, вычисляет новое состояние и
// сохраняет его с проверкой, что статусы не изменились после чтения.
func (s *Service) mutate(
	ctx context.Context,
	id domain.AppointmentID,
	event string,
	actor domain.Actor,
	fn func(current domain.Appointment) (domain.Appointment, error),
) (*domain.Appointment, error) {
	var result *domain.Appointment

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				s.logger.Warn("%s: appointment=%s not found", event, id)
				return ErrAppointmentNotFound
			}
			s.logger.Error("%s: failed to load appointment=%s: %v", event, id, err)
			return fmt.Errorf("%w: %s - load appointment: %w", ErrInternal, event, err)
		}

		next, err := fn(*current)
		if err != nil {
			s.logger.Warn("%s: appointment=%s rejected, status=%s, payment=%s: %v",
				event, id, current.Status, current.PaymentStatus, err)
			return err
		}

		if err := s.repo.Update(txCtx, &next, current.Status, current.PaymentStatus); err != nil {
			if errors.Is(err, appointmentRepo.ErrConcurrentUpdate) {
				s.logger.Warn("%s: appointment=%s modified concurrently", event, id)
				return err
			}
			s.logger.Error("%s: failed to update appointment=%s: %v", event, id, err)
			return fmt.Errorf("%w: %s - update appointment: %w", ErrInternal, event, err)
		}

		if err := s.repo.LogEvent(txCtx, domain.NewAppointmentEvent(event, current, &next, actor)); err != nil {
			s.logger.Error("%s: failed to log event for appointment=%s: %v", event, id, err)
			return fmt.Errorf("%w: %s - log event: %w", ErrInternal, event, err)
		}

		result = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Service) load(ctx context.Context, op string, id domain.AppointmentID, actor domain.Actor) (*domain.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment=%s not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}

	if !lifecycle.CanView(appt, actor) {
		s.logger.Warn("%s: access denied for %s:%s to appointment=%s", op, actor.Role, actor.ID, id)
		return nil, ErrAccessDenied
	}

	return appt, nil
}

func (s *Service) observe(event string, err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case err == nil:
		s.metrics.IncTransition(event, outcomeApplied)
	case domain.KindOf(err) != nil && !errors.Is(err, domain.ErrUnavailable):
		s.metrics.IncTransition(event, outcomeRejected)
	default:
		s.metrics.IncTransition(event, outcomeFailed)
	}
}
