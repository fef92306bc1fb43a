package payments

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-TherapyBookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-TherapyBookingService/internal/lifecycle"
	"github.com/m04kA/SMC-TherapyBookingService/internal/service/appointments/models"
)

// Типы событий платежного провайдера
const (
	EventTypePaymentSucceeded = "payment.succeeded"
	EventTypePaymentFailed    = "payment.failed"
	EventTypeRefundIssued     = "refund.issued"
)

const maxPaymentRefLength = 255

// Исходы обработки webhook для метрик
const (
	outcomeApplied  = "applied"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// Service связывает платежного провайдера с жизненным циклом записи
type Service struct {
	repo        AppointmentRepository
	transitions Transitioner
	metrics     Metrics
	tracer      trace.Tracer
	logger      Logger
}

// NewService создает новый экземпляр платежного сервиса
func NewService(repo AppointmentRepository, transitions Transitioner, metrics Metrics, logger Logger) *Service {
	return &Service{
		repo:        repo,
		transitions: transitions,
		metrics:     metrics,
		tracer:      otel.Tracer("payments"),
		logger:      logger,
	}
}

// AttachPaymentRef сохраняет ссылку платежа перед оплатой
func (s *Service) AttachPaymentRef(ctx context.Context, id domain.AppointmentID, actor domain.Actor, ref string, method *string) (*models.AppointmentResponse, error) {
	s.logger.Info("AttachPaymentRef: appointment=%s by %s:%s", id, actor.Role, actor.ID)

	if ref == "" || len(ref) > maxPaymentRefLength {
		return nil, ErrInvalidPaymentRef
	}

	appt, err := s.load(ctx, "AttachPaymentRef", id)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && !(actor.Role == domain.RolePatient && actor.ID == appt.PatientID) {
		s.logger.Warn("AttachPaymentRef: access denied for %s:%s to appointment=%s", actor.Role, actor.ID, id)
		return nil, ErrAccessDenied
	}

	switch {
	case appt.IsTerminal():
		return nil, lifecycle.ErrTerminalState
	case appt.PaymentStatus == domain.PaymentPaid:
		return nil, lifecycle.ErrAlreadyPaid
	case appt.PaymentStatus != domain.PaymentPending && appt.PaymentStatus != domain.PaymentFailed:
		return nil, lifecycle.ErrPaymentNotPending
	case appt.PaymentStatus == domain.PaymentPending && appt.PaymentRef != nil && *appt.PaymentRef != ref:
		s.logger.Warn("AttachPaymentRef: appointment=%s already has pending payment ref=%s", id, *appt.PaymentRef)
		return nil, ErrPaymentRefAttached
	}

	if err := s.repo.SetPaymentRef(ctx, id, ref, method); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.logger.Warn("AttachPaymentRef: conflict for appointment=%s: %v", id, err)
			return nil, err
		}
		s.logger.Error("AttachPaymentRef: repository error for appointment=%s: %v", id, err)
		return nil, fmt.Errorf("%w: AttachPaymentRef - repository error: %w", ErrInternal, err)
	}

	appt.PaymentRef = &ref
	appt.PaymentMethod = method

	s.logger.Info("AttachPaymentRef: payment reference attached to appointment=%s", id)
	return models.FromDomainAppointment(appt), nil
}

// OnPaymentSucceeded оплата получена: запись подтверждается
func (s *Service) OnPaymentSucceeded(ctx context.Context, ref string) (*models.AppointmentResponse, error) {
	return s.handle(ctx, EventTypePaymentSucceeded, ref, lifecycle.EventPaymentSucceeded)
}

// OnPaymentFailed оплата не прошла
func (s *Service) OnPaymentFailed(ctx context.Context, ref string) (*models.AppointmentResponse, error) {
	return s.handle(ctx, EventTypePaymentFailed, ref, lifecycle.EventPaymentFailed)
}

// OnRefundIssued провайдер вернул оплату
func (s *Service) OnRefundIssued(ctx context.Context, ref string) (*models.AppointmentResponse, error) {
	return s.handle(ctx, EventTypeRefundIssued, ref, lifecycle.EventRefundIssued)
}

// HandleEvent разбирает тип события провайдера
func (s *Service) HandleEvent(ctx context.Context, eventType, ref string) (*models.AppointmentResponse, error) {
	switch eventType {
	case EventTypePaymentSucceeded:
		return s.OnPaymentSucceeded(ctx, ref)
	case EventTypePaymentFailed:
		return s.OnPaymentFailed(ctx, ref)
	case EventTypeRefundIssued:
		return s.OnRefundIssued(ctx, ref)
	}
	s.logger.Warn("HandleEvent: unknown event type=%q", eventType)
	s.observe("unknown", ErrUnknownEventType)
	return nil, ErrUnknownEventType
}

// Refund возврат оплаты по инициативе администратора
func (s *Service) Refund(ctx context.Context, id domain.AppointmentID, actor domain.Actor) (*models.AppointmentResponse, error) {
	s.logger.Info("Refund: appointment=%s by %s:%s", id, actor.Role, actor.ID)

	appt, err := s.transitions.Transition(ctx, id, lifecycle.Command{
		Event: lifecycle.EventRefundIssued,
		Actor: actor,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Refund: appointment=%s refunded", id)
	return models.FromDomainAppointment(appt), nil
}

func (s *Service) handle(ctx context.Context, eventType, ref string, event lifecycle.Event) (*models.AppointmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "payments.Webhook", trace.WithAttributes(
		attribute.String("payment.event", eventType),
	))
	defer span.End()

	s.logger.Info("Webhook: event=%s, ref=%s", eventType, ref)

	appt, err := s.apply(ctx, ref, event)
	s.observe(eventType, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("appointment.id", appt.ID.String()))
	s.logger.Info("Webhook: event=%s applied to appointment=%s, status=%s, payment=%s",
		eventType, appt.ID, appt.Status, appt.PaymentStatus)
	return models.FromDomainAppointment(appt), nil
}

func (s *Service) apply(ctx context.Context, ref string, event lifecycle.Event) (*domain.Appointment, error) {
	if ref == "" || len(ref) > maxPaymentRefLength {
		return nil, ErrInvalidPaymentRef
	}

	appt, err := s.repo.GetByPaymentRef(ctx, ref)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Webhook: no appointment for ref=%s", ref)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("Webhook: repository error for ref=%s: %v", ref, err)
		return nil, fmt.Errorf("%w: Webhook - repository error: %w", ErrInternal, err)
	}

	return s.transitions.Transition(ctx, appt.ID, lifecycle.Command{
		Event: event,
		Actor: domain.SystemActor(),
	})
}

func (s *Service) load(ctx context.Context, op string, id domain.AppointmentID) (*domain.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment=%s not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return appt, nil
}

func (s *Service) observe(eventType string, err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case err == nil:
		s.metrics.IncWebhookEvent(eventType, outcomeApplied)
	case domain.KindOf(err) != nil && !errors.Is(err, domain.ErrUnavailable):
		s.metrics.IncWebhookEvent(eventType, outcomeRejected)
	default:
		s.metrics.IncWebhookEvent(eventType, outcomeFailed)
	}
}
