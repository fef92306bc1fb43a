package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/internal/calendar"
	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/internal/integrations/identity"
)

// UseCase use case для получения свободных слотов врача на дату
type UseCase struct {
	appointmentRepo    AppointmentRepository
	workingHours       WorkingHoursProvider
	identity           IdentityClient
	defaultGranularity int
	location           *time.Location
	timeProvider       TimeProvider
	logger             Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	workingHours WorkingHoursProvider,
	identity IdentityClient,
	defaultGranularity int,
	location *time.Location,
	logger Logger,
) *UseCase {
	if defaultGranularity <= 0 {
		defaultGranularity = domain.DefaultSlotGranularityMinutes
	}
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		appointmentRepo:    appointmentRepo,
		workingHours:       workingHours,
		identity:           identity,
		defaultGranularity: defaultGranularity,
		location:           location,
		timeProvider:       &RealTimeProvider{},
		logger:             logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения свободных слотов.
// Результат отражает записи на момент запроса и не резервирует время.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: doctor=%s, date=%s, granularity=%d",
		req.DoctorID, req.Date.Format(domain.DateFormat), req.GranularityMinutes)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	granularity := req.GranularityMinutes
	if granularity == 0 {
		granularity = uc.defaultGranularity
	}

	date := domain.DateOnly(req.Date)
	resp := &Response{
		DoctorID:           req.DoctorID,
		Date:               date,
		GranularityMinutes: granularity,
		Slots:              []Slot{},
	}

	// 2. Проверяем врача
	doctor, err := uc.identity.GetUser(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			uc.logger.Warn("GetAvailableSlots: doctor=%s not found", req.DoctorID)
			return nil, ErrDoctorNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get doctor=%s: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to get doctor: %w", ErrInternal, err)
	}
	if doctor.Role != domain.RoleDoctor || !doctor.IsActive {
		uc.logger.Warn("GetAvailableSlots: user=%s is not an active doctor", req.DoctorID)
		return nil, ErrDoctorNotFound
	}

	// 3. Прошедшие даты не имеют слотов
	now := uc.timeProvider.Now()
	if isDateInPast(date, now, uc.location) {
		uc.logger.Info("GetAvailableSlots: date %s is in the past", date.Format(domain.DateFormat))
		return resp, nil
	}

	// 4. Рабочие часы
	wh, err := uc.workingHours.GetWorkingHours(ctx, req.DoctorID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get working hours: %v", err)
		return nil, fmt.Errorf("%w: failed to get working hours: %w", ErrInternal, err)
	}

	// 5. Записи, занимающие время врача
	existing, err := uc.appointmentRepo.FindByDoctorAndDate(ctx, req.DoctorID, date, false)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %w", ErrInternal, err)
	}

	// 6. Свободные слоты
	cal := calendar.New(date, wh.BlocksOn(date), existing)
	resp.Slots = collectSlots(cal, granularity, now, uc.location)

	uc.logger.Info("GetAvailableSlots: found %d free slots for doctor=%s on %s",
		len(resp.Slots), req.DoctorID, date.Format(domain.DateFormat))

	return resp, nil
}
