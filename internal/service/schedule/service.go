package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	whRepo "github.com/m04kA/SMC-TherapyBookingService/internal/infra/storage/workinghours"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/types"
)

// Service сервис шаблонов рабочих часов врачей
type Service struct {
	repo         WorkingHoursRepository
	txManager    TransactionManager
	workdayStart types.TimeString
	workdayEnd   types.TimeString
	logger       Logger
}

// NewService создает сервис. workdayStart и workdayEnd задают рабочий день
// для врачей без сохраненного шаблона.
func NewService(
	repo WorkingHoursRepository,
	txManager TransactionManager,
	workdayStart types.TimeString,
	workdayEnd types.TimeString,
	logger Logger,
) *Service {
	return &Service{
		repo:         repo,
		txManager:    txManager,
		workdayStart: workdayStart,
		workdayEnd:   workdayEnd,
		logger:       logger,
	}
}

// GetWorkingHours возвращает шаблон врача или сетку по умолчанию.
// Внутри транзакции чтение идет через нее.
func (s *Service) GetWorkingHours(ctx context.Context, doctorID domain.UserID) (*domain.WorkingHours, error) {
	wh, err := s.repo.GetByDoctor(ctx, doctorID)
	if err != nil {
		if errors.Is(err, whRepo.ErrWorkingHoursNotFound) {
			return s.defaultFor(doctorID), nil
		}
		s.logger.Error("GetWorkingHours: repository error for doctor=%s: %v", doctorID, err)
		return nil, fmt.Errorf("%w: GetWorkingHours - repository error: %w", ErrInternal, err)
	}
	return wh, nil
}

// ReplaceWorkingHours заменяет шаблон врача целиком
func (s *Service) ReplaceWorkingHours(ctx context.Context, actor domain.Actor, wh *domain.WorkingHours) (*domain.WorkingHours, error) {
	s.logger.Info("ReplaceWorkingHours: doctor=%s by %s=%s", wh.DoctorID, actor.Role, actor.ID)

	if !actor.IsAdmin() && !(actor.Role == domain.RoleDoctor && actor.ID == wh.DoctorID) {
		s.logger.Warn("ReplaceWorkingHours: access denied for %s=%s to doctor=%s", actor.Role, actor.ID, wh.DoctorID)
		return nil, ErrAccessDenied
	}

	if err := wh.Validate(); err != nil {
		s.logger.Warn("ReplaceWorkingHours: validation failed: %v", err)
		return nil, err
	}

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		return s.repo.Replace(txCtx, wh)
	})
	if err != nil {
		s.logger.Error("ReplaceWorkingHours: failed to replace working hours for doctor=%s: %v", wh.DoctorID, err)
		return nil, fmt.Errorf("%w: ReplaceWorkingHours - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("ReplaceWorkingHours: successfully replaced working hours for doctor=%s", wh.DoctorID)
	return wh, nil
}

func (s *Service) defaultFor(doctorID domain.UserID) *domain.WorkingHours {
	return domain.DailyWorkingHours(doctorID, s.workdayStart, s.workdayEnd)
}
