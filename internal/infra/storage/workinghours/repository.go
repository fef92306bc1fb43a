package workinghours

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/types"
)

const table = "doctor_working_hours"

// Repository репозиторий шаблонов рабочих часов врачей
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория рабочих часов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByDoctor возвращает шаблон врача или ErrWorkingHoursNotFound, если окон нет
func (r *Repository) GetByDoctor(ctx context.Context, doctorID domain.UserID) (*domain.WorkingHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("weekday", "start_time", "end_time").
		From(table).
		Where(squirrel.Eq{"doctor_id": doctorID}).
		OrderBy("weekday ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByDoctor - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("GetByDoctor", err)
	}
	defer rows.Close()

	wh := &domain.WorkingHours{DoctorID: doctorID, Days: make(map[time.Weekday][]domain.TimeWindow)}
	count := 0
	for rows.Next() {
		var weekday int
		var start, end types.TimeString
		if err := rows.Scan(&weekday, &start, &end); err != nil {
			return nil, fmt.Errorf("%w: GetByDoctor - scan row: %v", ErrScanRow, err)
		}
		day := time.Weekday(weekday)
		wh.Days[day] = append(wh.Days[day], domain.TimeWindow{Start: start, End: end})
		count++
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByDoctor - rows error: %v", ErrScanRow, err)
	}

	if count == 0 {
		return nil, ErrWorkingHoursNotFound
	}

	return wh, nil
}

// Replace заменяет шаблон врача целиком.
// Вызывать внутри транзакции, иначе чтение между DELETE и INSERT увидит пустой шаблон.
func (r *Repository) Replace(ctx context.Context, wh *domain.WorkingHours) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(table).
		Where(squirrel.Eq{"doctor_id": wh.DoctorID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Replace - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return classify("Replace", err)
	}

	insert := psqlbuilder.Insert(table).Columns("doctor_id", "weekday", "start_time", "end_time")
	count := 0
	for day := time.Sunday; day <= time.Saturday; day++ {
		for _, w := range wh.Days[day] {
			insert = insert.Values(wh.DoctorID, int(day), w.Start, w.End)
			count++
		}
	}
	if count == 0 {
		return nil
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: Replace - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return classify("Replace", err)
	}

	return nil
}
