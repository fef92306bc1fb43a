package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/psqlbuilder"
)

const (
	appointmentsTable = "appointments"
	eventsTable       = "appointment_events"
)

var columns = []string{
	"id",
	"patient_id",
	"doctor_id",
	"therapy_id",
	"appointment_date",
	"start_time",
	"end_time",
	"duration_minutes",
	"status",
	"session_type",
	"price",
	"currency",
	"payment_status",
	"payment_ref",
	"payment_method",
	"notes",
	"patient_notes",
	"doctor_notes",
	"cancellation_reason",
	"cancelled_by",
	"cancelled_at",
	"patient_rating",
	"patient_feedback",
	"doctor_rating",
	"doctor_feedback",
	"rated_at",
	"rescheduled_from",
	"rescheduled_to",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей на приём и журнала их событий
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новую запись. ID генерируется на стороне приложения.
// Пересечение с активной записью врача отсекается ограничением БД и возвращается как ErrSlotTaken.
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(appointmentsTable).
		Columns(
			"id",
			"patient_id",
			"doctor_id",
			"therapy_id",
			"appointment_date",
			"start_time",
			"end_time",
			"duration_minutes",
			"status",
			"session_type",
			"price",
			"currency",
			"payment_status",
			"payment_ref",
			"payment_method",
			"notes",
			"patient_notes",
			"rescheduled_from",
		).
		Values(
			a.ID,
			a.PatientID,
			a.DoctorID,
			a.TherapyID,
			a.Range.Date,
			a.Range.Start,
			a.Range.End,
			a.DurationMinutes,
			a.Status,
			a.SessionType,
			a.Price,
			a.Currency,
			a.PaymentStatus,
			a.PaymentRef,
			a.PaymentMethod,
			a.Notes,
			a.PatientNotes,
			a.RescheduledFrom,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, classify("Create", err)
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return a, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id domain.AppointmentID) (*domain.Appointment, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id}, false)
}

// GetByIDForUpdate получает запись и блокирует строку до конца транзакции.
// Вне транзакции работает как GetByID.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id domain.AppointmentID) (*domain.Appointment, error) {
	return r.getOne(ctx, "GetByIDForUpdate", squirrel.Eq{"id": id}, dbmetrics.IsInTransaction(ctx))
}

// GetByPaymentRef находит запись по ссылке платежного провайдера
func (r *Repository) GetByPaymentRef(ctx context.Context, ref string) (*domain.Appointment, error) {
	return r.getOne(ctx, "GetByPaymentRef", squirrel.Eq{"payment_ref": ref}, false)
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Eq, forUpdate bool) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(appointmentsTable).
		Where(where)
	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, classify(op, err)
	}

	return a, nil
}

// FindByDoctorAndDate записи врача на дату в порядке времени начала.
// Внутри транзакции строки блокируются (FOR UPDATE), чтобы проверка свободного
// времени и вставка шли по согласованному снимку.
func (r *Repository) FindByDoctorAndDate(ctx context.Context, doctorID domain.UserID, date time.Time, includeInactive bool) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(appointmentsTable).
		Where(squirrel.Eq{"doctor_id": doctorID}).
		Where(squirrel.Eq{"appointment_date": domain.DateOnly(date)}).
		OrderBy("start_time ASC")

	if !includeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatuses()})
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindByDoctorAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("FindByDoctorAndDate", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// GetByPatientID записи пациента, новые сверху
func (r *Repository) GetByPatientID(ctx context.Context, patientID domain.UserID, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	return r.list(ctx, "GetByPatientID", squirrel.Eq{"patient_id": patientID}, filter)
}

// GetByDoctorID записи врача, новые сверху; для конкретной даты по времени начала
func (r *Repository) GetByDoctorID(ctx context.Context, doctorID domain.UserID, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	return r.list(ctx, "GetByDoctorID", squirrel.Eq{"doctor_id": doctorID}, filter)
}

func (r *Repository) list(ctx context.Context, op string, owner squirrel.Eq, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(appointmentsTable).
		Where(owner)

	if filter.Date != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"appointment_date": domain.DateOnly(*filter.Date)})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"appointment_date": domain.DateOnly(*filter.From)})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatuses()})
	}

	switch {
	case filter.Date != nil:
		selectBuilder = selectBuilder.OrderBy("start_time ASC")
	case filter.From != nil:
		selectBuilder = selectBuilder.OrderBy("appointment_date ASC, start_time ASC")
	default:
		selectBuilder = selectBuilder.OrderBy("appointment_date DESC, start_time DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// Update сохраняет изменяемые поля записи при условии, что статус и статус оплаты
// в БД совпадают с прочитанными (compare-and-set). Иначе ErrConcurrentUpdate.
func (r *Repository) Update(ctx context.Context, a *domain.Appointment, expectedStatus domain.AppointmentStatus, expectedPayment domain.PaymentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(appointmentsTable).
		Set("status", a.Status).
		Set("payment_status", a.PaymentStatus).
		Set("payment_ref", a.PaymentRef).
		Set("payment_method", a.PaymentMethod).
		Set("doctor_notes", a.DoctorNotes).
		Set("cancellation_reason", a.CancellationReason).
		Set("cancelled_by", a.CancelledBy).
		Set("cancelled_at", a.CancelledAt).
		Set("patient_rating", a.Rating.PatientRating).
		Set("patient_feedback", a.Rating.PatientFeedback).
		Set("doctor_rating", a.Rating.DoctorRating).
		Set("doctor_feedback", a.Rating.DoctorFeedback).
		Set("rated_at", a.Rating.RatedAt).
		Set("rescheduled_to", a.RescheduledTo).
		Where(squirrel.Eq{"id": a.ID}).
		Where(squirrel.Eq{"status": expectedStatus}).
		Where(squirrel.Eq{"payment_status": expectedPayment}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrConcurrentUpdate
	}
	if err != nil {
		return classify("Update", err)
	}

	a.UpdatedAt = updatedAt.Time
	return nil
}

// SetPaymentRef привязывает ссылку платежа, пока оплата не получена.
// Чужая ссылка заменяется только после неудачной оплаты.
func (r *Repository) SetPaymentRef(ctx context.Context, id domain.AppointmentID, ref string, method *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(appointmentsTable).
		Set("payment_ref", ref).
		Set("payment_method", method).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"payment_status": []string{string(domain.PaymentPending), string(domain.PaymentFailed)}}).
		Where(squirrel.Or{
			squirrel.Eq{"payment_ref": nil},
			squirrel.Eq{"payment_ref": ref},
			squirrel.Eq{"payment_status": string(domain.PaymentFailed)},
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetPaymentRef - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return classify("SetPaymentRef", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetPaymentRef - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrConcurrentUpdate
	}

	return nil
}

// LogEvent добавляет запись в журнал событий
func (r *Repository) LogEvent(ctx context.Context, e *domain.AppointmentEvent) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(eventsTable).
		Columns(
			"id",
			"appointment_id",
			"event",
			"from_status",
			"to_status",
			"from_payment_status",
			"to_payment_status",
			"actor_id",
			"actor_role",
		).
		Values(
			e.ID,
			e.AppointmentID,
			e.Event,
			e.FromStatus,
			e.ToStatus,
			e.FromPaymentStatus,
			e.ToPaymentStatus,
			e.ActorID,
			e.ActorRole,
		).
		Suffix("RETURNING created_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: LogEvent - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt); err != nil {
		return classify("LogEvent", err)
	}
	e.CreatedAt = createdAt.Time

	return nil
}

// GetEvents журнал событий записи в хронологическом порядке
func (r *Repository) GetEvents(ctx context.Context, appointmentID domain.AppointmentID) ([]*domain.AppointmentEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"appointment_id",
		"event",
		"from_status",
		"to_status",
		"from_payment_status",
		"to_payment_status",
		"actor_id",
		"actor_role",
		"created_at",
	).
		From(eventsTable).
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		OrderBy("created_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetEvents - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("GetEvents", err)
	}
	defer rows.Close()

	events := make([]*domain.AppointmentEvent, 0)
	for rows.Next() {
		var e domain.AppointmentEvent
		var actorID uuid.NullUUID
		if err := rows.Scan(
			&e.ID,
			&e.AppointmentID,
			&e.Event,
			&e.FromStatus,
			&e.ToStatus,
			&e.FromPaymentStatus,
			&e.ToPaymentStatus,
			&actorID,
			&e.ActorRole,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: GetEvents - scan row: %v", ErrScanRow, err)
		}
		if actorID.Valid {
			e.ActorID = &domain.UserID{UUID: actorID.UUID}
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetEvents - rows error: %v", ErrScanRow, err)
	}

	return events, nil
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var a domain.Appointment
	var createdAt, updatedAt sql.NullTime
	var rescheduledFrom, rescheduledTo uuid.NullUUID

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.DoctorID,
		&a.TherapyID,
		&a.Range.Date,
		&a.Range.Start,
		&a.Range.End,
		&a.DurationMinutes,
		&a.Status,
		&a.SessionType,
		&a.Price,
		&a.Currency,
		&a.PaymentStatus,
		&a.PaymentRef,
		&a.PaymentMethod,
		&a.Notes,
		&a.PatientNotes,
		&a.DoctorNotes,
		&a.CancellationReason,
		&a.CancelledBy,
		&a.CancelledAt,
		&a.Rating.PatientRating,
		&a.Rating.PatientFeedback,
		&a.Rating.DoctorRating,
		&a.Rating.DoctorFeedback,
		&a.Rating.RatedAt,
		&rescheduledFrom,
		&rescheduledTo,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Range.Date = domain.DateOnly(a.Range.Date)
	if rescheduledFrom.Valid {
		a.RescheduledFrom = &domain.AppointmentID{UUID: rescheduledFrom.UUID}
	}
	if rescheduledTo.Valid {
		a.RescheduledTo = &domain.AppointmentID{UUID: rescheduledTo.UUID}
	}
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}

// scanAppointments сканирует результаты запроса в слайс записей
func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}

func inactiveStatuses() []string {
	statuses := make([]string, len(domain.InactiveStatuses))
	for i, s := range domain.InactiveStatuses {
		statuses[i] = string(s)
	}
	return statuses
}
