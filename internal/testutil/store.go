// Package testutil содержит in-memory реализации хранилищ и клиентов для тестов
// usecase и сервисов. Семантика повторяет Postgres-репозитории: пересечение
// активных записей врача отклоняется как нарушение exclusion constraint,
// Update работает как compare-and-set.
package testutil

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-TherapyBookingService/internal/infra/storage/appointment"
	whRepo "github.com/m04kA/SMC-TherapyBookingService/internal/infra/storage/workinghours"
)

// AppointmentStore in-memory хранилище записей и журнала событий
type AppointmentStore struct {
	mu     sync.Mutex
	items  map[domain.AppointmentID]domain.Appointment
	events []*domain.AppointmentEvent
	now    func() time.Time

	// Err возвращается любым методом, если задан
	Err error
	// Creates число успешных вставок
	Creates int
}

// NewAppointmentStore создает пустое хранилище
func NewAppointmentStore() *AppointmentStore {
	return &AppointmentStore{
		items: make(map[domain.AppointmentID]domain.Appointment),
		now:   time.Now,
	}
}

// Put кладет запись напрямую, минуя проверки
func (s *AppointmentStore) Put(a domain.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[a.ID] = a
}

// Get возвращает сохраненную копию записи
func (s *AppointmentStore) Get(id domain.AppointmentID) (domain.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	return a, ok
}

// Count число записей в хранилище
func (s *AppointmentStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Events журнал событий записи
func (s *AppointmentStore) Events(id domain.AppointmentID) []*domain.AppointmentEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.AppointmentEvent
	for _, e := range s.events {
		if e.AppointmentID == id {
			out = append(out, e)
		}
	}
	return out
}

func (s *AppointmentStore) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	if a.OccupiesCalendar() {
		for _, other := range s.items {
			if other.DoctorID == a.DoctorID && other.OccupiesCalendar() && other.Range.Overlaps(a.Range) {
				return nil, appointmentRepo.ErrSlotTaken
			}
		}
	}
	if a.PaymentRef != nil {
		if _, taken := s.byPaymentRef(*a.PaymentRef); taken {
			return nil, appointmentRepo.ErrPaymentRefTaken
		}
	}

	created := *a
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt
	s.items[created.ID] = created
	s.Creates++

	return &created, nil
}

func (s *AppointmentStore) GetByID(ctx context.Context, id domain.AppointmentID) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	a, ok := s.items[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	return &a, nil
}

func (s *AppointmentStore) GetByIDForUpdate(ctx context.Context, id domain.AppointmentID) (*domain.Appointment, error) {
	return s.GetByID(ctx, id)
}

func (s *AppointmentStore) GetByPaymentRef(ctx context.Context, ref string) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	a, ok := s.byPaymentRef(ref)
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	return &a, nil
}

func (s *AppointmentStore) byPaymentRef(ref string) (domain.Appointment, bool) {
	for _, a := range s.items {
		if a.PaymentRef != nil && *a.PaymentRef == ref {
			return a, true
		}
	}
	return domain.Appointment{}, false
}

func (s *AppointmentStore) FindByDoctorAndDate(ctx context.Context, doctorID domain.UserID, date time.Time, includeInactive bool) ([]*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	day := domain.DateOnly(date)
	var out []*domain.Appointment
	for _, a := range s.items {
		if a.DoctorID != doctorID || !domain.DateOnly(a.Range.Date).Equal(day) {
			continue
		}
		if !includeInactive && !a.OccupiesCalendar() {
			continue
		}
		appt := a
		out = append(out, &appt)
	}
	slices.SortFunc(out, func(x, y *domain.Appointment) int {
		return x.Range.Start.Minutes() - y.Range.Start.Minutes()
	})
	return out, nil
}

func (s *AppointmentStore) GetByPatientID(ctx context.Context, patientID domain.UserID, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	return s.list(func(a *domain.Appointment) bool { return a.PatientID == patientID }, filter)
}

func (s *AppointmentStore) GetByDoctorID(ctx context.Context, doctorID domain.UserID, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	return s.list(func(a *domain.Appointment) bool { return a.DoctorID == doctorID }, filter)
}

func (s *AppointmentStore) list(owner func(a *domain.Appointment) bool, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []*domain.Appointment
	for _, item := range s.items {
		a := item
		if !owner(&a) {
			continue
		}
		if filter.Date != nil && !domain.DateOnly(a.Range.Date).Equal(domain.DateOnly(*filter.Date)) {
			continue
		}
		if filter.From != nil && domain.DateOnly(a.Range.Date).Before(domain.DateOnly(*filter.From)) {
			continue
		}
		if filter.Status != nil {
			if a.Status != *filter.Status {
				continue
			}
		} else if !filter.IncludeInactive && !a.OccupiesCalendar() {
			continue
		}
		out = append(out, &a)
	}
	slices.SortFunc(out, func(x, y *domain.Appointment) int {
		return x.Range.StartInstant(time.UTC).Compare(y.Range.StartInstant(time.UTC))
	})
	return out, nil
}

func (s *AppointmentStore) Update(ctx context.Context, a *domain.Appointment, expectedStatus domain.AppointmentStatus, expectedPayment domain.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	current, ok := s.items[a.ID]
	if !ok || current.Status != expectedStatus || current.PaymentStatus != expectedPayment {
		return appointmentRepo.ErrConcurrentUpdate
	}
	a.UpdatedAt = s.now()
	s.items[a.ID] = *a
	return nil
}

func (s *AppointmentStore) SetPaymentRef(ctx context.Context, id domain.AppointmentID, ref string, method *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if other, taken := s.byPaymentRef(ref); taken && other.ID != id {
		return appointmentRepo.ErrPaymentRefTaken
	}
	a, ok := s.items[id]
	if !ok || (a.PaymentStatus != domain.PaymentPending && a.PaymentStatus != domain.PaymentFailed) {
		return appointmentRepo.ErrConcurrentUpdate
	}
	if a.PaymentStatus == domain.PaymentPending && a.PaymentRef != nil && *a.PaymentRef != ref {
		return appointmentRepo.ErrConcurrentUpdate
	}
	a.PaymentRef = &ref
	a.PaymentMethod = method
	s.items[id] = a
	return nil
}

func (s *AppointmentStore) LogEvent(ctx context.Context, e *domain.AppointmentEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	e.CreatedAt = s.now()
	s.events = append(s.events, e)
	return nil
}

func (s *AppointmentStore) GetEvents(ctx context.Context, id domain.AppointmentID) ([]*domain.AppointmentEvent, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Events(id), nil
}

type snapshot struct {
	items  map[domain.AppointmentID]domain.Appointment
	events []*domain.AppointmentEvent
}

func (s *AppointmentStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make(map[domain.AppointmentID]domain.Appointment, len(s.items))
	for k, v := range s.items {
		items[k] = v
	}
	return snapshot{items: items, events: slices.Clone(s.events)}
}

func (s *AppointmentStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = snap.items
	s.events = snap.events
}

// WorkingHoursStore in-memory хранилище шаблонов рабочих часов
type WorkingHoursStore struct {
	mu    sync.Mutex
	items map[domain.UserID]*domain.WorkingHours

	Err error
}

func NewWorkingHoursStore() *WorkingHoursStore {
	return &WorkingHoursStore{items: make(map[domain.UserID]*domain.WorkingHours)}
}

func (s *WorkingHoursStore) GetByDoctor(ctx context.Context, doctorID domain.UserID) (*domain.WorkingHours, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	wh, ok := s.items[doctorID]
	if !ok {
		return nil, whRepo.ErrWorkingHoursNotFound
	}
	return wh, nil
}

func (s *WorkingHoursStore) Replace(ctx context.Context, wh *domain.WorkingHours) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.items[wh.DoctorID] = wh
	return nil
}

// TxManager выполняет fn и при ошибке откатывает изменения хранилища записей
type TxManager struct {
	Store *AppointmentStore
	// Calls число запусков транзакций
	Calls int
	mu    sync.Mutex
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()

	if m.Store == nil {
		return fn(ctx)
	}
	snap := m.Store.snapshot()
	if err := fn(ctx); err != nil {
		m.Store.restore(snap)
		return err
	}
	return nil
}
