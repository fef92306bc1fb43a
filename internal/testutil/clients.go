package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/internal/integrations/identity"
	"github.com/m04kA/SMC-TherapyBookingService/internal/integrations/therapycatalog"
)

// Identity in-memory сервис идентификации
type Identity struct {
	mu    sync.Mutex
	users map[domain.UserID]*domain.User

	Err error
}

func NewIdentity(users ...*domain.User) *Identity {
	id := &Identity{users: make(map[domain.UserID]*domain.User)}
	for _, u := range users {
		id.users[u.ID] = u
	}
	return id
}

func (c *Identity) GetUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	u, ok := c.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return u, nil
}

// Catalog in-memory каталог терапий
type Catalog struct {
	mu        sync.Mutex
	therapies map[domain.TherapyID]*domain.Therapy

	Err error
}

func NewCatalog(therapies ...*domain.Therapy) *Catalog {
	c := &Catalog{therapies: make(map[domain.TherapyID]*domain.Therapy)}
	for _, t := range therapies {
		c.therapies[t.ID] = t
	}
	return c
}

func (c *Catalog) GetTherapy(ctx context.Context, id domain.TherapyID) (*domain.Therapy, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	t, ok := c.therapies[id]
	if !ok {
		return nil, therapycatalog.ErrTherapyNotFound
	}
	return t, nil
}

// SetPrice меняет цену терапии в каталоге
func (c *Catalog) SetPrice(id domain.TherapyID, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.therapies[id]; ok {
		updated := *t
		updated.Price = price
		c.therapies[id] = &updated
	}
}

// Clock фиксированное время
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{t: t}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Set переводит часы
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// Metrics считает вызовы метрик usecase и сервисов
type Metrics struct {
	mu          sync.Mutex
	Bookings    map[string]int
	Transitions map[string]int
	Webhooks    map[string]int
}

func NewMetrics() *Metrics {
	return &Metrics{
		Bookings:    make(map[string]int),
		Transitions: make(map[string]int),
		Webhooks:    make(map[string]int),
	}
}

func (m *Metrics) IncBooking(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Bookings[outcome]++
}

func (m *Metrics) IncTransition(event, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transitions[event+":"+outcome]++
}

func (m *Metrics) IncWebhookEvent(eventType, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Webhooks[eventType+":"+outcome]++
}

// BookingCount число бронирований с исходом outcome
func (m *Metrics) BookingCount(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Bookings[outcome]
}
