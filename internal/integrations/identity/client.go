package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

// BreakerSettings параметры circuit breaker
type BreakerSettings struct {
	// MaxFailures подряд идущих сбоев до размыкания
	MaxFailures uint32
	// OpenTimeout время в разомкнутом состоянии до пробного запроса
	OpenTimeout time.Duration
}

// Client клиент сервиса идентификации
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*User]
	log        Logger
}

// NewClient создает новый экземпляр клиента сервиса идентификации
func NewClient(baseURL string, timeout time.Duration, breaker BreakerSettings, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: gobreaker.NewCircuitBreaker[*User](gobreaker.Settings{
			Name:    "identity",
			Timeout: breaker.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breaker.MaxFailures
			},
			// Отсутствие пользователя это ответ сервиса, а не сбой
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrUserNotFound)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("Circuit breaker %s: %s -> %s", name, from, to)
			},
		}),
		log: log,
	}
}

// GetUser получает пользователя по ID
func (c *Client) GetUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	user, err := c.breaker.Execute(func() (*User, error) {
		return c.fetchUser(ctx, id)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.log.Warn("Identity request for user_id=%s rejected by circuit breaker", id)
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if err != nil {
		return nil, err
	}

	return toDomain(user)
}

func (c *Client) fetchUser(ctx context.Context, id domain.UserID) (*User, error) {
	url := fmt.Sprintf("%s/internal/users/%s", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("Identity service request failed for user_id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrUserNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrServiceUnavailable, resp.StatusCode, string(body))
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return &user, nil
}

func toDomain(u *User) (*domain.User, error) {
	id, err := domain.ParseUserID(u.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: user id %q: %v", ErrInvalidResponse, u.ID, err)
	}
	role := domain.Role(u.Role)
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidResponse, u.Role)
	}
	return &domain.User{ID: id, Role: role, IsActive: u.IsActive}, nil
}
