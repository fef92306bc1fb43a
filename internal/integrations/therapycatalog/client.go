package therapycatalog

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

// Client клиент каталога терапий
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*TherapyResponse]
	log        Logger
}

// NewClient создает клиент каталога. Breaker размыкается после maxFailures
// сбоев подряд и остается разомкнутым openTimeout.
func NewClient(baseURL string, timeout time.Duration, maxFailures uint32, openTimeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: gobreaker.NewCircuitBreaker[*TherapyResponse](gobreaker.Settings{
			Name:    "therapy-catalog",
			Timeout: openTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrTherapyNotFound)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("Circuit breaker %s: %s -> %s", name, from, to)
			},
		}),
		log: log,
	}
}

// GetTherapy получает терапию по ID
func (c *Client) GetTherapy(ctx context.Context, id domain.TherapyID) (*domain.Therapy, error) {
	therapy, err := c.breaker.Execute(func() (*TherapyResponse, error) {
		return c.fetchTherapy(ctx, id)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.log.Warn("Therapy catalog request for therapy_id=%s rejected by circuit breaker", id)
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if err != nil {
		return nil, err
	}

	return therapy.toDomain()
}

func (c *Client) fetchTherapy(ctx context.Context, id domain.TherapyID) (*TherapyResponse, error) {
	url := fmt.Sprintf("%s/internal/therapies/%s", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("Therapy catalog request failed for therapy_id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrTherapyNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrServiceUnavailable, resp.StatusCode, string(body))
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var therapy TherapyResponse
	if err := json.NewDecoder(resp.Body).Decode(&therapy); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return &therapy, nil
}

func (t *TherapyResponse) toDomain() (*domain.Therapy, error) {
	id, err := domain.ParseTherapyID(t.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: therapy id %q: %v", ErrInvalidResponse, t.ID, err)
	}
	doctorID, err := domain.ParseUserID(t.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("%w: doctor id %q: %v", ErrInvalidResponse, t.DoctorID, err)
	}
	return &domain.Therapy{
		ID:              id,
		DoctorID:        doctorID,
		Title:           t.Title,
		IsActive:        t.IsActive,
		IsOnline:        t.IsOnline,
		IsInPerson:      t.IsInPerson,
		Price:           t.Price,
		Currency:        t.Currency,
		DurationMinutes: t.DurationMinutes,
	}, nil
}
