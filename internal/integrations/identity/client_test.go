package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/logger"
)

func newClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute}, logger.Nop())
}

func TestClient_GetUser(t *testing.T) {
	id := domain.UserID{UUID: uuid.New()}

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/users/"+id.String(), r.URL.Path)
		_ = json.NewEncoder(w).Encode(User{ID: id.String(), Role: "doctor", IsActive: true})
	})

	user, err := client.GetUser(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, domain.RoleDoctor, user.Role)
	assert.True(t, user.IsActive)
}

func TestClient_GetUserNotFoundDoesNotTripBreaker(t *testing.T) {
	var calls int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 5; i++ {
		_, err := client.GetUser(context.Background(), domain.UserID{UUID: uuid.New()})
		require.ErrorIs(t, err, ErrUserNotFound)
	}
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var calls int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for i := 0; i < 4; i++ {
		_, err := client.GetUser(context.Background(), domain.UserID{UUID: uuid.New()})
		require.ErrorIs(t, err, domain.ErrUnavailable)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "open breaker short-circuits requests")
}

func TestClient_InvalidRole(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(User{ID: uuid.NewString(), Role: "superuser"})
	})

	_, err := client.GetUser(context.Background(), domain.UserID{UUID: uuid.New()})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
