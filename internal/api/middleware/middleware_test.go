package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/logger"
)

func TestAuth(t *testing.T) {
	var got domain.Actor
	h := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		require.True(t, ok)
		got = actor
		w.WriteHeader(http.StatusNoContent)
	}))

	id := uuid.New()
	tests := []struct {
		name       string
		userID     string
		role       string
		wantStatus int
	}{
		{name: "patient", userID: id.String(), role: "patient", wantStatus: http.StatusNoContent},
		{name: "admin", userID: id.String(), role: "admin", wantStatus: http.StatusNoContent},
		{name: "missing id", role: "patient", wantStatus: http.StatusUnauthorized},
		{name: "missing role", userID: id.String(), wantStatus: http.StatusUnauthorized},
		{name: "malformed id", userID: "42", role: "doctor", wantStatus: http.StatusUnauthorized},
		{name: "nil id", userID: uuid.Nil.String(), role: "doctor", wantStatus: http.StatusUnauthorized},
		{name: "unknown role", userID: id.String(), role: "nurse", wantStatus: http.StatusUnauthorized},
		{name: "system role is reserved", userID: id.String(), role: "system", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.userID != "" {
				req.Header.Set(HeaderUserID, tt.userID)
			}
			if tt.role != "" {
				req.Header.Set(HeaderUserRole, tt.role)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, id, got.ID.UUID)
				assert.Equal(t, domain.Role(tt.role), got.Role)
			}
		})
	}
}

func TestActorFromContext_Missing(t *testing.T) {
	_, ok := ActorFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}

type recordedRequest struct {
	method string
	route  string
	status int
}

type fakeMetrics struct {
	requests []recordedRequest
}

func (m *fakeMetrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.requests = append(m.requests, recordedRequest{method: method, route: route, status: status})
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := &fakeMetrics{}
	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.HandleFunc("/appointments/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/appointments/"+uuid.NewString(), nil))

	require.Len(t, m.requests, 1)
	assert.Equal(t, recordedRequest{method: http.MethodGet, route: "/appointments/{id}", status: http.StatusNotFound}, m.requests[0])
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	h := RequestLogger(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get(HeaderRequestID))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(rec.Header().Get(HeaderRequestID))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "trace-1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "trace-1", rec.Header().Get(HeaderRequestID))
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(1, 2)
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	h := l.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		if userID != "" {
			req.Header.Set(HeaderUserID, userID)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("a").Code)
	assert.Equal(t, http.StatusOK, call("a").Code)

	limited := call("a")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	// Другой пользователь и анонимный клиент считаются отдельно
	assert.Equal(t, http.StatusOK, call("b").Code)
	assert.Equal(t, http.StatusOK, call("").Code)

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, call("a").Code)
}
