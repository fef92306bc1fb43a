package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// HeaderRequestID идентификатор запроса для сквозного логирования
const HeaderRequestID = "X-Request-ID"

// RequestLogger проставляет X-Request-ID и пишет строку лога на каждый запрос
func RequestLogger(log Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
				r.Header.Set(HeaderRequestID, requestID)
			}
			w.Header().Set(HeaderRequestID, requestID)

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			switch {
			case rec.status >= http.StatusInternalServerError:
				log.Error("%s %s - status=%d duration=%s request_id=%s",
					r.Method, r.URL.Path, rec.status, time.Since(start), requestID)
			case rec.status >= http.StatusBadRequest:
				log.Warn("%s %s - status=%d duration=%s request_id=%s",
					r.Method, r.URL.Path, rec.status, time.Since(start), requestID)
			default:
				log.Info("%s %s - status=%d duration=%s request_id=%s",
					r.Method, r.URL.Path, rec.status, time.Since(start), requestID)
			}
		})
	}
}
