package create_appointment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TherapyBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/internal/service/appointments/models"
	bookAppointment "github.com/m04kA/SMC-TherapyBookingService/internal/usecase/book_appointment"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/logger"
)

type stubUseCase struct {
	got  *bookAppointment.Request
	resp *models.AppointmentResponse
	err  error
}

func (s *stubUseCase) Execute(ctx context.Context, req *bookAppointment.Request) (*models.AppointmentResponse, error) {
	s.got = req
	return s.resp, s.err
}

func newRequest(t *testing.T, body string, actor *domain.Actor) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	if actor != nil {
		req = req.WithContext(middleware.WithActor(req.Context(), *actor))
	}
	return req
}

func TestHandler_Handle(t *testing.T) {
	patient := domain.Actor{ID: domain.UserID{UUID: uuid.New()}, Role: domain.RolePatient}
	doctorID := uuid.New().String()
	therapyID := uuid.New().String()
	body := `{"doctorId":"` + doctorID + `","therapyId":"` + therapyID + `",` +
		`"appointmentDate":"2024-06-10","startTime":"09:00","endTime":"10:00","sessionType":"online"}`

	t.Run("created", func(t *testing.T) {
		uc := &stubUseCase{resp: &models.AppointmentResponse{ID: uuid.New().String(), DoctorID: doctorID, Status: "scheduled"}}
		rec := httptest.NewRecorder()

		NewHandler(uc, logger.Nop()).Handle(rec, newRequest(t, body, &patient))

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp models.AppointmentResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "scheduled", resp.Status)

		require.NotNil(t, uc.got)
		assert.Equal(t, patient, uc.got.Actor)
		assert.Equal(t, doctorID, uc.got.DoctorID.String())
		assert.Equal(t, "09:00", uc.got.StartTime.String())
		assert.Equal(t, domain.SessionType("online"), uc.got.SessionType)
	})

	t.Run("conflict", func(t *testing.T) {
		uc := &stubUseCase{err: domain.NewError(domain.ErrConflict, "slot is not available")}
		rec := httptest.NewRecorder()

		NewHandler(uc, logger.Nop()).Handle(rec, newRequest(t, body, &patient))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "slot is not available")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		uc := &stubUseCase{}
		rec := httptest.NewRecorder()

		NewHandler(uc, logger.Nop()).Handle(rec, newRequest(t, body, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, uc.got)
	})

	t.Run("bad input never reaches use case", func(t *testing.T) {
		for _, b := range []string{
			`{"doctorId":`,
			`{"doctorId":"x","therapyId":"` + therapyID + `","appointmentDate":"2024-06-10"}`,
			`{"doctorId":"` + doctorID + `","therapyId":"` + therapyID + `","appointmentDate":"June 10"}`,
			`{"unknown":true}`,
		} {
			uc := &stubUseCase{}
			rec := httptest.NewRecorder()

			NewHandler(uc, logger.Nop()).Handle(rec, newRequest(t, b, &patient))

			assert.Equal(t, http.StatusBadRequest, rec.Code, b)
			assert.Nil(t, uc.got, b)
		}
	})
}
