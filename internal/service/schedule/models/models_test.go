package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

func TestWorkingHoursRequest_ToDomain(t *testing.T) {
	doctorID := domain.UserID{UUID: uuid.New()}
	req := &WorkingHoursRequest{Days: map[string][]Window{
		"monday": {{Start: "09:00", End: "12:00"}, {Start: "13:00", End: "17:00"}},
		"Friday": {{Start: "10:00", End: "14:00"}},
	}}

	wh, err := req.ToDomain(doctorID)
	require.NoError(t, err)
	assert.Equal(t, doctorID, wh.DoctorID)
	assert.Len(t, wh.Days[time.Monday], 2)
	assert.Len(t, wh.Days[time.Friday], 1)
	assert.Empty(t, wh.Days[time.Sunday])

	resp := FromDomain(wh)
	assert.Equal(t, []Window{{Start: "10:00", End: "14:00"}}, resp.Days["friday"])
	assert.Equal(t, doctorID.String(), resp.DoctorID)
}

func TestWorkingHoursRequest_UnknownWeekday(t *testing.T) {
	req := &WorkingHoursRequest{Days: map[string][]Window{"funday": {{Start: "09:00", End: "10:00"}}}}
	_, err := req.ToDomain(domain.UserID{UUID: uuid.New()})
	assert.ErrorIs(t, err, ErrUnknownWeekday)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
