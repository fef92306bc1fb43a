package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWorkingHours(t *testing.T) {
	wh := DefaultWorkingHours(UserID{uuid.New()})

	blocks := wh.BlocksOn(testDate)
	require.Len(t, blocks, 1)
	assert.Equal(t, "09:00", blocks[0].Start.String())
	assert.Equal(t, "18:00", blocks[0].End.String())
	assert.True(t, blocks[0].Contains(TimeRange{Date: testDate, Start: "10:30", End: "11:30"}))

	for d := time.Sunday; d <= time.Saturday; d++ {
		assert.Len(t, wh.Days[d], 1)
	}
	require.NoError(t, wh.Validate())
}

func TestWorkingHours_BlocksOnSortsAndSkipsOffDays(t *testing.T) {
	wh := &WorkingHours{Days: map[time.Weekday][]TimeWindow{
		time.Monday: {
			{Start: "14:00", End: "18:00"},
			{Start: "08:00", End: "12:00"},
		},
	}}

	monday := testDate // 2024-06-10 понедельник
	blocks := wh.BlocksOn(monday)
	require.Len(t, blocks, 2)
	assert.Equal(t, "08:00", blocks[0].Start.String())
	assert.True(t, blocks[0].Date.Equal(monday))

	assert.Empty(t, wh.BlocksOn(monday.AddDate(0, 0, 1)))
}

func TestWorkingHours_Validate(t *testing.T) {
	overlapping := &WorkingHours{Days: map[time.Weekday][]TimeWindow{
		time.Friday: {{Start: "09:00", End: "12:00"}, {Start: "11:00", End: "13:00"}},
	}}
	assert.ErrorIs(t, overlapping.Validate(), ErrInvalidWorkingHours)

	reversed := &WorkingHours{Days: map[time.Weekday][]TimeWindow{
		time.Friday: {{Start: "12:00", End: "09:00"}},
	}}
	assert.ErrorIs(t, reversed.Validate(), ErrValidation)

	adjacent := &WorkingHours{Days: map[time.Weekday][]TimeWindow{
		time.Friday: {{Start: "09:00", End: "12:00"}, {Start: "12:00", End: "13:00"}},
	}}
	assert.NoError(t, adjacent.Validate())
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusScheduled.OccupiesCalendar())
	assert.True(t, StatusCompleted.OccupiesCalendar())
	assert.False(t, StatusCancelled.OccupiesCalendar())
	assert.False(t, StatusNoShow.OccupiesCalendar())

	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusNoShow.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
}

func TestError_KindAndMessage(t *testing.T) {
	base := NewError(ErrConflict, "slot no longer available")
	wrapped := fmt.Errorf("book: %w", fmt.Errorf("%w: doctor busy", base))

	assert.ErrorIs(t, wrapped, ErrConflict)
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, ErrConflict, KindOf(wrapped))

	msg, ok := PublicMessage(wrapped)
	require.True(t, ok)
	assert.Equal(t, "slot no longer available", msg)

	assert.Nil(t, KindOf(errors.New("plain")))
}

func TestTypedIDs(t *testing.T) {
	raw := uuid.New()
	patient := UserID{raw}
	parsed, err := ParseUserID(raw.String())
	require.NoError(t, err)

	assert.Equal(t, patient, parsed)
	assert.True(t, patient == parsed)
	assert.False(t, UserID{}.IsZero() == patient.IsZero())

	_, err = ParseAppointmentID("not-a-uuid")
	assert.Error(t, err)
}
