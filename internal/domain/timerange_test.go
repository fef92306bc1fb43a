package domain

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TherapyBookingService/pkg/types"
)

var testDate = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

func mustRange(t *testing.T, start, end string) TimeRange {
	t.Helper()
	r, err := NewTimeRange(testDate, types.TimeString(start), types.TimeString(end))
	require.NoError(t, err)
	return r
}

func TestTimeRange_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b [2]string
		want bool
	}{
		{name: "touching endpoints do not overlap", a: [2]string{"09:00", "10:00"}, b: [2]string{"10:00", "11:00"}, want: false},
		{name: "partial overlap", a: [2]string{"09:00", "10:30"}, b: [2]string{"10:00", "11:00"}, want: true},
		{name: "containment", a: [2]string{"09:00", "12:00"}, b: [2]string{"10:00", "11:00"}, want: true},
		{name: "identical", a: [2]string{"09:00", "10:00"}, b: [2]string{"09:00", "10:00"}, want: true},
		{name: "disjoint", a: [2]string{"09:00", "09:30"}, b: [2]string{"13:00", "14:00"}, want: false},
		{name: "one minute overlap", a: [2]string{"09:00", "10:01"}, b: [2]string{"10:00", "11:00"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustRange(t, tt.a[0], tt.a[1])
			b := mustRange(t, tt.b[0], tt.b[1])
			assert.Equal(t, tt.want, a.Overlaps(b))
			assert.Equal(t, tt.want, b.Overlaps(a))
		})
	}
}

func TestTimeRange_OverlapsDifferentDates(t *testing.T) {
	a := mustRange(t, "09:00", "10:00")
	b := a
	b.Date = testDate.AddDate(0, 0, 1)
	assert.False(t, a.Overlaps(b))
}

// Симметричность и соответствие определению полуоткрытого интервала на случайных парах
func TestTimeRange_OverlapsProperty(t *testing.T) {
	faker := gofakeit.New(42)

	randomRange := func() (TimeRange, int, int) {
		start := faker.IntRange(0, 24*60-2)
		end := faker.IntRange(start+1, 24*60-1)
		s, err := types.NewTimeStringFromMinutes(start)
		require.NoError(t, err)
		e, err := types.NewTimeStringFromMinutes(end)
		require.NoError(t, err)
		r, err := NewTimeRange(testDate, s, e)
		require.NoError(t, err)
		return r, start, end
	}

	for i := 0; i < 2000; i++ {
		a, aStart, aEnd := randomRange()
		b, bStart, bEnd := randomRange()

		want := aStart < bEnd && bStart < aEnd
		require.Equal(t, want, a.Overlaps(b), "a=%s b=%s", a, b)
		require.Equal(t, a.Overlaps(b), b.Overlaps(a), "a=%s b=%s", a, b)
	}
}

func TestTimeRange_IsValid(t *testing.T) {
	assert.True(t, TimeRange{Date: testDate, Start: "09:00", End: "09:01"}.IsValid())
	assert.False(t, TimeRange{Date: testDate, Start: "09:00", End: "09:00"}.IsValid(), "zero length")
	assert.False(t, TimeRange{Date: testDate, Start: "10:00", End: "09:00"}.IsValid(), "reversed")
	assert.False(t, TimeRange{Date: testDate, Start: "09:00:30", End: "10:00"}.IsValid(), "seconds")
	assert.False(t, TimeRange{Date: testDate, Start: "23:00", End: "24:00"}.IsValid(), "24:00")

	_, err := NewTimeRange(testDate, "11:00", "10:00")
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestTimeRange_DurationAndInstant(t *testing.T) {
	r := mustRange(t, "09:15", "10:45")
	assert.Equal(t, 90, r.DurationMinutes())

	loc := time.FixedZone("UTC+3", 3*3600)
	assert.Equal(t, time.Date(2024, 6, 10, 9, 15, 0, 0, loc), r.StartInstant(loc))
	assert.Equal(t, "2024-06-10 09:15-10:45", r.String())
}

func TestTimeRange_Contains(t *testing.T) {
	block := mustRange(t, "09:00", "12:00")
	assert.True(t, block.Contains(mustRange(t, "09:00", "12:00")))
	assert.True(t, block.Contains(mustRange(t, "10:00", "11:00")))
	assert.False(t, block.Contains(mustRange(t, "11:30", "12:30")))
	assert.False(t, block.Contains(mustRange(t, "08:30", "09:30")))
}

func TestValidateTiming(t *testing.T) {
	r := mustRange(t, "09:00", "10:00")

	assert.NoError(t, ValidateTiming(r, 60))
	assert.NoError(t, ValidateTiming(r, 55))
	assert.NoError(t, ValidateTiming(r, 65))

	err := ValidateTiming(r, 66)
	assert.ErrorIs(t, err, ErrDurationMismatch)
	assert.ErrorIs(t, err, ErrValidation)

	err = ValidateTiming(TimeRange{Date: testDate, Start: "10:00", End: "09:00"}, 60)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}
