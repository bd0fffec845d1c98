package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOfDropsTimeOfDay(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	late := time.Date(2024, time.March, 9, 23, 59, 0, 0, manila)

	d := DateOf(late)
	assert.Equal(t, "2024-03-09", d.String())
	assert.Equal(t, NewDate(2024, time.March, 9), d)
}

func TestDaysUntil(t *testing.T) {
	tests := []struct {
		from, to string
		want     int
	}{
		{"2024-01-01", "2024-01-01", 0},
		{"2024-01-01", "2024-01-15", 14},
		{"2024-02-28", "2024-03-01", 2}, // leap year
		{"2023-12-25", "2024-01-14", 20},
		{"2024-03-09", "2024-03-11", 2}, // across a US DST change
		{"2024-01-10", "2024-01-01", -9},
	}
	for _, tt := range tests {
		from, err := ParseDate(tt.from)
		require.NoError(t, err)
		to, err := ParseDate(tt.to)
		require.NoError(t, err)
		assert.Equal(t, tt.want, from.DaysUntil(to), "%s -> %s", tt.from, tt.to)
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2024-06-01"))
	assert.Equal(t, NewDate(2024, time.June, 1), d)

	require.NoError(t, d.Scan([]byte("2024-06-02")))
	assert.Equal(t, NewDate(2024, time.June, 2), d)

	require.NoError(t, d.Scan(time.Date(2024, time.June, 3, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, NewDate(2024, time.June, 3), d)

	assert.Error(t, d.Scan(int64(5)))
	assert.Error(t, d.Scan("June 4th"))
}

func TestDateValueRoundTrip(t *testing.T) {
	d := NewDate(2025, time.December, 31)
	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-12-31", v)

	var back Date
	require.NoError(t, back.Scan(v))
	assert.Equal(t, d, back)
	assert.Equal(t, NewDate(2026, time.January, 14), d.AddDays(14))
}
