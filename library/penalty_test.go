package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestPenalty(t *testing.T) {
	tests := []struct {
		days int
		want int64
	}{
		{-3, 0},
		{0, 0},
		{1, 0},
		{14, 0},
		{15, 10},
		{20, 60},
		{45, 310},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Penalty(tt.days), "Penalty(%d)", tt.days)
	}
}

func TestPenaltyCustomPolicy(t *testing.T) {
	p := PenaltyPolicy{GraceDays: 7, DailyRate: 25}
	assert.Equal(t, int64(0), p.Penalty(7))
	assert.Equal(t, int64(75), p.Penalty(10))
}

func TestPenaltyProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		days := rapid.IntRange(-1000, 100000).Draw(t, "days")
		got := Penalty(days)

		if got < 0 {
			t.Fatalf("Penalty(%d) = %d, negative", days, got)
		}
		if days <= 14 && got != 0 {
			t.Fatalf("Penalty(%d) = %d, want 0 within grace period", days, got)
		}
		if days > 14 && got != int64(days-14)*10 {
			t.Fatalf("Penalty(%d) = %d, want %d", days, got, int64(days-14)*10)
		}
		if next := Penalty(days + 1); next < got {
			t.Fatalf("Penalty not monotonic: Penalty(%d)=%d > Penalty(%d)=%d", days, got, days+1, next)
		}
	})
}
