package library

// PenaltyPolicy charges DailyRate currency units for every day a loan runs
// past GraceDays. There is no cap.
type PenaltyPolicy struct {
	GraceDays int
	DailyRate int64
}

// DefaultPenaltyPolicy is fourteen free days, then ten units a day.
var DefaultPenaltyPolicy = PenaltyPolicy{GraceDays: 14, DailyRate: 10}

// Penalty returns the charge for a loan of the given length. Negative lengths
// clamp to zero.
func (p PenaltyPolicy) Penalty(daysBorrowed int) int64 {
	over := daysBorrowed - p.GraceDays
	if over <= 0 {
		return 0
	}
	return int64(over) * p.DailyRate
}

// Penalty applies DefaultPenaltyPolicy.
func Penalty(daysBorrowed int) int64 {
	return DefaultPenaltyPolicy.Penalty(daysBorrowed)
}
