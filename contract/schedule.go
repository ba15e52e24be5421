package contract

import "fmt"

// =============================================================================
// SCHEDULE - Cycle arithmetic for one (record, reference month) pair
// =============================================================================

// Schedule carries the calendar position of a contract at a reference
// month: how many months have elapsed, how many full update cycles have
// completed, and how far away the next update and the renewal are.
//
// All fields are derived; a Schedule is computed, used, and discarded.
type Schedule struct {
	Reference Month

	MonthsElapsed   int
	FreqMonths      int
	CyclesCompleted int
	Remainder       int

	// UpdateApplies is true exactly on update months: a whole number of
	// cycles has elapsed and at least one cycle has completed.
	UpdateApplies bool

	MonthsToNextUpdate int
	MonthsToRenewal    int
}

// NewSchedule computes the schedule for rec at the reference month.
// Contracts whose start month is after the reference are rejected with
// ErrNotInForce: a negative cycle count is never meaningful.
func NewSchedule(rec Record, ref Month) (Schedule, error) {
	start := rec.StartMonth()
	elapsed := ref.Sub(start)
	if elapsed < 0 {
		return Schedule{}, fmt.Errorf("%w: starts %s, reference %s", ErrNotInForce, start, ref)
	}

	freq := rec.Frequency.Months()
	s := Schedule{
		Reference:       ref,
		MonthsElapsed:   elapsed,
		FreqMonths:      freq,
		CyclesCompleted: elapsed / freq,
		Remainder:       elapsed % freq,
	}
	s.UpdateApplies = s.Remainder == 0 && s.CyclesCompleted > 0

	if s.UpdateApplies {
		s.MonthsToNextUpdate = freq
	} else {
		s.MonthsToNextUpdate = freq - s.Remainder
	}

	s.MonthsToRenewal = rec.DurationMonths - elapsed
	if s.MonthsToRenewal < 0 {
		s.MonthsToRenewal = 0
	}
	return s, nil
}

// Expired reports whether the contract has run its full duration at the
// reference month. Expired contracts are excluded by the caller, never
// silently zero-priced.
func (s Schedule) Expired(durationMonths int) bool {
	return s.MonthsElapsed >= durationMonths
}

// ContractMonth returns the 1-based month number within the contract,
// used to gate installment surcharges.
func (s Schedule) ContractMonth() int { return s.MonthsElapsed + 1 }
