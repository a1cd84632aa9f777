package model

import "time"

// Stay is a maximal consolidation of ChargeLines for one patient at one
// facility whose date ranges touch or overlap within a one-day tolerance.
type Stay struct {
	// ID is sequential over (patient, facility, begin date) ordering,
	// assigned after the split-correction pass settles membership.
	ID int64

	PatientID   string
	MemberID    string
	PatientName string
	Facility    string

	Begin time.Time
	End   time.Time

	PaidCents      int64
	TotalDays      int32
	LengthOfStay   int32
	HasPaidClaims  bool
	HasBedDayCodes bool

	Lines []*ChargeLine

	// PriorEncounter is the most recent hospital encounter discharged
	// into this stay, when one exists in the lookback window.
	PriorEncounter *Encounter
}

// Recompute rebuilds the stay's dates and aggregates from its current
// membership. Length-of-stay counts billed units only on paid bed-day
// lines; a facility may bill the same span twice under different stay
// classifications and only the paid version represents real bed days.
func (s *Stay) Recompute() {
	if len(s.Lines) == 0 {
		return
	}
	s.Begin = s.Lines[0].DOSStart
	s.End = s.Lines[0].DOSEnd
	s.PaidCents = 0
	s.LengthOfStay = 0
	s.HasPaidClaims = false
	s.HasBedDayCodes = false

	for _, ln := range s.Lines {
		if ln.DOSStart.Before(s.Begin) {
			s.Begin = ln.DOSStart
		}
		if ln.DOSEnd.After(s.End) {
			s.End = ln.DOSEnd
		}
		s.PaidCents += ln.PaidCents
		if ln.PaidCents > 0 {
			s.HasPaidClaims = true
		}
		if ln.IsBedDayCode {
			s.HasBedDayCodes = true
			if ln.PaidCents > 0 {
				s.LengthOfStay += ln.Units
			}
		}
	}
	s.TotalDays = int32(s.End.Sub(s.Begin)/(24*time.Hour)) + 1
}
