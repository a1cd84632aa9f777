package model

import "time"

// ChargeLine is one corrected unit of billed service: the surviving
// revision of a claim line, with provider and patient identity resolved
// and the date-of-service range subject to in-place repair.
type ChargeLine struct {
	// ChargeID is a surrogate key assigned in deterministic feed order
	// (claim, worksheet, line, revision). It is the stable ordering
	// tie-break everywhere downstream.
	ChargeID int64

	ClaimNumber     string
	WorksheetNumber string
	LineNumber      int32
	// LineSequence numbers the surviving lines within a claim, ordered
	// by (worksheet, line, revision).
	LineSequence int32

	ProviderID string
	// Facility is the canonical parent-facility name; stays partition on
	// (PatientID, Facility).
	Facility     string
	FacilityName string
	TaxID        string

	PatientID   string
	MemberID    string
	PatientName string

	// DOSStart/DOSEnd are inclusive calendar dates at UTC midnight.
	// DOSEnd is mutated by the date repair pass.
	DOSStart time.Time
	DOSEnd   time.Time

	ProcedureCode string
	Units         int32
	PaidCents     int64
	Remark        string
	IsBedDayCode  bool

	// DerivedDays is the repaired span in days, set by the repair pass;
	// zero when no repair touched the line.
	DerivedDays int32

	// StayID is assigned by the interval merger.
	StayID int64
}

// SpanDays returns the inclusive calendar span of the line's date range.
func (c *ChargeLine) SpanDays() int32 {
	return int32(c.DOSEnd.Sub(c.DOSStart)/(24*time.Hour)) + 1
}
