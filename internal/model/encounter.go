package model

import "time"

// Encounter classes as reported by the hospital feed.
const (
	ClassInpatient   = "inpatient"
	ClassEmergency   = "emergency"
	ClassObservation = "observation"
	ClassOutpatient  = "outpatient"
)

// Admission statuses that disqualify an encounter as a readmission target.
const (
	AdmitStatusCanceled = "Canceled"
	AdmitStatusPending  = "Pending Admission"
)

// Encounter is one hospital visit record joined in by the encounter linker.
type Encounter struct {
	EncounterID string
	PatientID   string

	AdmitTime     time.Time
	DischargeTime time.Time

	Class       string
	AdmitStatus string
	Disposition string

	Department string
	Diagnosis  string
	DRG        string
	Payor      string

	ChargesCents int64
	RiskScore    float64
}

// AdmitDate and DischargeDate truncate the timestamps to calendar dates;
// the adjacency windows are defined over dates, not clock times.
func (e *Encounter) AdmitDate() time.Time {
	return truncateDay(e.AdmitTime)
}

func (e *Encounter) DischargeDate() time.Time {
	return truncateDay(e.DischargeTime)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StayVisit links an admitted-from-stay encounter to its stay, with the
// derived readmission target and window flags.
type StayVisit struct {
	Stay      *Stay
	Encounter *Encounter

	// Readmission is the earliest qualifying inpatient encounter within
	// the 30-day window after the index discharge, or nil.
	Readmission *Encounter

	// ReadmitSpanDays counts calendar days from index discharge to
	// readmission admission inclusive of both endpoints; zero when no
	// readmission was found.
	ReadmitSpanDays int32

	Within7Days  bool
	Within10Days bool
	Within14Days bool
	Within30Days bool
}
