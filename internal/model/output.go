package model

import (
	"time"

	"github.com/google/uuid"
)

// StayDetailRow is one serving row per ChargeLine, carrying the resolved
// stay, patient and facility identity, and the prior-hospitalization
// summary. Rebuilt in full on every run.
type StayDetailRow struct {
	RunID         uuid.UUID
	RunAt         time.Time
	CoverageStart time.Time
	CoverageEnd   time.Time

	StayID    int64
	StayBegin time.Time
	StayEnd   time.Time

	ChargeID        int64
	ClaimNumber     string
	WorksheetNumber string
	LineNumber      int32
	LineSequence    int32

	ProviderID   string
	Facility     string
	FacilityName string
	TaxID        *string

	PatientID   string
	MemberID    string
	PatientName string
	BirthDate   *time.Time
	PCPName     *string

	DOSStart      time.Time
	DOSEnd        time.Time
	ProcedureCode string
	Units         int32
	PaidCents     int64
	Remark        *string
	IsBedDayCode  bool

	LengthOfStay int32
	TotalDays    int32

	// PaidLineSequence numbers the paid lines within the stay; the first
	// paid line carries 1 and is the consuming layer's representative
	// row for the stay. Unpaid lines carry 0.
	PaidLineSequence int32

	PriorEncounterID *string
	PriorDischargeAt *time.Time
	PriorDepartment  *string
	PriorDiagnosis   *string
	PriorDRG         *string
	PriorPayor       *string
}

// StayDetailColumns returns the ordered column names for COPY into
// serving.stay_claim_detail.
func StayDetailColumns() []string {
	return []string{
		"run_id",
		"run_at",
		"coverage_start",
		"coverage_end",
		"stay_id",
		"stay_begin",
		"stay_end",
		"charge_id",
		"claim_number",
		"worksheet_number",
		"line_number",
		"line_sequence",
		"provider_id",
		"facility",
		"facility_name",
		"tax_id",
		"patient_id",
		"member_id",
		"patient_name",
		"birth_date",
		"pcp_name",
		"dos_start",
		"dos_end",
		"procedure_code",
		"units",
		"paid_cents",
		"remark",
		"is_bed_day_code",
		"length_of_stay",
		"total_days",
		"paid_line_sequence",
		"prior_encounter_id",
		"prior_discharge_at",
		"prior_department",
		"prior_diagnosis",
		"prior_drg",
		"prior_payor",
	}
}

// CopyValues returns the row values in StayDetailColumns order.
func (r *StayDetailRow) CopyValues() []any {
	return []any{
		r.RunID,
		r.RunAt,
		r.CoverageStart,
		r.CoverageEnd,
		r.StayID,
		r.StayBegin,
		r.StayEnd,
		r.ChargeID,
		r.ClaimNumber,
		r.WorksheetNumber,
		r.LineNumber,
		r.LineSequence,
		r.ProviderID,
		r.Facility,
		r.FacilityName,
		r.TaxID,
		r.PatientID,
		r.MemberID,
		r.PatientName,
		r.BirthDate,
		r.PCPName,
		r.DOSStart,
		r.DOSEnd,
		r.ProcedureCode,
		r.Units,
		r.PaidCents,
		r.Remark,
		r.IsBedDayCode,
		r.LengthOfStay,
		r.TotalDays,
		r.PaidLineSequence,
		r.PriorEncounterID,
		r.PriorDischargeAt,
		r.PriorDepartment,
		r.PriorDiagnosis,
		r.PriorDRG,
		r.PriorPayor,
	}
}

// VisitDetailRow is one serving row per admitted-from-stay hospital
// encounter, carrying the stay it links to and the readmission flags.
type VisitDetailRow struct {
	RunID         uuid.UUID
	RunAt         time.Time
	CoverageStart time.Time
	CoverageEnd   time.Time

	StayID    int64
	Facility  string
	StayBegin time.Time
	StayEnd   time.Time

	PatientID   string
	MemberID    string
	PatientName string

	EncounterID  string
	AdmitAt      time.Time
	DischargeAt  time.Time
	Class        string
	AdmitStatus  string
	Disposition  string
	Department   string
	Diagnosis    string
	DRG          string
	Payor        string
	ChargesCents int64
	RiskScore    float64

	ReadmitEncounterID *string
	ReadmitAdmitAt     *time.Time
	ReadmitSpanDays    int32
	ReadmitWithin7     bool
	ReadmitWithin10    bool
	ReadmitWithin14    bool
	ReadmitWithin30    bool
}

// VisitDetailColumns returns the ordered column names for COPY into
// serving.hospital_visit_detail.
func VisitDetailColumns() []string {
	return []string{
		"run_id",
		"run_at",
		"coverage_start",
		"coverage_end",
		"stay_id",
		"facility",
		"stay_begin",
		"stay_end",
		"patient_id",
		"member_id",
		"patient_name",
		"encounter_id",
		"admit_at",
		"discharge_at",
		"class",
		"admit_status",
		"disposition",
		"department",
		"diagnosis",
		"drg",
		"payor",
		"charges_cents",
		"risk_score",
		"readmit_encounter_id",
		"readmit_admit_at",
		"readmit_span_days",
		"readmit_within_7",
		"readmit_within_10",
		"readmit_within_14",
		"readmit_within_30",
	}
}

// CopyValues returns the row values in VisitDetailColumns order.
func (r *VisitDetailRow) CopyValues() []any {
	return []any{
		r.RunID,
		r.RunAt,
		r.CoverageStart,
		r.CoverageEnd,
		r.StayID,
		r.Facility,
		r.StayBegin,
		r.StayEnd,
		r.PatientID,
		r.MemberID,
		r.PatientName,
		r.EncounterID,
		r.AdmitAt,
		r.DischargeAt,
		r.Class,
		r.AdmitStatus,
		r.Disposition,
		r.Department,
		r.Diagnosis,
		r.DRG,
		r.Payor,
		r.ChargesCents,
		r.RiskScore,
		r.ReadmitEncounterID,
		r.ReadmitAdmitAt,
		r.ReadmitSpanDays,
		r.ReadmitWithin7,
		r.ReadmitWithin10,
		r.ReadmitWithin14,
		r.ReadmitWithin30,
	}
}
