package refdata

// Corrections holds the manually-reviewed data corrections the pipeline
// applies. Every entry that used to be a hardcoded identifier branch in
// the source procedure lives here as data, so new audit findings are a
// config edit rather than a code change. Defaults() carries the known
// set; a YAML corrections file replaces any section it names.
type Corrections struct {
	// ProviderOverrides is the static facility table consulted before
	// the general provider dimension.
	ProviderOverrides map[string]ProviderInfo `yaml:"provider_overrides"`

	// ProviderRemaps rewrite a deprecated provider id in full (id, name,
	// tax id) to its successor record, after the primary lookup.
	ProviderRemaps []ProviderRemap `yaml:"provider_remaps"`

	// NameCoalesces collapse diverged display names for one legal
	// facility to a single canonical name, after the primary lookup.
	NameCoalesces []NameCoalesce `yaml:"name_coalesces"`

	// RetainedClaims are claim numbers that match the voided-claim
	// pattern but were manually audited as legitimate: their negative
	// lines are dropped and the positive lines kept with paid forced to
	// zero.
	RetainedClaims []string `yaml:"retained_claims"`

	// RepairExcludedRemarks are remarks that disqualify a line from the
	// single-date/multi-unit repair.
	RepairExcludedRemarks []string `yaml:"repair_excluded_remarks"`

	// GapRepairs scope the contiguous-gap repair: within each scope,
	// each line's DOS end is chained to the day before the next line's
	// DOS start.
	GapRepairs []GapRepairScope `yaml:"gap_repairs"`

	// LOSRecoveryRemarks are the payor remarks under which a rejected
	// bed-day line's units are recovered into length-of-stay. A second
	// candidate remark was under review when this set was introduced;
	// adding it is a config edit.
	LOSRecoveryRemarks []string `yaml:"los_recovery_remarks"`

	// ExcludedFacilityGroup names the parent facility whose stays are
	// dropped when they carry neither paid claims nor bed-day lines
	// (therapy-only billing entered as inpatient stays).
	ExcludedFacilityGroup string `yaml:"excluded_facility_group"`
}

// ProviderInfo is the canonical identity for one post-acute facility.
type ProviderInfo struct {
	ParentFacility string `yaml:"parent_facility"`
	DisplayName    string `yaml:"display_name"`
	TaxID          string `yaml:"tax_id"`
}

// ProviderRemap rewrites a deprecated provider id to its successor.
type ProviderRemap struct {
	FromID string       `yaml:"from_id"`
	ToID   string       `yaml:"to_id"`
	Info   ProviderInfo `yaml:"info"`
}

// NameCoalesce replaces one display name with its canonical form.
type NameCoalesce struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// GapRepairScope bounds the contiguous-gap repair to one member at one
// provider within a date window (feed-format dates, inclusive).
type GapRepairScope struct {
	ProviderID  string `yaml:"provider_id"`
	MemberID    string `yaml:"member_id"`
	WindowStart string `yaml:"window_start"`
	WindowEnd   string `yaml:"window_end"`
}

// Defaults returns the corrections in effect when no file is supplied.
func Defaults() Corrections {
	return Corrections{
		ProviderOverrides: map[string]ProviderInfo{
			"PV-SNF-001": {ParentFacility: "Parkview", DisplayName: "Parkview Skilled Nursing & Rehab", TaxID: "35-1180001"},
			"PV-LTC-002": {ParentFacility: "Parkview", DisplayName: "Parkview Extended Care", TaxID: "35-1180001"},
			"LH-SNF-010": {ParentFacility: "Lakeheart", DisplayName: "Lakeheart Transitional Care", TaxID: "35-2240010"},
			"SJ-IRF-021": {ParentFacility: "St. Joseph", DisplayName: "St. Joseph Rehabilitation Hospital", TaxID: "35-3310021"},
		},
		ProviderRemaps: []ProviderRemap{
			// LH-SNF-004 closed in 2019; claims still arrive under the
			// retired id and belong to its successor campus.
			{
				FromID: "LH-SNF-004",
				ToID:   "LH-SNF-010",
				Info:   ProviderInfo{ParentFacility: "Lakeheart", DisplayName: "Lakeheart Transitional Care", TaxID: "35-2240010"},
			},
		},
		NameCoalesces: []NameCoalesce{
			{From: "St Joseph Rehab Hospital", To: "St. Joseph Rehabilitation Hospital"},
		},
		RetainedClaims: []string{"CLM-2023-0048127"},
		RepairExcludedRemarks: []string{
			"BEDHOLD DAYS BILLED SEPARATELY",
			"LEAVE OF ABSENCE",
		},
		GapRepairs: []GapRepairScope{
			{
				ProviderID:  "PV-SNF-001",
				MemberID:    "M000731455",
				WindowStart: "2023-04-01",
				WindowEnd:   "2023-09-30",
			},
		},
		LOSRecoveryRemarks: []string{
			"SERVICE DATE RANGE INVALID",
		},
		ExcludedFacilityGroup: "Parkview",
	}
}

// RemarkSet builds a lookup set from a remark list.
func RemarkSet(remarks []string) map[string]bool {
	set := make(map[string]bool, len(remarks))
	for _, r := range remarks {
		set[r] = true
	}
	return set
}
