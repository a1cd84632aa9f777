package refdata

// Claim categories admitted into the stay pipeline.
const (
	CategorySkilledNursing = "SNF"
	CategoryLongTermCare   = "LTC"
	CategoryInpatientRehab = "IRF"
)

// AdmittedCategories lists the claim categories in canonical order.
var AdmittedCategories = []string{
	CategorySkilledNursing,
	CategoryLongTermCare,
	CategoryInpatientRehab,
}

// IsAdmittedCategory reports whether the claim category is one the
// pipeline processes.
func IsAdmittedCategory(cat string) bool {
	for _, c := range AdmittedCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// Billing-code categories that count as bed-day-bearing when the code
// reference table is available.
var BedDayCategories = map[string]bool{
	"ROOM AND BOARD":  true,
	"SKILLED NURSING": true,
}

// bedDayRanges are the revenue-code ranges used when no code reference
// table is loaded (offline plan runs): room & board 0100-0169 and
// 0190-0199, skilled nursing 0550-0559.
var bedDayRanges = [][2]int{
	{100, 169},
	{190, 199},
	{550, 559},
}

// IsBedDayRevenueCode reports whether a normalized (zero-padded) revenue
// code falls in the built-in room/board or skilled-nursing ranges.
func IsBedDayRevenueCode(code string) bool {
	if len(code) != 4 {
		return false
	}
	n := 0
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
		n = n*10 + int(r-'0')
	}
	for _, rg := range bedDayRanges {
		if n >= rg[0] && n <= rg[1] {
			return true
		}
	}
	return false
}

// MemberSentinels are member identifiers the claims system emits when
// the member is unknown; lines carrying them never belong to a patient.
var MemberSentinels = map[string]bool{
	"":          true,
	"0":         true,
	"UNKNOWN":   true,
	"999999999": true,
}

// DuplicateClaimRemark marks a line the payor rejected as a duplicate
// submission of an already-processed claim.
const DuplicateClaimRemark = "DUPLICATE OF PROCESSED CLAIM"

// Readmission index encounters with these discharge dispositions are not
// eligible to produce readmission links.
var ExcludedDispositions = map[string]bool{
	"Expired":                     true,
	"Left Against Medical Advice": true,
	"Hospice - Medical Facility":  true,
	"Hospice - Home":              true,
}
