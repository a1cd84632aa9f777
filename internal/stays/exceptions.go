package stays

import (
	"github.com/gyeh/pacstays/internal/model"
)

// ApplyLOSExceptions runs the post-merge length-of-stay overrides, in
// order:
//
//  1. A stay with zero length-of-stay and no paid claims, whose bed-day
//     lines all carry a recovery remark, gets its length-of-stay set to
//     the sum of units on those lines. The payor rejected the original
//     dates, but the billed intent is real.
//  2. Length-of-stay exceeding the calendar span is clamped down to it;
//     multiple paid lines can double-cover the same dates.
//
// Returns the recovery and clamp counts.
func ApplyLOSExceptions(all []*model.Stay, recoveryRemarks map[string]bool) (recovered, clamped int64) {
	for _, s := range all {
		if s.LengthOfStay == 0 && !s.HasPaidClaims {
			if units, ok := recoverableUnits(s, recoveryRemarks); ok {
				s.LengthOfStay = units
				recovered++
			}
		}
		if s.LengthOfStay > s.TotalDays {
			s.LengthOfStay = s.TotalDays
			clamped++
		}
	}
	return recovered, clamped
}

// recoverableUnits sums units over the stay's bed-day lines when every
// one of them carries a recovery remark. ok is false when the stay has
// no bed-day lines or any bed-day line carries a different remark.
func recoverableUnits(s *model.Stay, recoveryRemarks map[string]bool) (int32, bool) {
	var units int32
	var seen bool
	for _, ln := range s.Lines {
		if !ln.IsBedDayCode {
			continue
		}
		if !recoveryRemarks[ln.Remark] {
			return 0, false
		}
		units += ln.Units
		seen = true
	}
	return units, seen
}

// ApplyExclusion drops stays at the excluded facility group that carry
// neither paid claims nor bed-day lines. Those records are therapy-only
// billing entered as inpatient stays, a known data-entry pattern at that
// group; elsewhere the same shape is legitimate and kept.
func ApplyExclusion(all []*model.Stay, facilityGroup string) ([]*model.Stay, int64) {
	if facilityGroup == "" {
		return all, 0
	}
	kept := all[:0]
	var excluded int64
	for _, s := range all {
		if s.Facility == facilityGroup && !s.HasPaidClaims && !s.HasBedDayCodes {
			excluded++
			continue
		}
		kept = append(kept, s)
	}
	return kept, excluded
}
