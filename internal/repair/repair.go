// Package repair corrects known date-of-service entry defects in place:
// degenerate single-date multi-unit lines, and provider-specific
// contiguous-date chains scoped by the corrections table.
package repair

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/pacstays/internal/model"
	"github.com/gyeh/pacstays/internal/normalize"
	"github.com/gyeh/pacstays/internal/refdata"
)

// Repairer applies the date repair pass.
type Repairer struct {
	Corrections *refdata.Corrections
	Log         zerolog.Logger
}

// Result carries repair metrics.
type Result struct {
	SingleDateFixes int64
	GapChainFixes   int64
}

// Repair mutates the lines in place. Single-date extension runs first,
// then the scoped contiguous-gap chaining; the two corrections are
// independent but the source procedure fixed that order.
func (r *Repairer) Repair(lines []*model.ChargeLine) *Result {
	res := &Result{}
	res.SingleDateFixes = r.extendSingleDates(lines)
	res.GapChainFixes = r.chainGaps(lines)
	return res
}

// extendSingleDates rewrites bed-day lines billed as a single date with
// multiple units: the facility entered the admission date in both DOS
// fields and put the real span in the unit count.
func (r *Repairer) extendSingleDates(lines []*model.ChargeLine) int64 {
	excluded := make(map[string]bool, len(r.Corrections.RepairExcludedRemarks))
	for _, rem := range r.Corrections.RepairExcludedRemarks {
		excluded[normalize.Remark(rem)] = true
	}

	var fixed int64
	for _, ln := range lines {
		if !ln.IsBedDayCode || ln.Units <= 1 {
			continue
		}
		if !ln.DOSStart.Equal(ln.DOSEnd) {
			continue
		}
		if excluded[ln.Remark] {
			continue
		}
		ln.DOSEnd = ln.DOSStart.AddDate(0, 0, int(ln.Units)-1)
		ln.DerivedDays = ln.Units
		fixed++
	}
	return fixed
}

// chainGaps applies the contiguous-gap repair within each configured
// scope: every line's DOS end is pulled to the day before the next
// line's DOS start. Same-day claims collapse to zero width; the last
// line keeps its original end.
func (r *Repairer) chainGaps(lines []*model.ChargeLine) int64 {
	var fixed int64
	for _, scope := range r.Corrections.GapRepairs {
		start := normalize.ParseDate(scope.WindowStart)
		end := normalize.ParseDate(scope.WindowEnd)
		if start == nil || end == nil {
			r.Log.Warn().
				Str("member", scope.MemberID).
				Str("provider", scope.ProviderID).
				Msg("gap repair scope skipped: unparseable window")
			continue
		}
		fixed += chainScope(lines, scope, *start, *end)
	}
	return fixed
}

func chainScope(lines []*model.ChargeLine, scope refdata.GapRepairScope, winStart, winEnd time.Time) int64 {
	var in []*model.ChargeLine
	for _, ln := range lines {
		if ln.ProviderID != scope.ProviderID || ln.MemberID != scope.MemberID {
			continue
		}
		if ln.DOSStart.Before(winStart) || ln.DOSStart.After(winEnd) {
			continue
		}
		in = append(in, ln)
	}
	if len(in) < 2 {
		return 0
	}

	sort.Slice(in, func(i, j int) bool {
		if !in[i].DOSStart.Equal(in[j].DOSStart) {
			return in[i].DOSStart.Before(in[j].DOSStart)
		}
		return in[i].ChargeID < in[j].ChargeID
	})

	var fixed int64
	for i := 0; i < len(in)-1; i++ {
		cur, next := in[i], in[i+1]
		var newEnd time.Time
		if next.DOSStart.Equal(cur.DOSStart) {
			newEnd = cur.DOSStart
		} else {
			newEnd = next.DOSStart.AddDate(0, 0, -1)
		}
		if !newEnd.Equal(cur.DOSEnd) {
			cur.DOSEnd = newEnd
			fixed++
		}
		cur.DerivedDays = cur.SpanDays()
	}
	return fixed
}
