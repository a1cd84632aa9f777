package stays

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/pacstays/internal/model"
	"github.com/gyeh/pacstays/internal/normalize"
)

var nextChargeID int64

func day(y int, m time.Month, d int) time.Time {
	return normalize.Day(y, m, d)
}

func line(patient, facility string, start, end time.Time, opts ...func(*model.ChargeLine)) *model.ChargeLine {
	nextChargeID++
	ln := &model.ChargeLine{
		ChargeID:      nextChargeID,
		ClaimNumber:   "CLM-1",
		PatientID:     patient,
		MemberID:      patient,
		Facility:      facility,
		DOSStart:      start,
		DOSEnd:        end,
		ProcedureCode: "0110",
		Units:         int32(normalize.DaysBetween(start, end)) + 1,
		PaidCents:     10000,
		IsBedDayCode:  true,
	}
	for _, o := range opts {
		o(ln)
	}
	return ln
}

func merge(t *testing.T, lines []*model.ChargeLine) *Result {
	t.Helper()
	m := &Merger{Workers: 2, Log: zerolog.Nop()}
	res := m.Merge(lines)
	AssignIDs(res.Stays)
	return res
}

func TestMerge_SeparateIslands(t *testing.T) {
	lines := []*model.ChargeLine{
		line("P1", "Lakeheart", day(2024, 1, 1), day(2024, 1, 10)),
		line("P1", "Lakeheart", day(2024, 1, 11), day(2024, 1, 20)), // touches: same stay
		line("P1", "Lakeheart", day(2024, 2, 1), day(2024, 2, 5)),   // gap: new stay
	}
	res := merge(t, lines)

	if len(res.Stays) != 2 {
		t.Fatalf("expected 2 stays, got %d", len(res.Stays))
	}
	first := res.Stays[0]
	if !first.Begin.Equal(day(2024, 1, 1)) || !first.End.Equal(day(2024, 1, 20)) {
		t.Errorf("first stay range = [%v, %v]", first.Begin, first.End)
	}
	if first.TotalDays != 20 {
		t.Errorf("first stay total days = %d, want 20", first.TotalDays)
	}
}

func TestMerge_EnclosedSubRangesCollapse(t *testing.T) {
	// A spans the full range; B and C each cover a day already inside
	// A. The previous-row scan splits C off; the correction pass must
	// produce exactly one stay.
	a := line("P1", "Parkview", day(2024, 1, 1), day(2024, 3, 30))
	b := line("P1", "Parkview", day(2024, 1, 10), day(2024, 1, 10))
	c := line("P1", "Parkview", day(2024, 2, 14), day(2024, 2, 14))
	res := merge(t, []*model.ChargeLine{a, b, c})

	if len(res.Stays) != 1 {
		t.Fatalf("expected 1 stay, got %d", len(res.Stays))
	}
	s := res.Stays[0]
	if !s.Begin.Equal(day(2024, 1, 1)) || !s.End.Equal(day(2024, 3, 30)) {
		t.Errorf("stay range = [%v, %v], want [2024-01-01, 2024-03-30]", s.Begin, s.End)
	}
	if len(s.Lines) != 3 {
		t.Errorf("stay has %d lines, want 3", len(s.Lines))
	}
	if res.SplitsRepaired == 0 {
		t.Error("expected the correction pass to repair at least one split")
	}
	if res.ResidualAdjacentPairs != 0 {
		t.Errorf("residual adjacent pairs = %d, want 0", res.ResidualAdjacentPairs)
	}
}

func TestMerge_ChainOfThreeSplitsConverges(t *testing.T) {
	// Three enclosed sub-ranges spread far apart force a chain of
	// splits; one correction sweep per level, iterated to a fixpoint.
	lines := []*model.ChargeLine{
		line("P1", "Parkview", day(2024, 1, 1), day(2024, 6, 30)),
		line("P1", "Parkview", day(2024, 1, 15), day(2024, 1, 15)),
		line("P1", "Parkview", day(2024, 3, 1), day(2024, 3, 1)),
		line("P1", "Parkview", day(2024, 5, 20), day(2024, 5, 20)),
	}
	res := merge(t, lines)

	if len(res.Stays) != 1 {
		t.Fatalf("expected 1 stay, got %d", len(res.Stays))
	}
	if res.ResidualAdjacentPairs != 0 {
		t.Errorf("residual adjacent pairs = %d, want 0", res.ResidualAdjacentPairs)
	}
}

func TestMerge_PartitionsAreIndependent(t *testing.T) {
	lines := []*model.ChargeLine{
		line("P1", "Parkview", day(2024, 1, 1), day(2024, 1, 10)),
		line("P1", "Lakeheart", day(2024, 1, 5), day(2024, 1, 15)),
		line("P2", "Parkview", day(2024, 1, 1), day(2024, 1, 10)),
	}
	res := merge(t, lines)

	if len(res.Stays) != 3 {
		t.Fatalf("expected 3 stays across partitions, got %d", len(res.Stays))
	}
}

func TestMerge_NoOverlapInvariant(t *testing.T) {
	// A messy partition: overlaps, touches, enclosures, and true gaps.
	lines := []*model.ChargeLine{
		line("P1", "Lakeheart", day(2024, 1, 1), day(2024, 1, 31)),
		line("P1", "Lakeheart", day(2024, 1, 5), day(2024, 1, 5)),
		line("P1", "Lakeheart", day(2024, 1, 20), day(2024, 2, 3)),
		line("P1", "Lakeheart", day(2024, 2, 4), day(2024, 2, 10)),
		line("P1", "Lakeheart", day(2024, 3, 1), day(2024, 3, 4)),
		line("P1", "Lakeheart", day(2024, 3, 2), day(2024, 3, 2)),
		line("P1", "Lakeheart", day(2024, 5, 1), day(2024, 5, 1)),
	}
	res := merge(t, lines)

	for i := 0; i+1 < len(res.Stays); i++ {
		cur, next := res.Stays[i], res.Stays[i+1]
		if !next.Begin.After(cur.End.AddDate(0, 0, 1)) {
			t.Errorf("stays %d and %d touch or overlap: [%v,%v] [%v,%v]",
				cur.ID, next.ID, cur.Begin, cur.End, next.Begin, next.End)
		}
	}

	// Coverage: every line belongs to exactly one stay, contained in it.
	seen := make(map[int64]int)
	for _, s := range res.Stays {
		for _, ln := range s.Lines {
			seen[ln.ChargeID]++
			if ln.DOSStart.Before(s.Begin) || ln.DOSEnd.After(s.End) {
				t.Errorf("line %d [%v,%v] escapes stay [%v,%v]",
					ln.ChargeID, ln.DOSStart, ln.DOSEnd, s.Begin, s.End)
			}
			if ln.StayID != s.ID {
				t.Errorf("line %d carries stay id %d, member of %d", ln.ChargeID, ln.StayID, s.ID)
			}
		}
	}
	for _, ln := range lines {
		if seen[ln.ChargeID] != 1 {
			t.Errorf("line %d belongs to %d stays", ln.ChargeID, seen[ln.ChargeID])
		}
	}
}

func TestMerge_Aggregates(t *testing.T) {
	paid := line("P1", "Lakeheart", day(2024, 1, 1), day(2024, 1, 10))
	unpaidDup := line("P1", "Lakeheart", day(2024, 1, 1), day(2024, 1, 10),
		func(l *model.ChargeLine) { l.PaidCents = 0 })
	therapy := line("P1", "Lakeheart", day(2024, 1, 3), day(2024, 1, 3),
		func(l *model.ChargeLine) { l.IsBedDayCode = false; l.PaidCents = 5000 })
	res := merge(t, []*model.ChargeLine{paid, unpaidDup, therapy})

	if len(res.Stays) != 1 {
		t.Fatalf("expected 1 stay, got %d", len(res.Stays))
	}
	s := res.Stays[0]
	if s.PaidCents != paid.PaidCents+5000 {
		t.Errorf("paid cents = %d", s.PaidCents)
	}
	// Only the paid bed-day line counts toward length-of-stay.
	if s.LengthOfStay != 10 {
		t.Errorf("length of stay = %d, want 10", s.LengthOfStay)
	}
	if !s.HasPaidClaims || !s.HasBedDayCodes {
		t.Errorf("flags = paid:%v bedday:%v", s.HasPaidClaims, s.HasBedDayCodes)
	}
}

func TestAssignIDs_OrderedByPartitionAndBegin(t *testing.T) {
	lines := []*model.ChargeLine{
		line("P2", "Parkview", day(2024, 1, 1), day(2024, 1, 5)),
		line("P1", "Parkview", day(2024, 6, 1), day(2024, 6, 5)),
		line("P1", "Parkview", day(2024, 1, 1), day(2024, 1, 5)),
	}
	res := merge(t, lines)

	if len(res.Stays) != 3 {
		t.Fatalf("expected 3 stays, got %d", len(res.Stays))
	}
	for i, s := range res.Stays {
		if s.ID != int64(i+1) {
			t.Errorf("stay %d has id %d", i, s.ID)
		}
	}
	if res.Stays[0].PatientID != "P1" || !res.Stays[0].Begin.Equal(day(2024, 1, 1)) {
		t.Errorf("first stay is %s @ %v", res.Stays[0].PatientID, res.Stays[0].Begin)
	}
	if res.Stays[2].PatientID != "P2" {
		t.Errorf("last stay is %s, want P2", res.Stays[2].PatientID)
	}
}
