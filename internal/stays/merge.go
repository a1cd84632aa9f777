// Package stays consolidates charge lines into non-overlapping stays per
// patient and facility (gaps-and-islands), then applies the
// length-of-stay exception rules and the facility exclusion.
package stays

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gyeh/pacstays/internal/model"
)

// Merger groups charge lines into stays. Partitions are independent, so
// the scan fans out across a bounded worker pool.
type Merger struct {
	Workers int
	Log     zerolog.Logger
}

// Result carries the merged stays and grouping metrics.
type Result struct {
	Stays []*model.Stay

	StaysInitial   int64
	SplitsRepaired int64
	// ResidualAdjacentPairs counts adjacent-touching pairs left after
	// the split-correction fixpoint. Must be zero; logged so a
	// regression surfaces instead of silently producing split stays.
	ResidualAdjacentPairs int64
}

type partitionKey struct {
	patient  string
	facility string
}

// Merge runs the grouping scan and split correction over all lines and
// returns stays ordered by (patient, facility, begin date). Stay ids are
// not assigned here; AssignIDs runs after the exclusion rule settles the
// final set.
func (m *Merger) Merge(lines []*model.ChargeLine) *Result {
	parts := make(map[partitionKey][]*model.ChargeLine)
	for _, ln := range lines {
		k := partitionKey{ln.PatientID, ln.Facility}
		parts[k] = append(parts[k], ln)
	}

	keys := make([]partitionKey, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].patient != keys[j].patient {
			return keys[i].patient < keys[j].patient
		}
		return keys[i].facility < keys[j].facility
	})

	workers := m.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(keys) {
		workers = len(keys)
	}

	type partResult struct {
		stays    []*model.Stay
		initial  int64
		repaired int64
		residual int64
	}

	// Results land in a slice indexed by partition order so the output
	// is byte-stable regardless of worker scheduling.
	results := make([]partResult, len(keys))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				k := keys[i]
				groups := scanPartition(parts[k])
				initial := int64(len(groups))
				merged, repaired := correctSplits(groups)
				for _, s := range merged {
					s.Recompute()
				}
				results[i] = partResult{
					stays:    merged,
					initial:  initial,
					repaired: repaired,
					residual: countAdjacent(merged),
				}
			}
		}()
	}
	for i := range keys {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	res := &Result{}
	for i := range results {
		res.Stays = append(res.Stays, results[i].stays...)
		res.StaysInitial += results[i].initial
		res.SplitsRepaired += results[i].repaired
		res.ResidualAdjacentPairs += results[i].residual
	}

	if res.ResidualAdjacentPairs > 0 {
		m.Log.Error().
			Int64("residual_adjacent_pairs", res.ResidualAdjacentPairs).
			Msg("adjacent stays remain after split correction")
	}
	return res
}

// scanPartition is the initial grouping: a single left-to-right scan
// over lines ordered by (start, end) that opens a new group whenever a
// line does not touch the immediately preceding line's range. A line
// touches when its start lies within [previous start, previous end + 1
// day]. Comparing against the previous line only, not the running group
// extent, misses sub-ranges enclosed by an earlier long span; the split
// correction pass repairs those.
func scanPartition(lines []*model.ChargeLine) []*model.Stay {
	sort.Slice(lines, func(i, j int) bool {
		if !lines[i].DOSStart.Equal(lines[j].DOSStart) {
			return lines[i].DOSStart.Before(lines[j].DOSStart)
		}
		if !lines[i].DOSEnd.Equal(lines[j].DOSEnd) {
			return lines[i].DOSEnd.Before(lines[j].DOSEnd)
		}
		return lines[i].ChargeID < lines[j].ChargeID
	})

	var groups []*model.Stay
	var cur *model.Stay
	var prev *model.ChargeLine

	for _, ln := range lines {
		if prev == nil || ln.DOSStart.After(prev.DOSEnd.AddDate(0, 0, 1)) {
			cur = &model.Stay{
				PatientID:   ln.PatientID,
				MemberID:    ln.MemberID,
				PatientName: ln.PatientName,
				Facility:    ln.Facility,
				Begin:       ln.DOSStart,
				End:         ln.DOSEnd,
			}
			groups = append(groups, cur)
		}
		cur.Lines = append(cur.Lines, ln)
		if ln.DOSEnd.After(cur.End) {
			cur.End = ln.DOSEnd
		}
		prev = ln
	}
	return groups
}

// correctSplits merges adjacent group pairs whose ranges touch or
// overlap within one day, iterated to a fixpoint so chains of three or
// more wrongly split groups also collapse. Groups arrive ordered by
// begin date and stay ordered through the merge.
func correctSplits(groups []*model.Stay) ([]*model.Stay, int64) {
	var repaired int64
	for {
		merged := false
		for i := 0; i+1 < len(groups); i++ {
			cur, next := groups[i], groups[i+1]
			if next.Begin.After(cur.End.AddDate(0, 0, 1)) {
				continue
			}
			cur.Lines = append(cur.Lines, next.Lines...)
			if next.End.After(cur.End) {
				cur.End = next.End
			}
			if next.Begin.Before(cur.Begin) {
				cur.Begin = next.Begin
			}
			groups = append(groups[:i+1], groups[i+2:]...)
			repaired++
			merged = true
			i--
		}
		if !merged {
			return groups, repaired
		}
	}
}

// countAdjacent counts stay pairs that still touch or overlap within one
// day. Non-zero after correctSplits means the fixpoint is broken.
func countAdjacent(groups []*model.Stay) int64 {
	var n int64
	for i := 0; i+1 < len(groups); i++ {
		if !groups[i+1].Begin.After(groups[i].End.AddDate(0, 0, 1)) {
			n++
		}
	}
	return n
}

// AssignIDs numbers the final stay set sequentially in (patient,
// facility, begin date) order and stamps each member line with its stay.
func AssignIDs(all []*model.Stay) {
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.PatientID != b.PatientID {
			return a.PatientID < b.PatientID
		}
		if a.Facility != b.Facility {
			return a.Facility < b.Facility
		}
		if !a.Begin.Equal(b.Begin) {
			return a.Begin.Before(b.Begin)
		}
		return a.End.Before(b.End)
	})
	for i, s := range all {
		s.ID = int64(i + 1)
		for _, ln := range s.Lines {
			ln.StayID = s.ID
		}
	}
}
