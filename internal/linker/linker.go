// Package linker relates hospital encounters to post-acute stays: the
// prior hospitalization each stay was discharged from, the encounters
// admitted out of each stay, and the readmissions derived from those.
package linker

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/gyeh/pacstays/internal/model"
	"github.com/gyeh/pacstays/internal/normalize"
	"github.com/gyeh/pacstays/internal/refdata"
)

// Lookback and lookahead bounds for candidate encounters, in days.
// The lookahead is 31 rather than 30 because some facilities stop
// billing the day the patient leaves without returning by midnight.
const (
	lookbackDays  = 14
	lookaheadDays = 31
	readmitWindow = 30
)

// Linker relates encounters to stays.
type Linker struct {
	Log zerolog.Logger
}

// Result carries the visit links and linkage metrics.
type Result struct {
	// Visits holds one entry per admitted-from-stay encounter, after
	// the most-recent-stay tie-break, with readmission flags computed.
	Visits []*model.StayVisit

	PriorLinks   int64
	Readmissions int64
}

// Link classifies encounters against every stay and derives readmission
// links. Stays gain their PriorEncounter in place.
func (l *Linker) Link(all []*model.Stay, encounters []*model.Encounter) *Result {
	byPatient := make(map[string][]*model.Encounter)
	for _, e := range encounters {
		byPatient[e.PatientID] = append(byPatient[e.PatientID], e)
	}
	for _, list := range byPatient {
		sort.Slice(list, func(i, j int) bool {
			if !list[i].AdmitTime.Equal(list[j].AdmitTime) {
				return list[i].AdmitTime.Before(list[j].AdmitTime)
			}
			return list[i].EncounterID < list[j].EncounterID
		})
	}

	res := &Result{}
	var links []*model.StayVisit

	for _, s := range all {
		var prior *model.Encounter
		for _, e := range byPatient[s.PatientID] {
			discharge := e.DischargeDate()
			admit := e.AdmitDate()
			if discharge.Before(s.Begin.AddDate(0, 0, -lookbackDays)) {
				continue
			}
			if admit.After(s.End.AddDate(0, 0, lookaheadDays)) {
				continue
			}

			// discharged_to_stay: discharge in [begin-14, begin].
			if !discharge.After(s.Begin) {
				if prior == nil || e.DischargeTime.After(prior.DischargeTime) {
					prior = e
				}
			}

			// admitted_from_stay: admission in (begin, end+1].
			if admit.After(s.Begin) && !admit.After(s.End.AddDate(0, 0, 1)) {
				links = append(links, &model.StayVisit{Stay: s, Encounter: e})
			}
		}
		if prior != nil {
			s.PriorEncounter = prior
			res.PriorLinks++
		}
	}

	links = dedupeByEncounter(links)

	for _, v := range links {
		l.deriveReadmission(v, byPatient[v.Stay.PatientID])
		if v.Readmission != nil {
			res.Readmissions++
		}
	}

	sort.Slice(links, func(i, j int) bool {
		a, b := links[i], links[j]
		if a.Stay.ID != b.Stay.ID {
			return a.Stay.ID < b.Stay.ID
		}
		if !a.Encounter.AdmitTime.Equal(b.Encounter.AdmitTime) {
			return a.Encounter.AdmitTime.Before(b.Encounter.AdmitTime)
		}
		return a.Encounter.EncounterID < b.Encounter.EncounterID
	})
	res.Visits = links
	return res
}

// dedupeByEncounter keeps one link per encounter: the most recent stay
// by begin date. Overlapping or adjacent stays can both claim the same
// admission; the later stay is the one the patient actually left from.
func dedupeByEncounter(links []*model.StayVisit) []*model.StayVisit {
	best := make(map[string]*model.StayVisit, len(links))
	for _, v := range links {
		cur, ok := best[v.Encounter.EncounterID]
		if !ok {
			best[v.Encounter.EncounterID] = v
			continue
		}
		if v.Stay.Begin.After(cur.Stay.Begin) ||
			(v.Stay.Begin.Equal(cur.Stay.Begin) && v.Stay.ID > cur.Stay.ID) {
			best[v.Encounter.EncounterID] = v
		}
	}
	out := make([]*model.StayVisit, 0, len(best))
	for _, v := range best {
		out = append(out, v)
	}
	return out
}

// deriveReadmission finds the earliest qualifying inpatient encounter
// within 30 days of the index discharge and sets the window flags. The
// day span counts both the discharge day and the readmission day.
func (l *Linker) deriveReadmission(v *model.StayVisit, patientEncs []*model.Encounter) {
	index := v.Encounter
	if index.Class != model.ClassInpatient {
		return
	}
	if refdata.ExcludedDispositions[index.Disposition] {
		return
	}

	for _, e := range patientEncs {
		if e.EncounterID == index.EncounterID || e.Class != model.ClassInpatient {
			continue
		}
		if e.AdmitStatus == model.AdmitStatusCanceled || e.AdmitStatus == model.AdmitStatusPending {
			continue
		}
		if !e.AdmitTime.After(index.DischargeTime) {
			continue
		}
		days := normalize.DaysBetween(index.DischargeDate(), e.AdmitDate())
		if days > readmitWindow {
			// patientEncs is admit-ordered, nothing later qualifies.
			break
		}

		span := int32(days) + 1
		v.Readmission = e
		v.ReadmitSpanDays = span
		v.Within7Days = span < 7
		v.Within10Days = span < 10
		v.Within14Days = span < 14
		v.Within30Days = span < 30
		return
	}
}
