package pipeline

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/pacstays/internal/config"
	"github.com/gyeh/pacstays/internal/extract"
	"github.com/gyeh/pacstays/internal/linker"
	"github.com/gyeh/pacstays/internal/logging"
	"github.com/gyeh/pacstays/internal/model"
	"github.com/gyeh/pacstays/internal/normalize"
	"github.com/gyeh/pacstays/internal/refdata"
	"github.com/gyeh/pacstays/internal/repair"
	"github.com/gyeh/pacstays/internal/stays"
)

// BuildResult holds everything the in-memory stages produce: the final
// stay set, the visit links, and both serving row sets ready to publish.
type BuildResult struct {
	Stays  []*model.Stay
	Visits []*model.StayVisit

	StayRows  []*model.StayDetailRow
	VisitRows []*model.VisitDetailRow

	Summary model.RunSummary
}

// Build runs the full in-memory pipeline over one input snapshot:
// extract, repair, merge, split correction, LOS exceptions, exclusion,
// link, assemble. Each stage completes before the next begins. Build
// never touches the database, so dry runs and the offline plan command
// share it with the real thing.
func Build(log zerolog.Logger, cfg *config.Config, in *Inputs, runID uuid.UUID, runAt time.Time) *BuildResult {
	start := time.Now()
	corr := &cfg.Corrections

	ex := &extract.Extractor{
		Resolver:    normalize.NewProviderResolver(corr, in.Providers),
		Patients:    in.Patients,
		IsBedDay:    in.IsBedDay,
		Corrections: corr,
		Log:         logging.Phase(log, "extract"),
	}
	exRes := ex.Extract(in.Claims)
	log.Info().
		Int("lines", len(exRes.Lines)).
		Int64("voided", exRes.LinesVoided).
		Int64("filtered", exRes.LinesFiltered).
		Int64("rejected", exRes.RowsRejected).
		Msg("extract complete")

	rp := &repair.Repairer{Corrections: corr, Log: logging.Phase(log, "repair")}
	rpRes := rp.Repair(exRes.Lines)
	log.Info().
		Int64("single_date_fixes", rpRes.SingleDateFixes).
		Int64("gap_chain_fixes", rpRes.GapChainFixes).
		Msg("date repair complete")

	coverageStart, coverageEnd := coverage(exRes.Lines, runAt)

	mg := &stays.Merger{Workers: cfg.Workers, Log: logging.Phase(log, "merge")}
	mgRes := mg.Merge(exRes.Lines)
	log.Info().
		Int64("stays_initial", mgRes.StaysInitial).
		Int64("splits_repaired", mgRes.SplitsRepaired).
		Int64("residual_adjacent_pairs", mgRes.ResidualAdjacentPairs).
		Msg("interval merge complete")

	recovered, clamped := stays.ApplyLOSExceptions(
		mgRes.Stays, refdata.RemarkSet(corr.LOSRecoveryRemarks))
	final, excluded := stays.ApplyExclusion(mgRes.Stays, corr.ExcludedFacilityGroup)
	stays.AssignIDs(final)
	log.Info().
		Int64("los_recovered", recovered).
		Int64("los_clamped", clamped).
		Int64("stays_excluded", excluded).
		Int("stays_final", len(final)).
		Msg("length-of-stay exceptions complete")

	lk := &linker.Linker{Log: logging.Phase(log, "link")}
	lkRes := lk.Link(final, in.Encounters)
	log.Info().
		Int64("prior_links", lkRes.PriorLinks).
		Int("visit_links", len(lkRes.Visits)).
		Int64("readmissions", lkRes.Readmissions).
		Msg("encounter link complete")

	res := &BuildResult{
		Stays:  final,
		Visits: lkRes.Visits,
	}
	res.StayRows = assembleStayRows(final, in.Patients, runID, runAt, coverageStart, coverageEnd)
	res.VisitRows = assembleVisitRows(lkRes.Visits, runID, runAt, coverageStart, coverageEnd)

	res.Summary = model.RunSummary{
		RunID:                 runID.String(),
		RunAt:                 runAt,
		CoverageStart:         coverageStart,
		CoverageEnd:           coverageEnd,
		RowsLoaded:            int64(len(in.Claims)),
		RowsRejected:          exRes.RowsRejected,
		LinesExtracted:        int64(len(exRes.Lines)),
		LinesVoided:           exRes.LinesVoided,
		LinesFiltered:         exRes.LinesFiltered,
		SingleDateFixes:       rpRes.SingleDateFixes,
		GapChainFixes:         rpRes.GapChainFixes,
		StaysInitial:          mgRes.StaysInitial,
		StaysMerged:           mgRes.SplitsRepaired,
		StaysFinal:            int64(len(final)),
		SplitsRepaired:        mgRes.SplitsRepaired,
		ResidualAdjacentPairs: mgRes.ResidualAdjacentPairs,
		LOSRecovered:          recovered,
		LOSClamped:            clamped,
		StaysExcluded:         excluded,
		EncountersLoaded:      int64(len(in.Encounters)),
		PriorLinks:            lkRes.PriorLinks,
		VisitLinks:            int64(len(lkRes.Visits)),
		Readmissions:          lkRes.Readmissions,
		DurationBuild:         time.Since(start),
	}
	return res
}

// coverage returns the min DOS start and max DOS end over the surviving
// lines: the report coverage window both serving tables carry. An empty
// corpus collapses the window to the run date.
func coverage(lines []*model.ChargeLine, runAt time.Time) (time.Time, time.Time) {
	if len(lines) == 0 {
		day := normalize.Day(runAt.Year(), runAt.Month(), runAt.Day())
		return day, day
	}
	start, end := lines[0].DOSStart, lines[0].DOSEnd
	for _, ln := range lines[1:] {
		if ln.DOSStart.Before(start) {
			start = ln.DOSStart
		}
		if ln.DOSEnd.After(end) {
			end = ln.DOSEnd
		}
	}
	return start, end
}

func assembleStayRows(all []*model.Stay, patients map[string]model.Patient, runID uuid.UUID, runAt time.Time, covStart, covEnd time.Time) []*model.StayDetailRow {
	var out []*model.StayDetailRow
	for _, s := range all {
		lines := append([]*model.ChargeLine(nil), s.Lines...)
		sort.Slice(lines, func(i, j int) bool {
			if !lines[i].DOSStart.Equal(lines[j].DOSStart) {
				return lines[i].DOSStart.Before(lines[j].DOSStart)
			}
			return lines[i].ChargeID < lines[j].ChargeID
		})

		var paidSeq int32
		for _, ln := range lines {
			row := &model.StayDetailRow{
				RunID:           runID,
				RunAt:           runAt,
				CoverageStart:   covStart,
				CoverageEnd:     covEnd,
				StayID:          s.ID,
				StayBegin:       s.Begin,
				StayEnd:         s.End,
				ChargeID:        ln.ChargeID,
				ClaimNumber:     ln.ClaimNumber,
				WorksheetNumber: ln.WorksheetNumber,
				LineNumber:      ln.LineNumber,
				LineSequence:    ln.LineSequence,
				ProviderID:      ln.ProviderID,
				Facility:        ln.Facility,
				FacilityName:    ln.FacilityName,
				TaxID:           optStr(ln.TaxID),
				PatientID:       ln.PatientID,
				MemberID:        ln.MemberID,
				PatientName:     ln.PatientName,
				DOSStart:        ln.DOSStart,
				DOSEnd:          ln.DOSEnd,
				ProcedureCode:   ln.ProcedureCode,
				Units:           ln.Units,
				PaidCents:       ln.PaidCents,
				Remark:          optStr(ln.Remark),
				IsBedDayCode:    ln.IsBedDayCode,
				LengthOfStay:    s.LengthOfStay,
				TotalDays:       s.TotalDays,
			}
			if ln.PaidCents > 0 {
				paidSeq++
				row.PaidLineSequence = paidSeq
			}
			if p, ok := patients[ln.MemberID]; ok {
				row.BirthDate = p.BirthDate
				row.PCPName = p.PCPName
			}
			if prior := s.PriorEncounter; prior != nil {
				row.PriorEncounterID = optStr(prior.EncounterID)
				discharge := prior.DischargeTime
				row.PriorDischargeAt = &discharge
				row.PriorDepartment = optStr(prior.Department)
				row.PriorDiagnosis = optStr(prior.Diagnosis)
				row.PriorDRG = optStr(prior.DRG)
				row.PriorPayor = optStr(prior.Payor)
			}
			out = append(out, row)
		}
	}
	return out
}

func assembleVisitRows(visits []*model.StayVisit, runID uuid.UUID, runAt time.Time, covStart, covEnd time.Time) []*model.VisitDetailRow {
	var out []*model.VisitDetailRow
	for _, v := range visits {
		s, e := v.Stay, v.Encounter
		row := &model.VisitDetailRow{
			RunID:         runID,
			RunAt:         runAt,
			CoverageStart: covStart,
			CoverageEnd:   covEnd,
			StayID:        s.ID,
			Facility:      s.Facility,
			StayBegin:     s.Begin,
			StayEnd:       s.End,
			PatientID:     s.PatientID,
			MemberID:      s.MemberID,
			PatientName:   s.PatientName,
			EncounterID:   e.EncounterID,
			AdmitAt:       e.AdmitTime,
			DischargeAt:   e.DischargeTime,
			Class:         e.Class,
			AdmitStatus:   e.AdmitStatus,
			Disposition:   e.Disposition,
			Department:    e.Department,
			Diagnosis:     e.Diagnosis,
			DRG:           e.DRG,
			Payor:         e.Payor,
			ChargesCents:  e.ChargesCents,
			RiskScore:     e.RiskScore,
		}
		if v.Readmission != nil {
			row.ReadmitEncounterID = optStr(v.Readmission.EncounterID)
			admit := v.Readmission.AdmitTime
			row.ReadmitAdmitAt = &admit
			row.ReadmitSpanDays = v.ReadmitSpanDays
			row.ReadmitWithin7 = v.Within7Days
			row.ReadmitWithin10 = v.Within10Days
			row.ReadmitWithin14 = v.Within14Days
			row.ReadmitWithin30 = v.Within30Days
		}
		out = append(out, row)
	}
	return out
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
