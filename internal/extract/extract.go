// Package extract turns the raw claims feed into corrected ChargeLines:
// one surviving revision per (claim, worksheet, line), voided and
// filtered rows removed, provider and patient identity resolved, and
// bed-day-bearing lines tagged.
package extract

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/gyeh/pacstays/internal/model"
	"github.com/gyeh/pacstays/internal/normalize"
	"github.com/gyeh/pacstays/internal/refdata"
)

// Extractor holds the lookups the extraction pass needs.
type Extractor struct {
	Resolver *normalize.ProviderResolver
	// Patients maps external member numbers to dimension records.
	Patients map[string]model.Patient
	// IsBedDay reports whether a normalized procedure code is
	// bed-day-bearing (room & board / skilled nursing).
	IsBedDay    func(code string) bool
	Corrections *refdata.Corrections
	Log         zerolog.Logger
}

// Result carries the surviving lines and extraction metrics.
type Result struct {
	Lines         []*model.ChargeLine
	RowsRejected  int64
	LinesVoided   int64
	LinesFiltered int64
}

type lineKey struct {
	claim     string
	worksheet string
	line      int32
}

// Extract runs the full extraction pass over the raw feed.
func (e *Extractor) Extract(rows []model.ClaimLineRow) *Result {
	res := &Result{}
	retained := make(map[string]bool, len(e.Corrections.RetainedClaims))
	for _, c := range e.Corrections.RetainedClaims {
		retained[c] = true
	}

	// Group every revision by (claim, worksheet, line). The reversal
	// detection needs the whole revision history, not just the survivor.
	groups := make(map[lineKey][]*model.ClaimLineRow)
	order := make([]lineKey, 0, len(rows))
	for i := range rows {
		k := lineKey{rows[i].ClaimNumber, rows[i].WorksheetNumber, rows[i].LineNumber}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], &rows[i])
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.claim != b.claim {
			return a.claim < b.claim
		}
		if a.worksheet != b.worksheet {
			return a.worksheet < b.worksheet
		}
		return a.line < b.line
	})

	var chargeID int64
	claimSeq := make(map[string]int32)

	for _, k := range order {
		row, voided := surviveRevisions(groups[k], retained)
		if voided {
			res.LinesVoided++
		}
		if row == nil {
			continue
		}

		if !refdata.IsAdmittedCategory(row.ClaimCategory) {
			res.LinesFiltered++
			continue
		}
		if refdata.MemberSentinels[row.MemberID] {
			res.LinesFiltered++
			continue
		}
		remark := normalize.Remark(row.RemarkText())
		if remark == refdata.DuplicateClaimRemark {
			res.LinesFiltered++
			continue
		}

		start := normalize.ParseDate(row.DOSStart)
		end := normalize.ParseDate(row.DOSEnd)
		if start == nil || end == nil || end.Before(*start) {
			res.RowsRejected++
			e.Log.Warn().
				Str("claim", row.ClaimNumber).
				Str("worksheet", row.WorksheetNumber).
				Int32("line", row.LineNumber).
				Msg("row rejected: unusable date of service range")
			continue
		}

		paid := row.PaidCents
		if voided && retained[row.ClaimNumber] {
			// Manually audited claim: the positive lines are real
			// service but the payment was reversed.
			paid = 0
		}

		providerID, info := e.Resolver.Resolve(row.ProviderID, row.ProviderBilledName)

		patientID, patientName := row.MemberID, ""
		if p, ok := e.Patients[row.MemberID]; ok {
			patientID, patientName = p.PatientID, p.Name
		}

		code := normalize.RevenueCode(row.ProcedureCode)
		chargeID++
		claimSeq[row.ClaimNumber]++

		res.Lines = append(res.Lines, &model.ChargeLine{
			ChargeID:        chargeID,
			ClaimNumber:     row.ClaimNumber,
			WorksheetNumber: row.WorksheetNumber,
			LineNumber:      row.LineNumber,
			LineSequence:    claimSeq[row.ClaimNumber],
			ProviderID:      providerID,
			Facility:        info.ParentFacility,
			FacilityName:    info.DisplayName,
			TaxID:           info.TaxID,
			PatientID:       patientID,
			MemberID:        row.MemberID,
			PatientName:     patientName,
			DOSStart:        *start,
			DOSEnd:          *end,
			ProcedureCode:   code,
			Units:           row.Units,
			PaidCents:       paid,
			Remark:          remark,
			IsBedDayCode:    e.IsBedDay(code),
		})
	}

	return res
}

// surviveRevisions picks the surviving row for one (claim, worksheet,
// line). Returns nil when the line is voided: a reversal revision with
// negative units exists and the claim is not in the retained set.
// The voided flag is true whenever a reversal was seen, including for
// retained claims (whose positive survivor gets paid forced to zero).
func surviveRevisions(revs []*model.ClaimLineRow, retained map[string]bool) (*model.ClaimLineRow, bool) {
	var survivor *model.ClaimLineRow
	reversed := false

	for _, r := range revs {
		if r.Units < 0 {
			reversed = true
			continue
		}
		if survivor == nil || r.RevisionNumber > survivor.RevisionNumber {
			survivor = r
		}
	}

	if !reversed {
		return survivor, false
	}
	if survivor != nil && retained[survivor.ClaimNumber] {
		return survivor, true
	}
	return nil, true
}
