package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/pacstays/internal/model"
	"github.com/gyeh/pacstays/internal/parquetread"
	"github.com/gyeh/pacstays/internal/refdata"
	embedsql "github.com/gyeh/pacstays/internal/sql"
)

// Inputs holds the full data snapshot a run operates on. All stages are
// barriers over this one snapshot; nothing streams.
type Inputs struct {
	Claims    []model.ClaimLineRow
	Providers map[string]string
	Patients  map[string]model.Patient
	// CodeCategories maps normalized procedure codes to billing-code
	// categories. Empty when no reference table is available; the
	// built-in revenue-code ranges apply then.
	CodeCategories map[string]string
	Encounters     []*model.Encounter
}

// IsBedDay returns the bed-day predicate for these inputs.
func (in *Inputs) IsBedDay(code string) bool {
	if len(in.CodeCategories) == 0 {
		return refdata.IsBedDayRevenueCode(code)
	}
	return refdata.BedDayCategories[in.CodeCategories[code]]
}

// Load reads the full input snapshot from the warehouse. When claimsFile
// is non-empty the claim lines come from a Parquet snapshot instead of
// the landing table; the dimensions and encounters still come from the
// warehouse.
func Load(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, claimsFile string) (*Inputs, error) {
	start := time.Now()
	in := &Inputs{}

	var err error
	if claimsFile != "" {
		in.Claims, err = parquetread.ReadAll(claimsFile)
		if err != nil {
			return nil, fmt.Errorf("read claims snapshot: %w", err)
		}
	} else {
		in.Claims, err = loadClaims(ctx, pool)
		if err != nil {
			return nil, err
		}
	}

	if in.Providers, err = loadProviders(ctx, pool); err != nil {
		return nil, err
	}
	if in.Patients, err = loadPatients(ctx, pool); err != nil {
		return nil, err
	}
	if in.CodeCategories, err = loadCodeCategories(ctx, pool); err != nil {
		return nil, err
	}
	if in.Encounters, err = loadEncounters(ctx, pool); err != nil {
		return nil, err
	}

	log.Info().
		Int("claim_rows", len(in.Claims)).
		Int("providers", len(in.Providers)).
		Int("patients", len(in.Patients)).
		Int("billing_codes", len(in.CodeCategories)).
		Int("encounters", len(in.Encounters)).
		Dur("duration", time.Since(start)).
		Msg("load complete")
	return in, nil
}

func loadClaims(ctx context.Context, pool *pgxpool.Pool) ([]model.ClaimLineRow, error) {
	rows, err := pool.Query(ctx, embedsql.SelectClaimLines)
	if err != nil {
		return nil, fmt.Errorf("query claim lines: %w", err)
	}
	defer rows.Close()

	var out []model.ClaimLineRow
	for rows.Next() {
		var r model.ClaimLineRow
		if err := rows.Scan(
			&r.ClaimNumber, &r.WorksheetNumber, &r.LineNumber, &r.RevisionNumber,
			&r.ProviderID, &r.ProviderBilledName, &r.MemberID,
			&r.DOSStart, &r.DOSEnd,
			&r.ProcedureCode, &r.Units, &r.PaidCents, &r.Remark, &r.ClaimCategory,
		); err != nil {
			return nil, fmt.Errorf("scan claim line: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func loadProviders(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	rows, err := pool.Query(ctx, embedsql.SelectProviders)
	if err != nil {
		return nil, fmt.Errorf("query providers: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		out[id] = name
	}
	return out, rows.Err()
}

func loadPatients(ctx context.Context, pool *pgxpool.Pool) (map[string]model.Patient, error) {
	rows, err := pool.Query(ctx, embedsql.SelectPatients)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.Patient)
	for rows.Next() {
		var p model.Patient
		if err := rows.Scan(&p.MemberID, &p.PatientID, &p.Name, &p.BirthDate, &p.PCPName); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		out[p.MemberID] = p
	}
	return out, rows.Err()
}

func loadCodeCategories(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	rows, err := pool.Query(ctx, embedsql.SelectBillingCodes)
	if err != nil {
		return nil, fmt.Errorf("query billing codes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var code, category string
		if err := rows.Scan(&code, &category); err != nil {
			return nil, fmt.Errorf("scan billing code: %w", err)
		}
		out[code] = category
	}
	return out, rows.Err()
}

func loadEncounters(ctx context.Context, pool *pgxpool.Pool) ([]*model.Encounter, error) {
	rows, err := pool.Query(ctx, embedsql.SelectEncounters)
	if err != nil {
		return nil, fmt.Errorf("query encounters: %w", err)
	}
	defer rows.Close()

	var out []*model.Encounter
	for rows.Next() {
		var e model.Encounter
		if err := rows.Scan(
			&e.EncounterID, &e.PatientID, &e.AdmitTime, &e.DischargeTime,
			&e.Class, &e.AdmitStatus, &e.Disposition,
			&e.Department, &e.Diagnosis, &e.DRG, &e.Payor,
			&e.ChargesCents, &e.RiskScore,
		); err != nil {
			return nil, fmt.Errorf("scan encounter: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
