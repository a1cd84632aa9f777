package pipeline_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/pacstays/internal/config"
	"github.com/gyeh/pacstays/internal/db"
	"github.com/gyeh/pacstays/internal/logging"
	"github.com/gyeh/pacstays/internal/pipeline"
	"github.com/gyeh/pacstays/internal/refdata"
)

const (
	testPort     = 15433
	testDB       = "pacstest"
	testUser     = "postgres"
	testPassword = "postgres"
)

var (
	testDSN string
	pg      *embeddedpostgres.EmbeddedPostgres
)

func TestMain(m *testing.M) {
	testDSN = fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)

	pg = embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(testPort)).
			Database(testDB).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			StartTimeout(30*time.Second),
	)

	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start embedded postgres: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if err := pg.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop embedded postgres: %v\n", err)
	}

	os.Exit(code)
}

// setupDB creates a connection pool and applies migrations. Returns pool and cleanup func.
func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, testDSN)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	// Drop and recreate schemas for a clean state
	for _, schema := range []string{"landing", "serving"} {
		_, err := pool.Exec(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema))
		if err != nil {
			t.Fatalf("drop schema %s: %v", schema, err)
		}
	}

	log := logging.Setup("text")
	if err := db.ApplyMigrations(ctx, pool, log); err != nil {
		pool.Close()
		t.Fatalf("migrations: %v", err)
	}

	t.Cleanup(func() { pool.Close() })
	return pool
}

// seedScenario loads the landing tables with one Lakeheart stay split
// across two claims, a therapy-only Parkview stay that the exclusion
// drops, and the hospital encounters around the Lakeheart stay: the
// discharge that preceded it, the admission that ended it, and a
// readmission six days later.
func seedScenario(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	type claim struct {
		claim    string
		line     int32
		provider string
		member   string
		start    string
		end      string
		code     string
		units    int32
		paid     int64
	}
	claims := []claim{
		{"CLM-A", 1, "LH-SNF-010", "M000100001", "2024-02-01", "2024-02-10", "0110", 10, 500000},
		{"CLM-A", 2, "LH-SNF-010", "M000100001", "2024-02-01", "2024-02-10", "0420", 10, 0},
		{"CLM-B", 1, "LH-SNF-010", "M000100001", "2024-02-11", "2024-02-20", "0110", 10, 480000},
		{"CLM-P", 1, "PV-SNF-001", "M000200002", "2024-02-05", "2024-02-08", "0420", 4, 0},
	}
	for _, c := range claims {
		_, err := pool.Exec(ctx,
			`INSERT INTO landing.claim_lines
			   (claim_number, worksheet_number, line_number, revision_number,
			    provider_id, member_id, dos_start, dos_end,
			    procedure_code, units, paid_cents, claim_category)
			 VALUES ($1, '01', $2, 1, $3, $4, $5::date, $6::date, $7, $8, $9, 'SNF')`,
			c.claim, c.line, c.provider, c.member, c.start, c.end, c.code, c.units, c.paid)
		if err != nil {
			t.Fatalf("seed claim %s line %d: %v", c.claim, c.line, err)
		}
	}

	patients := [][2]string{
		{"M000100001", "P1"},
		{"M000200002", "P2"},
	}
	for _, p := range patients {
		_, err := pool.Exec(ctx,
			`INSERT INTO landing.patients (member_id, patient_id, patient_name)
			 VALUES ($1, $2, $3)`,
			p[0], p[1], "PATIENT, TEST")
		if err != nil {
			t.Fatalf("seed patient %s: %v", p[0], err)
		}
	}

	codes := [][2]string{
		{"0110", "ROOM AND BOARD"},
		{"0420", "PHYSICAL THERAPY"},
	}
	for _, c := range codes {
		_, err := pool.Exec(ctx,
			`INSERT INTO landing.billing_codes (procedure_code, category)
			 VALUES ($1, $2)`,
			c[0], c[1])
		if err != nil {
			t.Fatalf("seed billing code %s: %v", c[0], err)
		}
	}

	type encounter struct {
		id          string
		patient     string
		admit       string
		discharge   string
		class       string
		status      string
		disposition string
	}
	encounters := []encounter{
		{"E-PRIOR", "P1", "2024-01-15T10:00:00Z", "2024-01-25T14:00:00Z", "inpatient", "Completed", "Skilled Nursing Facility"},
		{"E-ADM", "P1", "2024-02-21T08:00:00Z", "2024-02-25T16:00:00Z", "inpatient", "Completed", "Home"},
		{"E-RE", "P1", "2024-03-01T09:00:00Z", "2024-03-04T12:00:00Z", "inpatient", "Completed", "Home"},
	}
	for _, e := range encounters {
		_, err := pool.Exec(ctx,
			`INSERT INTO landing.hospital_encounters
			   (encounter_id, patient_id, admit_at, discharge_at, class, admit_status, disposition)
			 VALUES ($1, $2, $3::timestamptz, $4::timestamptz, $5, $6, $7)`,
			e.id, e.patient, e.admit, e.discharge, e.class, e.status, e.disposition)
		if err != nil {
			t.Fatalf("seed encounter %s: %v", e.id, err)
		}
	}
}

func testRunConfig() *config.Config {
	return &config.Config{
		DSN:         testDSN,
		LogFormat:   "text",
		Workers:     2,
		Corrections: refdata.Defaults(),
	}
}

func TestEndToEnd_Publish(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text")
	seedScenario(t, pool)

	summary, err := pipeline.Run(ctx, pool, log, testRunConfig())
	if err != nil {
		t.Fatalf("pipeline.Run: %v", err)
	}

	t.Run("summary_metrics", func(t *testing.T) {
		if summary.RowsLoaded != 4 {
			t.Errorf("RowsLoaded: got %d, want 4", summary.RowsLoaded)
		}
		if summary.StaysFinal != 1 || summary.StaysExcluded != 1 {
			t.Errorf("stays final/excluded: got %d/%d, want 1/1",
				summary.StaysFinal, summary.StaysExcluded)
		}
		if summary.RowsPublishedStays != 3 {
			t.Errorf("RowsPublishedStays: got %d, want 3", summary.RowsPublishedStays)
		}
		if summary.RowsPublishedVisits != 1 {
			t.Errorf("RowsPublishedVisits: got %d, want 1", summary.RowsPublishedVisits)
		}
	})

	t.Run("stay_detail_rows", func(t *testing.T) {
		rows, err := pool.Query(ctx,
			`SELECT stay_id, stay_begin, stay_end, length_of_stay, total_days,
			        paid_line_sequence, prior_encounter_id
			 FROM serving.stay_claim_detail ORDER BY charge_id`)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		defer rows.Close()

		wantPaidSeq := []int32{1, 0, 2}
		i := 0
		for rows.Next() {
			var stayID int64
			var begin, end time.Time
			var los, total, paidSeq int32
			var prior *string
			if err := rows.Scan(&stayID, &begin, &end, &los, &total, &paidSeq, &prior); err != nil {
				t.Fatalf("scan: %v", err)
			}
			if stayID != 1 {
				t.Errorf("row %d stay_id: got %d, want 1", i, stayID)
			}
			if begin.Format("2006-01-02") != "2024-02-01" || end.Format("2006-01-02") != "2024-02-20" {
				t.Errorf("row %d stay span: got %s..%s, want 2024-02-01..2024-02-20",
					i, begin.Format("2006-01-02"), end.Format("2006-01-02"))
			}
			if los != 20 || total != 20 {
				t.Errorf("row %d los/total: got %d/%d, want 20/20", i, los, total)
			}
			if i < len(wantPaidSeq) && paidSeq != wantPaidSeq[i] {
				t.Errorf("row %d paid_line_sequence: got %d, want %d", i, paidSeq, wantPaidSeq[i])
			}
			if prior == nil || *prior != "E-PRIOR" {
				t.Errorf("row %d prior_encounter_id: got %v, want E-PRIOR", i, prior)
			}
			i++
		}
		if i != 3 {
			t.Errorf("stay detail rows: got %d, want 3", i)
		}
	})

	t.Run("visit_detail_row", func(t *testing.T) {
		var encID string
		var readmitID *string
		var span int32
		var w7, w10, w14, w30 bool
		err := pool.QueryRow(ctx,
			`SELECT encounter_id, readmit_encounter_id, readmit_span_days,
			        readmit_within_7, readmit_within_10, readmit_within_14, readmit_within_30
			 FROM serving.hospital_visit_detail`).
			Scan(&encID, &readmitID, &span, &w7, &w10, &w14, &w30)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if encID != "E-ADM" {
			t.Errorf("encounter_id: got %s, want E-ADM", encID)
		}
		if readmitID == nil || *readmitID != "E-RE" {
			t.Fatalf("readmit_encounter_id: got %v, want E-RE", readmitID)
		}
		if span != 6 {
			t.Errorf("readmit_span_days: got %d, want 6", span)
		}
		if !w7 || !w10 || !w14 || !w30 {
			t.Errorf("readmit flags: got %v/%v/%v/%v, want all true", w7, w10, w14, w30)
		}
	})

	t.Run("run_registry", func(t *testing.T) {
		var status string
		var finished *time.Time
		var rowsStays, rowsVisits int64
		err := pool.QueryRow(ctx,
			`SELECT status, finished_at, rows_stays, rows_visits
			 FROM serving.runs WHERE run_id = $1`, summary.RunID).
			Scan(&status, &finished, &rowsStays, &rowsVisits)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if status != "published" {
			t.Errorf("status: got %q, want published", status)
		}
		if finished == nil {
			t.Error("finished_at is null")
		}
		if rowsStays != 3 || rowsVisits != 1 {
			t.Errorf("registry rows: got %d/%d, want 3/1", rowsStays, rowsVisits)
		}
	})
}

func TestEndToEnd_RepublishReplacesRows(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text")
	seedScenario(t, pool)

	cfg := testRunConfig()
	if _, err := pipeline.Run(ctx, pool, log, cfg); err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := pipeline.Run(ctx, pool, log, cfg)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	var stayRows, visitRows int64
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM serving.stay_claim_detail").Scan(&stayRows); err != nil {
		t.Fatalf("query: %v", err)
	}
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM serving.hospital_visit_detail").Scan(&visitRows); err != nil {
		t.Fatalf("query: %v", err)
	}
	if stayRows != second.RowsPublishedStays || visitRows != second.RowsPublishedVisits {
		t.Errorf("serving rows after republish: got %d/%d, want %d/%d",
			stayRows, visitRows, second.RowsPublishedStays, second.RowsPublishedVisits)
	}

	var published int64
	if err := pool.QueryRow(ctx,
		`SELECT count(*) FROM serving.runs WHERE status = 'published'`).Scan(&published); err != nil {
		t.Fatalf("query: %v", err)
	}
	if published != 2 {
		t.Errorf("published runs: got %d, want 2", published)
	}

	// Every serving row carries the latest run id.
	var stale int64
	if err := pool.QueryRow(ctx,
		`SELECT count(*) FROM serving.stay_claim_detail WHERE run_id <> $1`,
		second.RunID).Scan(&stale); err != nil {
		t.Fatalf("query: %v", err)
	}
	if stale != 0 {
		t.Errorf("found %d stay rows from a previous run", stale)
	}
}

func TestEndToEnd_DryRunLeavesServingUntouched(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text")
	seedScenario(t, pool)

	cfg := testRunConfig()
	cfg.DryRun = true
	summary, err := pipeline.Run(ctx, pool, log, cfg)
	if err != nil {
		t.Fatalf("pipeline.Run: %v", err)
	}
	if summary.StaysFinal != 1 {
		t.Errorf("StaysFinal: got %d, want 1", summary.StaysFinal)
	}

	var stayRows int64
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM serving.stay_claim_detail").Scan(&stayRows); err != nil {
		t.Fatalf("query: %v", err)
	}
	if stayRows != 0 {
		t.Errorf("dry run published %d stay rows, want 0", stayRows)
	}

	var status string
	if err := pool.QueryRow(ctx,
		`SELECT status FROM serving.runs WHERE run_id = $1`, summary.RunID).Scan(&status); err != nil {
		t.Fatalf("query: %v", err)
	}
	if status != "built" {
		t.Errorf("dry run status: got %q, want built", status)
	}
}

func TestEndToEnd_FailedPublishKeepsPriorRows(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text")
	seedScenario(t, pool)

	cfg := testRunConfig()
	first, err := pipeline.Run(ctx, pool, log, cfg)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Break the visit table so the next publish transaction fails after
	// the stay-detail delete has already run inside it.
	if _, err := pool.Exec(ctx,
		"ALTER TABLE serving.hospital_visit_detail RENAME TO hospital_visit_detail_bak"); err != nil {
		t.Fatalf("rename table: %v", err)
	}

	if _, err := pipeline.Run(ctx, pool, log, cfg); err == nil {
		t.Fatal("expected run to fail with the visit table missing")
	}

	// The rollback must have preserved the first run's stay rows.
	var stayRows int64
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM serving.stay_claim_detail").Scan(&stayRows); err != nil {
		t.Fatalf("query: %v", err)
	}
	if stayRows != first.RowsPublishedStays {
		t.Errorf("stay rows after failed publish: got %d, want %d", stayRows, first.RowsPublishedStays)
	}

	var failed int64
	if err := pool.QueryRow(ctx,
		`SELECT count(*) FROM serving.runs WHERE status = 'failed' AND error IS NOT NULL`).Scan(&failed); err != nil {
		t.Fatalf("query: %v", err)
	}
	if failed != 1 {
		t.Errorf("failed runs: got %d, want 1", failed)
	}
}

func TestMigrations_Idempotent(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text")

	// setupDB already applied them once; a second pass must be a no-op.
	if err := db.ApplyMigrations(ctx, pool, log); err != nil {
		t.Fatalf("second migration pass: %v", err)
	}
}
