package sql

import (
	"embed"
	_ "embed"
)

// Migrations holds the idempotent schema DDL, applied in filename order.
//
//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/select_claim_lines.sql
var SelectClaimLines string

//go:embed queries/select_providers.sql
var SelectProviders string

//go:embed queries/select_patients.sql
var SelectPatients string

//go:embed queries/select_billing_codes.sql
var SelectBillingCodes string

//go:embed queries/select_encounters.sql
var SelectEncounters string

//go:embed queries/insert_run.sql
var InsertRun string

//go:embed queries/update_run_status.sql
var UpdateRunStatus string

//go:embed queries/finish_run.sql
var FinishRun string

//go:embed queries/delete_stay_detail.sql
var DeleteStayDetail string

//go:embed queries/delete_visit_detail.sql
var DeleteVisitDetail string
