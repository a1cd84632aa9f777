package model

// ClaimLineRow mirrors one raw claims-feed row, keyed by
// (claim_number, worksheet_number, line_number, revision_number).
// The same columns come back from the warehouse query and from a
// Parquet snapshot export, so one struct serves both sources.
// Dates are strings in feed format; they get parsed during extraction.
type ClaimLineRow struct {
	ClaimNumber     string `parquet:"claim_number"`
	WorksheetNumber string `parquet:"worksheet_number"`
	LineNumber      int32  `parquet:"line_number"`
	RevisionNumber  int32  `parquet:"revision_number"`

	ProviderID         string `parquet:"provider_id"`
	ProviderBilledName string `parquet:"provider_billed_name"`

	MemberID string `parquet:"member_id"`

	DOSStart string `parquet:"dos_start"`
	DOSEnd   string `parquet:"dos_end"`

	ProcedureCode string  `parquet:"procedure_code"`
	Units         int32   `parquet:"units"`
	PaidCents     int64   `parquet:"paid_cents"`
	Remark        *string `parquet:"remark,optional"`
	ClaimCategory string  `parquet:"claim_category"`
}

// RemarkText returns the remark or "" when the feed carried NULL.
func (r *ClaimLineRow) RemarkText() string {
	if r.Remark == nil {
		return ""
	}
	return *r.Remark
}
