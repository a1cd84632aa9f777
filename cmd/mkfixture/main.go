// mkfixture writes a small synthetic Parquet claims snapshot exercising
// the defect patterns the pipeline corrects: revision churn, reversal
// rows, single-date multi-unit billing, and enclosed sub-range claims.
// Usage: go run ./cmd/mkfixture --out testdata/claims-small.parquet
package main

import (
	"flag"
	"fmt"
	"os"

	goparquet "github.com/parquet-go/parquet-go"

	"github.com/gyeh/pacstays/internal/model"
)

func main() {
	out := flag.String("out", "testdata/claims-small.parquet", "output parquet")
	flag.Parse()

	rows := fixtureRows()

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create output: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	w := goparquet.NewGenericWriter[model.ClaimLineRow](f)
	if _, err := w.Write(rows); err != nil {
		fmt.Fprintf(os.Stderr, "write rows: %v\n", err)
		os.Exit(1)
	}
	if err := w.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close writer: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d rows to %s\n", len(rows), *out)
}

func strPtr(s string) *string { return &s }

func fixtureRows() []model.ClaimLineRow {
	var rows []model.ClaimLineRow

	base := model.ClaimLineRow{
		WorksheetNumber: "1",
		RevisionNumber:  1,
		ProviderID:      "PV-SNF-001",
		MemberID:        "M000100001",
		ProcedureCode:   "0110",
		Units:           1,
		PaidCents:       18500,
		ClaimCategory:   "SNF",
	}

	// A long span with two enclosed sub-range claims: the single-pass
	// scan splits these, the correction pass must re-merge them.
	long := base
	long.ClaimNumber = "CLM-2024-0001001"
	long.LineNumber = 1
	long.DOSStart = "2024-01-01"
	long.DOSEnd = "2024-03-30"
	long.Units = 90
	long.PaidCents = 90 * 18500
	rows = append(rows, long)

	for i, day := range []string{"2024-01-10", "2024-02-14"} {
		sub := base
		sub.ClaimNumber = "CLM-2024-0001002"
		sub.LineNumber = int32(i + 1)
		sub.DOSStart = day
		sub.DOSEnd = day
		sub.ProcedureCode = "0270"
		sub.PaidCents = 4200
		rows = append(rows, sub)
	}

	// Single-date multi-unit entry: the repair pass extends the end date.
	sd := base
	sd.ClaimNumber = "CLM-2024-0002001"
	sd.LineNumber = 1
	sd.MemberID = "M000100002"
	sd.DOSStart = "2024-02-05"
	sd.DOSEnd = "2024-02-05"
	sd.Units = 14
	sd.PaidCents = 14 * 18500
	rows = append(rows, sd)

	// Revision churn: only revision 3 survives.
	for rev := int32(1); rev <= 3; rev++ {
		r := base
		r.ClaimNumber = "CLM-2024-0003001"
		r.LineNumber = 1
		r.RevisionNumber = rev
		r.MemberID = "M000100003"
		r.DOSStart = "2024-03-01"
		r.DOSEnd = "2024-03-10"
		r.Units = 10
		r.PaidCents = int64(rev) * 100000
		rows = append(rows, r)
	}

	// Reversed claim: negative-unit sibling voids the line.
	v := base
	v.ClaimNumber = "CLM-2024-0004001"
	v.LineNumber = 1
	v.MemberID = "M000100004"
	v.DOSStart = "2024-04-01"
	v.DOSEnd = "2024-04-07"
	v.Units = 7
	rows = append(rows, v)
	rv := v
	rv.RevisionNumber = 2
	rv.Units = -7
	rv.PaidCents = -v.PaidCents
	rows = append(rows, rv)

	// Duplicate-claim remark, dropped by extraction.
	dup := base
	dup.ClaimNumber = "CLM-2024-0005001"
	dup.LineNumber = 1
	dup.MemberID = "M000100005"
	dup.DOSStart = "2024-05-01"
	dup.DOSEnd = "2024-05-03"
	dup.Remark = strPtr("DUPLICATE OF PROCESSED CLAIM")
	rows = append(rows, dup)

	return rows
}
