package parquetread

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// requiredColumns are the snapshot columns the pipeline cannot run
// without; the remaining ClaimLineRow columns are optional or default.
var requiredColumns = []string{
	"claim_number",
	"worksheet_number",
	"line_number",
	"revision_number",
	"provider_id",
	"member_id",
	"dos_start",
	"dos_end",
	"procedure_code",
	"units",
	"paid_cents",
	"claim_category",
}

// ValidateSchema checks that the snapshot schema carries every required
// claims-feed column.
func ValidateSchema(schema *parquet.Schema) error {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}

	var missing []string
	for _, col := range requiredColumns {
		if !columns[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("snapshot missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
