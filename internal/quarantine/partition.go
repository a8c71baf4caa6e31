// Package quarantine splits a validated batch into its clean and flagged
// subsets. The split is a stable partition: both outputs preserve the
// relative order of the source batch, and every row lands in exactly one
// output.
package quarantine

import (
	"fmt"
	"strings"

	"watchdog/pkg/contracts/domain"
)

// ReasonColumn is the extra column appended to flagged rows, holding all
// violation reasons joined by "; ".
const ReasonColumn = "Failure_Reason"

// AlignmentError indicates the verdicts are not row-aligned with the batch.
// This is an integration bug between the engine and the partitioner, never a
// data problem, and must not be ignored.
type AlignmentError struct {
	Rows     int
	Verdicts int
	Index    int
}

func (e *AlignmentError) Error() string {
	if e.Rows != e.Verdicts {
		return fmt.Sprintf("verdict count %d does not match batch row count %d", e.Verdicts, e.Rows)
	}
	return fmt.Sprintf("verdict at position %d is not aligned with its row", e.Index)
}

// Partition walks the batch once and routes each row by its verdict: empty
// violation list to the clean batch, anything else to the flagged batch.
// Flagged rows are copied and annotated with a Failure_Reason column; clean
// rows are passed through unmodified.
func Partition(batch *domain.Batch, verdicts []domain.Verdict) (*domain.Batch, *domain.Batch, error) {
	if len(verdicts) != batch.Len() {
		return nil, nil, &AlignmentError{Rows: batch.Len(), Verdicts: len(verdicts)}
	}

	clean := domain.NewBatch(batch.Columns)
	flagged := domain.NewBatch(append(append([]string(nil), batch.Columns...), ReasonColumn))

	for i, row := range batch.Rows {
		v := verdicts[i]
		if v.RowIndex != i {
			return nil, nil, &AlignmentError{Rows: batch.Len(), Verdicts: len(verdicts), Index: i}
		}
		if len(v.Violations) == 0 {
			clean.Append(row)
			continue
		}
		flagged.Append(annotate(row, v.Violations))
	}
	return clean, flagged, nil
}

// annotate copies a row and attaches its failure reasons. The source row is
// left untouched; ingested rows are immutable.
func annotate(row domain.Row, violations []domain.Violation) domain.Row {
	out := make(domain.Row, len(row)+1)
	for k, val := range row {
		out[k] = val
	}
	out[ReasonColumn] = FormatReasons(violations)
	return out
}

// FormatReasons renders violations as "rule: reason" pairs joined by "; ",
// in rule declaration order.
func FormatReasons(violations []domain.Violation) string {
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = fmt.Sprintf("%s: %s", v.Rule, v.Reason)
	}
	return strings.Join(parts, "; ")
}
