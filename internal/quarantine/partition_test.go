package quarantine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchdog/pkg/contracts/domain"
)

func sampleBatch() *domain.Batch {
	b := domain.NewBatch([]string{"Transaction ID", "Price"})
	b.Append(domain.Row{"Transaction ID": "TX-1", "Price": 10.0})
	b.Append(domain.Row{"Transaction ID": "TX-2", "Price": -4.0})
	b.Append(domain.Row{"Transaction ID": "TX-3", "Price": 3.5})
	b.Append(domain.Row{"Transaction ID": "TX-4", "Price": nil})
	return b
}

func verdictFor(i int, violations ...domain.Violation) domain.Verdict {
	return domain.Verdict{RowIndex: i, Passed: len(violations) == 0, Violations: violations}
}

func TestPartition_StableSplit(t *testing.T) {
	batch := sampleBatch()
	verdicts := []domain.Verdict{
		verdictFor(0),
		verdictFor(1, domain.Violation{Rule: "price_non_negative", Reason: "out_of_range"}),
		verdictFor(2),
		verdictFor(3, domain.Violation{Rule: "price_non_negative", Reason: "missing"}),
	}

	clean, flagged, err := Partition(batch, verdicts)
	require.NoError(t, err)

	assert.Equal(t, batch.Len(), clean.Len()+flagged.Len(), "every row lands in exactly one output")

	require.Equal(t, 2, clean.Len())
	assert.Equal(t, "TX-1", clean.Rows[0]["Transaction ID"])
	assert.Equal(t, "TX-3", clean.Rows[1]["Transaction ID"])
	assert.Equal(t, batch.Columns, clean.Columns)

	require.Equal(t, 2, flagged.Len())
	assert.Equal(t, "TX-2", flagged.Rows[0]["Transaction ID"])
	assert.Equal(t, "TX-4", flagged.Rows[1]["Transaction ID"])
	assert.Equal(t, []string{"Transaction ID", "Price", ReasonColumn}, flagged.Columns)
}

func TestPartition_FlaggedRowsAnnotated(t *testing.T) {
	batch := sampleBatch()
	verdicts := []domain.Verdict{
		verdictFor(0),
		verdictFor(1,
			domain.Violation{Rule: "price_non_negative", Reason: "out_of_range"},
			domain.Violation{Rule: "customer_present", Reason: "missing"},
		),
		verdictFor(2),
		verdictFor(3),
	}

	_, flagged, err := Partition(batch, verdicts)
	require.NoError(t, err)
	require.Equal(t, 1, flagged.Len())
	assert.Equal(t, "price_non_negative: out_of_range; customer_present: missing", flagged.Rows[0][ReasonColumn])

	// Source row stays untouched.
	_, has := batch.Rows[1][ReasonColumn]
	assert.False(t, has)
}

func TestPartition_AllClean(t *testing.T) {
	batch := sampleBatch()
	verdicts := make([]domain.Verdict, batch.Len())
	for i := range verdicts {
		verdicts[i] = verdictFor(i)
	}

	clean, flagged, err := Partition(batch, verdicts)
	require.NoError(t, err)
	assert.Equal(t, batch.Len(), clean.Len())
	assert.Equal(t, 0, flagged.Len())
	assert.NotNil(t, flagged.Rows, "empty flagged batch still has a schema and zero rows")
}

func TestPartition_AllFlagged(t *testing.T) {
	batch := sampleBatch()
	verdicts := make([]domain.Verdict, batch.Len())
	for i := range verdicts {
		verdicts[i] = verdictFor(i, domain.Violation{Rule: "quantity_present", Reason: "missing"})
	}

	clean, flagged, err := Partition(batch, verdicts)
	require.NoError(t, err)
	assert.Equal(t, 0, clean.Len())
	assert.Equal(t, batch.Len(), flagged.Len())
}

func TestPartition_CountMismatch(t *testing.T) {
	batch := sampleBatch()
	verdicts := []domain.Verdict{verdictFor(0)}

	_, _, err := Partition(batch, verdicts)
	var alignment *AlignmentError
	require.ErrorAs(t, err, &alignment)
	assert.Equal(t, 4, alignment.Rows)
	assert.Equal(t, 1, alignment.Verdicts)
}

func TestPartition_IndexMismatch(t *testing.T) {
	batch := sampleBatch()
	verdicts := []domain.Verdict{verdictFor(0), verdictFor(2), verdictFor(1), verdictFor(3)}

	_, _, err := Partition(batch, verdicts)
	var alignment *AlignmentError
	require.ErrorAs(t, err, &alignment)
	assert.Equal(t, 1, alignment.Index)
}

func TestFormatReasons(t *testing.T) {
	assert.Equal(t, "", FormatReasons(nil))
	assert.Equal(t, "a: missing", FormatReasons([]domain.Violation{{Rule: "a", Reason: "missing"}}))
	assert.Equal(t, "a: missing; b: out_of_range", FormatReasons([]domain.Violation{
		{Rule: "a", Reason: "missing"},
		{Rule: "b", Reason: "out_of_range"},
	}))
}
