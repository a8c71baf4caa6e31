package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchdog/internal/rules"
	"watchdog/internal/shared/testutil"
	"watchdog/pkg/contracts/domain"
)

func fptr(f float64) *float64 { return &f }

func testMapping() domain.FieldMapping {
	return domain.FieldMapping{
		"transaction_id": "Transaction ID",
		"price":          "Price",
		"quantity":       "Quantity",
		"customer_id":    "Customer ID",
	}
}

func testRuleSet() rules.Set {
	return rules.Set{Rules: []rules.Rule{
		{Name: "transaction_id_unique", Role: "transaction_id", Enabled: true, Check: rules.UniqueCheck{}},
		{Name: "price_non_negative", Role: "price", Enabled: true, Check: rules.RangeCheck{Min: fptr(0)}},
		{Name: "quantity_present", Role: "quantity", Enabled: true, Check: rules.NotNullCheck{}},
		{Name: "customer_present", Role: "customer_id", Enabled: true, Check: rules.NotNullCheck{}},
	}}
}

func testBatch() *domain.Batch {
	b := domain.NewBatch([]string{"Transaction ID", "Price", "Quantity", "Customer ID"})
	b.Append(domain.Row{"Transaction ID": "TX-1", "Price": 10.0, "Quantity": 1, "Customer ID": "C-1"})
	b.Append(domain.Row{"Transaction ID": "TX-2", "Price": -4.0, "Quantity": 2, "Customer ID": "C-2"})
	b.Append(domain.Row{"Transaction ID": "TX-2", "Price": 3.5, "Quantity": nil, "Customer ID": ""})
	b.Append(domain.Row{"Transaction ID": "TX-3", "Price": 0.0, "Quantity": 4, "Customer ID": "C-3"})
	return b
}

func TestEngine_Validate_OrderAndAlignment(t *testing.T) {
	logger, _ := testutil.NewLogger(t)
	eng := New(logger)

	batch := testBatch()
	verdicts, err := eng.Validate(context.Background(), batch, testRuleSet(), testMapping())
	require.NoError(t, err)
	require.Len(t, verdicts, batch.Len())

	for i, v := range verdicts {
		assert.Equal(t, i, v.RowIndex, "verdicts keep batch order")
	}

	assert.True(t, verdicts[0].Passed)
	assert.Empty(t, verdicts[0].Violations)

	require.Len(t, verdicts[1].Violations, 1)
	assert.Equal(t, "price_non_negative", verdicts[1].Violations[0].Rule)
	assert.Equal(t, rules.ReasonOutOfRange, verdicts[1].Violations[0].Reason)

	assert.True(t, verdicts[3].Passed, "zero price is within bounds")
}

func TestEngine_Validate_NoShortCircuit(t *testing.T) {
	logger, _ := testutil.NewLogger(t)
	eng := New(logger)

	verdicts, err := eng.Validate(context.Background(), testBatch(), testRuleSet(), testMapping())
	require.NoError(t, err)

	// Row 2 violates uniqueness, quantity_present, and customer_present.
	// Violations come back in rule declaration order.
	v := verdicts[2]
	require.False(t, v.Passed)
	require.Len(t, v.Violations, 3)
	assert.Equal(t, "transaction_id_unique", v.Violations[0].Rule)
	assert.Equal(t, rules.ReasonDuplicate, v.Violations[0].Reason)
	assert.Equal(t, "quantity_present", v.Violations[1].Rule)
	assert.Equal(t, "customer_present", v.Violations[2].Rule)
}

func TestEngine_Validate_DisabledRulesSkipped(t *testing.T) {
	logger, _ := testutil.NewLogger(t)
	eng := New(logger)

	set := testRuleSet()
	for i := range set.Rules {
		if set.Rules[i].Name == "price_non_negative" {
			set.Rules[i].Enabled = false
		}
	}

	verdicts, err := eng.Validate(context.Background(), testBatch(), set, testMapping())
	require.NoError(t, err)
	assert.True(t, verdicts[1].Passed, "negative price passes when the range rule is disabled")
}

func TestEngine_Validate_UnmappedRole(t *testing.T) {
	logger, _ := testutil.NewLogger(t)
	eng := New(logger)

	mapping := testMapping()
	delete(mapping, "price")

	_, err := eng.Validate(context.Background(), testBatch(), testRuleSet(), mapping)
	var unmapped *UnmappedRoleError
	require.ErrorAs(t, err, &unmapped)
	assert.Equal(t, "price_non_negative", unmapped.Rule)
	assert.Equal(t, domain.Role("price"), unmapped.Role)
}

func TestEngine_Validate_UnknownField(t *testing.T) {
	logger, _ := testutil.NewLogger(t)
	eng := New(logger)

	mapping := testMapping()
	mapping["price"] = "Unit Price"

	_, err := eng.Validate(context.Background(), testBatch(), testRuleSet(), mapping)
	var unknown *UnknownFieldError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Unit Price", unknown.Field)
}

func TestEngine_Validate_FailFastBeforeScan(t *testing.T) {
	logger, handler := testutil.NewLogger(t)
	eng := New(logger)

	mapping := domain.FieldMapping{}
	_, err := eng.Validate(context.Background(), testBatch(), testRuleSet(), mapping)
	require.Error(t, err)

	// Resolution fails before the scan starts, so no scan log is emitted.
	for _, r := range handler.Records() {
		assert.NotContains(t, r.Message, "starting validation scan")
	}
}

func TestEngine_Validate_EmptyRuleSet(t *testing.T) {
	logger, _ := testutil.NewLogger(t)
	batch := testBatch()

	t.Run("passes every row by default", func(t *testing.T) {
		eng := New(logger)
		verdicts, err := eng.Validate(context.Background(), batch, rules.Set{}, domain.FieldMapping{})
		require.NoError(t, err)
		require.Len(t, verdicts, batch.Len())
		for _, v := range verdicts {
			assert.True(t, v.Passed)
		}
	})

	t.Run("rejected when rules are required", func(t *testing.T) {
		eng := New(logger, WithRequiredRules())
		_, err := eng.Validate(context.Background(), batch, rules.Set{}, domain.FieldMapping{})
		var empty *EmptyRuleSetError
		require.ErrorAs(t, err, &empty)
	})
}

func TestEngine_Validate_EmptyBatch(t *testing.T) {
	logger, _ := testutil.NewLogger(t)
	eng := New(logger)

	batch := domain.NewBatch([]string{"Transaction ID", "Price", "Quantity", "Customer ID"})
	verdicts, err := eng.Validate(context.Background(), batch, testRuleSet(), testMapping())
	require.NoError(t, err)
	assert.Empty(t, verdicts)
}

func TestEngine_Validate_InvalidSet(t *testing.T) {
	logger, _ := testutil.NewLogger(t)
	eng := New(logger)

	set := rules.Set{Rules: []rules.Rule{{Role: "price", Enabled: true, Check: rules.NotNullCheck{}}}}
	_, err := eng.Validate(context.Background(), testBatch(), set, testMapping())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rule set")
}

func TestEngine_Validate_CancelledContext(t *testing.T) {
	logger, _ := testutil.NewLogger(t)
	eng := New(logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Validate(ctx, testBatch(), testRuleSet(), testMapping())
	require.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Validate_ParallelMatchesSequential(t *testing.T) {
	logger, _ := testutil.NewLogger(t)

	// Large batch with repeated IDs so uniqueness ordering matters.
	batch := domain.NewBatch([]string{"Transaction ID", "Price", "Quantity", "Customer ID"})
	for i := 0; i < 500; i++ {
		id := fmt.Sprintf("TX-%d", i%97)
		price := float64(i%11) - 2
		var qty domain.Value = i
		if i%13 == 0 {
			qty = nil
		}
		batch.Append(domain.Row{"Transaction ID": id, "Price": price, "Quantity": qty, "Customer ID": "C-1"})
	}

	sequential, err := New(logger).Validate(context.Background(), batch, testRuleSet(), testMapping())
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 8} {
		workers := workers
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			parallel, err := New(logger, WithWorkers(workers)).Validate(context.Background(), batch, testRuleSet(), testMapping())
			require.NoError(t, err)
			assert.Equal(t, sequential, parallel)
		})
	}
}

func TestEngine_Validate_CleanSubsetStaysClean(t *testing.T) {
	logger, _ := testutil.NewLogger(t)
	eng := New(logger)

	batch := testBatch()
	verdicts, err := eng.Validate(context.Background(), batch, testRuleSet(), testMapping())
	require.NoError(t, err)

	clean := domain.NewBatch(batch.Columns)
	for i, v := range verdicts {
		if v.Passed {
			clean.Append(batch.Rows[i])
		}
	}

	again, err := eng.Validate(context.Background(), clean, testRuleSet(), testMapping())
	require.NoError(t, err)
	for _, v := range again {
		assert.True(t, v.Passed, "re-validating the clean subset flags nothing")
	}
}

func TestResolve_BindingOrder(t *testing.T) {
	set := testRuleSet()
	bindings, err := Resolve(set, testMapping(), testBatch())
	require.NoError(t, err)
	require.Len(t, bindings, 4)
	assert.Equal(t, "transaction_id_unique", bindings[0].Rule.Name)
	assert.Equal(t, "Transaction ID", bindings[0].Field)
	assert.Equal(t, "customer_present", bindings[3].Rule.Name)
}
