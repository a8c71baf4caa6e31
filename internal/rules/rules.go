// Package rules defines the business-rule predicates applied to transaction
// rows: range, not-null, uniqueness, and allowed-values checks. Each rule is
// a tagged variant carrying only the parameters its kind needs.
package rules

import (
	"fmt"

	"watchdog/pkg/contracts/domain"
)

// Kind identifies a rule predicate variant.
type Kind string

const (
	KindRange         Kind = "range"
	KindNotNull       Kind = "not_null"
	KindUnique        Kind = "unique"
	KindAllowedValues Kind = "allowed_values"
)

// Failure reasons attached to violations. These are stable identifiers that
// downstream consumers (reports, exports) rely on.
const (
	ReasonMissing    = "missing"
	ReasonNonNumeric = "non_numeric"
	ReasonOutOfRange = "out_of_range"
	ReasonDuplicate  = "duplicate_of_earlier_row"
	ReasonNotInSet   = "not_in_allowed_set"
)

// Check is one predicate variant. Pure checks ignore the seen-set; only the
// uniqueness check reads and updates it.
type Check interface {
	Kind() Kind
	// Evaluate returns whether the value passes and, when it does not, a
	// stable failure reason. seen is non-nil only for stateful checks.
	Evaluate(v domain.Value, seen *SeenSet) (bool, string)
}

// Rule is a named, independently toggleable predicate bound to a logical
// role. Names are unique within a Set.
type Rule struct {
	Name    string
	Role    domain.Role
	Enabled bool
	Check   Check
}

// Stateful reports whether the rule needs run-scoped state.
func (r Rule) Stateful() bool {
	return r.Check.Kind() == KindUnique
}

// Evaluate applies the rule's predicate to a single cell value.
func (r Rule) Evaluate(v domain.Value, state *RunState) (bool, string) {
	var seen *SeenSet
	if r.Stateful() && state != nil {
		seen = state.Set(r.Name)
	}
	return r.Check.Evaluate(v, seen)
}

// RangeCheck passes iff the value is present, numeric, and within the
// configured bounds. Either bound may be nil, meaning unbounded on that side.
type RangeCheck struct {
	Min *float64
	Max *float64
}

func (c RangeCheck) Kind() Kind { return KindRange }

func (c RangeCheck) Evaluate(v domain.Value, _ *SeenSet) (bool, string) {
	if IsAbsent(v) {
		return false, ReasonMissing
	}
	f, ok := AsFloat(v)
	if !ok {
		return false, ReasonNonNumeric
	}
	if c.Min != nil && f < *c.Min {
		return false, ReasonOutOfRange
	}
	if c.Max != nil && f > *c.Max {
		return false, ReasonOutOfRange
	}
	return true, ""
}

// NotNullCheck passes iff the value is present and non-empty. Empty strings,
// whitespace-only strings, nil, and NaN all count as absent.
type NotNullCheck struct{}

func (c NotNullCheck) Kind() Kind { return KindNotNull }

func (c NotNullCheck) Evaluate(v domain.Value, _ *SeenSet) (bool, string) {
	if IsAbsent(v) {
		return false, ReasonMissing
	}
	return true, ""
}

// UniqueCheck passes for the first occurrence of a value within a batch scan
// and fails for every later occurrence of the same value. Absent values are
// not tracked; they pass (pair with a not-null rule to reject them).
type UniqueCheck struct{}

func (c UniqueCheck) Kind() Kind { return KindUnique }

func (c UniqueCheck) Evaluate(v domain.Value, seen *SeenSet) (bool, string) {
	if IsAbsent(v) {
		return true, ""
	}
	if seen == nil {
		return true, ""
	}
	if seen.MarkSeen(KeyString(v)) {
		return false, ReasonDuplicate
	}
	return true, ""
}

// AllowedValuesCheck passes iff the value's string form is a member of the
// configured set. Membership is exact (case-sensitive).
type AllowedValuesCheck struct {
	Values []string
}

func (c AllowedValuesCheck) Kind() Kind { return KindAllowedValues }

func (c AllowedValuesCheck) Evaluate(v domain.Value, _ *SeenSet) (bool, string) {
	if IsAbsent(v) {
		return false, ReasonMissing
	}
	key := KeyString(v)
	for _, allowed := range c.Values {
		if key == allowed {
			return true, ""
		}
	}
	return false, ReasonNotInSet
}

// NewCheck constructs a check variant by kind name. min/max apply to range
// checks, values to allowed-values checks.
func NewCheck(kind Kind, min, max *float64, values []string) (Check, error) {
	switch kind {
	case KindRange:
		if min == nil && max == nil {
			return nil, fmt.Errorf("range check requires at least one bound")
		}
		if min != nil && max != nil && *min > *max {
			return nil, fmt.Errorf("range check min %v exceeds max %v", *min, *max)
		}
		return RangeCheck{Min: min, Max: max}, nil
	case KindNotNull:
		return NotNullCheck{}, nil
	case KindUnique:
		return UniqueCheck{}, nil
	case KindAllowedValues:
		if len(values) == 0 {
			return nil, fmt.Errorf("allowed_values check requires a non-empty value set")
		}
		return AllowedValuesCheck{Values: append([]string(nil), values...)}, nil
	default:
		return nil, fmt.Errorf("unknown rule kind %q", kind)
	}
}
