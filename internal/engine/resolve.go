package engine

import (
	"watchdog/internal/rules"
	"watchdog/pkg/contracts/domain"
)

// Binding is an enabled rule with its role resolved to a concrete column.
type Binding struct {
	Rule  rules.Rule
	Field string
}

// Resolve maps every enabled rule's role to a column in the batch schema.
// Resolution happens once, before any row is scanned, so mapping problems
// surface before partial work is done. Returns bindings in rule declaration
// order.
func Resolve(set rules.Set, mapping domain.FieldMapping, batch *domain.Batch) ([]Binding, error) {
	enabled := set.Enabled()
	bindings := make([]Binding, 0, len(enabled))
	for _, r := range enabled {
		field, ok := mapping[r.Role]
		if !ok || field == "" {
			return nil, &UnmappedRoleError{Rule: r.Name, Role: r.Role}
		}
		if !batch.HasColumn(field) {
			return nil, &UnknownFieldError{Role: r.Role, Field: field}
		}
		bindings = append(bindings, Binding{Rule: r, Field: field})
	}
	return bindings, nil
}
