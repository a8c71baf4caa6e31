package rules

import (
	"fmt"

	"watchdog/pkg/contracts/domain"
)

// Set is an ordered collection of configured rules. Rule order is the order
// violations are reported in for each row.
type Set struct {
	Rules []Rule
}

// Enabled returns the enabled rules in declared order.
func (s Set) Enabled() []Rule {
	out := make([]Rule, 0, len(s.Rules))
	for _, r := range s.Rules {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// Roles returns the distinct roles required by enabled rules, in declared
// order of first use.
func (s Set) Roles() []domain.Role {
	seen := make(map[domain.Role]struct{}, len(s.Rules))
	out := make([]domain.Role, 0, len(s.Rules))
	for _, r := range s.Rules {
		if !r.Enabled {
			continue
		}
		if _, ok := seen[r.Role]; ok {
			continue
		}
		seen[r.Role] = struct{}{}
		out = append(out, r.Role)
	}
	return out
}

// Validate checks structural invariants of the set: non-empty unique names,
// non-empty roles, and a check variant on every rule.
func (s Set) Validate() error {
	names := make(map[string]struct{}, len(s.Rules))
	for i, r := range s.Rules {
		if r.Name == "" {
			return fmt.Errorf("rule %d has no name", i)
		}
		if _, dup := names[r.Name]; dup {
			return fmt.Errorf("duplicate rule name %q", r.Name)
		}
		names[r.Name] = struct{}{}
		if r.Role == "" {
			return fmt.Errorf("rule %q has no target role", r.Name)
		}
		if r.Check == nil {
			return fmt.Errorf("rule %q has no check", r.Name)
		}
	}
	return nil
}
