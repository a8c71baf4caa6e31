package engine

import (
	"fmt"

	"watchdog/pkg/contracts/domain"
)

// UnmappedRoleError indicates an enabled rule requires a role that the field
// mapping does not cover. Detected at Configure time, before any row is read.
type UnmappedRoleError struct {
	Rule string
	Role domain.Role
}

func (e *UnmappedRoleError) Error() string {
	return fmt.Sprintf("rule %q requires role %q which is not mapped to a column", e.Rule, e.Role)
}

// UnknownFieldError indicates a role maps to a column name that does not
// exist in the batch schema.
type UnknownFieldError struct {
	Role  domain.Role
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("role %q maps to column %q which is not present in the batch", e.Role, e.Field)
}

// EmptyRuleSetError indicates the caller required at least one enabled rule
// and none was configured.
type EmptyRuleSetError struct{}

func (e *EmptyRuleSetError) Error() string {
	return "no enabled rules configured"
}
