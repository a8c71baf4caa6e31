package domain

// Violation records a single failed rule for a row.
type Violation struct {
	Rule   string `json:"rule"`
	Reason string `json:"reason"`
}

// Verdict is the per-row outcome of a validation run. A row with an empty
// violation list is clean; any violation routes it to quarantine. Verdicts
// are positionally aligned with the batch they were produced from.
type Verdict struct {
	RowIndex   int         `json:"row_index"`
	Passed     bool        `json:"passed"`
	Violations []Violation `json:"violations,omitempty"`
}

// Summary aggregates the verdicts of one validation run.
// Invariant: CleanRows + FlaggedRows == TotalRows.
type Summary struct {
	RunID        string         `json:"run_id,omitempty"`
	TotalRows    int            `json:"total_rows"`
	CleanRows    int            `json:"clean_rows"`
	FlaggedRows  int            `json:"flagged_rows"`
	PassRate     float64        `json:"pass_rate"`
	Passed       bool           `json:"passed"`
	RuleFailures map[string]int `json:"rule_failures,omitempty"`
}
