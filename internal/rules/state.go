package rules

import "sync"

// RunState holds the batch-scoped state of one validation run: the seen-value
// sets used by uniqueness rules, keyed by rule name. A RunState is owned by
// exactly one run over one batch and is discarded when the run ends; it is
// never shared across runs.
type RunState struct {
	mu   sync.Mutex
	seen map[string]*SeenSet
}

// NewRunState creates fresh state for a single validation run.
func NewRunState() *RunState {
	return &RunState{seen: make(map[string]*SeenSet)}
}

// Set returns the seen-value set for the named rule, creating it on first use.
func (s *RunState) Set(rule string) *SeenSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.seen[rule]
	if !ok {
		set = &SeenSet{values: make(map[string]struct{})}
		s.seen[rule] = set
	}
	return set
}

// SeenSet tracks values already encountered during a batch scan. It is safe
// for concurrent use, but first-occurrence-wins semantics require callers to
// mark values in original batch order.
type SeenSet struct {
	mu     sync.Mutex
	values map[string]struct{}
}

// MarkSeen records the value and reports whether it had been seen before.
func (s *SeenSet) MarkSeen(value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.values[value]; dup {
		return true
	}
	s.values[value] = struct{}{}
	return false
}

// Len returns the number of distinct values recorded.
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}
