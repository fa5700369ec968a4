// Package tools implements the built-in research tools and wires them into
// questscale.Tool adapters: date grounding, web search, arithmetic, and
// stock lookups.
package tools

import (
	"fmt"
	"sync"
)

// Quota enforces a process-wide cap on invocations of a metered tool. The
// check happens before any network call and the count only advances after a
// successful call, so failed calls never consume budget. A limit of zero or
// below means unmetered.
type Quota struct {
	mu    sync.Mutex
	limit int
	used  int
}

// NewQuota creates a quota with the given limit. Non-positive limits disable
// metering.
func NewQuota(limit int) *Quota {
	return &Quota{limit: limit}
}

// Check reports whether one more call is allowed. When metering is active it
// returns a remaining-budget note for the tool output; when the budget is
// spent it returns an error carrying the user-facing message.
func (q *Quota) Check() (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.limit <= 0 {
		return "", nil
	}
	if q.used >= q.limit {
		return "", fmt.Errorf("search limit reached (%d/%d); raise the session quota to allow more searches", q.used, q.limit)
	}
	return fmt.Sprintf("Remaining searches: %d/%d", q.limit-q.used, q.limit), nil
}

// MarkUsed consumes one unit of budget. Call it only after a successful
// metered call.
func (q *Quota) MarkUsed() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.used++
}

// Used returns how many units have been consumed.
func (q *Quota) Used() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.used
}

// Limit returns the configured cap. Non-positive means unmetered.
func (q *Quota) Limit() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.limit
}

// Reset returns the quota to a fresh state.
func (q *Quota) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.used = 0
}
