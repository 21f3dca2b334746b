package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/printflow/backoffice/internal/storage"
	"github.com/printflow/backoffice/internal/validation"
)

// Sentinel errors callers can test with errors.Is.
var (
	// ErrNotFound is returned when a payable or a plan/series head is missing.
	ErrNotFound = storage.ErrNotFound

	// ErrPlanOverCommitted signals that an amount edit left a plan owing more
	// than its total with no unpaid future installments left to absorb the
	// difference. The edit itself is still applied; callers decide whether to
	// surface the warning.
	ErrPlanOverCommitted = errors.New("plan over-committed")
)

// ValidationError reports rejected input. Nothing has been written when it is
// returned.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f, reason := range e.Violations {
		fields = append(fields, f+": "+reason)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// OverCommitError wraps ErrPlanOverCommitted with the amounts involved.
type OverCommitError struct {
	PlanTotal   float64
	OverrunCents int64
}

func (e *OverCommitError) Error() string {
	return fmt.Sprintf("plan over-committed: total %.2f exceeded by %d cents", e.PlanTotal, e.OverrunCents)
}

func (e *OverCommitError) Unwrap() error { return ErrPlanOverCommitted }
