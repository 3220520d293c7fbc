package engine

import (
	"errors"
	"fmt"
)

// QuotaEnforcer counts executed instructions for one call and enforces a
// maximum steps limit.
//
// Each call gets its own QuotaEnforcer. Generated loops are bounded by
// construction, so the quota only trips on a miscompiled body that
// branches back forever.
type QuotaEnforcer struct {
	maxSteps int
	current  int
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
// A limit of zero or less disables enforcement.
func NewQuotaEnforcer(maxSteps int) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps}
}

// Check increments the step counter and validates against the limit.
func (q *QuotaEnforcer) Check(function string) error {
	q.current++
	if q.maxSteps > 0 && q.current > q.maxSteps {
		return &StepsExceededError{
			Function: function,
			Steps:    q.current,
			Limit:    q.maxSteps,
		}
	}
	return nil
}

// Current returns the current step count.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// MaxSteps returns the maximum steps limit.
func (q *QuotaEnforcer) MaxSteps() int {
	return q.maxSteps
}

// StepsExceededError is returned when a call exceeds the step quota.
type StepsExceededError struct {
	Function string
	Steps    int
	Limit    int
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("@%s exceeded max steps quota: %d steps > %d limit",
		e.Function, e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
