package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/synthgen/internal/engine"
	"github.com/roach88/synthgen/internal/ir"
)

// AssertionError is returned when a case result differs from its
// expectation.
type AssertionError struct {
	Type     string // "lanes", "form" or "error"
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual: %s", e.Actual)
	return buf.String()
}

// checkCase compares a call outcome with the expectation. callErr is the
// error returned by the interpreter, if any.
func checkCase(exp Expect, got engine.Num, callErr error) []error {
	if exp.Error != "" {
		code := engine.ErrorCode(callErr)
		switch {
		case callErr == nil:
			return []error{&AssertionError{Type: "error", Expected: exp.Error, Actual: fmt.Sprintf("result %s", got)}}
		case string(code) != exp.Error:
			return []error{&AssertionError{Type: "error", Expected: exp.Error, Actual: callErr.Error()}}
		}
		return nil
	}
	if callErr != nil {
		return []error{&AssertionError{Type: "error", Expected: "no error", Actual: callErr.Error()}}
	}

	var errs []error
	if err := assertLanes(lanes(exp.Lanes), got.Vec, tolerance(exp)); err != nil {
		errs = append(errs, err)
	}
	if exp.Form != "" {
		want, _ := ir.ParseForm(exp.Form)
		if got.Form != want {
			errs = append(errs, &AssertionError{Type: "form", Expected: want.String(), Actual: got.Form.String()})
		}
	}
	return errs
}

// assertLanes compares lane by lane. NaN matches only NaN.
func assertLanes(want, got [2]float64, tol float64) error {
	for i := range want {
		if !laneEqual(want[i], got[i], tol) {
			return &AssertionError{
				Type:     "lanes",
				Expected: fmt.Sprintf("<%g, %g> within %g", want[0], want[1], tol),
				Actual:   fmt.Sprintf("<%g, %g> (lane %d off by %g)", got[0], got[1], i, math.Abs(want[i]-got[i])),
			}
		}
	}
	return nil
}

func laneEqual(want, got, tol float64) bool {
	switch {
	case math.IsNaN(want) || math.IsNaN(got):
		return math.IsNaN(want) && math.IsNaN(got)
	case math.IsInf(want, 0) || math.IsInf(got, 0):
		return want == got
	}
	return math.Abs(want-got) <= tol
}

func tolerance(e Expect) float64 {
	if e.Tolerance == 0 {
		return DefaultTolerance
	}
	return e.Tolerance
}
