package harness

import (
	"context"
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/synthgen/internal/ir"
)

// RunWithGolden executes a scenario and compares the patch's IR listing
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario cannot be run. Case failures are left in
// the result for the caller to assert on.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, []byte(result.Listing))
	return result, nil
}

// Snapshot renders a result as canonical JSON. Lanes are spelled with
// strconv's shortest round-trip format since canonical JSON has no floats.
func Snapshot(result *Result) ([]byte, error) {
	cases := make([]any, len(result.Cases))
	for i, c := range result.Cases {
		entry := map[string]any{
			"name":  c.Name,
			"pass":  c.Pass,
			"lanes": []string{formatLane(c.Lanes[0]), formatLane(c.Lanes[1])},
			"steps": c.Steps,
		}
		if c.Form != "" {
			entry["form"] = c.Form
		}
		if c.ErrorCode != "" {
			entry["error_code"] = c.ErrorCode
		}
		cases[i] = entry
	}
	return ir.MarshalCanonical(map[string]any{
		"patch": result.Patch,
		"pass":  result.Pass,
		"cases": cases,
	})
}

func formatLane(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
