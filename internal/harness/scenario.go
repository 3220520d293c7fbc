package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/synthgen/internal/ir"
)

// DefaultTolerance is the per-lane tolerance when a case sets none.
const DefaultTolerance = 1e-9

// Scenario defines a conformance test scenario: one patch, one transport,
// and a list of calls with their expected results.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs is the directory holding the CUE patch package.
	// Relative paths are resolved against the scenario file's directory.
	Specs string `yaml:"specs"`

	// Patch names the patch under test.
	Patch string `yaml:"patch"`

	// Transport is the tempo and sample rate for every case.
	Transport TransportSpec `yaml:"transport,omitempty"`

	// Cases are the calls to make.
	Cases []Case `yaml:"cases"`
}

// TransportSpec configures the transport. Zero fields take the
// interpreter defaults (120 BPM, 48 kHz).
type TransportSpec struct {
	Tempo      float64 `yaml:"tempo,omitempty"`
	SampleRate float64 `yaml:"sample_rate,omitempty"`

	// Fixed bakes the transport into the code as constants instead of
	// reading the transport globals.
	Fixed bool `yaml:"fixed,omitempty"`
}

// Case is one call of the patch function.
type Case struct {
	Name string `yaml:"name"`

	// Args maps each patch param to its value.
	Args map[string]Arg `yaml:"args"`

	// Tempo overrides the scenario tempo for this call only.
	Tempo float64 `yaml:"tempo,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Arg is a param value. A num is written as lanes plus an optional form,
// or as a bare number meaning the same value in both lanes with no form.
// An array is written as slots; a null slot is inactive.
type Arg struct {
	Lanes []float64 `yaml:"lanes,omitempty"`
	Form  string    `yaml:"form,omitempty"`
	Slots []*Arg    `yaml:"slots,omitempty"`

	// Inactive marks a slot that keeps its form tag but has no value.
	Inactive bool `yaml:"inactive,omitempty"`
}

// UnmarshalYAML accepts the bare-number shorthand.
func (a *Arg) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var v float64
		if err := n.Decode(&v); err != nil {
			return fmt.Errorf("line %d: arg must be a number or a mapping: %w", n.Line, err)
		}
		*a = Arg{Lanes: []float64{v}}
		return nil
	}
	type plain Arg
	return n.Decode((*plain)(a))
}

// IsArray reports whether the arg is written as a sparse array.
func (a Arg) IsArray() bool {
	return a.Slots != nil
}

// Expect is the expected outcome of one call: either a result or a
// runtime error code.
type Expect struct {
	// Lanes is the expected result vector; one value means both lanes.
	Lanes []float64 `yaml:"lanes,omitempty"`

	// Form is the expected result form. Empty skips the check.
	Form string `yaml:"form,omitempty"`

	// Tolerance is the allowed absolute difference per lane.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Error is the expected runtime error code, e.g. POISON_READ.
	Error string `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Specs != "" && !filepath.IsAbs(scenario.Specs) {
		scenario.Specs = filepath.Join(filepath.Dir(path), scenario.Specs)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Specs == "" {
		return fmt.Errorf("specs directory is required")
	}
	if info, err := os.Stat(s.Specs); err != nil || !info.IsDir() {
		return fmt.Errorf("specs directory not found: %s", s.Specs)
	}
	if s.Patch == "" {
		return fmt.Errorf("patch is required")
	}
	if s.Transport.Tempo < 0 || s.Transport.SampleRate < 0 {
		return fmt.Errorf("transport: tempo and sample_rate must be positive")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]bool)
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		seen[c.Name] = true
		if c.Tempo < 0 {
			return fmt.Errorf("cases[%d]: tempo must be positive", i)
		}
		for name, arg := range c.Args {
			if err := validateArg(arg, true); err != nil {
				return fmt.Errorf("cases[%d].args.%s: %w", i, name, err)
			}
		}
		if err := validateExpect(c.Expect); err != nil {
			return fmt.Errorf("cases[%d].expect: %w", i, err)
		}
	}
	return nil
}

func validateArg(a Arg, top bool) error {
	if _, err := ir.ParseForm(a.Form); err != nil {
		return err
	}
	if a.IsArray() {
		if !top {
			return fmt.Errorf("slots cannot nest")
		}
		if len(a.Lanes) > 0 || a.Form != "" {
			return fmt.Errorf("an array takes slots only")
		}
		if len(a.Slots) > ir.ArrayCapacity {
			return fmt.Errorf("%d slots exceeds array capacity %d", len(a.Slots), ir.ArrayCapacity)
		}
		for i, slot := range a.Slots {
			if slot == nil {
				continue
			}
			if err := validateArg(*slot, false); err != nil {
				return fmt.Errorf("slots[%d]: %w", i, err)
			}
		}
		return nil
	}
	if top && a.Inactive {
		return fmt.Errorf("inactive is only valid on array slots")
	}
	if a.Inactive {
		return nil
	}
	if len(a.Lanes) != 1 && len(a.Lanes) != 2 {
		return fmt.Errorf("lanes must hold 1 or 2 values, got %d", len(a.Lanes))
	}
	return nil
}

func validateExpect(e Expect) error {
	if e.Error != "" {
		if len(e.Lanes) > 0 || e.Form != "" {
			return fmt.Errorf("error excludes lanes and form")
		}
		return nil
	}
	if len(e.Lanes) != 1 && len(e.Lanes) != 2 {
		return fmt.Errorf("lanes must hold 1 or 2 values, got %d", len(e.Lanes))
	}
	if _, err := ir.ParseForm(e.Form); err != nil {
		return err
	}
	if e.Tolerance < 0 {
		return fmt.Errorf("tolerance must be non-negative")
	}
	return nil
}

// lanes widens one or two values to a vector.
func lanes(vs []float64) [2]float64 {
	if len(vs) == 1 {
		return [2]float64{vs[0], vs[0]}
	}
	return [2]float64{vs[0], vs[1]}
}
