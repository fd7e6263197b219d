package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cfgset/internal/ir"
)

// Scenario defines a conformance test scenario: a sequence of container
// operations with expectations, and assertions on the final set.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// IDPrefix seeds the sequential id generator. Scenarios that share a
	// prefix produce overlapping ids.
	IDPrefix uint64 `yaml:"id_prefix,omitempty"`

	// Steps are executed in order against one fresh set.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final set.
	// Supported types: size, empty, lookup, order
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one container operation.
type Step struct {
	// Op is one of create, get, get_by_name, set_name, clear_name.
	Op string `yaml:"op"`

	// Address is a hex address (used by every op except get_by_name).
	Address string `yaml:"address,omitempty"`

	// Name is the procedure name (used by get_by_name and set_name).
	// A pointer so that the empty name can be given explicitly.
	Name *string `yaml:"name,omitempty"`

	// Label binds the CFG this step returns for later same_as checks.
	Label string `yaml:"label,omitempty"`

	// Expect is checked after the step runs. Nil means no checks.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies per-step expectations. Unset fields are not checked.
type Expect struct {
	Found   *bool  `yaml:"found,omitempty"`
	Created *bool  `yaml:"created,omitempty"`
	SameAs  string `yaml:"same_as,omitempty"`
	Size    *int   `yaml:"size,omitempty"`
	Empty   *bool  `yaml:"empty,omitempty"`
}

// Assertion validates the final set.
type Assertion struct {
	// Type specifies the assertion type:
	// - "size": set holds exactly Size CFGs
	// - "empty": set emptiness equals Empty
	// - "lookup": lookup by Address or Name finds SameAs (or nothing when Found is false)
	// - "order": set order equals the CFGs bound to Labels
	Type string `yaml:"type"`

	Size    *int     `yaml:"size,omitempty"`
	Empty   *bool    `yaml:"empty,omitempty"`
	Address string   `yaml:"address,omitempty"`
	Name    *string  `yaml:"name,omitempty"`
	SameAs  string   `yaml:"same_as,omitempty"`
	Found   *bool    `yaml:"found,omitempty"`
	Labels  []string `yaml:"labels,omitempty"`
}

// Operation constants.
const (
	OpCreate    = "create"
	OpGet       = "get"
	OpGetByName = "get_by_name"
	OpSetName   = "set_name"
	OpClearName = "clear_name"
)

// Assertion type constants.
const (
	AssertSize   = "size"
	AssertEmpty  = "empty"
	AssertLookup = "lookup"
	AssertOrder  = "order"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
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

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	labels := make(map[string]int)
	for i, step := range s.Steps {
		if err := validateStep(i, &step, labels); err != nil {
			return err
		}
		if step.Label != "" {
			if j, dup := labels[step.Label]; dup {
				return fmt.Errorf("steps[%d]: label %q already bound by steps[%d]", i, step.Label, j)
			}
			labels[step.Label] = i
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, labels); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates a single step. labels holds the labels bound by
// earlier steps.
func validateStep(index int, step *Step, labels map[string]int) error {
	switch step.Op {
	case OpCreate, OpGet, OpSetName, OpClearName:
		if step.Address == "" {
			return fmt.Errorf("steps[%d]: address is required for %s", index, step.Op)
		}
		if _, err := ir.ParseEA(step.Address); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	case OpGetByName:
		if step.Address != "" {
			return fmt.Errorf("steps[%d]: get_by_name takes a name, not an address", index)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}

	if (step.Op == OpGetByName || step.Op == OpSetName) && step.Name == nil {
		return fmt.Errorf("steps[%d]: name is required for %s", index, step.Op)
	}

	if step.Expect != nil && step.Expect.SameAs != "" {
		if _, ok := labels[step.Expect.SameAs]; !ok && step.Expect.SameAs != step.Label {
			return fmt.Errorf("steps[%d].expect: same_as refers to unbound label %q", index, step.Expect.SameAs)
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, labels map[string]int) error {
	switch a.Type {
	case AssertSize:
		if a.Size == nil {
			return fmt.Errorf("assertions[%d]: size is required for size", index)
		}
		if *a.Size < 0 {
			return fmt.Errorf("assertions[%d]: size must be non-negative", index)
		}
	case AssertEmpty:
		if a.Empty == nil {
			return fmt.Errorf("assertions[%d]: empty is required for empty", index)
		}
	case AssertLookup:
		if (a.Address == "") == (a.Name == nil) {
			return fmt.Errorf("assertions[%d]: lookup needs exactly one of address or name", index)
		}
		if a.Address != "" {
			if _, err := ir.ParseEA(a.Address); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
		if a.SameAs == "" && a.Found == nil {
			return fmt.Errorf("assertions[%d]: lookup needs same_as or found", index)
		}
		if a.SameAs != "" {
			if _, ok := labels[a.SameAs]; !ok {
				return fmt.Errorf("assertions[%d]: same_as refers to unbound label %q", index, a.SameAs)
			}
		}
	case AssertOrder:
		for _, l := range a.Labels {
			if _, ok := labels[l]; !ok {
				return fmt.Errorf("assertions[%d]: order refers to unbound label %q", index, l)
			}
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
