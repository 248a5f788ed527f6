package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/updatelog/internal/engine"
	"github.com/roach88/updatelog/internal/record"
)

// Scenario is one replayable sequence of engine operations plus the checks
// that must hold afterwards.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// SkipLabels overrides the placeholder labels merge steps skip.
	SkipLabels []string `yaml:"skip_labels,omitempty"`

	// Setup steps establish initial state. Any failure aborts the run.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow steps are checked against their expect clauses.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final store.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one engine operation.
type Step struct {
	// Op is the operation name, one of the Op* constants.
	Op string `yaml:"op"`

	// As names the record a create or update step returns.
	As string `yaml:"as,omitempty"`

	// Ref is the target of update and delete.
	Ref string `yaml:"ref,omitempty"`

	// Refs are the targets of bulk_delete.
	Refs []string `yaml:"refs,omitempty"`

	// Client is the label for create and update, or the scope of renumber.
	Client string `yaml:"client,omitempty"`

	// Content is the free-text payload for create and update.
	Content record.Content `yaml:"content,omitempty"`

	// Dragged and Target are the reorder arguments.
	Dragged string `yaml:"dragged,omitempty"`
	Target  string `yaml:"target,omitempty"`

	// Rows is the merge batch.
	Rows []engine.Row `yaml:"rows,omitempty"`

	// Aliases names the records a merge imports, in order.
	Aliases []string `yaml:"aliases,omitempty"`

	// Expect is checked for flow steps. Nil means the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the outcome of one step. Unset fields are not checked.
type Expect struct {
	// Error is the expected error kind: not_found, validation or storage.
	Error string `yaml:"error,omitempty"`

	// Count is the number of records the step changed or removed.
	Count *int `yaml:"count,omitempty"`

	// Imported and Skipped are merge counters.
	Imported *int `yaml:"imported,omitempty"`
	Skipped  *int `yaml:"skipped,omitempty"`

	// Record is matched against the record a create or update returns.
	Record *RecordExpect `yaml:"record,omitempty"`
}

// RecordExpect is a subset match on a record's order fields.
type RecordExpect struct {
	Client          *string `yaml:"client,omitempty"`
	GlobalOrder     *int64  `yaml:"global_order,omitempty"`
	ClientOrder     *int64  `yaml:"client_order,omitempty"`
	FirstAppearance *int64  `yaml:"client_first_appearance,omitempty"`
}

// Assertion validates the final store.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Ref names the record (record, absent).
	Ref string `yaml:"ref,omitempty"`

	// Expect is the record match (record).
	Expect *RecordExpect `yaml:"expect,omitempty"`

	// Client and Orders are used by client_orders.
	Client string  `yaml:"client,omitempty"`
	Orders []int64 `yaml:"orders,omitempty"`

	// Clients is the expected group order (groups).
	Clients []string `yaml:"clients,omitempty"`

	// Count is the expected record total (count).
	Count int `yaml:"count,omitempty"`

	// Contiguous additionally requires client_order to be exactly 1..N
	// (invariants).
	Contiguous bool `yaml:"contiguous,omitempty"`
}

// Operation names.
const (
	OpCreate     = "create"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpBulkDelete = "bulk_delete"
	OpReorder    = "reorder"
	OpMerge      = "merge"
	OpRenumber   = "renumber"
	OpBackfill   = "backfill"
)

// Assertion type constants.
const (
	AssertRecord       = "record"
	AssertAbsent       = "absent"
	AssertClientOrders = "client_orders"
	AssertGroups       = "groups"
	AssertCount        = "count"
	AssertInvariants   = "invariants"
)

// Error kinds used in expect clauses and traces.
const (
	OutcomeOK         = "ok"
	OutcomeNotFound   = "not_found"
	OutcomeValidation = "validation"
	OutcomeStorage    = "storage"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
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

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: setup steps cannot have expect", i)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}

	return nil
}

func validateStep(step Step) error {
	switch step.Op {
	case OpCreate, OpRenumber, OpBackfill:
	case OpUpdate, OpDelete:
		if step.Ref == "" {
			return fmt.Errorf("%s requires ref", step.Op)
		}
	case OpBulkDelete:
		if len(step.Refs) == 0 {
			return fmt.Errorf("bulk_delete requires refs")
		}
	case OpReorder:
		if step.Dragged == "" || step.Target == "" {
			return fmt.Errorf("reorder requires dragged and target")
		}
	case OpMerge:
		if len(step.Aliases) > len(step.Rows) {
			return fmt.Errorf("merge has %d aliases for %d rows", len(step.Aliases), len(step.Rows))
		}
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	if step.Expect != nil {
		switch step.Expect.Error {
		case "", OutcomeNotFound, OutcomeValidation, OutcomeStorage:
		default:
			return fmt.Errorf("unknown error kind %q", step.Expect.Error)
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertRecord:
		if a.Ref == "" || a.Expect == nil {
			return fmt.Errorf("record assertion requires ref and expect")
		}
	case AssertAbsent:
		if a.Ref == "" {
			return fmt.Errorf("absent assertion requires ref")
		}
	case AssertClientOrders:
		if a.Client == "" {
			return fmt.Errorf("client_orders assertion requires client")
		}
	case AssertGroups, AssertCount, AssertInvariants:
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
