package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/cfgset/internal/ir"
	"github.com/roach88/cfgset/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s", event.Seq, event.Op)
		if event.Address != "" {
			fmt.Fprintf(&buf, " %s", event.Address)
		}
		if event.Name != nil {
			fmt.Fprintf(&buf, " %q", *event.Name)
		}
		fmt.Fprintf(&buf, " -> found=%t size=%d\n", event.Found, event.Size)
	}

	return buf.String()
}

// AssertionContext provides the final set and its persisted copy.
type AssertionContext struct {
	Set    *ir.CFGSet
	Labels map[string]*ir.CFG
	Store  *store.Store
	Ctx    context.Context
}

func assertSize(trace []TraceEvent, set *ir.CFGSet, a Assertion) error {
	if set.Size() == *a.Size {
		return nil
	}
	return &AssertionError{
		Type:     AssertSize,
		Expected: fmt.Sprintf("%d CFG(s)", *a.Size),
		Actual:   fmt.Sprintf("%d CFG(s)", set.Size()),
		Trace:    trace,
	}
}

func assertEmpty(trace []TraceEvent, set *ir.CFGSet, a Assertion) error {
	if set.Empty() == *a.Empty {
		return nil
	}
	return &AssertionError{
		Type:     AssertEmpty,
		Expected: fmt.Sprintf("empty=%t", *a.Empty),
		Actual:   fmt.Sprintf("empty=%t (size %d)", set.Empty(), set.Size()),
		Trace:    trace,
	}
}

// assertLookup checks a lookup against the in-memory set and against the
// persisted copy, which must agree.
func assertLookup(trace []TraceEvent, actx *AssertionContext, a Assertion) error {
	var (
		cfg    *ir.CFG
		rec    ir.CFGRecord
		stored bool
		err    error
		what   string
	)
	if a.Address != "" {
		ea, _ := ir.ParseEA(a.Address) // Validated by validateScenario.
		what = "address " + ea.String()
		cfg = actx.Set.GetCFG(ea)
		rec, stored, err = actx.Store.FindCFGByAddress(actx.Ctx, actx.Set.ID(), ea)
	} else {
		what = fmt.Sprintf("name %q", *a.Name)
		cfg = actx.Set.GetCFGByName(*a.Name)
		rec, stored, err = actx.Store.FindCFGByName(actx.Ctx, actx.Set.ID(), *a.Name)
	}
	if err != nil {
		return fmt.Errorf("lookup %s: store query failed: %w", what, err)
	}

	fail := func(expected, actual string) error {
		return &AssertionError{
			Type:     AssertLookup,
			Expected: fmt.Sprintf("%s: %s", what, expected),
			Actual:   actual,
			Trace:    trace,
		}
	}

	if stored != (cfg != nil) {
		return fail(fmt.Sprintf("store agrees with set (found=%t)", cfg != nil), fmt.Sprintf("store found=%t", stored))
	}
	if stored && rec.ID != cfg.ID() {
		return fail("store returns "+cfg.ID().String(), "store returned "+rec.ID.String())
	}

	if a.Found != nil && *a.Found != (cfg != nil) {
		return fail(fmt.Sprintf("found=%t", *a.Found), fmt.Sprintf("found=%t", cfg != nil))
	}
	if a.SameAs != "" {
		want := actx.Labels[a.SameAs]
		if !sameCFG(want, cfg) {
			return fail(fmt.Sprintf("CFG labeled %q (%s)", a.SameAs, idOf(want)), idOf(cfg))
		}
	}
	return nil
}

// assertOrder checks that the set's order matches the labeled CFGs exactly.
func assertOrder(trace []TraceEvent, actx *AssertionContext, a Assertion) error {
	cfgs := actx.Set.CFGs()
	expected := make([]string, len(a.Labels))
	for i, l := range a.Labels {
		expected[i] = idOf(actx.Labels[l])
	}
	actual := make([]string, len(cfgs))
	for i, c := range cfgs {
		actual[i] = idOf(c)
	}

	if strings.Join(expected, ",") == strings.Join(actual, ",") {
		return nil
	}
	return &AssertionError{
		Type:     AssertOrder,
		Expected: fmt.Sprintf("%v (labels %v)", expected, a.Labels),
		Actual:   fmt.Sprintf("%v", actual),
		Trace:    trace,
	}
}

func idOf(c *ir.CFG) string {
	if c == nil {
		return uuid.Nil.String() + " (absent)"
	}
	return c.ID().String()
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertSize:
			err = assertSize(result.Trace, actx.Set, assertion)
		case AssertEmpty:
			err = assertEmpty(result.Trace, actx.Set, assertion)
		case AssertLookup:
			if actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: lookup requires database context", i)
			} else {
				err = assertLookup(result.Trace, actx, assertion)
			}
		case AssertOrder:
			err = assertOrder(result.Trace, actx, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
