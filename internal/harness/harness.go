package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/cfgset/internal/ir"
	"github.com/roach88/cfgset/internal/store"
	"github.com/roach88/cfgset/internal/testutil"
)

// Harness is the test execution engine.
// It runs one scenario against one set with deterministic ids and a
// logical step counter.
type Harness struct {
	set    *ir.CFGSet
	labels map[string]*ir.CFG
	seq    int64
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Validate the scenario
// 2. Create a fresh set with a sequential id generator
// 3. Execute steps, checking each step's expectations
// 4. Save the final set to a fresh in-memory database and reload it
// 5. Evaluate assertions against the set and the database
// 6. Release the set and check that no nodes stay registered
//
// Returns an error only for invalid scenarios or infrastructure failures.
// Failed expectations and assertions are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	ids := testutil.NewSequentialIDGenerator(scenario.IDPrefix)
	registry := ir.NewRegistry()
	h := &Harness{
		set:    ir.NewCFGSet(ir.WithIDGenerator(ids), ir.WithRegistry(registry)),
		labels: make(map[string]*ir.CFG),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Steps {
		h.executeStep(i, step, result)
	}

	result.Final = h.set.Record()
	result.Digest = ir.Digest(result.Final)

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := h.persist(ctx, st, result); err != nil {
		return nil, err
	}

	actx := &AssertionContext{
		Set:    h.set,
		Labels: h.labels,
		Store:  st,
		Ctx:    ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	h.set.Release()
	if n := registry.Len(); n != 0 {
		result.AddError(fmt.Sprintf("release: %d node(s) still registered", n))
	}

	return result, nil
}

// executeStep runs one step, records it, and checks its expectations.
// Operation failures are recorded as errors and do not stop the run.
func (h *Harness) executeStep(index int, step Step, result *Result) {
	h.seq++
	event := TraceEvent{Seq: h.seq, Op: step.Op, Name: step.Name}

	var ea ir.EA
	if step.Address != "" {
		// Validated by validateScenario.
		ea, _ = ir.ParseEA(step.Address)
		event.Address = ea.String()
	}

	var cfg *ir.CFG
	switch step.Op {
	case OpCreate:
		event.Created = h.set.GetCFG(ea) == nil
		cfg = h.set.CreateCFG(ea)
	case OpGet:
		cfg = h.set.GetCFG(ea)
	case OpGetByName:
		cfg = h.set.GetCFGByName(*step.Name)
	case OpSetName:
		if cfg = h.set.GetCFG(ea); cfg != nil {
			cfg.SetProcedureName(*step.Name)
		} else {
			result.AddError(fmt.Sprintf("steps[%d]: set_name: no CFG at %s", index, ea))
		}
	case OpClearName:
		if cfg = h.set.GetCFG(ea); cfg != nil {
			cfg.ClearProcedureName()
		} else {
			result.AddError(fmt.Sprintf("steps[%d]: clear_name: no CFG at %s", index, ea))
		}
	}

	event.Found = cfg != nil
	if cfg != nil {
		rec := cfg.Record()
		event.CFG = &rec
	}
	event.Size = h.set.Size()
	result.AddTrace(event)

	h.logger.Debug("step executed", "seq", event.Seq, "op", step.Op, "found", event.Found, "size", event.Size)

	if step.Label != "" {
		if cfg == nil {
			result.AddError(fmt.Sprintf("steps[%d]: label %q: step returned no CFG", index, step.Label))
		} else {
			h.labels[step.Label] = cfg
		}
	}

	if step.Expect != nil {
		for _, msg := range h.checkExpect(step.Expect, event, cfg) {
			result.AddError(fmt.Sprintf("steps[%d] (%s): %s", index, step.Op, msg))
		}
	}
}

func (h *Harness) checkExpect(e *Expect, event TraceEvent, cfg *ir.CFG) []string {
	var errs []string
	if e.Found != nil && *e.Found != event.Found {
		errs = append(errs, fmt.Sprintf("found = %t, expected %t", event.Found, *e.Found))
	}
	if e.Created != nil && *e.Created != event.Created {
		errs = append(errs, fmt.Sprintf("created = %t, expected %t", event.Created, *e.Created))
	}
	if e.SameAs != "" && !sameCFG(h.labels[e.SameAs], cfg) {
		errs = append(errs, fmt.Sprintf("returned CFG is not the one labeled %q", e.SameAs))
	}
	if e.Size != nil && *e.Size != event.Size {
		errs = append(errs, fmt.Sprintf("size = %d, expected %d", event.Size, *e.Size))
	}
	if e.Empty != nil && *e.Empty != h.set.Empty() {
		errs = append(errs, fmt.Sprintf("empty = %t, expected %t", h.set.Empty(), *e.Empty))
	}
	return errs
}

// sameCFG reports whether a and b are the same entity.
func sameCFG(a, b *ir.CFG) bool {
	return a != nil && a == b
}

// persist saves the final set, reloads it, and checks that the reloaded
// set has the same digest.
func (h *Harness) persist(ctx context.Context, st *store.Store, result *Result) error {
	if _, err := st.SaveSet(ctx, result.Final); err != nil {
		return fmt.Errorf("failed to save final set: %w", err)
	}

	loaded, err := st.LoadSet(ctx, result.Final.ID)
	if err != nil {
		return fmt.Errorf("failed to load final set: %w", err)
	}

	restored, err := ir.Restore(loaded)
	if err != nil {
		result.AddError(fmt.Sprintf("persist: restore failed: %v", err))
		return nil
	}
	if got := ir.Digest(restored.Record()); got != result.Digest {
		result.AddError(fmt.Sprintf("persist: reloaded digest %s, expected %s", got, result.Digest))
	}
	return nil
}
