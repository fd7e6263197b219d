// Package harness provides conformance testing for CFG sets.
//
// The harness executes YAML scenarios against a fresh CFGSet, records a
// trace of every operation, checks per-step expectations and final
// assertions, and persists the final set through the SQLite store to
// verify it survives a save/load round trip.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	id_prefix: 0            # optional; seeds deterministic node ids
//	steps:
//	  - op: create          # create | get | get_by_name | set_name | clear_name
//	    address: "5896"     # hex, optional 0x prefix
//	    label: foo          # binds the returned CFG for later same_as checks
//	    expect:
//	      created: true
//	      size: 1
//	  - op: get_by_name
//	    name: Foo
//	    expect:
//	      found: true
//	      same_as: foo
//	assertions:
//	  - type: size
//	    size: 1
//	  - type: lookup
//	    name: Foo
//	    same_as: foo
//	  - type: order
//	    labels: [foo]
//
// # Determinism
//
// Node ids come from a sequential generator (set first, then CFGs in
// creation order) and every step gets the next logical sequence number,
// so the same scenario always produces the same trace. RunWithGolden
// compares that trace with testdata/golden/<name>.golden.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/basic.yaml")
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    t.Errorf("scenario failed: %v", result.Errors)
//	}
package harness
