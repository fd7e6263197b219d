package harness

import "github.com/roach88/cfgset/internal/ir"

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int64         `json:"seq"`
	Op      string        `json:"op"`
	Address string        `json:"address,omitempty"`
	Name    *string       `json:"name,omitempty"`
	Found   bool          `json:"found"`
	Created bool          `json:"created,omitempty"`
	CFG     *ir.CFGRecord `json:"cfg,omitempty"` // state after the step
	Size    int           `json:"size"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expectations and assertions hold.
	Pass bool `json:"pass"`

	// Trace contains every step in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the set's record after the last step.
	Final ir.CFGSetRecord `json:"final"`

	// Digest is the content digest of Final.
	Digest string `json:"digest"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
