package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cfgset/internal/ir"
	"github.com/roach88/cfgset/internal/store"
	"github.com/roach88/cfgset/internal/testutil"
)

// assertionFixture builds a saved set: a=0x10 "main", b=0x20 unnamed.
func assertionFixture(t *testing.T) (*Result, *AssertionContext) {
	t.Helper()

	set := ir.NewCFGSet(ir.WithIDGenerator(testutil.NewSequentialIDGenerator(0)))
	a := set.CreateCFG(0x10)
	a.SetProcedureName("main")
	b := set.CreateCFG(0x20)

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	_, err = st.SaveSet(context.Background(), set.Record())
	require.NoError(t, err)

	result := NewResult()
	result.AddTrace(TraceEvent{Seq: 1, Op: OpCreate, Address: "10", Found: true, Size: 1})
	return result, &AssertionContext{
		Set:    set,
		Labels: map[string]*ir.CFG{"a": a, "b": b},
		Store:  st,
		Ctx:    context.Background(),
	}
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	result, actx := assertionFixture(t)

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertSize, Size: ptr(2)},
		{Type: AssertEmpty, Empty: ptr(false)},
		{Type: AssertLookup, Address: "0x10", SameAs: "a"},
		{Type: AssertLookup, Name: ptr("main"), SameAs: "a", Found: ptr(true)},
		{Type: AssertLookup, Address: "30", Found: ptr(false)},
		{Type: AssertLookup, Name: ptr(""), Found: ptr(false)},
		{Type: AssertOrder, Labels: []string{"a", "b"}},
	}, actx)
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	result, actx := assertionFixture(t)

	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"size", Assertion{Type: AssertSize, Size: ptr(3)}, "Expected: 3 CFG(s)"},
		{"empty", Assertion{Type: AssertEmpty, Empty: ptr(true)}, "Actual: empty=false (size 2)"},
		{"lookup wrong cfg", Assertion{Type: AssertLookup, Address: "20", SameAs: "a"}, `CFG labeled "a"`},
		{"lookup unexpected hit", Assertion{Type: AssertLookup, Name: ptr("main"), Found: ptr(false)}, "found=false"},
		{"order", Assertion{Type: AssertOrder, Labels: []string{"b", "a"}}, "Assertion failed: order"},
		{"unknown", Assertion{Type: "nope"}, `unknown assertion type "nope"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(result, []Assertion{tt.assertion}, actx)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestAssertLookup_DetectsStoreDisagreement(t *testing.T) {
	result, actx := assertionFixture(t)

	// Rename in memory only; the stored copy still says "main".
	actx.Labels["a"].SetProcedureName("renamed")

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertLookup, Name: ptr("main"), Found: ptr(false)},
	}, actx)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "store agrees with set")
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertSize,
		Expected: "1 CFG(s)",
		Actual:   "0 CFG(s)",
		Trace: []TraceEvent{
			{Seq: 1, Op: OpGetByName, Name: ptr("Foo"), Size: 0},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: size")
	assert.Contains(t, msg, `[1] get_by_name "Foo" -> found=false size=0`)
}
