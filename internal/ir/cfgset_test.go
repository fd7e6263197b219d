package ir

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cfgset/internal/testutil"
)

func newTestSet(opts ...Option) *CFGSet {
	opts = append([]Option{WithIDGenerator(testutil.NewSequentialIDGenerator(0))}, opts...)
	return NewCFGSet(opts...)
}

func TestNewCFGSet_Empty(t *testing.T) {
	require.NotPanics(t, func() { NewCFGSet() })

	s := NewCFGSet()
	assert.True(t, s.Empty())
	assert.Equal(t, 0, s.Size())
	assert.Empty(t, s.CFGs())
	assert.NotEqual(t, uuid.Nil, s.ID())
	assert.Nil(t, s.Parent())
}

func TestCFGSet_GetCFG_ByAddress(t *testing.T) {
	ea := NewEA(22678)
	s := newTestSet()

	require.NotPanics(t, func() { s.GetCFG(ea) })
	assert.Nil(t, s.GetCFG(ea))
	assert.True(t, s.Empty())
	assert.Equal(t, 0, s.Size())

	child := s.CreateCFG(ea)
	require.NotNil(t, child)
	assert.False(t, s.Empty())
	assert.Equal(t, 1, s.Size())

	got := s.GetCFG(ea)
	require.NotNil(t, got)
	assert.Same(t, child, got)
	assert.Equal(t, 1, s.Size())

	// Make sure we don't create it again.
	again := s.CreateCFG(ea)
	assert.Same(t, child, again)
	assert.False(t, s.Empty())
	assert.Equal(t, 1, s.Size())
}

func TestCFGSet_GetCFG_ByProcedureName(t *testing.T) {
	ea := NewEA(22678)
	s := newTestSet()

	child := s.CreateCFG(ea)
	require.NotNil(t, child)
	require.NotPanics(t, func() { child.SetProcedureName("Foo") })

	got := s.GetCFGByName("Foo")
	require.NotNil(t, got)
	assert.Same(t, child, got)
	assert.Equal(t, 1, s.Size())
}

func TestCFGSet_GetCFG_Invalid(t *testing.T) {
	var ea EA
	s := newTestSet()

	require.NotPanics(t, func() { s.GetCFG(ea) })
	require.NotPanics(t, func() { s.GetCFGByName("") })
	assert.Nil(t, s.GetCFG(ea))
	assert.Nil(t, s.GetCFGByName(""))
	assert.Nil(t, s.GetCFGByName("Foo"))
}

// The end-to-end sequence from the container's contract.
func TestCFGSet_Scenario(t *testing.T) {
	s := newTestSet()
	assert.Equal(t, 0, s.Size())
	assert.True(t, s.Empty())

	first := s.CreateCFG(NewEA(22678))
	require.NotNil(t, first)
	assert.Equal(t, 1, s.Size())

	second := s.CreateCFG(NewEA(22678))
	assert.Same(t, first, second)
	assert.Equal(t, 1, s.Size())

	first.SetProcedureName("Foo")
	assert.Same(t, first, s.GetCFGByName("Foo"))

	assert.Nil(t, s.GetCFG(NewEA(0)))
	assert.Equal(t, 1, s.Size())
}

func TestCFGSet_CreateIsIdempotentForAllAddresses(t *testing.T) {
	s := newTestSet()
	for i, v := range edgeValues {
		ea := NewEA(v)
		assert.Nil(t, s.GetCFG(ea), "lookup before create must be absent")
		assert.Equal(t, i, s.Size(), "lookup must not change size")

		a := s.CreateCFG(ea)
		b := s.CreateCFG(ea)
		assert.Same(t, a, b)
		assert.Equal(t, i+1, s.Size(), "two creates grow the set by one")

		got := s.GetCFG(ea)
		require.NotNil(t, got)
		assert.Equal(t, ea, got.Address())
	}
}

func TestCFGSet_CreatePreservesExistingName(t *testing.T) {
	s := newTestSet()
	c := s.CreateCFG(NewEA(0x400000))
	c.SetProcedureName("main")

	again := s.CreateCFG(NewEA(0x400000))
	name, ok := again.ProcedureName()
	assert.True(t, ok)
	assert.Equal(t, "main", name)
}

func TestCFGSet_GetCFGByName_UnnamedNotEligible(t *testing.T) {
	s := newTestSet()
	s.CreateCFG(NewEA(1))
	s.CreateCFG(NewEA(2))

	assert.Nil(t, s.GetCFGByName(""), "unnamed CFGs must not match the empty name")

	named := s.CreateCFG(NewEA(3))
	named.SetProcedureName("")
	assert.Same(t, named, s.GetCFGByName(""))
}

func TestCFGSet_GetCFGByName_FirstInSetOrder(t *testing.T) {
	s := newTestSet()
	a := s.CreateCFG(NewEA(0x30))
	b := s.CreateCFG(NewEA(0x10))
	b.SetProcedureName("dup")
	a.SetProcedureName("dup")

	assert.Same(t, a, s.GetCFGByName("dup"), "set order is creation order, not address order")
}

func TestCFGSet_GetCFGByName_AfterClear(t *testing.T) {
	s := newTestSet()
	c := s.CreateCFG(NewEA(0x10))
	c.SetProcedureName("f")
	c.ClearProcedureName()

	_, ok := c.ProcedureName()
	assert.False(t, ok)
	assert.Nil(t, s.GetCFGByName("f"))
}

func TestCFGSet_GetCFGByName_ExactBytes(t *testing.T) {
	tests := []struct {
		name  string
		set   string
		other string
	}{
		{"decomposed vs precomposed", "cafe\u0301", "caf\u00e9"},
		{"angstrom sign vs letter", "\u212b", "\u00c5"},
		{"invalid utf-8", "\xff", "\xfe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSet()
			c := s.CreateCFG(NewEA(0x10))
			c.SetProcedureName(tt.set)

			name, ok := c.ProcedureName()
			require.True(t, ok)
			assert.Equal(t, tt.set, name)
			assert.Same(t, c, s.GetCFGByName(tt.set))
			assert.Nil(t, s.GetCFGByName(tt.other))
		})
	}
}

func TestCFGSet_GetCFGByName_DistinctSpellingsStayDistinct(t *testing.T) {
	s := newTestSet()
	sign := s.CreateCFG(NewEA(0x10))
	sign.SetProcedureName("\u212b")
	letter := s.CreateCFG(NewEA(0x20))
	letter.SetProcedureName("\u00c5")

	assert.Same(t, sign, s.GetCFGByName("\u212b"))
	assert.Same(t, letter, s.GetCFGByName("\u00c5"))
}

func TestCFGSet_ZeroValue(t *testing.T) {
	var s CFGSet
	assert.True(t, s.Empty())
	assert.Nil(t, s.GetCFG(0x10))
	assert.Nil(t, s.GetCFGByName("f"))

	c := s.CreateCFG(NewEA(0x10))
	require.NotNil(t, c)
	assert.Same(t, c, s.CreateCFG(NewEA(0x10)))
	assert.Same(t, c, s.GetCFG(0x10))
	assert.NotEqual(t, uuid.Nil, c.ID())
	assert.Same(t, &s, c.Parent())
	assert.Equal(t, 1, s.Size())
}

func TestCFGSet_CFGsIsReadOnlyView(t *testing.T) {
	s := newTestSet()
	s.CreateCFG(NewEA(1))
	s.CreateCFG(NewEA(2))

	view := s.CFGs()
	require.Len(t, view, 2)
	view[0] = nil
	_ = append(view, nil)

	assert.Equal(t, 2, s.Size())
	assert.NotNil(t, s.CFGs()[0])
	assert.Equal(t, NewEA(1), s.CFGs()[0].Address())
}

func TestCFGSet_All(t *testing.T) {
	s := newTestSet()
	for _, v := range []uint64{0x30, 0x10, 0x20} {
		s.CreateCFG(NewEA(v))
	}

	var got []EA
	for i, c := range s.All() {
		assert.Equal(t, len(got), i)
		got = append(got, c.Address())
	}
	assert.Equal(t, []EA{0x30, 0x10, 0x20}, got)

	count := 0
	for range s.All() {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestCFGSet_ParentAndIdentity(t *testing.T) {
	parent := newTestSet()
	s := newTestSet(WithParent(parent))
	assert.Same(t, parent, s.Parent())

	c := s.CreateCFG(NewEA(0x10))
	assert.Same(t, s, c.Parent())
	assert.NotEqual(t, s.ID(), c.ID())
}

func TestCFGSet_DeterministicIDs(t *testing.T) {
	s := newTestSet()
	c := s.CreateCFG(NewEA(0x10))

	assert.Equal(t, testutil.SequentialID(0, 1), s.ID())
	assert.Equal(t, testutil.SequentialID(0, 2), c.ID())
}

func TestCFGSet_Registry(t *testing.T) {
	reg := NewRegistry()
	s := newTestSet(WithRegistry(reg))
	assert.Equal(t, 1, reg.Len())

	c := s.CreateCFG(NewEA(0x10))
	s.CreateCFG(NewEA(0x10))
	assert.Equal(t, 2, reg.Len())

	n, ok := reg.Lookup(c.ID())
	require.True(t, ok)
	assert.Same(t, c, n)

	s.Release()
	assert.Equal(t, 0, reg.Len())
	_, ok = reg.Lookup(s.ID())
	assert.False(t, ok)

	require.NotPanics(t, s.Release, "second Release is a no-op")
}
