package ir

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}
	a := gen.NewID()
	b := gen.NewID()

	assert.Equal(t, uuid.Version(7), a.Version())
	assert.NotEqual(t, a, b)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	s := NewCFGSet()

	_, ok := reg.Lookup(s.ID())
	assert.False(t, ok)

	reg.Register(s)
	n, ok := reg.Lookup(s.ID())
	require.True(t, ok)
	assert.Same(t, s, n)
	assert.Equal(t, 1, reg.Len())

	reg.Deregister(s.ID())
	reg.Deregister(uuid.New())
	assert.Equal(t, 0, reg.Len())
}
