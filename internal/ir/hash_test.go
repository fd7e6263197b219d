package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/cfgset/internal/testutil"
)

func TestDigest_Deterministic(t *testing.T) {
	a := Digest(populatedSet(t).Record())
	b := Digest(populatedSet(t).Record())

	assert.Equal(t, a, b, "Digest must be deterministic")
	assert.Len(t, a, 64, "SHA-256 hex is 64 characters")
}

func TestDigest_ChangesWithContent(t *testing.T) {
	base := populatedSet(t)
	d0 := Digest(base.Record())

	renamed := populatedSet(t)
	renamed.GetCFG(0x400000).SetProcedureName("start")

	grown := populatedSet(t)
	grown.CreateCFG(0x403000)

	reordered := newTestSet()
	reordered.CreateCFG(0x400000)
	reordered.CreateCFG(0x401000).SetProcedureName("main")
	reordered.CreateCFG(0x402000).SetProcedureName("")

	assert.NotEqual(t, d0, Digest(renamed.Record()), "names are part of the digest")
	assert.NotEqual(t, d0, Digest(grown.Record()), "membership is part of the digest")
	assert.NotEqual(t, d0, Digest(reordered.Record()), "order is part of the digest")
}

func TestDigest_EmptyNameDiffersFromUnnamed(t *testing.T) {
	unnamed := newTestSet()
	unnamed.CreateCFG(0x10)

	empty := newTestSet()
	empty.CreateCFG(0x10).SetProcedureName("")

	assert.NotEqual(t, Digest(unnamed.Record()), Digest(empty.Record()))
}

func TestDigest_NameBytes(t *testing.T) {
	pairs := []struct {
		name string
		a, b string
	}{
		{"invalid utf-8", "\xff", "\xfe"},
		{"invalid utf-8 vs replacement char", "\xff", "\ufffd"},
		{"decomposed vs precomposed", "cafe\u0301", "caf\u00e9"},
		{"angstrom sign vs letter", "\u212b", "\u00c5"},
	}

	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestSet()
			a.CreateCFG(0x10).SetProcedureName(tt.a)
			b := newTestSet()
			b.CreateCFG(0x10).SetProcedureName(tt.b)

			assert.NotEqual(t, Digest(a.Record()), Digest(b.Record()))
		})
	}
}

func TestDigest_NameBoundaries(t *testing.T) {
	// Without length prefixes both sets would feed the same bytes.
	a := newTestSet()
	a.CreateCFG(0x10).SetProcedureName("ab")
	a.CreateCFG(0x20)

	b := newTestSet()
	b.CreateCFG(0x10).SetProcedureName("a")
	b.CreateCFG(0x20).SetProcedureName("b")

	assert.NotEqual(t, Digest(a.Record()), Digest(b.Record()))
}

func TestDigest_DomainSeparated(t *testing.T) {
	rec := CFGSetRecord{ID: testutil.SequentialID(0, 1)}
	input := appendDigestInput(nil, rec)

	assert.Equal(t, hashWithDomain(DomainCFGSet, input), Digest(rec))
	assert.NotEqual(t, hashWithDomain("cfgset/other/v1", input), Digest(rec))
}

func TestAppendDigestInput_Layout(t *testing.T) {
	name := "f"
	rec := CFGSetRecord{
		ID: testutil.SequentialID(0, 1),
		CFGs: []CFGRecord{
			{ID: testutil.SequentialID(0, 2), Address: 0x10, ProcedureName: &name},
			{ID: testutil.SequentialID(0, 3), Address: 0x20},
		},
	}

	var want []byte
	want = append(want, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1)
	want = append(want, 0, 0, 0, 0, 0, 0, 0, 2)
	want = append(want, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2)
	want = append(want, 0, 0, 0, 0, 0, 0, 0, 0x10)
	want = append(want, 1, 0, 0, 0, 0, 0, 0, 0, 1, 'f')
	want = append(want, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 3)
	want = append(want, 0, 0, 0, 0, 0, 0, 0, 0x20)
	want = append(want, 0)

	assert.Equal(t, want, appendDigestInput(nil, rec))
}
