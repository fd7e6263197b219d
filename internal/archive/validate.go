package archive

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaCUE string

// Validate checks a raw document against the CFG set schema.
// The error lists every violation CUE reports, one per line.
func Validate(data []byte, f Format) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#CFGSet"))

	var doc cue.Value
	switch f {
	case FormatJSON:
		expr, err := cuejson.Extract("document.json", data)
		if err != nil {
			return &DecodeError{Format: f, Message: "malformed document", Err: err}
		}
		doc = ctx.BuildExpr(expr)
	case FormatYAML:
		file, err := cueyaml.Extract("document.yaml", data)
		if err != nil {
			return &DecodeError{Format: f, Message: "malformed document", Err: err}
		}
		doc = ctx.BuildFile(file)
	default:
		return &DecodeError{Format: f, Message: "unsupported format"}
	}
	if err := doc.Err(); err != nil {
		return &DecodeError{Format: f, Message: "malformed document", Err: err}
	}

	if err := def.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return &DecodeError{Format: f, Message: "schema violation", Err: fmt.Errorf("%s", cueerrors.Details(err, nil))}
	}
	return nil
}
