package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cfgset/internal/ir"
)

// Format identifies a document encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ValidFormats lists the supported formats.
var ValidFormats = []Format{FormatJSON, FormatYAML}

// ParseFormat converts a user-supplied name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q: must be one of %v", name, ValidFormats)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer format of %q: no file extension", path)
	}
	return ParseFormat(ext)
}

// DecodeError reports a document that could not be turned into a record.
type DecodeError struct {
	Format  Format
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Format, e.Message, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Format, e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Encode writes rec to w in the given format. Both formats are text, so a
// procedure name that is not valid UTF-8 fails with ir.ErrInvalidUTF8 and
// nothing is written.
func Encode(w io.Writer, rec ir.CFGSetRecord, f Format) error {
	if rec.CFGs == nil {
		rec.CFGs = []ir.CFGRecord{}
	}
	if err := ir.ValidateUTF8(rec); err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	switch f {
	case FormatJSON:
		data, err := ir.MarshalCanonical(rec)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("encode: unsupported format %q", f)
	}
}

// Decode reads a document from r, validates it against the schema and
// returns the record. Duplicate addresses are left for ir.Restore to reject.
func Decode(r io.Reader, f Format) (ir.CFGSetRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ir.CFGSetRecord{}, &DecodeError{Format: f, Message: "read failed", Err: err}
	}
	// encoding/json would silently turn stray bytes into U+FFFD.
	if !utf8.Valid(data) {
		return ir.CFGSetRecord{}, &DecodeError{Format: f, Message: "document is not valid UTF-8"}
	}
	if err := Validate(data, f); err != nil {
		return ir.CFGSetRecord{}, err
	}

	var rec ir.CFGSetRecord
	switch f {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rec); err != nil {
			return ir.CFGSetRecord{}, &DecodeError{Format: f, Message: "malformed document", Err: err}
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true) // Reject unknown fields
		if err := dec.Decode(&rec); err != nil {
			return ir.CFGSetRecord{}, &DecodeError{Format: f, Message: "malformed document", Err: err}
		}
	default:
		return ir.CFGSetRecord{}, &DecodeError{Format: f, Message: "unsupported format"}
	}

	if err := ir.ValidateUTF8(rec); err != nil {
		return ir.CFGSetRecord{}, &DecodeError{Format: f, Message: "invalid procedure name", Err: err}
	}
	if rec.CFGs == nil {
		rec.CFGs = []ir.CFGRecord{}
	}
	return rec, nil
}
