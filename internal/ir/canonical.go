package ir

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned when a name cannot be carried as JSON text
// without losing bytes.
var ErrInvalidUTF8 = errors.New("not valid UTF-8")

// MarshalCanonical produces RFC 8785 canonical JSON for a set record.
// Decoding the output yields rec again, byte for byte.
//
// Differences from json.Marshal:
//  1. Object keys sorted (all keys are ASCII, so byte order equals UTF-16 order)
//  2. No HTML escaping
//  3. Strings that are not valid UTF-8 fail with ErrInvalidUTF8 instead
//     of being coerced to U+FFFD
//  4. Addresses are hex strings, so all 64-bit values survive JSON readers
//     that parse numbers as float64
//  5. No insignificant whitespace
func MarshalCanonical(rec CFGSetRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeSetRecord(&buf, rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type canonicalField struct {
	key   string
	write func(*bytes.Buffer) error
}

func writeSetRecord(buf *bytes.Buffer, rec CFGSetRecord) error {
	return writeObject(buf, []canonicalField{
		{"id", stringWriter(rec.ID.String())},
		{"cfgs", func(buf *bytes.Buffer) error {
			buf.WriteByte('[')
			for i, c := range rec.CFGs {
				if i > 0 {
					buf.WriteByte(',')
				}
				if err := writeCFGRecord(buf, c); err != nil {
					return fmt.Errorf("cfgs[%d]: %w", i, err)
				}
			}
			buf.WriteByte(']')
			return nil
		}},
	})
}

func writeCFGRecord(buf *bytes.Buffer, rec CFGRecord) error {
	fields := []canonicalField{
		{"id", stringWriter(rec.ID.String())},
		{"address", stringWriter(rec.Address.String())},
	}
	// Absent and empty names differ: only named CFGs carry the key.
	if rec.ProcedureName != nil {
		fields = append(fields, canonicalField{"procedure_name", stringWriter(*rec.ProcedureName)})
	}
	return writeObject(buf, fields)
}

func writeObject(buf *bytes.Buffer, fields []canonicalField) error {
	sort.Slice(fields, func(i, j int) bool { return fields[i].key < fields[j].key })
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := stringWriter(f.key)(buf); err != nil {
			return fmt.Errorf("key %q: %w", f.key, err)
		}
		buf.WriteByte(':')
		if err := f.write(buf); err != nil {
			return fmt.Errorf("value for key %q: %w", f.key, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func stringWriter(s string) func(*bytes.Buffer) error {
	return func(buf *bytes.Buffer) error {
		b, err := marshalCanonicalString(s)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
}

// marshalCanonicalString produces a canonical JSON string. Only control
// characters, backslash and quote are escaped.
func marshalCanonicalString(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUTF8, s)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // CRITICAL: <, >, & must NOT be escaped
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	out := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	return unescapeLineSeparators(out), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes emitted by
// encoding/json back into literal characters. An escape preceded by an
// odd number of backslashes is literal text and is kept.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+1 < len(data) && data[i+1] == '\\' {
			out = append(out, '\\', '\\')
			i++
			continue
		}
		if bytes.HasPrefix(data[i:], []byte(`\u2028`)) {
			out = append(out, "\u2028"...)
			i += 5
			continue
		}
		if bytes.HasPrefix(data[i:], []byte(`\u2029`)) {
			out = append(out, "\u2029"...)
			i += 5
			continue
		}
		out = append(out, data[i])
	}
	return out
}
