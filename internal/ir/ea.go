package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// EA is an effective address: a location in the analyzed binary's
// virtual address space.
//
// Every 64-bit pattern is a legal EA. Arithmetic wraps like native
// uint64 arithmetic; whether an address is actually mapped by the binary
// is decided by higher layers.
type EA uint64

// NewEA returns the address with value v.
func NewEA(v uint64) EA {
	return EA(v)
}

// Get returns the raw address value.
func (a EA) Get() uint64 {
	return uint64(a)
}

// Set replaces the address value.
func (a *EA) Set(v uint64) {
	*a = EA(v)
}

// Equal reports whether a and b hold the same value.
func (a EA) Equal(b EA) bool {
	return a == b
}

// EqualUint64 reports whether a holds exactly v.
func (a EA) EqualUint64(v uint64) bool {
	return uint64(a) == v
}

// Less reports whether a orders before b.
func (a EA) Less(b EA) bool {
	return a < b
}

// Greater reports whether a orders after b.
func (a EA) Greater(b EA) bool {
	return a > b
}

// Add returns a+b, wrapping on overflow.
func (a EA) Add(b EA) EA {
	return a + b
}

// Sub returns a-b, wrapping on underflow.
func (a EA) Sub(b EA) EA {
	return a - b
}

// AddAssign adds b to a in place and returns the new value.
func (a *EA) AddAssign(b EA) EA {
	*a += b
	return *a
}

// SubAssign subtracts b from a in place and returns the new value.
func (a *EA) SubAssign(b EA) EA {
	*a -= b
	return *a
}

// String renders the address as lowercase hex without prefix or padding.
func (a EA) String() string {
	return strconv.FormatUint(uint64(a), 16)
}

// ParseEA parses the hex form produced by String. A leading "0x" is accepted.
func ParseEA(s string) (EA, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits == "" {
		return 0, fmt.Errorf("parse address %q: empty", s)
	}
	v, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse address %q: %w", s, err)
	}
	return EA(v), nil
}

// MarshalText encodes the address in its String form.
func (a EA) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes an address produced by MarshalText.
func (a *EA) UnmarshalText(text []byte) error {
	v, err := ParseEA(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
