// Package macaddr generates locally-assigned 48-bit MAC addresses from
// a monotonic counter, following the same byte-oriented style as
// package ipv4: a fixed-width value type with Parse/String plus a
// stateful allocator on top.
package macaddr

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrOverflow is returned once the counter has produced every non-zero
// value in the 48-bit space and wraps back to zero.
var ErrOverflow = errors.New("macaddr: address space exhausted")

// ErrBadAddress is returned by Parse on malformed input.
var ErrBadAddress = errors.New("macaddr: invalid address")

// Addr is a 48-bit MAC address, stored in its 6 big-endian bytes.
type Addr [6]byte

// Parse converts "aa:bb:cc:dd:ee:ff" into an Addr.
func Parse(s string) (Addr, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return Addr{}, fmt.Errorf("%w: %s", ErrBadAddress, s)
	}
	var a Addr
	for i, p := range parts {
		b, err := hex.DecodeString(p)
		if err != nil || len(b) != 1 {
			return Addr{}, fmt.Errorf("%w: %s", ErrBadAddress, s)
		}
		a[i] = b[0]
	}
	return a, nil
}

// String renders the address in colon-hex form.
func (a Addr) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", a[0], a[1], a[2], a[3], a[4], a[5])
}

// IsZero reports whether a is the reserved all-zero address.
func (a Addr) IsZero() bool {
	return a == Addr{}
}

// Generator hands out MAC addresses from a 6-byte big-endian counter.
// The zero value is the reserved all-zero address and is never handed
// out; the first call to NextOne returns 00:00:00:00:00:01.
type Generator struct {
	counter  Addr
	wrapped  bool
	overflow bool
}

// NewGenerator returns a Generator starting immediately before the
// first assignable address.
func NewGenerator() *Generator {
	return &Generator{}
}

// NextOne increments the counter and returns the next address. ok is
// false exactly once the counter has wrapped through all 2^48 values
// back to zero, at which point every subsequent call also fails.
func (g *Generator) NextOne() (Addr, bool) {
	if g.overflow {
		return Addr{}, false
	}
	g.increment()
	if g.wrapped {
		g.overflow = true
		return Addr{}, false
	}
	return g.counter, true
}

// increment adds 1 to the counter with carry, tracking whether it
// wrapped back to the all-zero value.
func (g *Generator) increment() {
	for i := len(g.counter) - 1; i >= 0; i-- {
		g.counter[i]++
		if g.counter[i] != 0 {
			return
		}
	}
	// every byte carried through zero: the counter wrapped.
	g.wrapped = true
}

// NextMany fills out with k freshly allocated addresses. It stops and
// returns an error (wrapping ErrOverflow) as soon as the counter would
// overflow, leaving out partially filled up to that point.
func (g *Generator) NextMany(out []Addr) error {
	for i := range out {
		a, ok := g.NextOne()
		if !ok {
			return fmt.Errorf("%w: allocated %d of %d requested", ErrOverflow, i, len(out))
		}
		out[i] = a
	}
	return nil
}
