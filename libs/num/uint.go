// Package num provides the exact unsigned integer type used for every
// quantity, price and balance in the order book. Arithmetic never wraps:
// overflow, underflow and division by zero are reported as errors.
package num

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	ErrOverflow       = errors.New("integer overflow")
	ErrUnderflow      = errors.New("integer underflow")
	ErrDivisionByZero = errors.New("division by zero")
	ErrInvalidUint    = errors.New("invalid unsigned integer")
)

// Uint is an unsigned 256-bit integer with value semantics. The zero value
// is 0 and is ready to use.
type Uint struct {
	u uint256.Int
}

// NewUint returns a Uint holding val.
func NewUint(val uint64) Uint {
	return Uint{u: *uint256.NewInt(val)}
}

// Zero returns 0.
func Zero() Uint {
	return Uint{}
}

// MaxUint returns 2^256-1.
func MaxUint() Uint {
	var z Uint
	z.u.Not(&z.u)
	return z
}

// UintFromString parses a base 10 string.
func UintFromString(s string) (Uint, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok || b.Sign() < 0 {
		return Uint{}, fmt.Errorf("%w: %q", ErrInvalidUint, s)
	}
	u, overflow := uint256.FromBig(b)
	if overflow {
		return Uint{}, fmt.Errorf("%w: %q", ErrOverflow, s)
	}
	return Uint{u: *u}, nil
}

// UintFromBytes32 decodes the fixed width big-endian form written by
// Bytes32.
func UintFromBytes32(b []byte) (Uint, error) {
	if len(b) != 32 {
		return Uint{}, fmt.Errorf("%w: expected 32 bytes, got %d", ErrInvalidUint, len(b))
	}
	var z Uint
	z.u.SetBytes(b)
	return z, nil
}

// Bytes32 returns the 32 byte big-endian encoding of x. Byte-wise ordering of
// the encoding matches numeric ordering.
func (x Uint) Bytes32() [32]byte {
	return x.u.Bytes32()
}

func (x Uint) IsZero() bool {
	return x.u.IsZero()
}

// IsUint64 reports whether x fits in a uint64.
func (x Uint) IsUint64() bool {
	return x.u.IsUint64()
}

// Uint64 returns the low 64 bits of x.
func (x Uint) Uint64() uint64 {
	return x.u.Uint64()
}

// Cmp returns -1, 0 or +1 depending on whether x is less than, equal to or
// greater than y.
func (x Uint) Cmp(y Uint) int {
	return x.u.Cmp(&y.u)
}

func (x Uint) EQ(y Uint) bool  { return x.u.Eq(&y.u) }
func (x Uint) LT(y Uint) bool  { return x.u.Lt(&y.u) }
func (x Uint) GT(y Uint) bool  { return x.u.Gt(&y.u) }
func (x Uint) LTE(y Uint) bool { return !x.u.Gt(&y.u) }
func (x Uint) GTE(y Uint) bool { return !x.u.Lt(&y.u) }

// Add returns x + y.
func (x Uint) Add(y Uint) (Uint, error) {
	var z Uint
	if _, overflow := z.u.AddOverflow(&x.u, &y.u); overflow {
		return Uint{}, fmt.Errorf("%s + %s: %w", x, y, ErrOverflow)
	}
	return z, nil
}

// Sub returns x - y.
func (x Uint) Sub(y Uint) (Uint, error) {
	var z Uint
	if _, underflow := z.u.SubOverflow(&x.u, &y.u); underflow {
		return Uint{}, fmt.Errorf("%s - %s: %w", x, y, ErrUnderflow)
	}
	return z, nil
}

// Mul returns x * y.
func (x Uint) Mul(y Uint) (Uint, error) {
	var z Uint
	if _, overflow := z.u.MulOverflow(&x.u, &y.u); overflow {
		return Uint{}, fmt.Errorf("%s * %s: %w", x, y, ErrOverflow)
	}
	return z, nil
}

// Div returns floor(x / y).
func (x Uint) Div(y Uint) (Uint, error) {
	if y.IsZero() {
		return Uint{}, fmt.Errorf("%s / 0: %w", x, ErrDivisionByZero)
	}
	var z Uint
	z.u.Div(&x.u, &y.u)
	return z, nil
}

// Min returns the smaller of a and b.
func Min(a, b Uint) Uint {
	if a.LT(b) {
		return a
	}
	return b
}

// Sum adds all values, failing on the first overflow.
func Sum(vals ...Uint) (Uint, error) {
	var (
		total Uint
		err   error
	)
	for _, v := range vals {
		if total, err = total.Add(v); err != nil {
			return Uint{}, err
		}
	}
	return total, nil
}

// String returns the base 10 representation.
func (x Uint) String() string {
	return x.u.ToBig().String()
}

// MarshalText implements encoding.TextMarshaler. JSON encodes a Uint as a
// quoted decimal string.
func (x Uint) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (x *Uint) UnmarshalText(text []byte) error {
	v, err := UintFromString(string(text))
	if err != nil {
		return err
	}
	*x = v
	return nil
}
