package domain

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// amountBits is the width of every ledger amount.
const amountBits = 128

// Amount is an unsigned 128-bit token quantity. The zero value is 0.
type Amount struct {
	v uint256.Int
}

var maxAmount = func() Amount {
	var a Amount
	a.v.Lsh(uint256.NewInt(1), amountBits)
	a.v.SubUint64(&a.v, 1)
	return a
}()

func NewAmount(v uint64) Amount {
	var a Amount
	a.v.SetUint64(v)
	return a
}

// MaxAmount returns 2^128-1.
func MaxAmount() Amount {
	return maxAmount
}

// ParseAmount parses a base-10 unsigned integer that fits in 128 bits.
func ParseAmount(raw string) (Amount, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Amount{}, fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}
	if strings.HasPrefix(trimmed, "+") || strings.HasPrefix(trimmed, "-") {
		return Amount{}, fmt.Errorf("%w: %q is not an unsigned decimal", ErrInvalidAmount, raw)
	}

	parsed, err := uint256.FromDecimal(trimmed)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, raw, err)
	}
	if parsed.BitLen() > amountBits {
		return Amount{}, fmt.Errorf("%w: %q exceeds 128 bits", ErrOverflow, raw)
	}

	return Amount{v: *parsed}, nil
}

// MustParseAmount is ParseAmount for constants and tests.
func MustParseAmount(raw string) Amount {
	a, err := ParseAmount(raw)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Cmp returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

// CheckedAdd returns a+b, or ok=false when the sum exceeds 128 bits.
func (a Amount) CheckedAdd(b Amount) (Amount, bool) {
	var out Amount
	if _, overflow := out.v.AddOverflow(&a.v, &b.v); overflow {
		return Amount{}, false
	}
	if out.v.BitLen() > amountBits {
		return Amount{}, false
	}
	return out, true
}

// CheckedSub returns a-b, or ok=false when b > a.
func (a Amount) CheckedSub(b Amount) (Amount, bool) {
	var out Amount
	if _, underflow := out.v.SubOverflow(&a.v, &b.v); underflow {
		return Amount{}, false
	}
	return out, true
}

func (a Amount) String() string {
	return a.v.Dec()
}

// Format renders a with the given number of fractional digits, so 1500000
// at 6 decimals is "1.500000".
func (a Amount) Format(decimals uint8) string {
	digits := a.String()
	if decimals == 0 {
		return digits
	}
	d := int(decimals)
	if len(digits) <= d {
		digits = strings.Repeat("0", d-len(digits)+1) + digits
	}
	return digits[:len(digits)-d] + "." + digits[len(digits)-d:]
}

// Percent returns a's share of total, truncated to two decimal places.
func (a Amount) Percent(total Amount) float64 {
	if total.IsZero() {
		return 0
	}
	var scaled uint256.Int
	scaled.Mul(&a.v, uint256.NewInt(10_000))
	scaled.Div(&scaled, &total.v)
	return float64(scaled.Uint64()) / 100
}

func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
