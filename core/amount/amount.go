package amount

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

// MicroPerGTU is the number of micro-units in one GTU.
const MicroPerGTU uint64 = 1_000_000

// Decimals is the number of fractional digits an amount string may carry.
const Decimals = 6

// Max is the largest representable amount.
const Max Amount = math.MaxUint64

var (
	// ErrInvalidAmount is returned when a string cannot be turned into an Amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidSplit is returned when an amount cannot be split into positive parts.
	ErrInvalidSplit = errors.New("invalid split")
	// ErrOverflow is returned when an addition exceeds Max.
	ErrOverflow = errors.New("amount overflow")
)

// Amount is a strictly positive quantity of micro-units.
type Amount uint64

// FromMicro returns the amount for a raw micro-unit count.
func FromMicro(micro uint64) (Amount, error) {
	if micro == 0 {
		return 0, &InvalidAmountError{Raw: "0", Reason: ReasonNonPositive}
	}
	return Amount(micro), nil
}

// Micro returns the raw micro-unit count.
func (a Amount) Micro() uint64 { return uint64(a) }

// MicroString renders the amount as an integer count of micro-units.
func (a Amount) MicroString() string { return strconv.FormatUint(uint64(a), 10) }

// Decimal returns the amount expressed in GTU.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(a)), -Decimals)
}

// String renders the amount in GTU with trailing fractional zeros removed.
func (a Amount) String() string {
	whole := uint64(a) / MicroPerGTU
	frac := uint64(a) % MicroPerGTU
	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}
	s := fmt.Sprintf("%d.%06d", whole, frac)
	for s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	return s
}

// Add returns a+b or ErrOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	if b > Max-a {
		return 0, fmt.Errorf("%w: %s + %s", ErrOverflow, a.MicroString(), b.MicroString())
	}
	return a + b, nil
}

// Sum adds all amounts. An empty input is an error because an Amount is never zero.
func Sum(amounts ...Amount) (Amount, error) {
	if len(amounts) == 0 {
		return 0, fmt.Errorf("%w: empty sum", ErrInvalidAmount)
	}
	total := amounts[0]
	for _, a := range amounts[1:] {
		var err error
		if total, err = total.Add(a); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// Split divides a into n parts. The first n-1 parts are floor(a/n) and the
// last part absorbs the remainder, so it is never smaller than the others.
func (a Amount) Split(n int) ([]Amount, error) {
	if n <= 0 {
		return nil, &InvalidSplitError{Amount: a, Parts: n}
	}
	if n == 1 {
		return []Amount{a}, nil
	}
	step := uint64(a) / uint64(n)
	if step == 0 {
		return nil, &InvalidSplitError{Amount: a, Parts: n}
	}
	parts := make([]Amount, n)
	for i := 0; i < n-1; i++ {
		parts[i] = Amount(step)
	}
	parts[n-1] = Amount(uint64(a) - uint64(n-1)*step)
	return parts, nil
}

// InvalidSplitError reports an amount too small (or a part count too low)
// to produce positive parts.
type InvalidSplitError struct {
	Amount Amount
	Parts  int
}

func (e *InvalidSplitError) Error() string {
	if e.Parts <= 0 {
		return fmt.Sprintf("cannot split %s GTU into %d parts", e.Amount, e.Parts)
	}
	return fmt.Sprintf("cannot split %s GTU into %d positive parts", e.Amount, e.Parts)
}

func (e *InvalidSplitError) Unwrap() error { return ErrInvalidSplit }
