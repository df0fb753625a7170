package amount

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Reasons carried by InvalidAmountError.
const (
	ReasonMalformed        = "malformed"
	ReasonTooManyDecimals  = "too many decimals"
	ReasonOutOfRange       = "out of range"
	ReasonNonPositive      = "non-positive"
	canonicalDecimalSymbol = "."
)

var maxMicro = new(big.Int).SetUint64(uint64(Max))

// InvalidAmountError describes why a raw amount string was rejected.
type InvalidAmountError struct {
	Raw    string
	Reason string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q: %s", e.Raw, e.Reason)
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

// Format holds the separators used by spreadsheet exports. A zero Thousands
// rune disables digit grouping.
type Format struct {
	Decimal   rune
	Thousands rune
}

// DefaultFormat uses '.' for decimals and ',' for thousands.
var DefaultFormat = Format{Decimal: '.', Thousands: ','}

// Validate checks that the separators can be told apart from digits and from
// each other.
func (f Format) Validate() error {
	if f.Decimal == 0 {
		return errors.New("decimal separator is required")
	}
	if f.Decimal == f.Thousands {
		return fmt.Errorf("decimal and thousands separators must differ (both %q)", f.Decimal)
	}
	for _, r := range []rune{f.Decimal, f.Thousands} {
		if r == 0 {
			continue
		}
		if unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' || r == '+' {
			return fmt.Errorf("separator %q is not allowed", r)
		}
	}
	return nil
}

// Parser converts amount strings written in a given Format.
type Parser struct {
	format    Format
	pattern   *regexp.Regexp
	thousands string
}

// NewParser validates f and prepares the matching pattern.
func NewParser(f Format) (*Parser, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	// Leading zeros are accepted and dropped by the decimal conversion.
	whole := `\d+`
	if f.Thousands != 0 {
		whole += `|\d{1,3}(?:` + regexp.QuoteMeta(string(f.Thousands)) + `\d{3})+`
	}
	expr := `^(` + whole + `)(?:` + regexp.QuoteMeta(string(f.Decimal)) + `(\d+))?$`
	p := &Parser{format: f, pattern: regexp.MustCompile(expr)}
	if f.Thousands != 0 {
		p.thousands = string(f.Thousands)
	}
	return p, nil
}

var defaultParser, _ = NewParser(DefaultFormat)

// Parse reads raw using DefaultFormat.
func Parse(raw string) (Amount, error) { return defaultParser.Parse(raw) }

// Format returns the separators the parser was built with.
func (p *Parser) Format() Format { return p.format }

// Parse converts raw into micro-units without rounding.
func (p *Parser) Parse(raw string) (Amount, error) {
	s := strings.TrimSpace(raw)
	m := p.pattern.FindStringSubmatch(s)
	if m == nil {
		return 0, &InvalidAmountError{Raw: raw, Reason: ReasonMalformed}
	}
	whole, frac := m[1], m[2]
	if len(frac) > Decimals {
		return 0, &InvalidAmountError{Raw: raw, Reason: ReasonTooManyDecimals}
	}
	if p.thousands != "" {
		whole = strings.ReplaceAll(whole, p.thousands, "")
	}
	canonical := whole
	if frac != "" {
		canonical += canonicalDecimalSymbol + frac
	}
	d, err := decimal.NewFromString(canonical)
	if err != nil {
		return 0, &InvalidAmountError{Raw: raw, Reason: ReasonMalformed}
	}
	micro := d.Shift(Decimals)
	if !micro.IsInteger() {
		return 0, &InvalidAmountError{Raw: raw, Reason: ReasonTooManyDecimals}
	}
	if micro.Sign() <= 0 {
		return 0, &InvalidAmountError{Raw: raw, Reason: ReasonNonPositive}
	}
	bi := micro.BigInt()
	if bi.Cmp(maxMicro) > 0 {
		return 0, &InvalidAmountError{Raw: raw, Reason: ReasonOutOfRange}
	}
	return Amount(bi.Uint64()), nil
}
