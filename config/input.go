package config

import (
	"fmt"
	"unicode/utf8"

	"github.com/kilianp07/schedulegen/core/amount"
)

// InputConfig describes the spreadsheet export.
type InputConfig struct {
	Delimiter          string `json:"delimiter"`
	DecimalSeparator   string `json:"decimal_separator"`
	ThousandsSeparator string `json:"thousands_separator"`
	SkipHeader         bool   `json:"skip_header"`
}

// Validate checks that every separator is a single character.
func (c InputConfig) Validate() error {
	if _, err := single("delimiter", c.Delimiter, false); err != nil {
		return err
	}
	if _, err := c.Format(); err != nil {
		return err
	}
	return nil
}

// Comma returns the field delimiter.
func (c InputConfig) Comma() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// Format returns the amount separators. An empty thousands separator
// disables digit grouping.
func (c InputConfig) Format() (amount.Format, error) {
	dec, err := single("decimal_separator", c.DecimalSeparator, false)
	if err != nil {
		return amount.Format{}, err
	}
	th, err := single("thousands_separator", c.ThousandsSeparator, true)
	if err != nil {
		return amount.Format{}, err
	}
	f := amount.Format{Decimal: dec, Thousands: th}
	if err := f.Validate(); err != nil {
		return amount.Format{}, err
	}
	if f.Decimal == c.Comma() {
		return amount.Format{}, fmt.Errorf("decimal separator %q collides with delimiter", f.Decimal)
	}
	return f, nil
}

func single(name, s string, optional bool) (rune, error) {
	if s == "" && optional {
		return 0, nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%s must be a single character, got %q", name, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
