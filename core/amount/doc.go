// Package amount implements the fixed-point token amount used by release
// schedules. Amounts are counted in micro-units (1 GTU = 1,000,000 micro-units)
// and stored as uint64, so every release is a strictly positive integer.
//
// Parsing accepts locale-formatted decimal strings with a configurable
// decimal and thousands separator and never rounds: more than six fractional
// digits is an error. Split divides an amount into nearly equal parts, with the
// integer-division remainder carried by the last part.
package amount
