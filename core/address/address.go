// Package address validates account addresses given as base58-check strings.
package address

import (
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// AccountVersion is the version byte of account addresses.
const AccountVersion byte = 1

// AccountPayloadLen is the decoded length of an account address without
// version byte and checksum.
const AccountPayloadLen = 32

// Validator reports whether an address string is acceptable.
type Validator interface {
	Valid(addr string) bool
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(string) bool

// Valid calls f(addr).
func (f ValidatorFunc) Valid(addr string) bool { return f(addr) }

// Base58Check validates base58 strings carrying a version byte, a fixed
// length payload and a double-SHA256 checksum.
type Base58Check struct {
	Version    byte
	PayloadLen int
}

// Default validates account addresses.
var Default Validator = Base58Check{Version: AccountVersion, PayloadLen: AccountPayloadLen}

// Valid decodes addr and verifies checksum, version and payload length.
func (b Base58Check) Valid(addr string) bool {
	if addr == "" || strings.TrimSpace(addr) != addr {
		return false
	}
	payload, version, err := base58.CheckDecode(addr)
	if err != nil {
		return false
	}
	return version == b.Version && len(payload) == b.PayloadLen
}
