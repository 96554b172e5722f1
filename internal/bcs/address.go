package bcs

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AddressLength is the byte length of an account address or object ID.
const AddressLength = 32

// Address is a 32-byte account address or object ID.
type Address [AddressLength]byte

// Hex returns the 0x-prefixed, zero-padded lowercase form.
func (a Address) Hex() string {
	return hexutil.Encode(a[:])
}

func (a Address) String() string {
	return a.Hex()
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAddress accepts 0x-prefixed hex of up to 64 digits; short forms such
// as 0x2 are left-padded with zeros.
func ParseAddress(input string) (Address, error) {
	var addr Address
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "0x") && !strings.HasPrefix(input, "0X") {
		return addr, fmt.Errorf("invalid address %q: missing 0x prefix", input)
	}
	digits := input[2:]
	if len(digits) == 0 || len(digits) > AddressLength*2 {
		return addr, fmt.Errorf("invalid address %q: expected 1-%d hex digits", input, AddressLength*2)
	}
	padded := strings.Repeat("0", AddressLength*2-len(digits)) + digits
	data, err := hexutil.Decode("0x" + padded)
	if err != nil {
		return addr, fmt.Errorf("invalid address %q: %w", input, err)
	}
	copy(addr[:], data)
	return addr, nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(input string) Address {
	addr, err := ParseAddress(input)
	if err != nil {
		panic(err)
	}
	return addr
}
