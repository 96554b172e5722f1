package indexer

import (
	"fmt"
	"strings"

	"isafeDashboard/internal/bcs"
)

// ParseAddresses normalizes a list of account or member addresses, skipping
// blanks.
func ParseAddresses(inputs []string) ([]bcs.Address, error) {
	addresses := make([]bcs.Address, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		addr, err := bcs.ParseAddress(input)
		if err != nil {
			return nil, fmt.Errorf("invalid address: %s", input)
		}
		addresses = append(addresses, addr)
	}
	return addresses, nil
}

// NormalizeAddress returns the canonical 0x + 64 hex form of input.
func NormalizeAddress(input string) (string, error) {
	addr, err := bcs.ParseAddress(input)
	if err != nil {
		return "", err
	}
	return addr.Hex(), nil
}
