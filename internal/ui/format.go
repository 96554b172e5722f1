package ui

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

const explorerBaseURL = "https://explorer.iota.org"

// ShortenAddress keeps the first 6 and last 4 characters: 0x1234...abcd.
func ShortenAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// CompactAddress keeps the first 8 and last 6 characters, as in the member
// tooltip.
func CompactAddress(address string) string {
	if len(address) <= 14 {
		return address
	}
	return address[:8] + "..." + address[len(address)-6:]
}

// FormatTimestamp renders epoch milliseconds as UTC minutes.
func FormatTimestamp(ms int64) string {
	return FormatTime(time.UnixMilli(ms))
}

func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}

func ExplorerAddressURL(network, address string) string {
	return fmt.Sprintf("%s/address/%s?network=%s", explorerBaseURL, address, network)
}

func ExplorerTxURL(network, digest string) string {
	return fmt.Sprintf("%s/txblock/%s?network=%s", explorerBaseURL, digest, network)
}

// HistoryLabel is the count line above the executed transaction list.
func HistoryLabel(n int) string {
	if n == 1 {
		return "1 transaction in history"
	}
	return fmt.Sprintf("%d transactions in history", n)
}

// FormatIOTA renders a nanos amount as IOTA with trailing zeros trimmed.
func FormatIOTA(nanos string) string {
	v, ok := new(big.Int).SetString(strings.TrimSpace(nanos), 10)
	if !ok {
		return nanos
	}
	sign := ""
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	whole, frac := new(big.Int).QuoRem(v, big.NewInt(1_000_000_000), new(big.Int))
	if frac.Sign() == 0 {
		return sign + whole.String() + " IOTA"
	}
	digits := frac.String()
	fracStr := strings.TrimRight(strings.Repeat("0", 9-len(digits))+digits, "0")
	return sign + whole.String() + "." + fracStr + " IOTA"
}
