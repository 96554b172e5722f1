package query

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

const (
	EndpointEvents             = "events"
	EndpointAccounts           = "accounts"
	EndpointTransactions       = "transactions"
	EndpointBalance            = "balance"
	EndpointTransactionDetails = "transactionDetails"
)

// Key identifies one cached query by endpoint and parameters.
type Key struct {
	Endpoint string
	Params   []string
}

func NewKey(endpoint string, params ...string) Key {
	return Key{Endpoint: endpoint, Params: params}
}

// DigestSetKey builds the key for a set of digests: order and duplicates do
// not change the key.
func DigestSetKey(endpoint string, digests []string) Key {
	set := lo.Uniq(lo.Filter(digests, func(d string, _ int) bool { return d != "" }))
	sort.Strings(set)
	return Key{Endpoint: endpoint, Params: set}
}

// Empty reports a key that must not be fetched: no parameters, or a blank one.
func (k Key) Empty() bool {
	if k.Endpoint == "" || len(k.Params) == 0 {
		return true
	}
	return lo.Contains(k.Params, "")
}

func (k Key) String() string {
	return k.Endpoint + "/" + strings.Join(k.Params, ",")
}

func endpointPrefix(endpoint string) string {
	return endpoint + "/"
}
