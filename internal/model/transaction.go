package model

import "fmt"

// TransactionStatus is the indexer's aggregated proposal status.
type TransactionStatus string

const (
	StatusProposed TransactionStatus = "Proposed"
	StatusApproved TransactionStatus = "Approved"
	StatusExecuted TransactionStatus = "Executed"
	StatusRejected TransactionStatus = "Rejected"
)

// TransactionSummary is a read-only, service-aggregated view of one proposal.
type TransactionSummary struct {
	TransactionDigest  string            `json:"transactionDigest"`
	ProposerAddress    string            `json:"proposerAddress"`
	Status             TransactionStatus `json:"status"`
	CurrentApprovals   uint64            `json:"currentApprovals"`
	Threshold          uint64            `json:"threshold"`
	TotalAccountWeight uint64            `json:"totalAccountWeight"`
	ApprovedBy         []string          `json:"approvedBy"`
	CreatedAt          int64             `json:"createdAt"`
}

// ThresholdMet reports whether the approvals reach the threshold.
func (s TransactionSummary) ThresholdMet() bool {
	return s.CurrentApprovals >= s.Threshold
}

// Validate reports summaries that break the weight bounds of a well-formed
// account.
func (s TransactionSummary) Validate() error {
	if s.CurrentApprovals > s.TotalAccountWeight {
		return fmt.Errorf("transaction %s: approvals %d exceed total weight %d", s.TransactionDigest, s.CurrentApprovals, s.TotalAccountWeight)
	}
	if s.Threshold > s.TotalAccountWeight {
		return fmt.Errorf("transaction %s: threshold %d exceeds total weight %d", s.TransactionDigest, s.Threshold, s.TotalAccountWeight)
	}
	return nil
}

// TransactionDetails is the tx-service record for one digest.
type TransactionDetails struct {
	BCS         string `json:"bcs"`
	Sender      string `json:"sender"`
	AddedAt     int64  `json:"added_at"`
	Description string `json:"description"`
}

// Member is one weighted signer of an account.
type Member struct {
	Address string `json:"address"`
	Weight  uint64 `json:"weight"`
}

// Balance is the coin balance of an address as reported by the node.
type Balance struct {
	CoinType        string            `json:"coinType"`
	CoinObjectCount int               `json:"coinObjectCount"`
	TotalBalance    string            `json:"totalBalance"`
	LockedBalance   map[string]string `json:"lockedBalance,omitempty"`
}
