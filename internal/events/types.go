package events

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"isafeDashboard/internal/bcs"
)

// Payload is the decoded body of one event. The concrete type is fixed by Tag.
type Payload interface {
	Tag() Tag
	Encode() []byte
}

// Digest is a raw transaction digest carried inside event payloads.
type Digest []byte

func (d Digest) String() string {
	return hexutil.Encode(d)
}

func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Digest) UnmarshalText(text []byte) error {
	b, err := hexutil.Decode(string(text))
	if err != nil {
		return err
	}
	*d = b
	return nil
}

type AccountCreated struct {
	Account   bcs.Address   `json:"account"`
	Creator   bcs.Address   `json:"creator"`
	Members   []bcs.Address `json:"members"`
	Weights   []uint64      `json:"weights"`
	Threshold uint64        `json:"threshold"`
	Guardian  *bcs.Address  `json:"guardian"`
}

// AccountRotated records a new authenticator function for the account.
type AccountRotated struct {
	Account      bcs.Address `json:"account"`
	Package      bcs.Address `json:"package"`
	ModuleName   string      `json:"module_name"`
	FunctionName string      `json:"function_name"`
}

type MemberAdded struct {
	Account bcs.Address `json:"account"`
	Member  bcs.Address `json:"member"`
	Weight  uint64      `json:"weight"`
}

type MemberRemoved struct {
	Account bcs.Address `json:"account"`
	Member  bcs.Address `json:"member"`
}

type MemberWeightUpdated struct {
	Account   bcs.Address `json:"account"`
	Member    bcs.Address `json:"member"`
	OldWeight uint64      `json:"old_weight"`
	NewWeight uint64      `json:"new_weight"`
}

type ThresholdChanged struct {
	Account      bcs.Address `json:"account"`
	OldThreshold uint64      `json:"old_threshold"`
	NewThreshold uint64      `json:"new_threshold"`
}

// GuardianChanged uses nil for an unset guardian on either side.
type GuardianChanged struct {
	Account     bcs.Address  `json:"account"`
	OldGuardian *bcs.Address `json:"old_guardian"`
	NewGuardian *bcs.Address `json:"new_guardian"`
}

type TransactionProposed struct {
	Account           bcs.Address `json:"account"`
	TransactionDigest Digest      `json:"transaction_digest"`
	Proposer          bcs.Address `json:"proposer"`
}

type TransactionApproved struct {
	Account             bcs.Address `json:"account"`
	TransactionDigest   Digest      `json:"transaction_digest"`
	Approver            bcs.Address `json:"approver"`
	ApproverWeight      uint64      `json:"approver_weight"`
	TotalApprovedWeight uint64      `json:"total_approved_weight"`
}

type TransactionApprovalThresholdReached struct {
	Account             bcs.Address `json:"account"`
	TransactionDigest   Digest      `json:"transaction_digest"`
	TotalApprovedWeight uint64      `json:"total_approved_weight"`
	Threshold           uint64      `json:"threshold"`
}

// TransactionApprovalThresholdLost fires when a weight or threshold change
// drops an approved transaction below the threshold again.
type TransactionApprovalThresholdLost struct {
	Account             bcs.Address `json:"account"`
	TransactionDigest   Digest      `json:"transaction_digest"`
	TotalApprovedWeight uint64      `json:"total_approved_weight"`
	Threshold           uint64      `json:"threshold"`
}

type TransactionExecuted struct {
	Account           bcs.Address `json:"account"`
	TransactionDigest Digest      `json:"transaction_digest"`
	Executor          bcs.Address `json:"executor"`
}

type TransactionRemoved struct {
	Account           bcs.Address `json:"account"`
	TransactionDigest Digest      `json:"transaction_digest"`
}

func (AccountCreated) Tag() Tag { return TagAccountCreated }
func (AccountRotated) Tag() Tag { return TagAccountRotated }
func (MemberAdded) Tag() Tag { return TagMemberAdded }
func (MemberRemoved) Tag() Tag { return TagMemberRemoved }
func (MemberWeightUpdated) Tag() Tag { return TagMemberWeightUpdated }
func (ThresholdChanged) Tag() Tag { return TagThresholdChanged }
func (GuardianChanged) Tag() Tag { return TagGuardianChanged }
func (TransactionProposed) Tag() Tag { return TagTransactionProposed }
func (TransactionApproved) Tag() Tag { return TagTransactionApproved }
func (TransactionApprovalThresholdReached) Tag() Tag { return TagTransactionApprovalThresholdReached }
func (TransactionApprovalThresholdLost) Tag() Tag { return TagTransactionApprovalThresholdLost }
func (TransactionExecuted) Tag() Tag { return TagTransactionExecuted }
func (TransactionRemoved) Tag() Tag { return TagTransactionRemoved }

// DigestOf returns the transaction digest of transaction-scoped payloads.
func DigestOf(p Payload) (Digest, bool) {
	switch v := p.(type) {
	case TransactionProposed:
		return v.TransactionDigest, true
	case TransactionApproved:
		return v.TransactionDigest, true
	case TransactionApprovalThresholdReached:
		return v.TransactionDigest, true
	case TransactionApprovalThresholdLost:
		return v.TransactionDigest, true
	case TransactionExecuted:
		return v.TransactionDigest, true
	case TransactionRemoved:
		return v.TransactionDigest, true
	default:
		return nil, false
	}
}
