package account

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"isafeDashboard/internal/bcs"
	"isafeDashboard/internal/events"
	"isafeDashboard/internal/model"
)

// Authenticator is the Move function that authorizes the account.
type Authenticator struct {
	Package      string `json:"package"`
	ModuleName   string `json:"moduleName"`
	FunctionName string `json:"functionName"`
}

// Proposal is the replayed lifecycle of one proposed transaction.
type Proposal struct {
	Digest         string   `json:"digest"`
	Proposer       string   `json:"proposer"`
	Approvers      []string `json:"approvers"`
	ApprovedWeight uint64   `json:"approvedWeight"`
	ThresholdMet   bool     `json:"thresholdMet"`
	Executed       bool     `json:"executed"`
	Executor       string   `json:"executor,omitempty"`
	Removed        bool     `json:"removed"`
	LastEventTx    string   `json:"lastEventTx"`
}

// State is an account folded from its event history.
type State struct {
	Account       string         `json:"account"`
	Creator       string         `json:"creator"`
	Members       []model.Member `json:"members"`
	Threshold     uint64         `json:"threshold"`
	Guardian      string         `json:"guardian,omitempty"`
	Authenticator *Authenticator `json:"authenticator,omitempty"`
	Proposals     []Proposal     `json:"proposals"`
}

// TotalWeight is the sum of all member weights.
func TotalWeight(members []model.Member) uint64 {
	return lo.SumBy(members, func(m model.Member) uint64 { return m.Weight })
}

// PrefixSums returns the running weight total after each member, in list order.
func PrefixSums(members []model.Member) []uint64 {
	out := make([]uint64, len(members))
	var sum uint64
	for i, m := range members {
		sum += m.Weight
		out[i] = sum
	}
	return out
}

func (s State) TotalWeight() uint64 {
	return TotalWeight(s.Members)
}

// Operable reports whether the members can reach the threshold at all.
func (s State) Operable() bool {
	return s.Threshold <= s.TotalWeight()
}

// Proposal returns the replayed proposal for digest.
func (s State) Proposal(digest string) (Proposal, bool) {
	return lo.Find(s.Proposals, func(p Proposal) bool { return p.Digest == digest })
}

// Replay folds events, oldest first, into the current account state. Events
// that name a member the account does not have fail the replay.
func Replay(evs []model.Event) (State, error) {
	return Apply(State{}, evs)
}

// Apply folds evs onto a state from an earlier Replay or Apply. The input
// state is not modified.
func Apply(prev State, evs []model.Event) (State, error) {
	st := prev.clone()
	proposals := make(map[string]int, len(st.Proposals))
	for i, p := range st.Proposals {
		proposals[p.Digest] = i
	}

	proposal := func(d events.Digest, tx string) *Proposal {
		key := d.String()
		idx, ok := proposals[key]
		if !ok {
			idx = len(st.Proposals)
			proposals[key] = idx
			st.Proposals = append(st.Proposals, Proposal{Digest: key, Approvers: []string{}})
		}
		p := &st.Proposals[idx]
		p.LastEventTx = tx
		return p
	}

	for i, ev := range evs {
		switch data := ev.Data.(type) {
		case events.AccountCreated:
			if len(data.Members) != len(data.Weights) {
				return State{}, fmt.Errorf("event %d: %d members but %d weights", i, len(data.Members), len(data.Weights))
			}
			st.Account = data.Account.Hex()
			st.Creator = data.Creator.Hex()
			st.Threshold = data.Threshold
			st.Guardian = optionalHex(data.Guardian)
			st.Members = make([]model.Member, len(data.Members))
			for j, member := range data.Members {
				st.Members[j] = model.Member{Address: member.Hex(), Weight: data.Weights[j]}
			}
		case events.AccountRotated:
			st.Authenticator = &Authenticator{
				Package:      data.Package.Hex(),
				ModuleName:   data.ModuleName,
				FunctionName: data.FunctionName,
			}
		case events.MemberAdded:
			if _, ok := st.memberIndex(data.Member); ok {
				return State{}, fmt.Errorf("event %d: member %s added twice", i, data.Member)
			}
			st.Members = append(st.Members, model.Member{Address: data.Member.Hex(), Weight: data.Weight})
		case events.MemberRemoved:
			idx, ok := st.memberIndex(data.Member)
			if !ok {
				return State{}, fmt.Errorf("event %d: removed unknown member %s", i, data.Member)
			}
			st.Members = append(st.Members[:idx], st.Members[idx+1:]...)
		case events.MemberWeightUpdated:
			idx, ok := st.memberIndex(data.Member)
			if !ok {
				return State{}, fmt.Errorf("event %d: weight update for unknown member %s", i, data.Member)
			}
			st.Members[idx].Weight = data.NewWeight
		case events.ThresholdChanged:
			st.Threshold = data.NewThreshold
		case events.GuardianChanged:
			st.Guardian = optionalHex(data.NewGuardian)
		case events.TransactionProposed:
			p := proposal(data.TransactionDigest, ev.FiredInTx)
			p.Proposer = data.Proposer.Hex()
		case events.TransactionApproved:
			p := proposal(data.TransactionDigest, ev.FiredInTx)
			p.Approvers = append(p.Approvers, data.Approver.Hex())
			p.ApprovedWeight = data.TotalApprovedWeight
		case events.TransactionApprovalThresholdReached:
			p := proposal(data.TransactionDigest, ev.FiredInTx)
			p.ApprovedWeight = data.TotalApprovedWeight
			p.ThresholdMet = true
		case events.TransactionApprovalThresholdLost:
			p := proposal(data.TransactionDigest, ev.FiredInTx)
			p.ApprovedWeight = data.TotalApprovedWeight
			p.ThresholdMet = false
		case events.TransactionExecuted:
			p := proposal(data.TransactionDigest, ev.FiredInTx)
			p.Executed = true
			p.Executor = data.Executor.Hex()
		case events.TransactionRemoved:
			p := proposal(data.TransactionDigest, ev.FiredInTx)
			p.Removed = true
		default:
			return State{}, fmt.Errorf("event %d: unexpected payload %T", i, ev.Data)
		}
	}

	if st.Members == nil {
		st.Members = []model.Member{}
	}
	if st.Proposals == nil {
		st.Proposals = []Proposal{}
	}
	return st, nil
}

func (s State) clone() State {
	out := s
	out.Members = slices.Clone(s.Members)
	out.Proposals = make([]Proposal, len(s.Proposals))
	for i, p := range s.Proposals {
		p.Approvers = slices.Clone(p.Approvers)
		out.Proposals[i] = p
	}
	if s.Authenticator != nil {
		auth := *s.Authenticator
		out.Authenticator = &auth
	}
	return out
}

func (s State) memberIndex(addr bcs.Address) (int, bool) {
	hex := addr.Hex()
	_, idx, ok := lo.FindIndexOf(s.Members, func(m model.Member) bool { return m.Address == hex })
	return idx, ok
}

func optionalHex(addr *bcs.Address) string {
	if addr == nil {
		return ""
	}
	return addr.Hex()
}
