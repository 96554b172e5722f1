package account

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"isafeDashboard/internal/bcs"
	"isafeDashboard/internal/events"
	"isafeDashboard/internal/model"
)

var (
	acct  = bcs.MustParseAddress("0xacc0")
	alice = bcs.MustParseAddress("0xa11ce")
	bob   = bcs.MustParseAddress("0xb0b")
	carol = bcs.MustParseAddress("0xca401")
	dave  = bcs.MustParseAddress("0xda5e")
	eve   = bcs.MustParseAddress("0xe5e")
)

func event(tx string, payload events.Payload) model.Event {
	return model.Event{
		AccountAddress: acct.Hex(),
		FiredInTx:      tx,
		EventType:      payload.Tag(),
		Data:           payload,
		Timestamp:      time.Unix(1700000000, 0).UTC(),
	}
}

func demoMembers() []model.Member {
	return []model.Member{
		{Address: "Alice", Weight: 3},
		{Address: "Bob", Weight: 2},
		{Address: "Carol", Weight: 2},
		{Address: "Dave", Weight: 1},
		{Address: "Eve", Weight: 1},
	}
}

func TestWeightAggregation(t *testing.T) {
	members := demoMembers()
	if got := TotalWeight(members); got != 9 {
		t.Fatalf("expected total weight 9, got %d", got)
	}
	if got := PrefixSums(members); !reflect.DeepEqual(got, []uint64{3, 5, 7, 8, 9}) {
		t.Fatalf("unexpected prefix sums: %v", got)
	}
	if got := PrefixSums(nil); len(got) != 0 {
		t.Fatalf("expected no prefix sums, got %v", got)
	}
}

func TestReplayMembership(t *testing.T) {
	digest := events.Digest{0xaa, 0xbb}
	evs := []model.Event{
		event("tx1", events.AccountCreated{
			Account:   acct,
			Creator:   alice,
			Members:   []bcs.Address{alice, bob, carol},
			Weights:   []uint64{3, 2, 2},
			Threshold: 5,
		}),
		event("tx2", events.MemberAdded{Account: acct, Member: dave, Weight: 1}),
		event("tx3", events.MemberAdded{Account: acct, Member: eve, Weight: 1}),
		event("tx4", events.MemberWeightUpdated{Account: acct, Member: carol, OldWeight: 2, NewWeight: 4}),
		event("tx5", events.MemberRemoved{Account: acct, Member: bob}),
		event("tx6", events.ThresholdChanged{Account: acct, OldThreshold: 5, NewThreshold: 6}),
		event("tx7", events.GuardianChanged{Account: acct, NewGuardian: &dave}),
		event("tx8", events.AccountRotated{Account: acct, Package: eve, ModuleName: "auth", FunctionName: "check"}),
		event("tx9", events.TransactionProposed{Account: acct, TransactionDigest: digest, Proposer: alice}),
		event("tx10", events.TransactionApproved{Account: acct, TransactionDigest: digest, Approver: alice, ApproverWeight: 3, TotalApprovedWeight: 3}),
		event("tx11", events.TransactionApproved{Account: acct, TransactionDigest: digest, Approver: carol, ApproverWeight: 4, TotalApprovedWeight: 7}),
		event("tx11", events.TransactionApprovalThresholdReached{Account: acct, TransactionDigest: digest, TotalApprovedWeight: 7, Threshold: 6}),
		event("tx12", events.TransactionExecuted{Account: acct, TransactionDigest: digest, Executor: alice}),
	}

	st, err := Replay(evs)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	wantMembers := []model.Member{
		{Address: alice.Hex(), Weight: 3},
		{Address: carol.Hex(), Weight: 4},
		{Address: dave.Hex(), Weight: 1},
		{Address: eve.Hex(), Weight: 1},
	}
	if !reflect.DeepEqual(st.Members, wantMembers) {
		t.Fatalf("unexpected members: %+v", st.Members)
	}
	if st.Threshold != 6 || st.TotalWeight() != 9 || !st.Operable() {
		t.Fatalf("unexpected threshold state: threshold=%d total=%d", st.Threshold, st.TotalWeight())
	}
	if st.Guardian != dave.Hex() {
		t.Fatalf("unexpected guardian: %s", st.Guardian)
	}
	if st.Authenticator == nil || st.Authenticator.FunctionName != "check" {
		t.Fatalf("unexpected authenticator: %+v", st.Authenticator)
	}

	p, ok := st.Proposal(digest.String())
	if !ok {
		t.Fatalf("missing proposal %s", digest)
	}
	if p.Proposer != alice.Hex() || !p.ThresholdMet || !p.Executed || p.ApprovedWeight != 7 {
		t.Fatalf("unexpected proposal: %+v", p)
	}
	if !reflect.DeepEqual(p.Approvers, []string{alice.Hex(), carol.Hex()}) {
		t.Fatalf("unexpected approvers: %v", p.Approvers)
	}
	if p.LastEventTx != "tx12" {
		t.Fatalf("unexpected last tx: %s", p.LastEventTx)
	}
}

func TestReplayThresholdLost(t *testing.T) {
	digest := events.Digest{0x01}
	st, err := Replay([]model.Event{
		event("tx1", events.AccountCreated{Account: acct, Creator: alice, Members: []bcs.Address{alice}, Weights: []uint64{2}, Threshold: 2}),
		event("tx2", events.TransactionApprovalThresholdReached{Account: acct, TransactionDigest: digest, TotalApprovedWeight: 2, Threshold: 2}),
		event("tx3", events.TransactionApprovalThresholdLost{Account: acct, TransactionDigest: digest, TotalApprovedWeight: 2, Threshold: 3}),
		event("tx4", events.TransactionRemoved{Account: acct, TransactionDigest: digest}),
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	p, _ := st.Proposal(digest.String())
	if p.ThresholdMet || !p.Removed {
		t.Fatalf("unexpected proposal: %+v", p)
	}
}

func TestReplayUnknownMember(t *testing.T) {
	created := event("tx1", events.AccountCreated{Account: acct, Creator: alice, Members: []bcs.Address{alice}, Weights: []uint64{1}, Threshold: 1})
	cases := []struct {
		name string
		next events.Payload
	}{
		{"remove", events.MemberRemoved{Account: acct, Member: bob}},
		{"weight", events.MemberWeightUpdated{Account: acct, Member: bob, OldWeight: 1, NewWeight: 2}},
		{"add twice", events.MemberAdded{Account: acct, Member: alice, Weight: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Replay([]model.Event{created, event("tx2", tc.next)})
			if err == nil {
				t.Fatalf("expected replay error")
			}
			if !strings.Contains(err.Error(), "event 1") {
				t.Fatalf("expected event index in error, got %v", err)
			}
		})
	}
}

func TestReplayMismatchedWeights(t *testing.T) {
	raw := `{"account":"` + acct.Hex() + `","creator":"` + alice.Hex() + `","members":["` + alice.Hex() + `","` + bob.Hex() + `"],"weights":[1],"threshold":1,"guardian":null}`
	payload, err := events.UnmarshalPayload(string(events.TagAccountCreated), json.RawMessage(raw))
	if err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	_, err = Replay([]model.Event{event("tx1", payload)})
	if err == nil || !strings.Contains(err.Error(), "2 members but 1 weights") {
		t.Fatalf("expected length mismatch error, got %v", err)
	}
}

func TestReplayEmpty(t *testing.T) {
	st, err := Replay(nil)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if st.Members == nil || len(st.Members) != 0 || st.Proposals == nil {
		t.Fatalf("expected empty non-nil slices: %+v", st)
	}
	if !st.Operable() {
		t.Fatalf("zero threshold over zero weight is operable")
	}
}

func TestNotOperable(t *testing.T) {
	st := State{Members: []model.Member{{Address: "a", Weight: 1}}, Threshold: 2}
	if st.Operable() {
		t.Fatalf("threshold above total weight must not be operable")
	}
}

func TestApplyResumesReplay(t *testing.T) {
	digest := events.Digest{0x01}
	evs := []model.Event{
		event("tx1", events.AccountCreated{
			Account:   acct,
			Creator:   alice,
			Members:   []bcs.Address{alice, bob},
			Weights:   []uint64{3, 2},
			Threshold: 4,
		}),
		event("tx2", events.TransactionProposed{Account: acct, TransactionDigest: digest, Proposer: alice}),
		event("tx3", events.TransactionApproved{Account: acct, TransactionDigest: digest, Approver: alice, ApproverWeight: 3, TotalApprovedWeight: 3}),
		event("tx4", events.MemberRemoved{Account: acct, Member: bob}),
		event("tx5", events.TransactionApproved{Account: acct, TransactionDigest: digest, Approver: bob, ApproverWeight: 2, TotalApprovedWeight: 5}),
	}

	full, err := Replay(evs)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	half, err := Replay(evs[:3])
	if err != nil {
		t.Fatalf("replay first half: %v", err)
	}
	before, err := Replay(evs[:3])
	if err != nil {
		t.Fatalf("replay first half: %v", err)
	}
	resumed, err := Apply(half, evs[3:])
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if !reflect.DeepEqual(resumed, full) {
		t.Fatalf("resumed state differs:\n got %+v\nwant %+v", resumed, full)
	}
	if !reflect.DeepEqual(half, before) {
		t.Fatalf("apply modified its input state: %+v", half)
	}
}
