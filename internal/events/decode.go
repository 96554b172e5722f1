package events

import (
	"errors"
	"fmt"
	"sort"

	"isafeDashboard/internal/bcs"
)

var (
	// ErrUnknownEventType marks a tag outside AllTags.
	ErrUnknownEventType = errors.New("unknown event type")
	ErrTrailingBytes    = bcs.ErrTrailingBytes
)

type decodeFunc func([]byte) (Payload, error)

var decoders = map[Tag]decodeFunc{
	TagAccountCreated:                      wrap(ParseAccountCreated),
	TagAccountRotated:                      wrap(ParseAccountRotated),
	TagMemberAdded:                         wrap(ParseMemberAdded),
	TagMemberRemoved:                       wrap(ParseMemberRemoved),
	TagMemberWeightUpdated:                 wrap(ParseMemberWeightUpdated),
	TagThresholdChanged:                    wrap(ParseThresholdChanged),
	TagGuardianChanged:                     wrap(ParseGuardianChanged),
	TagTransactionProposed:                 wrap(ParseTransactionProposed),
	TagTransactionApproved:                 wrap(ParseTransactionApproved),
	TagTransactionApprovalThresholdReached: wrap(ParseTransactionApprovalThresholdReached),
	TagTransactionApprovalThresholdLost:    wrap(ParseTransactionApprovalThresholdLost),
	TagTransactionExecuted:                 wrap(ParseTransactionExecuted),
	TagTransactionRemoved:                  wrap(ParseTransactionRemoved),
}

func init() {
	if err := checkRegistry(decoders, AllTags); err != nil {
		panic(err)
	}
}

func wrap[T Payload](parse func([]byte) (T, error)) decodeFunc {
	return func(b []byte) (Payload, error) {
		v, err := parse(b)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// checkRegistry fails unless registry holds exactly one decoder per tag.
func checkRegistry(registry map[Tag]decodeFunc, tags []Tag) error {
	want := make(map[Tag]struct{}, len(tags))
	var missing []string
	for _, tag := range tags {
		want[tag] = struct{}{}
		if registry[tag] == nil {
			missing = append(missing, string(tag))
		}
	}
	var extra []string
	for tag := range registry {
		if _, ok := want[tag]; !ok {
			extra = append(extra, string(tag))
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	sort.Strings(missing)
	sort.Strings(extra)
	return fmt.Errorf("event registry mismatch: missing=%v extra=%v", missing, extra)
}

// Decode parses b with the decoder registered for tag.
func Decode(tag string, b []byte) (Payload, error) {
	decode, ok := decoders[Tag(tag)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, tag)
	}
	return decode(b)
}

// fields reads one payload and keeps the first error it hits.
type fields struct {
	tag Tag
	r   *bcs.Reader
	err error
}

func newFields(tag Tag, b []byte) *fields {
	return &fields{tag: tag, r: bcs.NewReader(b)}
}

func (f *fields) fail(name string, err error) {
	if f.err == nil {
		f.err = fmt.Errorf("decode %s.%s: %w", f.tag, name, err)
	}
}

func (f *fields) address(name string) bcs.Address {
	if f.err != nil {
		return bcs.Address{}
	}
	v, err := f.r.Address()
	if err != nil {
		f.fail(name, err)
	}
	return v
}

func (f *fields) optionAddress(name string) *bcs.Address {
	if f.err != nil {
		return nil
	}
	v, err := f.r.OptionAddress()
	if err != nil {
		f.fail(name, err)
	}
	return v
}

func (f *fields) addresses(name string) []bcs.Address {
	if f.err != nil {
		return nil
	}
	v, err := f.r.AddressVector()
	if err != nil {
		f.fail(name, err)
	}
	return v
}

func (f *fields) u64(name string) uint64 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.U64()
	if err != nil {
		f.fail(name, err)
	}
	return v
}

func (f *fields) u64s(name string) []uint64 {
	if f.err != nil {
		return nil
	}
	v, err := f.r.U64Vector()
	if err != nil {
		f.fail(name, err)
	}
	return v
}

func (f *fields) digest(name string) Digest {
	if f.err != nil {
		return nil
	}
	v, err := f.r.ByteVector()
	if err != nil {
		f.fail(name, err)
	}
	return v
}

func (f *fields) str(name string) string {
	if f.err != nil {
		return ""
	}
	v, err := f.r.Str()
	if err != nil {
		f.fail(name, err)
	}
	return v
}

func (f *fields) done() error {
	if f.err != nil {
		return f.err
	}
	if err := f.r.Finish(); err != nil {
		return fmt.Errorf("decode %s: %w", f.tag, err)
	}
	return nil
}

func ParseAccountCreated(b []byte) (AccountCreated, error) {
	f := newFields(TagAccountCreated, b)
	ev := AccountCreated{
		Account:   f.address("account"),
		Creator:   f.address("creator"),
		Members:   f.addresses("members"),
		Weights:   f.u64s("weights"),
		Threshold: f.u64("threshold"),
		Guardian:  f.optionAddress("guardian"),
	}
	if err := f.done(); err != nil {
		return AccountCreated{}, err
	}
	if len(ev.Members) != len(ev.Weights) {
		return AccountCreated{}, fmt.Errorf("decode %s: %d members but %d weights", TagAccountCreated, len(ev.Members), len(ev.Weights))
	}
	return ev, nil
}

func ParseAccountRotated(b []byte) (AccountRotated, error) {
	f := newFields(TagAccountRotated, b)
	ev := AccountRotated{
		Account:      f.address("account"),
		Package:      f.address("package"),
		ModuleName:   f.str("module_name"),
		FunctionName: f.str("function_name"),
	}
	if err := f.done(); err != nil {
		return AccountRotated{}, err
	}
	return ev, nil
}

func ParseMemberAdded(b []byte) (MemberAdded, error) {
	f := newFields(TagMemberAdded, b)
	ev := MemberAdded{
		Account: f.address("account"),
		Member:  f.address("member"),
		Weight:  f.u64("weight"),
	}
	if err := f.done(); err != nil {
		return MemberAdded{}, err
	}
	return ev, nil
}

func ParseMemberRemoved(b []byte) (MemberRemoved, error) {
	f := newFields(TagMemberRemoved, b)
	ev := MemberRemoved{
		Account: f.address("account"),
		Member:  f.address("member"),
	}
	if err := f.done(); err != nil {
		return MemberRemoved{}, err
	}
	return ev, nil
}

func ParseMemberWeightUpdated(b []byte) (MemberWeightUpdated, error) {
	f := newFields(TagMemberWeightUpdated, b)
	ev := MemberWeightUpdated{
		Account:   f.address("account"),
		Member:    f.address("member"),
		OldWeight: f.u64("old_weight"),
		NewWeight: f.u64("new_weight"),
	}
	if err := f.done(); err != nil {
		return MemberWeightUpdated{}, err
	}
	return ev, nil
}

func ParseThresholdChanged(b []byte) (ThresholdChanged, error) {
	f := newFields(TagThresholdChanged, b)
	ev := ThresholdChanged{
		Account:      f.address("account"),
		OldThreshold: f.u64("old_threshold"),
		NewThreshold: f.u64("new_threshold"),
	}
	if err := f.done(); err != nil {
		return ThresholdChanged{}, err
	}
	return ev, nil
}

func ParseGuardianChanged(b []byte) (GuardianChanged, error) {
	f := newFields(TagGuardianChanged, b)
	ev := GuardianChanged{
		Account:     f.address("account"),
		OldGuardian: f.optionAddress("old_guardian"),
		NewGuardian: f.optionAddress("new_guardian"),
	}
	if err := f.done(); err != nil {
		return GuardianChanged{}, err
	}
	return ev, nil
}

func ParseTransactionProposed(b []byte) (TransactionProposed, error) {
	f := newFields(TagTransactionProposed, b)
	ev := TransactionProposed{
		Account:           f.address("account"),
		TransactionDigest: f.digest("transaction_digest"),
		Proposer:          f.address("proposer"),
	}
	if err := f.done(); err != nil {
		return TransactionProposed{}, err
	}
	return ev, nil
}

func ParseTransactionApproved(b []byte) (TransactionApproved, error) {
	f := newFields(TagTransactionApproved, b)
	ev := TransactionApproved{
		Account:             f.address("account"),
		TransactionDigest:   f.digest("transaction_digest"),
		Approver:            f.address("approver"),
		ApproverWeight:      f.u64("approver_weight"),
		TotalApprovedWeight: f.u64("total_approved_weight"),
	}
	if err := f.done(); err != nil {
		return TransactionApproved{}, err
	}
	return ev, nil
}

func ParseTransactionApprovalThresholdReached(b []byte) (TransactionApprovalThresholdReached, error) {
	f := newFields(TagTransactionApprovalThresholdReached, b)
	ev := TransactionApprovalThresholdReached{
		Account:             f.address("account"),
		TransactionDigest:   f.digest("transaction_digest"),
		TotalApprovedWeight: f.u64("total_approved_weight"),
		Threshold:           f.u64("threshold"),
	}
	if err := f.done(); err != nil {
		return TransactionApprovalThresholdReached{}, err
	}
	return ev, nil
}

func ParseTransactionApprovalThresholdLost(b []byte) (TransactionApprovalThresholdLost, error) {
	f := newFields(TagTransactionApprovalThresholdLost, b)
	ev := TransactionApprovalThresholdLost{
		Account:             f.address("account"),
		TransactionDigest:   f.digest("transaction_digest"),
		TotalApprovedWeight: f.u64("total_approved_weight"),
		Threshold:           f.u64("threshold"),
	}
	if err := f.done(); err != nil {
		return TransactionApprovalThresholdLost{}, err
	}
	return ev, nil
}

func ParseTransactionExecuted(b []byte) (TransactionExecuted, error) {
	f := newFields(TagTransactionExecuted, b)
	ev := TransactionExecuted{
		Account:           f.address("account"),
		TransactionDigest: f.digest("transaction_digest"),
		Executor:          f.address("executor"),
	}
	if err := f.done(); err != nil {
		return TransactionExecuted{}, err
	}
	return ev, nil
}

func ParseTransactionRemoved(b []byte) (TransactionRemoved, error) {
	f := newFields(TagTransactionRemoved, b)
	ev := TransactionRemoved{
		Account:           f.address("account"),
		TransactionDigest: f.digest("transaction_digest"),
	}
	if err := f.done(); err != nil {
		return TransactionRemoved{}, err
	}
	return ev, nil
}
