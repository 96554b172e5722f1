package events

// Tag names one on-chain event kind as reported by the indexer.
type Tag string

const (
	TagAccountCreated                      Tag = "AccountCreatedEvent"
	TagAccountRotated                      Tag = "AccountRotatedEvent"
	TagMemberAdded                         Tag = "MemberAddedEvent"
	TagMemberRemoved                       Tag = "MemberRemovedEvent"
	TagMemberWeightUpdated                 Tag = "MemberWeightUpdatedEvent"
	TagThresholdChanged                    Tag = "ThresholdChangedEvent"
	TagGuardianChanged                     Tag = "GuardianChangedEvent"
	TagTransactionProposed                 Tag = "TransactionProposedEvent"
	TagTransactionApproved                 Tag = "TransactionApprovedEvent"
	TagTransactionApprovalThresholdReached Tag = "TransactionApprovalThresholdReachedEvent"
	TagTransactionApprovalThresholdLost    Tag = "TransactionApprovalThresholdLostEvent"
	TagTransactionExecuted                 Tag = "TransactionExecutedEvent"
	TagTransactionRemoved                  Tag = "TransactionRemovedEvent"
)

// AllTags is the closed set of event kinds emitted by the iSafe package.
var AllTags = []Tag{
	TagAccountCreated,
	TagAccountRotated,
	TagMemberAdded,
	TagMemberRemoved,
	TagMemberWeightUpdated,
	TagThresholdChanged,
	TagGuardianChanged,
	TagTransactionProposed,
	TagTransactionApproved,
	TagTransactionApprovalThresholdReached,
	TagTransactionApprovalThresholdLost,
	TagTransactionExecuted,
	TagTransactionRemoved,
}

// Known reports whether t is one of AllTags.
func (t Tag) Known() bool {
	_, ok := decoders[t]
	return ok
}

func (t Tag) String() string {
	return string(t)
}
