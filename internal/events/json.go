package events

import (
	"encoding/json"
	"fmt"
)

type jsonFunc func(json.RawMessage) (Payload, error)

var jsonDecoders = map[Tag]jsonFunc{
	TagAccountCreated:                      fromJSON[AccountCreated],
	TagAccountRotated:                      fromJSON[AccountRotated],
	TagMemberAdded:                         fromJSON[MemberAdded],
	TagMemberRemoved:                       fromJSON[MemberRemoved],
	TagMemberWeightUpdated:                 fromJSON[MemberWeightUpdated],
	TagThresholdChanged:                    fromJSON[ThresholdChanged],
	TagGuardianChanged:                     fromJSON[GuardianChanged],
	TagTransactionProposed:                 fromJSON[TransactionProposed],
	TagTransactionApproved:                 fromJSON[TransactionApproved],
	TagTransactionApprovalThresholdReached: fromJSON[TransactionApprovalThresholdReached],
	TagTransactionApprovalThresholdLost:    fromJSON[TransactionApprovalThresholdLost],
	TagTransactionExecuted:                 fromJSON[TransactionExecuted],
	TagTransactionRemoved:                  fromJSON[TransactionRemoved],
}

func init() {
	for _, tag := range AllTags {
		if jsonDecoders[tag] == nil {
			panic(fmt.Sprintf("event json registry missing %s", tag))
		}
	}
	if len(jsonDecoders) != len(AllTags) {
		panic("event json registry has extra tags")
	}
}

func fromJSON[T Payload](data json.RawMessage) (Payload, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// UnmarshalPayload decodes the JSON form of a payload for tag.
func UnmarshalPayload(tag string, data json.RawMessage) (Payload, error) {
	decode, ok := jsonDecoders[Tag(tag)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, tag)
	}
	v, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s json: %w", tag, err)
	}
	return v, nil
}
