package snapshot

import (
	"time"

	"isafeDashboard/internal/model"
)

func buildEventRecords(acct string, lastSeq int64, evs []model.Event, ingestedAt time.Time) []model.EventRecord {
	records := make([]model.EventRecord, len(evs))
	stamp := ingestedAt.UTC().Format(time.RFC3339Nano)
	for i, ev := range evs {
		records[i] = model.EventRecord{
			Account:    acct,
			Seq:        lastSeq + int64(i) + 1,
			Event:      ev,
			IngestedAt: stamp,
		}
	}
	return records
}

func buildAccountSnapshot(cp Checkpoint, takenAt time.Time) model.AccountSnapshot {
	members := cp.State.Members
	if members == nil {
		members = []model.Member{}
	}
	return model.AccountSnapshot{
		Account:     cp.Account,
		Members:     members,
		Threshold:   cp.State.Threshold,
		TotalWeight: cp.State.TotalWeight(),
		Guardian:    cp.State.Guardian,
		EventCount:  cp.Seq,
		TakenAt:     takenAt.UTC().Format(time.RFC3339Nano),
	}
}
