package model

// EventRecord is one decoded event as exported by a snapshot. Seq is the
// event's 1-based position in the account history.
type EventRecord struct {
	Account    string `json:"account"`
	Seq        int64  `json:"seq"`
	Event      Event  `json:"event"`
	IngestedAt string `json:"ingestedAt"`
}

// AccountSnapshot is the replayed member set at the end of a snapshot run.
type AccountSnapshot struct {
	Account     string   `json:"account"`
	Members     []Member `json:"members"`
	Threshold   uint64   `json:"threshold"`
	TotalWeight uint64   `json:"totalWeight"`
	Guardian    string   `json:"guardian,omitempty"`
	EventCount  int64    `json:"eventCount"`
	TakenAt     string   `json:"takenAt"`
}
