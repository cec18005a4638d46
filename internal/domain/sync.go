package domain

import "time"

// SyncResult aggregates one orchestrator run. Immutable after the run ends.
type SyncResult struct {
	Success           bool     `bson:"success" json:"success"`
	TotalFetched      int      `bson:"totalFetched" json:"totalFetched"`
	TotalExtracted    int      `bson:"totalExtracted" json:"totalExtracted"`
	TotalSaved        int      `bson:"totalSaved" json:"totalSaved"`
	DuplicatesSkipped int      `bson:"duplicatesSkipped" json:"duplicatesSkipped"`
	Errors            []string `bson:"errors" json:"errors"`
	DurationMS        int64    `bson:"duration" json:"duration"`
}

// SyncLog is the append-only audit record written once per run.
type SyncLog struct {
	ID        string     `bson:"_id" json:"id"`
	Pipeline  string     `bson:"pipeline" json:"pipeline"`
	Timestamp time.Time  `bson:"timestamp" json:"timestamp"`
	Result    SyncResult `bson:"result" json:"result"`
	Details   string     `bson:"details" json:"details"`
}
