package domain

import "time"

// IncidentCategory buckets a political incident; inference is
// first-match-wins over the ordered keyword sets in the normalizer.
type IncidentCategory string

const (
	CategoryCorruption    IncidentCategory = "corruption"
	CategoryProtest       IncidentCategory = "protest"
	CategoryViolence      IncidentCategory = "violence"
	CategoryLegalCase     IncidentCategory = "legal-case"
	CategoryPolicyFailure IncidentCategory = "policy-failure"
	CategoryOther         IncidentCategory = "other"
)

// RawIncidentRecord is a transient per-source parse result, consumed
// immediately by the normalizer.
type RawIncidentRecord struct {
	Title         string
	Description   string
	Link          string
	PublishedDate string
	SourceName    string
	Content       string
}

// PoliticalIncident is a normalized incident. Machine-ingested records start
// with Verified=false and become publicly visible only after a human approval
// moves them into the verified collection.
type PoliticalIncident struct {
	ID          string           `bson:"_id" json:"id"`
	Title       string           `bson:"title" json:"title"`
	Description string           `bson:"description" json:"description"`
	Category    IncidentCategory `bson:"category" json:"category"`
	Date        string           `bson:"date" json:"date"`
	Source      string           `bson:"source" json:"source"`
	SourceURL   string           `bson:"sourceUrl" json:"sourceUrl"`
	Verified    bool             `bson:"verified" json:"verified"`
	AddedAt     time.Time        `bson:"addedAt" json:"addedAt"`
}

// IncidentBatch is an externally submitted set of raw incidents, appended
// as-is with a receipt timestamp.
type IncidentBatch struct {
	ID        string           `bson:"_id" json:"id"`
	Source    string           `bson:"source" json:"source"`
	Incidents []map[string]any `bson:"incidents" json:"incidents"`
	FetchedAt time.Time        `bson:"fetchedAt" json:"fetchedAt"`
}
