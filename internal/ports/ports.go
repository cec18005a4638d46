package ports

import (
	"context"
	"time"

	"truthtracker/internal/domain"
)

// SourceContent pairs a configured source with everything fetched from it.
// Err records a source-scoped fetch failure; the run continues past it.
type SourceContent struct {
	Source domain.Source
	Items  []domain.CandidateContent
	Err    error
}

// ContentSource pulls candidate content from every active configured source.
type ContentSource interface {
	FetchAll(ctx context.Context) ([]SourceContent, error)
}

// RawSourceContent pairs a source with its parsed raw incident records.
type RawSourceContent struct {
	Source domain.Source
	Items  []domain.RawIncidentRecord
	Err    error
}

// RawSource pulls per-source raw incident records for the incident pipeline.
type RawSource interface {
	FetchAllRaw(ctx context.Context) ([]RawSourceContent, error)
}

// CompletionClient is a single request/response "generate text from a
// system+user prompt" capability.
type CompletionClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// PromiseExtractor turns one unit of content into zero or more candidate
// promises, already filtered to credible ones.
type PromiseExtractor interface {
	Extract(ctx context.Context, content, source, sourceURL string) ([]domain.ExtractedPromise, error)
}

// DuplicateChecker decides whether a candidate duplicates recent history.
// Implementations fail open: a model or parse failure yields false, never an
// aborted run.
type DuplicateChecker interface {
	IsDuplicate(ctx context.Context, candidate domain.ExtractedPromise, history []domain.ExtractedPromise) bool
}

// PromiseRepository persists extracted promises and serves dedup history.
type PromiseRepository interface {
	Save(ctx context.Context, promise domain.ExtractedPromise) error
	Recent(ctx context.Context, limit int) ([]domain.ExtractedPromise, error)
}

// IncidentRepository owns the pending and verified incident collections.
// Promote moves one record from pending to verified as a single
// storage-layer operation.
type IncidentRepository interface {
	CreatePending(ctx context.Context, incident domain.PoliticalIncident) error
	Pending(ctx context.Context) ([]domain.PoliticalIncident, error)
	Verified(ctx context.Context) ([]domain.PoliticalIncident, error)
	Promote(ctx context.Context, id string) error
	DeletePending(ctx context.Context, id string) error
	AppendBatch(ctx context.Context, batch domain.IncidentBatch) error
}

// SyncLogRepository appends and lists run-summary records.
type SyncLogRepository interface {
	Append(ctx context.Context, log domain.SyncLog) error
	Recent(ctx context.Context, limit int) ([]domain.SyncLog, error)
}

// Notifier publishes run summaries to an operator channel.
type Notifier interface {
	PublishSummary(ctx context.Context, summary string) error
}

// Scheduler controls when sync runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// AuthorizationPolicy gates admin operations. Injected into request handlers
// so tests can substitute it.
type AuthorizationPolicy interface {
	IsAuthorized(principal string) bool
}
