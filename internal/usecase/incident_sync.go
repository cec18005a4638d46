package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"truthtracker/internal/domain"
	"truthtracker/internal/incident"
	"truthtracker/internal/ports"
)

// IncidentSyncDeps wires the incident pipeline's collaborators.
type IncidentSyncDeps struct {
	Source    ports.RawSource
	Incidents ports.IncidentRepository
	Logs      ports.SyncLogRepository
	Notifier  ports.Notifier
	Logger    *slog.Logger
}

// IncidentSync drives one incident ingestion run. Unlike the promise
// pipeline it does not dedupe; the pending-to-verified human review is the
// filter.
type IncidentSync struct {
	source    ports.RawSource
	incidents ports.IncidentRepository
	logs      ports.SyncLogRepository
	notifier  ports.Notifier
	logger    *slog.Logger
}

// NewIncidentSync constructs the incident orchestrator.
func NewIncidentSync(deps IncidentSyncDeps) *IncidentSync {
	return &IncidentSync{
		source:    deps.Source,
		incidents: deps.Incidents,
		logs:      deps.Logs,
		notifier:  deps.Notifier,
		logger:    deps.Logger,
	}
}

// Sync performs one run across all active incident sources. Every record is
// normalized and stored in the pending state; a run summary is persisted
// exactly once on every path.
func (s *IncidentSync) Sync(ctx context.Context) domain.SyncResult {
	start := time.Now()
	result := domain.SyncResult{Errors: []string{}}

	s.info("starting incident sync")
	s.run(ctx, &result)

	result.Success = result.TotalSaved > 0
	result.DurationMS = time.Since(start).Milliseconds()

	s.writeLog(result)
	s.notify(result)
	s.info("incident sync completed",
		"fetched", result.TotalFetched,
		"saved", result.TotalSaved,
		"errors", len(result.Errors))
	return result
}

func (s *IncidentSync) run(ctx context.Context, result *domain.SyncResult) {
	sources, err := s.source.FetchAllRaw(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Sync failed: %v", err))
		return
	}

	for _, sc := range sources {
		if sc.Err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Error fetching from %s: %v", sc.Source.Name, sc.Err))
			continue
		}
		result.TotalFetched += len(sc.Items)

		for _, raw := range sc.Items {
			normalized := incident.Normalize(raw)
			result.TotalExtracted++

			if err := s.incidents.CreatePending(ctx, normalized); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Error saving incident from %s: %v", sc.Source.Name, err))
				continue
			}
			result.TotalSaved++
			s.info("saved pending incident", "title", normalized.Title, "category", normalized.Category)
		}
	}
}

func (s *IncidentSync) writeLog(result domain.SyncResult) {
	if s.logs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entry := domain.SyncLog{
		ID:        uuid.NewString(),
		Pipeline:  "incidents",
		Timestamp: time.Now().UTC(),
		Result:    result,
		Details:   summaryLine(result),
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		s.warn("failed to persist sync log", "error", err)
	}
}

func (s *IncidentSync) notify(result domain.SyncResult) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	message := fmt.Sprintf("Incident sync finished: %s, %d error(s), %dms",
		summaryLine(result), len(result.Errors), result.DurationMS)
	if err := s.notifier.PublishSummary(ctx, message); err != nil {
		s.warn("failed to publish run summary", "error", err)
	}
}

func (s *IncidentSync) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *IncidentSync) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
