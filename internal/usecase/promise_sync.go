package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"truthtracker/internal/domain"
	"truthtracker/internal/ports"
)

// PromiseSyncDeps wires all driven adapters into the promise pipeline.
type PromiseSyncDeps struct {
	Source       ports.ContentSource
	Extractor    ports.PromiseExtractor
	Dedup        ports.DuplicateChecker
	Promises     ports.PromiseRepository
	Logs         ports.SyncLogRepository
	Notifier     ports.Notifier
	HistoryLimit int
	ModelDelay   time.Duration
	Logger       *slog.Logger
}

// PromiseSync drives one end-to-end promise ingestion run: fetch, extract,
// dedupe, persist, and write the run summary. Runs are strictly sequential;
// the pacing throttles both upstream sources and the model API.
type PromiseSync struct {
	source       ports.ContentSource
	extractor    ports.PromiseExtractor
	dedup        ports.DuplicateChecker
	promises     ports.PromiseRepository
	logs         ports.SyncLogRepository
	notifier     ports.Notifier
	historyLimit int
	modelDelay   time.Duration
	logger       *slog.Logger
}

// NewPromiseSync constructs the promise orchestrator.
func NewPromiseSync(deps PromiseSyncDeps) *PromiseSync {
	historyLimit := deps.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 100
	}
	return &PromiseSync{
		source:       deps.Source,
		extractor:    deps.Extractor,
		dedup:        deps.Dedup,
		promises:     deps.Promises,
		logs:         deps.Logs,
		notifier:     deps.Notifier,
		historyLimit: historyLimit,
		modelDelay:   deps.ModelDelay,
		logger:       deps.Logger,
	}
}

// Sync performs one run. Source- and item-level failures are collected into
// the result's error list; only a failure outside those guards (loading the
// dedup history, context cancellation) aborts the remaining steps. A run
// summary is persisted exactly once on every path.
func (s *PromiseSync) Sync(ctx context.Context) domain.SyncResult {
	start := time.Now()
	result := domain.SyncResult{Errors: []string{}}

	s.info("starting promise sync")
	s.run(ctx, &result)

	result.Success = len(result.Errors) == 0 || result.TotalSaved > 0
	result.DurationMS = time.Since(start).Milliseconds()

	s.writeLog(result)
	s.notify(result)
	s.info("promise sync completed",
		"fetched", result.TotalFetched,
		"extracted", result.TotalExtracted,
		"saved", result.TotalSaved,
		"duplicates", result.DuplicatesSkipped,
		"errors", len(result.Errors))
	return result
}

func (s *PromiseSync) run(ctx context.Context, result *domain.SyncResult) {
	history, err := s.promises.Recent(ctx, s.historyLimit)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Sync failed: %v", err))
		return
	}
	s.info("loaded dedup history", "existing", len(history))

	sources, err := s.source.FetchAll(ctx)
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

		for _, item := range sc.Items {
			extracted, err := s.extractor.Extract(ctx, item.Text, item.Source, item.SourceURL)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Error processing item from %s: %v", sc.Source.Name, err))
				continue
			}
			result.TotalExtracted += len(extracted)

			for _, promise := range extracted {
				if s.dedup.IsDuplicate(ctx, promise, history) {
					result.DuplicatesSkipped++
					s.info("skipping duplicate", "title", promise.Title)
					continue
				}
				if err := s.promises.Save(ctx, promise); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("Error saving promise from %s: %v", sc.Source.Name, err))
					continue
				}
				// Later items in this run dedupe against it too.
				history = append(history, promise)
				result.TotalSaved++
				s.info("saved new promise", "title", promise.Title)
			}

			if err := wait(ctx, s.modelDelay); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Sync aborted: %v", err))
				return
			}
		}
	}
}

// writeLog persists the run summary. It deliberately uses a fresh context so
// the audit record still lands when the run's context was cancelled.
func (s *PromiseSync) writeLog(result domain.SyncResult) {
	if s.logs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entry := domain.SyncLog{
		ID:        uuid.NewString(),
		Pipeline:  "promises",
		Timestamp: time.Now().UTC(),
		Result:    result,
		Details:   summaryLine(result),
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		s.warn("failed to persist sync log", "error", err)
	}
}

func (s *PromiseSync) notify(result domain.SyncResult) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	message := fmt.Sprintf("Promise sync finished: %s, %d error(s), %dms",
		summaryLine(result), len(result.Errors), result.DurationMS)
	if err := s.notifier.PublishSummary(ctx, message); err != nil {
		s.warn("failed to publish run summary", "error", err)
	}
}

func summaryLine(result domain.SyncResult) string {
	return fmt.Sprintf("Fetched: %d, Extracted: %d, Saved: %d, Duplicates: %d",
		result.TotalFetched, result.TotalExtracted, result.TotalSaved, result.DuplicatesSkipped)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *PromiseSync) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *PromiseSync) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
