package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"truthtracker/internal/domain"
	"truthtracker/internal/ports"
	"truthtracker/internal/source"
)

// MultiSource implements ports.ContentSource over the configured source list
// and registered fetch strategies. Sources are processed strictly one after
// another with a fixed delay to respect upstream rate limits.
type MultiSource struct {
	registry *source.Registry
	sources  []domain.Source
	delay    time.Duration
	logger   *slog.Logger
}

var _ ports.ContentSource = (*MultiSource)(nil)

// NewMultiSource wires the fetch-strategy registry with config-defined sources.
func NewMultiSource(reg *source.Registry, sources []domain.Source, delay time.Duration, log *slog.Logger) *MultiSource {
	return &MultiSource{
		registry: reg,
		sources:  sources,
		delay:    delay,
		logger:   log,
	}
}

// FetchAll visits every active source. A fetch failure is recorded on that
// source's result and never aborts the remaining sources.
func (m *MultiSource) FetchAll(ctx context.Context) ([]ports.SourceContent, error) {
	if m.registry == nil {
		return nil, fmt.Errorf("fetch registry is not configured")
	}

	var results []ports.SourceContent
	first := true
	for _, src := range m.sources {
		if !src.Active {
			continue
		}
		if !first {
			if err := wait(ctx, m.delay); err != nil {
				return results, err
			}
		}
		first = false

		m.debug("fetching source", "source", src.Name, "type", src.FetchType)

		result := ports.SourceContent{Source: src}
		strategy, err := m.registry.Resolve(src.FetchType)
		if err != nil {
			result.Err = err
			m.warn("unresolvable source", "source", src.Name, "error", err)
			results = append(results, result)
			continue
		}

		items, err := strategy.Fetch(ctx, src)
		if err != nil {
			result.Err = err
			m.warn("source fetch failed", "source", src.Name, "error", err)
		} else {
			result.Items = items
			m.debug("source produced content", "source", src.Name, "count", len(items))
		}
		results = append(results, result)
	}
	return results, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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

func (m *MultiSource) debug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}

func (m *MultiSource) warn(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
