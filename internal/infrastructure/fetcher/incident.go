package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"truthtracker/internal/domain"
	"truthtracker/internal/incident"
	"truthtracker/internal/ports"
	"truthtracker/internal/source"
)

// IncidentSource implements ports.RawSource: it retrieves raw incident
// records from the configured incident feeds and APIs. Feed fetches go
// through the relay endpoint so the destination allow-list is enforced in
// one place.
type IncidentSource struct {
	client       *http.Client
	sources      []domain.Source
	relayBase    string
	allowedHosts []string
	perSourceCap int
	delay        time.Duration
	logger       *slog.Logger
}

var _ ports.RawSource = (*IncidentSource)(nil)

// NewIncidentSource wires the incident source list with its fetch settings.
// A perSourceCap of zero or less falls back to the parser default.
func NewIncidentSource(client *http.Client, sources []domain.Source, relayBase string, allowedHosts []string, perSourceCap int, delay time.Duration, log *slog.Logger) *IncidentSource {
	return &IncidentSource{
		client:       defaultClient(client),
		sources:      sources,
		relayBase:    relayBase,
		allowedHosts: allowedHosts,
		perSourceCap: perSourceCap,
		delay:        delay,
		logger:       log,
	}
}

// FetchAllRaw visits every active incident source sequentially. Per-source
// failures are recorded and never abort the remaining sources.
func (s *IncidentSource) FetchAllRaw(ctx context.Context) ([]ports.RawSourceContent, error) {
	var results []ports.RawSourceContent
	first := true
	for _, src := range s.sources {
		if !src.Active {
			continue
		}
		if !first {
			if err := wait(ctx, s.delay); err != nil {
				return results, err
			}
		}
		first = false

		result := ports.RawSourceContent{Source: src}
		items, err := s.fetchOne(ctx, src)
		if err != nil {
			result.Err = err
			if s.logger != nil {
				s.logger.Warn("incident source failed", "source", src.Name, "error", err)
			}
		} else {
			result.Items = items
			if s.logger != nil {
				s.logger.Debug("incident source produced records", "source", src.Name, "count", len(items))
			}
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *IncidentSource) fetchOne(ctx context.Context, src domain.Source) ([]domain.RawIncidentRecord, error) {
	switch src.FetchType {
	case domain.FetchFeed:
		parsed, err := url.Parse(src.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid source url %s: %w", src.URL, err)
		}
		if len(s.allowedHosts) > 0 && !source.HostAllowed(s.allowedHosts, parsed.Hostname()) {
			return nil, fmt.Errorf("fetch %s: %w", src.Name, source.ErrHostNotAllowed)
		}
		body, err := get(ctx, s.client, relayURL(s.relayBase, src.URL), src.Headers)
		if err != nil {
			return nil, fmt.Errorf("fetch incident feed %s: %w", src.Name, err)
		}
		return incident.ParseFeed(string(body), src.Name, s.perSourceCap), nil
	case domain.FetchAPI:
		headers := map[string]string{"Accept": "application/json"}
		for key, value := range src.Headers {
			headers[key] = value
		}
		body, err := get(ctx, s.client, src.URL, headers)
		if err != nil {
			return nil, fmt.Errorf("fetch incident api %s: %w", src.Name, err)
		}
		return incident.ParseAPI(body, src.Name, s.perSourceCap)
	default:
		return nil, fmt.Errorf("unsupported source type: %s", src.FetchType)
	}
}
