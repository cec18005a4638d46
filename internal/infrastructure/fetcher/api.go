package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"truthtracker/internal/domain"
	"truthtracker/internal/source"
)

// textFields are the common field names candidate text is pulled from.
var textFields = []string{"title", "description", "content", "summary", "text"}

// APIFetcher retrieves a JSON array of objects and concatenates their common
// text fields into candidate content.
type APIFetcher struct {
	client *http.Client
}

var _ source.Fetcher = (*APIFetcher)(nil)

// NewAPIFetcher wires an HTTP client.
func NewAPIFetcher(client *http.Client) *APIFetcher {
	return &APIFetcher{client: defaultClient(client)}
}

// Type identifies the strategy inside the registry.
func (f *APIFetcher) Type() domain.FetchType {
	return domain.FetchAPI
}

// Fetch downloads the JSON payload and returns relevance-filtered items.
func (f *APIFetcher) Fetch(ctx context.Context, src domain.Source) ([]domain.CandidateContent, error) {
	headers := map[string]string{"Accept": "application/json"}
	for key, value := range src.Headers {
		headers[key] = value
	}

	body, err := get(ctx, f.client, src.URL, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch api %s: %w", src.Name, err)
	}

	var items []map[string]any
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("parse api response from %s: %w", src.Name, err)
	}

	var candidates []domain.CandidateContent
	for _, item := range items {
		text := joinTextFields(item)
		if text == "" || !source.Relevant(text) {
			continue
		}
		candidates = append(candidates, domain.CandidateContent{
			Text:      text,
			Source:    src.Name,
			SourceURL: src.URL,
		})
	}
	return candidates, nil
}

func joinTextFields(item map[string]any) string {
	var parts []string
	for _, field := range textFields {
		if value, ok := item[field].(string); ok && value != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, " ")
}
