package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"truthtracker/internal/domain"
	"truthtracker/internal/source"
)

var (
	feedTitleExpr       = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	feedDescriptionExpr = regexp.MustCompile(`(?is)<description[^>]*>(.*?)</description>`)
	cdataExpr           = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
)

// FeedFetcher retrieves feed XML, optionally through the relay endpoint, and
// extracts item titles and descriptions as candidate content.
type FeedFetcher struct {
	client       *http.Client
	relayBase    string
	allowedHosts []string
}

var _ source.Fetcher = (*FeedFetcher)(nil)

// NewFeedFetcher wires an HTTP client, the relay base URL (optional), and the
// destination host allow-list.
func NewFeedFetcher(client *http.Client, relayBase string, allowedHosts []string) *FeedFetcher {
	return &FeedFetcher{
		client:       defaultClient(client),
		relayBase:    relayBase,
		allowedHosts: allowedHosts,
	}
}

// Type identifies the strategy inside the registry.
func (f *FeedFetcher) Type() domain.FetchType {
	return domain.FetchFeed
}

// Fetch downloads the feed and returns relevance-filtered candidate blocks.
// Destinations outside the allow-list fail with source.ErrHostNotAllowed.
func (f *FeedFetcher) Fetch(ctx context.Context, src domain.Source) ([]domain.CandidateContent, error) {
	parsed, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid source url %s: %w", src.URL, err)
	}
	if len(f.allowedHosts) > 0 && !source.HostAllowed(f.allowedHosts, parsed.Hostname()) {
		return nil, fmt.Errorf("fetch %s: %w", src.Name, source.ErrHostNotAllowed)
	}

	body, err := get(ctx, f.client, relayURL(f.relayBase, src.URL), src.Headers)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", src.Name, err)
	}

	segments := ExtractFeedText(string(body))
	kept := source.FilterRelevant(segments, source.MinPromiseLength)

	candidates := make([]domain.CandidateContent, 0, len(kept))
	for _, text := range kept {
		candidates = append(candidates, domain.CandidateContent{
			Text:      text,
			Source:    src.Name,
			SourceURL: src.URL,
		})
	}
	return candidates, nil
}

// ExtractFeedText pulls every title and description from feed XML using
// tag-scoped matching, unescaping CDATA sections.
func ExtractFeedText(xml string) []string {
	var segments []string
	for _, match := range feedTitleExpr.FindAllStringSubmatch(xml, -1) {
		segments = append(segments, UnwrapCDATA(match[1]))
	}
	for _, match := range feedDescriptionExpr.FindAllStringSubmatch(xml, -1) {
		segments = append(segments, UnwrapCDATA(match[1]))
	}
	return segments
}

// UnwrapCDATA returns the literal text inside a CDATA section, or the input
// unchanged when no section is present.
func UnwrapCDATA(text string) string {
	if match := cdataExpr.FindStringSubmatch(text); match != nil {
		return match[1]
	}
	return text
}
