package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"truthtracker/internal/domain"
	"truthtracker/internal/source"
)

// minScrapeLength filters out short page fragments; scraped prose needs more
// context than a feed headline before it is worth extracting from.
const minScrapeLength = 100

var (
	sentenceSplitExpr = regexp.MustCompile(`[.!?]+`)
	whitespaceExpr    = regexp.MustCompile(`\s+`)
)

// ScrapeFetcher downloads raw HTML, strips script/style blocks and markup,
// and splits the remaining prose into sentence-like segments.
type ScrapeFetcher struct {
	client *http.Client
}

var _ source.Fetcher = (*ScrapeFetcher)(nil)

// NewScrapeFetcher wires an HTTP client.
func NewScrapeFetcher(client *http.Client) *ScrapeFetcher {
	return &ScrapeFetcher{client: defaultClient(client)}
}

// Type identifies the strategy inside the registry.
func (f *ScrapeFetcher) Type() domain.FetchType {
	return domain.FetchScrape
}

// Fetch downloads the page and returns relevance-filtered text segments.
func (f *ScrapeFetcher) Fetch(ctx context.Context, src domain.Source) ([]domain.CandidateContent, error) {
	body, err := get(ctx, f.client, src.URL, src.Headers)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", src.Name, err)
	}

	segments, err := SegmentHTML(body)
	if err != nil {
		return nil, fmt.Errorf("parse page from %s: %w", src.Name, err)
	}

	kept := source.FilterRelevant(segments, minScrapeLength)
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

// SegmentHTML strips script/style blocks and all markup, collapses
// whitespace, and splits the text into sentence-like segments.
func SegmentHTML(html []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	doc.Find("script, style").Remove()
	text := whitespaceExpr.ReplaceAllString(doc.Text(), " ")

	var segments []string
	for _, part := range sentenceSplitExpr.Split(text, -1) {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return segments, nil
}
