package domain

// FetchType selects the retrieval strategy for a configured source.
type FetchType string

const (
	FetchFeed   FetchType = "feed"
	FetchAPI    FetchType = "api"
	FetchScrape FetchType = "scrape"
)

// Source is a configured external feed, API, or page the pipeline is
// authorized to pull content from. Immutable after startup.
type Source struct {
	Name      string            `yaml:"name"`
	FetchType FetchType         `yaml:"fetchType"`
	URL       string            `yaml:"url"`
	Headers   map[string]string `yaml:"headers,omitempty"`
	Active    bool              `yaml:"active"`
	Category  string            `yaml:"category"`
}

// CandidateContent is one unit of raw text plus provenance. Produced by the
// content fetcher, consumed by the extraction agent; never persisted.
type CandidateContent struct {
	Text      string
	Source    string
	SourceURL string
}
