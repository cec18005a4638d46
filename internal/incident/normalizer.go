package incident

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"truthtracker/internal/domain"
)

// DefaultPerSourceCap bounds how many records one source can contribute to a
// run when no cap is configured.
const DefaultPerSourceCap = 20

var (
	itemExpr    = regexp.MustCompile(`(?is)<item[^>]*>(.*?)</item>`)
	cdataExpr   = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	entityExpr  = regexp.MustCompile(`&[^;\s]+;`)
	spacesExpr  = regexp.MustCompile(`\s+`)
	stripPolicy = bluemonday.StrictPolicy()

	tagExprs = map[string]*regexp.Regexp{
		"title":       tagExpr("title"),
		"description": tagExpr("description"),
		"link":        tagExpr("link"),
		"pubDate":     tagExpr("pubDate"),
	}
)

func tagExpr(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)<` + tag + `[^>]*>(.*?)</` + tag + `>`)
}

var incidentKeywords = []string{
	"policy", "scheme", "implementation", "failure", "delayed", "cancelled",
	"corruption", "scam", "bribe", "embezzlement", "fraud", "misuse",
	"protest", "demonstration", "rally", "violence", "clash", "arrest",
	"court", "case", "judgment", "verdict", "investigation", "inquiry",
	"minister", "government", "parliament", "assembly", "election",
	"constituency", "mla", "mp", "chief minister", "prime minister",
	"controversy", "allegation", "accused", "charged", "suspended",
}

// categoryBuckets are checked in order; the first bucket with a keyword hit
// wins.
var categoryBuckets = []struct {
	category domain.IncidentCategory
	keywords []string
}{
	{domain.CategoryCorruption, []string{"corruption", "scam", "bribe"}},
	{domain.CategoryProtest, []string{"protest", "demonstration", "rally"}},
	{domain.CategoryViolence, []string{"violence", "clash", "attack"}},
	{domain.CategoryLegalCase, []string{"court", "case", "judgment"}},
	{domain.CategoryPolicyFailure, []string{"policy", "scheme", "implementation"}},
}

// ParseFeed extracts raw incident records from feed XML. Records that do not
// look like political incidents are dropped, and the result is capped at
// limit items (DefaultPerSourceCap when limit is zero or less).
func ParseFeed(xmlText, sourceName string, limit int) []domain.RawIncidentRecord {
	if limit <= 0 {
		limit = DefaultPerSourceCap
	}
	var records []domain.RawIncidentRecord
	for _, match := range itemExpr.FindAllStringSubmatch(xmlText, -1) {
		item := match[1]
		title := extractTag(item, "title")
		description := extractTag(item, "description")
		if title == "" || !IsPoliticalIncident(title, description) {
			continue
		}

		pubDate := extractTag(item, "pubDate")
		if pubDate == "" {
			pubDate = time.Now().UTC().Format(time.RFC3339)
		}

		records = append(records, domain.RawIncidentRecord{
			Title:         CleanText(title),
			Description:   CleanText(description),
			Link:          extractTag(item, "link"),
			PublishedDate: pubDate,
			SourceName:    sourceName,
			Content:       CleanText(description),
		})
		if len(records) == limit {
			break
		}
	}
	return records
}

// ParseAPI extracts raw incident records from a JSON array of objects,
// applying the same per-source cap as ParseFeed.
func ParseAPI(body []byte, sourceName string, limit int) ([]domain.RawIncidentRecord, error) {
	if limit <= 0 {
		limit = DefaultPerSourceCap
	}
	var items []map[string]any
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("parse incident payload from %s: %w", sourceName, err)
	}

	var records []domain.RawIncidentRecord
	for _, item := range items {
		title := stringField(item, "title")
		description := firstStringField(item, "description", "summary", "content")
		if title == "" || !IsPoliticalIncident(title, description) {
			continue
		}

		pubDate := firstStringField(item, "publishedAt", "date")
		if pubDate == "" {
			pubDate = time.Now().UTC().Format(time.RFC3339)
		}

		records = append(records, domain.RawIncidentRecord{
			Title:         CleanText(title),
			Description:   CleanText(description),
			Link:          firstStringField(item, "url", "link"),
			PublishedDate: pubDate,
			SourceName:    sourceName,
			Content:       CleanText(description),
		})
		if len(records) == limit {
			break
		}
	}
	return records, nil
}

// Normalize converts a raw record into a pending political incident.
func Normalize(raw domain.RawIncidentRecord) domain.PoliticalIncident {
	return domain.PoliticalIncident{
		ID:          uuid.NewString(),
		Title:       raw.Title,
		Description: raw.Description,
		Category:    Categorize(raw.Title, raw.Description),
		Date:        NormalizeDate(raw.PublishedDate),
		Source:      raw.SourceName,
		SourceURL:   raw.Link,
		Verified:    false,
		AddedAt:     time.Now().UTC(),
	}
}

// IsPoliticalIncident reports whether title and description jointly match the
// incident vocabulary.
func IsPoliticalIncident(title, description string) bool {
	combined := strings.ToLower(title + " " + description)
	for _, keyword := range incidentKeywords {
		if strings.Contains(combined, keyword) {
			return true
		}
	}
	return false
}

// Categorize infers the incident category, first-match-wins over the ordered
// keyword buckets; anything unmatched is "other".
func Categorize(title, description string) domain.IncidentCategory {
	text := strings.ToLower(title + " " + description)
	for _, bucket := range categoryBuckets {
		for _, keyword := range bucket.keywords {
			if strings.Contains(text, keyword) {
				return bucket.category
			}
		}
	}
	return domain.CategoryOther
}

// NormalizeDate parses the published date into ISO form. A value that cannot
// be parsed never fails the record; the current timestamp is substituted.
func NormalizeDate(value string) string {
	layouts := []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return parsed.UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// CleanText strips markup and entities, collapsing runs of whitespace.
func CleanText(text string) string {
	cleaned := stripPolicy.Sanitize(text)
	cleaned = entityExpr.ReplaceAllString(cleaned, " ")
	cleaned = spacesExpr.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

func extractTag(item, tag string) string {
	expr, ok := tagExprs[tag]
	if !ok {
		expr = tagExpr(tag)
	}
	match := expr.FindStringSubmatch(item)
	if match == nil {
		return ""
	}
	if cdata := cdataExpr.FindStringSubmatch(match[1]); cdata != nil {
		return cdata[1]
	}
	return match[1]
}

func stringField(item map[string]any, key string) string {
	value, _ := item[key].(string)
	return value
}

func firstStringField(item map[string]any, keys ...string) string {
	for _, key := range keys {
		if value := stringField(item, key); value != "" {
			return value
		}
	}
	return ""
}
