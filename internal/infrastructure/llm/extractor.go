package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"truthtracker/internal/domain"
	"truthtracker/internal/ports"
)

// CredibilityThreshold is the minimum model-assigned score a candidate needs
// to survive filtering. Lower scores are treated as noise: the model is asked
// to self-score promise quality, and precision is preferred over recall.
const CredibilityThreshold = 60

const extractionSystemPrompt = `You are an expert political analyst specializing in Indian politics. Extract political promises from the given content.

INSTRUCTIONS:
1. Identify specific, actionable political promises or commitments
2. Ignore general statements or opinions
3. Focus on promises that can be measured or verified
4. Rate credibility from 0-100 based on feasibility and specificity
5. Identify any red flags (unrealistic claims, vague language, etc.)

Return a JSON object with this exact structure:
{
  "promises": [
    {
      "title": "Brief promise title",
      "description": "Detailed description of the promise",
      "party": "Political party name",
      "politician": "Politician name if mentioned",
      "category": "Category (economy, healthcare, education, etc.)",
      "credibilityScore": 85,
      "analysis": {
        "feasibility": "Assessment of how realistic this promise is",
        "specificity": "How specific and measurable the promise is",
        "redFlags": ["Array of concerning aspects if any"],
        "confidence": 90
      }
    }
  ]
}`

// Extractor asks the model for structured promises hidden in one content
// unit. A response that cannot be parsed yields zero candidates rather than
// an error: extraction fails empty so a single bad completion never aborts a
// run.
type Extractor struct {
	client ports.CompletionClient
	logger *slog.Logger
}

var _ ports.PromiseExtractor = (*Extractor)(nil)

// NewExtractor wires the completion client.
func NewExtractor(client ports.CompletionClient, log *slog.Logger) *Extractor {
	return &Extractor{client: client, logger: log}
}

type extractedEntry struct {
	Title            string                 `json:"title"`
	Description      string                 `json:"description"`
	Party            string                 `json:"party"`
	Politician       string                 `json:"politician"`
	Category         string                 `json:"category"`
	CredibilityScore int                    `json:"credibilityScore"`
	Analysis         domain.PromiseAnalysis `json:"analysis"`
}

type extractionResponse struct {
	Promises []extractedEntry `json:"promises"`
}

// Extract sends the content to the model and returns the candidates that
// clear the credibility threshold, each with a fresh id and timestamp.
func (e *Extractor) Extract(ctx context.Context, content, sourceName, sourceURL string) ([]domain.ExtractedPromise, error) {
	user := fmt.Sprintf(`Extract political promises from this content:

Source: %s
URL: %s

Content:
%s

Focus on Indian political context and parties. Only extract genuine promises, not general statements.`, sourceName, sourceURL, content)

	text, err := e.client.Complete(ctx, extractionSystemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("extraction call: %w", err)
	}

	var parsed extractionResponse
	if err := unmarshalLenient(text, &parsed); err != nil {
		// onModelError: assumeEmpty. Schema drift costs this content unit
		// its candidates, nothing more.
		if e.logger != nil {
			e.logger.Warn("extraction response unparsable", "source", sourceName, "error", err)
		}
		return nil, nil
	}

	now := time.Now().UTC()
	var promises []domain.ExtractedPromise
	for _, entry := range parsed.Promises {
		if entry.CredibilityScore < CredibilityThreshold {
			continue
		}
		politician := entry.Politician
		if politician == "" {
			politician = "Unknown"
		}
		promises = append(promises, domain.ExtractedPromise{
			ID:               domain.NewPromiseID(),
			Title:            entry.Title,
			Description:      entry.Description,
			Party:            entry.Party,
			Politician:       politician,
			Category:         entry.Category,
			CredibilityScore: entry.CredibilityScore,
			Source:           sourceName,
			SourceURL:        sourceURL,
			ExtractedAt:      now,
			Analysis:         entry.Analysis,
		})
	}
	return promises, nil
}

// unmarshalLenient parses text strictly as JSON, falling back to the first
// embedded JSON object when the model wrapped its answer in prose.
func unmarshalLenient(text string, v any) error {
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("response is not JSON")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("embedded JSON: %w", err)
	}
	return nil
}
