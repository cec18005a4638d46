package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"truthtracker/internal/domain"
	"truthtracker/internal/ports"
)

// defaultCompareLimit caps how many recent history items are sent per check
// when no limit is configured.
const defaultCompareLimit = 10

const dedupSystemPrompt = `You are a duplicate detection expert. Compare the new promise with existing promises and determine if it's a duplicate.

Return JSON: {"isDuplicate": true/false, "reason": "explanation"}`

// Dedup asks the model whether a candidate duplicates recent history. It
// fails open: any call or parse failure yields "not a duplicate", trading a
// possible duplicate entry for never dropping a legitimately new promise on
// a transient model failure.
type Dedup struct {
	client ports.CompletionClient
	limit  int
	logger *slog.Logger
}

var _ ports.DuplicateChecker = (*Dedup)(nil)

// NewDedup wires the completion client. A compareLimit of zero or less falls
// back to the default.
func NewDedup(client ports.CompletionClient, compareLimit int, log *slog.Logger) *Dedup {
	if compareLimit <= 0 {
		compareLimit = defaultCompareLimit
	}
	return &Dedup{client: client, limit: compareLimit, logger: log}
}

type dedupResponse struct {
	IsDuplicate bool   `json:"isDuplicate"`
	Reason      string `json:"reason"`
}

// IsDuplicate reports whether the candidate substantially matches any of the
// recent history items. An empty history short-circuits to false without a
// model call.
func (d *Dedup) IsDuplicate(ctx context.Context, candidate domain.ExtractedPromise, history []domain.ExtractedPromise) bool {
	if len(history) == 0 {
		return false
	}
	if len(history) > d.limit {
		history = history[:d.limit]
	}

	var existing strings.Builder
	for _, p := range history {
		fmt.Fprintf(&existing, "%q\n", p.Title+" - "+p.Description)
	}

	user := fmt.Sprintf(`New Promise: %q

Existing Promises:
%s
Is the new promise substantially similar to any existing promise?`,
		candidate.Title+" - "+candidate.Description, existing.String())

	text, err := d.client.Complete(ctx, dedupSystemPrompt, user)
	if err != nil {
		// onModelError: assumeNotDuplicate.
		d.warn("duplicate check call failed", candidate, err)
		return false
	}

	var parsed dedupResponse
	if err := unmarshalLenient(text, &parsed); err != nil {
		d.warn("duplicate check response unparsable", candidate, err)
		return false
	}
	return parsed.IsDuplicate
}

func (d *Dedup) warn(msg string, candidate domain.ExtractedPromise, err error) {
	if d.logger != nil {
		d.logger.Warn(msg, "promise", candidate.Title, "error", err)
	}
}
