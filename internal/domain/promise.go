package domain

import (
	"math/rand"
	"strconv"
	"time"
)

// PromiseStatus tracks the review workflow of an extracted promise.
type PromiseStatus string

const (
	// StatusPendingVerification is assigned to every machine-extracted
	// promise; a human reviewer moves it forward.
	StatusPendingVerification PromiseStatus = "pending_verification"
	StatusVerified            PromiseStatus = "verified"
)

// PromiseAnalysis carries the model's self-assessment of an extraction.
type PromiseAnalysis struct {
	Feasibility string   `bson:"feasibility" json:"feasibility"`
	Specificity string   `bson:"specificity" json:"specificity"`
	RedFlags    []string `bson:"redFlags" json:"redFlags"`
	Confidence  int      `bson:"confidence" json:"confidence"`
}

// ExtractedPromise is a political promise pulled out of source content by the
// extraction agent. CredibilityScore is the model's 0-100 confidence that the
// text is a genuine, specific promise.
type ExtractedPromise struct {
	ID               string          `bson:"_id" json:"id"`
	Title            string          `bson:"title" json:"title"`
	Description      string          `bson:"description" json:"description"`
	Party            string          `bson:"party" json:"party"`
	Politician       string          `bson:"politician" json:"politician"`
	Category         string          `bson:"category" json:"category"`
	CredibilityScore int             `bson:"credibilityScore" json:"credibilityScore"`
	Source           string          `bson:"source" json:"source"`
	SourceURL        string          `bson:"sourceUrl" json:"sourceUrl"`
	ExtractedAt      time.Time       `bson:"extractedAt" json:"extractedAt"`
	Analysis         PromiseAnalysis `bson:"analysis" json:"analysis"`
	Status           PromiseStatus   `bson:"status,omitempty" json:"status,omitempty"`
}

// NewPromiseID returns a time-ordered token with a random suffix.
func NewPromiseID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + strconv.FormatInt(rand.Int63n(1<<40), 36)
}
