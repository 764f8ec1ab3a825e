// Package oracle is the contract with the external vision model that
// classifies reports, verifies resolutions and answers chat turns.
package oracle

import (
	"context"

	"github.com/civicpulse/civic-server/internal/models"
)

// RawClassification is the oracle's single-image answer before it is
// normalized onto the domain enums.
type RawClassification struct {
	IssueType   string `json:"issue_type"`
	Severity    string `json:"severity"`
	Department  string `json:"department"`
	Description string `json:"description"`
}

// Suggestion is one candidate interpretation of a photo.
type Suggestion struct {
	Title      string `json:"title"`
	IssueType  string `json:"issue_type"`
	Department string `json:"department"`
	Severity   string `json:"severity"`
	Confidence string `json:"confidence"`
}

// Verdict is the before/after comparison result.
type Verdict struct {
	Resolved    bool    `json:"resolved"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// ChatRole tags a conversation turn.
type ChatRole string

const (
	ChatRoleCitizen   ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatTurn is one prior message in a conversation.
type ChatTurn struct {
	Role    ChatRole `json:"role"`
	Message string   `json:"message"`
}

// Oracle is the classification service. Every call is single-shot and may
// fail; callers decide how to degrade.
type Oracle interface {
	Classify(ctx context.Context, img models.Image, titleHint string) (*RawClassification, error)
	Suggest(ctx context.Context, img models.Image) ([]Suggestion, error)
	Verify(ctx context.Context, before, after models.Image) (*Verdict, error)
	Chat(ctx context.Context, message string, history []ChatTurn) (string, error)
}
