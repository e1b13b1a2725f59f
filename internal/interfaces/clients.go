// Package interfaces defines service contracts for Cense
package interfaces

import (
	"context"

	"github.com/lakmalw/cense/internal/models"
)

// GenAIClient provides access to the generative-language-model API.
// Returned text is untrusted: callers expecting JSON must parse leniently
// and fall back to raw-text display on failure.
type GenAIClient interface {
	// GenerateContent generates free text from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// GenerateJSON generates content with a JSON response MIME type
	GenerateJSON(ctx context.Context, prompt string) (string, error)

	// GenerateWithSearch generates content using search grounding and
	// returns any grounding citations alongside the text
	GenerateWithSearch(ctx context.Context, prompt string) (string, []models.Source, error)
}
