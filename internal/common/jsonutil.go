package common

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fenceRe matches a response wrapped in a single markdown code fence, with an
// optional language tag after the opening backticks.
var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z0-9]*\\s*\n?(.*?)\n?\\s*```$")

// StripCodeFence removes one surrounding markdown code fence from text.
// Model responses requested as JSON frequently arrive as ```json ... ``` blocks.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if m := fenceRe.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// ParseLenientJSON strips a possible surrounding code fence from text and
// unmarshals the remainder into v. The raw model output is never trusted:
// on failure the caller is expected to fall back to displaying the raw text
// rather than treating the error as fatal.
func ParseLenientJSON(text string, v interface{}) error {
	cleaned := StripCodeFence(text)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	return nil
}
