// Package translate renders alert text for Kannada-speaking farmers.
package translate

import (
	"context"
	"strings"
)

// Translator maps advisory text into the target language. Implementations
// return the input unchanged when they have no translation.
type Translator interface {
	Translate(ctx context.Context, text string) string
}

// LabelSource looks up a fixed translation for a key or phrase.
// *risk.Catalog satisfies it.
type LabelSource interface {
	Label(key string) (string, bool)
}

// Static translates from a fixed label table.
type Static struct {
	labels LabelSource
}

func NewStatic(labels LabelSource) *Static {
	return &Static{labels: labels}
}

func (s *Static) Translate(_ context.Context, text string) string {
	if out, ok := s.lookup(text); ok {
		return out
	}
	return text
}

func (s *Static) lookup(text string) (string, bool) {
	if s.labels == nil || strings.TrimSpace(text) == "" {
		return "", false
	}
	return s.labels.Label(text)
}

// Chain tries the label table first and falls back to a model for free text.
type Chain struct {
	static   *Static
	fallback Translator
}

// NewChain returns a Translator that consults static, then fallback. A nil
// fallback makes it equivalent to static.
func NewChain(static *Static, fallback Translator) *Chain {
	return &Chain{static: static, fallback: fallback}
}

func (c *Chain) Translate(ctx context.Context, text string) string {
	if out, ok := c.static.lookup(text); ok {
		return out
	}
	if c.fallback == nil || strings.TrimSpace(text) == "" {
		return text
	}
	return c.fallback.Translate(ctx, text)
}

// IsKannada reports whether a lang query value asks for Kannada output.
func IsKannada(lang string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(lang)), "kn")
}
