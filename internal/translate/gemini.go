package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const kannadaPrompt = `Translate the following agricultural pest advisory into simple,
farmer-friendly Kannada. Keep technical accuracy. Reply with the translation only.

Text:
%s`

var errEmptyResponse = errors.New("empty response from gemini")

// GeminiConfig configures the Gemini translator.
type GeminiConfig struct {
	APIKey     string
	ModelName  string // Default: "gemini-1.5-flash"
	MaxRetries int
	RetryDelay time.Duration
	CacheSize  int // Default: 1024
}

// generator is the slice of *genai.GenerativeModel the translator needs.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini translates free text with a Gemini model. Results are memoized in
// a bounded LRU because alert reasons and measures repeat across farmers.
type Gemini struct {
	client     *genai.Client
	model      generator
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
	cache      *lru.Cache[string, string]
}

// NewGemini creates a Gemini-backed translator.
func NewGemini(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.ModelName == "" {
		cfg.ModelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.ModelName)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr[float32](0.2),
		MaxOutputTokens: genai.Ptr[int32](400),
	}

	logger.Info("gemini translator initialized", zap.String("model", cfg.ModelName))

	g := newGemini(model, cfg, logger)
	g.client = client
	return g, nil
}

func newGemini(model generator, cfg GeminiConfig, logger *zap.Logger) *Gemini {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 1024
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, string](cfg.CacheSize)
	return &Gemini{
		model:      model,
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		cache:      cache,
	}
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Translate returns the Kannada rendering of text, or text itself when the
// model fails.
func (g *Gemini) Translate(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	if cached, ok := g.cache.Get(text); ok {
		return cached
	}

	out, err := g.generate(ctx, text)
	if err != nil {
		g.logger.Warn("translation failed; returning source text", zap.Error(err))
		return text
	}

	g.cache.Add(text, out)
	return out
}

func (g *Gemini) generate(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(kannadaPrompt, text)

	var lastErr error
	for attempt := 0; attempt < g.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(g.retryDelay):
			}
		}

		resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = fmt.Errorf("gemini API error: %w", err)
			g.logger.Debug("gemini request failed", zap.Error(err), zap.Int("attempt", attempt+1))
			continue
		}

		if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
			len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = errEmptyResponse
			continue
		}
		part, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
		if !ok || strings.TrimSpace(string(part)) == "" {
			lastErr = errEmptyResponse
			continue
		}
		return strings.TrimSpace(string(part)), nil
	}
	return "", fmt.Errorf("failed after %d attempts: %w", g.maxRetries, lastErr)
}
