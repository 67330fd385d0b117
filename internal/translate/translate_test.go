package translate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
)

type labels map[string]string

func (l labels) Label(key string) (string, bool) {
	v, ok := l[key]
	return v, ok
}

type fakeModel struct {
	replies []string
	errs    []error
	calls   int
}

func (m *fakeModel) GenerateContent(_ context.Context, _ ...genai.Part) (*genai.GenerateContentResponse, error) {
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	text := ""
	if i < len(m.replies) {
		text = m.replies[i]
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Text(text)}}}},
	}, nil
}

func TestStatic(t *testing.T) {
	s := NewStatic(labels{"high": "ಹೆಚ್ಚು"})
	ctx := context.Background()

	if got := s.Translate(ctx, "high"); got != "ಹೆಚ್ಚು" {
		t.Errorf("known label: got %q", got)
	}
	if got := s.Translate(ctx, "Spray neem oil 3%."); got != "Spray neem oil 3%." {
		t.Errorf("unknown text should pass through, got %q", got)
	}
}

func TestGeminiRetriesAndCaches(t *testing.T) {
	m := &fakeModel{errs: []error{errors.New("quota")}, replies: []string{"", "  ಬೇವಿನ ಎಣ್ಣೆ ಸಿಂಪಡಿಸಿ  "}}
	g := newGemini(m, GeminiConfig{MaxRetries: 2, RetryDelay: time.Millisecond}, zap.NewNop())
	ctx := context.Background()

	if got := g.Translate(ctx, "Spray neem oil"); got != "ಬೇವಿನ ಎಣ್ಣೆ ಸಿಂಪಡಿಸಿ" {
		t.Fatalf("got %q", got)
	}
	if got := g.Translate(ctx, "Spray neem oil"); got != "ಬೇವಿನ ಎಣ್ಣೆ ಸಿಂಪಡಿಸಿ" || m.calls != 2 {
		t.Fatalf("cached: got %q after %d calls", got, m.calls)
	}
}

func TestGeminiFallsBackToSource(t *testing.T) {
	m := &fakeModel{replies: []string{"", " "}}
	g := newGemini(m, GeminiConfig{MaxRetries: 2, RetryDelay: time.Millisecond}, zap.NewNop())

	if got := g.Translate(context.Background(), "Remove infected plants"); got != "Remove infected plants" {
		t.Fatalf("got %q", got)
	}
	if got := g.Translate(context.Background(), " "); got != " " || m.calls != 2 {
		t.Fatalf("blank text should not reach the model, calls %d", m.calls)
	}
}

func TestChain(t *testing.T) {
	m := &fakeModel{replies: []string{"ಅನುವಾದ"}}
	c := NewChain(NewStatic(labels{"low": "ಕಡಿಮೆ"}), newGemini(m, GeminiConfig{}, zap.NewNop()))
	ctx := context.Background()

	if got := c.Translate(ctx, "low"); got != "ಕಡಿಮೆ" || m.calls != 0 {
		t.Errorf("label should win: got %q, model calls %d", got, m.calls)
	}
	if got := c.Translate(ctx, "Scout fields daily"); got != "ಅನುವಾದ" {
		t.Errorf("free text: got %q", got)
	}

	staticOnly := NewChain(NewStatic(nil), nil)
	if got := staticOnly.Translate(ctx, "low"); got != "low" {
		t.Errorf("no sources: got %q", got)
	}
}

func TestIsKannada(t *testing.T) {
	for lang, want := range map[string]bool{"kn": true, "KN-in": true, " kn_IN": true, "en": false, "": false} {
		if got := IsKannada(lang); got != want {
			t.Errorf("IsKannada(%q) = %v", lang, got)
		}
	}
}

func TestGeminiCacheEvictsOldest(t *testing.T) {
	m := &fakeModel{replies: []string{"ಒಂದು", "ಎರಡು", "ಮೂರು", "ಒಂದು"}}
	g := newGemini(m, GeminiConfig{MaxRetries: 1, RetryDelay: time.Millisecond, CacheSize: 2}, zap.NewNop())
	ctx := context.Background()

	g.Translate(ctx, "one")
	g.Translate(ctx, "two")
	g.Translate(ctx, "three")
	if m.calls != 3 {
		t.Fatalf("expected 3 model calls, got %d", m.calls)
	}

	if got := g.Translate(ctx, "three"); got != "ಮೂರು" || m.calls != 3 {
		t.Errorf("recent entry: got %q after %d calls", got, m.calls)
	}
	if got := g.Translate(ctx, "one"); got != "ಒಂದು" || m.calls != 4 {
		t.Errorf("evicted entry should be regenerated: got %q after %d calls", got, m.calls)
	}
}
