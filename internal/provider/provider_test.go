package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/clduab11/poker-helper/internal/config"
	"github.com/clduab11/poker-helper/internal/equity"
	"github.com/clduab11/poker-helper/internal/game"
)

// #region fixtures

func promptSnapshot(t *testing.T, snap game.GameSnapshot) string {
	t.Helper()
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	return "Current table state:\n" + string(data) + "\nRespond with JSON."
}

func testSnapshot(heroCards ...string) game.GameSnapshot {
	cards := make([]game.Card, 0, len(heroCards))
	for _, c := range heroCards {
		cards = append(cards, game.MustCard(c))
	}
	return game.GameSnapshot{
		Phase: game.PhasePreflop,
		Players: []game.Player{
			{Seat: 1, Name: "hero", Stack: 200, Cards: cards, Active: true},
			{Seat: 2, Name: "villain", Stack: 180, Active: true},
		},
		Pot:      10,
		HeroSeat: 1,
	}
}

// fakeProvider scripts a sequence of responses for retry tests.
type fakeProvider struct {
	mu      sync.Mutex
	errs    []error
	calls   int
	callsAt []time.Time
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Call(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsAt = append(f.callsAt, time.Now())
	f.calls++
	if f.calls <= len(f.errs) && f.errs[f.calls-1] != nil {
		return "", f.errs[f.calls-1]
	}
	return `{"action":"call"}`, nil
}

// #endregion fixtures

// #region remote

func TestOpenAICallParsesContent(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"action\":\"raise\"}"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAI("sk-test", "gpt-4o")
	p.SetBaseURL(srv.URL)
	out, err := p.Call(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if out != `{"action":"raise"}` {
		t.Fatalf("unexpected content: %q", out)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotPath != "/chat/completions" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
}

func TestOpenAIClassifiesRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAI("sk-test", "gpt-4o")
	p.SetBaseURL(srv.URL)
	_, err := p.Call(context.Background(), "prompt")
	if !IsRateLimit(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestOpenAIServerErrorIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewOpenAI("sk-test", "gpt-4o")
	p.SetBaseURL(srv.URL)
	_, err := p.Call(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsRateLimit(err) {
		t.Fatalf("500 must not classify as rate limit: %v", err)
	}
}

func TestAnthropicCallParsesContent(t *testing.T) {
	var gotKey, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		w.Write([]byte(`{"content":[{"text":"{\"action\":\"fold\"}"}]}`))
	}))
	defer srv.Close()

	p := NewAnthropic("sk-ant", "claude-sonnet-4-5")
	p.SetBaseURL(srv.URL)
	out, err := p.Call(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if out != `{"action":"fold"}` {
		t.Fatalf("unexpected content: %q", out)
	}
	if gotKey != "sk-ant" {
		t.Fatalf("unexpected api key header: %q", gotKey)
	}
	if gotVersion == "" {
		t.Fatal("missing anthropic-version header")
	}
}

func TestAnthropicOverloadedIsRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
	}))
	defer srv.Close()

	p := NewAnthropic("sk-ant", "claude-sonnet-4-5")
	p.SetBaseURL(srv.URL)
	_, err := p.Call(context.Background(), "prompt")
	if !IsRateLimit(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

// #endregion remote

// #region local

func TestLocalStrongHandRaises(t *testing.T) {
	l := NewLocal(equity.NewCalculator(2000, 1))
	out, err := l.Call(context.Background(), promptSnapshot(t, testSnapshot("Ah", "As")))
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	var rec game.Recommendation
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("local output is not a recommendation: %v", err)
	}
	if rec.Action != game.ActionRaise {
		t.Fatalf("expected raise with pocket aces, got %s", rec.Action)
	}
	if rec.Confidence < 0.8 {
		t.Fatalf("expected high confidence, got %.2f", rec.Confidence)
	}
}

func TestLocalWeakHandFoldsFacingBet(t *testing.T) {
	l := NewLocal(equity.NewCalculator(2000, 1))
	snap := testSnapshot("7h", "2c")
	snap.CurrentBet = 50
	out, err := l.Call(context.Background(), promptSnapshot(t, snap))
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	var rec game.Recommendation
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("decode recommendation: %v", err)
	}
	if rec.Action != game.ActionFold {
		t.Fatalf("expected fold with 72o facing a large bet, got %s", rec.Action)
	}
}

func TestLocalRejectsPromptWithoutSnapshot(t *testing.T) {
	l := NewLocal(equity.NewCalculator(100, 1))
	if _, err := l.Call(context.Background(), "no json here"); err == nil {
		t.Fatal("expected error for prompt without snapshot")
	}
}

// #endregion local

// #region retry

func retryConfig() config.Config {
	cfg := config.Default()
	cfg.MinBackoffMs = 30
	cfg.MaxBackoffMs = 120
	cfg.MaxRetries = 3
	return cfg
}

func TestRetryRecoversFromRateLimit(t *testing.T) {
	fake := &fakeProvider{errs: []error{ErrRateLimited, ErrRateLimited, nil}}
	r := NewRetrying(fake, retryConfig())

	out, err := r.Call(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if out != `{"action":"call"}` {
		t.Fatalf("unexpected output: %q", out)
	}
	if fake.calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", fake.calls)
	}
	if gap := fake.callsAt[1].Sub(fake.callsAt[0]); gap < 30*time.Millisecond {
		t.Fatalf("second attempt too soon after first: %v", gap)
	}
}

func TestRetryDoesNotRetryPermanentErrors(t *testing.T) {
	boom := errors.New("bad request")
	fake := &fakeProvider{errs: []error{boom, nil}}
	r := NewRetrying(fake, retryConfig())

	_, err := r.Call(context.Background(), "prompt")
	if !errors.Is(err, boom) {
		t.Fatalf("expected the permanent error, got %v", err)
	}
	if fake.calls != 1 {
		t.Fatalf("permanent error must not retry, got %d attempts", fake.calls)
	}
}

func TestRetryExhaustsBudget(t *testing.T) {
	fake := &fakeProvider{errs: []error{ErrRateLimited, ErrRateLimited, ErrRateLimited, ErrRateLimited, ErrRateLimited}}
	cfg := retryConfig()
	cfg.MaxRetries = 2
	r := NewRetrying(fake, cfg)

	_, err := r.Call(context.Background(), "prompt")
	if !IsRateLimit(err) {
		t.Fatalf("expected rate limit error after exhaustion, got %v", err)
	}
	if fake.calls != 3 {
		t.Fatalf("expected initial attempt plus 2 retries, got %d", fake.calls)
	}
}

func TestRetryApplyConfigTightensBudget(t *testing.T) {
	fake := &fakeProvider{errs: []error{ErrRateLimited, ErrRateLimited, ErrRateLimited, ErrRateLimited}}
	r := NewRetrying(fake, retryConfig())

	updated := retryConfig()
	updated.MaxRetries = 0
	r.ApplyConfig(updated)

	if _, err := r.Call(context.Background(), "prompt"); !IsRateLimit(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if fake.calls != 1 {
		t.Fatalf("a zero retry budget means a single attempt, got %d", fake.calls)
	}
}

// #endregion retry

// #region constructor

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = "psychic"
	if _, err := New(cfg); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestNewSelectsByName(t *testing.T) {
	for _, name := range []string{"openai", "anthropic", "local"} {
		cfg := config.Default()
		cfg.Provider = name
		cfg.APIKey = "test-key"
		p, err := New(cfg)
		if err != nil {
			t.Fatalf("New(%s) failed: %v", name, err)
		}
		if !strings.EqualFold(p.Name(), name) {
			t.Fatalf("provider %s reports name %s", name, p.Name())
		}
	}
}

// #endregion constructor
