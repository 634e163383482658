package tts_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/teslashibe/go-visnav/pkg/tts"
)

func TestMockProvider(t *testing.T) {
	mock := tts.NewMock()
	ctx := context.Background()

	t.Run("Synthesize returns audio", func(t *testing.T) {
		result, err := mock.Synthesize(ctx, "Go straight.")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Audio) == 0 {
			t.Error("expected audio data")
		}
		if result.Duration <= 0 {
			t.Errorf("expected positive duration, got %v", result.Duration)
		}
	})

	t.Run("Calls are tracked", func(t *testing.T) {
		_ = mock.Health(ctx)
		if mock.CallCount("Synthesize") != 1 {
			t.Errorf("expected 1 Synthesize call, got %d", mock.CallCount("Synthesize"))
		}
		if got := mock.Texts(); len(got) != 1 || got[0] != "Go straight." {
			t.Errorf("Texts: got %v", got)
		}
	})
}

func TestMockWithError(t *testing.T) {
	testErr := errors.New("test error")
	mock := tts.WithError(testErr)

	if _, err := mock.Synthesize(context.Background(), "Hello"); !errors.Is(err, testErr) {
		t.Errorf("expected test error, got %v", err)
	}
	if err := mock.Health(context.Background()); !errors.Is(err, testErr) {
		t.Errorf("expected test error from Health, got %v", err)
	}
}

func TestEstimateDuration(t *testing.T) {
	if d := tts.EstimateDuration("", 1); d != 0 {
		t.Errorf("empty text: got %v, want 0", d)
	}
	slow := tts.EstimateDuration("The cup is very close.", 0.85)
	normal := tts.EstimateDuration("The cup is very close.", 1.0)
	if slow <= normal {
		t.Errorf("slower speed should take longer: %v <= %v", slow, normal)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		opts []tts.Option
		want error
	}{
		{"missing key", nil, tts.ErrNoAPIKey},
		{"speed too low", []tts.Option{tts.WithAPIKey("k"), tts.WithSpeed(0.1)}, tts.ErrInvalidSpeed},
		{"speed too high", []tts.Option{tts.WithAPIKey("k"), tts.WithSpeed(5)}, tts.ErrInvalidSpeed},
		{"valid", []tts.Option{tts.WithAPIKey("k")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tts.DefaultConfig()
			cfg.Apply(tt.opts...)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOpenAISynthesize(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	p, err := tts.NewOpenAI(tts.WithAPIKey("test-key"), tts.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	defer p.Close()

	result, err := p.Synthesize(context.Background(), "You have reached the cup.")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(result.Audio) != "mp3-bytes" {
		t.Errorf("audio: got %q", result.Audio)
	}
	if result.Format.Encoding != tts.EncodingMP3 {
		t.Errorf("encoding: got %s", result.Format.Encoding)
	}
	if got["speed"] != tts.DefaultSpeed {
		t.Errorf("speed: got %v, want %v", got["speed"], tts.DefaultSpeed)
	}
	if got["input"] != "You have reached the cup." {
		t.Errorf("input: got %v", got["input"])
	}
}

func TestOpenAIRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	p, err := tts.NewOpenAI(
		tts.WithAPIKey("k"),
		tts.WithBaseURL(server.URL),
		tts.WithRetry(2, time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}

	if _, err := p.Synthesize(context.Background(), "hello"); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("attempts: got %d, want 3", attempts.Load())
	}
}

func TestOpenAIAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","code":"invalid_api_key"}}`))
	}))
	defer server.Close()

	p, _ := tts.NewOpenAI(tts.WithAPIKey("k"), tts.WithBaseURL(server.URL))

	_, err := p.Synthesize(context.Background(), "hello")
	var apiErr *tts.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Code != "invalid_api_key" {
		t.Errorf("unexpected error fields: %+v", apiErr)
	}
	if apiErr.IsRetryable() {
		t.Error("401 must not be retryable")
	}
}

func TestOpenAIRejectsEmptyText(t *testing.T) {
	p, _ := tts.NewOpenAI(tts.WithAPIKey("k"), tts.WithBaseURL("http://127.0.0.1:1"))
	if _, err := p.Synthesize(context.Background(), "  "); !errors.Is(err, tts.ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

func TestChainFallback(t *testing.T) {
	failing := tts.WithError(errors.New("offline"))
	backup := tts.NewMock()

	chain, err := tts.NewChain(nil, failing, backup)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	if _, err := chain.Synthesize(context.Background(), "hello"); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if backup.CallCount("Synthesize") != 1 {
		t.Error("expected backup provider to be used")
	}
	if err := chain.Health(context.Background()); err != nil {
		t.Errorf("Health: %v", err)
	}
}

func TestChainAllFail(t *testing.T) {
	chain, _ := tts.NewChain(nil, tts.WithError(errors.New("a")), tts.WithError(errors.New("b")))

	_, err := chain.Synthesize(context.Background(), "hello")
	var chainErr *tts.ChainError
	if !errors.As(err, &chainErr) || len(chainErr.Errors) != 2 {
		t.Fatalf("expected ChainError with 2 errors, got %v", err)
	}

	if _, err := tts.NewChain(nil); !errors.Is(err, tts.ErrProviderUnavailable) {
		t.Errorf("empty chain: got %v", err)
	}
}

func TestSilent(t *testing.T) {
	s := tts.NewSilent(tts.DefaultSpeed)
	text := "Go straight. The cup is very close."

	result, err := s.Synthesize(context.Background(), text)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(result.Audio) != 0 {
		t.Errorf("expected no audio, got %d bytes", len(result.Audio))
	}
	if want := tts.EstimateDuration(text, tts.DefaultSpeed); result.Duration != want {
		t.Errorf("Duration: got %v, want %v", result.Duration, want)
	}
	if _, err := s.Synthesize(context.Background(), " "); !errors.Is(err, tts.ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

func TestChainFallsBackToSilentOnOutage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	voice, err := tts.NewOpenAI(tts.WithAPIKey("k"), tts.WithBaseURL(server.URL), tts.WithRetry(0, time.Millisecond))
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	chain, err := tts.NewChain(nil, voice, tts.NewSilent(1))
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	defer chain.Close()

	result, err := chain.Synthesize(context.Background(), "hello there")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(result.Audio) != 0 || result.Duration != tts.EstimateDuration("hello there", 1) {
		t.Errorf("expected silent result, got %d bytes for %v", len(result.Audio), result.Duration)
	}
}

func TestChainStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backup := tts.NewMock()
	chain, _ := tts.NewChain(nil, tts.NewSilent(1), backup)
	if _, err := chain.Synthesize(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if backup.CallCount("Synthesize") != 0 {
		t.Error("expected chain to stop before the next provider")
	}
}
