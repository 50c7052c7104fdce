package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestOpenAITTSSpeakSuccess(t *testing.T) {
	var payload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	client := NewOpenAITTSClient(OpenAITTSConfig{
		APIKey:  "test-key",
		Model:   "tts-1",
		Speed:   1.0,
		Format:  "mp3",
		BaseURL: server.URL,
	})

	audio, err := client.Speak(context.Background(), &SpeechRequest{
		Text:  "Welcome to the show.",
		Voice: "alloy",
	})
	if err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Fatalf("unexpected audio bytes: %q", string(audio))
	}
	if got, _ := payload["model"].(string); got != "tts-1" {
		t.Fatalf("expected model tts-1, got %q", got)
	}
	if got, _ := payload["voice"].(string); got != "alloy" {
		t.Fatalf("expected voice alloy, got %q", got)
	}
	if got, _ := payload["response_format"].(string); got != "mp3" {
		t.Fatalf("expected response_format mp3, got %q", got)
	}
	if got, _ := payload["input"].(string); got != "Welcome to the show." {
		t.Fatalf("unexpected input: %q", got)
	}
}

func TestOpenAITTSSpeakRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit","type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	client := NewOpenAITTSClient(OpenAITTSConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})

	_, err := client.Speak(context.Background(), &SpeechRequest{
		Text:  "Hello world.",
		Voice: "echo",
	})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	rle, ok := IsRateLimitError(err)
	if !ok {
		t.Fatalf("expected RateLimitError, got %T: %v", err, err)
	}
	if rle.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rle.StatusCode)
	}
	if rle.RetryAfter != 3*time.Second {
		t.Fatalf("expected RetryAfter=3s, got %v", rle.RetryAfter)
	}
}

func TestOpenAITTSSpeakValidation(t *testing.T) {
	client := NewOpenAITTSClient(OpenAITTSConfig{APIKey: "test-key"})

	if _, err := client.Speak(context.Background(), &SpeechRequest{Text: ""}); err == nil {
		t.Fatal("expected validation error for empty text")
	}

	long := strings.Repeat("a", openAITTSMaxInputChars+1)
	_, err := client.Speak(context.Background(), &SpeechRequest{Text: long, Voice: "alloy"})
	if err == nil {
		t.Fatal("expected validation error for oversized text")
	}
	if !strings.Contains(err.Error(), "character synthesis limit") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOpenAITTSListVoices(t *testing.T) {
	client := NewOpenAITTSClient(OpenAITTSConfig{APIKey: "test-key"})

	voices, err := client.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices() error = %v", err)
	}
	if len(voices) == 0 {
		t.Fatal("expected non-empty voice list")
	}

	want := map[string]bool{"alloy": false, "echo": false}
	for _, v := range voices {
		if _, ok := want[v.ID]; ok {
			want[v.ID] = true
		}
	}
	for id, found := range want {
		if !found {
			t.Fatalf("expected %s in voice list", id)
		}
	}
}
