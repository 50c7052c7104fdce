package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAITTSName         = "openai-tts"
	openAITTSDefaultModel = "tts-1"
	openAITTSDefaultVoice = "alloy"

	// API cap on input characters per synthesis call. Sentence splitting
	// upstream keeps utterances well below this.
	openAITTSMaxInputChars = 4096
)

// OpenAITTSConfig holds configuration for the speech synthesis client.
type OpenAITTSConfig struct {
	APIKey     string
	Model      string        // "tts-1" (default), "tts-1-hd"
	Speed      float64       // 0.25-4.0
	Format     string        // "mp3" (default)
	RateLimit  int           // Requests per minute
	Timeout    time.Duration // HTTP timeout
	BaseURL    string        // Optional (tests)
	HTTPClient *http.Client  // Optional (tests)
}

// OpenAITTSClient implements TTSClient using the official OpenAI SDK.
type OpenAITTSClient struct {
	apiKey  string
	model   string
	speed   float64
	format  string
	limiter *RateLimiter
	client  openai.Client
}

// NewOpenAITTSClient creates a new speech synthesis client.
func NewOpenAITTSClient(cfg OpenAITTSConfig) *OpenAITTSClient {
	if cfg.Model == "" {
		cfg.Model = openAITTSDefaultModel
	}
	if cfg.Speed <= 0 {
		cfg.Speed = 1.0
	}
	if cfg.Format == "" {
		cfg.Format = "mp3"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAITTSClient{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		speed:   cfg.Speed,
		format:  cfg.Format,
		limiter: NewRateLimiter(cfg.RateLimit),
		client:  openai.NewClient(opts...),
	}
}

// Name returns the provider identifier.
func (c *OpenAITTSClient) Name() string {
	return OpenAITTSName
}

// Model returns the configured synthesis model.
func (c *OpenAITTSClient) Model() string {
	return c.model
}

// Speak converts one utterance of text into encoded audio bytes.
func (c *OpenAITTSClient) Speak(ctx context.Context, req *SpeechRequest) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	if len(text) > openAITTSMaxInputChars {
		return nil, fmt.Errorf("text exceeds %d character synthesis limit (%d)", openAITTSMaxInputChars, len(text))
	}

	voice := strings.TrimSpace(req.Voice)
	if voice == "" {
		voice = openAITTSDefaultVoice
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	speed := req.Speed
	if speed <= 0 {
		speed = c.speed
	}
	format := req.Format
	if format == "" {
		format = c.format
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModel(model),
		Voice:          openai.AudioSpeechNewParamsVoice(voice),
		ResponseFormat: normalizeOpenAIFormat(format),
		Speed:          openai.Float(speed),
	})
	if err != nil {
		mapped := mapOpenAIError(OpenAITTSName, err)
		if rle, ok := IsRateLimitError(mapped); ok {
			c.limiter.Record429(rle.RetryAfter)
		}
		return nil, mapped
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading audio response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio response")
	}
	return audio, nil
}

// ListVoices returns the built-in voice list.
func (c *OpenAITTSClient) ListVoices(_ context.Context) ([]Voice, error) {
	return OpenAIVoices(), nil
}

// OpenAIVoices is the static catalog of synthesis voices.
func OpenAIVoices() []Voice {
	names := []struct{ id, desc string }{
		{"alloy", "Neutral, balanced"},
		{"ash", "Warm, engaged"},
		{"ballad", "Soft, expressive"},
		{"coral", "Bright, friendly"},
		{"echo", "Clear, articulate"},
		{"fable", "Expressive, animated"},
		{"nova", "Energetic, upbeat"},
		{"onyx", "Deep, authoritative"},
		{"sage", "Calm, measured"},
		{"shimmer", "Light, melodic"},
		{"verse", "Versatile, dynamic"},
	}

	voices := make([]Voice, 0, len(names))
	for _, n := range names {
		voices = append(voices, Voice{
			ID:          n.id,
			Name:        n.id,
			Description: n.desc,
		})
	}
	return voices
}

func normalizeOpenAIFormat(format string) openai.AudioSpeechNewParamsResponseFormat {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "mp3":
		return openai.AudioSpeechNewParamsResponseFormatMP3
	case "opus":
		return openai.AudioSpeechNewParamsResponseFormatOpus
	case "aac":
		return openai.AudioSpeechNewParamsResponseFormatAAC
	case "flac":
		return openai.AudioSpeechNewParamsResponseFormatFLAC
	case "wav":
		return openai.AudioSpeechNewParamsResponseFormatWAV
	case "pcm":
		return openai.AudioSpeechNewParamsResponseFormatPCM
	default:
		return openai.AudioSpeechNewParamsResponseFormatMP3
	}
}

var _ TTSClient = (*OpenAITTSClient)(nil)
var _ VoicesLister = (*OpenAITTSClient)(nil)
