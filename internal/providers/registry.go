package providers

import (
	"log/slog"
	"sync"
)

// Registry holds the configured model backends: the chat client, the
// optional assistant client, and the speech synthesis client. It supports
// config-driven instantiation and hot-reload with thread-safe access.
type Registry struct {
	mu        sync.RWMutex
	chat      ChatClient
	assistant AssistantClient
	tts       TTSClient
	cfg       RegistryConfig
	logger    *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// NewRegistryFromConfig creates a registry with backends built from
// configuration. The assistant backend is only created when a base URL is
// configured; the chat and TTS backends require an API key.
func NewRegistryFromConfig(cfg RegistryConfig) *Registry {
	r := NewRegistry()
	r.Reload(cfg)
	return r
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Chat returns the chat client, or nil when not configured.
func (r *Registry) Chat() ChatClient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chat
}

// Assistant returns the assistant client, or nil when not configured.
func (r *Registry) Assistant() AssistantClient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.assistant
}

// TTS returns the speech synthesis client, or nil when not configured.
func (r *Registry) TTS() TTSClient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tts
}

// HasChat reports whether a chat backend is configured.
func (r *Registry) HasChat() bool {
	return r.Chat() != nil
}

// HasAssistant reports whether the assistant backend is configured.
func (r *Registry) HasAssistant() bool {
	return r.Assistant() != nil
}

// HasTTS reports whether a speech synthesis backend is configured.
func (r *Registry) HasTTS() bool {
	return r.TTS() != nil
}

// SetChat replaces the chat client. Used by tests and one-shot runs.
func (r *Registry) SetChat(client ChatClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chat = client
}

// SetAssistant replaces the assistant client.
func (r *Registry) SetAssistant(client AssistantClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assistant = client
}

// SetTTS replaces the speech synthesis client.
func (r *Registry) SetTTS(client TTSClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tts = client
}

// Reload updates the registry from new configuration. Backends whose
// settings are unchanged keep their client instance; changed settings
// rebuild the client; removed settings drop it.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Chat backend.
	switch {
	case cfg.Chat.APIKey == "":
		if r.chat != nil {
			r.chat = nil
			r.logInfo("unregistered chat backend")
		}
	case r.chat == nil || needsChatUpdate(r.cfg.Chat, cfg.Chat):
		existed := r.chat != nil
		r.chat = NewOpenAIChatClient(OpenAIChatConfig{
			APIKey:  cfg.Chat.APIKey,
			Model:   cfg.Chat.Model,
			BaseURL: cfg.Chat.BaseURL,
			Timeout: cfg.Chat.Timeout,
		})
		if existed {
			r.logInfo("updated chat backend", "model", cfg.Chat.Model)
		} else {
			r.logInfo("registered chat backend", "model", cfg.Chat.Model)
		}
	}

	// Assistant backend. An empty base URL disables it entirely.
	switch {
	case cfg.Assistant.BaseURL == "":
		if r.assistant != nil {
			r.assistant = nil
			r.logInfo("unregistered assistant backend")
		}
	case r.assistant == nil || needsAssistantUpdate(r.cfg.Assistant, cfg.Assistant):
		existed := r.assistant != nil
		r.assistant = NewAssistantServiceClient(AssistantServiceConfig{
			BaseURL: cfg.Assistant.BaseURL,
			APIKey:  cfg.Assistant.APIKey,
			Timeout: cfg.Assistant.Timeout,
		})
		if existed {
			r.logInfo("updated assistant backend", "base_url", cfg.Assistant.BaseURL)
		} else {
			r.logInfo("registered assistant backend", "base_url", cfg.Assistant.BaseURL)
		}
	}

	// Speech synthesis shares the chat credentials.
	switch {
	case cfg.Chat.APIKey == "":
		if r.tts != nil {
			r.tts = nil
			r.logInfo("unregistered speech backend")
		}
	case r.tts == nil || needsTTSUpdate(r.cfg, cfg):
		existed := r.tts != nil
		r.tts = NewOpenAITTSClient(OpenAITTSConfig{
			APIKey:  cfg.Chat.APIKey,
			Model:   cfg.TTS.Model,
			Speed:   cfg.TTS.Speed,
			Format:  cfg.TTS.Format,
			Timeout: cfg.Chat.Timeout,
			BaseURL: cfg.Chat.BaseURL,
		})
		if existed {
			r.logInfo("updated speech backend", "model", cfg.TTS.Model)
		} else {
			r.logInfo("registered speech backend", "model", cfg.TTS.Model)
		}
	}

	r.cfg = cfg
}

func (r *Registry) logInfo(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Info(msg, args...)
	}
}

func needsChatUpdate(old, next ChatConfig) bool {
	return old.APIKey != next.APIKey ||
		old.Model != next.Model ||
		old.BaseURL != next.BaseURL ||
		old.Timeout != next.Timeout
}

func needsAssistantUpdate(old, next AssistantConfig) bool {
	return old.BaseURL != next.BaseURL ||
		old.APIKey != next.APIKey ||
		old.Timeout != next.Timeout
}

func needsTTSUpdate(old, next RegistryConfig) bool {
	return old.Chat.APIKey != next.Chat.APIKey ||
		old.Chat.BaseURL != next.Chat.BaseURL ||
		old.Chat.Timeout != next.Chat.Timeout ||
		old.TTS.Model != next.TTS.Model ||
		old.TTS.Speed != next.TTS.Speed ||
		old.TTS.Format != next.TTS.Format
}
