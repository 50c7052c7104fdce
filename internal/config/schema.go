package config

import "runtime"

// Config holds podforge configuration.
// Stored at: ~/.podforge/config.yaml
type Config struct {
	Server      ServerCfg      `mapstructure:"server" yaml:"server" json:"server"`
	Log         LogCfg         `mapstructure:"log" yaml:"log" json:"log"`
	Providers   ProvidersCfg   `mapstructure:"providers" yaml:"providers" json:"providers"`
	TTS         TTSCfg         `mapstructure:"tts" yaml:"tts" json:"tts"`
	Performance PerformanceCfg `mapstructure:"performance" yaml:"performance" json:"performance"`
	Agents      AgentsCfg      `mapstructure:"agents" yaml:"agents" json:"agents"`
	Constraints ConstraintsCfg `mapstructure:"constraints" yaml:"constraints" json:"constraints"`

	// Closed enumeration sets for brief validation and tone parsing.
	AllowedMoods  []string `mapstructure:"allowedMoods" yaml:"allowedMoods" json:"allowedMoods"`
	AllowedStyles []string `mapstructure:"allowedStyles" yaml:"allowedStyles" json:"allowedStyles"`
	AllowedTones  []string `mapstructure:"allowedTones" yaml:"allowedTones" json:"allowedTones"`
}

// ServerCfg configures the HTTP listener.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host" json:"host"`
	Port int    `mapstructure:"port" yaml:"port" json:"port"`
}

// LogCfg configures logging.
type LogCfg struct {
	Level string `mapstructure:"level" yaml:"level" json:"level"` // debug, info, warn, error
}

// ProvidersCfg configures the model backends.
type ProvidersCfg struct {
	Chat      ChatProviderCfg      `mapstructure:"chat" yaml:"chat" json:"chat"`
	Assistant AssistantProviderCfg `mapstructure:"assistant" yaml:"assistant" json:"assistant"`
	// TimeoutSeconds bounds every model and TTS call.
	TimeoutSeconds int `mapstructure:"timeoutSeconds" yaml:"timeoutSeconds" json:"timeoutSeconds"`
}

// ChatProviderCfg configures the generic chat backend (backend B).
type ChatProviderCfg struct {
	APIKey  string `mapstructure:"apiKey" yaml:"apiKey" json:"apiKey"` // supports ${ENV_VAR} syntax
	Model   string `mapstructure:"model" yaml:"model" json:"model"`
	BaseURL string `mapstructure:"baseUrl" yaml:"baseUrl" json:"baseUrl"` // optional OpenAI-compatible override
}

// AssistantProviderCfg configures the specialized remote agent service
// (backend A). An empty BaseURL disables the backend entirely.
type AssistantProviderCfg struct {
	BaseURL string `mapstructure:"baseUrl" yaml:"baseUrl" json:"baseUrl"`
	APIKey  string `mapstructure:"apiKey" yaml:"apiKey" json:"apiKey"` // supports ${ENV_VAR} syntax
}

// TTSCfg configures speech synthesis.
type TTSCfg struct {
	Model  string    `mapstructure:"model" yaml:"model" json:"model"`
	Voices VoicesCfg `mapstructure:"voices" yaml:"voices" json:"voices"`
	Speed  float64   `mapstructure:"speed" yaml:"speed" json:"speed"`
	Format string    `mapstructure:"format" yaml:"format" json:"format"`
}

// VoicesCfg maps the two hosts to provider voice ids.
type VoicesCfg struct {
	Host1 string `mapstructure:"host1" yaml:"host1" json:"host1"`
	Host2 string `mapstructure:"host2" yaml:"host2" json:"host2"`
}

// PerformanceCfg holds the word-budget and concurrency knobs.
type PerformanceCfg struct {
	WordsPerMinute      int     `mapstructure:"wordsPerMinute" yaml:"wordsPerMinute" json:"wordsPerMinute"`
	TolerancePercent    float64 `mapstructure:"tolerancePercent" yaml:"tolerancePercent" json:"tolerancePercent"`
	MaxConcurrentAgents int     `mapstructure:"maxConcurrentAgents" yaml:"maxConcurrentAgents" json:"maxConcurrentAgents"`
	MaxConcurrentJobs   int     `mapstructure:"maxConcurrentJobs" yaml:"maxConcurrentJobs" json:"maxConcurrentJobs"`
}

// AgentsCfg holds the optional remote agent ids, one per stage.
// An unset id forces the chat fallback for that stage.
type AgentsCfg struct {
	PlannerID    string `mapstructure:"plannerId" yaml:"plannerId" json:"plannerId"`
	ResearcherID string `mapstructure:"researcherId" yaml:"researcherId" json:"researcherId"`
	OutlinerID   string `mapstructure:"outlinerId" yaml:"outlinerId" json:"outlinerId"`
	ScripterID   string `mapstructure:"scripterId" yaml:"scripterId" json:"scripterId"`
	ToneID       string `mapstructure:"toneId" yaml:"toneId" json:"toneId"`
	EditorID     string `mapstructure:"editorId" yaml:"editorId" json:"editorId"`
}

// ConstraintsCfg bounds acceptable briefs.
type ConstraintsCfg struct {
	MinChapters    int `mapstructure:"minChapters" yaml:"minChapters" json:"minChapters"`
	MaxChapters    int `mapstructure:"maxChapters" yaml:"maxChapters" json:"maxChapters"`
	MinDurationMin int `mapstructure:"minDurationMin" yaml:"minDurationMin" json:"minDurationMin"`
	MaxDurationMin int `mapstructure:"maxDurationMin" yaml:"maxDurationMin" json:"maxDurationMin"`
	MaxTopicLength int `mapstructure:"maxTopicLength" yaml:"maxTopicLength" json:"maxTopicLength"`
	MaxFocusLength int `mapstructure:"maxFocusLength" yaml:"maxFocusLength" json:"maxFocusLength"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Log: LogCfg{
			Level: "info",
		},
		Providers: ProvidersCfg{
			Chat: ChatProviderCfg{
				APIKey: "${OPENAI_API_KEY}",
				Model:  "gpt-4o",
			},
			Assistant: AssistantProviderCfg{
				APIKey: "${PODFORGE_ASSISTANT_API_KEY}",
			},
			TimeoutSeconds: 60,
		},
		TTS: TTSCfg{
			Model: "tts-1",
			Voices: VoicesCfg{
				Host1: "alloy",
				Host2: "echo",
			},
			Speed:  1.0,
			Format: "mp3",
		},
		Performance: PerformanceCfg{
			WordsPerMinute:      150,
			TolerancePercent:    5,
			MaxConcurrentAgents: 5,
			MaxConcurrentJobs:   runtime.NumCPU(),
		},
		Constraints: ConstraintsCfg{
			MinChapters:    1,
			MaxChapters:    10,
			MinDurationMin: 1,
			MaxDurationMin: 120,
			MaxTopicLength: 500,
			MaxFocusLength: 1000,
		},
		AllowedMoods:  []string{"neutral", "excited", "calm", "reflective", "enthusiastic"},
		AllowedStyles: []string{"storytelling", "conversational", "interview", "educational", "narrative"},
		AllowedTones: []string{
			"upbeat", "calm", "excited", "reflective", "suspenseful",
			"skeptical", "humorous", "serious", "curious", "confident",
		},
	}
}

// AgentID returns the configured remote agent id for a stage, or "".
func (c *Config) AgentID(stage string) string {
	switch stage {
	case "planner":
		return c.Agents.PlannerID
	case "researcher":
		return c.Agents.ResearcherID
	case "outliner":
		return c.Agents.OutlinerID
	case "scripter":
		return c.Agents.ScripterID
	case "tone":
		return c.Agents.ToneID
	case "editor":
		return c.Agents.EditorID
	}
	return ""
}
