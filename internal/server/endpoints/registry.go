package endpoints

import (
	"time"

	"github.com/podforge/podforge/internal/api"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	SwaggerSpecPath string
	Started         time.Time
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{Started: cfg.Started},

		// Podcast job endpoints
		&CreatePodcastEndpoint{},
		&ListPodcastsEndpoint{},
		&GetPodcastEndpoint{},
		&CancelPodcastEndpoint{},
		&ValidateBriefEndpoint{},
		&PodcastArtifactsEndpoint{},
		&PodcastAudioEndpoint{},
		&PodcastMetricsEndpoint{},

		// LLM call history endpoints
		&ListLLMCallsEndpoint{},
		&GetLLMCallEndpoint{},
		&LLMCallCountsEndpoint{},

		// Metrics endpoints
		&MetricsSummaryEndpoint{},

		// Voice and settings endpoints
		&ListVoicesEndpoint{},
		&GetSettingsEndpoint{},

		// Swagger/OpenAPI endpoints
		&SwaggerEndpoint{SpecPath: cfg.SwaggerSpecPath},
		&SwaggerUIEndpoint{},
	}
}

// PodcastCommands returns the endpoints grouped under "podcasts".
func PodcastCommands() []api.Endpoint {
	return []api.Endpoint{
		&CreatePodcastEndpoint{},
		&ListPodcastsEndpoint{},
		&GetPodcastEndpoint{},
		&CancelPodcastEndpoint{},
		&ValidateBriefEndpoint{},
		&PodcastArtifactsEndpoint{},
		&PodcastAudioEndpoint{},
		&PodcastMetricsEndpoint{},
	}
}

// LLMCallCommands returns the endpoints grouped under "llmcalls".
func LLMCallCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListLLMCallsEndpoint{},
		&GetLLMCallEndpoint{},
		&LLMCallCountsEndpoint{},
	}
}
