package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/podforge/podforge/internal/api"
	"github.com/podforge/podforge/internal/providers"
	"github.com/podforge/podforge/internal/svcctx"
)

// HostAssignments maps the two hosts to their configured voice ids.
type HostAssignments struct {
	Host1 string `json:"host1"`
	Host2 string `json:"host2"`
}

// ListVoicesResponse contains the voice catalog and host mapping.
type ListVoicesResponse struct {
	Voices []providers.Voice `json:"voices"`
	Hosts  HostAssignments   `json:"hosts"`
	Model  string            `json:"model,omitempty"`
}

// ListVoicesEndpoint handles GET /api/v1/voices.
type ListVoicesEndpoint struct{}

func (e *ListVoicesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/voices", e.handler
}

func (e *ListVoicesEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List TTS voices
//	@Description	List the available synthesis voices and the current host assignments
//	@Tags			voices
//	@Produce		json
//	@Success		200	{object}	ListVoicesResponse
//	@Router			/api/v1/voices [get]
func (e *ListVoicesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Prefer the live catalog when the backend can enumerate voices;
	// fall back to the static OpenAI catalog.
	voiceList := providers.OpenAIVoices()
	if registry := svcctx.RegistryFrom(ctx); registry != nil && registry.HasTTS() {
		if lister, ok := registry.TTS().(providers.VoicesLister); ok {
			if live, err := lister.ListVoices(ctx); err == nil && len(live) > 0 {
				voiceList = live
			} else if err != nil {
				if logger := svcctx.LoggerFrom(ctx); logger != nil {
					logger.Warn("live voice listing failed, using static catalog", "error", err)
				}
			}
		}
	}

	resp := ListVoicesResponse{Voices: voiceList}
	if mgr := svcctx.ConfigFrom(ctx); mgr != nil {
		cfg := mgr.Get()
		resp.Hosts = HostAssignments{
			Host1: cfg.TTS.Voices.Host1,
			Host2: cfg.TTS.Voices.Host2,
		}
		resp.Model = cfg.TTS.Model
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ListVoicesEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List TTS voices and host assignments",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp ListVoicesResponse
			if err := client.Get(ctx, "/api/v1/voices", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
