package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/podforge/podforge/internal/api"
	"github.com/podforge/podforge/internal/config"
	"github.com/podforge/podforge/internal/svcctx"
)

// redactedSecret replaces API keys in settings responses.
const redactedSecret = "[redacted]"

// redacted returns a copy of cfg with secret values masked. Slices are
// shared with the original but never mutated.
func redacted(cfg *config.Config) *config.Config {
	out := *cfg
	if out.Providers.Chat.APIKey != "" {
		out.Providers.Chat.APIKey = redactedSecret
	}
	if out.Providers.Assistant.APIKey != "" {
		out.Providers.Assistant.APIKey = redactedSecret
	}
	return &out
}

// GetSettingsEndpoint handles GET /api/v1/settings.
type GetSettingsEndpoint struct{}

func (e *GetSettingsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/settings", e.handler
}

func (e *GetSettingsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get effective settings
//	@Description	Get the effective server configuration with API keys redacted
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	config.Config
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/v1/settings [get]
func (e *GetSettingsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	mgr := svcctx.ConfigFrom(r.Context())
	if mgr == nil {
		writeError(w, http.StatusServiceUnavailable, "config manager not initialized")
		return
	}

	writeJSON(w, http.StatusOK, redacted(mgr.Get()))
}

func (e *GetSettingsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Show the server's effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var cfg config.Config
			if err := client.Get(ctx, "/api/v1/settings", &cfg); err != nil {
				return err
			}
			return api.Output(cfg)
		},
	}
}
