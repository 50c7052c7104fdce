package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/podforge/podforge/internal/api"
	"github.com/podforge/podforge/internal/jobs"
	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/svcctx"
)

// BriefRequest is the request body for submitting or validating a brief.
type BriefRequest struct {
	Topic       string `json:"topic"`
	Focus       string `json:"focus,omitempty"`
	Mood        string `json:"mood"`
	Style       string `json:"style"`
	Chapters    int    `json:"chapters"`
	DurationMin int    `json:"durationMin"`
	Source      string `json:"source,omitempty"`
}

// Brief converts the request into the domain brief.
func (r BriefRequest) Brief() podcast.Brief {
	return podcast.Brief{
		Topic:       r.Topic,
		Focus:       r.Focus,
		Mood:        podcast.Mood(r.Mood),
		Style:       podcast.Style(r.Style),
		Chapters:    r.Chapters,
		DurationMin: r.DurationMin,
		Source:      r.Source,
	}
}

// briefFlags binds the shared brief flags on a command, filling req.
func briefFlags(cmd *cobra.Command, req *BriefRequest) {
	cmd.Flags().StringVar(&req.Topic, "topic", "", "Episode topic (required)")
	cmd.Flags().StringVar(&req.Focus, "focus", "", "Optional angle to narrow the topic")
	cmd.Flags().StringVar(&req.Mood, "mood", "neutral", "Mood: neutral, excited, calm, reflective, enthusiastic")
	cmd.Flags().StringVar(&req.Style, "style", "conversational", "Style: storytelling, conversational, interview, educational")
	cmd.Flags().IntVar(&req.Chapters, "chapters", 3, "Number of chapters")
	cmd.Flags().IntVar(&req.DurationMin, "duration", 10, "Target duration in minutes")
	cmd.Flags().StringVar(&req.Source, "source", "", "URL or file path to ground research")
}

// statusForError maps service errors to HTTP status codes: unknown id to
// 404, validation to 400, cancellation conflicts to 409, the rest to 500.
func statusForError(err error) int {
	if errors.Is(err, jobs.ErrNotFound) {
		return http.StatusNotFound
	}
	switch podcast.KindOf(err) {
	case podcast.ErrValidation:
		return http.StatusBadRequest
	case podcast.ErrCancelled:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// CreatePodcastResponse is the response for submitting a brief.
type CreatePodcastResponse struct {
	ID string `json:"id"`
}

// CreatePodcastEndpoint handles POST /api/v1/podcasts.
type CreatePodcastEndpoint struct{}

func (e *CreatePodcastEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/podcasts", e.handler
}

func (e *CreatePodcastEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Submit a podcast brief
//	@Description	Validate the brief, queue a generation job, and return its id
//	@Tags			podcasts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		BriefRequest	true	"Episode brief"
//	@Success		202		{object}	CreatePodcastResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/api/v1/podcasts [post]
func (e *CreatePodcastEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req BriefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc := svcctx.ServiceFrom(r.Context())
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline service not initialized")
		return
	}

	id, err := svc.Submit(r.Context(), req.Brief())
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, CreatePodcastResponse{ID: id})
}

func (e *CreatePodcastEndpoint) Command(getServerURL func() string) *cobra.Command {
	var req BriefRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a podcast brief for generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp CreatePodcastResponse
			if err := client.Post(ctx, "/api/v1/podcasts", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	briefFlags(cmd, &req)
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

// ListPodcastsResponse is the response for listing jobs.
type ListPodcastsResponse struct {
	Podcasts []*jobs.Job `json:"podcasts"`
	Total    int         `json:"total"`
}

// ListPodcastsEndpoint handles GET /api/v1/podcasts.
type ListPodcastsEndpoint struct{}

func (e *ListPodcastsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/podcasts", e.handler
}

func (e *ListPodcastsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List podcast jobs
//	@Description	List jobs newest first with optional pagination
//	@Tags			podcasts
//	@Produce		json
//	@Param			limit	query		int	false	"Max results (0 = all)"
//	@Param			offset	query		int	false	"Result offset"
//	@Success		200		{object}	ListPodcastsResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/api/v1/podcasts [get]
func (e *ListPodcastsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svc := svcctx.ServiceFrom(r.Context())
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline service not initialized")
		return
	}

	var limit, offset int
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit: %q must be an integer", v))
			return
		}
		limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid offset: %q must be an integer", v))
			return
		}
		offset = n
	}

	list := svc.List(limit, offset)
	writeJSON(w, http.StatusOK, ListPodcastsResponse{Podcasts: list, Total: len(list)})
}

func (e *ListPodcastsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List podcast jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())

			path := "/api/v1/podcasts"
			params := url.Values{}
			if limit > 0 {
				params.Set("limit", strconv.Itoa(limit))
			}
			if offset > 0 {
				params.Set("offset", strconv.Itoa(offset))
			}
			if len(params) > 0 {
				path += "?" + params.Encode()
			}

			var resp ListPodcastsResponse
			if err := client.Get(ctx, path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Result offset")
	return cmd
}

// GetPodcastEndpoint handles GET /api/v1/podcasts/{id}.
type GetPodcastEndpoint struct{}

func (e *GetPodcastEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/podcasts/{id}", e.handler
}

func (e *GetPodcastEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get a podcast job
//	@Description	Get the full job record including progress and any error
//	@Tags			podcasts
//	@Produce		json
//	@Param			id	path		string	true	"Job ID"
//	@Success		200	{object}	jobs.Job
//	@Failure		404	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/v1/podcasts/{id} [get]
func (e *GetPodcastEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}

	svc := svcctx.ServiceFrom(r.Context())
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline service not initialized")
		return
	}

	job, err := svc.Status(id)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func (e *GetPodcastEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a podcast job by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var job jobs.Job
			if err := client.Get(ctx, "/api/v1/podcasts/"+args[0], &job); err != nil {
				return err
			}
			return api.Output(job)
		},
	}
}

// CancelPodcastResponse reports the state after a cancel request.
type CancelPodcastResponse struct {
	ID    string     `json:"id"`
	State jobs.State `json:"state"`
}

// CancelPodcastEndpoint handles DELETE /api/v1/podcasts/{id}.
type CancelPodcastEndpoint struct{}

func (e *CancelPodcastEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/v1/podcasts/{id}", e.handler
}

func (e *CancelPodcastEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Cancel a podcast job
//	@Description	Stop a queued or processing job; a terminal job reports its state unchanged
//	@Tags			podcasts
//	@Produce		json
//	@Param			id	path		string	true	"Job ID"
//	@Success		200	{object}	CancelPodcastResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/v1/podcasts/{id} [delete]
func (e *CancelPodcastEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}

	svc := svcctx.ServiceFrom(r.Context())
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline service not initialized")
		return
	}

	job, err := svc.Cancel(id)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CancelPodcastResponse{ID: job.ID, State: job.State})
}

func (e *CancelPodcastEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a podcast job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]
			client := api.NewClient(getServerURL())
			if err := client.Delete(ctx, "/api/v1/podcasts/"+id); err != nil {
				return err
			}
			var job jobs.Job
			if err := client.Get(ctx, "/api/v1/podcasts/"+id, &job); err != nil {
				return err
			}
			return api.Output(CancelPodcastResponse{ID: job.ID, State: job.State})
		},
	}
}
