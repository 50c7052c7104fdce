// Package testutil provides canned model backends and markdown fixtures
// for exercising the pipeline without real providers.
package testutil

import (
	"fmt"
	"strings"

	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/providers"
)

// stageMarkers identify a stage by a distinctive phrase of its system
// prompt.
var stageMarkers = []struct {
	stage  string
	marker string
}{
	{podcast.StepPlan, "planning lead"},
	{podcast.StepResearch, "research lead"},
	{podcast.StepOutline, "episode architect"},
	{podcast.StepScript, "You write dialogue"},
	{podcast.StepTone, "You annotate podcast dialogue"},
	{podcast.StepEdit, "final editor"},
}

// StageOf reports which pipeline stage issued a chat request, recognized
// by its system prompt. Returns "" for an unrecognized request.
func StageOf(req *providers.ChatRequest) string {
	if req == nil || len(req.Messages) == 0 {
		return ""
	}
	system := req.Messages[0].Content
	for _, m := range stageMarkers {
		if strings.Contains(system, m.marker) {
			return m.stage
		}
	}
	return ""
}

// ScriptedChat returns a chat backend answering each stage with its
// canned reply regardless of call order, which keeps fan-out stages
// deterministic. A stage without a reply fails the call with a
// non-retryable status so the missing fixture surfaces immediately
// instead of sitting through retry backoff.
func ScriptedChat(replies map[string]string) *providers.MockChatClient {
	return &providers.MockChatClient{
		RespondFn: func(req *providers.ChatRequest) (string, error) {
			stage := StageOf(req)
			reply, ok := replies[stage]
			if !ok {
				return "", &providers.StatusError{
					Provider:   providers.MockClientName,
					StatusCode: 400,
					Message:    fmt.Sprintf("no scripted reply for stage %q", stage),
				}
			}
			return reply, nil
		},
	}
}
