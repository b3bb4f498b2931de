package orchestrator

import (
	"context"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tripgram/server/internal/agent/model"
	"github.com/tripgram/server/internal/agent/orchestrator/parsers"
	"github.com/tripgram/server/internal/agent/orchestrator/prompts"
	logx "github.com/tripgram/server/pkg/logger"
)

// routeOptions is the fixed enumeration of labels the supervisor may pick.
var routeOptions = []string{
	model.FinishLabel,
	model.WorkerDataRetrieval,
	model.WorkerRecommender,
	model.WorkerAssistant,
}

// recentWindow bounds how many trailing messages the supervisor sees.
const recentWindow = 6

// Supervisor decides, after each worker step, which worker acts next or
// whether routing stops. The iteration bound is checked before any model
// call and overrides it; a failed or out-of-enumeration decision forces
// Finish rather than risking an unbounded routing loop.
type Supervisor struct {
	cm            einomodel.BaseChatModel
	maxIterations int
	timeout       time.Duration
}

func NewSupervisor(cm einomodel.BaseChatModel, maxIterations int, timeout time.Duration) *Supervisor {
	if maxIterations <= 0 {
		maxIterations = 5
	}
	return &Supervisor{cm: cm, maxIterations: maxIterations, timeout: timeout}
}

// Decide evaluates the state and returns the next routing target. It
// increments the iteration count exactly once per call.
func (s *Supervisor) Decide(ctx context.Context, state *model.ConversationState) model.RouteDecision {
	state.IterationCount++

	if state.IterationCount >= s.maxIterations {
		// designed safety termination, not a failure
		logx.Info().
			Int("iteration_count", state.IterationCount).
			Int("max_iterations", s.maxIterations).
			Msg("iteration cap reached; forcing finish")
		return model.RouteFinish
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	system, err := prompts.RenderSupervisorSystem(ctx, routeOptions)
	if err != nil {
		logx.Error().Err(err).Msg("supervisor prompt render failed; forcing finish")
		return model.RouteFinish
	}

	out, err := s.cm.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(renderRecentMessages(state, recentWindow)),
	})
	if err != nil || out == nil {
		logx.Error().Err(err).Msg("supervisor decision call failed; forcing finish")
		return model.RouteFinish
	}

	decision, err := parsers.ParseRouteLabel(out.Content)
	if err != nil {
		logx.Warn().Err(err).Str("label", out.Content).Msg("supervisor label outside enumeration; forcing finish")
		return model.RouteFinish
	}

	logx.Debug().
		Str("decision", decision.String()).
		Int("iteration_count", state.IterationCount).
		Msg("supervisor decision")
	return decision
}

// renderRecentMessages formats the trailing conversation for the
// supervisor prompt, attributing worker messages by name.
func renderRecentMessages(state *model.ConversationState, n int) string {
	msgs := state.Messages
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}

	var b strings.Builder
	b.WriteString("<conversation>\n")
	for _, m := range msgs {
		if m == nil || m.Content == "" {
			continue
		}
		if m.Name != "" {
			b.WriteString(m.Name + ": " + m.Content + "\n")
		} else {
			b.WriteString("User: " + m.Content + "\n")
		}
	}
	b.WriteString("</conversation>")
	return b.String()
}
