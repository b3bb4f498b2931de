package orchestrator

import (
	"context"
	"net/http"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tripgram/server/internal/agent/model"
	"github.com/tripgram/server/internal/agent/orchestrator/parsers"
	"github.com/tripgram/server/internal/agent/orchestrator/prompts"
	errx "github.com/tripgram/server/internal/core/error"
	logx "github.com/tripgram/server/pkg/logger"
)

// Synthesizer merges all worker outputs into one final reply through a
// single structured completion. A malformed structured output is fatal for
// the request; every other stage recovers locally, this one propagates.
type Synthesizer struct {
	cm      einomodel.BaseChatModel
	timeout time.Duration
}

func NewSynthesizer(cm einomodel.BaseChatModel, timeout time.Duration) *Synthesizer {
	return &Synthesizer{cm: cm, timeout: timeout}
}

func (s *Synthesizer) Synthesize(ctx context.Context, originalRequest string, steps []model.StepRecord) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	system, err := prompts.RenderSynthesizerSystem(ctx)
	if err != nil {
		return "", errx.New(err, http.StatusInternalServerError, errx.SynthesisErrorMessage)
	}

	out, err := s.cm.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(renderSynthesisInput(originalRequest, steps)),
	})
	if err != nil {
		logx.Error().Err(err).Msg("synthesis call failed")
		return "", errx.New(err, http.StatusBadGateway, errx.SynthesisErrorMessage)
	}
	if out == nil {
		return "", errx.New(nil, http.StatusBadGateway, errx.SynthesisErrorMessage)
	}

	text, err := parsers.ParseFinalResponse(out.Content)
	if err != nil {
		logx.Error().Err(err).Msg("synthesis output malformed")
		return "", errx.New(err, http.StatusBadGateway, errx.SynthesisErrorMessage)
	}
	return text, nil
}

func renderSynthesisInput(originalRequest string, steps []model.StepRecord) string {
	var b strings.Builder
	b.WriteString("User request: ")
	b.WriteString(originalRequest)
	b.WriteString("\n\nInformation gathered:\n")
	for _, step := range steps {
		if step.Kind != model.StepDispatch || step.Result.OutputText == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(step.Result.OutputText)
		b.WriteString("\n")
	}
	return b.String()
}
