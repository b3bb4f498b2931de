package workers

import (
	"context"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/tripgram/server/internal/agent/model"
	"github.com/tripgram/server/internal/agent/orchestrator/prompts"
	logx "github.com/tripgram/server/pkg/logger"
)

// Assistant handles general questions with web search and calculation tools.
type Assistant struct {
	cm           einomodel.BaseChatModel
	toolSet      map[string]tool.InvokableTool
	maxToolCalls int
	timeout      time.Duration
}

func NewAssistant(cm einomodel.BaseChatModel, toolSet map[string]tool.InvokableTool, maxToolCalls int, timeout time.Duration) *Assistant {
	return &Assistant{cm: cm, toolSet: toolSet, maxToolCalls: maxToolCalls, timeout: timeout}
}

func (a *Assistant) Name() string {
	return model.WorkerAssistant
}

func (a *Assistant) Execute(ctx context.Context, state *model.ConversationState) model.WorkerResult {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	query := state.LatestUserMessage()

	output, err := a.run(ctx, query)
	if err != nil {
		logx.Error().Err(err).Int64("user_id", state.UserID).Msg("assistant worker failed")
		output = fmt.Sprintf("Error: %v", err)
	}

	state.AppendWorkerMessage(model.WorkerAssistant, output)
	return model.WorkerResult{Worker: model.WorkerAssistant, OutputText: output}
}

func (a *Assistant) run(ctx context.Context, query string) (string, error) {
	system, err := prompts.RenderAssistantSystem(ctx)
	if err != nil {
		return "", err
	}
	msgs := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(query),
	}
	return runWithTools(ctx, a.cm, a.toolSet, msgs, a.maxToolCalls)
}
