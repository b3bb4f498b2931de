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

// Recommender produces personalized suggestions, reusing the most recent
// retrieval output as context when one exists.
type Recommender struct {
	cm           einomodel.BaseChatModel
	toolSet      map[string]tool.InvokableTool
	contextLimit int
	maxToolCalls int
	timeout      time.Duration
}

func NewRecommender(cm einomodel.BaseChatModel, toolSet map[string]tool.InvokableTool, contextLimit, maxToolCalls int, timeout time.Duration) *Recommender {
	return &Recommender{cm: cm, toolSet: toolSet, contextLimit: contextLimit, maxToolCalls: maxToolCalls, timeout: timeout}
}

func (r *Recommender) Name() string {
	return model.WorkerRecommender
}

func (r *Recommender) Execute(ctx context.Context, state *model.ConversationState) model.WorkerResult {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := state.LatestUserMessage()

	retrievalContext := ""
	if text, ok := state.LatestWorkerOutput(model.WorkerDataRetrieval); ok {
		retrievalContext = truncateRunes(text, r.contextLimit)
	}

	output, err := r.run(ctx, state.UserID, query, retrievalContext)
	if err != nil {
		logx.Error().Err(err).Int64("user_id", state.UserID).Msg("recommender worker failed")
		output = fmt.Sprintf("Error: %v", err)
	}

	state.AppendWorkerMessage(model.WorkerRecommender, output)
	return model.WorkerResult{Worker: model.WorkerRecommender, OutputText: output}
}

func (r *Recommender) run(ctx context.Context, userID int64, query, retrievalContext string) (string, error) {
	system, err := prompts.RenderRecommenderSystem(ctx, userID, retrievalContext)
	if err != nil {
		return "", err
	}
	msgs := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(query),
	}
	return runWithTools(ctx, r.cm, r.toolSet, msgs, r.maxToolCalls)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
