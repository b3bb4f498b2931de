package workers

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/tripgram/server/internal/agent/model"
	"github.com/tripgram/server/internal/agent/orchestrator/prompts"
	"github.com/tripgram/server/internal/media"
	logx "github.com/tripgram/server/pkg/logger"
)

// visualKeywords marks queries that need media joined in.
var visualKeywords = []string{"image", "photo", "picture", "media", "avatar", "profile", "post"}

// DataRetrieval answers questions about application data through
// natural-language-to-SQL translation, memoizing results per request.
type DataRetrieval struct {
	cm           einomodel.BaseChatModel
	toolSet      map[string]tool.InvokableTool
	schemaDesc   string
	maxToolCalls int
	timeout      time.Duration
}

func NewDataRetrieval(cm einomodel.BaseChatModel, toolSet map[string]tool.InvokableTool, schemaDesc string, maxToolCalls int, timeout time.Duration) *DataRetrieval {
	return &DataRetrieval{cm: cm, toolSet: toolSet, schemaDesc: schemaDesc, maxToolCalls: maxToolCalls, timeout: timeout}
}

func (d *DataRetrieval) Name() string {
	return model.WorkerDataRetrieval
}

func (d *DataRetrieval) Execute(ctx context.Context, state *model.ConversationState) model.WorkerResult {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	query := state.LatestUserMessage()

	// Exact-text cache key: near-duplicate phrasing intentionally misses.
	key := CacheKey(state.UserID, query)
	if cached, ok := state.CachedData[key]; ok {
		logx.Debug().Str("cache_key", key).Msg("retrieval cache hit")
		state.AppendWorkerMessage(model.WorkerDataRetrieval, cached)
		return model.WorkerResult{
			Worker:     model.WorkerDataRetrieval,
			OutputText: cached,
			CacheKey:   key,
			CacheHit:   true,
		}
	}

	output, err := d.run(ctx, state.UserID, query)
	if err != nil {
		logx.Error().Err(err).Int64("user_id", state.UserID).Msg("data retrieval worker failed")
		output = fmt.Sprintf("Database error: %v", err)
		state.AppendWorkerMessage(model.WorkerDataRetrieval, output)
		// errors are not cached
		return model.WorkerResult{Worker: model.WorkerDataRetrieval, OutputText: output, CacheKey: key}
	}

	output = media.PromoteBareURLs(output)
	state.CachedData[key] = output
	state.AppendWorkerMessage(model.WorkerDataRetrieval, output)
	return model.WorkerResult{Worker: model.WorkerDataRetrieval, OutputText: output, CacheKey: key}
}

func (d *DataRetrieval) run(ctx context.Context, userID int64, query string) (string, error) {
	system, err := prompts.RenderRetrievalSystem(ctx, d.schemaDesc, userID, NeedsImages(query))
	if err != nil {
		return "", err
	}
	msgs := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(query),
	}
	return runWithTools(ctx, d.cm, d.toolSet, msgs, d.maxToolCalls)
}

// CacheKey derives the memoization key for a retrieval execution.
func CacheKey(userID int64, query string) string {
	return fmt.Sprintf("retrieval:%d:%s", userID, query)
}

// NeedsImages reports whether the query mentions visual content.
func NeedsImages(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range visualKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
