// Package orchestrator routes a user request between specialized workers
// under a supervisory policy with a hard iteration bound, then synthesizes
// all intermediate outputs into one reply.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/tripgram/server/internal/agent/model"
	"github.com/tripgram/server/internal/agent/orchestrator/workers"
	"github.com/tripgram/server/internal/agent/tools"
	logx "github.com/tripgram/server/pkg/logger"
)

// Config holds everything needed to compose the orchestrator end-to-end.
type Config struct {
	// RouterModel serves classification and supervision.
	RouterModel einomodel.BaseChatModel
	// ResponseModel serves the workers and the synthesizer. It must
	// support tool binding.
	ResponseModel einomodel.ToolCallingChatModel

	// AssistantTools back the Assistant and Recommender workers.
	AssistantTools []tool.InvokableTool
	// RetrievalTools back the DataRetrieval worker.
	RetrievalTools []tool.InvokableTool

	// SchemaDescription describes the relational store to the retrieval model.
	SchemaDescription string

	Orchestration model.OrchestratorConfig
}

// Orchestrator wires the engine and synthesizer behind one entry point.
type Orchestrator struct {
	engine      *Engine
	synthesizer *Synthesizer
}

// New validates the config, binds tools to the worker models and builds
// the orchestrator.
func New(ctx context.Context, cfg Config) (*Orchestrator, error) {
	if cfg.RouterModel == nil || cfg.ResponseModel == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}

	timeout, err := time.ParseDuration(cfg.Orchestration.CallTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid call timeout %q: %w", cfg.Orchestration.CallTimeout, err)
	}

	maxToolCalls := cfg.Orchestration.Tools.MaxCalls
	contextLimit := cfg.Orchestration.Retrieval.ContextLimit

	assistantModel, assistantSet, err := bindTools(ctx, cfg.ResponseModel, cfg.AssistantTools)
	if err != nil {
		return nil, fmt.Errorf("bind assistant tools: %w", err)
	}
	retrievalModel, retrievalSet, err := bindTools(ctx, cfg.ResponseModel, cfg.RetrievalTools)
	if err != nil {
		return nil, fmt.Errorf("bind retrieval tools: %w", err)
	}

	engine := NewEngine(
		NewClassifier(cfg.RouterModel, timeout),
		NewSupervisor(cfg.RouterModel, cfg.Orchestration.MaxIterations, timeout),
		workers.NewAssistant(assistantModel, assistantSet, maxToolCalls, timeout),
		workers.NewDataRetrieval(retrievalModel, retrievalSet, cfg.SchemaDescription, maxToolCalls, timeout),
		workers.NewRecommender(assistantModel, assistantSet, contextLimit, maxToolCalls, timeout),
	)

	logx.Debug().Msg("orchestrator built successfully")
	return &Orchestrator{
		engine:      engine,
		synthesizer: NewSynthesizer(cfg.ResponseModel, timeout),
	}, nil
}

// bindTools resolves tool infos, binds them to the model and indexes the
// tool set for the execution loop.
func bindTools(ctx context.Context, cm einomodel.ToolCallingChatModel, ts []tool.InvokableTool) (einomodel.BaseChatModel, map[string]tool.InvokableTool, error) {
	if len(ts) == 0 {
		return cm, map[string]tool.InvokableTool{}, nil
	}

	infos, err := tools.Infos(ctx, ts)
	if err != nil {
		return nil, nil, err
	}
	bound, err := cm.WithTools(infos)
	if err != nil {
		return nil, nil, fmt.Errorf("bind tools to model: %w", err)
	}
	set, err := tools.ByName(ctx, ts)
	if err != nil {
		return nil, nil, err
	}
	return bound, set, nil
}

// Run exposes the lazy step-record stream for one request.
func (o *Orchestrator) Run(ctx context.Context, state *model.ConversationState) <-chan model.StepRecord {
	return o.engine.Run(ctx, state)
}

// Ask runs the full pipeline for one question and returns the synthesized
// reply plus the final conversation state.
func (o *Orchestrator) Ask(ctx context.Context, question string, userID int64, history []*schema.Message) (string, *model.ConversationState, error) {
	state := model.NewConversationState(question, userID, history)

	var steps []model.StepRecord
	for rec := range o.engine.Run(ctx, state) {
		steps = append(steps, rec)
	}
	if err := ctx.Err(); err != nil {
		return "", state, err
	}

	text, err := o.synthesizer.Synthesize(ctx, question, steps)
	if err != nil {
		return "", state, err
	}
	return text, state, nil
}
