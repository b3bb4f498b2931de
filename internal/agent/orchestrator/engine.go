package orchestrator

import (
	"context"

	"github.com/tripgram/server/internal/agent/model"
	"github.com/tripgram/server/internal/agent/orchestrator/workers"
	logx "github.com/tripgram/server/pkg/logger"
)

// Engine drives the routing state machine: classify, dispatch a worker,
// consult the supervisor, repeat until Finish. It produces step records
// lazily on an unbuffered channel, so a caller that consumes only a prefix
// halts further transitions, and cancelling the context stops the run.
// No rollback of already-committed worker effects is performed.
type Engine struct {
	classifier  *Classifier
	supervisor  *Supervisor
	assistant   workers.Worker
	retrieval   workers.Worker
	recommender workers.Worker
}

func NewEngine(classifier *Classifier, supervisor *Supervisor, assistant, retrieval, recommender workers.Worker) *Engine {
	return &Engine{
		classifier:  classifier,
		supervisor:  supervisor,
		assistant:   assistant,
		retrieval:   retrieval,
		recommender: recommender,
	}
}

// Run starts the state machine for one request. The returned channel is
// closed when routing terminates or the context is cancelled.
func (e *Engine) Run(ctx context.Context, state *model.ConversationState) <-chan model.StepRecord {
	ch := make(chan model.StepRecord)

	go func() {
		defer close(ch)

		category := e.classifier.Classify(ctx, state.LatestUserMessage())
		state.QueryType = category.String()
		state.Next = category.Route()

		for {
			worker := e.workerFor(state.Next)
			result := worker.Execute(ctx, state)

			logx.Debug().
				Str("worker", result.Worker).
				Bool("cache_hit", result.CacheHit).
				Msg("worker step complete")

			if !emit(ctx, ch, model.StepRecord{Kind: model.StepDispatch, Result: result}) {
				return
			}

			decision := e.supervisor.Decide(ctx, state)
			state.Next = decision

			if decision == model.RouteFinish {
				emit(ctx, ch, model.StepRecord{Kind: model.StepFinished, Final: decision})
				return
			}
		}
	}()

	return ch
}

// workerFor dispatches over the closed capability set.
func (e *Engine) workerFor(d model.RouteDecision) workers.Worker {
	switch d {
	case model.RouteRecommender:
		return e.recommender
	case model.RouteAssistant:
		return e.assistant
	default:
		return e.retrieval
	}
}

func emit(ctx context.Context, ch chan<- model.StepRecord, rec model.StepRecord) bool {
	select {
	case ch <- rec:
		return true
	case <-ctx.Done():
		return false
	}
}
