package model

import (
	"fmt"

	"github.com/cloudwego/eino/schema"
)

// RouteDecision is the closed set of routing targets the supervisor can
// choose from. Workers are dispatched by switching on this type, never by
// string lookup.
type RouteDecision int

const (
	RouteAssistant RouteDecision = iota
	RouteDataRetrieval
	RouteRecommender
	RouteFinish
)

// Worker names as they appear in message attribution and agents_used.
const (
	WorkerAssistant     = "Assistant"
	WorkerDataRetrieval = "DataRetrieval"
	WorkerRecommender   = "Recommender"
)

// FinishLabel is the supervisor label that terminates routing.
const FinishLabel = "FINISH"

func (d RouteDecision) String() string {
	switch d {
	case RouteAssistant:
		return WorkerAssistant
	case RouteDataRetrieval:
		return WorkerDataRetrieval
	case RouteRecommender:
		return WorkerRecommender
	case RouteFinish:
		return FinishLabel
	}
	return fmt.Sprintf("RouteDecision(%d)", int(d))
}

// Category is the classifier's view of a query. It is narrower than
// RouteDecision: classification never finishes a conversation.
type Category int

const (
	CategoryData Category = iota
	CategoryRecommendation
	CategoryOther
)

func (c Category) String() string {
	switch c {
	case CategoryData:
		return "data"
	case CategoryRecommendation:
		return "recommendation"
	case CategoryOther:
		return "other"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Route maps a category onto the worker that should take the first step.
func (c Category) Route() RouteDecision {
	switch c {
	case CategoryRecommendation:
		return RouteRecommender
	case CategoryOther:
		return RouteAssistant
	default:
		return RouteDataRetrieval
	}
}

// ConversationState is the per-request record threaded through one
// orchestration. It lives for exactly one request and is never shared
// across requests, so the pipeline mutates it without locking.
type ConversationState struct {
	// Messages grows append-only: caller history, the current question,
	// then one message per worker execution.
	Messages []*schema.Message

	// Next is the current routing target.
	Next RouteDecision

	// UserID is an opaque identifier echoed to downstream calls.
	UserID int64

	// QueryType records the first classification label. Informational only.
	QueryType string

	// IterationCount is incremented exactly once per supervisor decision.
	IterationCount int

	// CachedData memoizes worker outputs within this request.
	CachedData map[string]string

	// AgentsUsed records one entry per worker execution, cache hits included.
	AgentsUsed []string

	// ChatHistory is the caller-supplied prior turns, kept as immutable input.
	ChatHistory []*schema.Message
}

// NewConversationState merges caller history with the current question.
// History is merged into Messages once, before the first step.
func NewConversationState(question string, userID int64, history []*schema.Message) *ConversationState {
	msgs := make([]*schema.Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, schema.UserMessage(question))

	return &ConversationState{
		Messages:    msgs,
		Next:        RouteDataRetrieval,
		UserID:      userID,
		CachedData:  make(map[string]string),
		ChatHistory: history,
	}
}

// LatestUserMessage returns the content of the most recent user-authored
// message. Worker messages carry a Name and are skipped.
func (s *ConversationState) LatestUserMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		m := s.Messages[i]
		if m == nil {
			continue
		}
		if m.Role == schema.User && m.Name == "" {
			return m.Content
		}
	}
	return ""
}

// AppendWorkerMessage records one worker execution: exactly one message
// attributed to the worker plus one agents_used entry.
func (s *ConversationState) AppendWorkerMessage(worker, content string) {
	msg := schema.UserMessage(content)
	msg.Name = worker
	s.Messages = append(s.Messages, msg)
	s.AgentsUsed = append(s.AgentsUsed, worker)
}

// LatestWorkerOutput returns the content of the most recent message
// attributed to the named worker, and whether one exists.
func (s *ConversationState) LatestWorkerOutput(worker string) (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		m := s.Messages[i]
		if m != nil && m.Name == worker {
			return m.Content, true
		}
	}
	return "", false
}

// WorkerResult is the outcome of one worker execution. Workers always
// return normally; failures are folded into OutputText.
type WorkerResult struct {
	Worker     string
	OutputText string
	CacheKey   string
	CacheHit   bool
}

// StepKind tags entries in the engine's step-record stream.
type StepKind int

const (
	// StepDispatch is emitted after a worker completes its execution.
	StepDispatch StepKind = iota
	// StepFinished is emitted once, when routing terminates.
	StepFinished
)

func (k StepKind) String() string {
	if k == StepFinished {
		return "finished"
	}
	return "dispatch"
}

// StepRecord is one entry in the lazily produced orchestration trace.
type StepRecord struct {
	Kind   StepKind
	Result WorkerResult  // populated for dispatch records
	Final  RouteDecision // populated for the finished record
}
