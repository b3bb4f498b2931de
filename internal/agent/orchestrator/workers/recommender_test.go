package workers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/tripgram/server/internal/agent/model"
)

func TestRecommenderUsesRetrievalContext(t *testing.T) {
	cm := &messageModel{replies: []*schema.Message{
		schema.AssistantMessage("try the old town", nil),
	}}
	worker := NewRecommender(cm, nil, 500, 10, testTimeout)

	state := model.NewConversationState("recommend places", 1, nil)
	state.AppendWorkerMessage(model.WorkerDataRetrieval, "user liked: beaches, museums")

	res := worker.Execute(context.Background(), state)
	if res.OutputText != "try the old town" {
		t.Errorf("got %q", res.OutputText)
	}

	system := cm.calls[0][0]
	if system.Role != schema.System || !strings.Contains(system.Content, "user liked: beaches, museums") {
		t.Errorf("retrieval context missing from system prompt:\n%s", system.Content)
	}
}

func TestRecommenderTruncatesRetrievalContext(t *testing.T) {
	cm := &messageModel{replies: []*schema.Message{
		schema.AssistantMessage("ok", nil),
	}}
	worker := NewRecommender(cm, nil, 10, 10, testTimeout)

	state := model.NewConversationState("recommend", 1, nil)
	state.AppendWorkerMessage(model.WorkerDataRetrieval, strings.Repeat("x", 100))

	worker.Execute(context.Background(), state)

	system := cm.calls[0][0].Content
	if strings.Contains(system, strings.Repeat("x", 11)) {
		t.Error("retrieval context was not truncated to the limit")
	}
	if !strings.Contains(system, strings.Repeat("x", 10)) {
		t.Error("truncated retrieval context missing entirely")
	}
}

func TestRecommenderWithoutRetrievalContext(t *testing.T) {
	cm := &messageModel{replies: []*schema.Message{
		schema.AssistantMessage("general picks", nil),
	}}
	worker := NewRecommender(cm, nil, 500, 10, testTimeout)

	state := model.NewConversationState("recommend places", 1, nil)
	res := worker.Execute(context.Background(), state)
	if res.OutputText != "general picks" {
		t.Errorf("got %q", res.OutputText)
	}
}

func TestRecommenderErrorBecomesMessage(t *testing.T) {
	cm := &messageModel{err: errors.New("quota exceeded")}
	worker := NewRecommender(cm, nil, 500, 10, testTimeout)

	state := model.NewConversationState("recommend", 1, nil)
	res := worker.Execute(context.Background(), state)
	if !strings.HasPrefix(res.OutputText, "Error:") {
		t.Errorf("got %q, want Error prefix", res.OutputText)
	}
	if len(state.AgentsUsed) != 1 || state.AgentsUsed[0] != model.WorkerRecommender {
		t.Errorf("agents used = %v", state.AgentsUsed)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("héllo wörld", 5); got != "héllo" {
		t.Errorf("got %q", got)
	}
	if got := truncateRunes("short", 100); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncateRunes("anything", 0); got != "anything" {
		t.Errorf("limit 0 should disable truncation, got %q", got)
	}
}

func TestAssistantErrorBecomesMessage(t *testing.T) {
	cm := &messageModel{err: errors.New("model unavailable")}
	worker := NewAssistant(cm, nil, 10, testTimeout)

	state := model.NewConversationState("hi", 1, nil)
	res := worker.Execute(context.Background(), state)
	if !strings.HasPrefix(res.OutputText, "Error:") {
		t.Errorf("got %q, want Error prefix", res.OutputText)
	}
	if got, ok := state.LatestWorkerOutput(model.WorkerAssistant); !ok || got != res.OutputText {
		t.Errorf("worker message = %q, %v", got, ok)
	}
}
