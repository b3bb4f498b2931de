package model

import (
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestNewConversationStateMergesHistory(t *testing.T) {
	history := []*schema.Message{
		schema.UserMessage("earlier question"),
		schema.AssistantMessage("earlier answer", nil),
	}
	state := NewConversationState("current question", 5, history)

	if len(state.Messages) != 3 {
		t.Fatalf("messages = %d, want history plus question", len(state.Messages))
	}
	if state.LatestUserMessage() != "current question" {
		t.Errorf("latest user message = %q", state.LatestUserMessage())
	}
	if state.UserID != 5 {
		t.Errorf("user id = %d", state.UserID)
	}
	if state.CachedData == nil {
		t.Error("cache map not initialized")
	}
}

func TestLatestUserMessageSkipsWorkerMessages(t *testing.T) {
	state := NewConversationState("the question", 1, nil)
	state.AppendWorkerMessage(WorkerDataRetrieval, "worker says things")

	if got := state.LatestUserMessage(); got != "the question" {
		t.Errorf("got %q, want the user question", got)
	}
}

func TestAppendWorkerMessageRecordsAgentsUsed(t *testing.T) {
	state := NewConversationState("q", 1, nil)
	state.AppendWorkerMessage(WorkerDataRetrieval, "first")
	state.AppendWorkerMessage(WorkerRecommender, "second")
	state.AppendWorkerMessage(WorkerDataRetrieval, "third")

	want := []string{WorkerDataRetrieval, WorkerRecommender, WorkerDataRetrieval}
	if len(state.AgentsUsed) != len(want) {
		t.Fatalf("agents used = %v", state.AgentsUsed)
	}
	for i := range want {
		if state.AgentsUsed[i] != want[i] {
			t.Errorf("agents used[%d] = %q, want %q", i, state.AgentsUsed[i], want[i])
		}
	}
}

func TestLatestWorkerOutput(t *testing.T) {
	state := NewConversationState("q", 1, nil)
	if _, ok := state.LatestWorkerOutput(WorkerDataRetrieval); ok {
		t.Error("found output before any worker ran")
	}

	state.AppendWorkerMessage(WorkerDataRetrieval, "old rows")
	state.AppendWorkerMessage(WorkerDataRetrieval, "new rows")
	got, ok := state.LatestWorkerOutput(WorkerDataRetrieval)
	if !ok || got != "new rows" {
		t.Errorf("got %q, %v", got, ok)
	}
}

func TestCategoryRoute(t *testing.T) {
	cases := []struct {
		category Category
		want     RouteDecision
	}{
		{CategoryData, RouteDataRetrieval},
		{CategoryRecommendation, RouteRecommender},
		{CategoryOther, RouteAssistant},
	}
	for _, c := range cases {
		if got := c.category.Route(); got != c.want {
			t.Errorf("%v.Route() = %v, want %v", c.category, got, c.want)
		}
	}
}

func TestRouteDecisionString(t *testing.T) {
	if RouteFinish.String() != FinishLabel {
		t.Errorf("got %q", RouteFinish.String())
	}
	if RouteDataRetrieval.String() != WorkerDataRetrieval {
		t.Errorf("got %q", RouteDataRetrieval.String())
	}
}
