package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tripgram/server/internal/agent/model"
)

const testTimeout = 5 * time.Second

// scriptedModel replays canned assistant replies in order. Once the
// script is exhausted it repeats the last entry.
type scriptedModel struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   [][]*schema.Message
}

func (m *scriptedModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, input)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.replies) == 0 {
		return nil, errors.New("script exhausted")
	}
	reply := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return schema.AssistantMessage(reply, nil), nil
}

func (m *scriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported in tests")
}

func (m *scriptedModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return m, nil
}

func (m *scriptedModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// stubWorker records executions and appends a fixed output to the state.
type stubWorker struct {
	name   string
	output string

	mu    sync.Mutex
	count int
}

func (w *stubWorker) Name() string { return w.name }

func (w *stubWorker) Execute(ctx context.Context, state *model.ConversationState) model.WorkerResult {
	w.mu.Lock()
	w.count++
	w.mu.Unlock()
	state.AppendWorkerMessage(w.name, w.output)
	return model.WorkerResult{Worker: w.name, OutputText: w.output}
}

func (w *stubWorker) executions() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}
