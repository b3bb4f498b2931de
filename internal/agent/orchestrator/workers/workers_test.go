package workers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

const testTimeout = 5 * time.Second

// messageModel replays canned messages in order, so tests can script
// tool-call rounds followed by a plain answer.
type messageModel struct {
	mu      sync.Mutex
	replies []*schema.Message
	err     error
	calls   [][]*schema.Message
}

func (m *messageModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
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
	m.replies = m.replies[1:]
	return reply, nil
}

func (m *messageModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported in tests")
}

func (m *messageModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// echoTool records invocations and returns a fixed result.
type echoTool struct {
	name   string
	result string
	err    error

	mu   sync.Mutex
	args []string
}

func (e *echoTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{Name: e.name}, nil
}

func (e *echoTool) InvokableRun(ctx context.Context, arguments string, opts ...tool.Option) (string, error) {
	e.mu.Lock()
	e.args = append(e.args, arguments)
	e.mu.Unlock()
	if e.err != nil {
		return "", e.err
	}
	return e.result, nil
}

func toolCallMessage(name, args string) *schema.Message {
	msg := schema.AssistantMessage("", []schema.ToolCall{{
		Function: schema.FunctionCall{Name: name, Arguments: args},
	}})
	return msg
}

func TestRunWithToolsExecutesAndFeedsBack(t *testing.T) {
	et := &echoTool{name: "run_query", result: `[{"id":1}]`}
	cm := &messageModel{replies: []*schema.Message{
		toolCallMessage("run_query", `{"sql":"SELECT 1"}`),
		schema.AssistantMessage("one row found", nil),
	}}

	out, err := runWithTools(context.Background(), cm, map[string]tool.InvokableTool{"run_query": et}, []*schema.Message{
		schema.UserMessage("count"),
	}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "one row found" {
		t.Errorf("got %q", out)
	}
	if len(et.args) != 1 || et.args[0] != `{"sql":"SELECT 1"}` {
		t.Errorf("tool args = %v", et.args)
	}

	// second generate call must include the tool result message
	second := cm.calls[1]
	last := second[len(second)-1]
	if last.Role != schema.Tool || last.Content != `[{"id":1}]` {
		t.Errorf("tool result not fed back: %+v", last)
	}
	if last.ToolCallID == "" {
		t.Error("tool call id was not synthesized")
	}
}

func TestRunWithToolsUnknownToolFallback(t *testing.T) {
	cm := &messageModel{replies: []*schema.Message{
		toolCallMessage("made_up_tool", `{}`),
		schema.AssistantMessage("done", nil),
	}}

	out, err := runWithTools(context.Background(), cm, map[string]tool.InvokableTool{}, []*schema.Message{
		schema.UserMessage("q"),
	}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "done" {
		t.Errorf("got %q", out)
	}
	second := cm.calls[1]
	last := second[len(second)-1]
	if !strings.Contains(last.Content, "unknown_tool") {
		t.Errorf("fallback result missing: %q", last.Content)
	}
}

func TestRunWithToolsCapForcesWrapUp(t *testing.T) {
	et := &echoTool{name: "web_search", result: "{}"}
	cm := &messageModel{replies: []*schema.Message{
		toolCallMessage("web_search", `{"query":"a"}`),
		toolCallMessage("web_search", `{"query":"b"}`),
		schema.AssistantMessage("best effort answer", nil),
	}}

	out, err := runWithTools(context.Background(), cm, map[string]tool.InvokableTool{"web_search": et}, []*schema.Message{
		schema.UserMessage("q"),
	}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "best effort answer" {
		t.Errorf("got %q", out)
	}

	// the final generate sees the wrap-up notice
	final := cm.calls[len(cm.calls)-1]
	var foundNotice bool
	for _, msg := range final {
		if msg.Role == schema.System && strings.Contains(msg.Content, "SYSTEM NOTICE") {
			foundNotice = true
		}
	}
	if !foundNotice {
		t.Error("wrap-up notice missing from final call")
	}
	if len(et.args) != 1 {
		t.Errorf("tool invoked %d times past the cap, want 1", len(et.args))
	}
}

func TestRunWithToolsModelError(t *testing.T) {
	cm := &messageModel{err: errors.New("model unavailable")}
	_, err := runWithTools(context.Background(), cm, nil, []*schema.Message{schema.UserMessage("q")}, 10)
	if err == nil {
		t.Fatal("expected error")
	}
}
