package workers

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	logx "github.com/tripgram/server/pkg/logger"
)

// runWithTools drives a bounded generate/execute loop: the model is called,
// any tool calls are executed sequentially, and the results are fed back
// until the model answers in plain content or the call cap is hit. On the
// cap, a wrap-up notice asks the model to answer with what it has.
func runWithTools(
	ctx context.Context,
	cm einomodel.BaseChatModel,
	toolSet map[string]tool.InvokableTool,
	msgs []*schema.Message,
	maxCalls int,
) (string, error) {
	if maxCalls <= 0 {
		maxCalls = 10
	}

	history := make([]*schema.Message, len(msgs))
	copy(history, msgs)

	calls := 0
	idSeq := 0
	for {
		out, err := cm.Generate(ctx, history)
		if err != nil {
			return "", fmt.Errorf("model generate: %w", err)
		}
		if out == nil {
			return "", fmt.Errorf("model returned nil message")
		}

		// some providers omit tool call IDs; synthesize them locally
		for i := range out.ToolCalls {
			if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
				idSeq++
				out.ToolCalls[i].ID = fmt.Sprintf("call_%d", idSeq)
			}
		}
		history = append(history, out)

		if len(out.ToolCalls) == 0 {
			return out.Content, nil
		}

		if calls >= maxCalls {
			history = append(history, schema.SystemMessage(fmt.Sprintf(
				"SYSTEM NOTICE: You have reached the maximum tool call limit (%d). "+
					"Synthesize a helpful response using the information you've already gathered.",
				maxCalls,
			)))
			final, err := cm.Generate(ctx, history)
			if err != nil {
				return "", fmt.Errorf("model generate after tool limit: %w", err)
			}
			if final == nil {
				return "", fmt.Errorf("model returned nil message after tool limit")
			}
			return final.Content, nil
		}

		for _, tc := range out.ToolCalls {
			calls++
			result := executeToolCall(ctx, toolSet, tc)
			history = append(history, schema.ToolMessage(result, tc.ID))
		}
	}
}

func executeToolCall(ctx context.Context, toolSet map[string]tool.InvokableTool, tc schema.ToolCall) string {
	name := tc.Function.Name
	t, ok := toolSet[name]
	if !ok {
		// hallucinated or malformed tool call; return a compact result the
		// model can use to proceed
		logx.Warn().
			Str("tool_name", name).
			Str("arguments", tc.Function.Arguments).
			Msg("Unknown or invalid tool call; returning fallback result")
		return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name)
	}

	result, err := t.InvokableRun(ctx, tc.Function.Arguments)
	if err != nil {
		logx.Warn().Err(err).Str("tool_name", name).Msg("tool execution failed")
		return fmt.Sprintf("{\"error\":%q}", err.Error())
	}
	return result
}
