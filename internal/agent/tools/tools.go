// Package tools defines the Eino tools the capability workers can call:
// web search, calculation, and read-only store queries.
package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

const (
	ToolWebSearch = "web_search"
	ToolCalculate = "calculate"
	ToolRunQuery  = "run_query"
)

// Infos resolves ToolInfo for a tool set, for binding to a chat model.
func Infos(ctx context.Context, ts []tool.InvokableTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(ts))
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("get tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// ByName indexes a tool set for dispatch during a tool loop.
func ByName(ctx context.Context, ts []tool.InvokableTool) (map[string]tool.InvokableTool, error) {
	m := make(map[string]tool.InvokableTool, len(ts))
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("get tool info: %w", err)
		}
		m[info.Name] = t
	}
	return m, nil
}
