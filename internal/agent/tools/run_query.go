package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

// QueryRunner is the read path of the relational store.
type QueryRunner interface {
	RunReadOnlyQuery(ctx context.Context, query string) (string, error)
}

type RunQueryInput struct {
	SQL string `json:"sql"`
}

type RunQueryOutput struct {
	Rows string `json:"rows"`
}

// NewRunQueryTool exposes read-only SQL execution to the retrieval model.
func NewRunQueryTool(runner QueryRunner) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolRunQuery,
			Desc: "Execute a read-only SQL SELECT against the application database (users, posts, places, follows, media, timeline). Returns rows as JSON.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"sql": {
					Type:     "string",
					Desc:     "A single SELECT statement",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *RunQueryInput) (*RunQueryOutput, error) {
			q := strings.TrimSpace(in.SQL)
			if q == "" {
				return nil, fmt.Errorf("sql is required")
			}
			rows, err := runner.RunReadOnlyQuery(ctx, q)
			if err != nil {
				return nil, err
			}
			return &RunQueryOutput{Rows: rows}, nil
		},
	)
}
