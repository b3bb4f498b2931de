package orchestrator

import (
	"context"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tripgram/server/internal/agent/model"
	"github.com/tripgram/server/internal/agent/orchestrator/parsers"
	"github.com/tripgram/server/internal/agent/orchestrator/prompts"
	logx "github.com/tripgram/server/pkg/logger"
)

// Classifier is the one-shot fast-path categorizer that picks the first
// worker. It fails open: any failure resolves to the data category so
// classification can never block the pipeline.
type Classifier struct {
	cm      einomodel.BaseChatModel
	timeout time.Duration
}

func NewClassifier(cm einomodel.BaseChatModel, timeout time.Duration) *Classifier {
	return &Classifier{cm: cm, timeout: timeout}
}

func (c *Classifier) Classify(ctx context.Context, query string) model.Category {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	system, err := prompts.RenderClassifierSystem(ctx)
	if err != nil {
		logx.Warn().Err(err).Msg("classifier prompt render failed; defaulting to data category")
		return model.CategoryData
	}

	out, err := c.cm.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(query),
	})
	if err != nil || out == nil {
		logx.Warn().Err(err).Msg("classification call failed; defaulting to data category")
		return model.CategoryData
	}

	category, err := parsers.ParseCategory(out.Content)
	if err != nil {
		logx.Warn().Err(err).Msg("classification unparseable; defaulting to data category")
		return model.CategoryData
	}

	logx.Debug().Str("category", category.String()).Msg("query classified")
	return category
}
