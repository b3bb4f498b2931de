// Package prompts renders the orchestrator's system prompts from embedded
// templates via the Eino prompt component, which also emits prompt callbacks.
package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/tripgram/server/internal/agent/model"
)

//go:embed template/classifier_prompt.txt
var classifierSystemPrompt string

//go:embed template/supervisor_prompt.txt
var supervisorSystemPrompt string

//go:embed template/assistant_prompt.txt
var assistantSystemPrompt string

//go:embed template/retrieval_prompt.txt
var retrievalSystemPrompt string

//go:embed template/recommender_prompt.txt
var recommenderSystemPrompt string

//go:embed template/synthesizer_prompt.txt
var synthesizerSystemPrompt string

// renderSystem pushes a fully substituted system prompt through the Eino
// prompt component so prompt callbacks fire, and returns the final string.
func renderSystem(ctx context.Context, content string) (string, error) {
	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("render prompt: empty result")
	}
	return msgs[0].Content, nil
}

// RenderClassifierSystem returns the one-shot categorization instruction.
func RenderClassifierSystem(ctx context.Context) (string, error) {
	return renderSystem(ctx, classifierSystemPrompt)
}

// RenderSupervisorSystem returns the routing instruction with the allowed
// label enumeration substituted in.
func RenderSupervisorSystem(ctx context.Context, options []string) (string, error) {
	members := []string{model.WorkerDataRetrieval, model.WorkerRecommender, model.WorkerAssistant}
	content := strings.NewReplacer(
		"{members}", strings.Join(members, ", "),
		"{options}", strings.Join(options, ", "),
		"{finish}", model.FinishLabel,
	).Replace(supervisorSystemPrompt)
	return renderSystem(ctx, content)
}

// RenderAssistantSystem returns the general assistant instruction.
func RenderAssistantSystem(ctx context.Context) (string, error) {
	return renderSystem(ctx, assistantSystemPrompt)
}

// RenderRetrievalSystem returns the data-retrieval instruction. When the
// query mentions visual content, a media-join directive is appended.
func RenderRetrievalSystem(ctx context.Context, schemaDesc string, userID int64, needsImages bool) (string, error) {
	imageInstruction := ""
	if needsImages {
		imageInstruction = " When querying posts or users, JOIN with the media table and include the external_resource_url field so image URLs come back with the data."
	}
	content := strings.NewReplacer(
		"{schema}", schemaDesc,
		"{user_id}", fmt.Sprintf("%d", userID),
		"{image_instruction}", imageInstruction,
	).Replace(retrievalSystemPrompt)
	return renderSystem(ctx, content)
}

// RenderRecommenderSystem returns the recommendation instruction, with an
// optional excerpt of previously retrieved data.
func RenderRecommenderSystem(ctx context.Context, userID int64, retrievalContext string) (string, error) {
	contextBlock := ""
	if retrievalContext != "" {
		contextBlock = "\n\nInformation already looked up for them:\n" + retrievalContext
	}
	content := strings.NewReplacer(
		"{user_id}", fmt.Sprintf("%d", userID),
		"{context}", contextBlock,
	).Replace(recommenderSystemPrompt)
	return renderSystem(ctx, content)
}

// RenderSynthesizerSystem returns the final-response instruction with its
// single-field output contract.
func RenderSynthesizerSystem(ctx context.Context) (string, error) {
	return renderSystem(ctx, synthesizerSystemPrompt)
}
