// Package service exposes the chatbot's request-level API: it resolves
// chat history, runs the orchestrator and shapes the response. Whatever
// happens inside, the caller always receives a well-formed response.
package service

import (
	"context"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/tripgram/server/internal/agent/model"
	"github.com/tripgram/server/internal/agent/orchestrator"
	"github.com/tripgram/server/internal/media"
	logx "github.com/tripgram/server/pkg/logger"
)

// apologyText is returned in place of a reply when synthesis fails. It
// carries no internal detail.
const apologyText = "Sorry, something went wrong while putting your answer together. Please try again."

var log = logx.With("service")

// AskRequest is the inbound question contract.
type AskRequest struct {
	Question    string        `json:"question"`
	UserID      int64         `json:"user_id"`
	ChatHistory []HistoryTurn `json:"chat_history"`
}

// HistoryTurn is one prior conversation turn supplied by the caller.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StructuredResponse is the rich response shape with extracted images.
type StructuredResponse struct {
	Text      string        `json:"text"`
	Images    []media.Image `json:"images"`
	HasImages bool          `json:"has_images"`
	UserID    int64         `json:"user_id"`
}

// PlainResponse is the simple response shape.
type PlainResponse struct {
	Response string `json:"response"`
	UserID   int64  `json:"user_id"`
}

// ChatService runs questions through the orchestrator.
type ChatService struct {
	orch     *orchestrator.Orchestrator
	history  model.ChatHistoryRepository // optional; nil disables server-side history
	rewriter media.URLRewriter
}

func NewChatService(orch *orchestrator.Orchestrator, history model.ChatHistoryRepository, rewriter media.URLRewriter) *ChatService {
	return &ChatService{orch: orch, history: history, rewriter: rewriter}
}

// Ask processes one question and returns the structured response shape.
func (s *ChatService) Ask(ctx context.Context, req AskRequest) StructuredResponse {
	userID := req.UserID
	if userID <= 0 {
		userID = 1
	}
	requestID := uuid.NewString()

	history := s.resolveHistory(ctx, userID, req.ChatHistory)

	text, state, err := s.orch.Ask(ctx, req.Question, userID, history)
	if err != nil {
		log.Error().
			Err(err).
			Str("request_id", requestID).
			Int64("user_id", userID).
			Strs("agents_used", state.AgentsUsed).
			Msg("request failed during synthesis")
		return StructuredResponse{
			Text:      apologyText,
			Images:    []media.Image{},
			HasImages: false,
			UserID:    userID,
		}
	}

	log.Info().
		Str("request_id", requestID).
		Int64("user_id", userID).
		Int("iterations", state.IterationCount).
		Strs("agents_used", state.AgentsUsed).
		Msg("request complete")

	s.saveHistory(ctx, userID, req.Question, text)

	images := media.ExtractImages(text, s.rewriter)
	if images == nil {
		images = []media.Image{}
	}

	return StructuredResponse{
		Text:      s.rewriter.Rewrite(text),
		Images:    images,
		HasImages: len(images) > 0,
		UserID:    userID,
	}
}

// AskPlain processes one question and returns the simple response shape.
func (s *ChatService) AskPlain(ctx context.Context, req AskRequest) PlainResponse {
	structured := s.Ask(ctx, req)
	return PlainResponse{Response: structured.Text, UserID: structured.UserID}
}

// resolveHistory prefers caller-supplied turns; with none, server-side
// history is loaded when a repository is configured. History failures
// never block the request.
func (s *ChatService) resolveHistory(ctx context.Context, userID int64, turns []HistoryTurn) []*schema.Message {
	if len(turns) > 0 {
		msgs := make([]*schema.Message, 0, len(turns))
		for _, t := range turns {
			switch t.Role {
			case "user":
				msgs = append(msgs, schema.UserMessage(t.Content))
			case "assistant":
				msgs = append(msgs, schema.AssistantMessage(t.Content, nil))
			}
		}
		return msgs
	}

	if s.history == nil {
		return nil
	}
	loaded, err := s.history.LoadHistory(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("failed to load chat history; continuing without it")
		return nil
	}
	return loaded.Messages
}

// saveHistory persists the exchange best-effort.
func (s *ChatService) saveHistory(ctx context.Context, userID int64, question, answer string) {
	if s.history == nil {
		return
	}
	if err := s.history.AddMessage(ctx, userID, schema.UserMessage(question)); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("failed to save user message")
		return
	}
	if err := s.history.AddMessage(ctx, userID, schema.AssistantMessage(answer, nil)); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("failed to save assistant message")
	}
}
