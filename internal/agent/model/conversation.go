package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

type ChatHistoryRepository interface {
	// AddMessage appends a message to the stored history for the given user.
	AddMessage(ctx context.Context, userID int64, message *schema.Message) error

	// LoadHistory retrieves the stored history for a user.
	LoadHistory(ctx context.Context, userID int64) (*ChatHistory, error)

	// ClearHistory removes all stored history for a user.
	ClearHistory(ctx context.Context, userID int64) error

	// MessageCount returns the number of stored messages for a user.
	MessageCount(ctx context.Context, userID int64) (int, error)
}

// ChatHistory represents loaded history with its owner.
type ChatHistory struct {
	UserID   int64
	Messages []*schema.Message
}
