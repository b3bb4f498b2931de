// Package clients constructs the process-wide external-service bundle:
// chat models, the relational store, object storage and the tool set.
// Construction happens once; concurrent first requests share one bundle.
package clients

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/tool"
	"google.golang.org/genai"

	"github.com/tripgram/server/internal/agent/model"
	"github.com/tripgram/server/internal/agent/tools"
	"github.com/tripgram/server/internal/media"
	"github.com/tripgram/server/internal/storage"
	logx "github.com/tripgram/server/pkg/logger"
)

// Config gathers the provider and infrastructure settings for the bundle.
type Config struct {
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	Router   model.RouterModelConfig
	Response model.ResponseModelConfig
	Store    model.StoreConfig
	Objects  model.ObjectStoreConfig
	Search   model.SearchConfig
}

// Bundle is the shared set of configured external-service clients.
type Bundle struct {
	Router   *gemini.ChatModel
	Response *gemini.ChatModel

	Store   *storage.SocialStore
	Objects *storage.ObjectStore

	AssistantTools []tool.InvokableTool
	RetrievalTools []tool.InvokableTool

	Rewriter media.URLRewriter
}

var (
	shared     *Bundle
	sharedErr  error
	sharedOnce sync.Once
)

// Shared returns the process-wide bundle, constructing it on first use.
func Shared(ctx context.Context, cfg Config) (*Bundle, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = NewBundle(ctx, cfg)
	})
	return shared, sharedErr
}

// NewBundle constructs a fresh bundle. Most callers want Shared.
func NewBundle(ctx context.Context, cfg Config) (*Bundle, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	routerModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Router.Model,
		Temperature: &cfg.Router.Temperature,
		MaxTokens:   &cfg.Router.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating router model")
		return nil, fmt.Errorf("error creating router model: %w", err)
	}

	responseModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Response.Model,
		Temperature: &cfg.Response.Temperature,
		MaxTokens:   &cfg.Response.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating response model")
		return nil, fmt.Errorf("error creating response model: %w", err)
	}

	store, err := storage.OpenSocialStore(cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("open social store: %w", err)
	}

	objects, err := storage.NewObjectStore(ctx, cfg.Objects)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create object store: %w", err)
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}

	return &Bundle{
		Router:   routerModel,
		Response: responseModel,
		Store:    store,
		Objects:  objects,
		AssistantTools: []tool.InvokableTool{
			tools.NewWebSearchTool(cfg.Search, httpClient),
			tools.NewCalculateTool(),
		},
		RetrievalTools: []tool.InvokableTool{
			tools.NewRunQueryTool(store),
		},
		Rewriter: objects.Rewriter(),
	}, nil
}

// Close releases the bundle's connections.
func (b *Bundle) Close() error {
	if b.Store != nil {
		return b.Store.Close()
	}
	return nil
}
