package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/tripgram/server/internal/agent/clients"
	"github.com/tripgram/server/internal/agent/model"
	"github.com/tripgram/server/internal/agent/orchestrator"
	"github.com/tripgram/server/internal/agent/repo"
	"github.com/tripgram/server/internal/core"
	"github.com/tripgram/server/internal/service"
	"github.com/tripgram/server/internal/storage"
	logx "github.com/tripgram/server/pkg/logger"
	pkgredis "github.com/tripgram/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the agent example,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure
	Redis pkgredis.Config

	// External clients (LLM provider, stores, search)
	Clients clients.Config

	// Agent configs
	Orchestration model.OrchestratorConfig
	History       model.HistoryConfig
}

func main() {
	fmt.Println("Testing Tripgram Agent Orchestrator...")
	ctx := context.Background()
	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.EnvironmentFromOS()})

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	rdb, err := envCfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	fmt.Println("Connected to Redis successfully")

	bundle, err := clients.Shared(ctx, envCfg.Clients)
	if err != nil {
		log.Fatalf("Failed to initialise external clients: %v", err)
	}
	defer bundle.Close()

	if err := bundle.Store.Seed(ctx); err != nil {
		log.Fatalf("Failed to seed social store: %v", err)
	}

	orch, err := orchestrator.New(ctx, orchestrator.Config{
		RouterModel:       bundle.Router,
		ResponseModel:     bundle.Response,
		AssistantTools:    bundle.AssistantTools,
		RetrievalTools:    bundle.RetrievalTools,
		SchemaDescription: storage.SchemaDescription,
		Orchestration:     envCfg.Orchestration,
	})
	if err != nil {
		log.Fatalf("Failed to build orchestrator: %v", err)
	}

	ttl, err := time.ParseDuration(envCfg.History.TTL)
	if err != nil {
		log.Fatalf("Invalid HISTORY_TTL '%s': %v", envCfg.History.TTL, err)
	}
	history := repo.NewRedisChatHistoryRepository(rdb, ttl, envCfg.History.MaxTurns)

	svc := service.NewChatService(orch, history, bundle.Rewriter)

	testQueries := []struct {
		description string
		query       string
	}{
		{
			description: "General chat",
			query:       "Hi! What can you help me with?",
		},
		{
			description: "Data lookup with media",
			query:       "Show me my latest posts with photos",
		},
		{
			description: "Recommendation based on my activity",
			query:       "Recommend some places I might like to visit next",
		},
	}

	userID := int64(1)

	for i, test := range testQueries {
		fmt.Printf("\nTest %d: %s\n", i+1, test.description)
		fmt.Printf("Query: \"%s\"\n", test.query)
		fmt.Println("Processing...")

		resp := svc.Ask(ctx, service.AskRequest{
			Question: test.query,
			UserID:   userID,
		})

		fmt.Printf("Response %d: %s\n", i+1, resp.Text)
		if resp.HasImages {
			for _, img := range resp.Images {
				fmt.Printf("  image: %s (%s)\n", img.URL, img.Alt)
			}
		}
		fmt.Println("────────────────────────────────────────────────")

		// add slight delay between tests for readability
		time.Sleep(500 * time.Millisecond)
	}

	fmt.Println("All orchestrator tests completed successfully!")
}
