package model

// ================ Config ================

type OrchestratorConfig struct {
	MaxIterations int    `envconfig:"ORCHESTRATOR_MAX_ITERATIONS" default:"5"`
	CallTimeout   string `envconfig:"ORCHESTRATOR_CALL_TIMEOUT" default:"30s"`
	Tools         struct {
		MaxCalls int `envconfig:"ORCHESTRATOR_TOOL_MAX_CALLS" default:"10"`
	}
	Retrieval struct {
		// ContextLimit bounds the retrieval excerpt handed to the recommender, in runes.
		ContextLimit int `envconfig:"ORCHESTRATOR_RETRIEVAL_CONTEXT_LIMIT" default:"500"`
	}
}

type RouterModelConfig struct {
	Model       string  `envconfig:"ROUTER_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"ROUTER_MAX_TOKENS" default:"500"`
	Temperature float32 `envconfig:"ROUTER_TEMPERATURE" default:"0.1"`
}

type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.3"`
}

type HistoryConfig struct {
	TTL      string `envconfig:"HISTORY_TTL" default:"15m"`
	MaxTurns int    `envconfig:"HISTORY_MAX_TURNS" default:"20"`
}

type StoreConfig struct {
	// DSN points database/sql at the social store. The orchestrator only
	// ever reads from it.
	DSN string `envconfig:"STORE_DSN" default:"file:tripgram.db"`
}

type ObjectStoreConfig struct {
	Endpoint       string `envconfig:"OBJECT_STORE_ENDPOINT" default:"http://minio:9000"`
	PublicEndpoint string `envconfig:"OBJECT_STORE_PUBLIC_ENDPOINT" default:"http://localhost:9000"`
	Bucket         string `envconfig:"OBJECT_STORE_BUCKET" default:"media"`
	Region         string `envconfig:"OBJECT_STORE_REGION" default:"us-east-1"`
	AccessKey      string `envconfig:"OBJECT_STORE_ACCESS_KEY"`
	SecretKey      string `envconfig:"OBJECT_STORE_SECRET_KEY"`
}

type SearchConfig struct {
	APIKey     string `envconfig:"SEARCH_API_KEY"`
	BaseURL    string `envconfig:"SEARCH_BASE_URL" default:"https://api.tavily.com"`
	MaxResults int    `envconfig:"SEARCH_MAX_RESULTS" default:"5"`
}
