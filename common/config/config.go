package config

import (
	"strings"
	"time"

	"github.com/fuchsia74/assistant-gateway/common/env"
)

var (
	// AzureEndpoint is the base URL of the Azure OpenAI resource, e.g.
	// https://my-resource.openai.azure.com. Required for live use; the
	// server starts without it so tests can inject their own upstream.
	AzureEndpoint = strings.TrimRight(strings.TrimSpace(env.String("AZURE_OPENAI_ENDPOINT", "")), "/")
	// AzureAPIKey authenticates requests to the Azure OpenAI resource via
	// the api-key header. Ambient identity setups may leave it empty.
	AzureAPIKey = strings.TrimSpace(env.String("AZURE_OPENAI_API_KEY", ""))
	// AzureAPIVersion is appended to every upstream request as the
	// api-version query parameter.
	AzureAPIVersion = env.String("AZURE_OPENAI_API_VERSION", "2024-05-01-preview")
	// DeploymentName selects the model deployment backing the assistant.
	DeploymentName = env.String("AZURE_DEPLOYMENT_NAME", "gpt-4o")
	// AssistantID pins the gateway to an existing assistant. When empty a
	// fresh assistant is created from the static definition per request.
	AssistantID = strings.TrimSpace(env.String("AZURE_OPENAI_ASSISTANT_ID", ""))

	// ServerPort overrides the --port flag when running inside container or PaaS environments.
	ServerPort = strings.TrimSpace(env.String("PORT", ""))
	// GinMode allows forcing Gin into release mode (or other modes) without recompiling.
	GinMode = strings.TrimSpace(env.String("GIN_MODE", ""))

	// DebugEnabled toggles verbose structured logging when DEBUG=true.
	DebugEnabled = env.Bool("DEBUG", false)

	// MaxToolRounds bounds how many requires-action rounds a single request
	// may go through before the stream is terminated.
	MaxToolRounds = env.Int("MAX_TOOL_ROUNDS", 3)

	// RelayTimeout bounds upstream HTTP requests (seconds) before aborting them. Zero disables the bound.
	RelayTimeout = env.Int("RELAY_TIMEOUT", 0)
	// ShutdownTimeout specifies the graceful shutdown timeout for the HTTP server and in-flight streams.
	ShutdownTimeout = env.Duration("SHUTDOWN_TIMEOUT", 30*time.Second)

	// AssistantCacheTTL controls how long a retrieved assistant definition
	// stays in the in-process cache before the next request re-fetches it.
	AssistantCacheTTL = env.Duration("ASSISTANT_CACHE_TTL", 10*time.Minute)

	// ApproximateTokenEnabled replaces tiktoken encoding with a cheap
	// character-ratio estimate when counting streamed completion text.
	ApproximateTokenEnabled = env.Bool("APPROXIMATE_TOKEN", false)

	// EnablePrometheusMetrics exposes the /metrics endpoint for Prometheus scrapers when true.
	EnablePrometheusMetrics = env.Bool("ENABLE_PROMETHEUS_METRICS", true)
)

// AssistantDefinition is the static configuration used when no assistant id
// is pinned. The gateway declares a single getStockPrice function tool.
type AssistantDefinition struct {
	Name         string
	Instructions string
	Model        string
}

// DefaultAssistant returns the process-wide assistant definition. The model
// is resolved from DeploymentName at call time so tests can override it.
func DefaultAssistant() AssistantDefinition {
	return AssistantDefinition{
		Name: "Portfolio Assistant",
		Instructions: "You are a personal financial assistant. " +
			"Answer questions about stock prices using the getStockPrice tool, " +
			"and keep answers short and factual.",
		Model: DeploymentName,
	}
}
