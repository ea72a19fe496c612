package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting the relay needs. It is built once at
// process start and passed into constructors.
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Limit  LimitConfig
	Log    LogConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	limit, err := loadLimitConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Limit: limit, Log: loadLogConfig()}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr        string
	RelayPath   string
	MaxBodySize int64
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	maxBody, err := parseOptionalIntEnv("RELAY_MAX_BODY_BYTES")
	if err != nil {
		return ServerConfig{}, err
	}
	bodyLimit := int64(1 << 20)
	if maxBody != nil && *maxBody > 0 {
		bodyLimit = int64(*maxBody)
	}

	path := getEnvOrDefault("RELAY_PATH", "/api/aurion-chat")
	if !strings.HasPrefix(path, "/") {
		return ServerConfig{}, fmt.Errorf("invalid RELAY_PATH value: %q", path)
	}
	path = strings.TrimSuffix(path, "/")

	cfg := ServerConfig{RelayPath: path, MaxBodySize: bodyLimit}

	if strings.Contains(port, ":") {
		// ":8080" and "127.0.0.1:8080" are accepted as-is.
		cfg.Addr = port
		return cfg, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	cfg.Addr = ":" + port
	return cfg, nil
}

const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
)

// AIConfig describes the completion provider.
type AIConfig struct {
	Provider     string
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float64
	Timeout      time.Duration
	ExposeDetail bool

	// Ark credentials, used when Provider is "ark".
	ArkAPIKey    string
	ArkAccessKey string
	ArkSecretKey string
	ArkBaseURL   string
	ArkRegion    string
}

// Enabled reports whether the credential for the selected provider is set.
// A relay without credentials still starts and answers every completion
// request with "engine not connected".
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderArk:
		return c.Model != "" && (c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != ""))
	default:
		return c.APIKey != "" && c.Model != ""
	}
}

// NewArkChatModel builds an Ark chat model from the configuration.
func (c AIConfig) NewArkChatModel(ctx context.Context) (model.BaseChatModel, error) {
	if c.Provider != ProviderArk || !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing, provide ARK_API_KEY + AI_MODEL or an AK/SK pair")
	}

	temperature := float32(c.Temperature)
	cfg := &ark.ChatModelConfig{
		BaseURL:     c.ArkBaseURL,
		Region:      c.ArkRegion,
		APIKey:      c.ArkAPIKey,
		AccessKey:   c.ArkAccessKey,
		SecretKey:   c.ArkSecretKey,
		Model:       c.Model,
		Temperature: &temperature,
	}
	if c.Timeout > 0 {
		timeout := c.Timeout
		cfg.Timeout = &timeout
	}

	chatModel, err := ark.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return chatModel, nil
}

func loadAIConfig() (AIConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderOpenAI))
	if provider != ProviderOpenAI && provider != ProviderArk {
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value: %q", provider)
	}

	temperature := 0.6
	if override, err := parseOptionalFloatEnv("AI_TEMPERATURE"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		temperature = *override
	}

	timeout, err := parseDurationEnv("AI_TIMEOUT", 60*time.Second)
	if err != nil {
		return AIConfig{}, err
	}

	exposeDetail, err := parseBoolEnv("AI_EXPOSE_UPSTREAM_DETAIL", true)
	if err != nil {
		return AIConfig{}, err
	}

	defaultModel := "gpt-4o-mini"
	if provider == ProviderArk {
		defaultModel = ""
	}

	return AIConfig{
		Provider:     provider,
		APIKey:       strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		BaseURL:      getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Model:        getEnvOrDefault("AI_MODEL", defaultModel),
		Temperature:  temperature,
		Timeout:      timeout,
		ExposeDetail: exposeDetail,
		ArkAPIKey:    strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		ArkAccessKey: strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		ArkSecretKey: strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		ArkBaseURL:   getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		ArkRegion:    getEnvOrDefault("ARK_REGION", "cn-beijing"),
	}, nil
}

const (
	LimitBackendMemory = "memory"
	LimitBackendRedis  = "redis"
)

// LimitConfig controls the optional server-held conversation counter. When
// ServerSide is false the relay trusts the count sent by the caller.
type LimitConfig struct {
	ServerSide bool
	Backend    string
	RedisURL   string
	TTL        time.Duration
}

func loadLimitConfig() (LimitConfig, error) {
	serverSide, err := parseBoolEnv("LIMIT_SERVER_SIDE", false)
	if err != nil {
		return LimitConfig{}, err
	}

	backend := strings.ToLower(getEnvOrDefault("LIMIT_BACKEND", LimitBackendMemory))
	if backend != LimitBackendMemory && backend != LimitBackendRedis {
		return LimitConfig{}, fmt.Errorf("invalid LIMIT_BACKEND value: %q", backend)
	}

	ttl, err := parseDurationEnv("LIMIT_TTL", 24*time.Hour)
	if err != nil {
		return LimitConfig{}, err
	}

	redisURL := strings.TrimSpace(os.Getenv("REDIS_URL"))
	if serverSide && backend == LimitBackendRedis && redisURL == "" {
		return LimitConfig{}, fmt.Errorf("REDIS_URL is required when LIMIT_BACKEND=redis")
	}

	return LimitConfig{
		ServerSide: serverSide,
		Backend:    backend,
		RedisURL:   redisURL,
		TTL:        ttl,
	}, nil
}

// LogConfig selects log verbosity and output format.
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "console")),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
