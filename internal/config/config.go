package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env    string
	Server ServerConfig
	AI     AIConfig
	Prices PricesConfig
	Cache  CacheConfig
	Audit  AuditConfig
	CORS   CORSConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// StaticDir - каталог фронтенда; пустое значение отключает раздачу статики.
	StaticDir string
}

type AIConfig struct {
	Provider           string
	APIKey             string
	BaseURL            string
	Model              string
	Timeout            time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
	MaxOutputTokens    int
}

type PricesConfig struct {
	Stocks           []string
	Crypto           []string
	VsCurrency       string
	Timeout          time.Duration
	YahooBaseURL     string
	CoinGeckoBaseURL string
}

type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

// AuditConfig: пустой DatabaseURL отключает аудит прогонов.
type AuditConfig struct {
	DatabaseURL     string
	MaxConns        int
	ConnMaxIdleTime time.Duration
}

type CORSConfig struct {
	Origins []string
}

type aiDefaults struct {
	baseURL string
	model   string
	keyEnv  string
}

var providerDefaults = map[string]aiDefaults{
	"gemini": {
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		model:   "gemini-2.0-flash",
		keyEnv:  "GEMINI_API_KEY",
	},
	"groq": {
		baseURL: "https://api.groq.com/openai/v1",
		model:   "llama-3.1-8b-instant",
		keyEnv:  "GROQ_API_KEY",
	},
	"anthropic": {
		model:  "claude-3-5-haiku-latest",
		keyEnv: "ANTHROPIC_API_KEY",
	},
}

// Load загружает конфигурацию приложения из окружения и .env.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")

	serverPort, err := parseIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return cfg, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return cfg, err
	}

	// Запрос анализа ждет модель до AI_TIMEOUT, поэтому запись дольше чтения.
	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Server = ServerConfig{
		Host:         getEnv("SERVER_HOST", "0.0.0.0"),
		Port:         serverPort,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		StaticDir:    strings.TrimSpace(getEnv("STATIC_DIR", "")),
	}

	aiTimeout, err := parseDurationEnv("AI_TIMEOUT", 45*time.Second)
	if err != nil {
		return cfg, err
	}

	aiRateLimitPerMinute, err := parseIntEnv("AI_RATE_LIMIT_PER_MINUTE", 30)
	if err != nil {
		return cfg, err
	}

	aiRateLimitBurst, err := parseIntEnv("AI_RATE_LIMIT_BURST", 10)
	if err != nil {
		return cfg, err
	}

	aiMaxOutputTokens, err := parseIntEnv("AI_MAX_OUTPUT_TOKENS", 4096)
	if err != nil {
		return cfg, err
	}

	aiProvider := strings.ToLower(strings.TrimSpace(getEnv("AI_PROVIDER", "gemini")))
	defaults := providerDefaults[aiProvider]

	aiAPIKey := getEnv("AI_API_KEY", "")
	if aiAPIKey == "" && defaults.keyEnv != "" {
		aiAPIKey = getEnv(defaults.keyEnv, "")
	}

	cfg.AI = AIConfig{
		Provider:           aiProvider,
		APIKey:             aiAPIKey,
		BaseURL:            getEnv("AI_BASE_URL", defaults.baseURL),
		Model:              getEnv("AI_MODEL", defaults.model),
		Timeout:            aiTimeout,
		RateLimitPerMinute: aiRateLimitPerMinute,
		RateLimitBurst:     aiRateLimitBurst,
		MaxOutputTokens:    aiMaxOutputTokens,
	}

	priceTimeout, err := parseDurationEnv("PRICE_TIMEOUT", 10*time.Second)
	if err != nil {
		return cfg, err
	}

	stocks := parseListEnv("PRICE_STOCKS")
	if stocks == nil {
		stocks = []string{"^NSEI", "^BSESN"}
	}

	crypto := parseCSVEnv("PRICE_CRYPTO")
	if crypto == nil {
		crypto = []string{"bitcoin", "ethereum"}
	}

	cfg.Prices = PricesConfig{
		Stocks:           stocks,
		Crypto:           crypto,
		VsCurrency:       strings.ToLower(getEnv("PRICE_VS_CURRENCY", "usd")),
		Timeout:          priceTimeout,
		YahooBaseURL:     getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		CoinGeckoBaseURL: getEnv("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
	}

	cacheTTL, err := parseDurationEnv("PRICE_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return cfg, err
	}

	cfg.Cache = CacheConfig{
		RedisURL: strings.TrimSpace(getEnv("REDIS_URL", "")),
		TTL:      cacheTTL,
	}

	auditMaxConns, err := parseIntEnv("AUDIT_DB_MAX_CONNS", 4)
	if err != nil {
		return cfg, err
	}

	auditIdleTime, err := parseDurationEnv("AUDIT_DB_CONN_MAX_IDLE_TIME", 5*time.Minute)
	if err != nil {
		return cfg, err
	}

	cfg.Audit = AuditConfig{
		DatabaseURL:     strings.TrimSpace(getEnv("AUDIT_DATABASE_URL", "")),
		MaxConns:        auditMaxConns,
		ConnMaxIdleTime: auditIdleTime,
	}

	origins := parseListEnv("CORS_ORIGINS")
	if origins == nil {
		origins = []string{"http://localhost:8000"}
	}
	cfg.CORS = CORSConfig{Origins: origins}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be greater than 0")
	}

	if _, ok := providerDefaults[c.AI.Provider]; !ok {
		return fmt.Errorf("AI_PROVIDER must be one of gemini, groq, anthropic")
	}

	if c.AI.Model == "" {
		return fmt.Errorf("AI_MODEL is required")
	}

	if c.AI.Provider != "anthropic" && c.AI.BaseURL == "" {
		return fmt.Errorf("AI_BASE_URL is required")
	}

	if c.AI.RateLimitPerMinute <= 0 {
		return fmt.Errorf("AI_RATE_LIMIT_PER_MINUTE must be greater than 0")
	}

	if c.AI.RateLimitBurst <= 0 {
		return fmt.Errorf("AI_RATE_LIMIT_BURST must be greater than 0")
	}

	if c.AI.MaxOutputTokens <= 0 {
		return fmt.Errorf("AI_MAX_OUTPUT_TOKENS must be greater than 0")
	}

	if c.Prices.VsCurrency == "" {
		return fmt.Errorf("PRICE_VS_CURRENCY is required")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

// parseCSVEnv разбирает список идентификаторов без учета регистра.
func parseCSVEnv(key string) []string {
	values := parseListEnv(key)
	for i, value := range values {
		values[i] = strings.ToLower(value)
	}
	return values
}

// parseListEnv разбирает список, сохраняя регистр (тикеры, адреса).
// Пустой список после разбора равен отсутствию переменной.
func parseListEnv(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
