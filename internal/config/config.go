package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	MaxUploadMB  int
	LogFile      string

	// decision oracle (OpenAI-compatible endpoint)
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string

	// supplier web search
	TavilyKey string

	// supplier sedimentation store; empty disables persistence
	DatabaseURL string

	// matching / agent knobs
	MaxToolSteps   int
	FuzzyThreshold float64
	WeakNameLen    int
}

func Load() Config {
	port, _ := strconv.Atoi(getenv("PORT", "8086"))
	mb, _ := strconv.Atoi(getenv("MAX_UPLOAD_MB", "64"))
	steps, _ := strconv.Atoi(getenv("MAX_TOOL_STEPS", "3"))
	weak, _ := strconv.Atoi(getenv("WEAK_NAME_LEN", "2"))
	threshold, err := strconv.ParseFloat(getenv("FUZZY_THRESHOLD", "80"), 64)
	if err != nil {
		threshold = 80
	}
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	return Config{
		Host:           getenv("HOST", "127.0.0.1"),
		Port:           port,
		AllowOrigins:   origins,
		LogLevel:       getenv("LOG_LEVEL", "info"),
		MaxUploadMB:    mb,
		LogFile:        getenv("LOG_FILE", "logs/quote-service.log"),
		OpenAIKey:      getenv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getenv("OPENAI_BASE_URL", "https://api.deepseek.com/v1"),
		OpenAIModel:    getenv("OPENAI_MODEL", "deepseek-chat"),
		TavilyKey:      getenv("TAVILY_API_KEY", ""),
		DatabaseURL:    getenv("DATABASE_URL", ""),
		MaxToolSteps:   steps,
		FuzzyThreshold: threshold,
		WeakNameLen:    weak,
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
