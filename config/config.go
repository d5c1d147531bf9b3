package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string           `mapstructure:"port"`
	UploadDir    string           `mapstructure:"upload_dir"`
	Log          LogConfig        `mapstructure:"log"`
	Extraction   ExtractionConfig `mapstructure:"extraction"`
	Gateway      GatewayConfig    `mapstructure:"gateway"`
	OpenAI       ProviderConfig   `mapstructure:"openai"`
	Gemini       ProviderConfig   `mapstructure:"gemini"`
	Weaviate     WeaviateConfig   `mapstructure:"weaviate"`
	OpenAIAPIKey string           `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey string           `mapstructure:"GEMINI_API_KEY"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ExtractionConfig struct {
	MinTextChars    int    `mapstructure:"min_text_chars"`
	OCRTriggerChars int    `mapstructure:"ocr_trigger_chars"`
	ChunkSize       int    `mapstructure:"chunk_size"`
	ChunkOverlap    int    `mapstructure:"chunk_overlap"`
	OCRLanguages    string `mapstructure:"ocr_languages"`
}

type GatewayConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	ContextChars   int `mapstructure:"context_chars"`
}

type ProviderConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

type WeaviateConfig struct {
	Host     string `mapstructure:"host"`
	Text2Vec string `mapstructure:"text2vec"`
	APIKey   string `mapstructure:"WEAVIATE_APIKEY"`
}

// Timeout returns the gateway request timeout.
func (c GatewayConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEY")
	v.BindEnv("weaviate.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if config.Port == "" {
		config.Port = "8080"
	}
	if config.UploadDir == "" {
		config.UploadDir = "uploads"
	}

	return &config, nil
}
