package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	Redis     RedisConfig
	Interview InterviewConfig
	Logger    LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LLMConfig describes the completion backend. The backend is opaque beyond
// "prompt in, text out"; everything here is transport tuning.
type LLMConfig struct {
	ServerURL   string
	Model       string
	Timeout     time.Duration
	Temperature float64
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
}

// InterviewConfig holds session defaults applied when a start request omits a
// field.
type InterviewConfig struct {
	DefaultTopic  string
	DefaultTone   string
	DefaultCount  int
	MaxCount      int
	EvalCacheTTL  time.Duration
	SubmitWorkers int
}

type LoggerConfig struct {
	Level string
	Env   string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 15)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("llm.server", "http://localhost:11434")
	viper.SetDefault("llm.model", "qwen3:0.6b")
	viper.SetDefault("llm.timeout", 30)
	viper.SetDefault("llm.temperature", 0.1)
	viper.SetDefault("interview.default_topic", "General")
	viper.SetDefault("interview.default_tone", "Professional")
	viper.SetDefault("interview.default_count", 5)
	viper.SetDefault("interview.max_count", 20)
	viper.SetDefault("interview.eval_cache_ttl", 24*time.Hour)
	viper.SetDefault("interview.submit_workers", 4)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		LLM: LLMConfig{
			ServerURL:   viper.GetString("llm.server"),
			Model:       viper.GetString("llm.model"),
			Timeout:     viper.GetDuration("llm.timeout") * time.Second,
			Temperature: viper.GetFloat64("llm.temperature"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("redis.enabled"),
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Interview: InterviewConfig{
			DefaultTopic:  viper.GetString("interview.default_topic"),
			DefaultTone:   viper.GetString("interview.default_tone"),
			DefaultCount:  viper.GetInt("interview.default_count"),
			MaxCount:      viper.GetInt("interview.max_count"),
			EvalCacheTTL:  viper.GetDuration("interview.eval_cache_ttl"),
			SubmitWorkers: viper.GetInt("interview.submit_workers"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
	}

	// Environment overrides for the settings most often tuned per deployment.
	if llmServer := os.Getenv("LLM_SERVER"); llmServer != "" {
		config.LLM.ServerURL = llmServer
	}
	if llmModel := os.Getenv("LLM_MODEL"); llmModel != "" {
		config.LLM.Model = llmModel
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
		config.Redis.Enabled = true
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}

	return config, nil
}
