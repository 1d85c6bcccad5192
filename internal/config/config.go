package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Dev struct {
		Mode bool `yaml:"mode"`
	} `yaml:"dev"`
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	Model struct {
		DataDir     string  `yaml:"data_dir"`
		AssetDir    string  `yaml:"asset_dir"`
		Path        string  `yaml:"path"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
		TopK        int     `yaml:"top_k"`
	} `yaml:"model"`
	LLM struct {
		Provider  string `yaml:"provider"`
		OllamaURL string `yaml:"ollama_url"`
	} `yaml:"llm"`
	Rules struct {
		Path string `yaml:"path"`
	} `yaml:"rules"`
	Security struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"security"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func Default() Config {
	var cfg Config
	cfg.HTTP.Addr = ":8090"
	cfg.Dev.Mode = true
	cfg.Model.DataDir = "data"
	cfg.Model.AssetDir = "assets"
	cfg.Model.Path = "models/gemma-2b-it.bin"
	cfg.Model.MaxTokens = 256
	cfg.Model.Temperature = 0.3
	cfg.Model.TopK = 40
	cfg.LLM.Provider = "none"
	cfg.LLM.OllamaURL = "http://localhost:11434"
	cfg.Log.Level = "info"
	return cfg
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, err
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SG_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("SG_DEV_MODE"); v != "" {
		cfg.Dev.Mode = parseBool(v, cfg.Dev.Mode)
	}
	if v := os.Getenv("SG_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SG_REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("SG_MODEL_DATA_DIR"); v != "" {
		cfg.Model.DataDir = v
	}
	if v := os.Getenv("SG_MODEL_ASSET_DIR"); v != "" {
		cfg.Model.AssetDir = v
	}
	if v := os.Getenv("SG_MODEL_PATH"); v != "" {
		cfg.Model.Path = v
	}
	if v := os.Getenv("SG_MODEL_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Model.MaxTokens = n
		}
	}
	if v := os.Getenv("SG_MODEL_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Model.Temperature = f
		}
	}
	if v := os.Getenv("SG_MODEL_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Model.TopK = n
		}
	}
	if v := os.Getenv("SG_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("SG_OLLAMA_URL"); v != "" {
		cfg.LLM.OllamaURL = v
	}
	if v := os.Getenv("SG_RULES_PATH"); v != "" {
		cfg.Rules.Path = v
	}
	if v := os.Getenv("SG_API_KEY"); v != "" {
		cfg.Security.APIKey = v
	}
	if v := os.Getenv("SG_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func parseBool(input string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
