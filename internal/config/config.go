package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Assistant modes. Scripted is the deterministic rule engine; the others
// name the LLM backend running the assistant role.
const (
	AssistantScripted  = "scripted"
	AssistantOpenAI    = "openai"
	AssistantAnthropic = "anthropic"
	AssistantOllama    = "ollama"
	AssistantGrok      = "grok"
)

// Backend modes. Local is the simulated operation set; the others reach a
// real backend service over the named transport.
const (
	BackendLocal     = "local"
	BackendStdio     = "stdio"
	BackendHTTP      = "http"
	BackendWebSocket = "ws"
)

// Config holds application configuration
type Config struct {
	Assistant         string   `toml:"assistant"`
	OllamaModel       string   `toml:"ollama_model"` // "model:version", e.g. "llama3:latest"
	Backend           string   `toml:"backend"`
	BackendEndpoint   string   `toml:"backend_endpoint"` // URL or command path, per backend mode
	DBPath            string   `toml:"db_path"`
	Debug             bool     `toml:"debug"`
	MaxRounds         int      `toml:"max_rounds"`
	SharedLedger      bool     `toml:"shared_ledger"` // one retry ledger across all conversations
	LLMTimeoutSeconds int      `toml:"llm_timeout_seconds"`
	Script            []string `toml:"script"` // scripted user replies; non-interactive when set
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Assistant:         AssistantScripted,
		OllamaModel:       "llama3:latest",
		Backend:           BackendLocal,
		DBPath:            "supportchat.db",
		LLMTimeoutSeconds: 60,
	}
}

// Load reads a TOML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}
