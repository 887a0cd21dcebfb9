package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"SupportChat/internal/chat"
	"SupportChat/internal/config"
)

func main() {
	var configPath string
	var script string

	cfg := config.Default()

	flag.StringVar(&configPath, "config", "", "Path to TOML config file")
	flag.StringVar(&cfg.Assistant, "assistant", cfg.Assistant, "Assistant mode (scripted|openai|anthropic|ollama|grok)")
	flag.StringVar(&cfg.OllamaModel, "ollama-model", cfg.OllamaModel, "Ollama model specification (format: model:version)")
	flag.StringVar(&cfg.Backend, "backend", cfg.Backend, "Backend mode (local|stdio|http|ws)")
	flag.StringVar(&cfg.BackendEndpoint, "backend-endpoint", "", "Remote backend URL or command path")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	flag.IntVar(&cfg.MaxRounds, "max-rounds", 0, "Round budget per conversation (0 = default)")
	flag.BoolVar(&cfg.SharedLedger, "shared-ledger", false, "Share one retry ledger across conversations")
	flag.StringVar(&script, "script", "", "Comma-separated user replies for a non-interactive run")
	flag.Parse()

	if configPath != "" {
		fileCfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = fileCfg
		// Flags win over file values.
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "assistant":
				cfg.Assistant = f.Value.String()
			case "ollama-model":
				cfg.OllamaModel = f.Value.String()
			case "backend":
				cfg.Backend = f.Value.String()
			case "backend-endpoint":
				cfg.BackendEndpoint = f.Value.String()
			case "db":
				cfg.DBPath = f.Value.String()
			case "debug":
				cfg.Debug = f.Value.String() == "true"
			case "max-rounds":
				if v, ok := f.Value.(flag.Getter); ok {
					cfg.MaxRounds = v.Get().(int)
				}
			case "shared-ledger":
				cfg.SharedLedger = f.Value.String() == "true"
			}
		})
	}
	if script != "" {
		cfg.Script = strings.Split(script, ",")
	}

	orch, err := chat.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer orch.Close()

	if err := orch.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
