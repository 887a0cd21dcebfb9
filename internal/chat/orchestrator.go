package chat

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"SupportChat/internal/agent"
	"SupportChat/internal/cache"
	"SupportChat/internal/config"
	"SupportChat/internal/funcall"
	"SupportChat/internal/llm"
	"SupportChat/internal/remote"
	"SupportChat/internal/session"
	"SupportChat/internal/support"
	"SupportChat/internal/telemetry"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Orchestrator is the application: it owns the shared infrastructure and
// runs conversations over it.
type Orchestrator struct {
	cfg          config.Config
	logger       *slog.Logger
	tracer       trace.Tracer
	meter        metric.Meter
	cleanup      func()
	db           *sql.DB
	tickets      support.TicketStore
	sharedLedger *support.RetryLedger
	remoteClient *remote.Client
	llmClient    *llm.Client
	replyCache   *cache.Cache
}

// New wires logging, telemetry, storage, and the configured backend.
func New(cfg config.Config) (*Orchestrator, error) {
	logger, err := telemetry.InitLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := context.Background()
	tracer, meter, cleanup, err := telemetry.InitTelemetry(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	db, err := telemetry.InitDB(cfg.DBPath)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.Debug {
		logger.Info("debug mode enabled")
	}

	o := &Orchestrator{
		cfg:        cfg,
		logger:     logger,
		tracer:     tracer,
		meter:      meter,
		cleanup:    cleanup,
		db:         db,
		tickets:    support.NewSQLiteStore(db),
		replyCache: cache.New(30 * time.Minute),
	}

	if cfg.SharedLedger {
		// Source behavior: one process-wide ledger. Sessions probing the
		// same identifier will interfere.
		o.sharedLedger = support.NewRetryLedger()
	}

	switch cfg.Backend {
	case config.BackendLocal:
		// Simulated backend, built per session.
	case config.BackendStdio:
		o.remoteClient, err = remote.NewStdioClient(cfg.BackendEndpoint, logger)
	case config.BackendHTTP:
		o.remoteClient, err = remote.NewHTTPClient(cfg.BackendEndpoint, logger)
	case config.BackendWebSocket:
		o.remoteClient, err = remote.NewWebSocketClient(cfg.BackendEndpoint, logger)
	default:
		err = fmt.Errorf("unknown backend mode: %s", cfg.Backend)
	}
	if err != nil {
		o.Close()
		return nil, err
	}

	if cfg.Assistant != config.AssistantScripted {
		timeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second
		o.llmClient = llm.NewClient(timeout, cfg.OllamaModel, tracer, meter, logger)
	}

	return o, nil
}

// Close releases the orchestrator's resources.
func (o *Orchestrator) Close() {
	if o.remoteClient != nil {
		if err := o.remoteClient.Close(); err != nil {
			o.logger.Warn("failed to close remote backend", "error", err)
		}
	}
	if o.db != nil {
		o.db.Close()
	}
	if o.cleanup != nil {
		o.cleanup()
	}
}

// newDriver assembles one conversation: fresh session, per-session retry
// ledger unless sharing is configured, and the four role agents.
func (o *Orchestrator) newDriver(human agent.Agent) *Driver {
	ledger := o.sharedLedger
	if ledger == nil {
		ledger = support.NewRetryLedger()
	}

	var backend support.Backend
	if o.remoteClient != nil {
		backend = o.remoteClient
	} else {
		backend = support.NewService(ledger, o.tickets, o.logger)
	}
	codec := funcall.NewCodec(backend, o.logger)

	var assistant agent.Agent
	if o.llmClient != nil {
		assistant = agent.NewLLMAssistant(o.llmClient, o.cfg.Assistant, o.replyCache, o.logger)
	} else {
		assistant = agent.NewScriptedAssistant(o.logger)
	}

	sess := session.New(fmt.Sprintf("session_%d", time.Now().Unix()))
	o.logger.Info("created new session", "session_id", sess.ID, "assistant", o.cfg.Assistant, "backend", o.cfg.Backend)

	agents := []agent.Agent{
		human,
		assistant,
		agent.NewExecutor(codec),
		&agent.Coordinator{},
	}
	return NewDriver(sess, agents, o.cfg.MaxRounds, o.logger, os.Stdout)
}

// Run starts the orchestrator. With a script configured it drives a single
// scripted conversation; otherwise it loops interactive conversations until
// the user quits.
func (o *Orchestrator) Run(ctx context.Context) error {
	if len(o.cfg.Script) > 0 {
		driver := o.newDriver(agent.NewScriptedUser(o.cfg.Script...))
		if err := driver.Run(ctx); err != nil {
			return err
		}
		fmt.Printf("\nSession %s stopped (%s) after %d rounds\n",
			driver.Session().ID, driver.Session().StopReason, driver.Session().Rounds)
		return nil
	}

	fmt.Println("=== SupportChat ===")
	fmt.Printf("Assistant: %s | Backend: %s\n", o.cfg.Assistant, o.cfg.Backend)
	fmt.Println("A conversation starts immediately. Afterwards: /new for another, /quit to exit.")
	fmt.Println()

	human := agent.NewHuman(os.Stdin, os.Stdout)
	for {
		driver := o.newDriver(human)
		if err := driver.Run(ctx); err != nil {
			fmt.Printf("Error: %v\n", err)
			o.logger.Error("session failed", "error", err)
		}
		sess := driver.Session()
		fmt.Printf("\nConversation ended (%s, %d rounds)\n", sess.StopReason, sess.Rounds)

		for {
			cmd, err := human.ReadLine("> ")
			if err != nil {
				fmt.Println("Goodbye!")
				return nil
			}
			if cmd == "/new" {
				break
			}
			if cmd == "/quit" || cmd == "/exit" {
				fmt.Println("Goodbye!")
				return nil
			}
			fmt.Println("Commands: /new (start a conversation), /quit (exit)")
		}
	}
}
