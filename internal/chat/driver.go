package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"SupportChat/internal/agent"
	"SupportChat/internal/router"
	"SupportChat/internal/session"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// OpeningUtterance seeds every conversation from the user role.
const OpeningUtterance = "I need help with my listing or brand approval"

// MaxRounds bounds a conversation even when no termination marker appears.
// Hitting it is a graceful stop, not an error.
const MaxRounds = 25

// Driver is the session state machine: Running until a marker, the round
// budget, or an abort moves it to Terminated. One role acts per round,
// synchronously, then the router picks the next.
type Driver struct {
	sess      *session.Session
	agents    map[session.Role]agent.Agent
	maxRounds int
	logger    *slog.Logger
	out       io.Writer
	tracer    trace.Tracer
	meter     metric.Meter
}

// NewDriver creates a driver over sess. maxRounds <= 0 selects the default
// budget. Transcript output for non-user roles is written to out.
func NewDriver(sess *session.Session, agents []agent.Agent, maxRounds int, logger *slog.Logger, out io.Writer) *Driver {
	if maxRounds <= 0 {
		maxRounds = MaxRounds
	}
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = io.Discard
	}
	byRole := make(map[session.Role]agent.Agent, len(agents))
	for _, a := range agents {
		byRole[a.Role()] = a
	}
	return &Driver{
		sess:      sess,
		agents:    byRole,
		maxRounds: maxRounds,
		logger:    logger,
		out:       out,
		tracer:    otel.Tracer("supportchat"),
		meter:     otel.Meter("supportchat"),
	}
}

// Session exposes the driven session.
func (d *Driver) Session() *session.Session {
	return d.sess
}

// Run drives rounds until termination. The session is left consistent on
// every exit path, including user abort.
func (d *Driver) Run(ctx context.Context) error {
	d.sess.Append(session.RoleUser, OpeningUtterance)
	fmt.Fprintf(d.out, "%s: %s\n", session.RoleUser, OpeningUtterance)
	d.logger.Info("session started", "session_id", d.sess.ID)

	for {
		decision := router.Decide(d.sess)
		if decision.Kind == router.Terminate {
			d.stop(session.StopMarker)
			return nil
		}
		if d.sess.Rounds >= d.maxRounds {
			d.stop(session.StopBudget)
			return nil
		}

		active, ok := d.agents[decision.Next]
		if !ok {
			return fmt.Errorf("no agent registered for role %s", decision.Next)
		}

		roundCtx, span := d.tracer.Start(ctx, "round",
			trace.WithAttributes(attribute.String("chat.role", string(decision.Next))))
		content, err := active.Produce(roundCtx, d.sess)
		span.End()
		if err != nil {
			if errors.Is(err, io.EOF) {
				d.stop(session.StopAborted)
				return nil
			}
			d.stop(session.StopAborted)
			return fmt.Errorf("role %s failed to produce a message: %w", decision.Next, err)
		}

		d.sess.Append(decision.Next, content)
		d.sess.Rounds++
		d.countRound(ctx, decision.Next)

		if decision.Next != session.RoleUser {
			fmt.Fprintf(d.out, "%s: %s\n", decision.Next, session.DisplayContent(content))
		}
	}
}

func (d *Driver) stop(reason session.StopReason) {
	d.sess.Terminated = true
	d.sess.StopReason = reason
	d.logger.Info("session stopped",
		"session_id", d.sess.ID,
		"reason", string(reason),
		"rounds", d.sess.Rounds,
		"messages", len(d.sess.Messages))
}

func (d *Driver) countRound(ctx context.Context, role session.Role) {
	counter, err := d.meter.Int64Counter("chat.rounds",
		metric.WithDescription("Conversation rounds completed"))
	if err != nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("chat.role", string(role))))
}
