package remote

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
)

// stdioTransport talks to a backend subprocess over newline-delimited
// JSON-RPC on its stdin/stdout.
type stdioTransport struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  io.ReadCloser
	stderr  io.ReadCloser
	scanner *bufio.Scanner
	logger  *slog.Logger
	mu      sync.Mutex
	closed  bool
}

// NewStdioClient starts command as a backend subprocess and returns a client
// bound to it.
func NewStdioClient(command string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cmd := exec.Command(command)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		stdout.Close()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		stderr.Close()
		return nil, fmt.Errorf("failed to start backend process: %w", err)
	}

	t := &stdioTransport{
		cmd:     cmd,
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		scanner: bufio.NewScanner(stdout),
		logger:  logger,
	}
	go t.logStderr(command)

	logger.Info("started stdio backend client", "command", command)
	return newClient(command, t, logger), nil
}

func (t *stdioTransport) send(ctx context.Context, req JSONRPCRequest) (*JSONRPCResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, fmt.Errorf("client is closed")
	}

	requestJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	if _, err := t.stdin.Write(append(requestJSON, '\n')); err != nil {
		return nil, fmt.Errorf("failed to write request: %w", err)
	}

	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		return nil, fmt.Errorf("EOF from backend process")
	}

	var response JSONRPCResponse
	if err := json.Unmarshal(t.scanner.Bytes(), &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &response, nil
}

func (t *stdioTransport) close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	t.stdin.Close()
	t.stdout.Close()
	t.stderr.Close()

	if t.cmd != nil && t.cmd.Process != nil {
		if err := t.cmd.Process.Kill(); err != nil {
			t.logger.Warn("failed to kill backend process", "error", err)
		}
		t.cmd.Wait() // reap the zombie
	}
	return nil
}

func (t *stdioTransport) logStderr(command string) {
	scanner := bufio.NewScanner(t.stderr)
	for scanner.Scan() {
		t.logger.Warn("backend stderr", "command", command, "message", scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.logger.Error("error reading backend stderr", "command", command, "error", err)
	}
}
