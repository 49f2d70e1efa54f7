// Package kaggle invokes the pre-installed Kaggle CLI as a subprocess to pull
// competition leaderboards as CSV text.
package kaggle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"datasprint/leaderboard/internal/metrics"
)

var (
	// ErrTimeout indicates the CLI exceeded the configured wall-clock timeout.
	ErrTimeout = errors.New("kaggle: command timed out")

	// ErrOutputTooLarge indicates the CLI produced more output than the
	// configured buffer limit.
	ErrOutputTooLarge = errors.New("kaggle: output exceeds buffer limit")
)

// CommandError is returned when the CLI exits nonzero without producing
// anything that looks like CSV.
type CommandError struct {
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = fmt.Sprintf("kaggle CLI failed with code %d", e.ExitCode)
	}
	return msg
}

// Client runs the Kaggle CLI. It is safe for concurrent use; each call spawns
// its own subprocess.
type Client struct {
	command   string
	pageSize  int
	timeout   time.Duration
	maxOutput int64
}

// NewClient creates a Kaggle CLI client.
func NewClient(command string, pageSize int, timeout time.Duration, maxOutput int64) *Client {
	return &Client{
		command:   command,
		pageSize:  pageSize,
		timeout:   timeout,
		maxOutput: maxOutput,
	}
}

// FetchLeaderboard dumps a competition's leaderboard as raw CSV text.
func (c *Client) FetchLeaderboard(ctx context.Context, slug string) (string, error) {
	args := []string{
		"competitions",
		"leaderboard",
		strings.TrimSpace(slug),
		"-s",
		"--csv",
		"--page-size",
		strconv.Itoa(c.pageSize),
	}
	return c.run(ctx, args)
}

// run executes the CLI with a hard timeout and a capped output buffer.
//
// The exit code is not treated as authoritative: the CLI exits nonzero for
// benign warnings (typically encoding complaints) while still writing a usable
// dump. A nonzero exit fails the call only when stdout contains no delimiter.
func (c *Client) run(ctx context.Context, args []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()

	cmd := exec.CommandContext(ctx, c.command, args...)
	cmd.Env = sanitizedEnv()

	stdout := &cappedBuffer{limit: c.maxOutput}
	stderr := &cappedBuffer{limit: c.maxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	log.Debug().
		Str("command", c.command).
		Strs("args", args).
		Msg("Spawning Kaggle CLI")

	err := cmd.Run()
	out := stdout.String()

	switch {
	case stdout.truncated:
		metrics.RecordSubprocessCall("oversized", time.Since(start).Seconds())
		return "", fmt.Errorf("%w (limit %d bytes)", ErrOutputTooLarge, c.maxOutput)

	case ctx.Err() == context.DeadlineExceeded:
		metrics.RecordSubprocessCall("timeout", time.Since(start).Seconds())
		return "", fmt.Errorf("%w after %s", ErrTimeout, c.timeout)

	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if strings.Contains(out, ",") {
				// Usable output despite the nonzero exit.
				log.Warn().
					Int("exit_code", exitErr.ExitCode()).
					Str("stderr", strings.TrimSpace(stderr.String())).
					Msg("Kaggle CLI exited nonzero but produced CSV, using output")
				metrics.RecordSubprocessCall("success", time.Since(start).Seconds())
				return out, nil
			}
			metrics.RecordSubprocessCall("error", time.Since(start).Seconds())
			return "", &CommandError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		metrics.RecordSubprocessCall("error", time.Since(start).Seconds())
		return "", fmt.Errorf("launching %s: %w", c.command, err)
	}

	metrics.RecordSubprocessCall("success", time.Since(start).Seconds())
	return out, nil
}

// sanitizedEnv returns the process environment with every value trimmed of
// surrounding whitespace, plus forced UTF-8 locale variables. The Python-based
// CLI is sensitive to both and otherwise corrupts non-ASCII names.
func sanitizedEnv() []string {
	environ := os.Environ()
	env := make([]string, 0, len(environ)+2)
	for _, kv := range environ {
		key, value, found := strings.Cut(kv, "=")
		if !found {
			continue
		}
		env = append(env, key+"="+strings.TrimSpace(value))
	}
	env = append(env, "PYTHONIOENCODING=utf-8", "LANG=en_US.UTF-8")
	return env
}

// cappedBuffer accumulates subprocess output up to a byte limit.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int64
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if int64(b.buf.Len())+int64(len(p)) > b.limit {
		b.truncated = true
		return 0, ErrOutputTooLarge
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}
