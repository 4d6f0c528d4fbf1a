// Package recorder drives Playwright codegen as a subprocess.
//
// A recording spans two CLI invocations: start launches codegen detached
// and persists the session descriptor; stop reloads the descriptor,
// terminates the process, and hands the captured transcript back. The
// transcript is the product; codegen's Python output is parsed, never run.
package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	activeSessionFile = "active_session.json"
	stopPollInterval  = 200 * time.Millisecond
	stopPollBudget    = 5 * time.Second
)

// Session describes one in-flight or finished recording.
type Session struct {
	RecordingID   string    `json:"recording_id"`
	URL           string    `json:"url"`
	TestCaseID    string    `json:"test_case_id"`
	TestCaseTitle string    `json:"test_case_title"`
	TicketID      string    `json:"ticket_id"`
	OutputPath    string    `json:"output_path"`
	PID           int       `json:"pid"`
	StartedAt     time.Time `json:"started_at"`
}

// StartOptions carries the optional test case association for a recording.
type StartOptions struct {
	URL           string
	TestCaseID    string
	TestCaseTitle string
	TicketID      string
}

// Runner launches and stops codegen sessions. One session at a time; a
// second start replaces a stale descriptor after cleaning up its process.
type Runner struct {
	dir string
}

// NewRunner returns a runner that keeps transcripts and the session
// descriptor under dir.
func NewRunner(dir string) *Runner {
	return &Runner{dir: dir}
}

// Start launches `npx playwright codegen` against the URL and records the
// session descriptor. The subprocess outlives this CLI invocation.
func (r *Runner) Start(ctx context.Context, opts StartOptions) (Session, error) {
	if opts.URL == "" {
		return Session{}, errors.New("recording URL is required")
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return Session{}, err
	}
	if prev, ok := r.Active(); ok {
		// Stale session from a crashed stop; reap it before starting over.
		terminate(prev.PID)
		_ = os.Remove(r.sessionPath())
	}

	session := Session{
		RecordingID:   uuid.NewString(),
		URL:           opts.URL,
		TestCaseID:    opts.TestCaseID,
		TestCaseTitle: opts.TestCaseTitle,
		TicketID:      opts.TicketID,
		StartedAt:     time.Now(),
	}
	if session.TestCaseTitle == "" {
		session.TestCaseTitle = opts.TestCaseID
	}
	session.OutputPath = filepath.Join(r.dir, session.RecordingID+"_codegen.py")

	cmd := exec.CommandContext(ctx, "npx", "playwright", "codegen", opts.URL,
		"--target", "python",
		"--output", session.OutputPath,
	)
	configureDetached(cmd)
	if err := cmd.Start(); err != nil {
		return Session{}, fmt.Errorf("launch playwright codegen: %w", err)
	}
	session.PID = cmd.Process.Pid
	// Detach so the browser survives this CLI process exiting.
	_ = cmd.Process.Release()

	if err := r.saveSession(session); err != nil {
		terminate(session.PID)
		return Session{}, err
	}
	return session, nil
}

// Stop terminates the active codegen process and returns the captured
// transcript. Codegen flushes its output on exit, so the file is polled
// briefly after the signal. An empty transcript is not an error; the
// caller synthesizes a navigation floor.
func (r *Runner) Stop(ctx context.Context) (Session, string, error) {
	session, ok := r.Active()
	if !ok {
		return Session{}, "", errors.New("no active recording")
	}

	terminate(session.PID)
	defer os.Remove(r.sessionPath())

	deadline := time.Now().Add(stopPollBudget)
	var source []byte
	for {
		data, err := os.ReadFile(session.OutputPath)
		if err == nil && len(data) > 0 {
			source = data
			break
		}
		if time.Now().After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return session, "", ctx.Err()
		case <-time.After(stopPollInterval):
		}
	}
	return session, string(source), nil
}

// Active returns the persisted session descriptor, if any.
func (r *Runner) Active() (Session, bool) {
	data, err := os.ReadFile(r.sessionPath())
	if err != nil {
		return Session{}, false
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, false
	}
	return session, true
}

func (r *Runner) saveSession(session Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.sessionPath(), data, 0o644)
}

func (r *Runner) sessionPath() string {
	return filepath.Join(r.dir, activeSessionFile)
}
