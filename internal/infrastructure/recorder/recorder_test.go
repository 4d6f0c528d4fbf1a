package recorder

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveSessionRoundTrip(t *testing.T) {
	runner := NewRunner(t.TempDir())

	if _, ok := runner.Active(); ok {
		t.Fatal("fresh runner must have no active session")
	}

	session := Session{
		RecordingID: "rec-1",
		URL:         "https://x.test/login",
		TestCaseID:  "TC-1",
		StartedAt:   time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, runner.saveSession(session))

	got, ok := runner.Active()
	require.True(t, ok)
	assert.Equal(t, session, got)
}

func TestStopWithoutActiveSession(t *testing.T) {
	runner := NewRunner(t.TempDir())
	_, _, err := runner.Stop(context.Background())
	assert.Error(t, err)
}

func TestStopReturnsTranscriptAndClearsSession(t *testing.T) {
	dir := t.TempDir()
	runner := NewRunner(dir)

	output := filepath.Join(dir, "rec-1_codegen.py")
	transcript := "page.goto(\"https://x.test/login\")\n"
	require.NoError(t, os.WriteFile(output, []byte(transcript), 0o644))
	require.NoError(t, runner.saveSession(Session{RecordingID: "rec-1", OutputPath: output}))

	session, source, err := runner.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rec-1", session.RecordingID)
	assert.Equal(t, transcript, source)

	if _, ok := runner.Active(); ok {
		t.Fatal("stop must clear the session descriptor")
	}
}

func TestStartRequiresURL(t *testing.T) {
	_, err := NewRunner(t.TempDir()).Start(context.Background(), StartOptions{})
	assert.Error(t, err)
}
