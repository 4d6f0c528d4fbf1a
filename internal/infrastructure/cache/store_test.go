package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"qacraft/internal/domain"
)

func TestTestCaseStoreRoundTrip(t *testing.T) {
	store := NewTestCaseStore(t.TempDir())

	entry := domain.TestCaseEntry{
		Status: domain.StatusReady,
		Notes:  "Covers the login flow.",
		TestCases: []domain.TestCasePayload{
			{
				ID:              "TC-1",
				Title:           "Valid login",
				Steps:           []string{"Open login page", "Submit credentials"},
				ExpectedResults: []string{"Form is shown", "Dashboard loads"},
			},
		},
	}
	if err := store.Put("PROJ-123", entry); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok := store.Get("PROJ-123")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if diff := cmp.Diff(entry, got); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestTestCaseStoreMissingKey(t *testing.T) {
	store := NewTestCaseStore(t.TempDir())
	if _, ok := store.Get("PROJ-999"); ok {
		t.Fatal("expected miss for absent key")
	}
}

func TestTestCaseStoreCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	store := NewTestCaseStore(dir)

	path := filepath.Join(dir, "PROJ-123_test_case.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := store.Get("PROJ-123"); ok {
		t.Fatal("corrupt entry must behave as a miss")
	}
}

func TestTestCaseStoreSanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	store := NewTestCaseStore(dir)

	if err := store.Put("PROJ 1/2", domain.TestCaseEntry{Status: domain.StatusReady}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "PROJ_1_2_test_case.json")); err != nil {
		t.Fatalf("expected sanitized filename: %v", err)
	}
	if _, ok := store.Get("PROJ 1/2"); !ok {
		t.Fatal("sanitized key must read back")
	}
}

func TestTestCaseStoreKeysAndDelete(t *testing.T) {
	store := NewTestCaseStore(t.TempDir())

	for _, id := range []string{"PROJ-2", "PROJ-1"} {
		if err := store.Put(id, domain.TestCaseEntry{Status: domain.StatusReady}); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}

	keys, err := store.Keys()
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if diff := cmp.Diff([]string{"PROJ-1", "PROJ-2"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	if err := store.Delete("PROJ-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.Get("PROJ-1"); ok {
		t.Fatal("deleted key must miss")
	}
	if err := store.Delete("PROJ-1"); err != nil {
		t.Fatalf("double delete must be a no-op: %v", err)
	}
}

func TestCodeStoreRoundTrip(t *testing.T) {
	store := NewCodeStore(t.TempDir())

	entry := domain.CodeEntry{
		TestCaseID:    "TC-1",
		TestCaseTitle: "Valid login",
		TicketID:      "PROJ-123",
		GeneratedAt:   time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		Code:          domain.GeneratedCode{Python: "def test_recorded_flow(page: Page):\n    pass\n"},
	}
	if err := store.Put("PROJ-123", "TC-1", entry); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok := store.Get("PROJ-123", "TC-1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if diff := cmp.Diff(entry, got); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
	if _, ok := store.Get("PROJ-123", "TC-2"); ok {
		t.Fatal("expected miss for other test case")
	}
}

func TestFlowStoreForTestCasePicksLatest(t *testing.T) {
	store := NewFlowStore(t.TempDir())

	older := domain.RecordedFlow{
		RecordingID: "rec-1",
		TestCaseID:  "TC-1",
		TicketID:    "PROJ-123",
		RecordedAt:  time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	newer := older
	newer.RecordingID = "rec-2"
	newer.RecordedAt = older.RecordedAt.Add(time.Hour)

	for _, flow := range []domain.RecordedFlow{older, newer} {
		if err := store.Save(flow); err != nil {
			t.Fatalf("save %s: %v", flow.RecordingID, err)
		}
	}

	got, ok := store.ForTestCase("TC-1", "PROJ-123")
	if !ok {
		t.Fatal("expected a flow")
	}
	if got.RecordingID != "rec-2" {
		t.Fatalf("expected latest flow, got %s", got.RecordingID)
	}

	if _, ok := store.ForTestCase("TC-1", "OTHER-1"); ok {
		t.Fatal("ticket scope must filter flows")
	}

	all, err := store.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 || all[0].RecordingID != "rec-2" {
		t.Fatalf("expected newest-first listing, got %+v", all)
	}

	if err := store.Delete("rec-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, ok := store.ForTestCase("TC-1", "PROJ-123"); !ok || got.RecordingID != "rec-1" {
		t.Fatalf("expected fallback to older flow, got %+v ok=%v", got, ok)
	}
}

func TestSessionStoreReplaceAndClear(t *testing.T) {
	store := NewSessionStore(t.TempDir())

	first := domain.GenerationContext{
		TicketID:       "PROJ-123",
		JiraSummary:    "Login page",
		LastValidation: "needs_more_info",
		Questions:      []string{"Which roles can log in?"},
	}
	if err := store.Save("PROJ-123", first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := first
	second.Questions = []string{"What is the lockout policy?"}
	if err := store.Save("PROJ-123", second); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok := store.Load("PROJ-123")
	if !ok {
		t.Fatal("expected pending session")
	}
	if diff := cmp.Diff(second, got); diff != "" {
		t.Fatalf("session must be replaced, not merged (-want +got):\n%s", diff)
	}

	if err := store.Clear("PROJ-123"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := store.Load("PROJ-123"); ok {
		t.Fatal("cleared session must miss")
	}
}
