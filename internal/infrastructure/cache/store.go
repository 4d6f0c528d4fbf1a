// Package cache provides the file-backed JSON stores for test cases,
// generated code, recorded flows, and pending generation sessions.
//
// All stores share the same durability model: one JSON file per entry,
// written whole. A file that fails to read or unmarshal is treated as a
// miss, never an error; the next successful generation overwrites it.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"qacraft/internal/domain"
)

const (
	testCaseSuffix  = "_test_case.json"
	codeSuffix      = "_code.json"
	recordingSuffix = "_recording.json"
	sessionSuffix   = "_session.json"
)

// sanitizeKey folds path separators and spaces so ticket and test case ids
// are always safe as filename components.
func sanitizeKey(key string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_")
	return replacer.Replace(key)
}

// TestCaseStore caches generated test cases, one JSON file per ticket id.
type TestCaseStore struct {
	dir string
	mu  sync.Mutex
}

// NewTestCaseStore returns a store rooted at dir.
func NewTestCaseStore(dir string) *TestCaseStore {
	return &TestCaseStore{dir: dir}
}

// Get retrieves the cached entry for a ticket. Absent and corrupt files
// both report ok=false.
func (s *TestCaseStore) Get(ticketID string) (domain.TestCaseEntry, bool) {
	var entry domain.TestCaseEntry
	if !readJSON(s.pathFor(ticketID), &entry) {
		return domain.TestCaseEntry{}, false
	}
	return entry, true
}

// Put stores the entry, replacing any previous one for the ticket.
func (s *TestCaseStore) Put(ticketID string, entry domain.TestCaseEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.dir, s.pathFor(ticketID), entry)
}

// Delete removes the cached entry for a ticket. Removing an absent entry
// is not an error.
func (s *TestCaseStore) Delete(ticketID string) error {
	err := os.Remove(s.pathFor(ticketID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Keys lists the ticket ids that have cached entries, sorted.
func (s *TestCaseStore) Keys() ([]string, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var keys []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), testCaseSuffix) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(f.Name(), testCaseSuffix))
	}
	sort.Strings(keys)
	return keys, nil
}

// Dir exposes the store directory path.
func (s *TestCaseStore) Dir() string {
	return s.dir
}

func (s *TestCaseStore) pathFor(ticketID string) string {
	return filepath.Join(s.dir, sanitizeKey(ticketID)+testCaseSuffix)
}

// CodeStore caches generated code, one JSON file per (ticket, test case)
// pair.
type CodeStore struct {
	dir string
	mu  sync.Mutex
}

// NewCodeStore returns a store rooted at dir.
func NewCodeStore(dir string) *CodeStore {
	return &CodeStore{dir: dir}
}

// Get retrieves cached code for a test case. Same miss semantics as the
// test case store.
func (s *CodeStore) Get(ticketID, testCaseID string) (domain.CodeEntry, bool) {
	var entry domain.CodeEntry
	if !readJSON(s.pathFor(ticketID, testCaseID), &entry) {
		return domain.CodeEntry{}, false
	}
	return entry, true
}

// Put stores generated code for a test case.
func (s *CodeStore) Put(ticketID, testCaseID string, entry domain.CodeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.dir, s.pathFor(ticketID, testCaseID), entry)
}

func (s *CodeStore) pathFor(ticketID, testCaseID string) string {
	name := sanitizeKey(ticketID) + "_" + sanitizeKey(testCaseID) + codeSuffix
	return filepath.Join(s.dir, name)
}

// FlowStore persists recorded flows, one JSON file per recording id.
type FlowStore struct {
	dir string
	mu  sync.Mutex
}

// NewFlowStore returns a store rooted at dir.
func NewFlowStore(dir string) *FlowStore {
	return &FlowStore{dir: dir}
}

// Save persists a flow under its recording id.
func (s *FlowStore) Save(flow domain.RecordedFlow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.dir, s.pathFor(flow.RecordingID), flow)
}

// Get retrieves a flow by recording id.
func (s *FlowStore) Get(recordingID string) (domain.RecordedFlow, bool) {
	var flow domain.RecordedFlow
	if !readJSON(s.pathFor(recordingID), &flow) {
		return domain.RecordedFlow{}, false
	}
	return flow, true
}

// ForTestCase returns the most recently recorded flow for a test case,
// scoped by ticket when ticketID is non-empty.
func (s *FlowStore) ForTestCase(testCaseID, ticketID string) (domain.RecordedFlow, bool) {
	flows, err := s.All()
	if err != nil {
		return domain.RecordedFlow{}, false
	}
	var best domain.RecordedFlow
	found := false
	for _, flow := range flows {
		if flow.TestCaseID != testCaseID {
			continue
		}
		if ticketID != "" && flow.TicketID != ticketID {
			continue
		}
		if !found || flow.RecordedAt.After(best.RecordedAt) {
			best = flow
			found = true
		}
	}
	return best, found
}

// All lists every readable flow, newest first. Unreadable files are
// skipped.
func (s *FlowStore) All() ([]domain.RecordedFlow, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var flows []domain.RecordedFlow
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), recordingSuffix) {
			continue
		}
		var flow domain.RecordedFlow
		if readJSON(filepath.Join(s.dir, f.Name()), &flow) {
			flows = append(flows, flow)
		}
	}
	sort.Slice(flows, func(i, j int) bool {
		return flows[i].RecordedAt.After(flows[j].RecordedAt)
	})
	return flows, nil
}

// Delete removes a saved flow.
func (s *FlowStore) Delete(recordingID string) error {
	err := os.Remove(s.pathFor(recordingID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *FlowStore) pathFor(recordingID string) string {
	return filepath.Join(s.dir, sanitizeKey(recordingID)+recordingSuffix)
}

// SessionStore persists pending needs_more_info contexts between CLI
// invocations. Each save replaces the previous session for the ticket.
type SessionStore struct {
	dir string
	mu  sync.Mutex
}

// NewSessionStore returns a store rooted at dir.
func NewSessionStore(dir string) *SessionStore {
	return &SessionStore{dir: dir}
}

// Save writes the pending context for a ticket.
func (s *SessionStore) Save(ticketID string, ctx domain.GenerationContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.dir, s.pathFor(ticketID), ctx)
}

// Load retrieves the pending context for a ticket.
func (s *SessionStore) Load(ticketID string) (domain.GenerationContext, bool) {
	var ctx domain.GenerationContext
	if !readJSON(s.pathFor(ticketID), &ctx) {
		return domain.GenerationContext{}, false
	}
	return ctx, true
}

// Clear removes the pending context once a round resolves.
func (s *SessionStore) Clear(ticketID string) error {
	err := os.Remove(s.pathFor(ticketID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *SessionStore) pathFor(ticketID string) string {
	return filepath.Join(s.dir, sanitizeKey(ticketID)+sessionSuffix)
}

// readJSON loads path into v. Any failure, missing file or malformed
// content alike, reports false.
func readJSON(path string, v interface{}) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// writeJSON marshals v to path, creating dir as needed.
func writeJSON(dir, path string, v interface{}) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
