package domain

import "time"

// SelectorKind classifies how a UI element is located, ranked by extraction
// priority: test-id > role > text > id > name > css.
type SelectorKind string

const (
	SelectorTestID SelectorKind = "testid"
	SelectorRole   SelectorKind = "role"
	SelectorText   SelectorKind = "text"
	SelectorID     SelectorKind = "id"
	SelectorName   SelectorKind = "name"
	SelectorCSS    SelectorKind = "css"
)

// Selector describes how to locate a UI element.
type Selector struct {
	Kind  SelectorKind `json:"type"`
	Value string       `json:"value"`
	// Name is the accessible name for role selectors, empty otherwise.
	Name string `json:"name,omitempty"`
}

// ActionKind tags a recorded browser action.
type ActionKind string

const (
	ActionNavigate ActionKind = "navigate"
	ActionClick    ActionKind = "click"
	ActionFill     ActionKind = "fill"
)

// RecordedAction is one reconstructed browser interaction. URL is set for
// navigate actions, Selector for click and fill, Value for fill only.
type RecordedAction struct {
	Kind      ActionKind `json:"type"`
	URL       string     `json:"url,omitempty"`
	Selector  Selector   `json:"selector,omitempty"`
	Value     string     `json:"value,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// GeneratedCode holds the rendered code skeletons for a flow, one per
// target syntax. Text product only; never executed.
type GeneratedCode struct {
	Python             string `json:"python"`
	JavaScript         string `json:"javascript"`
	LocatorsPython     string `json:"locators_python"`
	LocatorsJavaScript string `json:"locators_javascript"`
}

// RecordedFlow is a saved automation capture: the reconstructed actions,
// their derived readable steps, and the rendered code. Immutable once saved
// except for explicit delete.
type RecordedFlow struct {
	RecordingID   string           `json:"recording_id"`
	URL           string           `json:"url"`
	TestCaseID    string           `json:"test_case_id"`
	TestCaseTitle string           `json:"test_case_title"`
	TicketID      string           `json:"ticket_id"`
	Actions       []RecordedAction `json:"actions"`
	TestSteps     []string         `json:"test_steps"`
	GeneratedCode GeneratedCode    `json:"generated_code"`
	RecordedAt    time.Time        `json:"recorded_date"`
}

// CodeEntry is the cached payload for generated code, keyed by the
// sanitized (ticket id, test case id) pair.
type CodeEntry struct {
	TestCaseID    string            `json:"test_case_id"`
	TestCaseTitle string            `json:"test_case_title"`
	TicketID      string            `json:"ticket_id"`
	GeneratedAt   time.Time         `json:"generated_date"`
	Code          GeneratedCode     `json:"code"`
	Formatted     map[string]string `json:"formatted"`
}
