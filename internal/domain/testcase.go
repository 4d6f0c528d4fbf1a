package domain

// Status is the tri-state protocol tag returned by the model.
// The tag is taken verbatim from model output; anything outside the three
// known values is an unrecognized status, never coerced.
type Status string

const (
	StatusReady         Status = "ready"
	StatusNeedsMoreInfo Status = "needs_more_info"
	StatusInvalid       Status = "invalid"
)

// Known reports whether s is one of the three protocol statuses.
func (s Status) Known() bool {
	switch s {
	case StatusReady, StatusNeedsMoreInfo, StatusInvalid:
		return true
	}
	return false
}

// StepRow pairs a test step with its expected result. Rows beyond the
// model's expected_results length carry an empty ExpectedResult.
type StepRow struct {
	Step           string `json:"step"`
	ExpectedResult string `json:"expected_result"`
}

// TestCase is one normalized test case from a generation batch.
type TestCase struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Steps []StepRow `json:"steps"`
}

// TestCasePayload is the wire shape of a test case as the model emits it:
// steps and expected_results as parallel string lists. It is what the cache
// stores (original, unformatted).
type TestCasePayload struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Steps           []string `json:"steps"`
	ExpectedResults []string `json:"expected_results"`
}

// GenerationOutcome is the validated result of one generation round.
// Status discriminates the active variant: TestCases is populated only for
// ready, Questions only for needs_more_info.
type GenerationOutcome struct {
	Status    Status
	Notes     string
	Questions []string
	TestCases []TestCase
	// Payload keeps the model's original test_cases for cache writes.
	Payload []TestCasePayload
	// Raw is the full provider output, kept for diagnostics.
	Raw string
}

// GenerationContext carries ticket metadata across needs_more_info rounds.
// It is replaced, not merged, on each retry round.
type GenerationContext struct {
	TicketID        string   `json:"ticket_id"`
	JiraKey         string   `json:"jira_key"`
	JiraProject     string   `json:"jira_project"`
	JiraSummary     string   `json:"jira_summary"`
	JiraDescription string   `json:"jira_description"`
	LastValidation  string   `json:"last_validation_result"`
	Questions       []string `json:"questions"`
}

// TestCaseEntry is the cached payload for a ticket: written once on the
// first ready result, read through on every later request for the same id.
type TestCaseEntry struct {
	Status    Status            `json:"status"`
	Notes     string            `json:"notes"`
	TestCases []TestCasePayload `json:"test_cases"`
}
