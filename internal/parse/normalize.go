package parse

import (
	"encoding/json"

	"qacraft/internal/domain"
)

// responseEnvelope is the wire shape of a generation response. Only the
// fields the active status requires are validated; anything else on the
// object is ignored.
type responseEnvelope struct {
	Status    string                   `json:"status"`
	Notes     string                   `json:"notes"`
	Questions []string                 `json:"questions"`
	TestCases []domain.TestCasePayload `json:"test_cases"`
}

// Outcome extracts and validates a model response end to end: balanced-span
// extraction, JSON decode, status validation, and test-case normalization.
func Outcome(raw string) (domain.GenerationOutcome, error) {
	span, err := ExtractObject(raw)
	if err != nil {
		return domain.GenerationOutcome{}, err
	}

	var envelope responseEnvelope
	if err := json.Unmarshal([]byte(span), &envelope); err != nil {
		return domain.GenerationOutcome{}, domain.NewRawFailure(
			domain.FailResponseNotJSON, raw, "model did not return valid JSON: %v", err)
	}

	return normalize(envelope, raw)
}

// normalize converts a decoded envelope into a validated GenerationOutcome.
// The status tag is the sole discriminator and is taken verbatim: an
// unknown value is surfaced as-is in the error, never coerced.
func normalize(envelope responseEnvelope, raw string) (domain.GenerationOutcome, error) {
	status := domain.Status(envelope.Status)
	if !status.Known() {
		return domain.GenerationOutcome{}, domain.NewRawFailure(
			domain.FailUnrecognizedStatus, raw, "unknown status: %q", envelope.Status)
	}

	outcome := domain.GenerationOutcome{
		Status: status,
		Notes:  envelope.Notes,
		Raw:    raw,
	}

	switch status {
	case domain.StatusReady:
		if len(envelope.TestCases) == 0 {
			return domain.GenerationOutcome{}, domain.NewRawFailure(
				domain.FailEmptyReadyResult, raw, "no test cases generated despite ready status")
		}
		outcome.Payload = envelope.TestCases
		outcome.TestCases = NormalizeTestCases(envelope.TestCases)

	case domain.StatusNeedsMoreInfo:
		// Questions may be empty; rendered downstream as "no specific
		// questions provided".
		outcome.Questions = envelope.Questions

	case domain.StatusInvalid:
		// Notes only.
	}

	return outcome, nil
}

// NormalizeTestCases aligns each payload's steps with its expected results.
// expected_results may be shorter than steps: indices past its length get
// an empty expected result. This is the documented lenient policy, not an
// error.
func NormalizeTestCases(payload []domain.TestCasePayload) []domain.TestCase {
	cases := make([]domain.TestCase, 0, len(payload))
	for _, tc := range payload {
		rows := make([]domain.StepRow, 0, len(tc.Steps))
		for i, step := range tc.Steps {
			expected := ""
			if i < len(tc.ExpectedResults) {
				expected = tc.ExpectedResults[i]
			}
			rows = append(rows, domain.StepRow{Step: step, ExpectedResult: expected})
		}
		title := tc.Title
		if title == "" {
			title = "Untitled"
		}
		cases = append(cases, domain.TestCase{ID: tc.ID, Title: title, Steps: rows})
	}
	return cases
}
