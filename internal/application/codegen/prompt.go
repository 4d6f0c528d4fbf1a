package codegen

import (
	"bytes"
	"fmt"
	"text/template"

	"qacraft/internal/domain"
)

const codeSystemPrompt = `You are a senior test automation engineer. You turn manual test cases into Playwright automation code in both Python and JavaScript. You always respond with a single JSON object and nothing else.`

var codeTemplate = template.Must(template.New("code").Parse(`Generate Playwright automation code for the following manual test case.

TEST CASE {{.ID}}: {{.Title}}
{{.Steps}}
{{if .FlowJSON}}
RECORDED BROWSER FLOW (use these selectors where they apply):
{{.FlowJSON}}
{{end}}
Return ONLY a valid JSON object with this exact structure (no markdown, no code fences):
{
  "locators": {"python": "...", "javascript": "..."},
  "reusable_functions": {"python": "...", "javascript": "..."},
  "test_functions": {"python": "...", "javascript": "..."},
  "cursor_prompt": "A short prompt an engineer could paste into an AI code editor to extend these tests"
}

IMPORTANT:
- Output JSON ONLY, no markdown formatting
- "locators" collects the element selectors as named constants
- "test_functions" contains one complete test per test case, pytest style for Python
- Prefer get_by_test_id / getByTestId selectors, then role, then text`))

// buildCodeMessages renders the prompt pair for one test case. The recorded
// flow JSON is optional context; an empty string omits the section.
func buildCodeMessages(tc domain.TestCasePayload, flowJSON string) ([]domain.PromptMessage, error) {
	var buf bytes.Buffer
	err := codeTemplate.Execute(&buf, struct {
		ID       string
		Title    string
		Steps    string
		FlowJSON string
	}{
		ID:       tc.ID,
		Title:    tc.Title,
		Steps:    formatCaseSteps(tc),
		FlowJSON: flowJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("render code prompt: %w", err)
	}
	return []domain.PromptMessage{
		{Role: "system", Content: codeSystemPrompt},
		{Role: "user", Content: buf.String()},
	}, nil
}

func formatCaseSteps(tc domain.TestCasePayload) string {
	var buf bytes.Buffer
	for i, step := range tc.Steps {
		expected := ""
		if i < len(tc.ExpectedResults) {
			expected = tc.ExpectedResults[i]
		}
		fmt.Fprintf(&buf, "Step %d: %s\n", i+1, step)
		fmt.Fprintf(&buf, "Expected: %s\n", expected)
	}
	return buf.String()
}
