package generation

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"qacraft/internal/domain"
)

const systemPrompt = `You are a senior QA engineer. You analyze Jira stories and produce structured manual test cases. You always respond with a single JSON object and nothing else.`

const jsonContract = `Return ONLY a valid JSON object with this exact structure (no markdown, no code fences):
{
  "status": "ready" | "needs_more_info" | "invalid",
  "notes": "Brief explanation of the validation outcome",
  "questions": ["Only present when status is needs_more_info"],
  "test_cases": [
    {
      "id": "TC-01",
      "title": "Clear, descriptive test case title",
      "steps": ["1. First step description", "2. Second step description"],
      "expected_results": ["Expected outcome for step 1", "Expected outcome for step 2"]
    }
  ]
}

IMPORTANT:
- Output JSON ONLY, no markdown formatting
- Each step should be a numbered string (e.g., "1. ...", "2. ...")
- Steps and expected_results arrays must have the same length
- Set "status" to "ready" and fill "test_cases" only when the story has enough detail
- Set "status" to "needs_more_info" and list concrete "questions" when information is missing
- Set "status" to "invalid" and explain in "notes" when the text is not a testable story`

var generationTemplate = template.Must(template.New("generation").Parse(`Analyze the following Jira story and generate manual test cases for it.

JIRA TICKET:
Key: {{.Key}}
Project: {{.Project}}
Summary: {{.Summary}}
Description:
{{.Description}}

First decide whether the story contains enough detail to write meaningful test cases. Generate 6-15 test cases depending on the feature complexity. Test case IDs should be sequential (TC-01, TC-02, etc.).

` + jsonContract))

var regenerationTemplate = template.Must(template.New("regeneration").Parse(`You are regenerating test cases based on user feedback about existing test cases.

ORIGINAL FEATURE/STORY:
{{.Feature}}

CURRENT GENERATED TEST CASES (that need to be updated):
{{.CurrentCases}}

USER FEEDBACK/REQUEST:
{{.Feedback}}

INSTRUCTIONS:
1. Analyze the user's feedback carefully to understand what changes they want
2. Review the current test cases to see what needs to be modified
3. Generate updated test cases that address the feedback while maintaining coverage of the original feature
4. The number of test cases can increase, decrease, or stay the same based on the feedback
5. Test case IDs should be sequential (TC-01, TC-02, etc.)

Return ONLY a valid JSON object with "status" set to "ready", a "notes" field briefly explaining what was changed, and the full updated "test_cases" array in the structure below (no markdown, no code fences):
{
  "status": "ready",
  "notes": "Brief explanation of what was changed based on the user's feedback",
  "test_cases": [
    {
      "id": "TC-01",
      "title": "Clear, descriptive test case title",
      "steps": ["1. First step description", "2. Second step description"],
      "expected_results": ["Expected outcome for step 1", "Expected outcome for step 2"]
    }
  ]
}

IMPORTANT:
- Output JSON ONLY, no markdown formatting
- Steps and expected_results arrays must have the same length`))

// buildGenerationMessages renders the prompt pair for a first-round or
// continuation generation call.
func buildGenerationMessages(ticket domain.Ticket) ([]domain.PromptMessage, error) {
	var buf bytes.Buffer
	if err := generationTemplate.Execute(&buf, ticket); err != nil {
		return nil, fmt.Errorf("render generation prompt: %w", err)
	}
	return []domain.PromptMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buf.String()},
	}, nil
}

// buildRegenerationMessages renders the prompt pair for a feedback round.
// The current test cases ride along so the model can apply targeted edits.
func buildRegenerationMessages(feature string, current []domain.TestCasePayload, feedback string) ([]domain.PromptMessage, error) {
	var buf bytes.Buffer
	err := regenerationTemplate.Execute(&buf, struct {
		Feature      string
		CurrentCases string
		Feedback     string
	}{
		Feature:      feature,
		CurrentCases: formatCurrentCases(current),
		Feedback:     feedback,
	})
	if err != nil {
		return nil, fmt.Errorf("render regeneration prompt: %w", err)
	}
	return []domain.PromptMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buf.String()},
	}, nil
}

func formatCurrentCases(cases []domain.TestCasePayload) string {
	if len(cases) == 0 {
		return "(none)"
	}
	var blocks []string
	for idx, tc := range cases {
		id := tc.ID
		if id == "" {
			id = fmt.Sprintf("TC-%02d", idx+1)
		}
		title := tc.Title
		if title == "" {
			title = "Untitled"
		}
		var lines []string
		lines = append(lines, fmt.Sprintf("Test Case %d (%s): %s", idx+1, id, title))
		for i, step := range tc.Steps {
			expected := ""
			if i < len(tc.ExpectedResults) {
				expected = tc.ExpectedResults[i]
			}
			lines = append(lines, fmt.Sprintf("  Step %d: %s", i+1, step))
			lines = append(lines, fmt.Sprintf("  Expected: %s", expected))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// augmentDescription appends the user's answers to the pending questions in
// the form the generation prompt expects.
func augmentDescription(description, additionalInfo string) string {
	return description + "\n\nADDITIONAL INFORMATION PROVIDED BY USER:\n" + additionalInfo + "\n"
}
