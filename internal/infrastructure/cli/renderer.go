package cli

import (
	"fmt"
	"io"

	"qacraft/internal/application/generation"
	"qacraft/internal/domain"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

// renderResult prints a generation round outcome. Each status has its own
// surface: ready shows the test cases, needs_more_info shows the questions,
// invalid shows the model's reasoning.
func renderResult(w io.Writer, result generation.Result) {
	outcome := result.Outcome
	switch outcome.Status {
	case domain.StatusReady:
		if result.FromCache {
			fmt.Fprintf(w, "Test cases for %s (cached):\n\n", result.TicketID)
		} else {
			fmt.Fprintf(w, "Test cases for %s:\n\n", result.TicketID)
		}
		renderTestCases(w, outcome.TestCases)
		if outcome.Notes != "" {
			fmt.Fprintf(w, "Notes: %s\n", outcome.Notes)
		}

	case domain.StatusNeedsMoreInfo:
		fmt.Fprintf(w, "The model needs more information about %s.\n", result.TicketID)
		if outcome.Notes != "" {
			fmt.Fprintf(w, "%s\n", outcome.Notes)
		}
		if len(outcome.Questions) > 0 {
			fmt.Fprintln(w, "\nQuestions:")
			for i, q := range outcome.Questions {
				fmt.Fprintf(w, "  %d. %s\n", i+1, q)
			}
		}
		fmt.Fprintf(w, "\nAnswer with: qacraft generate %s --info \"...\"\n", result.TicketID)

	case domain.StatusInvalid:
		fmt.Fprintf(w, "The input for %s is not a testable story.\n", result.TicketID)
		if outcome.Notes != "" {
			fmt.Fprintf(w, "%s\n", outcome.Notes)
		}
	}
}

func renderTestCases(w io.Writer, cases []domain.TestCase) {
	for _, tc := range cases {
		fmt.Fprintf(w, "%s: %s\n", tc.ID, tc.Title)
		for _, row := range tc.Steps {
			fmt.Fprintf(w, "  %s\n", row.Step)
			if row.ExpectedResult != "" {
				fmt.Fprintf(w, "    Expected: %s\n", row.ExpectedResult)
			}
		}
		fmt.Fprintln(w)
	}
}

// RenderError prints a failed command's error once, at the top level.
// JSON failures carry the raw model output so the user can inspect what
// came back.
func RenderError(w io.Writer, err error) {
	failure := domain.AsFailure(err, domain.FailProviderCall)
	if failure == nil {
		return
	}
	fmt.Fprintf(w, "Error: %s\n", failure.Message)
	if failure.Raw != "" {
		fmt.Fprintf(w, "\nRaw model output:\n%s\n", failure.Raw)
	}
}

func renderDoctorReport(w io.Writer, report domain.HealthReport) {
	marks := map[domain.HealthStatus]string{
		domain.HealthOK:    "[ok]  ",
		domain.HealthWarn:  "[warn]",
		domain.HealthError: "[fail]",
	}
	for _, check := range report.Checks {
		fmt.Fprintf(w, "%s %-16s %s\n", marks[check.Status], check.Name, check.Details)
	}
	if report.Healthy() {
		fmt.Fprintln(w, "\nEnvironment looks good.")
	} else {
		fmt.Fprintln(w, "\nSome checks failed; see above.")
	}
}
