package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"qacraft/internal/app"
	"qacraft/internal/application/codegen"
	"qacraft/internal/application/generation"
	"qacraft/internal/domain"
	"qacraft/internal/infrastructure/auth"
	"qacraft/internal/infrastructure/export"
	"qacraft/internal/infrastructure/recorder"
	"qacraft/internal/parse"
)

func newGenerateCommand(container *app.Container) *cobra.Command {
	var (
		model    string
		info     string
		feedback string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "generate [ticket or story text]",
		Short: "Generate test cases for a Jira ticket",
		Long: "Generate structured manual test cases for the ticket referenced in the input.\n" +
			"Use --info to answer the model's follow-up questions from a previous round,\n" +
			"or --feedback to rework the cached test cases.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			cfg, err := container.Config.Load(ctx)
			if err != nil {
				return err
			}
			modelDef, err := resolveModel(cfg, model)
			if err != nil {
				return err
			}
			creds, err := loadCredentials(container, cfg)
			if err != nil {
				return err
			}

			input := strings.Join(args, " ")
			var result generation.Result
			switch {
			case info != "":
				ticketID := domain.ExtractTicketID(input)
				if ticketID == "" {
					return domain.NewFailure(domain.FailTicketIDNotFound,
						"no ticket id found in input; expected a token like PROJ-123")
				}
				result, err = container.GenerationService.ProvideMoreInfo(ctx, generation.MoreInfoRequest{
					TicketID:       ticketID,
					AdditionalInfo: info,
					Model:          modelDef,
					Credentials:    creds,
				})
			case feedback != "":
				result, err = container.GenerationService.Regenerate(ctx, generation.RegenerateRequest{
					Input:       input,
					Feedback:    feedback,
					Model:       modelDef,
					Credentials: creds,
				})
			default:
				result, err = container.GenerationService.Generate(ctx, generation.Request{
					Input:       input,
					Model:       modelDef,
					Credentials: creds,
				})
			}
			if err != nil {
				return err
			}
			renderResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Override model name (default from config)")
	cmd.Flags().StringVar(&info, "info", "", "Additional information answering a previous needs_more_info round")
	cmd.Flags().StringVar(&feedback, "feedback", "", "Feedback to rework the cached test cases")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Request timeout")
	return cmd
}

func newCodeCommand(container *app.Container) *cobra.Command {
	var (
		lang  string
		model string
	)

	cmd := &cobra.Command{
		Use:   "code <ticket-id> <test-case-id>",
		Short: "Show generated automation code for a test case",
		Long: "Show Playwright code for a test case. A recorded flow is rendered\n" +
			"directly; without one the code is generated by the model from the\n" +
			"cached test case steps.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := container.Config.Load(ctx)
			if err != nil {
				return err
			}
			modelDef, err := resolveModel(cfg, model)
			if err != nil {
				return err
			}
			creds, err := loadCredentials(container, cfg)
			if err != nil {
				return err
			}

			entry, err := container.CodegenService.Code(ctx, codegen.CodeRequest{
				TicketID:    args[0],
				TestCaseID:  args[1],
				Model:       modelDef,
				Credentials: creds,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch lang {
			case "python":
				fmt.Fprintln(out, entry.Code.Python)
			case "javascript", "js":
				fmt.Fprintln(out, entry.Code.JavaScript)
			case "locators":
				fmt.Fprintln(out, entry.Code.LocatorsPython)
				fmt.Fprintln(out)
				fmt.Fprintln(out, entry.Code.LocatorsJavaScript)
			default:
				fmt.Fprintf(out, "# %s (%s)\n\n", entry.TestCaseTitle, entry.TestCaseID)
				fmt.Fprintln(out, entry.Code.Python)
				fmt.Fprintln(out, entry.Code.JavaScript)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Output only one syntax: python, javascript, locators")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Override model name (default from config)")
	return cmd
}

func newRecordCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a browser flow with Playwright codegen",
	}
	cmd.AddCommand(newRecordStartCommand(container))
	cmd.AddCommand(newRecordStopCommand(container))
	return cmd
}

func newRecordStartCommand(container *app.Container) *cobra.Command {
	var (
		testCaseID string
		title      string
		ticketID   string
	)

	cmd := &cobra.Command{
		Use:   "start <url>",
		Short: "Launch a recording session against a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := container.Recorder.Start(cmd.Context(), recorder.StartOptions{
				URL:           args[0],
				TestCaseID:    testCaseID,
				TestCaseTitle: title,
				TicketID:      ticketID,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Recording %s started against %s\n", session.RecordingID, session.URL)
			fmt.Fprintln(out, "Interact with the browser, then run 'qacraft record stop'.")
			return nil
		},
	}

	cmd.Flags().StringVar(&testCaseID, "test-case", "", "Associate the recording with a test case id")
	cmd.Flags().StringVar(&title, "title", "", "Test case title for the recording")
	cmd.Flags().StringVar(&ticketID, "ticket", "", "Associate the recording with a ticket id")
	return cmd
}

func newRecordStopCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the active recording and extract its actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, source, err := container.Recorder.Stop(cmd.Context())
			if err != nil {
				return err
			}
			flow, err := container.CodegenService.Import(codegen.Transcript{
				RecordingID:   session.RecordingID,
				URL:           session.URL,
				TestCaseID:    session.TestCaseID,
				TestCaseTitle: session.TestCaseTitle,
				TicketID:      session.TicketID,
				Source:        source,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Recording %s captured %d actions\n\n", flow.RecordingID, len(flow.Actions))
			for _, step := range flow.TestSteps {
				fmt.Fprintln(out, step)
			}
			return nil
		},
	}
}

func newFlowsCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flows",
		Short: "List recorded flows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flows, err := container.Flows.All()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(flows) == 0 {
				fmt.Fprintln(out, "No recorded flows.")
				return nil
			}
			for _, flow := range flows {
				label := flow.TestCaseTitle
				if label == "" {
					label = "(unassociated)"
				}
				fmt.Fprintf(out, "%s  %s  %s  %d actions  %s\n",
					flow.RecordingID, flow.TicketID, label, len(flow.Actions),
					flow.RecordedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <recording-id>",
		Short: "Delete a recorded flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Flows.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	})
	return cmd
}

func newExportCommand(container *app.Container) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <ticket-id>",
		Short: "Export cached test cases to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, ok := container.TestCases.Get(args[0])
			if !ok {
				return fmt.Errorf("no cached test cases for %s; run generate first", args[0])
			}
			dest := out
			if dest == "" {
				dest = args[0] + "_test_cases.csv"
			}
			if err := export.WriteCSVFile(dest, parse.NormalizeTestCases(entry.TestCases)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d test cases to %s\n", len(entry.TestCases), dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Destination file (default <ticket>_test_cases.csv)")
	return cmd
}

func newHistoryCommand(container *app.Container) *cobra.Command {
	var (
		limit  int
		search string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previously generated tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := container.History.Entries(limit, search)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history yet.")
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintf(out, "%s  %-40s  %d cases  %s\n",
					entry.TicketID, entry.Summary, entry.TestCaseCount,
					entry.GeneratedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by ticket id or summary")
	return cmd
}

func newCacheCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and invalidate the test case cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := container.TestCases.Keys()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(keys) == 0 {
				fmt.Fprintln(out, "Cache is empty.")
				return nil
			}
			for _, key := range keys {
				fmt.Fprintln(out, key)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear <ticket-id>",
		Short: "Remove the cached test cases for a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.TestCases.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", args[0])
			return nil
		},
	})
	return cmd
}

func newCredsCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creds",
		Short: "Manage encrypted credentials",
	}
	cmd.AddCommand(newCredsSetCommand(container))
	cmd.AddCommand(newCredsCheckCommand(container))
	return cmd
}

func newCredsSetCommand(container *app.Container) *cobra.Command {
	var (
		openaiKey     string
		anthropicKey  string
		openrouterKey string
		jiraEmail     string
		jiraToken     string
		jiraURL       string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store credentials (only the provided fields are updated)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := container.Config.Load(cmd.Context())
			if err != nil {
				return err
			}
			user := auth.UserID(cfg.Preferences.FirstName, cfg.Preferences.LastName)
			creds, err := container.Credentials.Load(user)
			if err != nil {
				return err
			}

			if openaiKey != "" {
				creds.OpenAIKey = openaiKey
			}
			if anthropicKey != "" {
				creds.AnthropicKey = anthropicKey
			}
			if openrouterKey != "" {
				creds.OpenRouterKey = openrouterKey
			}
			if jiraEmail != "" {
				creds.JiraEmail = jiraEmail
			}
			if jiraToken != "" {
				creds.JiraToken = jiraToken
			}
			if jiraURL != "" {
				creds.JiraURL = jiraURL
			}

			if err := container.Credentials.Save(user, creds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Credentials updated for %s\n", user)
			return nil
		},
	}

	cmd.Flags().StringVar(&openaiKey, "openai-key", "", "OpenAI API key")
	cmd.Flags().StringVar(&anthropicKey, "anthropic-key", "", "Anthropic API key")
	cmd.Flags().StringVar(&openrouterKey, "openrouter-key", "", "OpenRouter API key")
	cmd.Flags().StringVar(&jiraEmail, "jira-email", "", "Jira account email")
	cmd.Flags().StringVar(&jiraToken, "jira-token", "", "Jira API token")
	cmd.Flags().StringVar(&jiraURL, "jira-url", "", "Jira base URL")
	return cmd
}

func newCredsCheckCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "check",
		Aliases: []string{"show"},
		Short:   "Show which credentials are stored (values are never printed)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := container.Config.Load(cmd.Context())
			if err != nil {
				return err
			}
			user := auth.UserID(cfg.Preferences.FirstName, cfg.Preferences.LastName)
			creds, err := container.Credentials.Load(user)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User: %s\n", user)
			fmt.Fprintf(out, "OpenAI key:     %s\n", presence(creds.OpenAIKey))
			fmt.Fprintf(out, "Anthropic key:  %s\n", presence(creds.AnthropicKey))
			fmt.Fprintf(out, "OpenRouter key: %s\n", presence(creds.OpenRouterKey))
			fmt.Fprintf(out, "Jira email:     %s\n", presence(creds.JiraEmail))
			fmt.Fprintf(out, "Jira token:     %s\n", presence(creds.JiraToken))
			return nil
		},
	}
}

func presence(value string) string {
	if value == "" {
		return "not set"
	}
	return "stored"
}

func newDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose environment setup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := container.DoctorService.Run(cmd.Context())
			renderDoctorReport(cmd.OutOrStdout(), report)
			return err
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the qacraft version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "qacraft %s\n", Version)
		},
	}
}
