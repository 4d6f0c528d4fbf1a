// Package cli wires the cobra command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"qacraft/internal/app"
	"qacraft/internal/domain"
	"qacraft/internal/infrastructure/auth"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd builds the command tree on top of a freshly wired container.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	root := &cobra.Command{
		Use:   "qacraft",
		Short: "QACraft - test case generation and flow recording for QA teams",
		Long: "QACraft turns Jira stories into structured manual test cases through an LLM,\n" +
			"and records browser flows with Playwright codegen to produce automation skeletons.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newGenerateCommand(container))
	root.AddCommand(newCodeCommand(container))
	root.AddCommand(newRecordCommand(container))
	root.AddCommand(newFlowsCommand(container))
	root.AddCommand(newExportCommand(container))
	root.AddCommand(newHistoryCommand(container))
	root.AddCommand(newCacheCommand(container))
	root.AddCommand(newCredsCommand(container))
	root.AddCommand(newDoctorCommand(container))
	root.AddCommand(newVersionCommand())
	return root, nil
}

// resolveModel picks the named model, falling back to the configured
// default.
func resolveModel(cfg domain.Config, override string) (domain.ModelDefinition, error) {
	name := override
	if name == "" {
		name = cfg.Preferences.DefaultModel
	}
	model, ok := cfg.FindModel(name)
	if !ok {
		return domain.ModelDefinition{}, fmt.Errorf("model %q is not declared in the config", name)
	}
	return model, nil
}

// loadCredentials decrypts the configured user's credentials.
func loadCredentials(container *app.Container, cfg domain.Config) (domain.Credentials, error) {
	user := auth.UserID(cfg.Preferences.FirstName, cfg.Preferences.LastName)
	return container.Credentials.Load(user)
}
