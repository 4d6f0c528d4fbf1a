// Package doctor runs environment diagnostics for the generation and
// recording pipelines.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"qacraft/internal/domain"
	"qacraft/internal/ports"
)

// Service runs environment diagnostics. User is the credential store key
// derived from the configured name.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Credentials    ports.CredentialStore
	User           string
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("format version %s, %d models", cfg.ConfigFormatVersion, len(cfg.Models))))

	if _, found := cfg.FindModel(cfg.Preferences.DefaultModel); found {
		checks = append(checks, ok("Default model", cfg.Preferences.DefaultModel))
	} else {
		checks = append(checks, fail("Default model", fmt.Sprintf("%q is not declared in models", cfg.Preferences.DefaultModel)))
	}

	checks = append(checks, s.credentialChecks(cfg)...)
	checks = append(checks, storageCheck(cfg.Storage))
	checks = append(checks, playwrightCheck())

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) credentialChecks(cfg domain.Config) []domain.HealthCheck {
	if s.Credentials == nil {
		return []domain.HealthCheck{warn("Credentials", "credential store not initialized")}
	}

	creds, err := s.Credentials.Load(s.User)
	if err != nil {
		return []domain.HealthCheck{fail("Credentials", err.Error())}
	}

	var checks []domain.HealthCheck
	model, _ := cfg.FindModel(cfg.Preferences.DefaultModel)
	switch {
	case creds.ProviderKey(model.Provider) != "":
		checks = append(checks, ok("LLM API key", fmt.Sprintf("stored for %s", model.Provider)))
	case model.AuthEnvVar != "" && os.Getenv(model.AuthEnvVar) != "":
		checks = append(checks, ok("LLM API key", fmt.Sprintf("from %s", model.AuthEnvVar)))
	default:
		checks = append(checks, warn("LLM API key", fmt.Sprintf("none stored for %s; run 'creds set'", model.Provider)))
	}

	if creds.HasJira() {
		checks = append(checks, ok("Jira credentials", creds.JiraEmail))
	} else {
		checks = append(checks, warn("Jira credentials", "email/token not stored; run 'creds set'"))
	}
	return checks
}

func storageCheck(storage domain.StorageSettings) domain.HealthCheck {
	for _, dir := range []string{storage.TestCaseDir, storage.CodeDir, storage.RecordingDir, storage.SessionDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail("Storage", fmt.Sprintf("%s: %v", dir, err))
		}
	}
	return ok("Storage", "cache directories writable")
}

func playwrightCheck() domain.HealthCheck {
	if _, err := exec.LookPath("npx"); err != nil {
		return warn("Playwright", "npx not found on PATH; recording is unavailable")
	}
	return ok("Playwright", "npx available")
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
