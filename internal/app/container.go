// Package app wires application services with infrastructure adapters.
package app

import (
	"context"

	"qacraft/internal/application/codegen"
	"qacraft/internal/application/doctor"
	"qacraft/internal/application/generation"
	"qacraft/internal/infrastructure/ai"
	"qacraft/internal/infrastructure/auth"
	"qacraft/internal/infrastructure/cache"
	"qacraft/internal/infrastructure/config"
	"qacraft/internal/infrastructure/history"
	"qacraft/internal/infrastructure/jira"
	"qacraft/internal/infrastructure/recorder"
	"qacraft/internal/pkg/logger"
	"qacraft/internal/ports"
)

// Container holds the wired dependency graph for the CLI.
type Container struct {
	Config            ports.ConfigProvider
	GenerationService *generation.Service
	CodegenService    *codegen.Service
	DoctorService     *doctor.Service
	Credentials       ports.CredentialStore
	TestCases         *cache.TestCaseStore
	Codes             *cache.CodeStore
	Flows             *cache.FlowStore
	Sessions          *cache.SessionStore
	History           *history.SQLiteStore
	Recorder          *recorder.Runner
	Logger            ports.Logger
}

// BuildContainer constructs the dependency graph from the loaded config.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)
	credStore := auth.NewStore(config.CredentialsDir())
	testCases := cache.NewTestCaseStore(cfg.Storage.TestCaseDir)
	codes := cache.NewCodeStore(cfg.Storage.CodeDir)
	flows := cache.NewFlowStore(cfg.Storage.RecordingDir)
	sessions := cache.NewSessionStore(cfg.Storage.SessionDir)
	historyStore := history.NewSQLiteStore(cfg.Storage.HistoryDB)
	factory := ai.NewFactory()

	generationService := &generation.Service{
		Jira:     jira.NewClient(cfg.Jira.BaseURL),
		Factory:  factory,
		Cache:    testCases,
		Sessions: sessions,
		History:  historyStore,
		Logger:   log,
	}

	codegenService := &codegen.Service{
		Flows:     flows,
		Codes:     codes,
		TestCases: testCases,
		Factory:   factory,
		Logger:    log,
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Credentials:    credStore,
		User:           auth.UserID(cfg.Preferences.FirstName, cfg.Preferences.LastName),
	}

	return &Container{
		Config:            cfgLoader,
		GenerationService: generationService,
		CodegenService:    codegenService,
		DoctorService:     doctorService,
		Credentials:       credStore,
		TestCases:         testCases,
		Codes:             codes,
		Flows:             flows,
		Sessions:          sessions,
		History:           historyStore,
		Recorder:          recorder.NewRunner(cfg.Storage.RecordingDir),
		Logger:            log,
	}, nil
}
