// Package generation orchestrates the ticket-to-test-cases pipeline: ticket
// id extraction, credential checks, the read-through cache, the Jira fetch,
// the provider call, and the tri-state outcome handling.
package generation

import (
	"context"
	"errors"
	"os"

	"qacraft/internal/domain"
	"qacraft/internal/parse"
	"qacraft/internal/ports"
)

// Service runs generation rounds. All collaborators are injected; the
// service itself holds no state between calls beyond what the stores keep.
type Service struct {
	Jira     ports.JiraReader
	Factory  ports.ProviderFactory
	Cache    ports.TestCaseStore
	Sessions ports.SessionStore
	History  ports.HistoryRepository
	Logger   ports.Logger
}

// Request is one generation round. Input is free text that must contain a
// ticket id token; the model definition and decrypted credentials are
// resolved by the caller.
type Request struct {
	Input       string
	Model       domain.ModelDefinition
	Credentials domain.Credentials
}

// MoreInfoRequest continues a pending needs_more_info round.
type MoreInfoRequest struct {
	TicketID       string
	AdditionalInfo string
	Model          domain.ModelDefinition
	Credentials    domain.Credentials
}

// RegenerateRequest reworks the cached test cases with user feedback.
type RegenerateRequest struct {
	Input       string
	Feedback    string
	Model       domain.ModelDefinition
	Credentials domain.Credentials
}

// Result is the outcome of a round, tagged with its provenance.
type Result struct {
	TicketID  string
	Outcome   domain.GenerationOutcome
	FromCache bool
}

// Generate runs a first generation round for the ticket referenced in the
// input text. The cache is consulted before any credential use or network
// call; a hit returns immediately.
func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	if err := s.checkDeps(); err != nil {
		return Result{}, err
	}

	ticketID := domain.ExtractTicketID(req.Input)
	if ticketID == "" {
		return Result{}, domain.NewFailure(domain.FailTicketIDNotFound,
			"no ticket id found in input; expected a token like PROJ-123")
	}

	if entry, ok := s.Cache.Get(ticketID); ok {
		s.Logger.Info("cache hit", map[string]interface{}{"ticket": ticketID})
		return Result{
			TicketID:  ticketID,
			FromCache: true,
			Outcome: domain.GenerationOutcome{
				Status:    entry.Status,
				Notes:     entry.Notes,
				TestCases: parse.NormalizeTestCases(entry.TestCases),
				Payload:   entry.TestCases,
			},
		}, nil
	}

	apiKey, err := s.resolveAPIKey(req.Model, req.Credentials)
	if err != nil {
		return Result{}, err
	}

	ticket, err := s.Jira.GetTicket(ctx, ticketID, req.Credentials)
	if err != nil {
		return Result{}, err
	}

	messages, err := buildGenerationMessages(ticket)
	if err != nil {
		return Result{}, err
	}

	outcome, err := s.callAndParse(ctx, req.Model, apiKey, messages)
	if err != nil {
		return Result{}, err
	}

	s.settle(ticketID, ticket, outcome)
	return Result{TicketID: ticketID, Outcome: outcome}, nil
}

// ProvideMoreInfo answers the pending questions for a ticket and runs
// another round. The ticket context comes from the saved session, not a
// fresh Jira fetch; the user's text is appended to the stored description.
func (s *Service) ProvideMoreInfo(ctx context.Context, req MoreInfoRequest) (Result, error) {
	if err := s.checkDeps(); err != nil {
		return Result{}, err
	}

	session, ok := s.Sessions.Load(req.TicketID)
	if !ok {
		return Result{}, domain.NewFailure(domain.FailTicketIDNotFound,
			"no pending questions for %s; run generate first", req.TicketID)
	}

	apiKey, err := s.resolveAPIKey(req.Model, req.Credentials)
	if err != nil {
		return Result{}, err
	}

	ticket := domain.Ticket{
		Key:         session.JiraKey,
		Project:     session.JiraProject,
		Summary:     session.JiraSummary,
		Description: augmentDescription(session.JiraDescription, req.AdditionalInfo),
	}
	messages, err := buildGenerationMessages(ticket)
	if err != nil {
		return Result{}, err
	}

	outcome, err := s.callAndParse(ctx, req.Model, apiKey, messages)
	if err != nil {
		return Result{}, err
	}

	s.settle(req.TicketID, ticket, outcome)
	return Result{TicketID: req.TicketID, Outcome: outcome}, nil
}

// Regenerate reworks the test cases for a ticket with user feedback. The
// cache read is bypassed so feedback always reaches the model, and only a
// ready outcome is accepted; the result replaces the cached entry.
func (s *Service) Regenerate(ctx context.Context, req RegenerateRequest) (Result, error) {
	if err := s.checkDeps(); err != nil {
		return Result{}, err
	}

	ticketID := domain.ExtractTicketID(req.Input)
	if ticketID == "" {
		return Result{}, domain.NewFailure(domain.FailTicketIDNotFound,
			"no ticket id found in input; expected a token like PROJ-123")
	}

	apiKey, err := s.resolveAPIKey(req.Model, req.Credentials)
	if err != nil {
		return Result{}, err
	}

	ticket, err := s.Jira.GetTicket(ctx, ticketID, req.Credentials)
	if err != nil {
		return Result{}, err
	}

	var current []domain.TestCasePayload
	if entry, ok := s.Cache.Get(ticketID); ok {
		current = entry.TestCases
	}

	messages, err := buildRegenerationMessages(ticket.Description, current, req.Feedback)
	if err != nil {
		return Result{}, err
	}

	outcome, err := s.callAndParse(ctx, req.Model, apiKey, messages)
	if err != nil {
		return Result{}, err
	}
	if outcome.Status != domain.StatusReady {
		return Result{}, domain.NewRawFailure(domain.FailUnrecognizedStatus, outcome.Raw,
			"regeneration returned status %q, expected ready", outcome.Status)
	}

	s.settle(ticketID, ticket, outcome)
	return Result{TicketID: ticketID, Outcome: outcome}, nil
}

func (s *Service) checkDeps() error {
	if s.Jira == nil || s.Factory == nil || s.Cache == nil || s.Sessions == nil || s.Logger == nil {
		return errors.New("generation.Service dependencies not satisfied")
	}
	return nil
}

// resolveAPIKey prefers the stored credential for the model's provider and
// falls back to the configured environment variable. The check runs before
// any network call so a missing key fails fast.
func (s *Service) resolveAPIKey(model domain.ModelDefinition, creds domain.Credentials) (string, error) {
	if key := creds.ProviderKey(model.Provider); key != "" {
		return key, nil
	}
	if model.AuthEnvVar != "" {
		if key := os.Getenv(model.AuthEnvVar); key != "" {
			return key, nil
		}
	}
	return "", domain.NewFailure(domain.FailCredentialMissing,
		"no %s API key found; store one with 'creds set'", model.Provider)
}

func (s *Service) callAndParse(ctx context.Context, model domain.ModelDefinition, apiKey string, messages []domain.PromptMessage) (domain.GenerationOutcome, error) {
	provider, err := s.Factory.ForModel(model)
	if err != nil {
		return domain.GenerationOutcome{}, err
	}

	resp, err := provider.Generate(ctx, ports.ProviderRequest{Messages: messages, APIKey: apiKey})
	if err != nil {
		return domain.GenerationOutcome{}, domain.AsFailure(err, domain.FailProviderCall)
	}

	return parse.Outcome(resp.Text)
}

// settle applies the per-status side effects: ready writes the cache,
// clears any pending session, and records history; needs_more_info saves
// the session for the next round; invalid leaves no state behind.
func (s *Service) settle(ticketID string, ticket domain.Ticket, outcome domain.GenerationOutcome) {
	switch outcome.Status {
	case domain.StatusReady:
		entry := domain.TestCaseEntry{
			Status:    outcome.Status,
			Notes:     outcome.Notes,
			TestCases: outcome.Payload,
		}
		if err := s.Cache.Put(ticketID, entry); err != nil {
			s.Logger.Warn("cache write failed", map[string]interface{}{"ticket": ticketID, "error": err.Error()})
		}
		_ = s.Sessions.Clear(ticketID)
		if s.History != nil {
			err := s.History.Save(domain.TicketHistoryEntry{
				TicketID:      ticketID,
				Summary:       ticket.Summary,
				TestCaseCount: len(outcome.TestCases),
				TestCases:     outcome.Payload,
			})
			if err != nil {
				s.Logger.Warn("history write failed", map[string]interface{}{"ticket": ticketID, "error": err.Error()})
			}
		}

	case domain.StatusNeedsMoreInfo:
		err := s.Sessions.Save(ticketID, domain.GenerationContext{
			TicketID:        ticketID,
			JiraKey:         ticket.Key,
			JiraProject:     ticket.Project,
			JiraSummary:     ticket.Summary,
			JiraDescription: ticket.Description,
			LastValidation:  outcome.Notes,
			Questions:       outcome.Questions,
		})
		if err != nil {
			s.Logger.Warn("session write failed", map[string]interface{}{"ticket": ticketID, "error": err.Error()})
		}
	}
}
