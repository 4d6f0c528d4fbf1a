// Package codegen turns recorded browser transcripts into structured flows
// and cached code skeletons, and generates code from test case steps via
// the model when no recording exists.
package codegen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"qacraft/internal/actions"
	"qacraft/internal/domain"
	"qacraft/internal/parse"
	"qacraft/internal/ports"
)

// Service imports transcripts and serves generated code, cache first. When
// no recording exists for a test case the code is generated by the model
// from the cached test case steps instead.
type Service struct {
	Flows     ports.FlowStore
	Codes     ports.CodeStore
	TestCases ports.TestCaseStore
	Factory   ports.ProviderFactory
	Logger    ports.Logger
}

// Transcript is one finished recording handed over by the recorder.
type Transcript struct {
	RecordingID   string
	URL           string
	TestCaseID    string
	TestCaseTitle string
	TicketID      string
	Source        string
}

// Import reconstructs the actions from a codegen transcript, derives the
// readable steps and code skeletons, and persists the flow. An empty
// transcript still yields a flow with the navigation floor.
func (s *Service) Import(tr Transcript) (domain.RecordedFlow, error) {
	if err := s.checkDeps(); err != nil {
		return domain.RecordedFlow{}, err
	}
	if tr.RecordingID == "" {
		return domain.RecordedFlow{}, errors.New("transcript has no recording id")
	}

	recorded := actions.Extract(tr.Source, tr.URL)
	flow := domain.RecordedFlow{
		RecordingID:   tr.RecordingID,
		URL:           tr.URL,
		TestCaseID:    tr.TestCaseID,
		TestCaseTitle: tr.TestCaseTitle,
		TicketID:      tr.TicketID,
		Actions:       recorded,
		TestSteps:     actions.Steps(recorded),
		GeneratedCode: actions.Render(recorded),
		RecordedAt:    time.Now(),
	}

	if err := s.Flows.Save(flow); err != nil {
		return domain.RecordedFlow{}, fmt.Errorf("save flow: %w", err)
	}
	s.Logger.Info("flow imported", map[string]interface{}{
		"recording": flow.RecordingID,
		"actions":   len(flow.Actions),
	})

	if flow.TestCaseID != "" && flow.TicketID != "" {
		if err := s.cacheCode(flow); err != nil {
			s.Logger.Warn("code cache write failed", map[string]interface{}{
				"recording": flow.RecordingID,
				"error":     err.Error(),
			})
		}
	}
	return flow, nil
}

// CodeRequest asks for the generated code of one test case. Model and
// Credentials are only consulted on the LLM path, when no recording exists.
type CodeRequest struct {
	TicketID    string
	TestCaseID  string
	Model       domain.ModelDefinition
	Credentials domain.Credentials
}

// Code returns the generated code for a test case. The cache is checked
// first; on a miss the latest flow for the test case is re-rendered. When
// no flow was ever recorded the code is generated by the model from the
// cached test case steps. Either way the result is cached.
func (s *Service) Code(ctx context.Context, req CodeRequest) (domain.CodeEntry, error) {
	if err := s.checkDeps(); err != nil {
		return domain.CodeEntry{}, err
	}

	if entry, ok := s.Codes.Get(req.TicketID, req.TestCaseID); ok {
		return entry, nil
	}

	var entry domain.CodeEntry
	if flow, ok := s.Flows.ForTestCase(req.TestCaseID, req.TicketID); ok {
		entry = codeEntryFor(flow)
	} else {
		generated, err := s.generateFromTestCase(ctx, req)
		if err != nil {
			return domain.CodeEntry{}, err
		}
		entry = generated
	}

	if err := s.Codes.Put(req.TicketID, req.TestCaseID, entry); err != nil {
		s.Logger.Warn("code cache write failed", map[string]interface{}{
			"ticket": req.TicketID,
			"error":  err.Error(),
		})
	}
	return entry, nil
}

// generateFromTestCase builds code from the cached test case steps alone.
// The test case must come from a previous ready generation round.
func (s *Service) generateFromTestCase(ctx context.Context, req CodeRequest) (domain.CodeEntry, error) {
	cached, ok := s.TestCases.Get(req.TicketID)
	if !ok {
		return domain.CodeEntry{}, domain.NewFailure(domain.FailTicketIDNotFound,
			"no recording or cached test cases for %s; run generate first", req.TicketID)
	}
	tc, ok := findTestCase(cached.TestCases, req.TestCaseID)
	if !ok {
		return domain.CodeEntry{}, domain.NewFailure(domain.FailTicketIDNotFound,
			"test case %s not found for %s", req.TestCaseID, req.TicketID)
	}

	apiKey, err := s.resolveAPIKey(req.Model, req.Credentials)
	if err != nil {
		return domain.CodeEntry{}, err
	}

	messages, err := buildCodeMessages(tc, "")
	if err != nil {
		return domain.CodeEntry{}, err
	}

	provider, err := s.Factory.ForModel(req.Model)
	if err != nil {
		return domain.CodeEntry{}, err
	}
	resp, err := provider.Generate(ctx, ports.ProviderRequest{Messages: messages, APIKey: apiKey})
	if err != nil {
		return domain.CodeEntry{}, domain.AsFailure(err, domain.FailProviderCall)
	}

	s.Logger.Info("code generated from test case", map[string]interface{}{
		"ticket":    req.TicketID,
		"test_case": req.TestCaseID,
	})
	return parseCodeResponse(resp.Text, tc, req.TicketID)
}

func findTestCase(cases []domain.TestCasePayload, id string) (domain.TestCasePayload, bool) {
	for _, tc := range cases {
		if tc.ID == id {
			return tc, true
		}
	}
	return domain.TestCasePayload{}, false
}

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

// codeEnvelope is the wire shape of a code generation response, one
// python/javascript pair per section.
type codeEnvelope struct {
	Locators          languagePair `json:"locators"`
	ReusableFunctions languagePair `json:"reusable_functions"`
	TestFunctions     languagePair `json:"test_functions"`
	CursorPrompt      string       `json:"cursor_prompt"`
}

type languagePair struct {
	Python     string `json:"python"`
	JavaScript string `json:"javascript"`
}

// parseCodeResponse extracts and decodes the code envelope from the raw
// model output. A response without test functions is rejected.
func parseCodeResponse(raw string, tc domain.TestCasePayload, ticketID string) (domain.CodeEntry, error) {
	span, err := parse.ExtractObject(raw)
	if err != nil {
		return domain.CodeEntry{}, err
	}
	var envelope codeEnvelope
	if err := json.Unmarshal([]byte(span), &envelope); err != nil {
		return domain.CodeEntry{}, domain.NewRawFailure(
			domain.FailResponseNotJSON, raw, "model did not return valid JSON: %v", err)
	}
	if envelope.TestFunctions.Python == "" && envelope.TestFunctions.JavaScript == "" {
		return domain.CodeEntry{}, domain.NewRawFailure(
			domain.FailResponseNotJSON, raw, "code response has no test_functions")
	}

	return domain.CodeEntry{
		TestCaseID:    tc.ID,
		TestCaseTitle: tc.Title,
		TicketID:      ticketID,
		GeneratedAt:   time.Now(),
		Code: domain.GeneratedCode{
			Python:             envelope.TestFunctions.Python,
			JavaScript:         envelope.TestFunctions.JavaScript,
			LocatorsPython:     envelope.Locators.Python,
			LocatorsJavaScript: envelope.Locators.JavaScript,
		},
		Formatted: map[string]string{
			"python":                        envelope.TestFunctions.Python,
			"javascript":                    envelope.TestFunctions.JavaScript,
			"locators_python":               envelope.Locators.Python,
			"locators_javascript":           envelope.Locators.JavaScript,
			"reusable_functions_python":     envelope.ReusableFunctions.Python,
			"reusable_functions_javascript": envelope.ReusableFunctions.JavaScript,
			"cursor_prompt":                 envelope.CursorPrompt,
		},
	}, nil
}

func (s *Service) cacheCode(flow domain.RecordedFlow) error {
	return s.Codes.Put(flow.TicketID, flow.TestCaseID, codeEntryFor(flow))
}

func codeEntryFor(flow domain.RecordedFlow) domain.CodeEntry {
	code := flow.GeneratedCode
	return domain.CodeEntry{
		TestCaseID:    flow.TestCaseID,
		TestCaseTitle: flow.TestCaseTitle,
		TicketID:      flow.TicketID,
		GeneratedAt:   time.Now(),
		Code:          code,
		Formatted: map[string]string{
			"python":              code.Python,
			"javascript":          code.JavaScript,
			"locators_python":     code.LocatorsPython,
			"locators_javascript": code.LocatorsJavaScript,
		},
	}
}

func (s *Service) checkDeps() error {
	if s.Flows == nil || s.Codes == nil || s.TestCases == nil || s.Factory == nil || s.Logger == nil {
		return errors.New("codegen.Service dependencies not satisfied")
	}
	return nil
}
