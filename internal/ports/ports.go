// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and
// external adapters (infrastructure). Following the Ports and Adapters
// pattern, these interfaces keep the generation and extraction core
// independent of the LLM HTTP client, the Jira REST client, and the on-disk
// stores.
package ports

import (
	"context"

	"qacraft/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.qacraft/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ProviderFactory builds LLM provider instances based on model definitions.
type ProviderFactory interface {
	ForModel(domain.ModelDefinition) (Provider, error)
}

// Provider is the opaque LLM invocation surface: prompt in, raw text out.
// Everything downstream of the raw text (extraction, normalization) is the
// core's job, not the provider's.
type Provider interface {
	Name() string
	Model() domain.ModelDefinition
	Generate(context.Context, ProviderRequest) (ProviderResponse, error)
}

// ProviderRequest contains the rendered prompt messages and the resolved
// API key for the call.
type ProviderRequest struct {
	Messages []domain.PromptMessage
	APIKey   string
}

// ProviderResponse contains the raw model output text.
type ProviderResponse struct {
	Text string
}

// JiraReader fetches ticket fields used to build the prompt context. The
// core never parses ticket data beyond these four fields.
type JiraReader interface {
	GetTicket(ctx context.Context, id string, creds domain.Credentials) (domain.Ticket, error)
}

// CredentialStore loads and saves per-user encrypted credentials. Missing
// keys are a precondition failure for the generation path, not something
// the core resolves.
type CredentialStore interface {
	Load(user string) (domain.Credentials, error)
	Save(user string, creds domain.Credentials) error
}

// TestCaseStore is the read-through cache of generated test cases, keyed by
// sanitized ticket id. Get returns ok=false for both absent and corrupt
// entries; corruption is never an error.
type TestCaseStore interface {
	Get(ticketID string) (domain.TestCaseEntry, bool)
	Put(ticketID string, entry domain.TestCaseEntry) error
	Delete(ticketID string) error
	Keys() ([]string, error)
}

// CodeStore caches generated code, keyed by the sanitized
// (ticket id, test case id) pair. Same miss-on-corruption semantics.
type CodeStore interface {
	Get(ticketID, testCaseID string) (domain.CodeEntry, bool)
	Put(ticketID, testCaseID string, entry domain.CodeEntry) error
}

// FlowStore persists recorded flows. Flows are immutable once saved except
// for explicit delete.
type FlowStore interface {
	Save(flow domain.RecordedFlow) error
	Get(recordingID string) (domain.RecordedFlow, bool)
	ForTestCase(testCaseID, ticketID string) (domain.RecordedFlow, bool)
	All() ([]domain.RecordedFlow, error)
	Delete(recordingID string) error
}

// SessionStore persists pending needs_more_info generation contexts between
// CLI invocations, keyed by ticket id. Replaced, never merged.
type SessionStore interface {
	Save(ticketID string, ctx domain.GenerationContext) error
	Load(ticketID string) (domain.GenerationContext, bool)
	Clear(ticketID string) error
}

// HistoryRepository records generated tickets for later listing.
type HistoryRepository interface {
	Save(entry domain.TicketHistoryEntry) error
	Entries(limit int, search string) ([]domain.TicketHistoryEntry, error)
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
