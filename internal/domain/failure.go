package domain

import "fmt"

// FailureKind identifies a class of generation failure. Every failure is
// surfaced to the caller as a structured result; nothing in the core throws
// past the command handler. CacheCorrupt is the one kind recovered
// internally (treated as a miss), so it never reaches callers.
type FailureKind string

const (
	FailCredentialMissing  FailureKind = "credential_missing"
	FailTicketIDNotFound   FailureKind = "ticket_id_not_found"
	FailJiraUnreachable    FailureKind = "jira_unreachable"
	FailProviderCall       FailureKind = "provider_call_failed"
	FailResponseNotJSON    FailureKind = "response_not_json"
	FailUnrecognizedStatus FailureKind = "unrecognized_status"
	FailEmptyReadyResult   FailureKind = "empty_ready_result"
	FailCacheCorrupt       FailureKind = "cache_corrupt"
)

// Failure is a structured error with a kind and, for JSON failures, the raw
// model output for manual inspection.
type Failure struct {
	Kind    FailureKind
	Message string
	Raw     string
}

func (f *Failure) Error() string {
	return f.Message
}

// NewFailure builds a Failure without diagnostics.
func NewFailure(kind FailureKind, format string, args ...interface{}) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewRawFailure builds a Failure carrying the raw model output.
func NewRawFailure(kind FailureKind, raw string, format string, args ...interface{}) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...), Raw: raw}
}

// AsFailure unwraps err into a *Failure, wrapping unknown errors under the
// given fallback kind so the CLI layer always has a kind to report.
func AsFailure(err error, fallback FailureKind) *Failure {
	if err == nil {
		return nil
	}
	if f, ok := err.(*Failure); ok {
		return f
	}
	return &Failure{Kind: fallback, Message: err.Error()}
}
