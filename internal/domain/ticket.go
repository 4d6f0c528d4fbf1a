package domain

import (
	"regexp"
	"time"
)

// Ticket is the slice of a Jira issue the generation pipeline needs.
type Ticket struct {
	Key         string
	Project     string
	Summary     string
	Description string
}

// ticketIDPattern matches PROJECT-123 shaped tokens. First match wins; the
// project prefix is not validated against the tracker.
var ticketIDPattern = regexp.MustCompile(`[A-Z]+-\d+`)

// ExtractTicketID returns the first ticket-id-shaped token in text, or ""
// when none is present.
func ExtractTicketID(text string) string {
	return ticketIDPattern.FindString(text)
}

// TicketHistoryEntry records one generated ticket in the history store.
type TicketHistoryEntry struct {
	TicketID      string
	Summary       string
	TestCaseCount int
	GeneratedAt   time.Time
	TestCases     []TestCasePayload
}
