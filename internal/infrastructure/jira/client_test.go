package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qacraft/internal/domain"
)

func jiraCreds() domain.Credentials {
	return domain.Credentials{JiraEmail: "jane@example.com", JiraToken: "atl-token"}
}

func TestGetTicket(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/issue/PROJ-123", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "jane@example.com", user)
		assert.Equal(t, "atl-token", pass)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"key": "PROJ-123",
			"fields": map[string]interface{}{
				"summary": "Login page",
				"project": map[string]interface{}{"key": "PROJ", "name": "Project"},
				"description": map[string]interface{}{
					"type": "doc",
					"content": []interface{}{
						map[string]interface{}{
							"type": "paragraph",
							"content": []interface{}{
								map[string]interface{}{"type": "text", "text": "As a user I can "},
								map[string]interface{}{"type": "text", "text": "log in."},
							},
						},
						map[string]interface{}{
							"type": "paragraph",
							"content": []interface{}{
								map[string]interface{}{"type": "text", "text": "Lockout after 3 tries."},
							},
						},
					},
				},
			},
		})
	}))
	defer server.Close()

	ticket, err := NewClient(server.URL).GetTicket(context.Background(), "PROJ-123", jiraCreds())
	require.NoError(t, err)
	assert.Equal(t, domain.Ticket{
		Key:         "PROJ-123",
		Project:     "PROJ",
		Summary:     "Login page",
		Description: "As a user I can log in.\nLockout after 3 tries.",
	}, ticket)
}

func TestGetTicketEmptyDescriptionFallsBackToSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"key": "PROJ-9",
			"fields": map[string]interface{}{
				"summary": "Only a summary",
				"project": map[string]interface{}{"key": "PROJ"},
			},
		})
	}))
	defer server.Close()

	ticket, err := NewClient(server.URL).GetTicket(context.Background(), "PROJ-9", jiraCreds())
	require.NoError(t, err)
	assert.Equal(t, "Only a summary", ticket.Description)
}

func TestGetTicketNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no issue", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).GetTicket(context.Background(), "PROJ-404", jiraCreds())
	require.Error(t, err)
	assert.Equal(t, domain.FailJiraUnreachable, domain.AsFailure(err, domain.FailJiraUnreachable).Kind)
}

func TestGetTicketMissingCredentials(t *testing.T) {
	_, err := NewClient("https://example.atlassian.net").GetTicket(context.Background(), "PROJ-1", domain.Credentials{})
	require.Error(t, err)
	assert.Equal(t, domain.FailCredentialMissing, domain.AsFailure(err, domain.FailJiraUnreachable).Kind)
}

func TestFlattenDescriptionPlainString(t *testing.T) {
	got := FlattenDescription(json.RawMessage(`"already plain text"`))
	assert.Equal(t, "already plain text", got)
}

func TestFlattenDescriptionBulletList(t *testing.T) {
	raw := json.RawMessage(`{
		"type": "doc",
		"content": [
			{"type": "bulletList", "content": [
				{"type": "listItem", "content": [
					{"type": "paragraph", "content": [{"type": "text", "text": "first"}]}
				]},
				{"type": "listItem", "content": [
					{"type": "paragraph", "content": [{"type": "text", "text": "second"}]}
				]}
			]}
		]
	}`)
	assert.Equal(t, "first\nsecond", FlattenDescription(raw))
}
