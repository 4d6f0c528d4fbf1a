// Package jira fetches ticket fields over the Jira Cloud REST API (v3).
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"qacraft/internal/domain"
)

const requestTimeout = 30 * time.Second

// Client reads issues from a Jira Cloud instance using basic auth with the
// user's email and API token.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a reader for the given Jira base URL, e.g.
// "https://example.atlassian.net".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type issueResponse struct {
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
		Project struct {
			Key  string `json:"key"`
			Name string `json:"name"`
		} `json:"project"`
		Description json.RawMessage `json:"description"`
	} `json:"fields"`
}

// GetTicket fetches one issue. The base URL from the stored credentials
// wins over the configured one when both are set.
func (c *Client) GetTicket(ctx context.Context, id string, creds domain.Credentials) (domain.Ticket, error) {
	base := c.baseURL
	if creds.JiraURL != "" {
		base = strings.TrimRight(creds.JiraURL, "/")
	}
	if base == "" {
		return domain.Ticket{}, domain.NewFailure(domain.FailJiraUnreachable, "no Jira base URL configured")
	}
	if !creds.HasJira() {
		return domain.Ticket{}, domain.NewFailure(domain.FailCredentialMissing, "Jira email and API token are not set")
	}

	url := fmt.Sprintf("%s/rest/api/3/issue/%s", base, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Ticket{}, err
	}
	req.SetBasicAuth(creds.JiraEmail, creds.JiraToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Ticket{}, domain.NewFailure(domain.FailJiraUnreachable, "fetch %s: %v", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.Ticket{}, domain.NewFailure(domain.FailJiraUnreachable, "ticket %s not found in Jira", id)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.Ticket{}, domain.NewFailure(domain.FailJiraUnreachable, "Jira rejected the stored credentials (HTTP %d)", resp.StatusCode)
	case resp.StatusCode >= 400:
		return domain.Ticket{}, domain.NewFailure(domain.FailJiraUnreachable, "fetch %s: HTTP %d", id, resp.StatusCode)
	}

	var issue issueResponse
	if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
		return domain.Ticket{}, domain.NewFailure(domain.FailJiraUnreachable, "decode %s: %v", id, err)
	}

	ticket := domain.Ticket{
		Key:         issue.Key,
		Project:     issue.Fields.Project.Key,
		Summary:     issue.Fields.Summary,
		Description: FlattenDescription(issue.Fields.Description),
	}
	if ticket.Project == "" {
		ticket.Project = issue.Fields.Project.Name
	}
	// A ticket with no description still yields prompt context.
	if ticket.Description == "" {
		ticket.Description = ticket.Summary
	}
	return ticket, nil
}

// FlattenDescription renders a Jira description field as plain text. The v3
// API returns Atlassian Document Format, a nested node tree; only the text
// leaves matter for prompt building. Plain-string descriptions pass through
// unchanged.
func FlattenDescription(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return strings.TrimSpace(asString)
	}

	var node adfNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return ""
	}

	var blocks []string
	collectADFText(node, &blocks)
	return strings.TrimSpace(strings.Join(blocks, "\n"))
}

type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Content []adfNode `json:"content"`
}

// collectADFText walks the node tree depth first. Each block-level node
// (paragraph, heading, list item) contributes one output line.
func collectADFText(node adfNode, blocks *[]string) {
	switch node.Type {
	case "text":
		if len(*blocks) == 0 {
			*blocks = append(*blocks, node.Text)
		} else {
			(*blocks)[len(*blocks)-1] += node.Text
		}
		return
	case "paragraph", "heading", "listItem", "codeBlock", "hardBreak":
		// Start a new line unless the current one is still empty; nested
		// block nodes would otherwise emit blank lines.
		if n := len(*blocks); n > 0 && (*blocks)[n-1] != "" {
			*blocks = append(*blocks, "")
		}
	}
	for _, child := range node.Content {
		collectADFText(child, blocks)
	}
}
