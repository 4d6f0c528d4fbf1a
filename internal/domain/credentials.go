package domain

import "strings"

// Credentials holds one user's decrypted API keys and Jira credentials.
type Credentials struct {
	OpenAIKey     string `json:"openai_key"`
	AnthropicKey  string `json:"anthropic_key"`
	OpenRouterKey string `json:"openrouter_key"`
	JiraEmail     string `json:"jira_email"`
	JiraToken     string `json:"jira_token"`
	JiraURL       string `json:"jira_url"`
}

// HasProviderKey reports whether at least one LLM provider key is present.
func (c Credentials) HasProviderKey() bool {
	return c.OpenAIKey != "" || c.AnthropicKey != "" || c.OpenRouterKey != ""
}

// HasJira reports whether the Jira email/token pair is present.
func (c Credentials) HasJira() bool {
	return c.JiraEmail != "" && c.JiraToken != ""
}

// ProviderKey returns the API key for the named provider, or empty if the
// provider is unknown or the key is missing.
func (c Credentials) ProviderKey(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return c.OpenAIKey
	case "anthropic":
		return c.AnthropicKey
	case "openrouter":
		return c.OpenRouterKey
	}
	return ""
}
