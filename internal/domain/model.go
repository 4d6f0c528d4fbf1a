// Package domain defines core business entities and value objects for qacraft.
//
// This file contains LLM model and provider definitions. The domain layer is
// independent of infrastructure concerns and represents pure business logic
// and data structures.
package domain

// ModelDefinition describes an LLM provider configuration declared in the
// config file. Each model represents a specific service endpoint with its
// authentication and generation parameters.
type ModelDefinition struct {
	Name       string    `yaml:"name"`
	Provider   string    `yaml:"provider"`
	Endpoint   string    `yaml:"endpoint"`
	AuthEnvVar string    `yaml:"auth_env_var"`
	ModelID    string    `yaml:"model_id"`
	MaxTokens  int       `yaml:"max_tokens"`
	APIFormat  APIFormat `yaml:"api_format,omitempty"`
}

// APIFormat defines how to construct requests and parse responses for
// different LLM APIs. All fields are optional with OpenAI-compatible
// defaults.
type APIFormat struct {
	// AuthHeaderName specifies the HTTP header name for authentication.
	// Default: "Authorization"
	AuthHeaderName string `yaml:"auth_header_name,omitempty"`

	// AuthHeaderPrefix is prepended to the API key value.
	// Default: "Bearer " (with trailing space). Set AuthHeaderName without a
	// prefix for providers like Anthropic's "x-api-key".
	AuthHeaderPrefix string `yaml:"auth_header_prefix,omitempty"`

	// SystemMessageMode controls how system messages are sent.
	// "inline" (default) keeps them in the messages array; "separate" moves
	// them to a top-level "system" field (Anthropic).
	SystemMessageMode string `yaml:"system_message_mode,omitempty"`

	// ContentWrapper controls message content formatting.
	// "standard" (default) is direct string content; "anthropic" wraps it in
	// [{"type": "text", "text": "..."}].
	ContentWrapper string `yaml:"content_wrapper,omitempty"`

	// ResponseJSONPath specifies where the generated text lives in the
	// response. Default: "choices[0].message.content".
	ResponseJSONPath string `yaml:"response_json_path,omitempty"`

	// ExtraHeaders contains additional HTTP headers sent with each request,
	// e.g. {"anthropic-version": "2023-06-01"}.
	ExtraHeaders map[string]string `yaml:"extra_headers,omitempty"`
}

// PromptMessage follows the role/content pair required by most chat APIs.
type PromptMessage struct {
	Role    string
	Content string
}

const (
	DefaultAuthHeaderName   = "Authorization"
	DefaultAuthHeaderPrefix = "Bearer "

	SystemMessageModeInline   = "inline"
	SystemMessageModeSeparate = "separate"

	ContentWrapperStandard  = "standard"
	ContentWrapperAnthropic = "anthropic"

	DefaultResponsePath   = "choices[0].message.content"
	AnthropicResponsePath = "content[0].text"
)

// GetAuthHeaderName returns the authentication header name with default fallback.
func (f APIFormat) GetAuthHeaderName() string {
	if f.AuthHeaderName == "" {
		return DefaultAuthHeaderName
	}
	return f.AuthHeaderName
}

// GetAuthHeaderPrefix returns the authentication header prefix. An empty
// prefix is valid when a custom header name is set.
func (f APIFormat) GetAuthHeaderPrefix() string {
	if f.AuthHeaderName != "" && f.AuthHeaderPrefix == "" {
		return ""
	}
	if f.AuthHeaderPrefix == "" && f.AuthHeaderName == "" {
		return DefaultAuthHeaderPrefix
	}
	return f.AuthHeaderPrefix
}

// GetResponseJSONPath returns the JSON path for extracting response content.
func (f APIFormat) GetResponseJSONPath() string {
	if f.ResponseJSONPath == "" {
		return DefaultResponsePath
	}
	return f.ResponseJSONPath
}

// IsSystemMessageSeparate reports whether system messages go in a separate field.
func (f APIFormat) IsSystemMessageSeparate() bool {
	return f.SystemMessageMode == SystemMessageModeSeparate
}

// IsContentWrapped reports whether content uses Anthropic's array format.
func (f APIFormat) IsContentWrapped() bool {
	return f.ContentWrapper == ContentWrapperAnthropic
}
