// Package ai provides the LLM provider factory and its HTTP implementation.
//
// There is a single configuration-driven provider: every service-specific
// behavior (auth header, system message placement, content wrapping,
// response path) is declared in the model's APIFormat, so adding a provider
// is a config change, not a code change.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"qacraft/internal/domain"
	"qacraft/internal/ports"
)

const (
	httpClientTimeout = 60 * time.Second
	providerName      = "http"
)

// Factory creates provider instances based on model definitions. One HTTP
// client is shared across all providers.
type Factory struct {
	httpClient *http.Client
}

// NewFactory creates a provider factory with a configured HTTP client.
func NewFactory() *Factory {
	return &Factory{
		httpClient: &http.Client{Timeout: httpClientTimeout},
	}
}

// ForModel creates a generic HTTP provider for any model definition.
func (f *Factory) ForModel(model domain.ModelDefinition) (ports.Provider, error) {
	return &httpProvider{model: model, httpClient: f.httpClient}, nil
}

var _ ports.ProviderFactory = (*Factory)(nil)

type httpProvider struct {
	model      domain.ModelDefinition
	httpClient *http.Client
}

func (p *httpProvider) Name() string {
	return providerName
}

func (p *httpProvider) Model() domain.ModelDefinition {
	return p.model
}

// Generate performs one chat completion call and returns the raw text. The
// caller owns everything downstream of the text, including JSON extraction.
func (p *httpProvider) Generate(ctx context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	requestBody, err := p.buildRequestBody(req.Messages)
	if err != nil {
		return ports.ProviderResponse{}, fmt.Errorf("build request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.model.Endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return ports.ProviderResponse{}, fmt.Errorf("create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if err := p.setAuthHeaders(httpReq, req.APIKey); err != nil {
		return ports.ProviderResponse{}, err
	}
	for key, value := range p.model.APIFormat.ExtraHeaders {
		httpReq.Header.Set(key, value)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return ports.ProviderResponse{}, domain.NewFailure(domain.FailProviderCall, "call %s: %v", p.model.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ports.ProviderResponse{}, domain.NewFailure(domain.FailProviderCall, "call %s: HTTP %d", p.model.Name, resp.StatusCode)
	}

	var responseBody bytes.Buffer
	if _, err := responseBody.ReadFrom(resp.Body); err != nil {
		return ports.ProviderResponse{}, fmt.Errorf("read response body: %w", err)
	}

	content, err := p.parseResponse(responseBody.Bytes())
	if err != nil {
		return ports.ProviderResponse{}, fmt.Errorf("parse response: %w", err)
	}

	return ports.ProviderResponse{Text: content}, nil
}

// buildRequestBody constructs the JSON request body per the model's
// APIFormat configuration.
func (p *httpProvider) buildRequestBody(messages []domain.PromptMessage) ([]byte, error) {
	format := p.model.APIFormat

	request := map[string]interface{}{
		"model": p.model.ModelID,
	}
	if p.model.MaxTokens > 0 {
		request["max_tokens"] = p.model.MaxTokens
	}

	if format.IsSystemMessageSeparate() {
		systemPrompt, chatMessages := splitSystemMessages(messages, format)
		if systemPrompt != "" {
			request["system"] = systemPrompt
		}
		request["messages"] = chatMessages
	} else {
		request["messages"] = formatMessagesInline(messages, format)
	}

	return json.Marshal(request)
}

// splitSystemMessages separates system messages from chat messages for
// providers that carry the system prompt in a top-level field.
func splitSystemMessages(messages []domain.PromptMessage, format domain.APIFormat) (string, []map[string]interface{}) {
	var systemLines []string
	var chatMessages []map[string]interface{}

	for _, msg := range messages {
		if strings.EqualFold(msg.Role, "system") {
			systemLines = append(systemLines, msg.Content)
			continue
		}
		chatMessages = append(chatMessages, formatMessage(msg, format))
	}

	return strings.TrimSpace(strings.Join(systemLines, "\n")), chatMessages
}

func formatMessagesInline(messages []domain.PromptMessage, format domain.APIFormat) []map[string]interface{} {
	result := make([]map[string]interface{}, 0, len(messages))
	for _, msg := range messages {
		result = append(result, formatMessage(msg, format))
	}
	return result
}

func formatMessage(msg domain.PromptMessage, format domain.APIFormat) map[string]interface{} {
	message := map[string]interface{}{
		"role": strings.ToLower(msg.Role),
	}
	if format.IsContentWrapped() {
		message["content"] = []map[string]string{
			{"type": "text", "text": msg.Content},
		}
	} else {
		message["content"] = msg.Content
	}
	return message
}

// setAuthHeaders resolves the API key (explicit key first, then the model's
// auth env var) and sets the configured auth header.
func (p *httpProvider) setAuthHeaders(req *http.Request, apiKey string) error {
	if apiKey == "" {
		apiKey = os.Getenv(p.model.AuthEnvVar)
	}
	if apiKey == "" {
		return domain.NewFailure(domain.FailCredentialMissing,
			"missing API key for %s: store one with 'creds set' or set %s", p.model.Name, p.model.AuthEnvVar)
	}

	format := p.model.APIFormat
	req.Header.Set(format.GetAuthHeaderName(), format.GetAuthHeaderPrefix()+apiKey)
	return nil
}

// parseResponse extracts the generated text using the configured JSON path.
func (p *httpProvider) parseResponse(body []byte) (string, error) {
	var response map[string]interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("unmarshal JSON: %w", err)
	}

	path := p.model.APIFormat.GetResponseJSONPath()
	content, err := extractJSONPath(response, path)
	if err != nil {
		return "", fmt.Errorf("extract from path '%s': %w", path, err)
	}

	return strings.TrimSpace(content), nil
}

// extractJSONPath extracts a string value from a nested JSON structure using
// a simple path notation: "field", "field.nested", "field[0].nested".
func extractJSONPath(data map[string]interface{}, path string) (string, error) {
	parts := parseJSONPath(path)
	var current interface{} = data

	for _, part := range parts {
		switch part.kind {
		case "field":
			obj, ok := current.(map[string]interface{})
			if !ok {
				return "", fmt.Errorf("expected object at '%s'", part.value)
			}
			var found bool
			current, found = obj[part.value]
			if !found {
				return "", fmt.Errorf("field '%s' not found", part.value)
			}

		case "index":
			arr, ok := current.([]interface{})
			if !ok {
				return "", fmt.Errorf("expected array at index %s", part.value)
			}
			var idx int
			fmt.Sscanf(part.value, "%d", &idx)
			if idx < 0 || idx >= len(arr) {
				return "", fmt.Errorf("index %d out of bounds (len=%d)", idx, len(arr))
			}
			current = arr[idx]
		}
	}

	if str, ok := current.(string); ok {
		return str, nil
	}
	return "", fmt.Errorf("final value is not a string: %T", current)
}

type pathPart struct {
	kind  string // "field" or "index"
	value string
}

// parseJSONPath converts "content[0].text" into structured path parts.
func parseJSONPath(path string) []pathPart {
	var parts []pathPart
	current := ""

	for i := 0; i < len(path); i++ {
		ch := path[i]
		switch ch {
		case '.':
			if current != "" {
				parts = append(parts, pathPart{kind: "field", value: current})
				current = ""
			}
		case '[':
			if current != "" {
				parts = append(parts, pathPart{kind: "field", value: current})
				current = ""
			}
			j := i + 1
			for j < len(path) && path[j] != ']' {
				j++
			}
			if j < len(path) {
				parts = append(parts, pathPart{kind: "index", value: path[i+1 : j]})
				i = j
			}
		default:
			current += string(ch)
		}
	}

	if current != "" {
		parts = append(parts, pathPart{kind: "field", value: current})
	}
	return parts
}
