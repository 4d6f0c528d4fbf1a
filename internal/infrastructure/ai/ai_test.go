package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qacraft/internal/domain"
	"qacraft/internal/ports"
)

func TestGenerateOpenAIFormat(t *testing.T) {
	var captured map[string]interface{}
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []interface{}{
				map[string]interface{}{
					"message": map[string]interface{}{"content": `{"status": "ready"}`},
				},
			},
		})
	}))
	defer server.Close()

	model := domain.ModelDefinition{
		Name:      "gpt-4o",
		Provider:  "openai",
		Endpoint:  server.URL,
		ModelID:   "gpt-4o",
		MaxTokens: 4096,
	}
	provider, err := NewFactory().ForModel(model)
	require.NoError(t, err)

	resp, err := provider.Generate(context.Background(), ports.ProviderRequest{
		Messages: []domain.PromptMessage{
			{Role: "system", Content: "You are a QA engineer."},
			{Role: "user", Content: "Generate test cases."},
		},
		APIKey: "sk-test",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"status": "ready"}`, resp.Text)

	assert.Equal(t, "Bearer sk-test", authHeader)
	assert.Equal(t, "gpt-4o", captured["model"])
	messages := captured["messages"].([]interface{})
	require.Len(t, messages, 2)
	first := messages[0].(map[string]interface{})
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "You are a QA engineer.", first["content"])
}

func TestGenerateAnthropicFormat(t *testing.T) {
	var captured map[string]interface{}
	var apiKey, version string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("x-api-key")
		version = r.Header.Get("anthropic-version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []interface{}{
				map[string]interface{}{"type": "text", "text": "hello"},
			},
		})
	}))
	defer server.Close()

	model := domain.ModelDefinition{
		Name:     "claude-sonnet",
		Provider: "anthropic",
		Endpoint: server.URL,
		ModelID:  "claude-sonnet-4-20250514",
		APIFormat: domain.APIFormat{
			AuthHeaderName:    "x-api-key",
			SystemMessageMode: domain.SystemMessageModeSeparate,
			ContentWrapper:    domain.ContentWrapperAnthropic,
			ResponseJSONPath:  domain.AnthropicResponsePath,
			ExtraHeaders:      map[string]string{"anthropic-version": "2023-06-01"},
		},
	}
	provider, err := NewFactory().ForModel(model)
	require.NoError(t, err)

	resp, err := provider.Generate(context.Background(), ports.ProviderRequest{
		Messages: []domain.PromptMessage{
			{Role: "system", Content: "You are a QA engineer."},
			{Role: "user", Content: "Generate test cases."},
		},
		APIKey: "sk-ant-test",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)

	assert.Equal(t, "sk-ant-test", apiKey)
	assert.Equal(t, "2023-06-01", version)
	assert.Equal(t, "You are a QA engineer.", captured["system"])
	messages := captured["messages"].([]interface{})
	require.Len(t, messages, 1)
	content := messages[0].(map[string]interface{})["content"].([]interface{})
	block := content[0].(map[string]interface{})
	assert.Equal(t, "text", block["type"])
	assert.Equal(t, "Generate test cases.", block["text"])
}

func TestGenerateMissingKey(t *testing.T) {
	model := domain.ModelDefinition{
		Name:       "gpt-4o",
		Endpoint:   "http://127.0.0.1:1",
		AuthEnvVar: "QACRAFT_TEST_UNSET_KEY",
	}
	provider, err := NewFactory().ForModel(model)
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), ports.ProviderRequest{
		Messages: []domain.PromptMessage{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.Equal(t, domain.FailCredentialMissing, domain.AsFailure(err, domain.FailProviderCall).Kind)
}

func TestGenerateHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider, err := NewFactory().ForModel(domain.ModelDefinition{Name: "gpt-4o", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), ports.ProviderRequest{
		Messages: []domain.PromptMessage{{Role: "user", Content: "hi"}},
		APIKey:   "sk-test",
	})
	require.Error(t, err)
	assert.Equal(t, domain.FailProviderCall, domain.AsFailure(err, domain.FailProviderCall).Kind)
}

func TestExtractJSONPath(t *testing.T) {
	data := map[string]interface{}{
		"choices": []interface{}{
			map[string]interface{}{
				"message": map[string]interface{}{"content": "text here"},
			},
		},
	}

	got, err := extractJSONPath(data, "choices[0].message.content")
	require.NoError(t, err)
	assert.Equal(t, "text here", got)

	_, err = extractJSONPath(data, "choices[3].message.content")
	assert.Error(t, err)
	_, err = extractJSONPath(data, "choices[0].message.missing")
	assert.Error(t, err)
}
