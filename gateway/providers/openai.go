package providers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/c360studio/vizjudge/evidence"
	"github.com/c360studio/vizjudge/gateway"
)

// OpenAIProvider implements the OpenAI chat completions API as an alternate
// judge backend. Image evidence is submitted as data-URL image parts; video
// evidence is not supported by this API and is rejected at build time.
type OpenAIProvider struct{}

// OpenAIKeyEnv is the environment variable holding the OpenAI API key.
const OpenAIKeyEnv = "OPENAI_API_KEY"

func init() {
	gateway.RegisterProvider(&OpenAIProvider{})
}

// Name returns the provider identifier.
func (o *OpenAIProvider) Name() string {
	return "openai"
}

// CheckCredential verifies the OpenAI API key is set.
func (o *OpenAIProvider) CheckCredential() error {
	if os.Getenv(OpenAIKeyEnv) == "" {
		return gateway.ErrMissingCredential(OpenAIKeyEnv)
	}
	return nil
}

// BuildURL constructs the chat completions endpoint.
func (o *OpenAIProvider) BuildURL(baseURL, _ string) string {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	if strings.HasSuffix(baseURL, "/chat/completions") {
		return baseURL
	}

	return baseURL + "/chat/completions"
}

// SetHeaders adds OpenAI authentication headers.
func (o *OpenAIProvider) SetHeaders(req *http.Request) {
	apiKey := os.Getenv(OpenAIKeyEnv)
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
}

// openaiRequest is the chat completions request format.
type openaiRequest struct {
	Model          string               `json:"model"`
	Messages       []openaiMessage      `json:"messages"`
	Temperature    float64              `json:"temperature"`
	ResponseFormat openaiResponseFormat `json:"response_format"`
}

type openaiMessage struct {
	Role    string              `json:"role"`
	Content []openaiContentPart `json:"content"`
}

type openaiContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openaiImageURL `json:"image_url,omitempty"`
}

type openaiImageURL struct {
	URL string `json:"url"`
}

type openaiResponseFormat struct {
	Type string `json:"type"`
}

// BuildRequestBody serializes image parts as data URLs followed by the
// instruction text, requesting JSON-object output.
func (o *OpenAIProvider) BuildRequestBody(model string, parts []evidence.Part, instructions string) ([]byte, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("at least one media part is required")
	}

	content := make([]openaiContentPart, 0, len(parts)+1)
	for _, p := range parts {
		if !strings.HasPrefix(p.MIME, "image/") {
			return nil, fmt.Errorf("openai judge backend supports image evidence only, got %s", p.MIME)
		}
		dataURL := fmt.Sprintf("data:%s;base64,%s", p.MIME, base64.StdEncoding.EncodeToString(p.Data))
		content = append(content, openaiContentPart{
			Type:     "image_url",
			ImageURL: &openaiImageURL{URL: dataURL},
		})
	}
	content = append(content, openaiContentPart{Type: "text", Text: instructions})

	req := openaiRequest{
		Model:          model,
		Messages:       []openaiMessage{{Role: "user", Content: content}},
		Temperature:    0,
		ResponseFormat: openaiResponseFormat{Type: "json_object"},
	}

	return json.Marshal(req)
}

// openaiResponse is the chat completions response format.
type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// ParseReply extracts the response text and token usage.
func (o *OpenAIProvider) ParseReply(body []byte) (*gateway.Reply, error) {
	var resp openaiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse openai response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai response contains no choices")
	}

	return &gateway.Reply{
		RawText: resp.Choices[0].Message.Content,
		Usage: gateway.Usage{
			Prompt:     resp.Usage.PromptTokens,
			Candidates: resp.Usage.CompletionTokens,
			Total:      resp.Usage.TotalTokens,
		},
	}, nil
}
