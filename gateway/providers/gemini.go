// Package providers implements judge service provider adapters.
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

// GeminiProvider implements the Google Gemini generateContent API. Gemini is
// the primary judge backend: it accepts inline image and video parts in one
// request and supports a JSON-only response mode.
type GeminiProvider struct{}

// GeminiKeyEnv is the environment variable holding the Gemini API key.
const GeminiKeyEnv = "GEMINI_API_KEY"

func init() {
	gateway.RegisterProvider(&GeminiProvider{})
}

// Name returns the provider identifier.
func (g *GeminiProvider) Name() string {
	return "gemini"
}

// CheckCredential verifies the Gemini API key is set.
func (g *GeminiProvider) CheckCredential() error {
	if os.Getenv(GeminiKeyEnv) == "" {
		return gateway.ErrMissingCredential(GeminiKeyEnv)
	}
	return nil
}

// BuildURL constructs the generateContent endpoint for the given model.
func (g *GeminiProvider) BuildURL(baseURL, model string) string {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	return fmt.Sprintf("%s/models/%s:generateContent", baseURL, model)
}

// SetHeaders adds Gemini authentication headers.
func (g *GeminiProvider) SetHeaders(req *http.Request) {
	apiKey := os.Getenv(GeminiKeyEnv)
	if apiKey != "" {
		req.Header.Set("x-goog-api-key", apiKey)
	}
}

// geminiRequest is the generateContent request format.
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
}

// BuildRequestBody serializes the media parts followed by the instruction
// text, requesting a JSON-only response.
func (g *GeminiProvider) BuildRequestBody(model string, parts []evidence.Part, instructions string) ([]byte, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("at least one media part is required")
	}

	apiParts := make([]geminiPart, 0, len(parts)+1)
	for _, p := range parts {
		apiParts = append(apiParts, geminiPart{
			InlineData: &geminiInlineData{
				MimeType: p.MIME,
				Data:     base64.StdEncoding.EncodeToString(p.Data),
			},
		})
	}
	apiParts = append(apiParts, geminiPart{Text: instructions})

	req := geminiRequest{
		Contents: []geminiContent{{Parts: apiParts}},
		GenerationConfig: geminiGenConfig{
			Temperature:      0, // Deterministic as the judge allows
			ResponseMimeType: "application/json",
		},
	}

	return json.Marshal(req)
}

// geminiResponse is the generateContent response format.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// ParseReply extracts the response text and token usage.
func (g *GeminiProvider) ParseReply(body []byte) (*gateway.Reply, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini response contains no candidates")
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		text += part.Text
	}

	return &gateway.Reply{
		RawText: text,
		Usage: gateway.Usage{
			Prompt:     resp.UsageMetadata.PromptTokenCount,
			Candidates: resp.UsageMetadata.CandidatesTokenCount,
			Total:      resp.UsageMetadata.TotalTokenCount,
		},
	}, nil
}
