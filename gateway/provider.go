package gateway

import (
	"net/http"
	"sync"

	"github.com/c360studio/vizjudge/evidence"
)

// Provider defines the interface for multimodal judge service backends.
type Provider interface {
	// Name returns the provider identifier (e.g., "gemini", "openai").
	Name() string

	// CheckCredential verifies the provider's credential is present.
	// It must not perform any network I/O; absence is a ConfigError.
	CheckCredential() error

	// BuildURL constructs the full API endpoint URL for the given model.
	BuildURL(baseURL, model string) string

	// SetHeaders adds provider-specific headers to the request.
	SetHeaders(req *http.Request)

	// BuildRequestBody serializes the evidence parts followed by the
	// instruction text into the provider's wire format, requesting a
	// JSON-only response mode.
	BuildRequestBody(model string, parts []evidence.Part, instructions string) ([]byte, error)

	// ParseReply extracts the raw response text and token usage from the
	// provider-specific response JSON.
	ParseReply(body []byte) (*Reply, error)
}

// providerRegistry holds registered providers.
var (
	providerRegistry = make(map[string]Provider)
	providerMu       sync.RWMutex
)

// RegisterProvider adds a provider to the registry.
func RegisterProvider(p Provider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	providerRegistry[p.Name()] = p
}

// GetProvider retrieves a provider by name.
func GetProvider(name string) Provider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return providerRegistry[name]
}

// ListProviders returns all registered provider names.
func ListProviders() []string {
	providerMu.RLock()
	defer providerMu.RUnlock()

	names := make([]string, 0, len(providerRegistry))
	for name := range providerRegistry {
		names = append(names, name)
	}
	return names
}
