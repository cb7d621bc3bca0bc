package gateway

import (
	"context"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lexlapax/go-llms/pkg/llm/domain"
	"github.com/lexlapax/go-llms/pkg/llm/provider"
)

const (
	providerOpenAI = "openai"

	// DefaultBaseURL is the public OpenAI API. The provider appends the
	// /v1/chat/completions path itself.
	DefaultBaseURL = "https://api.openai.com"

	defaultHTTPTimeout = 120 * time.Second
)

// OpenAIClient calls an OpenAI-compatible chat completions endpoint through
// the go-llms OpenAI provider. One provider is kept per model.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	http       *http.Client
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration

	mu        sync.Mutex
	providers map[string]domain.Provider
}

// ClientOption configures an OpenAIClient.
type ClientOption func(*OpenAIClient)

// WithBaseURL points the client at another OpenAI-compatible server.
func WithBaseURL(u string) ClientOption {
	return func(c *OpenAIClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets the *http.Client the provider sends requests with.
// The client is copied; a nil client keeps the default.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *OpenAIClient) {
		c.http = hc
	}
}

// WithTimeout sets the HTTP client timeout. Per-call deadlines from the
// context still apply.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *OpenAIClient) {
		c.timeout = d
	}
}

// WithMaxRetries sets how many times a rate-limited or 5xx call is repeated.
// The default is 0.
func WithMaxRetries(n int) ClientOption {
	return func(c *OpenAIClient) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff sets the delay before the first retry. Each further retry
// doubles it.
func WithBackoff(d time.Duration) ClientOption {
	return func(c *OpenAIClient) {
		c.backoff = d
	}
}

// NewOpenAIClient creates a client authenticating with apiKey.
func NewOpenAIClient(apiKey string, opts ...ClientOption) *OpenAIClient {
	c := &OpenAIClient{
		apiKey:    apiKey,
		baseURL:   DefaultBaseURL,
		backoff:   500 * time.Millisecond,
		providers: make(map[string]domain.Provider),
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := &http.Client{Timeout: defaultHTTPTimeout}
	if c.http != nil {
		copied := *c.http
		hc = &copied
	}
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.http = hc
	return c
}

// providerFor returns the provider bound to model, creating it on first use.
func (c *OpenAIClient) providerFor(model string) domain.Provider {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.providers[model]; ok {
		return p
	}
	p := provider.NewOpenAIProvider(c.apiKey, model,
		domain.NewBaseURLOption(c.baseURL),
		domain.NewHTTPClientOption(c.http),
	)
	c.providers[model] = p
	return p
}

// Complete sends req and returns the answer text. Failures are returned as
// *TransportError.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if req.MaxTokens == 0 {
		req.MaxTokens = LookupModel(req.Model).MaxTokens
	}
	for attempt := 0; ; attempt++ {
		text, err := c.once(ctx, req)
		if err == nil {
			return text, nil
		}
		te := AsTransportError(err)
		if attempt >= c.maxRetries || !te.Retryable() {
			return "", te
		}

		wait := c.backoff << attempt
		log.Printf("gateway: %s, retrying in %s (attempt %d of %d)", te.Kind, wait, attempt+1, c.maxRetries)
		select {
		case <-ctx.Done():
			return "", &TransportError{Kind: KindTimeout, Provider: providerOpenAI, Err: ctx.Err()}
		case <-time.After(wait):
		}
	}
}

func (c *OpenAIClient) once(ctx context.Context, req Request) (string, error) {
	messages := []domain.Message{
		domain.NewTextMessage(domain.RoleSystem, req.System),
		domain.NewTextMessage(domain.RoleUser, req.User),
	}

	resp, err := c.providerFor(req.Model).GenerateMessage(ctx, messages,
		domain.WithTemperature(req.Temperature),
		domain.WithMaxTokens(req.MaxTokens),
	)
	if err != nil {
		return "", c.classify(ctx, err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", &TransportError{Kind: KindUnknown, Provider: providerOpenAI, Err: errors.New("empty answer")}
	}

	log.Printf("gateway: %s: %d characters answered", req.Model, len(resp.Content))
	return resp.Content, nil
}

// statusInMessage finds the HTTP status in provider messages such as
// "openai Generate error (status 429): ...".
var statusInMessage = regexp.MustCompile(`status:? (\d{3})`)

// classify maps a provider error onto a TransportError.
func (c *OpenAIClient) classify(ctx context.Context, err error) *TransportError {
	if ctx.Err() != nil || isTimeout(err) {
		return &TransportError{Kind: KindTimeout, Provider: providerOpenAI, Err: err}
	}

	status := 0
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		status = pe.StatusCode
	}
	if status == 0 {
		if m := statusInMessage.FindStringSubmatch(err.Error()); m != nil {
			status, _ = strconv.Atoi(m[1])
		}
	}
	kind := kindForStatus(status)
	if kind == KindUnknown {
		msg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(msg, "rate limit"):
			kind = KindRateLimit
		case strings.Contains(msg, "invalid api key"), strings.Contains(msg, "authentication"):
			kind = KindAuth
		}
	}
	return &TransportError{Kind: kind, Provider: providerOpenAI, StatusCode: status, Err: err}
}

func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusTooManyRequests:
		return KindRateLimit
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindUnknown
	}
}
