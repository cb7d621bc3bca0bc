package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatHandler checks the request shape and lets fn write the reply. body is
// the decoded request; message content may be a string or a list of parts,
// so tests look at the raw bytes for prompt text.
func chatHandler(t *testing.T, fn func(w http.ResponseWriter, body map[string]any, raw []byte)) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		if !assert.NoError(t, json.Unmarshal(raw, &body)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fn(w, body, raw)
	}
}

func writeChoice(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}],"usage":{"prompt_tokens":12,"completion_tokens":34,"total_tokens":46}}`, content)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":{"message":%q,"type":"invalid_request_error"}}`, msg)
}

func maxTokens(body map[string]any) float64 {
	if v, ok := body["max_tokens"].(float64); ok {
		return v
	}
	v, _ := body["max_completion_tokens"].(float64)
	return v
}

func TestComplete_HappyPath(t *testing.T) {
	var gotAuth string
	handler := chatHandler(t, func(w http.ResponseWriter, body map[string]any, raw []byte) {
		assert.Equal(t, "gpt-4o-mini", body["model"])
		messages, ok := body["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]any)["role"])
		assert.Equal(t, "user", messages[1].(map[string]any)["role"])
		assert.Contains(t, string(raw), "system prompt text")
		assert.Contains(t, string(raw), "user prompt text")
		assert.InDelta(t, 0.3, body["temperature"], 1e-9)
		assert.Equal(t, float64(4096), maxTokens(body), "catalog budget applied")
		writeChoice(w, "Scenario 1: ok")
	})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		handler(w, r)
	}))
	defer ts.Close()

	c := NewOpenAIClient("sk-test", WithBaseURL(ts.URL+"/"))
	text, err := c.Complete(context.Background(), Request{
		System: "system prompt text", User: "user prompt text", Model: "gpt-4o-mini", Temperature: 0.3,
	})
	require.NoError(t, err)
	assert.Equal(t, "Scenario 1: ok", text)
	assert.Equal(t, "Bearer sk-test", gotAuth)
}

func TestComplete_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindAuth},
		{http.StatusTooManyRequests, KindRateLimit},
		{http.StatusBadRequest, KindUnknown},
		{http.StatusInternalServerError, KindUnknown},
		{http.StatusGatewayTimeout, KindTimeout},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			ts := httptest.NewServer(chatHandler(t, func(w http.ResponseWriter, _ map[string]any, _ []byte) {
				writeError(w, tt.status, "nope")
			}))
			defer ts.Close()

			c := NewOpenAIClient("k", WithBaseURL(ts.URL))
			_, err := c.Complete(context.Background(), Request{Model: "gpt-4o-mini"})
			require.Error(t, err)

			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.kind, te.Kind)
			assert.Equal(t, tt.status, te.StatusCode)
			assert.Equal(t, "openai", te.Provider)
		})
	}
}

func TestComplete_NoChoices(t *testing.T) {
	ts := httptest.NewServer(chatHandler(t, func(w http.ResponseWriter, _ map[string]any, _ []byte) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"chatcmpl-1","choices":[]}`)
	}))
	defer ts.Close()

	_, err := NewOpenAIClient("k", WithBaseURL(ts.URL)).Complete(context.Background(), Request{Model: "gpt-4o-mini"})
	te := AsTransportError(err)
	require.NotNil(t, te)
	assert.Equal(t, KindUnknown, te.Kind)
}

func TestComplete_ContextDeadlineIsTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(chatHandler(t, func(w http.ResponseWriter, _ map[string]any, _ []byte) {
		<-release
		writeChoice(w, "late")
	}))
	defer ts.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewOpenAIClient("k", WithBaseURL(ts.URL)).Complete(ctx, Request{Model: "gpt-4o-mini"})
	te := AsTransportError(err)
	require.NotNil(t, te)
	assert.Equal(t, KindTimeout, te.Kind)
}

func TestComplete_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(chatHandler(t, func(w http.ResponseWriter, _ map[string]any, _ []byte) {
		if calls.Add(1) < 3 {
			writeError(w, http.StatusTooManyRequests, "rate limit reached")
			return
		}
		writeChoice(w, "finally")
	}))
	defer ts.Close()

	c := NewOpenAIClient("k", WithBaseURL(ts.URL), WithMaxRetries(2), WithBackoff(time.Millisecond))
	text, err := c.Complete(context.Background(), Request{Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, "finally", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestComplete_NoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(chatHandler(t, func(w http.ResponseWriter, _ map[string]any, _ []byte) {
		calls.Add(1)
		writeError(w, http.StatusServiceUnavailable, "overloaded")
	}))
	defer ts.Close()

	_, err := NewOpenAIClient("k", WithBaseURL(ts.URL)).Complete(context.Background(), Request{Model: "gpt-4o-mini"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestComplete_AuthIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(chatHandler(t, func(w http.ResponseWriter, _ map[string]any, _ []byte) {
		calls.Add(1)
		writeError(w, http.StatusUnauthorized, "invalid api key")
	}))
	defer ts.Close()

	c := NewOpenAIClient("bad", WithBaseURL(ts.URL), WithMaxRetries(3), WithBackoff(time.Millisecond))
	_, err := c.Complete(context.Background(), Request{Model: "gpt-4o-mini"})
	assert.Equal(t, KindAuth, AsTransportError(err).Kind)
	assert.Equal(t, int32(1), calls.Load())
}

func TestComplete_UnknownModelUsesDefaultBudget(t *testing.T) {
	ts := httptest.NewServer(chatHandler(t, func(w http.ResponseWriter, body map[string]any, _ []byte) {
		assert.Equal(t, float64(DefaultMaxTokens), maxTokens(body))
		writeChoice(w, "ok")
	}))
	defer ts.Close()

	_, err := NewOpenAIClient("k", WithBaseURL(ts.URL)).Complete(context.Background(), Request{Model: "local-llama"})
	require.NoError(t, err)
}

func TestNewOpenAIClient_HTTPClientIsCopied(t *testing.T) {
	hc := &http.Client{Timeout: time.Minute}
	c := NewOpenAIClient("k", WithHTTPClient(hc), WithTimeout(5*time.Second))
	assert.Equal(t, time.Minute, hc.Timeout, "caller's client untouched")
	assert.Equal(t, 5*time.Second, c.http.Timeout)
	assert.NotSame(t, hc, c.http)

	c = NewOpenAIClient("k", WithHTTPClient(nil), WithTimeout(time.Second))
	require.NotNil(t, c.http)
	assert.Equal(t, time.Second, c.http.Timeout)

	c = NewOpenAIClient("k")
	assert.Equal(t, defaultHTTPTimeout, c.http.Timeout)
}

func TestOpenAIClient_ProviderPerModel(t *testing.T) {
	c := NewOpenAIClient("k")
	a := c.providerFor("gpt-4o-mini")
	assert.Same(t, a, c.providerFor("gpt-4o-mini"))
	assert.NotSame(t, a, c.providerFor("gpt-5-mini"))
}

func TestAsTransportError(t *testing.T) {
	assert.Nil(t, AsTransportError(nil))

	te := AsTransportError(fmt.Errorf("wrapped: %w", context.DeadlineExceeded))
	assert.Equal(t, KindTimeout, te.Kind)
	assert.True(t, errors.Is(te, context.DeadlineExceeded))

	assert.Equal(t, KindUnknown, AsTransportError(errors.New("boom")).Kind)

	orig := &TransportError{Kind: KindAuth, Provider: "openai"}
	assert.Same(t, orig, AsTransportError(fmt.Errorf("ctx: %w", orig)))
}

func TestFunc(t *testing.T) {
	var c Completer = Func(func(_ context.Context, req Request) (string, error) {
		return "echo " + req.User, nil
	})
	got, err := c.Complete(context.Background(), Request{User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "echo hi", got)
}

func TestModels(t *testing.T) {
	models := Models()
	require.Len(t, models, 4)
	assert.Equal(t, "gpt-4.1-mini", models[0].ID)
	assert.True(t, KnownModel("gpt-5-mini"))
	assert.False(t, KnownModel("nope"))
	assert.Equal(t, 8192, LookupModel("gpt-5-mini").MaxTokens)
	assert.Equal(t, DefaultMaxTokens, LookupModel("nope").MaxTokens)
}
