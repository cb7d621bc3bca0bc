//go:build e2e

package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dusk-indust/scenariogen/internal/gateway"
	"github.com/dusk-indust/scenariogen/internal/persona"
	"github.com/stretchr/testify/require"
)

// fixturesDir returns the path to the testdata/fixtures directory.
func fixturesDir() string {
	return filepath.Join("..", "..", "testdata", "fixtures")
}

func readStory(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(fixturesDir(), "story_cart.txt"))
	require.NoError(t, err)
	return string(data)
}

// fakeProvider is an OpenAI-compatible chat completions server that answers
// each persona with its fixture file.
type fakeProvider struct {
	server *httptest.Server

	mu     sync.Mutex
	calls  map[string]int
	status map[string]int // forced HTTP status per persona id
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	fp := &fakeProvider{calls: map[string]int{}, status: map[string]int{}}

	names := map[string]string{}
	for _, p := range persona.Default().Specs() {
		names[p.Name] = p.ID
	}

	fp.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") || r.Header.Get("Authorization") != "Bearer test-key" {
			http.Error(w, `{"error":{"message":"unexpected request"}}`, http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var id string
		for name, pid := range names {
			if strings.Contains(string(body), "as the "+name+".") {
				id = pid
			}
		}

		fp.mu.Lock()
		fp.calls[id]++
		status := fp.status[id]
		fp.mu.Unlock()

		if status != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"forced failure"}}`))
			return
		}

		answer, err := os.ReadFile(filepath.Join(fixturesDir(), "answers", id+".txt"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": string(answer)},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(fp.server.Close)
	return fp
}

func (fp *fakeProvider) fail(personaID string, status int) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.status[personaID] = status
}

func (fp *fakeProvider) callCount(personaID string) int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.calls[personaID]
}

func (fp *fakeProvider) client() *gateway.OpenAIClient {
	return gateway.NewOpenAIClient("test-key", gateway.WithBaseURL(fp.server.URL))
}
