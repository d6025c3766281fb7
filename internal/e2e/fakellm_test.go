//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// fixture returns the path of a file under testdata/fixtures.
func fixture(name string) string {
	return filepath.Join("..", "..", "testdata", "fixtures", name)
}

// goldenDir returns the path to the testdata/golden directory.
func goldenDir() string {
	return filepath.Join("..", "..", "testdata", "golden")
}

// fakeLLM is a chat completions endpoint that answers from a table keyed by
// the quoted object label in the prompt.
type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	fail    map[string]int // label -> status code to return
}

// decisions are the canned model replies, as raw JSON content strings.
var decisions = map[string]string{
	"Burger":            `{"action": "transform", "target_object": "Sushi", "rationale": "Sushi is the everyday shared meal in Japan.", "confidence": 0.92}`,
	"Jeans":             `{"action": "transform", "target_object": "Kimono", "rationale": "Traditional attire suits a festive outing.", "confidence": "0.7"}`,
	"Statue of Liberty": `{"action": "transform", "target_object": "Mount Fuji", "confidence": 1.4}`,
}

func (f *fakeLLM) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) != 2 {
			t.Errorf("bad chat request: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		prompt := req.Messages[1].Content

		f.mu.Lock()
		f.prompts = append(f.prompts, prompt)
		f.mu.Unlock()

		content := `{"action": "preserve", "rationale": "Universal object."}`
		for label, reply := range decisions {
			if strings.Contains(prompt, "'"+label+"'") {
				content = reply
				break
			}
		}
		for label, code := range f.fail {
			if strings.Contains(prompt, "'"+label+"'") {
				http.Error(w, "upstream unavailable", code)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	})
}

// startFakeLLM starts the endpoint and returns its base URL.
func startFakeLLM(t *testing.T, fail map[string]int) (*fakeLLM, string) {
	t.Helper()
	f := &fakeLLM{fail: fail}
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return f, srv.URL
}

// promptFor returns the recorded prompt mentioning label.
func (f *fakeLLM) promptFor(label string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.prompts {
		if strings.Contains(p, "'"+label+"'") {
			return p
		}
	}
	return ""
}
