package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_OpenAIDefaults(t *testing.T) {
	r, err := New(Config{APIKey: "k"}, nil)
	require.NoError(t, err)

	c, ok := r.(*OpenAIClient)
	require.True(t, ok)
	assert.Equal(t, defaultModel, c.model)
	assert.Equal(t, defaultBaseURL, c.baseURL)
	assert.Equal(t, defaultMaxAttempts, c.maxAttempts)
	assert.Equal(t, defaultTimeout, c.http.Timeout)
	assert.Equal(t, defaultTemperature, c.temperature)
}

func TestNew_TemperatureOnTheWire(t *testing.T) {
	var sent []float64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		sent = append(sent, req.Temperature)
		fmt.Fprint(w, `{"choices": [{"message": {"content": "{\"action\": \"preserve\"}"}}]}`)
	}))
	defer ts.Close()

	zero := 0.0
	for _, cfg := range []Config{
		{BaseURL: ts.URL},
		{BaseURL: ts.URL, Temperature: &zero},
	} {
		r, err := New(cfg, nil)
		require.NoError(t, err)
		require.False(t, r.Decide(context.Background(), "Lantern?").Failed())
	}
	assert.Equal(t, []float64{0.2, 0}, sent)
}

func TestNew_Overrides(t *testing.T) {
	r, err := New(Config{
		Provider:    "OpenAI",
		Model:       "gpt-4o-mini",
		BaseURL:     "http://localhost:8080/v1/",
		Timeout:     5 * time.Second,
		MaxAttempts: 5,
		Backoff:     10 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	c := r.(*OpenAIClient)
	assert.Equal(t, "gpt-4o-mini", c.model)
	assert.Equal(t, "http://localhost:8080/v1", c.baseURL)
	assert.Equal(t, 5*time.Second, c.http.Timeout)
	assert.Equal(t, 5, c.maxAttempts)
	assert.Equal(t, 10*time.Millisecond, c.backoff)
}

func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := New(Config{Provider: "carrier-pigeon"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestReasonerFunc(t *testing.T) {
	var r Reasoner = ReasonerFunc(func(_ context.Context, prompt string) Result {
		return Decided(Decision{Action: ActionPreserve, Rationale: prompt})
	})
	assert.Equal(t, "echo", r.Decide(context.Background(), "echo").Decision.Rationale)
}

func TestServiceError_Is(t *testing.T) {
	cause := errors.New("connection refused")
	res := Unavailable(cause, 3)

	assert.ErrorIs(t, res.Err, ErrServiceUnavailable)
	assert.ErrorIs(t, res.Err, cause)
	assert.NotErrorIs(t, res.Err, ErrInvalidResponse)
	assert.Contains(t, res.Err.Error(), "after 3 attempts")

	assert.ErrorIs(t, Invalid(cause).Err, ErrInvalidResponse)
	assert.ErrorIs(t, Unexpected(cause).Err, ErrUnexpected)
	assert.Equal(t, "invalid-response", KindInvalidResponse.String())
}
