package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/transcreate/internal/archive"
	"github.com/dusk-indust/transcreate/internal/graph"
	"github.com/dusk-indust/transcreate/internal/orchestrator"
	"github.com/dusk-indust/transcreate/internal/plan"
	"github.com/dusk-indust/transcreate/internal/reasoning"
)

func testGraph() *graph.Index {
	return graph.NewIndex(graph.Document{
		Nodes: []graph.Node{
			{ID: "C_USA", Label: "USA", Type: graph.TypeCountry},
			{ID: "C_JPN", Label: "Japan", Type: graph.TypeCountry},
			{ID: "F_BURGER", Label: "Burger", Type: "FOOD"},
			{ID: "F_SUSHI", Label: "Sushi", Type: "FOOD"},
		},
		Edges: []graph.Edge{
			{Source: "C_USA", Target: "F_BURGER", Relation: "has_food"},
			{Source: "C_JPN", Target: "F_SUSHI", Relation: "has_food"},
		},
	})
}

func sushiReasoner() reasoning.Reasoner {
	conf := 0.9
	return reasoning.ReasonerFunc(func(_ context.Context, prompt string) reasoning.Result {
		if strings.Contains(prompt, "'Burger'") {
			return reasoning.Decided(reasoning.Decision{
				Action: reasoning.ActionTransform, TargetObject: "Sushi", Rationale: "Better fit", Confidence: &conf,
			})
		}
		return reasoning.Decided(reasoning.Decision{Action: reasoning.ActionPreserve, Rationale: "Universal"})
	})
}

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	store := testGraph()
	engine := orchestrator.NewEngine(store, sushiReasoner())
	ts := httptest.NewServer(NewServer(store, engine, opts...).Routes())
	t.Cleanup(ts.Close)
	return ts
}

func withArchive(t *testing.T) Option {
	t.Helper()
	a, err := archive.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return WithArchive(a)
}

func get(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func post(t *testing.T, url, body string, out any) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	var body healthBody
	resp := get(t, ts.URL+"/healthz", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 4, body.Graph.NodeCount)
	assert.Equal(t, 2, body.Graph.CultureCount)
}

func TestFindNode(t *testing.T) {
	ts := newTestServer(t)

	var node graph.CulturalNode
	resp := get(t, ts.URL+"/v1/nodes?label=burger", &node)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, graph.CulturalNode{ID: "F_BURGER", Label: "Burger", Type: "FOOD", Culture: "USA"}, node)

	var e errorBody
	resp = get(t, ts.URL+"/v1/nodes?label=Pizza", &e)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, e.Error, "Pizza")

	resp = get(t, ts.URL+"/v1/nodes", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCandidates(t *testing.T) {
	ts := newTestServer(t)

	var nodes []graph.CulturalNode
	resp := get(t, ts.URL+"/v1/candidates?type=FOOD&culture=japan", &nodes)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Sushi", nodes[0].Label)
	assert.Equal(t, "Japan", nodes[0].Culture)

	var none []graph.CulturalNode
	get(t, ts.URL+"/v1/candidates?type=DRINK&culture=Japan", &none)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	resp = get(t, ts.URL+"/v1/candidates?type=FOOD", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyze(t *testing.T) {
	ts := newTestServer(t)

	var p plan.TranscreationPlan
	resp := post(t, ts.URL+"/v1/analyze", `{
		"scene_graph": {"objects": [{"id": 1, "label": "Burger"}, {"id": 2, "class_name": "Chair"}, {"id": 3}]},
		"target_culture": "Japan",
		"avoid_list": ["Pork"]
	}`, &p)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(RunIDHeader))
	assert.Equal(t, "Japan", p.TargetCulture)
	assert.Equal(t, []plan.Transformation{{
		OriginalObject: "Burger", OriginalType: "FOOD", TargetObject: "Sushi", Rationale: "Better fit", Confidence: 0.9,
	}}, p.Transformations)
	assert.Equal(t, []plan.Preservation{{OriginalObject: "Chair", Rationale: "Universal"}}, p.Preservations)
	assert.Equal(t, []string{}, p.AvoidanceAdherence)
}

func TestAnalyze_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/v1/analyze", `{"scene_graph": {"objects": []}}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts.URL+"/v1/analyze", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyze_ArchivedAndRetrievable(t *testing.T) {
	ts := newTestServer(t, withArchive(t))

	var p plan.TranscreationPlan
	resp := post(t, ts.URL+"/v1/analyze", `{"scene_graph": {"objects": [{"id": 1, "label": "Burger"}]}, "target_culture": "Japan"}`, &p)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id := resp.Header.Get(RunIDHeader)
	require.NotEmpty(t, id)

	var run archive.Run
	resp = get(t, ts.URL+"/v1/plans/"+id, &run)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "api", run.Source)
	require.NotNil(t, run.Plan)
	assert.Equal(t, p, *run.Plan)

	var runs []archive.Run
	resp = get(t, ts.URL+"/v1/plans?limit=10", &runs)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, 1, runs[0].Transformations)

	resp = get(t, ts.URL+"/v1/plans/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = get(t, ts.URL+"/v1/plans?limit=-2", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlans_NoArchive(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts.URL+"/v1/plans", nil)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestSchema(t *testing.T) {
	ts := newTestServer(t)

	var schema map[string]any
	resp := get(t, ts.URL+"/v1/schema/edit", &schema)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "replace")
	assert.Contains(t, props, "edit_text")

	resp = get(t, ts.URL+"/v1/schema/poster", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestValidate(t *testing.T) {
	ts := newTestServer(t)

	var ok ValidateResponse
	resp := post(t, ts.URL+"/v1/validate/edit", `{"preserve": ["layout"], "edit_text": [{"box_2d": [1,2,3,4], "original": "a", "translated": "b"}]}`, &ok)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, ok.Valid)
	assert.Equal(t, plan.KindEdit, ok.Kind)

	var bad ValidateResponse
	resp = post(t, ts.URL+"/v1/validate/transcreation", `{"target_culture": "Japan", "transformations": [{"confidence": 2}]}`, &bad)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.False(t, bad.Valid)
	assert.NotEmpty(t, bad.Violations)
	var paths []string
	for _, v := range bad.Violations {
		paths = append(paths, v.Path)
	}
	assert.Contains(t, paths, "transformations[0].confidence")
	assert.Contains(t, paths, "preservations")

	resp = post(t, ts.URL+"/v1/validate/edit", `[]`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, WithAllowedOrigins([]string{"http://localhost:3000"}))

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/v1/analyze", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
