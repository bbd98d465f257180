package testkit_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/pkg/testkit"
)

var testHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/health":
		_, _ = w.Write([]byte(`{"status":200,"data":{"uptime":"1s"}}`))
	case "/echo":
		raw, _ := io.ReadAll(r.Body)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"auth": r.Header.Get("Authorization"),
			"body": json.RawMessage(raw),
		})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":404}`))
	}
})

func tokens(_ *testing.T, as string) string { return "token-for-" + as }

func TestRunDir(t *testing.T) {
	testkit.RunDir(t, testHandler, "testdata", testkit.WithTokens(tokens))
}

func TestLoadScenarioDefaults(t *testing.T) {
	s, err := testkit.LoadScenario("testdata/01_health.json")
	require.NoError(t, err)
	assert.Equal(t, "GET", s.RequestMethod)
	assert.Equal(t, testkit.MatchSubset, s.Match)
}

func TestDiffJSONSubset(t *testing.T) {
	var exp, act any
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"items":[{"name":"a"}],"total":1}}`), &exp))
	require.NoError(t, json.Unmarshal([]byte(`{"status":200,"data":{"items":[{"id":"x","name":"a"}],"total":1}}`), &act))
	assert.Empty(t, testkit.DiffJSON("", exp, act))

	require.NoError(t, json.Unmarshal([]byte(`{"data":{"items":[],"total":1}}`), &act))
	assert.NotEmpty(t, testkit.DiffJSON("", exp, act))
}

func TestRunScenarioReturnsRecorder(t *testing.T) {
	s := &testkit.Scenario{Name: "missing", RequestMethod: "GET", RequestURL: "/nope", ExpectedCode: 404, Match: testkit.MatchSubset}
	rec := testkit.RunScenario(t, testHandler, s)
	assert.JSONEq(t, `{"status":404}`, rec.Body.String())
}
