package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TokenSource turns a scenario's "as" value into a bearer token.
type TokenSource func(t *testing.T, as string) string

// Option configures a run.
type Option func(*runConfig)

type runConfig struct {
	tokens TokenSource
}

// WithTokens sets the source used for scenarios that name a caller.
func WithTokens(ts TokenSource) Option {
	return func(c *runConfig) { c.tokens = ts }
}

// Run executes a single scenario file against handler.
func Run(t *testing.T, handler http.Handler, path string, opts ...Option) {
	t.Helper()

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", path, err)
	}
	cfg := newRunConfig(opts)
	t.Run(s.Name, func(t *testing.T) {
		RunScenario(t, handler, s, cfg.options()...)
	})
}

// RunDir runs every scenario in dir as a subtest, in file-name order. Later
// scenarios observe the state left by earlier ones.
func RunDir(t *testing.T, handler http.Handler, dir string, opts ...Option) {
	t.Helper()

	scenarios, errs := LoadAllFromDir(dir)
	for _, err := range errs {
		t.Errorf("%v", err)
	}
	cfg := newRunConfig(opts)
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			RunScenario(t, handler, s, cfg.options()...)
		})
	}
}

// RunScenario fires s against handler and asserts the outcome. It returns the
// recorder so callers can pull values (ids, tokens) out of the response.
func RunScenario(t *testing.T, handler http.Handler, s *Scenario, opts ...Option) *httptest.ResponseRecorder {
	t.Helper()
	cfg := newRunConfig(opts)

	payload, err := s.Body()
	if err != nil {
		t.Fatalf("[%s] read request body: %v", s.Name, err)
	}
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	method := strings.ToUpper(s.RequestMethod)
	if method == "" {
		method = http.MethodGet
	}
	req := httptest.NewRequest(method, s.RequestURL, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if s.As != "" {
		if cfg.tokens == nil {
			t.Fatalf("[%s] scenario names caller %q but no token source is configured", s.Name, s.As)
		}
		req.Header.Set("Authorization", "Bearer "+cfg.tokens(t, s.As))
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code, rec.Body.Bytes())

	expected, err := s.Expected()
	if err != nil {
		t.Errorf("[%s] read expected body: %v", s.Name, err)
	} else if expected != nil {
		AssertJSONBody(t, s, expected, rec.Body.Bytes())
	}
	return rec
}

func newRunConfig(opts []Option) *runConfig {
	cfg := &runConfig{}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

func (c *runConfig) options() []Option {
	if c.tokens == nil {
		return nil
	}
	return []Option{WithTokens(c.tokens)}
}
