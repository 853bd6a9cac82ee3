package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"roweditor/pkg/sheets"
)

type mockAuthenticator struct {
	Identity Identity
	Err      error
	Calls    []string
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, authorization string) (Identity, error) {
	m.Calls = append(m.Calls, authorization)
	if m.Err != nil {
		return Identity{}, m.Err
	}
	return m.Identity, nil
}

type mockLoader struct {
	Table      *sheets.Table
	Err        error
	Identities []string
}

func (m *mockLoader) Load(ctx context.Context, identity string) (*sheets.Table, error) {
	m.Identities = append(m.Identities, identity)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Table, nil
}

type mockRowWriter struct {
	Err   error
	Calls []ScriptRequest
}

func (m *mockRowWriter) UpdateRow(ctx context.Context, rowIndex int, data []string) error {
	m.Calls = append(m.Calls, ScriptRequest{RowIndex: rowIndex, Data: data})
	return m.Err
}

// mockScript records every downstream call and answers with a fixed body.
type mockScript struct {
	mu      sync.Mutex
	Body    string
	Status  int
	Calls   []ScriptRequest
	Headers []http.Header
}

func (m *mockScript) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var req ScriptRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	m.Calls = append(m.Calls, req)
	m.Headers = append(m.Headers, r.Header.Clone())
	status := m.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(m.Body))
}

func newMockScript(t *testing.T, body string) (*mockScript, *httptest.Server) {
	t.Helper()
	script := &mockScript{Body: body}
	srv := httptest.NewServer(script)
	t.Cleanup(srv.Close)
	return script, srv
}

func newCSVHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(body))
	})
}
