package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScriptHandler(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		header     string
		body       string
		writerErr  error
		wantStatus int
		wantBody   string
		wantCalls  []ScriptRequest
	}{
		{
			name:       "row written",
			body:       `{"rowIndex":4,"data":["bob@x.com","done"]}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true}`,
			wantCalls:  []ScriptRequest{{RowIndex: 4, Data: []string{"bob@x.com", "done"}}},
		},
		{
			name:       "writer error reported as failure",
			body:       `{"rowIndex":4,"data":["bob@x.com"]}`,
			writerErr:  fmt.Errorf("quota exceeded"),
			wantStatus: http.StatusOK,
			wantBody:   `{"success":false,"error":"quota exceeded"}`,
			wantCalls:  []ScriptRequest{{RowIndex: 4, Data: []string{"bob@x.com"}}},
		},
		{
			name:       "malformed body",
			body:       `rowIndex=4`,
			wantStatus: http.StatusOK,
			wantBody:   `{"success":false,"error":"invalid request: invalid character 'r' looking for beginning of value"}`,
		},
		{
			name:       "token required",
			token:      "s3cret",
			body:       `{"rowIndex":4,"data":["bob@x.com"]}`,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"success":false,"error":"Unauthorized"}`,
		},
		{
			name:       "token accepted",
			token:      "s3cret",
			header:     "s3cret",
			body:       `{"rowIndex":4,"data":["bob@x.com"]}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true}`,
			wantCalls:  []ScriptRequest{{RowIndex: 4, Data: []string{"bob@x.com"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := &mockRowWriter{Err: tt.writerErr}
			router := GetScriptRouter(&ScriptHandler{Writer: writer, Token: tt.token})

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.header != "" {
				req.Header.Set(ScriptTokenHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, tt.wantCalls, writer.Calls)
		})
	}
}

func TestScriptHealth(t *testing.T) {
	router := GetScriptRouter(&ScriptHandler{Writer: &mockRowWriter{}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

// The proxy and the script server agree on the wire contract and the token.
func TestProxyAgainstScriptServer(t *testing.T) {
	writer := &mockRowWriter{}
	script := httptest.NewServer(GetScriptRouter(&ScriptHandler{Writer: writer, Token: "tok"}))
	t.Cleanup(script.Close)

	proxy := &Proxy{
		Auth:        &mockAuthenticator{Identity: Identity{Email: "bob@x.com"}},
		HTTPClient:  script.Client(),
		ScriptToken: "tok",
	}
	body := fmt.Sprintf(`{"scriptUrl":%q,"rowIndex":5,"data":["bob@x.com","x"]}`, script.URL)

	result, err := proxy.Update(t.Context(), "Bearer t", []byte(body))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(result))
	assert.Equal(t, []ScriptRequest{{RowIndex: 5, Data: []string{"bob@x.com", "x"}}}, writer.Calls)
}
