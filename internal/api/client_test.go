package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Veraticus/kitty/internal/common"
	"github.com/Veraticus/kitty/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct {
	err   error
	token string
}

func (s staticTokens) Token(context.Context) (string, error) {
	return s.token, s.err
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		config  Config
	}{
		{name: "valid config", config: Config{BaseURL: "https://api.example.com"}},
		{name: "missing base URL", config: Config{}, wantErr: common.ErrMissingConfig},
		{name: "non-http base URL", config: Config{BaseURL: "ftp://example.com"}, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config, nil, nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestClient_Do(t *testing.T) {
	var gotAuth, gotRequestID, gotContentType, gotPath, gotQuery string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotContentType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		if r.Body != nil {
			data, _ := io.ReadAll(r.Body)
			if len(data) > 0 {
				_ = json.Unmarshal(data, &gotBody)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"ok":1}}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL + "/api/"}, staticTokens{token: "tok-123"}, nil)
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), http.MethodPost, "/groups/7/loan-requests?status=pending", map[string]string{"purpose": "school fees"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"success":true,"data":{"ok":1}}`, string(resp.Body))
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "/api/groups/7/loan-requests", gotPath)
	assert.Equal(t, "status=pending", gotQuery)
	assert.Equal(t, "school fees", gotBody["purpose"])
}

func TestClient_Do_ReturnsErrorBodies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"success":false,"message":"email already registered"}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL}, nil, nil)
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), http.MethodPost, "/auth/register", map[string]string{"email": "a@b.c"})
	require.NoError(t, err, "a received 4xx is not a transport error")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
	assert.Equal(t, "email already registered", Message(resp))
}

func TestClient_Do_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewClient(Config{BaseURL: url, Timeout: time.Second}, nil, nil)
	require.NoError(t, err)

	_, err = client.Do(context.Background(), http.MethodGet, "/groups", nil)
	require.ErrorIs(t, err, common.ErrNetworkFailure)

	var netErr *common.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "/groups", netErr.Path)
}

func TestClient_Do_TokenStoreFailure(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL}, staticTokens{err: errors.New("no session")}, nil)
	require.NoError(t, err)

	_, err = client.Do(context.Background(), http.MethodGet, "/users/profile", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrNetworkFailure, "a missing session is not a network failure")
	assert.Contains(t, err.Error(), "no session")
	assert.False(t, called, "request must not be sent without a token")
}

type ctxTokens struct {
	seen context.Context
}

func (c *ctxTokens) Token(ctx context.Context) (string, error) {
	c.seen = ctx
	return "tok", ctx.Err()
}

func TestClient_Do_ReadsTokenWithRequestContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tokens := &ctxTokens{}
	client, err := NewClient(Config{BaseURL: server.URL}, tokens, nil)
	require.NoError(t, err)

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "request")
	_, err = client.Do(ctx, http.MethodGet, "/users/profile", nil)
	require.NoError(t, err)
	require.NotNil(t, tokens.seen)
	assert.Equal(t, "request", tokens.seen.Value(key{}))
}

func TestCheckResponse(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
		status      int
		wantErr     bool
	}{
		{name: "2xx with envelope", status: 200, body: `{"success":true,"data":[]}`},
		{name: "2xx bare array", status: 200, body: `[1,2,3]`},
		{name: "2xx success false", status: 200, body: `{"success":false,"message":"not a member"}`, wantErr: true, wantMessage: "not a member"},
		{name: "404 without body", status: 404, body: ``, wantErr: true, wantMessage: "Not Found"},
		{name: "500 with error field", status: 500, body: `{"error":"db down"}`, wantErr: true, wantMessage: "db down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckResponse(http.MethodGet, "/x", &service.Response{Status: tt.status, Body: []byte(tt.body)})
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var httpErr *common.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.Status)
			assert.Equal(t, tt.wantMessage, httpErr.Message)
		})
	}
}
