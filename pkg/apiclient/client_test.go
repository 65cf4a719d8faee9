package apiclient_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/detectkit/pkg/apiclient"
	"github.com/dmitrymomot/detectkit/pkg/logger"
	"github.com/dmitrymomot/detectkit/pkg/requestid"
)

func staticToken(token string) apiclient.TokenFunc {
	return func(context.Context) (string, error) { return token, nil }
}

func TestNew_InvalidBaseURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "ftp://example.com", "://bad", "https://"} {
		_, err := apiclient.New(raw)
		assert.ErrorIs(t, err, apiclient.ErrInvalidBaseURL, raw)
	}
}

func TestClient_URL(t *testing.T) {
	t.Parallel()

	c, err := apiclient.New("https://api.example.com/aion/users/")
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/aion/users", c.BaseURL())
	assert.Equal(t, "https://api.example.com/aion/users", c.URL(""))
	assert.Equal(t, "https://api.example.com/aion/users/login", c.URL("login"))
	assert.Equal(t, "https://api.example.com/aion/users/sign_up", c.URL("/sign_up"))
}

func TestEndpoint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "reports/json", apiclient.Endpoint("reports/json", nil))
	got := apiclient.Endpoint("reports/json", url.Values{"user_id": {"v 1"}, "source": {"web"}})
	assert.Equal(t, "reports/json?source=web&user_id=v+1", got)
}

func TestClient_Do_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/aion/users/sign_up", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "detectkit/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "req-42", r.Header.Get(requestid.Header))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"value"}`, string(body))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c, err := apiclient.New(server.URL+"/aion/users", apiclient.WithTokenFunc(staticToken("tok-1")))
	require.NoError(t, err)

	ctx := requestid.WithContext(context.Background(), "req-42")
	raw, err := c.Do(ctx, http.MethodPost, "sign_up", apiclient.JSON(map[string]string{"name": "value"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestClient_Do_EmptyBearerWithoutToken(t *testing.T) {
	t.Parallel()

	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c, err := apiclient.New(server.URL)
	require.NoError(t, err)

	raw, err := c.Do(context.Background(), http.MethodDelete, "", nil)
	require.NoError(t, err)
	assert.Nil(t, raw)
	assert.Equal(t, "Bearer", strings.TrimSpace(auth))
}

func TestClient_Do_TokenReadPerRequest(t *testing.T) {
	t.Parallel()

	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, strings.TrimSpace(r.Header.Get("Authorization")))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	token := ""
	c, err := apiclient.New(server.URL, apiclient.WithTokenFunc(func(context.Context) (string, error) {
		return token, nil
	}))
	require.NoError(t, err)

	_, err = c.Do(context.Background(), http.MethodGet, "login", nil)
	require.NoError(t, err)
	token = "fresh"
	_, err = c.Do(context.Background(), http.MethodGet, "login", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer", "Bearer fresh"}, seen)
}

func TestClient_Do_TokenError(t *testing.T) {
	t.Parallel()

	c, err := apiclient.New("http://127.0.0.1:1", apiclient.WithTokenFunc(func(context.Context) (string, error) {
		return "", errors.New("storage down")
	}))
	require.NoError(t, err)

	_, err = c.Do(context.Background(), http.MethodGet, "login", nil)
	assert.ErrorIs(t, err, apiclient.ErrTokenUnavailable)
	assert.ErrorIs(t, err, apiclient.ErrRequestFailed)
}

func TestClient_Do_Multipart(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		f, fh, err := r.FormFile("binary")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "uploaded-file.png", fh.Filename)

		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), data)

		_, _ = w.Write([]byte(`{"id":"r1"}`))
	}))
	defer server.Close()

	c, err := apiclient.New(server.URL)
	require.NoError(t, err)

	raw, err := c.Do(context.Background(), http.MethodPost, "reports/binary",
		apiclient.Multipart("binary", "uploaded-file.png", []byte("png-bytes")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"r1"}`, string(raw))
}

func TestClient_Do_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		class    apiclient.StatusClass
		sentinel error
		payload  any
	}{
		{"bad request with json", 400, `{"detail":"already registered"}`, apiclient.ClassBadRequest, apiclient.ErrBadRequest, map[string]any{"detail": "already registered"}},
		{"bad request with text", 400, `nope`, apiclient.ClassBadRequest, apiclient.ErrBadRequest, "nope"},
		{"bad request without body", 400, ``, apiclient.ClassBadRequest, apiclient.ErrBadRequest, nil},
		{"unauthorized", 401, `{"detail":"x"}`, apiclient.ClassUnauthorized, apiclient.ErrUnauthorized, nil},
		{"not found", 404, `{"detail":"x"}`, apiclient.ClassNotFound, apiclient.ErrNotFound, nil},
		{"forbidden", 403, `{"detail":"forbidden"}`, apiclient.ClassOther, apiclient.ErrRequestFailed, map[string]any{"detail": "forbidden"}},
		{"server error", 500, ``, apiclient.ClassOther, apiclient.ErrRequestFailed, nil},
		{"redirect status", 304, ``, apiclient.ClassOther, apiclient.ErrRequestFailed, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, err := apiclient.New(server.URL)
			require.NoError(t, err)

			raw, err := c.Do(context.Background(), http.MethodGet, "login", nil)
			require.Error(t, err)
			assert.Nil(t, raw)
			assert.ErrorIs(t, err, tt.sentinel)

			var apiErr *apiclient.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.class, apiErr.Class)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.payload, apiErr.Payload)
			assert.Equal(t, http.MethodGet, apiErr.Method)
			assert.Equal(t, "login", apiErr.Endpoint)

			class, ok := apiclient.ClassOf(err)
			assert.True(t, ok)
			assert.Equal(t, tt.class, class)
		})
	}
}

func TestClient_Do_InvalidJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer server.Close()

	c, err := apiclient.New(server.URL)
	require.NoError(t, err)

	_, err = c.Do(context.Background(), http.MethodGet, "login", nil)
	assert.ErrorIs(t, err, apiclient.ErrInvalidResponse)
	assert.ErrorIs(t, err, apiclient.ErrRequestFailed)
}

func TestClient_Do_NetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	buf := &bytes.Buffer{}
	c, err := apiclient.New(addr, apiclient.WithLogger(logger.New(logger.WithOutput(buf))))
	require.NoError(t, err)

	_, err = c.Do(context.Background(), http.MethodGet, "login", nil)
	require.Error(t, err)

	class, ok := apiclient.ClassOf(err)
	assert.True(t, ok)
	assert.Equal(t, apiclient.ClassOther, class)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "api request failed", entry["msg"])
	assert.Equal(t, "login", entry["endpoint"])
	assert.Equal(t, slog.LevelError.String(), entry["level"])
}

func TestClient_Do_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c, err := apiclient.New(server.URL, apiclient.WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = c.Do(context.Background(), http.MethodGet, "login", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Do_NoRetry(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, err := apiclient.New(server.URL)
	require.NoError(t, err)

	_, err = c.Do(context.Background(), http.MethodGet, "login", nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	type payload struct {
		ID string `json:"id"`
	}

	v, err := apiclient.Decode[payload](json.RawMessage(`{"id":"r1"}`))
	require.NoError(t, err)
	assert.Equal(t, "r1", v.ID)

	_, err = apiclient.Decode[payload](nil)
	assert.ErrorIs(t, err, apiclient.ErrEmptyResponse)

	_, err = apiclient.Decode[payload](json.RawMessage(`[1,2]`))
	assert.ErrorIs(t, err, apiclient.ErrInvalidResponse)
}

func TestError_Message(t *testing.T) {
	t.Parallel()

	err := &apiclient.Error{
		Class:      apiclient.ClassBadRequest,
		StatusCode: 400,
		Method:     http.MethodPost,
		Endpoint:   "sign_up",
		Payload:    "exists",
	}
	assert.Equal(t, "POST sign_up: bad request (status 400): exists", err.Error())

	err = &apiclient.Error{Class: apiclient.ClassOther, Cause: apiclient.ErrEmptyResponse}
	assert.Equal(t, "request failed: apiclient.empty_response", err.Error())
}
