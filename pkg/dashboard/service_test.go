package dashboard_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/detectkit/pkg/apiclient"
	"github.com/dmitrymomot/detectkit/pkg/apiclient/apiclienttest"
	"github.com/dmitrymomot/detectkit/pkg/dashboard"
	"github.com/dmitrymomot/detectkit/pkg/detector"
	"github.com/dmitrymomot/detectkit/pkg/kvstore"
	"github.com/dmitrymomot/detectkit/pkg/session"
)

const base = "/aion/users"

func newService(t *testing.T) (*dashboard.Service, *apiclienttest.Server, *session.Store) {
	t.Helper()
	srv := apiclienttest.NewServer(t)
	store := session.New(kvstore.NewMemory())
	client, err := apiclient.New(srv.URL+base, apiclient.WithTokenFunc(store.TokenOrEmpty))
	require.NoError(t, err)
	return dashboard.NewService(client, store), srv, store
}

func TestService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("new account", func(t *testing.T) {
		t.Parallel()
		svc, srv, _ := newService(t)
		srv.Handle(http.MethodPost, base+"/sign_up", http.StatusOK, `{"ok":true}`)

		require.NoError(t, svc.Register(ctx))
		reqs := srv.Requests()
		require.Len(t, reqs, 1)
		assert.Empty(t, reqs[0].Body)
	})

	t.Run("already registered", func(t *testing.T) {
		t.Parallel()
		svc, srv, _ := newService(t)
		srv.Handle(http.MethodPost, base+"/sign_up", http.StatusBadRequest, `{"detail":"exists"}`)

		err := svc.Register(ctx)
		require.Error(t, err)
		assert.True(t, dashboard.IsAlreadyRegistered(err))
	})

	t.Run("server error", func(t *testing.T) {
		t.Parallel()
		svc, srv, _ := newService(t)
		srv.Handle(http.MethodPost, base+"/sign_up", http.StatusBadGateway, "")

		err := svc.Register(ctx)
		require.ErrorIs(t, err, apiclient.ErrRequestFailed)
		assert.False(t, dashboard.IsAlreadyRegistered(err))
	})
}

func TestService_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"token", `{"token":"t-1"}`, "t-1"},
		{"access token", `{"access_token":"t-2"}`, "t-2"},
		{"no token", `{"user":"u"}`, ""},
		{"not an object", `"ok"`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, srv, _ := newService(t)
			srv.Handle(http.MethodGet, base+"/login", http.StatusOK, tt.body)

			login, err := svc.Login(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, login.Token)
			assert.JSONEq(t, tt.body, string(login.Raw))
		})
	}
}

func TestService_DeleteAccount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	prepare := func(t *testing.T, store *session.Store) {
		t.Helper()
		require.NoError(t, store.SetToken(ctx, "tok"))
		require.NoError(t, store.MarkOnboarded(ctx))
	}
	assertSignedOut := func(t *testing.T, store *session.Store) {
		t.Helper()
		_, ok, err := store.Token(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		onboarded, err := store.IsOnboarded(ctx)
		require.NoError(t, err)
		assert.False(t, onboarded)
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc, srv, store := newService(t)
		prepare(t, store)
		srv.Handle(http.MethodDelete, base, http.StatusNoContent, "")

		require.NoError(t, svc.DeleteAccount(ctx))
		reqs := srv.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, http.MethodDelete, reqs[0].Method)
		assert.Equal(t, base, reqs[0].Path)
		assert.Equal(t, "Bearer tok", reqs[0].Authorization)
		assertSignedOut(t, store)
	})

	t.Run("failure still clears local state", func(t *testing.T) {
		t.Parallel()
		svc, srv, store := newService(t)
		prepare(t, store)
		srv.Handle(http.MethodDelete, base, http.StatusUnauthorized, "")

		err := svc.DeleteAccount(ctx)
		require.ErrorIs(t, err, apiclient.ErrUnauthorized)
		reqs := srv.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, "Bearer tok", reqs[0].Authorization)
		assertSignedOut(t, store)
	})
}

func TestService_APIToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, srv, _ := newService(t)
	srv.Handle(http.MethodPost, base+"/api_token", http.StatusOK, `{"key":"k-1"}`)
	srv.Handle(http.MethodPatch, base+"/api_token", http.StatusOK, `{"api_token":"k-2"}`)

	issued, err := svc.IssueAPIToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "k-1", issued.Key)

	rotated, err := svc.RotateAPIToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "k-2", rotated.Key)

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, http.MethodPatch, reqs[1].Method)
}

func TestService_ListRequests(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unwraps requests array", func(t *testing.T) {
		t.Parallel()
		svc, srv, _ := newService(t)
		srv.Handle(http.MethodGet, base+"/data", http.StatusOK,
			`{"requests":{"array":[{"id":"a","verdict":"ai","url":"https://x/a.png"},{"id":"b","verdict":"human","is_proper_predict":false}],"total":2}}`)

		got, err := svc.ListRequests(ctx, 20, 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, detector.VerdictAI, got[0].Verdict)
		assert.True(t, got[1].HasFeedback)

		q := srv.Requests()[0].Query
		assert.Equal(t, "requests", q.Get("filters"))
		assert.Equal(t, "20", q.Get("offset"))
		assert.Equal(t, "10", q.Get("limit"))
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		svc, srv, _ := newService(t)
		srv.Handle(http.MethodGet, base+"/data", http.StatusOK, `{"requests":{"array":null}}`)

		got, err := svc.ListRequests(ctx, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("invalid range", func(t *testing.T) {
		t.Parallel()
		svc, srv, _ := newService(t)

		_, err := svc.ListRequests(ctx, -1, 10)
		assert.ErrorIs(t, err, dashboard.ErrInvalidRange)
		_, err = svc.ListRequests(ctx, 0, 0)
		assert.ErrorIs(t, err, dashboard.ErrInvalidRange)
		assert.Empty(t, srv.Requests())
	})

	t.Run("errors propagate", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t)

		_, err := svc.ListRequests(ctx, 0, 10)
		assert.ErrorIs(t, err, apiclient.ErrNotFound)
	})
}

func TestService_APIUsage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unwraps api", func(t *testing.T) {
		t.Parallel()
		svc, srv, _ := newService(t)
		srv.Handle(http.MethodGet, base+"/data", http.StatusOK,
			`{"api":{"key":"k","expiration_dt":"2026-12-01T10:00:00Z","limits":{"secondly":2,"daily":200},"usage":{"daily":50}}}`)

		key, err := svc.APIUsage(ctx)
		require.NoError(t, err)
		assert.Equal(t, "k", key.Key)
		assert.Equal(t, 2, key.Limits.Secondly)
		assert.Equal(t, 200, key.Limits.Daily)
		assert.Equal(t, 50, key.Usage.Daily)
		assert.InDelta(t, 25.0, key.UsagePercent(), 0.001)

		exp, ok := key.Expires()
		require.True(t, ok)
		assert.Equal(t, time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC), exp)

		q := srv.Requests()[0].Query
		assert.Equal(t, "api", q.Get("filters"))
		assert.Equal(t, "0", q.Get("offset"))
		assert.Equal(t, "10", q.Get("limit"))
	})

	t.Run("no key", func(t *testing.T) {
		t.Parallel()
		svc, srv, _ := newService(t)
		srv.Handle(http.MethodGet, base+"/data", http.StatusOK, `{"api":null}`)

		_, err := svc.APIUsage(ctx)
		assert.ErrorIs(t, err, dashboard.ErrNoAPIKey)
	})
}

func TestAPIKey_UsagePercentZeroLimit(t *testing.T) {
	t.Parallel()
	var k dashboard.APIKey
	k.Usage.Daily = 10
	assert.Zero(t, k.UsagePercent())

	_, ok := k.Expires()
	assert.False(t, ok)
}
