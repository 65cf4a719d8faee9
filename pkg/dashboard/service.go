package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrymomot/detectkit/pkg/apiclient"
	"github.com/dmitrymomot/detectkit/pkg/detector"
	"github.com/dmitrymomot/detectkit/pkg/logger"
)

// Doer sends a request to the account backend. *apiclient.Client implements it.
type Doer interface {
	Do(ctx context.Context, method, endpoint string, body apiclient.Body) (json.RawMessage, error)
}

// SessionClearer drops local session state. *session.Store implements it.
type SessionClearer interface {
	SignOut(ctx context.Context) error
}

// Service calls the account endpoints.
type Service struct {
	client  Doer
	session SessionClearer
	log     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for account changes.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService returns a Service sending requests through client, which must be
// bound to the users API.
func NewService(client Doer, session SessionClearer, opts ...Option) *Service {
	s := &Service{client: client, session: session, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register signs the visitor up. A visitor that already has an account gets
// an error for which IsAlreadyRegistered is true.
func (s *Service) Register(ctx context.Context) error {
	_, err := s.client.Do(ctx, http.MethodPost, "sign_up", nil)
	return err
}

// Login establishes or refreshes the session on the backend.
func (s *Service) Login(ctx context.Context) (Login, error) {
	raw, err := s.client.Do(ctx, http.MethodGet, "login", nil)
	if err != nil {
		return Login{}, err
	}
	return Login{Token: firstString(raw, "token", "access_token"), Raw: raw}, nil
}

// DeleteAccount deletes the account and signs out locally. The request carries
// the session token; local state is cleared afterwards even when it fails.
func (s *Service) DeleteAccount(ctx context.Context) (err error) {
	defer func() {
		if signOutErr := s.session.SignOut(ctx); signOutErr != nil {
			err = errors.Join(err, signOutErr)
		}
	}()

	if _, err := s.client.Do(ctx, http.MethodDelete, "", nil); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "account deleted")
	return nil
}

// IssueAPIToken creates an API key.
func (s *Service) IssueAPIToken(ctx context.Context) (APIToken, error) {
	return s.apiToken(ctx, http.MethodPost)
}

// RotateAPIToken replaces the API key.
func (s *Service) RotateAPIToken(ctx context.Context) (APIToken, error) {
	return s.apiToken(ctx, http.MethodPatch)
}

func (s *Service) apiToken(ctx context.Context, method string) (APIToken, error) {
	raw, err := s.client.Do(ctx, method, "api_token", nil)
	if err != nil {
		return APIToken{}, err
	}
	return APIToken{Key: firstString(raw, "key", "api_token", "token"), Raw: raw}, nil
}

// ListRequests returns a page of past detections, newest first as the
// backend orders them.
func (s *Service) ListRequests(ctx context.Context, offset, limit int) ([]detector.Result, error) {
	if offset < 0 || limit <= 0 {
		return nil, ErrInvalidRange
	}
	raw, err := s.client.Do(ctx, http.MethodGet, dataEndpoint("requests", offset, limit), nil)
	if err != nil {
		return nil, err
	}

	resp, err := apiclient.Decode[struct {
		Requests struct {
			Array json.RawMessage `json:"array"`
		} `json:"requests"`
	}](raw)
	if err != nil {
		return nil, err
	}
	if len(resp.Requests.Array) == 0 || string(resp.Requests.Array) == "null" {
		return []detector.Result{}, nil
	}
	return detector.ParseResults(resp.Requests.Array)
}

// APIUsage returns the caller's API key with its limits and usage.
func (s *Service) APIUsage(ctx context.Context) (APIKey, error) {
	raw, err := s.client.Do(ctx, http.MethodGet, dataEndpoint("api", 0, 10), nil)
	if err != nil {
		return APIKey{}, err
	}

	resp, err := apiclient.Decode[struct {
		API *APIKey `json:"api"`
	}](raw)
	if err != nil {
		return APIKey{}, err
	}
	if resp.API == nil {
		return APIKey{}, ErrNoAPIKey
	}
	return *resp.API, nil
}

func dataEndpoint(filter string, offset, limit int) string {
	return apiclient.Endpoint("data", url.Values{
		"filters": {filter},
		"offset":  {strconv.Itoa(offset)},
		"limit":   {strconv.Itoa(limit)},
	})
}

// firstString returns the first non-empty string among keys of a JSON object.
func firstString(raw json.RawMessage, keys ...string) string {
	var obj map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &obj) != nil {
		return ""
	}
	for _, k := range keys {
		var s string
		if json.Unmarshal(obj[k], &s) == nil && s != "" {
			return s
		}
	}
	return ""
}
