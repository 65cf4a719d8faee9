package session

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrymomot/detectkit/pkg/kvstore"
	"github.com/dmitrymomot/detectkit/pkg/logger"
)

// Storage keys.
const (
	TokenKey     = "_ms-mid"
	OnboardedKey = "isSignUp"
	UsageKey     = "requestCount"
)

const onboardedValue = "true"

// Store reads and writes session state through a kvstore.Storage.
type Store struct {
	storage kvstore.Storage
	log     *slog.Logger

	// mu serializes token writes and usage increments.
	mu sync.Mutex
}

// New returns a Store over storage.
func New(storage kvstore.Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token returns the stored token. ok is false when none is stored.
func (s *Store) Token(ctx context.Context) (token string, ok bool, err error) {
	v, ok, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		return "", false, errors.Join(ErrStorage, err)
	}
	if !ok || v == "" {
		return "", false, nil
	}
	return v, true, nil
}

// TokenOrEmpty returns the stored token or "". It satisfies apiclient.TokenFunc.
func (s *Store) TokenOrEmpty(ctx context.Context) (string, error) {
	t, _, err := s.Token(ctx)
	return t, err
}

// SetToken stores token. A token is never overwritten; clear it first.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok, err := s.Token(ctx)
	if err != nil {
		return err
	}
	if ok {
		return ErrTokenAlreadySet
	}
	if err := s.storage.Set(ctx, TokenKey, token); err != nil {
		return errors.Join(ErrStorage, err)
	}
	s.log.DebugContext(ctx, "session token stored")
	return nil
}

// ClearToken removes the stored token.
func (s *Store) ClearToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, TokenKey); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

// IsOnboarded reports whether registration has completed.
func (s *Store) IsOnboarded(ctx context.Context) (bool, error) {
	v, ok, err := s.storage.Get(ctx, OnboardedKey)
	if err != nil {
		return false, errors.Join(ErrStorage, err)
	}
	return ok && v == onboardedValue, nil
}

// MarkOnboarded records that registration has completed.
func (s *Store) MarkOnboarded(ctx context.Context) error {
	if err := s.storage.Set(ctx, OnboardedKey, onboardedValue); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

// UsageCount returns the number of anonymous submissions dispatched so far.
func (s *Store) UsageCount(ctx context.Context) (int, error) {
	v, ok, err := s.storage.Get(ctx, UsageKey)
	if err != nil {
		return 0, errors.Join(ErrStorage, err)
	}
	return int(kvstore.ParseCounter(v, ok)), nil
}

// IncrementUsage adds one to the usage counter and returns the new value.
func (s *Store) IncrementUsage(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inc, ok := s.storage.(kvstore.Incrementer); ok {
		n, err := inc.Incr(ctx, UsageKey)
		if err != nil {
			return 0, errors.Join(ErrStorage, err)
		}
		return int(n), nil
	}

	n, err := s.UsageCount(ctx)
	if err != nil {
		return 0, err
	}
	n++
	if err := s.storage.Set(ctx, UsageKey, strconv.Itoa(n)); err != nil {
		return 0, errors.Join(ErrStorage, err)
	}
	return n, nil
}

// Mode reports Authenticated when a token is stored. The token is not
// validated against the backend.
func (s *Store) Mode(ctx context.Context) (Mode, error) {
	_, ok, err := s.Token(ctx)
	if err != nil {
		return Anonymous, err
	}
	if ok {
		return Authenticated, nil
	}
	return Anonymous, nil
}

// SignOut clears the token and the onboarded flag. The usage counter is kept.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, TokenKey); err != nil {
		return errors.Join(ErrStorage, err)
	}
	if err := s.storage.Delete(ctx, OnboardedKey); err != nil {
		return errors.Join(ErrStorage, err)
	}
	s.log.InfoContext(ctx, "signed out")
	return nil
}
