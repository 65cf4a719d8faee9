package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/detectkit/pkg/dashboard"
	"github.com/dmitrymomot/detectkit/pkg/logger"
	"github.com/dmitrymomot/detectkit/pkg/session"
	"github.com/dmitrymomot/detectkit/pkg/statemachine"
)

// State is a bootstrap stage.
type State string

const (
	NotOnboarded State = "not_onboarded"
	Onboarded    State = "onboarded"
	Ready        State = "ready"
)

type event string

const (
	eventRegister event = "register"
	eventLogin    event = "login"
)

type step = statemachine.Step[State, event]

// Account is the part of the account API the bootstrapper drives.
type Account interface {
	Register(ctx context.Context) error
	Login(ctx context.Context) (dashboard.Login, error)
}

// Store is the session state the bootstrapper reads and writes.
type Store interface {
	IsOnboarded(ctx context.Context) (bool, error)
	MarkOnboarded(ctx context.Context) error
	SetToken(ctx context.Context, token string) error
}

// Bootstrapper runs the register/login handshake at most once to success.
type Bootstrapper struct {
	account Account
	store   Store
	log     *slog.Logger

	mu   sync.Mutex
	done bool
}

// Option configures a Bootstrapper.
type Option func(*Bootstrapper)

// WithLogger sets the logger for state transitions.
func WithLogger(log *slog.Logger) Option {
	return func(b *Bootstrapper) {
		if log != nil {
			b.log = log
		}
	}
}

// New returns a Bootstrapper that provisions the session through account.
func New(account Account, store Store, opts ...Option) *Bootstrapper {
	b := &Bootstrapper{account: account, store: store, log: logger.Discard()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// EnsureSession performs the handshake. After it has succeeded once further
// calls return nil without contacting the backend. Concurrent callers wait
// for the call in progress.
func (b *Bootstrapper) EnsureSession(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done {
		return nil
	}

	onboarded, err := b.store.IsOnboarded(ctx)
	if err != nil {
		return err
	}
	initial := NotOnboarded
	if onboarded {
		initial = Onboarded
	}

	m := statemachine.MustNew(initial,
		statemachine.WithTransition(NotOnboarded, Onboarded, eventRegister,
			statemachine.WithAction(b.register),
		),
		statemachine.WithTransition(Onboarded, Ready, eventLogin,
			statemachine.WithAction(b.login),
		),
	)

	if m.Current() == NotOnboarded {
		if err := m.Fire(ctx, eventRegister); err != nil {
			return unwrapAction(err)
		}
	}
	if err := m.Fire(ctx, eventLogin); err != nil {
		return unwrapAction(err)
	}

	b.done = true
	b.log.InfoContext(ctx, "session ready", logger.State(string(m.Current())))
	return nil
}

// Done reports whether EnsureSession has completed.
func (b *Bootstrapper) Done() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}

func (b *Bootstrapper) register(ctx context.Context, s step) error {
	err := b.account.Register(ctx)
	switch {
	case err == nil:
		b.log.InfoContext(ctx, "registered", logger.State(string(s.To)))
	case dashboard.IsAlreadyRegistered(err):
		b.log.InfoContext(ctx, "already registered", logger.State(string(s.To)))
	default:
		b.log.ErrorContext(ctx, "registration failed", logger.Error(err))
		return errors.Join(ErrRegisterFailed, err)
	}
	return b.store.MarkOnboarded(ctx)
}

func (b *Bootstrapper) login(ctx context.Context, s step) error {
	resp, err := b.account.Login(ctx)
	if err != nil {
		b.log.ErrorContext(ctx, "login failed", logger.Error(err))
		return errors.Join(ErrLoginFailed, err)
	}
	if resp.Token == "" {
		return nil
	}
	if err := b.store.SetToken(ctx, resp.Token); err != nil && !errors.Is(err, session.ErrTokenAlreadySet) {
		return err
	}
	b.log.DebugContext(ctx, "logged in", logger.State(string(s.To)))
	return nil
}

// unwrapAction strips the state machine wrapper so callers see the action's
// own error chain.
func unwrapAction(err error) error {
	var te *statemachine.TransitionError
	if errors.As(err, &te) && te.Cause != nil {
		return te.Cause
	}
	return err
}
