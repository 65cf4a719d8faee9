package detectkit

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/detectkit/pkg/apiclient"
	"github.com/dmitrymomot/detectkit/pkg/bootstrap"
	"github.com/dmitrymomot/detectkit/pkg/dashboard"
	"github.com/dmitrymomot/detectkit/pkg/detector"
	"github.com/dmitrymomot/detectkit/pkg/file"
	"github.com/dmitrymomot/detectkit/pkg/kvstore"
	"github.com/dmitrymomot/detectkit/pkg/logger"
	"github.com/dmitrymomot/detectkit/pkg/quota"
	"github.com/dmitrymomot/detectkit/pkg/requestid"
	"github.com/dmitrymomot/detectkit/pkg/session"
	"github.com/dmitrymomot/detectkit/pkg/share"
	"github.com/dmitrymomot/detectkit/pkg/tracing"
)

// API paths relative to Config.APIURL.
const (
	UsersPath         = "/aion/users"
	AuthenticatedPath = "/aion/ai-generated"
	AnonymousPath     = "/results/api/detector"
)

// Client is the assembled detection client. Its fields are safe for
// concurrent use.
type Client struct {
	Session   *session.Store
	Quota     *quota.Guard
	Detector  *detector.Router
	Dashboard *dashboard.Service
	Bootstrap *bootstrap.Bootstrapper
	Share     *share.Linker
	Files     *file.Resolver
	Log       *slog.Logger

	healthcheck func(context.Context) error
	closers     []func(context.Context) error
}

// Option customizes New.
type Option func(*options)

type options struct {
	log        *slog.Logger
	httpClient *http.Client
	storage    kvstore.Storage
	s3         file.Source
	tracer     trace.TracerProvider
}

// WithLogger replaces the logger built from Config.Env and Config.LogLevel.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithHTTPClient sets the HTTP client shared by every backend.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithStorage uses storage instead of opening Config.Storage. The caller
// keeps ownership of it.
func WithStorage(storage kvstore.Storage) Option {
	return func(o *options) {
		o.storage = storage
	}
}

// WithS3Source uses src for s3:// references instead of building one from
// Config.S3.
func WithS3Source(src file.Source) Option {
	return func(o *options) {
		o.s3 = src
	}
}

// WithTracerProvider traces API calls with tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracer = tp
	}
}

// New opens the configured storage and builds every component over it. Close
// releases what New opened.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	log := o.log
	if log == nil {
		log = newLogger(cfg)
	}

	if strings.TrimSpace(cfg.APIURL) == "" {
		return nil, errors.Join(ErrInvalidConfig, errors.New("empty api url"))
	}

	c := &Client{Log: log, healthcheck: nopProbe}

	shutdown, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, shutdown)

	storage := o.storage
	if storage == nil {
		b, err := openStorage(ctx, cfg, log)
		if err != nil {
			return nil, c.abort(ctx, err)
		}
		storage = b.storage
		c.healthcheck = b.healthcheck
		c.closers = append(c.closers, b.close)
	}

	c.Session = session.New(storage, session.WithLogger(log.With(logger.Component("session"))))

	apiOpts := []apiclient.Option{
		apiclient.WithTimeout(cfg.HTTPTimeout),
		apiclient.WithUserAgent(cfg.UserAgent),
		apiclient.WithTokenFunc(c.Session.TokenOrEmpty),
		apiclient.WithLogger(log.With(logger.Component("apiclient"))),
	}
	if o.httpClient != nil {
		apiOpts = append(apiOpts, apiclient.WithHTTPClient(o.httpClient))
	}
	if o.tracer != nil {
		apiOpts = append(apiOpts, apiclient.WithTracerProvider(o.tracer))
	}

	base := strings.TrimRight(cfg.APIURL, "/")
	users, err := apiclient.New(base+UsersPath, apiOpts...)
	if err != nil {
		return nil, c.abort(ctx, err)
	}
	authenticated, err := apiclient.New(base+AuthenticatedPath, apiOpts...)
	if err != nil {
		return nil, c.abort(ctx, err)
	}
	anonymous, err := apiclient.New(base+AnonymousPath, apiOpts...)
	if err != nil {
		return nil, c.abort(ctx, err)
	}

	c.Quota = quota.NewGuard(c.Session, quota.WithLimit(cfg.AnonymousLimit))

	charge := detector.ChargeOnDispatch
	if cfg.ChargeOnSuccess {
		charge = detector.ChargeOnSuccess
	}
	c.Detector = detector.NewRouter(authenticated, anonymous, c.Session, c.Quota,
		detector.WithChargePolicy(charge),
		detector.WithSource(cfg.Source),
		detector.WithLogger(log.With(logger.Component("detector"))),
	)

	c.Dashboard = dashboard.NewService(users, c.Session,
		dashboard.WithLogger(log.With(logger.Component("dashboard"))),
	)
	c.Bootstrap = bootstrap.New(c.Dashboard, c.Session,
		bootstrap.WithLogger(log.With(logger.Component("bootstrap"))),
	)

	c.Share = share.New(cfg.ShareURL)
	if err := c.Share.Validate(); err != nil {
		return nil, c.abort(ctx, err)
	}

	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = file.DefaultMaxSize
	}
	resolverOpts := []file.ResolverOption{file.WithMaxSize(maxSize)}
	switch {
	case o.s3 != nil:
		resolverOpts = append(resolverOpts, file.WithS3Source(o.s3))
	case cfg.S3.Region != "":
		src, err := file.NewS3Source(ctx, cfg.S3, file.WithS3MaxSize(maxSize))
		if err != nil {
			return nil, c.abort(ctx, err)
		}
		resolverOpts = append(resolverOpts, file.WithS3Source(src))
	}
	c.Files = file.NewResolver(resolverOpts...)

	log.DebugContext(ctx, "client ready",
		slog.String("api_url", base),
		slog.String("storage", cfg.Storage),
	)
	return c, nil
}

// EnsureSession provisions the session once. See bootstrap.Bootstrapper.
func (c *Client) EnsureSession(ctx context.Context) error {
	return c.Bootstrap.EnsureSession(ctx)
}

// Healthcheck probes the storage backend.
func (c *Client) Healthcheck(ctx context.Context) error {
	return c.healthcheck(ctx)
}

// Close flushes traces and closes storage, in reverse order of opening.
func (c *Client) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Client) abort(ctx context.Context, err error) error {
	return errors.Join(err, c.Close(ctx))
}

func newLogger(cfg Config) *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, "detectkit"),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(cfg.LogLevel))
	}
	return logger.New(opts...)
}
