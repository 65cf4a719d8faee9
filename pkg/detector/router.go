package detector

import (
	"cmp"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/detectkit/pkg/apiclient"
	"github.com/dmitrymomot/detectkit/pkg/logger"
	"github.com/dmitrymomot/detectkit/pkg/quota"
	"github.com/dmitrymomot/detectkit/pkg/session"
)

// State resolves the session mode of a call.
type State interface {
	Mode(ctx context.Context) (session.Mode, error)
}

// Quota reserves and charges anonymous call slots. *quota.Guard implements it.
type Quota interface {
	Reserve(ctx context.Context) (*quota.Reservation, bool, error)
}

// Doer sends a request to one backend. *apiclient.Client implements it.
type Doer interface {
	Do(ctx context.Context, method, endpoint string, body apiclient.Body) (json.RawMessage, error)
}

// Router dispatches detection and feedback calls. It is safe for concurrent use.
type Router struct {
	authenticated Doer // base: <api>/aion/ai-generated
	anonymous     Doer // base: <api>/results/api/detector
	state         State
	quota         Quota
	charge        ChargePolicy
	source        string
	log           *slog.Logger
}

// NewRouter returns a Router. authenticated serves calls that carry a session
// token, anonymous serves the rest under quota.
func NewRouter(authenticated, anonymous Doer, state State, quota Quota, opts ...Option) *Router {
	r := &Router{
		authenticated: authenticated,
		anonymous:     anonymous,
		state:         state,
		quota:         quota,
		charge:        ChargeOnDispatch,
		source:        "web",
		log:           logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SubmitByURL detects the image at imageURL.
func (r *Router) SubmitByURL(ctx context.Context, imageURL, visitorID string) (Result, error) {
	return r.Submit(ctx, URLRequest(imageURL), visitorID)
}

// SubmitByBinary detects an uploaded image. An empty filename selects the
// backend's default.
func (r *Router) SubmitByBinary(ctx context.Context, data []byte, filename, visitorID string) (Result, error) {
	return r.Submit(ctx, BinaryRequest(data, filename), visitorID)
}

// Submit routes req by the current session mode. visitorID is used only on the
// anonymous path, where it is required.
func (r *Router) Submit(ctx context.Context, req Request, visitorID string) (Result, error) {
	if err := req.validate(); err != nil {
		return Result{}, err
	}

	mode, err := r.state.Mode(ctx)
	if err != nil {
		return Result{}, err
	}

	r.log.DebugContext(ctx, "routing detection request",
		logger.Mode(mode.String()),
		logger.VisitorID(visitorID),
		slog.String("kind", req.Kind.String()),
	)

	var raw json.RawMessage
	if mode == session.Authenticated {
		raw, err = r.submitAuthenticated(ctx, req)
	} else {
		raw, err = r.submitAnonymous(ctx, req, visitorID)
	}
	if err != nil {
		return Result{}, err
	}
	return ParseResult(raw)
}

func (r *Router) submitAuthenticated(ctx context.Context, req Request) (json.RawMessage, error) {
	if req.Kind == KindURL {
		endpoint := apiclient.Endpoint("reports/url", url.Values{"url": {req.URL}})
		return r.authenticated.Do(ctx, http.MethodPost, endpoint, apiclient.JSON(struct{}{}))
	}
	filename := cmp.Or(req.Filename, DefaultAuthenticatedFilename)
	return r.authenticated.Do(ctx, http.MethodPost, "reports/binary", apiclient.Multipart("binary", filename, req.Data))
}

func (r *Router) submitAnonymous(ctx context.Context, req Request, visitorID string) (json.RawMessage, error) {
	if strings.TrimSpace(visitorID) == "" {
		return nil, ErrVisitorIDRequired
	}

	slot, ok, err := r.quota.Reserve(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		r.log.InfoContext(ctx, "anonymous quota exceeded", logger.VisitorID(visitorID))
		return nil, ErrQuotaExceeded
	}
	defer slot.Cancel()

	if r.charge == ChargeOnDispatch {
		if err := r.chargeUsage(ctx, slot); err != nil {
			return nil, err
		}
	}

	query := url.Values{"source": {r.source}, "user_id": {visitorID}}
	var raw json.RawMessage
	if req.Kind == KindURL {
		body := apiclient.JSON(map[string]string{"object": req.URL})
		raw, err = r.anonymous.Do(ctx, http.MethodPost, apiclient.Endpoint("reports/json", query), body)
	} else {
		filename := cmp.Or(req.Filename, DefaultAnonymousFilename)
		body := apiclient.Multipart("binary", filename, req.Data)
		raw, err = r.anonymous.Do(ctx, http.MethodPost, apiclient.Endpoint("reports/raw", query), body)
	}
	if err != nil {
		return nil, err
	}

	if r.charge == ChargeOnSuccess {
		if err := r.chargeUsage(ctx, slot); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func (r *Router) chargeUsage(ctx context.Context, slot *quota.Reservation) error {
	n, err := slot.Commit(ctx)
	if err != nil {
		return err
	}
	r.log.DebugContext(ctx, "anonymous usage charged", logger.Usage(n))
	return nil
}

// SubmitFeedback sends a verdict correction for resultID. Identical calls are
// sent again each time.
func (r *Router) SubmitFeedback(ctx context.Context, resultID string, isCorrect bool, comment string) error {
	return r.Feedback(ctx, Feedback{ResultID: resultID, IsCorrect: isCorrect, Comment: comment})
}

// Feedback is SubmitFeedback taking a Feedback value.
func (r *Router) Feedback(ctx context.Context, fb Feedback) error {
	id := strings.TrimSpace(fb.ResultID)
	if id == "" {
		return ErrEmptyResultID
	}

	mode, err := r.state.Mode(ctx)
	if err != nil {
		return err
	}

	body := apiclient.JSON(feedbackBody{IsProperPredict: fb.IsCorrect, Comment: fb.Comment})
	id = url.PathEscape(id)

	if mode == session.Authenticated {
		_, err = r.authenticated.Do(ctx, http.MethodPatch, "reports/"+id, body)
	} else {
		_, err = r.anonymous.Do(ctx, http.MethodPut, "reports/result/"+id, body)
	}
	if err != nil {
		return err
	}

	r.log.DebugContext(ctx, "feedback submitted",
		logger.Mode(mode.String()),
		logger.ResultID(fb.ResultID),
	)
	return nil
}
