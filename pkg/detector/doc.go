// Package detector routes detection requests to one of two backends.
//
// A visitor holding a session token is served by the authenticated backend,
// where identity travels in the bearer token. Everyone else is served by the
// anonymous fallback backend, which takes the payload plus an externally
// supplied visitor identifier. The decision is made once per call from the
// current session state and is never cached.
//
// Anonymous submissions are metered. The Router asks the quota guard first and
// fails with ErrQuotaExceeded, without any network traffic, when the guard
// refuses. A permitted call is charged immediately before dispatch, so a
// failed request still consumes quota. WithChargePolicy(ChargeOnSuccess)
// charges only after a successful response instead.
//
// Feedback follows the same split, evaluated when SubmitFeedback is called:
//
//	authenticated  PATCH <ai-generated>/reports/{id}
//	anonymous      PUT   <detector>/reports/result/{id}
//
// Transport errors are returned unchanged as *apiclient.Error values. A
// BadRequest on submission is an ordinary error.
package detector
