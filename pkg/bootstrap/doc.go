// Package bootstrap establishes a backend session before the first
// authenticated call.
//
// The backend conflates sign-up and session establishment, so EnsureSession
// runs a small state machine driven by the onboarded flag in the session
// store:
//
//	not_onboarded --register--> onboarded --login--> ready
//
// Registration that fails with BadRequest means the visitor already has an
// account and counts as success. Any other registration error aborts before
// login and leaves the flag unset. A login error is returned while the flag
// stays set, so the next attempt goes straight to login.
//
// The login payload is not validated. When it carries a token and the store
// holds none, the token is stored.
package bootstrap
