// Package dashboard wraps the account endpoints of the authenticated backend
// (<api>/aion/users): registration, login, account deletion, API token
// management and the request and usage listings shown on a user dashboard.
//
// All calls go through an apiclient.Client and return its errors unchanged, so
// callers can branch on apiclient.ErrBadRequest and friends. Register reports
// an existing account as ErrBadRequest; IsAlreadyRegistered names that case.
package dashboard
