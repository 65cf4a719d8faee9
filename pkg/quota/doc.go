// Package quota decides whether an anonymous caller may issue another
// detection request.
//
// Authenticated callers are unmetered. Anonymous callers pass while the usage
// counter is at most the limit, so with the default limit of 5 six calls pass
// and the seventh is blocked.
//
// MayProceed only reads state. Reserve holds a slot between the check and the
// charge, so concurrent anonymous calls in one process cannot pass the limit
// together. Commit charges the slot and Cancel gives it back.
package quota
