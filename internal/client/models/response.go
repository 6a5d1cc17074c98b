package models

// DataResponse is the structured outcome of an auth operation: a success
// flag plus the server's human-readable message, if any. Sign-in with a
// valid-but-unconsented account (HTTP 412) reports Success=true.
type DataResponse struct {
	Success bool
	Message string
}

// ScopeApplied tells a caller of SetSharingScope how far the change got.
type ScopeApplied int

const (
	// ScopeAppliedRemotely means the server accepted the new scope and the
	// local session was updated.
	ScopeAppliedRemotely ScopeApplied = iota
	// ScopeAppliedLocalPending means the remote call failed; local state is
	// unchanged and the update must be re-attempted later.
	ScopeAppliedLocalPending
)

// ScopeUpdate is the best-effort result of a sharing-scope change.
type ScopeUpdate struct {
	Applied ScopeApplied
	Scope   SharingScope
}
