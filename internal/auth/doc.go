// Package auth resolves the caller's identity and enforces tenant-scoped
// role checks.
//
// An Identity is reconstructed per request from the session and the
// role-assignment store; nothing is cached across requests. HasRole is a
// pure predicate used for UI branching; RequireRole is the enforcement
// point at the start of privileged mutations. Both are convenience checks
// on top of the data store's row-level policies, which remain the actual
// trust boundary.
package auth
