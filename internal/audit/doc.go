// Package audit records who performed which mutation, for compliance and
// traceability. Entries are append-only: created once by the Writer after a
// mutation commits, never updated or deleted here. Audit-write failures are
// logged rather than escalated, so a broken audit store never fails a
// committed business action.
package audit
