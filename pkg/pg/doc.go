// Package pg wires PostgreSQL connectivity for OpsHub: pool construction
// with retry, health checks for readiness probes, goose schema migrations,
// and helpers for classifying common pgx errors.
package pg
