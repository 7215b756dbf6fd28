// Package logger builds configured slog.Logger instances for OpsHub services.
//
// Output is one JSON object per line in production (text in development),
// gated by a minimum level fixed at construction time. Context extractors
// registered via WithContextExtractors inject request-scoped attributes
// (tenant, user, request id) into every emitted record.
package logger
