package redis

import "errors"

var (
	// ErrFailedToParseRedisConnString indicates the connection URL is invalid.
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")

	// ErrRedisNotReady indicates the server did not become reachable within the retry budget.
	ErrRedisNotReady = errors.New("redis server is not ready")

	// ErrHealthcheckFailed indicates the connection is not available.
	ErrHealthcheckFailed = errors.New("redis healthcheck failed")
)
