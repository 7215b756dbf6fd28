package action

import "github.com/opshub-io/opshub/internal/apperr"

// Result is the sole contract returned by every authorized mutation.
// Exactly one variant is populated: data on success, a classified error
// otherwise.
type Result[T any] struct {
	Success bool          `json:"success"`
	Data    T             `json:"data,omitempty"`
	Error   *apperr.Error `json:"error,omitempty"`
}

// OK wraps a handler's return value as a success result.
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail wraps a classified error as a failure result.
func Fail[T any](err *apperr.Error) Result[T] {
	return Result[T]{Success: false, Error: err}
}
