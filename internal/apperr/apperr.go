package apperr

import (
	"errors"
	"fmt"
	"regexp"
)

// Error is a classified application failure. The code travels on the value
// itself, so no string parsing is needed anywhere a *Error is raised.
type Error struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates a classified error. The code must match the
// ERR-<DOMAIN>-<NNN> format; anything else panics to catch typos at startup
// rather than mislabel failures at runtime.
func New(code, message string) *Error {
	if !codePattern.MatchString(code) {
		panic(fmt.Sprintf("apperr: malformed error code %q", code))
	}
	return &Error{Code: code, Message: message}
}

// WithFields attaches per-field validation messages.
func (e *Error) WithFields(fields map[string][]string) *Error {
	e.Fields = fields
	return e
}

// AddField appends a message for a single field.
func (e *Error) AddField(field, message string) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
	return e
}

// Well-known codes. Domains: AUTH, VAL, WF, PJ, EXP, INV, SYS.
const (
	CodeAuthRequired = "ERR-AUTH-001"
	CodeAuthDenied   = "ERR-AUTH-003"
	CodeSystem       = "ERR-SYS-001"
)

// Unauthenticated returns the missing-session failure rendered to API
// clients; browser clients get a redirect instead.
func Unauthenticated() *Error {
	return New(CodeAuthRequired, "authentication required")
}

// Denied returns the standard authorization failure.
func Denied() *Error {
	return New(CodeAuthDenied, "you do not have permission to perform this action")
}

// Validation returns a field-level validation failure in the VAL domain.
func Validation(message string) *Error {
	return New("ERR-VAL-001", message)
}

// System returns the generic system failure with a caller-safe message.
func System() *Error {
	return New(CodeSystem, "an unexpected error occurred")
}

var (
	codePattern   = regexp.MustCompile(`^ERR-(AUTH|VAL|WF|PJ|EXP|INV|SYS)-\d{3}$`)
	prefixPattern = regexp.MustCompile(`^(ERR-(?:AUTH|VAL|WF|PJ|EXP|INV|SYS)-\d{3}):\s*(.*)$`)
)

// From normalizes any failure into a classified *Error.
//
// A *Error passes through unchanged. Errors whose message carries a legacy
// "ERR-<DOMAIN>-<NNN>: ..." prefix are converted to a typed code with the
// remainder as message. Everything else becomes the generic system error;
// the original detail is deliberately not surfaced to the caller.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	if m := prefixPattern.FindStringSubmatch(err.Error()); m != nil {
		return &Error{Code: m[1], Message: m[2]}
	}

	return System()
}

// IsClassified reports whether the failure carries an explicit code, either
// structured or as a recognized message prefix.
func IsClassified(err error) bool {
	if err == nil {
		return false
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return true
	}
	return prefixPattern.MatchString(err.Error())
}
