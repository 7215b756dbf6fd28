package binder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// MaxBodySize bounds JSON request bodies at 1MB.
const MaxBodySize = 1 << 20

var (
	ErrUnsupportedMediaType = errors.New("binder: unsupported media type")
	ErrMissingContentType   = errors.New("binder: missing content type")
	ErrMalformedBody        = errors.New("binder: malformed request body")
)

// JSON returns a bind function that decodes a JSON request body into v.
//
// Decoding is strict: the content type must be application/json, unknown
// fields are rejected, trailing data after the document is rejected, and
// control characters are stripped from decoded strings.
func JSON() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			return fmt.Errorf("%w: expected application/json", ErrMissingContentType)
		}
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "application/json" {
			return fmt.Errorf("%w: got %q, expected application/json", ErrUnsupportedMediaType, contentType)
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize+1))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		if len(body) > MaxBodySize {
			return fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedBody, MaxBodySize)
		}

		dec := json.NewDecoder(strings.NewReader(scrubControlChars(string(body))))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}

		var trailing json.RawMessage
		if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: unexpected data after JSON document", ErrMalformedBody)
		}
		return nil
	}
}

// scrubControlChars drops raw control characters that have no business in a
// JSON document. Escaped sequences inside strings survive; raw ones would
// fail decoding anyway, so dropping them up front gives cleaner errors.
func scrubControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
