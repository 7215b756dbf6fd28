package audit

import "errors"

var (
	ErrMissingTenant   = errors.New("audit: tenant id is required")
	ErrMissingUser     = errors.New("audit: user id is required")
	ErrMissingAction   = errors.New("audit: action is required")
	ErrMissingResource = errors.New("audit: resource type is required")
)
