package admin

import "github.com/opshub-io/opshub/internal/apperr"

func errEmailTaken() *apperr.Error {
	return apperr.Validation("a user with this email already exists").
		AddField("email", "already registered")
}

func errUserNotFound() *apperr.Error {
	return apperr.New("ERR-VAL-003", "user not found")
}

func errAssignmentNotFound() *apperr.Error {
	return apperr.New("ERR-VAL-004", "role assignment not found")
}
