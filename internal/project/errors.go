package project

import "github.com/opshub-io/opshub/internal/apperr"

func errProjectNotFound() *apperr.Error {
	return apperr.New("ERR-PJ-001", "project not found")
}

func errProjectTransition(from, to Status) *apperr.Error {
	return apperr.New("ERR-PJ-002", "cannot move project from "+string(from)+" to "+string(to))
}

func errTaskNotFound() *apperr.Error {
	return apperr.New("ERR-PJ-003", "task not found")
}

func errTaskTransition(from, to TaskStatus) *apperr.Error {
	return apperr.New("ERR-PJ-004", "cannot move task from "+string(from)+" to "+string(to))
}

func errProjectArchived() *apperr.Error {
	return apperr.New("ERR-PJ-005", "project is archived")
}
