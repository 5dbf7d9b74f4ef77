package apperrors

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrNoActiveProfile     = errors.New("no active assessment profile")
	ErrScholarshipClosed   = errors.New("scholarship is closed")
	ErrScholarshipFull     = errors.New("scholarship has no remaining slots")
	ErrAlreadyApplied      = errors.New("student already applied to this scholarship")
	ErrInvalidStatusChange = errors.New("invalid status transition")
	ErrForbidden           = errors.New("forbidden")
)
