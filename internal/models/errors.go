package models

import "errors"

var (
	ErrInvalidReport = errors.New("invalid report")
	ErrNotFound      = errors.New("incident not found")
	ErrInvalidStatus = errors.New("invalid status transition")
)
