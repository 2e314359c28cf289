package apperr

import "errors"

var (
	ErrUnknownAccount  = errors.New("unknown account")
	ErrUnknownFormat   = errors.New("unknown format")
	ErrNoImporter      = errors.New("no importer for account type")
	ErrUnknownCategory = errors.New("unknown category")
	ErrNotFound        = errors.New("not found")
)
