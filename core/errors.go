package core

import "errors"

// Error taxonomy of a release-notes run. Every failure returned by the core
// packages wraps one of these, so callers can branch with errors.Is.
var (
	ErrInvalidQueryURL   = errors.New("invalid query url")
	ErrInvalidDate       = errors.New("invalid install date")
	ErrSourceUnavailable = errors.New("issue source unavailable")
	ErrSourceQuery       = errors.New("issue source query failed")
	ErrNoResults         = errors.New("query returned no tickets")
	ErrDocumentRead      = errors.New("document read failed")
	ErrDocumentWrite     = errors.New("document write failed")
	ErrRender            = errors.New("render failed")
)
