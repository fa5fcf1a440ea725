package wiki

import "errors"

var (
	// ErrNoResult is returned when the content API has no data for a request:
	// a missing page, an API-level error, or an empty payload.
	ErrNoResult = errors.New("no result from content API")

	// ErrInvalidLinkTarget is returned by ParseArticleHref when an anchor does
	// not point at a navigable article. Callers treat it as a silent no-op.
	ErrInvalidLinkTarget = errors.New("link target is not a navigable article")

	// ErrUnexpectedStatus is returned when the content API answers with a
	// non-200 HTTP status.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status from content API")
)
