package wikidata

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist upstream.
	ErrNotFound = errors.New("wikidata entity not found")
	// ErrUpstream indicates the remote service was unreachable or returned
	// a malformed response after retries.
	ErrUpstream = errors.New("wikidata upstream error")
	// ErrParse indicates a failure to parse the response payload.
	ErrParse = errors.New("wikidata parse error")
)
