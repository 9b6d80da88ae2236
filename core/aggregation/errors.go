package aggregation

import "errors"

var (
	// ErrInvalidRequest is returned for paging values outside the accepted range.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrMalformedIdentity is returned when a concert key is not "artist|date".
	ErrMalformedIdentity = errors.New("invalid concert key format")
	// ErrNotFound is returned when no concert matches a key after a fresh fetch.
	ErrNotFound = errors.New("concert not found")
	// ErrInternal wraps unexpected failures inside grouping or lookup.
	ErrInternal = errors.New("internal aggregation failure")
)
