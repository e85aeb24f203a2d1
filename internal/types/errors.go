package types

import "errors"

// Domain specific errors for the search pipeline.
var (
	ErrNotFound        = errors.New("location not found")
	ErrInvalidRadius   = errors.New("search radius must be positive")
	ErrEmptyKeywordSet = errors.New("keyword set is empty and unfiltered mode not requested")
	ErrBadRequest      = errors.New("bad request")
)
