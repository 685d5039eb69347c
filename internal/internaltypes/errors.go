package internaltypes

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidIndex = errors.New("invalid booking index")
)
