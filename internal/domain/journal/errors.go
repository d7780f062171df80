package journal

import "errors"

// ErrInvalidInput indicates a malformed journal entry or filter.
var ErrInvalidInput = errors.New("invalid journal input")
