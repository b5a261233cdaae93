package pattern

import "errors"

// ErrInvalidPattern is returned when a wildcard pattern cannot be
// compiled, such as an empty or blank pattern string. Malformed input is
// rejected at compile time, never silently ignored at match time.
var ErrInvalidPattern = errors.New("invalid wildcard pattern")
