package output

import "errors"

var (
	// ErrUnknownStrategy is returned when the placement strategy name is
	// not recognized at construction time.
	ErrUnknownStrategy = errors.New("unknown output strategy")

	// ErrUnknownNaming is returned when the naming convention name is not
	// recognized at construction time.
	ErrUnknownNaming = errors.New("unknown naming convention")

	// ErrMissingTemplate is returned when the custom pattern strategy is
	// selected without a path template.
	ErrMissingTemplate = errors.New("custom pattern strategy requires a path template")

	// ErrUnknownPlaceholder is returned when a path template references a
	// placeholder outside {host}, {path}, {date}, and {title}.
	ErrUnknownPlaceholder = errors.New("unknown template placeholder")

	// ErrPathEscapesRoot is returned when a computed path would resolve
	// outside the output root.
	ErrPathEscapesRoot = errors.New("computed path escapes output root")
)
