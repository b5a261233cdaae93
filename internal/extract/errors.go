package extract

import "errors"

var (
	// ErrUnknownMethod is returned when the extraction method name is not recognized.
	ErrUnknownMethod = errors.New("unknown extraction method")

	// ErrUnknownProfile is returned when the cleaning profile name is not recognized.
	ErrUnknownProfile = errors.New("unknown cleaning profile")

	// ErrNoContent is returned when extraction produced no usable content.
	ErrNoContent = errors.New("no content extracted")

	// ErrInvalidExpression is returned when an XPath expression does not compile.
	ErrInvalidExpression = errors.New("invalid xpath expression")
)
