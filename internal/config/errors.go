package config

import "errors"

// Configuration validation errors. These are returned by Config.Validate()
// and name the specific rule that was violated, so callers can test with
// errors.Is() while users still get a readable message.
var (
	// ErrNoSeeds is returned when no seed URL is specified.
	ErrNoSeeds = errors.New("no seed URL specified: provide at least one starting URL")

	// ErrInvalidSeed is returned when a seed is not an absolute http or
	// https URL.
	ErrInvalidSeed = errors.New("invalid seed URL: must be absolute http or https")

	// ErrInvalidTimeout is returned when the per-request timeout is not
	// positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxPages is returned when the page budget is negative.
	// Use 0 for an unbounded session.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be zero or positive")

	// ErrInvalidMaxDepth is returned when the depth budget is negative.
	// Depth 0 crawls only the seeds themselves.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be zero or positive")

	// ErrInvalidConcurrency is returned when the concurrency is outside
	// the 1 to 10 range.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be between 1 and 10")

	// ErrInvalidRequestDelay is returned when the request delay is
	// outside the 100ms to 10s range.
	ErrInvalidRequestDelay = errors.New("invalid request delay: must be between 100ms and 10s")

	// ErrInvalidMaxBodySize is returned when the max body size is
	// negative. Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrUnknownStrategy is returned when the placement strategy is not
	// one of flat, mirror, domain_grouped, date_organized, or
	// custom_pattern.
	ErrUnknownStrategy = errors.New("unknown output strategy")

	// ErrUnknownNaming is returned when the naming convention is not one
	// of url_based, title_based, timestamp, or hash.
	ErrUnknownNaming = errors.New("unknown naming convention")

	// ErrMissingTemplate is returned when the custom_pattern strategy is
	// selected without a path template.
	ErrMissingTemplate = errors.New("custom_pattern strategy requires a path template")

	// ErrUnknownExtraction is returned when the extraction method is not
	// one of css, xpath, or auto.
	ErrUnknownExtraction = errors.New("unknown extraction method")

	// ErrUnknownCleaningProfile is returned when the cleaning profile is
	// not one of strict, moderate, or minimal.
	ErrUnknownCleaningProfile = errors.New("unknown cleaning profile")

	// ErrNoOutputRoot is returned when a real run has no output
	// directory configured.
	ErrNoOutputRoot = errors.New("no output directory specified")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a
	// time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
