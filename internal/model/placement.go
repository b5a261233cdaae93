package model

// Placement strategy names. A strategy decides the directory layout
// documents are organized under below the output root.
const (
	// StrategyFlat places every file directly under the output root.
	StrategyFlat = "flat"

	// StrategyMirror reproduces the URL's host and path as directories.
	StrategyMirror = "mirror"

	// StrategyDomainGrouped creates one directory per host.
	StrategyDomainGrouped = "domain_grouped"

	// StrategyDateOrganized creates one directory per crawl date.
	StrategyDateOrganized = "date_organized"

	// StrategyCustomPattern expands an operator-supplied template with
	// {host}, {path}, {date}, and {title} placeholders.
	StrategyCustomPattern = "custom_pattern"
)

// Naming convention names. A convention decides how filenames are derived.
const (
	// NamingURLBased derives the filename from the sanitized URL.
	NamingURLBased = "url_based"

	// NamingTitleBased derives the filename from the document title,
	// falling back to NamingURLBased when the title is empty.
	NamingTitleBased = "title_based"

	// NamingTimestamp derives the filename from the crawl time plus a
	// per-session counter.
	NamingTimestamp = "timestamp"

	// NamingHash derives the filename from a digest of the URL.
	NamingHash = "hash"
)

// Strategies lists every valid placement strategy name.
func Strategies() []string {
	return []string{
		StrategyFlat,
		StrategyMirror,
		StrategyDomainGrouped,
		StrategyDateOrganized,
		StrategyCustomPattern,
	}
}

// Namings lists every valid naming convention name.
func Namings() []string {
	return []string{NamingURLBased, NamingTitleBased, NamingTimestamp, NamingHash}
}

// ValidStrategy reports whether name is a known placement strategy.
func ValidStrategy(name string) bool {
	for _, s := range Strategies() {
		if name == s {
			return true
		}
	}
	return false
}

// ValidNaming reports whether name is a known naming convention.
func ValidNaming(name string) bool {
	for _, n := range Namings() {
		if name == n {
			return true
		}
	}
	return false
}

// Placement is the resolved destination for one document.
// For a fixed strategy, naming convention, and output root, path
// computation is deterministic; collisions are resolved with numeric
// suffixes, never by overwriting.
type Placement struct {
	// RelativePath is the destination path, extension included, below
	// the output root.
	RelativePath string `json:"relative_path"`

	// Strategy is the placement strategy that produced the path.
	Strategy string `json:"strategy"`

	// Naming is the naming convention that produced the filename.
	Naming string `json:"naming"`
}
