package config

// SiteConfig holds per-host overrides for crawl behavior. Keys of the
// Sites map are bare hostnames (e.g. "docs.example.com"); when a session
// seed's host has an entry, its values override the defaults for that run.
type SiteConfig struct {
	// IncludePatterns replace the default include patterns for this host.
	IncludePatterns []string `yaml:"includePatterns,omitempty"`

	// ExcludePatterns replace the default exclude patterns for this host.
	ExcludePatterns []string `yaml:"excludePatterns,omitempty"`

	// MaxDepth overrides the hop budget for this host. Zero keeps the
	// global value.
	MaxDepth int `yaml:"maxDepth,omitempty"`

	// MaxPages overrides the page budget for this host. Zero keeps the
	// global value; use -1 for an unbounded crawl of this host.
	MaxPages int `yaml:"maxPages,omitempty"`

	// RequestDelay overrides the delay between requests, in seconds.
	RequestDelay float64 `yaml:"requestDelay,omitempty"`

	// Selector overrides the CSS selector or XPath expression.
	Selector string `yaml:"selector,omitempty"`

	// CleaningProfile overrides the cleaning profile for this host.
	CleaningProfile string `yaml:"cleaningProfile,omitempty"`
}

// File represents the structure of the configuration file.
type File struct {
	// Sites maps hostnames to their host-specific configurations.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains configuration applied to every host unless
	// overridden in the host-specific entry.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host, merging
// the host's entry over the file-level defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[host]; ok {
		if len(siteConfig.IncludePatterns) > 0 {
			result.IncludePatterns = siteConfig.IncludePatterns
		}
		if len(siteConfig.ExcludePatterns) > 0 {
			result.ExcludePatterns = siteConfig.ExcludePatterns
		}
		if siteConfig.MaxDepth != 0 {
			result.MaxDepth = siteConfig.MaxDepth
		}
		if siteConfig.MaxPages != 0 {
			result.MaxPages = siteConfig.MaxPages
		}
		if siteConfig.RequestDelay != 0 {
			result.RequestDelay = siteConfig.RequestDelay
		}
		if siteConfig.Selector != "" {
			result.Selector = siteConfig.Selector
		}
		if siteConfig.CleaningProfile != "" {
			result.CleaningProfile = siteConfig.CleaningProfile
		}
	}

	return result
}
