package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/devoperand/crawl4ai-scraper/internal/model"
)

const docsPage = `<!DOCTYPE html>
<html>
<head>
<title>Installation Guide</title>
<meta name="description" content="How to install the toolkit.">
<meta property="og:title" content="Install (OG)">
</head>
<body>
<nav><a href="/docs/">Docs Home</a> | <a href="/blog/">Blog</a></nav>
<article>
<h1>Installation</h1>
<p>Download the release archive and unpack it into a directory on your PATH.
The archive ships a single static binary, so no further dependencies are
required on any supported platform.</p>
<p>Verify the installation by running the version command. If the binary
prints a version string, the installation succeeded and you can continue
with the <a href="/docs/quickstart">quickstart</a>.</p>
</article>
<footer>Copyright Example Corp</footer>
</body>
</html>`

// TestNew tests Extractor construction and name validation.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid methods and profiles", func(t *testing.T) {
		t.Parallel()

		for _, method := range []string{model.MethodCSS, model.MethodXPath, model.MethodAuto} {
			if _, err := New(method, "", model.ProfileModerate); err != nil {
				t.Errorf("New(%q) returned error: %v", method, err)
			}
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		t.Parallel()

		_, err := New("regex", "", model.ProfileModerate)
		if !errors.Is(err, ErrUnknownMethod) {
			t.Errorf("expected ErrUnknownMethod, got %v", err)
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		t.Parallel()

		_, err := New(model.MethodCSS, "", "aggressive")
		if !errors.Is(err, ErrUnknownProfile) {
			t.Errorf("expected ErrUnknownProfile, got %v", err)
		}
	})
}

// TestExtractCSS tests selector-based extraction.
func TestExtractCSS(t *testing.T) {
	t.Parallel()

	t.Run("configured selector wins", func(t *testing.T) {
		t.Parallel()

		ex, err := New(model.MethodCSS, "article", model.ProfileModerate)
		if err != nil {
			t.Fatal(err)
		}

		res, err := ex.Extract("https://example.com/docs/install", docsPage)
		if err != nil {
			t.Fatalf("Extract() returned error: %v", err)
		}

		if res.Title != "Installation Guide" {
			t.Errorf("Title = %q, want %q", res.Title, "Installation Guide")
		}
		if res.Description != "How to install the toolkit." {
			t.Errorf("Description = %q, want %q", res.Description, "How to install the toolkit.")
		}
		if res.Template != "article" {
			t.Errorf("Template = %q, want %q", res.Template, "article")
		}
		if !strings.Contains(res.Markdown, "Installation") {
			t.Errorf("Markdown missing heading: %q", res.Markdown)
		}
		if res.ContentLength != len(res.Markdown) {
			t.Errorf("ContentLength = %d, want %d", res.ContentLength, len(res.Markdown))
		}
	})

	t.Run("first matching selector wins", func(t *testing.T) {
		t.Parallel()

		ex, err := New(model.MethodCSS, "div.missing, article", model.ProfileModerate)
		if err != nil {
			t.Fatal(err)
		}

		res, err := ex.Extract("https://example.com/docs/install", docsPage)
		if err != nil {
			t.Fatalf("Extract() returned error: %v", err)
		}
		if res.Template != "article" {
			t.Errorf("Template = %q, want %q", res.Template, "article")
		}
	})

	t.Run("fallback containers when no selector configured", func(t *testing.T) {
		t.Parallel()

		ex, err := New(model.MethodCSS, "", model.ProfileModerate)
		if err != nil {
			t.Fatal(err)
		}

		res, err := ex.Extract("https://example.com/docs/install", docsPage)
		if err != nil {
			t.Fatalf("Extract() returned error: %v", err)
		}
		if res.Template != "article" {
			t.Errorf("Template = %q, want %q", res.Template, "article")
		}
	})

	t.Run("no match returns ErrNoContent", func(t *testing.T) {
		t.Parallel()

		ex, err := New(model.MethodCSS, "div#nonexistent", model.ProfileModerate)
		if err != nil {
			t.Fatal(err)
		}

		_, err = ex.Extract("https://example.com/docs/install", docsPage)
		if !errors.Is(err, ErrNoContent) {
			t.Errorf("expected ErrNoContent, got %v", err)
		}
	})

	t.Run("relative links resolve against page origin", func(t *testing.T) {
		t.Parallel()

		ex, err := New(model.MethodCSS, "article", model.ProfileModerate)
		if err != nil {
			t.Fatal(err)
		}

		res, err := ex.Extract("https://example.com/docs/install", docsPage)
		if err != nil {
			t.Fatalf("Extract() returned error: %v", err)
		}
		if !strings.Contains(res.Markdown, "https://example.com/docs/quickstart") {
			t.Errorf("Markdown did not absolutize relative link: %q", res.Markdown)
		}
	})
}

// TestExtractXPath tests expression-based extraction.
func TestExtractXPath(t *testing.T) {
	t.Parallel()

	t.Run("configured expression wins", func(t *testing.T) {
		t.Parallel()

		ex, err := New(model.MethodXPath, "//article", model.ProfileModerate)
		if err != nil {
			t.Fatal(err)
		}

		res, err := ex.Extract("https://example.com/docs/install", docsPage)
		if err != nil {
			t.Fatalf("Extract() returned error: %v", err)
		}
		if res.Template != "//article" {
			t.Errorf("Template = %q, want %q", res.Template, "//article")
		}
		if !strings.Contains(res.Markdown, "release archive") {
			t.Errorf("Markdown missing article text: %q", res.Markdown)
		}
	})

	t.Run("all matched nodes concatenated", func(t *testing.T) {
		t.Parallel()

		page := `<html><body>
<div class="part"><p>Alpha section body text.</p></div>
<div class="part"><p>Beta section body text.</p></div>
</body></html>`

		ex, err := New(model.MethodXPath, `//div[@class="part"]`, model.ProfileMinimal)
		if err != nil {
			t.Fatal(err)
		}

		res, err := ex.Extract("https://example.com/", page)
		if err != nil {
			t.Fatalf("Extract() returned error: %v", err)
		}
		if !strings.Contains(res.Markdown, "Alpha section") || !strings.Contains(res.Markdown, "Beta section") {
			t.Errorf("Markdown missing concatenated sections: %q", res.Markdown)
		}
	})

	t.Run("invalid expression", func(t *testing.T) {
		t.Parallel()

		ex, err := New(model.MethodXPath, "///", model.ProfileModerate)
		if err != nil {
			t.Fatal(err)
		}

		_, err = ex.Extract("https://example.com/", docsPage)
		if !errors.Is(err, ErrInvalidExpression) {
			t.Errorf("expected ErrInvalidExpression, got %v", err)
		}
	})

	t.Run("fallback expressions when none configured", func(t *testing.T) {
		t.Parallel()

		ex, err := New(model.MethodXPath, "", model.ProfileModerate)
		if err != nil {
			t.Fatal(err)
		}

		res, err := ex.Extract("https://example.com/docs/install", docsPage)
		if err != nil {
			t.Fatalf("Extract() returned error: %v", err)
		}
		if res.Template != "//article" {
			t.Errorf("Template = %q, want %q", res.Template, "//article")
		}
	})
}

// TestExtractAuto tests readability-based extraction.
func TestExtractAuto(t *testing.T) {
	t.Parallel()

	ex, err := New(model.MethodAuto, "", model.ProfileModerate)
	if err != nil {
		t.Fatal(err)
	}

	res, err := ex.Extract("https://example.com/docs/install", docsPage)
	if err != nil {
		t.Fatalf("Extract() returned error: %v", err)
	}

	if res.Template != readabilityTemplate {
		t.Errorf("Template = %q, want %q", res.Template, readabilityTemplate)
	}
	if res.Title == "" {
		t.Error("expected non-empty title")
	}
	if !strings.Contains(res.Markdown, "release archive") {
		t.Errorf("Markdown missing article text: %q", res.Markdown)
	}
	// Chrome stripped by the moderate profile must not survive extraction.
	if strings.Contains(res.Markdown, "Copyright Example Corp") {
		t.Errorf("Markdown contains footer text: %q", res.Markdown)
	}
}

// TestCleaningProfiles tests that profiles strip their element lists.
func TestCleaningProfiles(t *testing.T) {
	t.Parallel()

	page := `<html><head><title>Profiles</title></head><body>
<nav>Site Navigation Links</nav>
<p>Body paragraph that always survives cleaning.</p>
<table><tr><td>Tabular data cell</td></tr></table>
<script>var tracked = true;</script>
</body></html>`

	tests := []struct {
		name      string
		profile   string
		wantNav   bool
		wantTable bool
	}{
		{
			name:      "minimal keeps nav and table",
			profile:   model.ProfileMinimal,
			wantNav:   true,
			wantTable: true,
		},
		{
			name:      "moderate strips nav, keeps table",
			profile:   model.ProfileModerate,
			wantNav:   false,
			wantTable: true,
		},
		{
			name:      "strict strips nav and table",
			profile:   model.ProfileStrict,
			wantNav:   false,
			wantTable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ex, err := New(model.MethodCSS, "body", tt.profile)
			if err != nil {
				t.Fatal(err)
			}

			res, err := ex.Extract("https://example.com/", page)
			if err != nil {
				t.Fatalf("Extract() returned error: %v", err)
			}

			if got := strings.Contains(res.Markdown, "Site Navigation Links"); got != tt.wantNav {
				t.Errorf("nav present = %v, want %v in %q", got, tt.wantNav, res.Markdown)
			}
			if got := strings.Contains(res.Markdown, "Tabular data cell"); got != tt.wantTable {
				t.Errorf("table present = %v, want %v in %q", got, tt.wantTable, res.Markdown)
			}
			if strings.Contains(res.Markdown, "var tracked") {
				t.Errorf("script survived cleaning: %q", res.Markdown)
			}
			if !strings.Contains(res.Markdown, "always survives cleaning") {
				t.Errorf("body paragraph missing: %q", res.Markdown)
			}
		})
	}
}

// TestDocumentTitle tests title extraction strategies.
func TestDocumentTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "title element preferred",
			page: `<html><head><title>Head Title</title><meta property="og:title" content="OG Title"></head><body><h1>Heading</h1><p>text</p></body></html>`,
			want: "Head Title",
		},
		{
			name: "og:title when title missing",
			page: `<html><head><meta property="og:title" content="OG Title"></head><body><h1>Heading</h1><p>text</p></body></html>`,
			want: "OG Title",
		},
		{
			name: "h1 as last resort",
			page: `<html><head></head><body><h1>Heading</h1><p>text</p></body></html>`,
			want: "Heading",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ex, err := New(model.MethodCSS, "body", model.ProfileMinimal)
			if err != nil {
				t.Fatal(err)
			}

			res, err := ex.Extract("https://example.com/", tt.page)
			if err != nil {
				t.Fatalf("Extract() returned error: %v", err)
			}
			if res.Title != tt.want {
				t.Errorf("Title = %q, want %q", res.Title, tt.want)
			}
		})
	}
}
