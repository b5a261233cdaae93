package output

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/devoperand/crawl4ai-scraper/internal/model"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
}

func testDoc(rawURL, title string) *model.CrawledDocument {
	return &model.CrawledDocument{
		URL:      rawURL,
		Title:    title,
		Markdown: "Some extracted content.",
		Extraction: model.ExtractionInfo{
			Method:        model.MethodAuto,
			Template:      "readability",
			ContentLength: 23,
			CrawledAt:     fixedClock(),
		},
	}
}

// TestNewOrganizer tests constructor validation.
func TestNewOrganizer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		strategy string
		naming   string
		opts     []Option
		wantErr  error
	}{
		{
			name:     "valid mirror",
			strategy: model.StrategyMirror,
			naming:   model.NamingURLBased,
		},
		{
			name:     "unknown strategy",
			strategy: "pyramid",
			naming:   model.NamingURLBased,
			wantErr:  ErrUnknownStrategy,
		},
		{
			name:     "unknown naming",
			strategy: model.StrategyFlat,
			naming:   "random",
			wantErr:  ErrUnknownNaming,
		},
		{
			name:     "custom pattern without template",
			strategy: model.StrategyCustomPattern,
			naming:   model.NamingURLBased,
			wantErr:  ErrMissingTemplate,
		},
		{
			name:     "custom pattern with unknown placeholder",
			strategy: model.StrategyCustomPattern,
			naming:   model.NamingURLBased,
			opts:     []Option{WithTemplate("{host}/{section}")},
			wantErr:  ErrUnknownPlaceholder,
		},
		{
			name:     "custom pattern with valid template",
			strategy: model.StrategyCustomPattern,
			naming:   model.NamingURLBased,
			opts:     []Option{WithTemplate("{host}/{date}/{title}")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewOrganizer(t.TempDir(), tt.strategy, tt.naming, tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewOrganizer() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestPlacePaths tests path computation across strategies and naming
// conventions.
func TestPlacePaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		strategy string
		naming   string
		opts     []Option
		url      string
		title    string
		want     string
	}{
		{
			name:     "mirror with title",
			strategy: model.StrategyMirror,
			naming:   model.NamingTitleBased,
			url:      "https://docs.example.com/api/ref",
			title:    "API Reference",
			want:     "docs.example.com/api/api-reference.md",
		},
		{
			name:     "mirror url based",
			strategy: model.StrategyMirror,
			naming:   model.NamingURLBased,
			url:      "https://docs.example.com/api/ref",
			want:     "docs.example.com/api/ref.md",
		},
		{
			name:     "mirror root path",
			strategy: model.StrategyMirror,
			naming:   model.NamingURLBased,
			url:      "https://docs.example.com/",
			want:     "docs.example.com/index.md",
		},
		{
			name:     "mirror directory path",
			strategy: model.StrategyMirror,
			naming:   model.NamingURLBased,
			url:      "https://docs.example.com/api/ref/",
			want:     "docs.example.com/api/ref/index.md",
		},
		{
			name:     "flat",
			strategy: model.StrategyFlat,
			naming:   model.NamingURLBased,
			url:      "https://docs.example.com/api/ref",
			want:     "docs-example-com-api-ref.md",
		},
		{
			name:     "flat root path",
			strategy: model.StrategyFlat,
			naming:   model.NamingURLBased,
			url:      "https://docs.example.com/",
			want:     "docs-example-com.md",
		},
		{
			name:     "domain grouped",
			strategy: model.StrategyDomainGrouped,
			naming:   model.NamingURLBased,
			url:      "https://docs.example.com/api/ref",
			want:     "docs.example.com/api-ref.md",
		},
		{
			name:     "date organized",
			strategy: model.StrategyDateOrganized,
			naming:   model.NamingURLBased,
			url:      "https://docs.example.com/api/ref",
			want:     "2026-08-25/docs-example-com-api-ref.md",
		},
		{
			name:     "custom pattern",
			strategy: model.StrategyCustomPattern,
			naming:   model.NamingTitleBased,
			opts:     []Option{WithTemplate("{host}/{date}")},
			url:      "https://docs.example.com/api/ref",
			title:    "API Reference",
			want:     "docs.example.com/2026-08-25/api-reference.md",
		},
		{
			name:     "custom pattern with path placeholder",
			strategy: model.StrategyCustomPattern,
			naming:   model.NamingTitleBased,
			opts:     []Option{WithTemplate("pages/{path}")},
			url:      "https://docs.example.com/api/ref",
			title:    "API Reference",
			want:     "pages/api/ref/api-reference.md",
		},
		{
			name:     "title with diacritics",
			strategy: model.StrategyFlat,
			naming:   model.NamingTitleBased,
			url:      "https://example.com/menu",
			title:    "Café Menü!",
			want:     "cafe-menu.md",
		},
		{
			name:     "empty title falls back to url",
			strategy: model.StrategyFlat,
			naming:   model.NamingTitleBased,
			url:      "https://docs.example.com/api/ref",
			want:     "docs-example-com-api-ref.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o, err := NewOrganizer(t.TempDir(), tt.strategy, tt.naming, append(tt.opts, WithClock(fixedClock))...)
			if err != nil {
				t.Fatalf("NewOrganizer() error = %v", err)
			}

			placement, err := o.Place(testDoc(tt.url, tt.title))
			if err != nil {
				t.Fatalf("Place() error = %v", err)
			}
			if placement.RelativePath != tt.want {
				t.Errorf("Place() = %s, want %s", placement.RelativePath, tt.want)
			}
		})
	}
}

// TestPlaceTimestampNaming tests the timestamp convention's counter.
func TestPlaceTimestampNaming(t *testing.T) {
	t.Parallel()

	o, err := NewOrganizer(t.TempDir(), model.StrategyFlat, model.NamingTimestamp, WithClock(fixedClock))
	if err != nil {
		t.Fatalf("NewOrganizer() error = %v", err)
	}

	first, err := o.Place(testDoc("https://a.com/x", ""))
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	second, err := o.Place(testDoc("https://a.com/y", ""))
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}

	if first.RelativePath != "a-com-20260825_120000-1.md" {
		t.Errorf("first placement = %s", first.RelativePath)
	}
	if second.RelativePath != "a-com-20260825_120000-2.md" {
		t.Errorf("second placement = %s, want distinct counter", second.RelativePath)
	}
}

// TestPlaceHashNaming tests digest determinism and uniqueness.
func TestPlaceHashNaming(t *testing.T) {
	t.Parallel()

	place := func(rawURL string) string {
		t.Helper()
		o, err := NewOrganizer(t.TempDir(), model.StrategyFlat, model.NamingHash)
		if err != nil {
			t.Fatalf("NewOrganizer() error = %v", err)
		}
		p, err := o.Place(testDoc(rawURL, ""))
		if err != nil {
			t.Fatalf("Place() error = %v", err)
		}
		return p.RelativePath
	}

	first := place("https://docs.example.com/api/ref")
	if again := place("https://docs.example.com/api/ref"); again != first {
		t.Errorf("hash placement not deterministic: %s vs %s", first, again)
	}
	if other := place("https://docs.example.com/api/other"); other == first {
		t.Errorf("distinct URLs share hash placement %s", first)
	}
	if want := "docs-example-com-"; !strings.HasPrefix(first, want) {
		t.Errorf("hash placement = %s, want %s prefix", first, want)
	}
	if got := len(strings.TrimSuffix(first, ".md")); got != len("docs-example-com")+1+hashNameLength {
		t.Errorf("hash name length = %d", got)
	}
}

// TestPlaceCollisions tests that colliding names take numeric suffixes
// in placement order and never overwrite.
func TestPlaceCollisions(t *testing.T) {
	t.Parallel()

	o, err := NewOrganizer(t.TempDir(), model.StrategyFlat, model.NamingURLBased)
	if err != nil {
		t.Fatalf("NewOrganizer() error = %v", err)
	}

	// Both URLs sanitize to the same flat name.
	want := []string{"a-com-x.md", "a-com-x-2.md", "a-com-x-3.md"}
	for i, rawURL := range []string{"https://a.com/x", "https://a.com/x/", "https://a.com/x!"} {
		placement, err := o.Place(testDoc(rawURL, ""))
		if err != nil {
			t.Fatalf("Place(%s) error = %v", rawURL, err)
		}
		if placement.RelativePath != want[i] {
			t.Errorf("Place(%s) = %s, want %s", rawURL, placement.RelativePath, want[i])
		}
	}
}

// TestPlaceCollisionWithExistingFile tests that files already on disk
// from a previous run are never overwritten.
func TestPlaceCollisionWithExistingFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a-com-x.md"), []byte("earlier run"), 0600); err != nil {
		t.Fatal(err)
	}

	o, err := NewOrganizer(root, model.StrategyFlat, model.NamingURLBased)
	if err != nil {
		t.Fatalf("NewOrganizer() error = %v", err)
	}

	placement, err := o.Place(testDoc("https://a.com/x", ""))
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if placement.RelativePath != "a-com-x-2.md" {
		t.Errorf("Place() = %s, want suffix past the existing file", placement.RelativePath)
	}
}

// TestPlaceEscapesRoot tests the traversal guard on custom templates.
func TestPlaceEscapesRoot(t *testing.T) {
	t.Parallel()

	o, err := NewOrganizer(t.TempDir(), model.StrategyCustomPattern, model.NamingURLBased,
		WithTemplate("../{host}"))
	if err != nil {
		t.Fatalf("NewOrganizer() error = %v", err)
	}

	if _, err := o.Place(testDoc("https://a.com/x", "")); !errors.Is(err, ErrPathEscapesRoot) {
		t.Errorf("Place() error = %v, want ErrPathEscapesRoot", err)
	}
	if _, failures, _ := o.Stats(); failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}
}

// TestWrite tests the rendered file layout and the write statistics.
func TestWrite(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	o, err := NewOrganizer(root, model.StrategyMirror, model.NamingTitleBased, WithClock(fixedClock))
	if err != nil {
		t.Fatalf("NewOrganizer() error = %v", err)
	}

	doc := testDoc("https://docs.example.com/api/ref", "API Reference")
	placement, err := o.Place(doc)
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if err := o.Write(doc, placement); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "docs.example.com", "api", "api-reference.md"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "---\n") {
		t.Error("file should open with YAML front matter")
	}
	for _, want := range []string{
		"url: https://docs.example.com/api/ref",
		"title: API Reference",
		"crawled_at: \"2026-08-25T12:00:00Z\"",
		"extraction_method: auto",
		"# API Reference",
		"Some extracted content.",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("file content missing %q:\n%s", want, content)
		}
	}

	written, failures, bytes := o.Stats()
	if written != 1 || failures != 0 {
		t.Errorf("Stats() = (%d, %d), want one clean write", written, failures)
	}
	if bytes != int64(len(doc.Markdown)) {
		t.Errorf("Stats() bytes = %d, want %d", bytes, len(doc.Markdown))
	}

	// The temporary file must not survive the rename.
	entries, err := os.ReadDir(filepath.Join(root, "docs.example.com", "api"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("destination directory holds %d entries, want the document alone", len(entries))
	}
}

// TestWriteSummary tests the summary file and the folded-in statistics.
func TestWriteSummary(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	o, err := NewOrganizer(root, model.StrategyFlat, model.NamingURLBased)
	if err != nil {
		t.Fatalf("NewOrganizer() error = %v", err)
	}

	doc := testDoc("https://a.com/x", "X")
	placement, err := o.Place(doc)
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if err := o.Write(doc, placement); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	sum := &model.SessionSummary{ID: "s1", Fetched: 1, TotalDiscovered: 1}
	if err := o.WriteSummary(sum); err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}

	if sum.Written != 1 || sum.Strategy != model.StrategyFlat || sum.OutputRoot != root {
		t.Errorf("summary not stamped: %+v", sum)
	}

	data, err := os.ReadFile(filepath.Join(root, SummaryFileName))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var decoded model.SessionSummary
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.ID != "s1" || decoded.Written != 1 || decoded.TotalContentLength != int64(len(doc.Markdown)) {
		t.Errorf("decoded summary = %+v", decoded)
	}
}

// TestSanitizeName tests the filename sanitizer.
func TestSanitizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"docs.example.com/api/ref", "docs-example-com-api-ref"},
		{"--hello--world--", "hello-world"},
		{"UPPER case Kept", "UPPER-case-Kept"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := sanitizeName(tt.in); got != tt.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestSlugTitle tests diacritic folding and lowercasing.
func TestSlugTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"API Reference", "api-reference"},
		{"Café Menü!", "cafe-menu"},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := slugTitle(tt.in); got != tt.want {
			t.Errorf("slugTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
