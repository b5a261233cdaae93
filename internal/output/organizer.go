package output

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devoperand/crawl4ai-scraper/internal/model"
)

// SummaryFileName is the session summary written at the output root.
const SummaryFileName = "crawl_summary.json"

// markdownExt is the extension every placed document gets.
const markdownExt = ".md"

// placeholderPattern matches {name} placeholders in a path template.
var placeholderPattern = regexp.MustCompile(`\{[a-z_]+\}`)

// Organizer places extracted documents under an output root according to
// a placement strategy and a naming convention, resolving filename
// collisions with numeric suffixes. Place and Write are safe for
// concurrent use.
type Organizer struct {
	root     string
	strategy string
	naming   string
	template string
	now      func() time.Time

	mu       sync.Mutex
	reserved map[string]struct{}
	counter  int

	written  int
	failures int
	bytes    int64
}

// Option configures an Organizer.
type Option func(*Organizer)

// WithTemplate sets the path template for the custom pattern strategy.
func WithTemplate(template string) Option {
	return func(o *Organizer) {
		o.template = template
	}
}

// WithClock overrides the time source used for date directories and
// timestamp filenames when a document carries no crawl time.
func WithClock(now func() time.Time) Option {
	return func(o *Organizer) {
		o.now = now
	}
}

// NewOrganizer returns an Organizer rooted at root. The strategy and
// naming names must be valid, and the custom pattern strategy requires
// a template whose placeholders are all known.
func NewOrganizer(root, strategy, naming string, opts ...Option) (*Organizer, error) {
	if !model.ValidStrategy(strategy) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	if !model.ValidNaming(naming) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNaming, naming)
	}

	o := &Organizer{
		root:     root,
		strategy: strategy,
		naming:   naming,
		now:      time.Now,
		reserved: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}

	if strategy == model.StrategyCustomPattern {
		if o.template == "" {
			return nil, ErrMissingTemplate
		}
		for _, ph := range placeholderPattern.FindAllString(o.template, -1) {
			switch ph {
			case "{host}", "{path}", "{date}", "{title}":
			default:
				return nil, fmt.Errorf("%w: %s", ErrUnknownPlaceholder, ph)
			}
		}
	}
	return o, nil
}

// Root returns the output root directory.
func (o *Organizer) Root() string { return o.root }

// Place computes and reserves the destination path for doc. The path is
// deterministic for a fixed strategy, naming convention, and root; when
// it collides with an already reserved or existing file, a numeric
// suffix (-2, -3, ...) is appended before the extension. Reservation and
// suffix probing happen in one critical section, so two concurrent
// placements can never resolve to the same path.
func (o *Organizer) Place(doc *model.CrawledDocument) (*model.Placement, error) {
	placement, err := o.place(doc)
	if err != nil {
		o.mu.Lock()
		o.failures++
		o.mu.Unlock()
		return nil, err
	}
	return placement, nil
}

func (o *Organizer) place(doc *model.CrawledDocument) (*model.Placement, error) {
	u, err := url.Parse(doc.URL)
	if err != nil {
		return nil, fmt.Errorf("parse document URL: %w", err)
	}

	crawledAt := doc.Extraction.CrawledAt
	if crawledAt.IsZero() {
		crawledAt = o.now()
	}
	crawledAt = crawledAt.UTC()

	o.mu.Lock()
	defer o.mu.Unlock()

	o.counter++
	base, err := o.baseName(u, doc, crawledAt, o.counter)
	if err != nil {
		return nil, err
	}

	dir, err := o.directory(u, doc, crawledAt)
	if err != nil {
		return nil, err
	}

	rel := path.Clean(path.Join(dir, base+markdownExt))
	if rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
		return nil, fmt.Errorf("%w: %s", ErrPathEscapesRoot, rel)
	}

	rel = o.resolveCollisionLocked(rel)
	o.reserved[rel] = struct{}{}

	return &model.Placement{
		RelativePath: rel,
		Strategy:     o.strategy,
		Naming:       o.naming,
	}, nil
}

// directory computes the slash-separated destination directory for doc,
// relative to the output root.
func (o *Organizer) directory(u *url.URL, doc *model.CrawledDocument, crawledAt time.Time) (string, error) {
	switch o.strategy {
	case model.StrategyFlat:
		return "", nil

	case model.StrategyMirror:
		// Host and parent path segments become directories verbatim, so
		// the original host+path prefix can be read back off the tree.
		segments, isDir := splitPathSegments(u.Path)
		if !isDir && len(segments) > 0 {
			segments = segments[:len(segments)-1]
		}
		return path.Join(append([]string{u.Host}, segments...)...), nil

	case model.StrategyDomainGrouped:
		return u.Host, nil

	case model.StrategyDateOrganized:
		return crawledAt.Format(time.DateOnly), nil

	case model.StrategyCustomPattern:
		return o.expandTemplate(u, doc, crawledAt), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, o.strategy)
}

// expandTemplate substitutes the template placeholders. Placeholder
// names were validated at construction time.
func (o *Organizer) expandTemplate(u *url.URL, doc *model.CrawledDocument, crawledAt time.Time) string {
	segments, _ := splitPathSegments(u.Path)
	for i, seg := range segments {
		segments[i] = sanitizeName(seg)
	}

	title := slugTitle(doc.Title)
	if title == "" {
		title = "untitled"
	}

	r := strings.NewReplacer(
		"{host}", u.Host,
		"{path}", path.Join(segments...),
		"{date}", crawledAt.Format(time.DateOnly),
		"{title}", title,
	)
	return r.Replace(o.template)
}

// resolveCollisionLocked probes rel against the reservation table and
// the filesystem, appending -2, -3, ... before the extension until the
// path is free. Callers must hold o.mu.
func (o *Organizer) resolveCollisionLocked(rel string) string {
	candidate := rel
	stem := strings.TrimSuffix(rel, markdownExt)
	for n := 2; o.takenLocked(candidate); n++ {
		candidate = fmt.Sprintf("%s-%d%s", stem, n, markdownExt)
	}
	return candidate
}

func (o *Organizer) takenLocked(rel string) bool {
	if _, ok := o.reserved[rel]; ok {
		return true
	}
	_, err := os.Stat(filepath.Join(o.root, filepath.FromSlash(rel)))
	return err == nil
}

// metadataHeader is the YAML front matter written ahead of each document.
type metadataHeader struct {
	URL              string `yaml:"url"`
	Title            string `yaml:"title,omitempty"`
	Description      string `yaml:"description,omitempty"`
	Depth            int    `yaml:"depth"`
	CrawledAt        string `yaml:"crawled_at"`
	ContentLength    int    `yaml:"content_length"`
	ExtractionMethod string `yaml:"extraction_method"`
	Template         string `yaml:"template,omitempty"`
	UserAgent        string `yaml:"user_agent,omitempty"`
}

// Write renders doc with its metadata front matter to the reserved
// placement. The file is written to a temporary name in the destination
// directory and renamed into place, so readers never observe a partial
// document.
func (o *Organizer) Write(doc *model.CrawledDocument, placement *model.Placement) error {
	if err := o.write(doc, placement); err != nil {
		o.mu.Lock()
		o.failures++
		o.mu.Unlock()
		return err
	}
	o.mu.Lock()
	o.written++
	o.bytes += int64(len(doc.Markdown))
	o.mu.Unlock()
	return nil
}

func (o *Organizer) write(doc *model.CrawledDocument, placement *model.Placement) error {
	dest := filepath.Join(o.root, filepath.FromSlash(placement.RelativePath))
	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	content, err := o.render(doc)
	if err != nil {
		return err
	}
	return atomicWrite(dest, content)
}

// render produces the final file content: YAML front matter, a title
// heading when a title exists, and the Markdown body.
func (o *Organizer) render(doc *model.CrawledDocument) ([]byte, error) {
	header := metadataHeader{
		URL:              doc.URL,
		Title:            doc.Title,
		Description:      doc.Description,
		Depth:            doc.Depth,
		CrawledAt:        doc.Extraction.CrawledAt.UTC().Format(time.RFC3339),
		ContentLength:    doc.Extraction.ContentLength,
		ExtractionMethod: doc.Extraction.Method,
		Template:         doc.Extraction.Template,
		UserAgent:        doc.Extraction.UserAgent,
	}

	meta, err := yaml.Marshal(&header)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata header: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(meta)
	b.WriteString("---\n\n")
	if doc.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	}
	b.WriteString(strings.TrimRight(doc.Markdown, "\n"))
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// WriteSummary stamps the organizer's write statistics and output policy
// onto sum and writes it as indented JSON at the output root.
func (o *Organizer) WriteSummary(sum *model.SessionSummary) error {
	o.mu.Lock()
	sum.Written = o.written
	sum.WriteFailures = o.failures
	sum.TotalContentLength = o.bytes
	o.mu.Unlock()
	sum.Strategy = o.strategy
	sum.Naming = o.naming
	sum.OutputRoot = o.root

	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session summary: %w", err)
	}
	if err := os.MkdirAll(o.root, 0750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return atomicWrite(filepath.Join(o.root, SummaryFileName), append(data, '\n'))
}

// Stats returns the counts of documents written, placement or write
// failures, and total Markdown bytes written so far.
func (o *Organizer) Stats() (written, failures int, bytes int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.written, o.failures, o.bytes
}

// atomicWrite writes data to a temporary file next to dest and renames
// it into place.
func atomicWrite(dest string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(dest), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", filepath.Base(dest), err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", filepath.Base(dest), err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
