// Package catalog loads the versioned table of contents configuration and
// compiles it into validated, renderable snapshots.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"bookcontents/internal/toc"
)

//go:embed default.yaml
var defaultCatalog []byte

// Catalog errors.
var (
	ErrNoEditions       = errors.New("catalog has no editions")
	ErrInvalidEdition   = errors.New("invalid edition name")
	ErrDuplicateEdition = errors.New("duplicate edition")
	ErrUnknownDefault   = errors.New("default edition not found")
)

var editionAllowed = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]*$`)

// Catalog is the raw configuration: one or more editions of the table of
// contents sharing a base path.
type Catalog struct {
	BasePath       string
	DefaultEdition string
	Editions       []Edition
}

// Edition is one named listing of the table of contents.
type Edition struct {
	Name     string
	Title    string
	Sections []toc.Section
}

// Source provides a catalog on demand.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
	String() string
}

// Decode reads a YAML catalog. Unknown keys are rejected.
func Decode(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f fileCatalog
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoEditions
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return f.catalog(), nil
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	return Decode(strings.NewReader(string(defaultCatalog)))
}

// Snapshot is a compiled catalog. It is immutable and safe to share.
type Snapshot struct {
	defaultName string
	names       []string
	editions    map[string]toc.Contents
}

// Compile validates every edition and returns the resulting snapshot. All
// problems found are returned together.
func (c *Catalog) Compile() (*Snapshot, error) {
	if len(c.Editions) == 0 {
		return nil, ErrNoEditions
	}

	var errs error
	s := &Snapshot{editions: make(map[string]toc.Contents, len(c.Editions))}
	seen := make(map[string]bool, len(c.Editions))
	for i, e := range c.Editions {
		if !editionAllowed.MatchString(e.Name) {
			errs = multierr.Append(errs, fmt.Errorf("edition %d: %w: %q", i+1, ErrInvalidEdition, e.Name))
			continue
		}
		if seen[e.Name] {
			errs = multierr.Append(errs, fmt.Errorf("edition %d: %w: %q", i+1, ErrDuplicateEdition, e.Name))
			continue
		}
		seen[e.Name] = true

		contents, err := toc.New(c.BasePath, e.Title, e.Sections)
		if err != nil {
			for _, problem := range multierr.Errors(err) {
				errs = multierr.Append(errs, fmt.Errorf("edition %q: %w", e.Name, problem))
			}
			continue
		}
		s.editions[e.Name] = contents
		s.names = append(s.names, e.Name)
	}

	s.defaultName = c.DefaultEdition
	if s.defaultName == "" {
		s.defaultName = c.Editions[0].Name
	}
	if !contains(c.Editions, s.defaultName) {
		errs = multierr.Append(errs, fmt.Errorf("%w: %q", ErrUnknownDefault, s.defaultName))
	}

	if errs != nil {
		return nil, errs
	}
	sort.Sort(natural.StringSlice(s.names))
	return s, nil
}

func contains(editions []Edition, name string) bool {
	for _, e := range editions {
		if e.Name == name {
			return true
		}
	}
	return false
}

// DefaultName returns the name of the canonical edition.
func (s *Snapshot) DefaultName() string { return s.defaultName }

// Default returns the canonical edition.
func (s *Snapshot) Default() toc.Contents { return s.editions[s.defaultName] }

// Edition returns the edition called name.
func (s *Snapshot) Edition(name string) (toc.Contents, bool) {
	c, ok := s.editions[name]
	return c, ok
}

// Names returns the edition names in natural order ("v2" before "v10").
func (s *Snapshot) Names() []string {
	return append([]string(nil), s.names...)
}

// WithBasePath returns a copy of c rooted at basePath. An empty basePath
// leaves c unchanged.
func (c *Catalog) WithBasePath(basePath string) *Catalog {
	if basePath == "" {
		return c
	}
	out := *c
	out.BasePath = basePath
	return &out
}
