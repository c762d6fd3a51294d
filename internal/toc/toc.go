// Package toc models a book's table of contents and renders it as an HTML
// link list.
package toc

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/multierr"
	"golang.org/x/text/unicode/norm"
)

// DefaultBasePath is the routing prefix chapter pages are served under.
const DefaultBasePath = "/learn/book"

// Validation failures. Every error returned by New wraps one of these.
var (
	ErrInvalidIndex    = errors.New("invalid chapter index")
	ErrMissingTitle    = errors.New("missing chapter title")
	ErrInvalidTitle    = errors.New("invalid chapter title")
	ErrDuplicateIndex  = errors.New("duplicate chapter index")
	ErrMissingHeading  = errors.New("missing section heading")
	ErrInvalidBasePath = errors.New("invalid base path")
)

var segmentAllowed = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._~-]*$`)

// ChapterIndex identifies a chapter page below the base path. It is either
// a non-negative number ("4") or a slash separated name ("bonus/vscode").
type ChapterIndex string

// NumberIndex returns the index of a numbered chapter.
func NumberIndex(n int) ChapterIndex {
	return ChapterIndex(strconv.Itoa(n))
}

// Validate reports whether the index can be used as a link path.
func (i ChapterIndex) Validate() error {
	if i == "" {
		return fmt.Errorf("%w: empty", ErrInvalidIndex)
	}
	if n, err := strconv.Atoi(string(i)); err == nil && n < 0 {
		return fmt.Errorf("%w: %q is negative", ErrInvalidIndex, string(i))
	}
	for _, segment := range strings.Split(string(i), "/") {
		if segment == "" {
			return fmt.Errorf("%w: %q has an empty path segment", ErrInvalidIndex, string(i))
		}
		if !segmentAllowed.MatchString(segment) {
			return fmt.Errorf("%w: %q has invalid segment %q", ErrInvalidIndex, string(i), segment)
		}
	}
	return nil
}

// IsNumber reports whether the index is a chapter number in canonical form.
// "07" is not: it links to /07, not /7.
func (i ChapterIndex) IsNumber() bool {
	n, err := strconv.Atoi(string(i))
	return err == nil && strconv.Itoa(n) == string(i)
}

func (i ChapterIndex) String() string {
	return string(i)
}

// ChapterEntry is one link of the table of contents.
type ChapterEntry struct {
	Index ChapterIndex
	Title string
}

// Section groups entries under a heading such as "Chapters".
type Section struct {
	Heading string
	Entries []ChapterEntry
}

// Link is a resolved chapter link.
type Link struct {
	Section string `json:"section"`
	Href    string `json:"href"`
	Title   string `json:"title"`
}

// Contents is a validated, immutable table of contents. The zero value is
// an empty table that renders nothing.
type Contents struct {
	basePath string
	title    string
	sections []Section
}

// New validates sections against basePath and returns the table built from
// them. All problems are reported together; use multierr.Errors to split
// them.
//
// The page title, section headings and entry titles are normalised to
// Unicode NFC, so a decomposed "LÖVE" comes back composed. The page title
// and headings are also trimmed. Indexes are kept byte for byte.
func New(basePath, title string, sections []Section) (Contents, error) {
	var errs error
	if err := validateBasePath(basePath); err != nil {
		errs = multierr.Append(errs, err)
	}

	cleaned := make([]Section, 0, len(sections))
	for si, section := range sections {
		heading := norm.NFC.String(strings.TrimSpace(section.Heading))
		if heading == "" {
			errs = multierr.Append(errs, fmt.Errorf("section %d: %w", si+1, ErrMissingHeading))
		}

		seen := make(map[ChapterIndex]int, len(section.Entries))
		entries := make([]ChapterEntry, 0, len(section.Entries))
		for ei, entry := range section.Entries {
			where := fmt.Sprintf("section %d (%s) entry %d", si+1, heading, ei+1)
			if err := entry.Index.Validate(); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", where, err))
			} else if prev, dup := seen[entry.Index]; dup {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w: %q already used by entry %d", where, ErrDuplicateIndex, entry.Index, prev))
			} else {
				seen[entry.Index] = ei + 1
			}

			switch {
			case !utf8.ValidString(entry.Title):
				errs = multierr.Append(errs, fmt.Errorf("%s: %w: not valid UTF-8", where, ErrInvalidTitle))
			case strings.TrimSpace(entry.Title) == "":
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", where, ErrMissingTitle))
			}

			entries = append(entries, ChapterEntry{Index: entry.Index, Title: norm.NFC.String(entry.Title)})
		}
		cleaned = append(cleaned, Section{Heading: heading, Entries: entries})
	}

	if errs != nil {
		return Contents{}, errs
	}
	return Contents{
		basePath: strings.TrimRight(basePath, "/"),
		title:    norm.NFC.String(strings.TrimSpace(title)),
		sections: cleaned,
	}, nil
}

func validateBasePath(basePath string) error {
	if !strings.HasPrefix(basePath, "/") {
		return fmt.Errorf("%w: %q must start with /", ErrInvalidBasePath, basePath)
	}
	if strings.ContainsAny(basePath, "?#") {
		return fmt.Errorf("%w: %q must not carry a query or fragment", ErrInvalidBasePath, basePath)
	}
	for _, segment := range strings.Split(basePath, "/") {
		if segment == "." || segment == ".." {
			return fmt.Errorf("%w: %q contains a relative segment", ErrInvalidBasePath, basePath)
		}
	}
	return nil
}

// BasePath returns the prefix links are rooted at, without a trailing slash.
func (c Contents) BasePath() string { return c.basePath }

// Title returns the page heading.
func (c Contents) Title() string { return c.title }

// Sections returns a copy of the sections in display order.
func (c Contents) Sections() []Section {
	out := make([]Section, len(c.sections))
	for i, s := range c.sections {
		out[i] = Section{Heading: s.Heading, Entries: append([]ChapterEntry(nil), s.Entries...)}
	}
	return out
}

// Len returns the total number of entries across all sections.
func (c Contents) Len() int {
	n := 0
	for _, s := range c.sections {
		n += len(s.Entries)
	}
	return n
}

// Href returns the link target for index.
func (c Contents) Href(index ChapterIndex) string {
	segments := strings.Split(string(index), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return c.basePath + "/" + strings.Join(segments, "/")
}

// Links returns every entry resolved to its link, in display order.
func (c Contents) Links() []Link {
	links := make([]Link, 0, c.Len())
	for _, s := range c.sections {
		for _, e := range s.Entries {
			links = append(links, Link{Section: s.Heading, Href: c.Href(e.Index), Title: e.Title})
		}
	}
	return links
}
