package toc

import (
	"errors"
	"fmt"
	"html"
	"regexp"
)

// ErrLinkMismatch is returned by Verify when a fragment does not carry the
// links its Contents describes.
var ErrLinkMismatch = errors.New("rendered links do not match contents")

var fragmentToken = regexp.MustCompile(`<h3 id="[^"]*">([^<]*)</h3>|<a href="([^"]*)">([^<]*)</a>`)

// ExtractLinks reads the links back out of a rendered fragment, attributing
// each one to the heading that precedes it.
func ExtractLinks(fragment string) []Link {
	var (
		links   []Link
		heading string
	)
	for _, m := range fragmentToken.FindAllStringSubmatch(fragment, -1) {
		if m[2] == "" && m[3] == "" {
			heading = html.UnescapeString(m[1])
			continue
		}
		links = append(links, Link{
			Section: heading,
			Href:    html.UnescapeString(m[2]),
			Title:   html.UnescapeString(m[3]),
		})
	}
	return links
}

// Verify checks that fragment links to exactly the entries of c, in order.
func Verify(c Contents, fragment string) error {
	want := c.Links()
	got := ExtractLinks(fragment)
	if len(got) != len(want) {
		return fmt.Errorf("%w: rendered %d links, want %d", ErrLinkMismatch, len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("%w: link %d is %+v, want %+v", ErrLinkMismatch, i+1, got[i], want[i])
		}
	}
	return nil
}

// HasLinkTo reports whether fragment links to index under c's base path.
func HasLinkTo(c Contents, fragment string, index ChapterIndex) bool {
	target := c.Href(index)
	for _, l := range ExtractLinks(fragment) {
		if l.Href == target {
			return true
		}
	}
	return false
}
