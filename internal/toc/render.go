package toc

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/gosimple/slug"
)

// Renderer turns a Contents into an HTML fragment. It is safe for
// concurrent use.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the bundled templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("base").ParseFS(templateFS, "templates/contents.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parse contents template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

type pageView struct {
	Title    string
	Sections []sectionView
}

type sectionView struct {
	ID      string
	Heading string
	Links   []Link
}

// Render writes the fragment for c to w. A table without sections renders
// nothing. A section without entries still renders its heading and an
// empty list.
func (r *Renderer) Render(w io.Writer, c Contents) error {
	if err := r.tmpl.ExecuteTemplate(w, "contents", view(c)); err != nil {
		return fmt.Errorf("render contents: %w", err)
	}
	return nil
}

// RenderString renders c into a string.
func (r *Renderer) RenderString(c Contents) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, c); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func view(c Contents) pageView {
	ids := make(map[string]bool, len(c.sections))
	sections := make([]sectionView, 0, len(c.sections))
	for i, s := range c.sections {
		links := make([]Link, 0, len(s.Entries))
		for _, e := range s.Entries {
			links = append(links, Link{Section: s.Heading, Href: c.Href(e.Index), Title: e.Title})
		}
		sections = append(sections, sectionView{
			ID:      headingID(s.Heading, i, ids),
			Heading: s.Heading,
			Links:   links,
		})
	}
	return pageView{Title: c.title, Sections: sections}
}

// headingID derives a unique anchor for a section heading.
func headingID(heading string, pos int, used map[string]bool) string {
	base := slug.Make(heading)
	if base == "" {
		base = fmt.Sprintf("section-%d", pos+1)
	}
	id := base
	for n := 2; used[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	used[id] = true
	return id
}
