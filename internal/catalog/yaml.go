package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"bookcontents/internal/toc"
)

type fileCatalog struct {
	BasePath       string        `yaml:"base_path"`
	DefaultEdition string        `yaml:"default_edition,omitempty"`
	Editions       []fileEdition `yaml:"editions"`
}

type fileEdition struct {
	Name     string        `yaml:"name"`
	Title    string        `yaml:"title,omitempty"`
	Sections []fileSection `yaml:"sections"`
}

type fileSection struct {
	Heading string      `yaml:"heading"`
	Entries []fileEntry `yaml:"entries"`
}

type fileEntry struct {
	Index fileIndex `yaml:"index"`
	Title string    `yaml:"title"`
}

// fileIndex accepts either an integer or a string chapter index.
type fileIndex toc.ChapterIndex

func (i *fileIndex) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: chapter index must be a scalar", n.Line)
	}
	switch n.ShortTag() {
	case "!!int":
		var v int
		if err := n.Decode(&v); err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		*i = fileIndex(toc.NumberIndex(v))
	case "!!str":
		*i = fileIndex(n.Value)
	default:
		return fmt.Errorf("line %d: chapter index must be an integer or a string, got %s", n.Line, n.ShortTag())
	}
	return nil
}

func (i fileIndex) MarshalYAML() (any, error) {
	idx := toc.ChapterIndex(i)
	if idx.IsNumber() {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: idx.String()}, nil
	}
	// Quoted so values like 07, 1e3 or true read back as the same string.
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Style: yaml.DoubleQuotedStyle, Value: idx.String()}, nil
}

func (f fileCatalog) catalog() *Catalog {
	c := &Catalog{BasePath: f.BasePath, DefaultEdition: f.DefaultEdition}
	if c.BasePath == "" {
		c.BasePath = toc.DefaultBasePath
	}
	for _, fe := range f.Editions {
		e := Edition{Name: fe.Name, Title: fe.Title}
		for _, fs := range fe.Sections {
			s := toc.Section{Heading: fs.Heading}
			for _, en := range fs.Entries {
				s.Entries = append(s.Entries, toc.ChapterEntry{Index: toc.ChapterIndex(en.Index), Title: en.Title})
			}
			e.Sections = append(e.Sections, s)
		}
		c.Editions = append(c.Editions, e)
	}
	return c
}

func fromCatalog(c *Catalog) fileCatalog {
	f := fileCatalog{BasePath: c.BasePath, DefaultEdition: c.DefaultEdition}
	for _, e := range c.Editions {
		fe := fileEdition{Name: e.Name, Title: e.Title}
		for _, s := range e.Sections {
			fs := fileSection{Heading: s.Heading, Entries: []fileEntry{}}
			for _, en := range s.Entries {
				fs.Entries = append(fs.Entries, fileEntry{Index: fileIndex(en.Index), Title: en.Title})
			}
			fe.Sections = append(fe.Sections, fs)
		}
		f.Editions = append(f.Editions, fe)
	}
	return f
}

// Encode renders c back to YAML.
func Encode(c *Catalog) ([]byte, error) {
	return yaml.Marshal(fromCatalog(c))
}
