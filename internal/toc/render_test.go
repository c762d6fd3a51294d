package toc

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

func mustContents(t *testing.T, basePath, title string, sections ...Section) Contents {
	t.Helper()
	c, err := New(basePath, title, sections)
	require.NoError(t, err)
	return c
}

func TestRenderSingleSection(t *testing.T) {
	c := mustContents(t, "/learn/book", "", Section{Heading: "Chapters", Entries: []ChapterEntry{
		{Index: "0", Title: "Introduction"},
		{Index: "1", Title: "Chapter 1 - Installation"},
	}})

	got, err := newRenderer(t).RenderString(c)
	require.NoError(t, err)

	want := `<div class="contents">
	<h3 id="chapters">Chapters</h3>
	<ol class="chapters">
		<li>
			<a href="/learn/book/0">Introduction</a>
		</li>
		<li>
			<a href="/learn/book/1">Chapter 1 - Installation</a>
		</li>
	</ol>
</div>
`
	assert.Equal(t, want, got)
}

func TestRenderPageTitle(t *testing.T) {
	c := mustContents(t, "/learn/book", "Table of Contents", Section{Heading: "Chapters", Entries: []ChapterEntry{{Index: "0", Title: "Introduction"}}})

	got, err := newRenderer(t).RenderString(c)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "<h2 class=\"line\"><span>Table of Contents</span></h2>\n<div class=\"contents\">"), got)
}

func TestRenderMultipleSections(t *testing.T) {
	c := mustContents(t, "/learn/book", "",
		Section{Heading: "Chapters", Entries: []ChapterEntry{{Index: "0", Title: "Introduction"}}},
		Section{Heading: "Bonus chapters", Entries: []ChapterEntry{{Index: "bonus/vscode", Title: "Visual Studio Code"}}},
	)

	got, err := newRenderer(t).RenderString(c)
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(got, "<h3 "))
	assert.Equal(t, 2, strings.Count(got, "<ol class=\"chapters\">"))
	assert.Contains(t, got, `<h3 id="bonus-chapters">Bonus chapters</h3>`)
	assert.Contains(t, got, `<a href="/learn/book/bonus/vscode">Visual Studio Code</a>`)
	assert.Less(t, strings.Index(got, "Introduction"), strings.Index(got, "Bonus chapters"))
	require.NoError(t, Verify(c, got))
}

func TestRenderEmptyContents(t *testing.T) {
	got, err := newRenderer(t).RenderString(mustContents(t, "/learn/book", "Table of Contents"))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = newRenderer(t).RenderString(Contents{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRenderEmptySectionKeepsHeading(t *testing.T) {
	c := mustContents(t, "/learn/book", "", Section{Heading: "Bonus chapters"})

	got, err := newRenderer(t).RenderString(c)
	require.NoError(t, err)
	assert.Contains(t, got, "<h3 id=\"bonus-chapters\">Bonus chapters</h3>\n\t<ol class=\"chapters\">\n\t</ol>")
	assert.Empty(t, ExtractLinks(got))
}

func TestRenderEscapesTitles(t *testing.T) {
	title := `Tom & Jerry's <Game>`
	c := mustContents(t, "/learn/book", "", Section{Heading: "Chapters", Entries: []ChapterEntry{
		{Index: "4", Title: "Chapter 4 - LÖVE"},
		{Index: "5", Title: title},
	}})

	got, err := newRenderer(t).RenderString(c)
	require.NoError(t, err)
	assert.Contains(t, got, ">Chapter 4 - LÖVE</a>")
	assert.NotContains(t, got, "<Game>")

	links := ExtractLinks(got)
	require.Len(t, links, 2)
	assert.Equal(t, title, links[1].Title)
}

func TestRenderPreservesOrderAndDuplicates(t *testing.T) {
	entries := []ChapterEntry{
		{Index: "9", Title: "Same"},
		{Index: "2", Title: "Same"},
		{Index: "bonus/x", Title: "Other"},
		{Index: "0", Title: "Same"},
	}
	c := mustContents(t, "/learn/book", "", Section{Heading: "Chapters", Entries: entries})

	got, err := newRenderer(t).RenderString(c)
	require.NoError(t, err)

	links := ExtractLinks(got)
	require.Len(t, links, len(entries))
	for i, e := range entries {
		assert.Equal(t, "/learn/book/"+e.Index.String(), links[i].Href)
		assert.Equal(t, e.Title, links[i].Title)
		assert.NotContains(t, links[i].Href, "//")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	c := mustContents(t, "/learn/book/", "Table of Contents",
		Section{Heading: "Chapters", Entries: []ChapterEntry{{Index: "0", Title: "Introduction"}}},
		Section{Heading: "Chapters", Entries: []ChapterEntry{{Index: "1", Title: "Installation"}}},
	)
	r := newRenderer(t)

	first, err := r.RenderString(c)
	require.NoError(t, err)
	assert.Contains(t, first, `id="chapters-2"`)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = r.RenderString(c)
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, first, got)
	}
}

func TestHeadingIDFallback(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "section-1", headingID("!!!", 0, used))
	assert.Equal(t, "chapters", headingID("Chapters", 1, used))
	assert.Equal(t, "chapters-2", headingID("Chapters", 2, used))
}
