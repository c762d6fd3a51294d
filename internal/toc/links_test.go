package toc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinksAttributesSections(t *testing.T) {
	fragment := `<div class="contents">
	<h3 id="chapters">Chapters</h3>
	<ol class="chapters">
		<li><a href="/learn/book/0">Introduction</a></li>
	</ol>
	<h3 id="bonus-chapters">Bonus chapters</h3>
	<ol class="chapters">
		<li><a href="/learn/book/bonus/vscode">Visual Studio Code</a></li>
	</ol>
</div>`

	assert.Equal(t, []Link{
		{Section: "Chapters", Href: "/learn/book/0", Title: "Introduction"},
		{Section: "Bonus chapters", Href: "/learn/book/bonus/vscode", Title: "Visual Studio Code"},
	}, ExtractLinks(fragment))
}

func TestVerifyDetectsMismatch(t *testing.T) {
	c := mustContents(t, "/learn/book", "", Section{Heading: "Chapters", Entries: []ChapterEntry{
		{Index: "0", Title: "Introduction"},
		{Index: "1", Title: "Installation"},
	}})
	rendered, err := newRenderer(t).RenderString(c)
	require.NoError(t, err)
	require.NoError(t, Verify(c, rendered))

	truncated := rendered[:strings.Index(rendered, "<li>\n\t\t\t<a href=\"/learn/book/1\"")]
	assert.ErrorIs(t, Verify(c, truncated), ErrLinkMismatch)

	retitled := strings.Replace(rendered, ">Installation<", ">Setup<", 1)
	assert.ErrorIs(t, Verify(c, retitled), ErrLinkMismatch)
}

func TestHasLinkTo(t *testing.T) {
	c := mustContents(t, "/learn/book", "", Section{Heading: "Bonus chapters", Entries: []ChapterEntry{
		{Index: "bonus/vscode", Title: "Visual Studio Code"},
	}})
	rendered, err := newRenderer(t).RenderString(c)
	require.NoError(t, err)

	assert.True(t, HasLinkTo(c, rendered, "bonus/vscode"))
	assert.False(t, HasLinkTo(c, rendered, "bonus"))
}
