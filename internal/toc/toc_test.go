package toc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestChapterIndexValidate(t *testing.T) {
	valid := []ChapterIndex{"0", "18", NumberIndex(7), "bonus/vscode", "bonus/love-2d", "appendix_a", "v1.2"}
	for _, idx := range valid {
		assert.NoError(t, idx.Validate(), "index %q", idx)
	}

	invalid := []ChapterIndex{"", "-1", NumberIndex(-3), "/bonus", "bonus/", "bonus//vscode", "../etc", "bonus/..", ".", "white space", "a?b", "a#b", "über"}
	for _, idx := range invalid {
		err := idx.Validate()
		require.Error(t, err, "index %q", idx)
		assert.ErrorIs(t, err, ErrInvalidIndex)
	}
}

func TestChapterIndexIsNumber(t *testing.T) {
	assert.True(t, NumberIndex(4).IsNumber())
	assert.False(t, ChapterIndex("bonus/vscode").IsNumber())
	assert.False(t, ChapterIndex("07").IsNumber())
	assert.False(t, ChapterIndex("+4").IsNumber())
	assert.NoError(t, ChapterIndex("07").Validate())
}

func TestNewValid(t *testing.T) {
	c, err := New("/learn/book/", "Table of Contents", []Section{
		{Heading: "Chapters", Entries: []ChapterEntry{
			{Index: "0", Title: "Introduction"},
			{Index: "1", Title: "Chapter 1 - Installation"},
		}},
		{Heading: "Bonus chapters", Entries: []ChapterEntry{
			{Index: "bonus/vscode", Title: "Visual Studio Code"},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, "/learn/book", c.BasePath())
	assert.Equal(t, "Table of Contents", c.Title())
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []Link{
		{Section: "Chapters", Href: "/learn/book/0", Title: "Introduction"},
		{Section: "Chapters", Href: "/learn/book/1", Title: "Chapter 1 - Installation"},
		{Section: "Bonus chapters", Href: "/learn/book/bonus/vscode", Title: "Visual Studio Code"},
	}, c.Links())
}

func TestNewReportsAllProblems(t *testing.T) {
	_, err := New("learn/book", "", []Section{
		{Heading: "  ", Entries: []ChapterEntry{
			{Index: "0", Title: "Introduction"},
			{Index: "0", Title: "Again"},
			{Index: "bonus//x", Title: "Broken"},
			{Index: "2", Title: ""},
			{Index: "3", Title: "\xff"},
		}},
	})
	require.Error(t, err)

	errs := multierr.Errors(err)
	assert.Len(t, errs, 6)
	for _, sentinel := range []error{ErrInvalidBasePath, ErrMissingHeading, ErrDuplicateIndex, ErrInvalidIndex, ErrMissingTitle, ErrInvalidTitle} {
		assert.True(t, errors.Is(err, sentinel), "expected %v in %v", sentinel, err)
	}
}

func TestNewRejectsBadBasePaths(t *testing.T) {
	for _, base := range []string{"", "learn", "/learn/../book", "/learn/book?x=1", "/learn#top"} {
		_, err := New(base, "", nil)
		assert.ErrorIs(t, err, ErrInvalidBasePath, "base %q", base)
	}
}

func TestNewNormalizesTitles(t *testing.T) {
	decomposed := "Chapter 4 - LO\u0308VE"
	c, err := New("/learn/book", "", []Section{{Heading: "Chapters", Entries: []ChapterEntry{{Index: "4", Title: decomposed}}}})
	require.NoError(t, err)
	assert.Equal(t, "Chapter 4 - L\u00d6VE", c.Links()[0].Title)
}

func TestDuplicateIndexAcrossSectionsAllowed(t *testing.T) {
	_, err := New("/learn/book", "", []Section{
		{Heading: "Chapters", Entries: []ChapterEntry{{Index: "1", Title: "One"}}},
		{Heading: "Again", Entries: []ChapterEntry{{Index: "1", Title: "One"}}},
	})
	assert.NoError(t, err)
}

func TestSectionsReturnsCopy(t *testing.T) {
	c, err := New("/learn/book", "", []Section{{Heading: "Chapters", Entries: []ChapterEntry{{Index: "1", Title: "One"}}}})
	require.NoError(t, err)

	sections := c.Sections()
	sections[0].Entries[0].Title = "Changed"
	assert.Equal(t, "One", c.Links()[0].Title)
}

func TestRootBasePath(t *testing.T) {
	c, err := New("/", "", []Section{{Heading: "Chapters", Entries: []ChapterEntry{{Index: "bonus/vscode", Title: "VS Code"}}}})
	require.NoError(t, err)
	assert.Equal(t, "/bonus/vscode", c.Href("bonus/vscode"))
}
