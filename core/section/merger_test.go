package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_AppendsMissingSection(t *testing.T) {
	t.Parallel()
	doc := Document{ID: "42", Title: "Release notes", Version: 7, Body: "<p>intro</p>"}

	out, err := Merger{}.Merge(doc, "v1", "<table></table>")
	require.NoError(t, err)
	assert.Equal(t, "<p>intro</p><h1>v1</h1>\n<table></table>\n", out.Body)
	assert.Equal(t, 8, out.Version)
	assert.Equal(t, "Release notes", out.Title)
	assert.Equal(t, "42", out.ID)
	// The input document is left alone.
	assert.Equal(t, "<p>intro</p>", doc.Body)
}

func TestMerge_Idempotent(t *testing.T) {
	t.Parallel()
	m := Merger{Heading: DefaultHeading}
	doc := Document{Version: 1, Body: "<h1>v0</h1>\nold\n"}

	first, err := m.Merge(doc, "v1", "C")
	require.NoError(t, err)
	second, err := m.Merge(first, "v1", "C")
	require.NoError(t, err)

	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, 2, first.Version)
	assert.Equal(t, 3, second.Version)
}

func TestMerge_ReplacesOnlyItsOwnSection(t *testing.T) {
	t.Parallel()
	body := "<h1>v1</h1>\nold one\n<h2>details</h2>keep? no\n<h1>v1.1</h1>\nnewer\n<h1 class=\"x\">v2</h1>\ntwo\n"

	out, err := Merger{}.Merge(Document{Body: body}, "v1", "NEW")
	require.NoError(t, err)
	assert.Equal(t, "<h1>v1</h1>\nNEW\n<h1>v1.1</h1>\nnewer\n<h1 class=\"x\">v2</h1>\ntwo\n", out.Body)

	out, err = Merger{}.Merge(Document{Body: body}, "v1.1", "NEW")
	require.NoError(t, err)
	assert.Equal(t, "<h1>v1</h1>\nold one\n<h2>details</h2>keep? no\n<h1>v1.1</h1>\nNEW\n<h1 class=\"x\">v2</h1>\ntwo\n", out.Body)
}

func TestMerge_LastSectionRunsToEnd(t *testing.T) {
	t.Parallel()
	out, err := Merger{}.Merge(Document{Body: "<h1>v1</h1>\na\n<h1>v2</h1>\nb\ntrailing"}, "v2", "B")
	require.NoError(t, err)
	assert.Equal(t, "<h1>v1</h1>\na\n<h1>v2</h1>\nB\n", out.Body)
}

func TestMerge_OtherHeadingLevel(t *testing.T) {
	t.Parallel()
	m := Merger{Heading: HeadingFormat{Level: 2}}
	body := "<h1>Product</h1><h2>v1</h2>\nold\n<h2>v2</h2>\nx\n"

	out, err := m.Merge(Document{Body: body}, "v1", "new")
	require.NoError(t, err)
	assert.Equal(t, "<h1>Product</h1><h2>v1</h2>\nnew\n<h2>v2</h2>\nx\n", out.Body)
}

func TestMerge_EscapesLabel(t *testing.T) {
	t.Parallel()
	out, err := Merger{}.Merge(Document{}, "v1 <beta>", "C")
	require.NoError(t, err)
	assert.Equal(t, "<h1>v1 &lt;beta&gt;</h1>\nC\n", out.Body)

	again, err := Merger{}.Merge(out, "v1 <beta>", "C")
	require.NoError(t, err)
	assert.Equal(t, out.Body, again.Body)
}

func TestMerge_Validation(t *testing.T) {
	t.Parallel()
	_, err := Merger{}.Merge(Document{}, "  ", "C")
	require.Error(t, err)

	_, err = Merger{Heading: HeadingFormat{Level: 7}}.Merge(Document{}, "v1", "C")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "heading level")
}

func TestHeadingFormat_NextBoundary(t *testing.T) {
	t.Parallel()
	h := HeadingFormat{Level: 1}
	assert.Equal(t, -1, h.nextBoundary("<h10>x</h10><hr/>"))
	assert.Equal(t, 3, h.nextBoundary("abc<h1>x</h1>"))
	assert.Equal(t, 0, h.nextBoundary("<h1 id=\"a\">x</h1>"))
	assert.Equal(t, -1, h.nextBoundary("<h1"))
}
