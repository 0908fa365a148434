package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head><title>ignored</title></head><body>
<h1 id="firstHeading">Go (programming language)</h1>
<div id="mw-content-text"><div class="mw-parser-output">
<div class="infobox">Paradigm: concurrent, imperative data that must not leak into the text</div>
<p>Go is a statically typed, compiled high-level programming language designed at Google.</p>
<p>short</p>
<table><tr><td>Typing discipline table row that must be removed entirely</td></tr></table>
<h2>History<span class="mw-editsection">[edit]</span></h2>
<p>Go was publicly announced in November 2009, and version 1.0 was released in March 2012.</p>
<ul><li>Robert Griesemer worked on the language design from the start.</li></ul>
<h3>Version 1 and compatibility[edit]</h3>
<p>Go 1 guarantees compatibility   for the language    specification.</p>
<h2>See also</h2>
<h2>References</h2>
<div class="reflist">reference list contents that should disappear from the output</div>
</div></div>
</body></html>`

func TestCleanArticleHTML(t *testing.T) {
	result, err := cleanArticleHTML(samplePage)
	require.NoError(t, err)

	assert.Equal(t, "Go (programming language)", result.Title)

	assert.Contains(t, result.CleanedText, "designed at Google")
	assert.Contains(t, result.CleanedText, "Robert Griesemer")

	// Noise elements are stripped before extraction
	assert.NotContains(t, result.CleanedText, "Typing discipline")
	assert.NotContains(t, result.CleanedText, "reference list contents")
	assert.NotContains(t, result.CleanedText, "Paradigm")

	// Fragments at or below the minimum length are dropped
	assert.NotContains(t, result.CleanedText, "short")

	// Whitespace runs collapse to single spaces
	assert.Contains(t, result.CleanedText, "compatibility for the language specification")
}

func TestCleanArticleHTML_MissingTitle(t *testing.T) {
	result, err := cleanArticleHTML(`<html><body><div id="mw-content-text"><div class="mw-parser-output"><p>Some long enough paragraph here.</p></div></div></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, defaultTitle, result.Title)
}

func TestCleanArticleHTML_DegradedWithoutMainContent(t *testing.T) {
	raw := `<html><body><h1 id="firstHeading">Orphan</h1><p>Body without the content container.</p></body></html>`
	result, err := cleanArticleHTML(raw)
	require.NoError(t, err)

	assert.Equal(t, "Orphan", result.Title)
	assert.Equal(t, raw, result.CleanedHTML)
	assert.Empty(t, result.CleanedText)
}

func TestExtractSections(t *testing.T) {
	result, err := cleanArticleHTML(samplePage)
	require.NoError(t, err)

	sections, err := extractSections(result.CleanedHTML)
	require.NoError(t, err)

	assert.Equal(t, []string{"History", "Version 1 and compatibility"}, sections)
}

func TestExtractSections_Denylist(t *testing.T) {
	html := `<h2>Overview</h2><h2>See also</h2><h2>References</h2><h2>External links</h2><h2>Notes</h2><h2>Contents</h2><h3>Details</h3>`
	sections, err := extractSections(html)
	require.NoError(t, err)
	assert.Equal(t, []string{"Overview", "Details"}, sections)
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", normalizeWhitespace("  a\n\tb   c  "))
	assert.Equal(t, "", normalizeWhitespace("   \n\t "))
}

func TestMinFragmentLengthBoundary(t *testing.T) {
	page := `<html><body><h1 id="firstHeading">T</h1><div id="mw-content-text"><div class="mw-parser-output">` +
		`<p>` + strings.Repeat("x", minFragmentLength) + `</p>` +
		`<p>` + strings.Repeat("y", minFragmentLength+1) + `</p>` +
		`</div></div></body></html>`

	result, err := cleanArticleHTML(page)
	require.NoError(t, err)

	// Exactly minFragmentLength characters is still noise; one more is kept
	assert.NotContains(t, result.CleanedText, "x")
	assert.Contains(t, result.CleanedText, strings.Repeat("y", minFragmentLength+1))
}
