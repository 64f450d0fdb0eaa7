package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryTitles(t *testing.T) {
	var src = "[#[음악]]\nsome text [#[역사]]\n[#[음악]]"
	assert.Equal(t, []string{"음악", "역사"}, Default{}.CategoryTitles(src))
}

func TestAnchorTitles(t *testing.T) {
	var src = "see [[위키:도움말|help]] and [[A]] and [[A#section]]"
	assert.Equal(t, []string{"위키:도움말", "A"}, Default{}.AnchorTitles(src))
}

func TestAnchorDoesNotMatchOtherTags(t *testing.T) {
	var src = "[#[분류]] [@[그림.png]] [*[머리말]] [>[목적지]]"
	assert.Equal(t, []string{}, Default{}.AnchorTitles(src))
}

func TestFileAndTemplateTitles(t *testing.T) {
	var src = "[@[그림.png|alt text]]\n[*[머리말]]\n[@[그림.png]]"
	assert.Equal(t, []string{"그림.png"}, Default{}.FileTitles(src))
	assert.Equal(t, []string{"머리말"}, Default{}.TemplateTitles(src))
}

func TestRedirectTitle(t *testing.T) {
	title, ok := Default{}.RedirectTitle("[>[위키:규정#벌점]]")
	require.True(t, ok)
	assert.Equal(t, "위키:규정", title)

	_, ok = Default{}.RedirectTitle("no redirect here")
	assert.False(t, ok)

	// only the first one counts
	title, ok = Default{}.RedirectTitle("[>[A]] [>[B]]")
	require.True(t, ok)
	assert.Equal(t, "A", title)
}

func TestEscapes(t *testing.T) {
	// escaped pipe and hash belong to the title
	assert.Equal(t, []string{"a|b"}, Default{}.AnchorTitles(`[[a\|b]]`))
	assert.Equal(t, []string{"a#b"}, Default{}.AnchorTitles(`[[a\#b]]`))
	assert.Equal(t, []string{"a]b"}, Default{}.AnchorTitles(`[[a\]b]]`))

	// unescaped pipe starts the label, unescaped hash the fragment
	assert.Equal(t, []string{"a"}, Default{}.AnchorTitles(`[[a|b]]`))
	assert.Equal(t, []string{"a"}, Default{}.AnchorTitles(`[[a#b]]`))
}

func TestLabelPart(t *testing.T) {
	assert.Equal(t, "label", labelPart("title|label"))
	assert.Equal(t, "title", labelPart("title"))
	assert.Equal(t, "a|b", labelPart(`a\|b`))
}

func TestRenderAnchor(t *testing.T) {
	var html = Default{}.Render("read [[위키:도움말|the help]]", "A", nil)
	assert.Contains(t, html, `href="/r/%EC%9C%84%ED%82%A4:%EB%8F%84%EC%9B%80%EB%A7%90"`)
	assert.Contains(t, html, "the help")
}

func TestRenderCategoryFooter(t *testing.T) {
	var html = Default{}.Render("[#[음악]]\nbody", "A", nil)
	assert.Contains(t, html, "Categories:")
	assert.Contains(t, html, `href="/r/%EB%B6%84%EB%A5%98:%EC%9D%8C%EC%95%85"`)
	assert.NotContains(t, html, "[#[")
}

func TestRenderFile(t *testing.T) {
	// resolved files render as images, unresolved ones as links
	var html = Default{}.Render("[@[그림.png|a picture]]", "A", map[string]string{"그림.png": "/files/abc.png"})
	assert.Contains(t, html, `<img src="/files/abc.png"`)
	assert.Contains(t, html, `alt="a picture"`)

	html = Default{}.Render("[@[그림.png]]", "A", nil)
	assert.Contains(t, html, `href="/r/%ED%8C%8C%EC%9D%BC:%EA%B7%B8%EB%A6%BC.png"`)
}

func TestRenderRedirect(t *testing.T) {
	var html = Default{}.Render("[>[목적지]]", "A", nil)
	assert.Contains(t, html, "Redirect to")
	assert.Contains(t, html, `href="/r/%EB%AA%A9%EC%A0%81%EC%A7%80"`)
}

func TestRenderExternalLink(t *testing.T) {
	var html = Default{}.Render("see https://example.com/", "A", nil)
	assert.Contains(t, html, `target="_blank"`)
	assert.Contains(t, html, `rel="noopener"`)
}

func TestRenderRawHTMLDisabled(t *testing.T) {
	var html = Default{}.Render("<script>alert(1)</script>", "A", nil)
	assert.NotContains(t, html, "<script>")
}
