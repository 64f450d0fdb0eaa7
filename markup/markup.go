// Package markup implements the wiki markup dialect: commonmark plus wiki
// tags for categories, anchors, file embeds, template embeds and redirects.
package markup

import (
	"regexp"
	"strings"
)

// Wiki tags. The inner text may contain escaped brackets, pipes and hashes.
//
//	[#[title]]            category declaration
//	[[fullTitle|label]]   anchor
//	[@[title|label]]      file embed
//	[*[title]]            template embed
//	[>[fullTitle]]        redirect
var (
	categoryRe = regexp.MustCompile(`\[#\[((?:\\.|[^\]\\])+)\]\]`)
	anchorRe   = regexp.MustCompile(`\[\[((?:\\.|[^\]\\])+)\]\]`)
	fileRe     = regexp.MustCompile(`\[@\[((?:\\.|[^\]\\])+)\]\]`)
	templateRe = regexp.MustCompile(`\[\*\[((?:\\.|[^\]\\])+)\]\]`)
	redirectRe = regexp.MustCompile(`\[>\[((?:\\.|[^\]\\])+)\]\]`)
)

// Default is the stateless analyzer for this dialect.
type Default struct{}

func (Default) CategoryTitles(markup string) []string {
	return extract(categoryRe, markup)
}

func (Default) AnchorTitles(markup string) []string {
	return extract(anchorRe, markup)
}

func (Default) FileTitles(markup string) []string {
	return extract(fileRe, markup)
}

func (Default) TemplateTitles(markup string) []string {
	return extract(templateRe, markup)
}

func (Default) RedirectTitle(markup string) (string, bool) {
	var match = redirectRe.FindStringSubmatch(markup)
	if match == nil {
		return "", false
	}
	var title = stripFragment(titlePart(match[1]))
	if title == "" {
		return "", false
	}
	return title, true
}

// extract returns the deduplicated titles of all tag occurrences, in order
// of appearance, with labels and fragments stripped.
func extract(re *regexp.Regexp, markup string) []string {
	var titles = []string{}
	var seen = map[string]struct{}{}
	for _, match := range re.FindAllStringSubmatch(markup, -1) {
		var title = stripFragment(titlePart(match[1]))
		if title == "" {
			continue
		}
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}
		titles = append(titles, title)
	}
	return titles
}

// titlePart cuts the inner text at the first unescaped pipe. Escapes stay in
// place so that stripFragment can still tell \# and # apart.
func titlePart(inner string) string {
	return cutUnescaped(inner, '|')
}

// stripFragment cuts a title at the first unescaped hash and unescapes the
// result.
func stripFragment(title string) string {
	return unescape(strings.TrimSpace(cutUnescaped(title, '#')))
}

// labelPart returns the text after the first unescaped pipe, or the title
// itself if there is none.
func labelPart(inner string) string {
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '\\':
			i++
		case '|':
			return unescape(inner[i+1:])
		}
	}
	return unescape(inner)
}

func cutUnescaped(s string, sep byte) string {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			return s[:i]
		}
	}
	return s
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
