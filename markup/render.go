package markup

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/wansing/seedling/core"
	"gitlab.com/golang-commonmark/markdown"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var markdownParser = markdown.New(markdown.HTML(false), markdown.Linkify(true), markdown.Breaks(true), markdown.MaxNesting(10))

// DocPath returns the read URL of a full title.
func DocPath(fullTitle string) string {
	return "/r/" + url.PathEscape(fullTitle)
}

// Render translates wiki markup to HTML. Wiki tags are rewritten to
// commonmark constructs first, then the whole body runs through the
// commonmark parser, then external anchors in the resulting HTML get their
// rel and target attributes.
func (Default) Render(src, fullTitle string, filePaths map[string]string) string {
	var body, categories = replaceTags(src, filePaths)

	if len(categories) > 0 {
		var links = make([]string, len(categories))
		for i, title := range categories {
			var full = core.JoinTitle(core.PrefixCategory, title)
			links[i] = "[" + title + "](" + DocPath(full) + ")"
		}
		body += "\n\nCategories: " + strings.Join(links, ", ") + "\n"
	}

	var rendered = markdownParser.RenderToString([]byte(body))

	rewritten, err := rewriteAnchors(rendered)
	if err != nil {
		return rendered
	}
	return rewritten
}

// replaceTags rewrites each wiki tag to a commonmark equivalent and strips
// the category declarations, returning them separately.
func replaceTags(src string, filePaths map[string]string) (string, []string) {
	var categories = []string{}
	src = categoryRe.ReplaceAllStringFunc(src, func(tag string) string {
		var inner = categoryRe.FindStringSubmatch(tag)[1]
		if title := stripFragment(titlePart(inner)); title != "" {
			categories = append(categories, title)
		}
		return ""
	})

	src = redirectRe.ReplaceAllStringFunc(src, func(tag string) string {
		var inner = redirectRe.FindStringSubmatch(tag)[1]
		var title = stripFragment(titlePart(inner))
		if title == "" {
			return ""
		}
		return "Redirect to [" + title + "](" + DocPath(title) + ")"
	})

	src = fileRe.ReplaceAllStringFunc(src, func(tag string) string {
		var inner = fileRe.FindStringSubmatch(tag)[1]
		var title = stripFragment(titlePart(inner))
		var label = labelPart(inner)
		if path, ok := filePaths[title]; ok {
			return "![" + label + "](" + path + ")"
		}
		return "[" + label + "](" + DocPath(core.JoinTitle(core.PrefixFile, title)) + ")"
	})

	src = templateRe.ReplaceAllStringFunc(src, func(tag string) string {
		var inner = templateRe.FindStringSubmatch(tag)[1]
		var title = stripFragment(titlePart(inner))
		return "[" + title + "](" + DocPath(core.JoinTitle(core.PrefixTemplate, title)) + ")"
	})

	src = anchorRe.ReplaceAllStringFunc(src, func(tag string) string {
		var inner = anchorRe.FindStringSubmatch(tag)[1]
		var title = titlePart(inner)
		var label = labelPart(inner)
		return "[" + label + "](" + DocPath(stripFragment(title)) + ")"
	})

	return src, categories
}

// rewriteAnchors parses rendered HTML and marks external links with
// target="_blank" and rel="noopener".
func rewriteAnchors(rendered string) (string, error) {
	nodes, err := html.ParseFragment(strings.NewReader(rendered), &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	})
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	for _, node := range nodes {
		walkAnchors(node)
		if err := html.Render(&buf, node); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func walkAnchors(node *html.Node) {
	if node.Type == html.ElementNode && node.DataAtom == atom.A {
		for _, attr := range node.Attr {
			if attr.Key == "href" && (strings.HasPrefix(attr.Val, "http://") || strings.HasPrefix(attr.Val, "https://")) {
				node.Attr = append(node.Attr,
					html.Attribute{Key: "target", Val: "_blank"},
					html.Attribute{Key: "rel", Val: "noopener"},
				)
				break
			}
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		walkAnchors(child)
	}
}
