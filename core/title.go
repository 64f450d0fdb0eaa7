package core

import "strings"

// Title prefixes. A full title is "prefix:title"; a missing or unknown prefix
// means the general namespace.
const (
	PrefixGeneral  = "일반"
	PrefixCategory = "분류"
	PrefixWiki     = "위키"
	PrefixFile     = "파일"
	PrefixTemplate = "틀"
)

const (
	uncategorizedName  = "미분류"
	RootCategoryTitle  = PrefixCategory + ":" + PrefixCategory
	UncategorizedTitle = PrefixCategory + ":" + uncategorizedName
)

var prefixes = []string{PrefixGeneral, PrefixCategory, PrefixWiki, PrefixFile, PrefixTemplate}

// SplitTitle splits a full title into prefix and local part.
func SplitTitle(fullTitle string) (string, string) {
	if i := strings.Index(fullTitle, ":"); i >= 0 {
		var head = fullTitle[:i]
		for _, prefix := range prefixes {
			if head == prefix {
				return head, fullTitle[i+1:]
			}
		}
	}
	return PrefixGeneral, fullTitle
}

func JoinTitle(prefix, title string) string {
	return prefix + ":" + title
}

// NormalizeTitle canonicalizes a full title. The general prefix is implicit:
// "일반:A" and "A" name the same document, stored as "A".
func NormalizeTitle(fullTitle string) string {
	var prefix, title = SplitTitle(fullTitle)
	if prefix == PrefixGeneral {
		return title
	}
	return JoinTitle(prefix, title)
}

func normalizeTitles(titles []string) []string {
	var result = make([]string, len(titles))
	for i, title := range titles {
		result[i] = NormalizeTitle(title)
	}
	return result
}

func TypeOfTitle(fullTitle string) DocType {
	var prefix, _ = SplitTitle(fullTitle)
	switch prefix {
	case PrefixCategory:
		return Category
	case PrefixWiki:
		return TypeWiki
	case PrefixFile:
		return File
	case PrefixTemplate:
		return Template
	default:
		return General
	}
}

// WithPrefix prepends the prefix to each title.
func WithPrefix(titles []string, prefix string) []string {
	var result = make([]string, len(titles))
	for i, title := range titles {
		result[i] = JoinTitle(prefix, title)
	}
	return result
}

// diffTitles returns the titles which are in next but not in prev, keeping
// the order of next.
func diffTitles(prev, next []string) []string {
	var result = []string{}
	for _, title := range next {
		var found = false
		for _, p := range prev {
			if p == title {
				found = true
				break
			}
		}
		if !found {
			result = append(result, title)
		}
	}
	return result
}
