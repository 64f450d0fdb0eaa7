package core

// An Analyzer extracts reference lists from markup and renders it. The
// default implementation lives in the markup package; the engines only rely
// on this contract.
type Analyzer interface {
	// CategoryTitles returns the declared category titles, without prefix,
	// in order of appearance and without duplicates.
	CategoryTitles(markup string) []string

	// AnchorTitles returns the full titles of all internal cross-references,
	// without duplicates and with fragments stripped.
	AnchorTitles(markup string) []string

	// FileTitles returns the titles of embedded files, without prefix.
	FileTitles(markup string) []string

	// TemplateTitles returns the titles of embedded templates, without prefix.
	TemplateTitles(markup string) []string

	// RedirectTitle returns the declared redirect target, if any.
	RedirectTitle(markup string) (string, bool)

	// Render translates markup to HTML. filePaths maps embedded file titles
	// (without prefix) to resolved URLs; unresolved files render as plain
	// links.
	Render(markup, fullTitle string, filePaths map[string]string) string
}
