package core

// updateBacklinks applies the reference delta between two documents of the
// same identity. Each relation is diffed independently: anchors, embeds
// (files and templates) and the redirect target, which is zero-or-one.
// Records whose relation sets all run empty are garbage-collected by the
// store on removal.
func (w *Wiki) updateBacklinks(tx Tx, prev, next *Doc) error {
	var prevMarkup, nextMarkup string
	if prev != nil {
		prevMarkup = prev.Markup
	}
	if next != nil {
		nextMarkup = next.Markup
	}
	if prevMarkup == nextMarkup {
		return nil
	}

	var source string
	if next != nil {
		source = next.FullTitle
	} else {
		source = prev.FullTitle
	}

	var prevLinks = normalizeTitles(w.Analyzer.AnchorTitles(prevMarkup))
	var nextLinks = normalizeTitles(w.Analyzer.AnchorTitles(nextMarkup))
	if err := w.applyBacklinkDelta(tx, RelLink, source, prevLinks, nextLinks); err != nil {
		return err
	}

	var prevEmbeds = embedTitles(w.Analyzer, prevMarkup)
	var nextEmbeds = embedTitles(w.Analyzer, nextMarkup)
	if err := w.applyBacklinkDelta(tx, RelEmbed, source, prevEmbeds, nextEmbeds); err != nil {
		return err
	}

	var prevRedirects, nextRedirects []string
	if target, ok := w.Analyzer.RedirectTitle(prevMarkup); ok {
		prevRedirects = []string{NormalizeTitle(target)}
	}
	if target, ok := w.Analyzer.RedirectTitle(nextMarkup); ok {
		nextRedirects = []string{NormalizeTitle(target)}
	}
	return w.applyBacklinkDelta(tx, RelRedirect, source, prevRedirects, nextRedirects)
}

func (w *Wiki) applyBacklinkDelta(tx Tx, relation Relation, source string, prev, next []string) error {
	for _, target := range diffTitles(prev, next) {
		if err := tx.InsertBacklink(relation, source, target); err != nil {
			return err
		}
	}
	for _, target := range diffTitles(next, prev) {
		if err := tx.RemoveBacklink(relation, source, target); err != nil {
			return err
		}
	}
	return nil
}

// embedTitles collects the full titles a markup embeds: file references and
// template references, each qualified with their prefix.
func embedTitles(analyzer Analyzer, markup string) []string {
	var titles = WithPrefix(analyzer.FileTitles(markup), PrefixFile)
	return append(titles, WithPrefix(analyzer.TemplateTitles(markup), PrefixTemplate)...)
}

// backlinkMarkup renders the three reference sets of a backlink record as
// one markup listing.
func backlinkMarkup(backlink *Backlink) string {
	var markup = alignedMarkup(backlink.LinkedFrom, "Linked from")
	markup += alignedMarkup(backlink.EmbeddedIn, "Embedded in")
	markup += alignedMarkup(backlink.RedirectedFrom, "Redirected from")
	return markup
}
