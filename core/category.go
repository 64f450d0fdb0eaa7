package core

import (
	"sort"
	"strings"
)

// The category engine keeps the membership graph consistent. Category
// documents are created and deleted only here, through the ignoring-category
// primitives, never by direct user action.

// checkCategory validates and normalizes the category declarations of
// markup. No declaration is normalized to membership in the uncategorized
// category, except for the root category, which stays uncategorized. Invalid
// combinations are integrity errors, not denials: they are caught at the
// markup validation boundary, before anything is written.
func (w *Wiki) checkCategory(markup, fullTitle string) (string, error) {
	var titles = w.Analyzer.CategoryTitles(markup)

	if fullTitle == RootCategoryTitle {
		if len(titles) > 0 {
			return "", integrityf("the root category cannot be recategorized")
		}
		return markup, nil // the root category is never itself categorized
	}
	if len(titles) == 0 {
		return "[#[" + uncategorizedName + "]]\n" + markup, nil
	}
	if len(titles) >= 2 {
		for _, title := range titles {
			if title == uncategorizedName {
				return "", integrityf("a document cannot be both uncategorized and categorized")
			}
		}
	}
	return markup, nil
}

// categorize applies the category membership delta between two markups of
// the document id. Additions are applied before removals, so that a category
// which the document leaves and enters at once is never considered empty
// mid-transition.
func (w *Wiki) categorize(tx Tx, id DocID, prevMarkup, nextMarkup string) error {
	var prevTitles = w.Analyzer.CategoryTitles(prevMarkup)
	var nextTitles = w.Analyzer.CategoryTitles(nextMarkup)

	var added = WithPrefix(diffTitles(prevTitles, nextTitles), PrefixCategory)
	var removed = WithPrefix(diffTitles(nextTitles, prevTitles), PrefixCategory)

	if err := w.addToCategories(tx, id, added); err != nil {
		return err
	}
	return w.removeFromCategories(tx, id, removed)
}

// addToCategories appends id to the membership of each target category,
// synthesizing categories which don't exist or were deleted. Brand-new
// categories end up in the uncategorized category themselves, in one bulk
// append at the end.
func (w *Wiki) addToCategories(tx Tx, id DocID, fullTitles []string) error {
	if len(fullTitles) == 0 {
		return nil
	}

	infos, err := tx.GetInfosByTitle(fullTitles)
	if err != nil {
		return err
	}

	var newIDs []DocID
	for i, info := range infos {
		if info == nil || info.State == StateDeleted {
			var fullTitle = fullTitles[i]
			prev, err := getDoc(tx, fullTitle, -1)
			if err != nil {
				return err
			}
			next, err := EmptyDoc(fullTitle)
			if err != nil {
				return err
			}
			if prev != nil && prev.State == StateDeleted {
				// keep history continuity of the deleted category
				next.DocID = prev.DocID
				next.Info.Revision = prev.Info.Revision
				next.Authority = prev.Authority
			}
			if next.Type != Category {
				return integrityf("synthesized document %s is not a category", fullTitle)
			}
			next.Members = append(next.Members, id)
			newIDs = append(newIDs, next.DocID)
			if err := w.createIgnoringCategory(tx, next, SystemUser(), ""); err != nil {
				return err
			}
		} else {
			if info.Type != Category {
				return integrityf("document %s is not a category", info.FullTitle)
			}
			info.Members = append(info.Members, id)
			if err := tx.UpsertInfo(info); err != nil {
				return err
			}
		}
	}

	if len(newIDs) > 0 {
		uncategorized, err := tx.GetInfo(UncategorizedTitle)
		if err != nil {
			return err
		}
		if uncategorized == nil {
			return integrityf("the uncategorized category must exist")
		}
		uncategorized.Members = append(uncategorized.Members, newIDs...)
		return tx.UpsertInfo(uncategorized)
	}
	return nil
}

// A removalCascade accumulates the two disjoint outputs of the removal
// analysis: categories whose membership shrinks, and categories which go
// away entirely. Categories are cached by title, never re-fetched within one
// cascade.
type removalCascade struct {
	updates   map[string]*Info
	deletions []*Info
	deleted   map[string]struct{}
}

// removeFromCategories removes id from the membership of each target
// category, deleting categories which would become empty and recursively
// re-evaluating their own parent categories. All membership updates are
// applied first, then the deletions.
func (w *Wiki) removeFromCategories(tx Tx, id DocID, fullTitles []string) error {
	if len(fullTitles) == 0 {
		return nil
	}

	var cascade = &removalCascade{
		updates: make(map[string]*Info),
		deleted: make(map[string]struct{}),
	}
	if err := w.analyzeRemovals(tx, id, fullTitles, cascade); err != nil {
		return err
	}

	for _, info := range cascade.updates {
		if err := tx.UpsertInfo(info); err != nil {
			return err
		}
	}

	for _, info := range cascade.deletions {
		rev, err := tx.GetRevision(info.DocID, -1)
		if err != nil {
			return err
		}
		if rev == nil {
			return integrityf("category %s has no revision history", info.FullTitle)
		}
		if err := w.deleteIgnoringCategory(tx, NewDoc(info, rev), SystemUser(), ""); err != nil {
			return err
		}
	}
	return nil
}

func (w *Wiki) analyzeRemovals(tx Tx, id DocID, fullTitles []string, cascade *removalCascade) error {
	for _, fullTitle := range fullTitles {
		if err := w.analyzeRemoval(tx, id, fullTitle, cascade); err != nil {
			return err
		}
	}
	return nil
}

func (w *Wiki) analyzeRemoval(tx Tx, id DocID, fullTitle string, cascade *removalCascade) error {
	if _, ok := cascade.deleted[fullTitle]; ok {
		return nil // already condemned in this cascade
	}

	info, ok := cascade.updates[fullTitle]
	if !ok {
		loaded, err := tx.GetInfo(fullTitle)
		if err != nil {
			return err
		}
		if loaded == nil {
			return integrityf("category %s does not exist", fullTitle)
		}
		if loaded.Type != Category {
			return integrityf("document %s is not a category", fullTitle)
		}
		info = loaded
		cascade.updates[fullTitle] = info
	}

	if len(info.Members) == 1 && fullTitle != UncategorizedTitle && fullTitle != RootCategoryTitle {
		// id is the only member left: the category goes away, and its own
		// memberships are re-evaluated against the same working sets
		delete(cascade.updates, fullTitle)
		cascade.deleted[fullTitle] = struct{}{}
		info.Members = []DocID{}
		cascade.deletions = append(cascade.deletions, info)

		rev, err := tx.GetRevision(info.DocID, -1)
		if err != nil {
			return err
		}
		if rev == nil {
			return integrityf("category %s has no revision history", fullTitle)
		}
		var parents = WithPrefix(w.Analyzer.CategoryTitles(rev.Markup), PrefixCategory)
		return w.analyzeRemovals(tx, info.DocID, parents, cascade)
	}

	info.Members = removeMember(info.Members, id)
	return nil
}

func removeMember(members []DocID, id DocID) []DocID {
	for i, member := range members {
		if member == id {
			return append(members[:i], members[i+1:]...)
		}
	}
	return members
}

// categoryMarkup builds the member listing of a category page. Every member
// id must resolve to an identity record; a dangling member means the graph
// has diverged.
func (w *Wiki) categoryMarkup(tx Tx, members []DocID) (string, error) {
	infos, err := tx.GetInfosByID(members)
	if err != nil {
		return "", err
	}
	var fullTitles = make([]string, len(infos))
	for i, info := range infos {
		if info == nil {
			return "", integrityf("categorized document does not exist")
		}
		fullTitles[i] = info.FullTitle
	}
	return alignedMarkup(fullTitles, "Subordinate"), nil
}

// alignedMarkup renders a list of full titles as markup, grouped by prefix
// with the category prefix first and titles sorted within each group.
func alignedMarkup(fullTitles []string, heading string) string {
	if len(fullTitles) == 0 {
		return ""
	}

	var byPrefix = make(map[string][]string)
	for _, fullTitle := range fullTitles {
		var prefix, title = SplitTitle(fullTitle)
		byPrefix[prefix] = append(byPrefix[prefix], title)
	}

	var order = []string{}
	for prefix := range byPrefix {
		if prefix != PrefixCategory {
			order = append(order, prefix)
		}
	}
	sort.Strings(order)
	if _, ok := byPrefix[PrefixCategory]; ok {
		order = append([]string{PrefixCategory}, order...)
	}

	var b strings.Builder
	for _, prefix := range order {
		var titles = byPrefix[prefix]
		sort.Strings(titles)
		b.WriteString("\n")
		b.WriteString(heading)
		b.WriteString(" ")
		b.WriteString(prefix)
		b.WriteString("\n")
		for _, title := range titles {
			var fullTitle = title
			if prefix != PrefixGeneral {
				fullTitle = JoinTitle(prefix, title)
			}
			b.WriteString("[[" + fullTitle + "|" + title + "]]\n")
		}
	}
	return b.String()
}
