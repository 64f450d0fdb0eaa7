package core

import (
	"context"
	"log"
)

// Wiki composes the stores and collaborators into the lifecycle workflows.
// Every public workflow runs as one transaction; there is no other shared
// mutable state.
type Wiki struct {
	DB
	Analyzer Analyzer
	Blobs    BlobStore
}

// getDoc loads an identity record and one revision of its markup. It returns
// nil for absent documents. revision < 0 means the newest revision. The
// markup of hidden documents is blanked.
func getDoc(tx Tx, fullTitle string, revision int) (*Doc, error) {
	info, err := tx.GetInfo(fullTitle)
	if err != nil || info == nil {
		return nil, err
	}
	rev, err := tx.GetRevision(info.DocID, revision)
	if err != nil || rev == nil {
		return nil, err
	}
	var doc = NewDoc(info, rev)
	if doc.State == StateHidden {
		doc.Markup = ""
	}
	return doc, nil
}

// save performs the three ordered effects of persisting a document: backlink
// deltas first (they need the previous markup), then the identity upsert
// (which refreshes the title mapping), then the revision append.
func (w *Wiki) save(tx Tx, prev, next *Doc) error {
	if err := w.updateBacklinks(tx, prev, next); err != nil {
		return err
	}
	if err := tx.UpsertInfo(&next.Info); err != nil {
		return err
	}
	return tx.AppendRevision(&Revision{
		DocID:    next.DocID,
		Revision: next.Info.Revision,
		Markup:   next.Markup,
	})
}

// createIgnoringCategory transitions a skeleton to normal and persists it
// without consulting the category engine. The category engine itself uses it
// to synthesize category documents, so it must not recurse back.
func (w *Wiki) createIgnoringCategory(tx Tx, next *Doc, actor *User, comment string) error {
	next.State = StateNormal
	next.Info.Revision++
	if err := tx.AddDocCount(1); err != nil {
		return err
	}
	if err := logDocAction(tx, ActionCreate, nil, next, actor, comment); err != nil {
		return err
	}
	return w.save(tx, nil, next)
}

// deleteIgnoringCategory transitions a document to deleted, blanking its
// markup, again without consulting the category engine.
func (w *Wiki) deleteIgnoringCategory(tx Tx, prev *Doc, actor *User, comment string) error {
	var next = *prev
	next.State = StateDeleted
	next.Markup = ""
	next.Info.Revision++
	if err := tx.AddDocCount(-1); err != nil {
		return err
	}
	if err := logDocAction(tx, ActionDelete, prev, &next, actor, comment); err != nil {
		return err
	}
	return w.save(tx, prev, &next)
}

// render builds the HTML of a document: file documents embed their own
// payload, category documents append their member listing, embedded file
// titles resolve to blob URLs.
func (w *Wiki) render(tx Tx, doc *Doc) (string, error) {
	var categoryMarkup string
	if doc.Type == Category {
		var err error
		categoryMarkup, err = w.categoryMarkup(tx, doc.Members)
		if err != nil {
			return "", err
		}
	}

	var fileMarkup string
	if doc.Type == File {
		var _, title = SplitTitle(doc.FullTitle)
		fileMarkup = "[@[" + title + "]]\n\n"
	}

	var fileTitles = w.Analyzer.FileTitles(fileMarkup + doc.Markup)
	filePaths, err := w.filePaths(tx, fileTitles)
	if err != nil {
		return "", err
	}

	return w.Analyzer.Render(fileMarkup+doc.Markup+categoryMarkup, doc.FullTitle, filePaths), nil
}

// filePaths resolves embedded file titles (without prefix) to blob URLs.
// Files which don't exist or are not in the normal state stay unresolved.
func (w *Wiki) filePaths(tx Tx, titles []string) (map[string]string, error) {
	var paths = make(map[string]string, len(titles))
	infos, err := tx.GetInfosByTitle(WithPrefix(titles, PrefixFile))
	if err != nil {
		return nil, err
	}
	for i, info := range infos {
		if info != nil && info.State == StateNormal && info.FileKey != "" {
			paths[titles[i]] = w.Blobs.ResolveURL(info.FileKey)
		}
	}
	return paths, nil
}

// ReadDocument loads and renders a document. revision < 0 means the newest
// revision; older revisions of deleted documents stay readable.
func (w *Wiki) ReadDocument(ctx context.Context, fullTitle string, actor *User, revision int) (*Doc, error) {
	fullTitle = NormalizeTitle(fullTitle)
	var doc *Doc
	var err = w.Transaction(ctx, func(tx Tx) error {
		d, err := getDoc(tx, fullTitle, revision)
		if err != nil {
			return err
		}
		if d == nil || (d.State == StateDeleted && revision < 0) {
			return denied("the document does not exist")
		}
		if err := CanRead(&d.Info, actor.Group); err != nil {
			return err
		}
		d.HTML, err = w.render(tx, d)
		if err != nil {
			return err
		}
		doc = d
		return nil
	})
	return doc, err
}

func (w *Wiki) createDocument(tx Tx, fullTitle, markup string, actor *User, comment string, file *Upload) error {
	fullTitle = NormalizeTitle(fullTitle)
	old, err := tx.GetInfo(fullTitle)
	if err != nil {
		return err
	}
	if err := CanCreate(old, fullTitle, actor.Group, file != nil); err != nil {
		return err
	}

	next, err := EmptyDoc(fullTitle)
	if err != nil {
		return err
	}
	if old != nil {
		// recreation of a deleted document keeps id, revision and authority
		next.DocID = old.DocID
		next.Info.Revision = old.Revision
		next.Authority = old.Authority
	}

	if file != nil {
		key, err := w.Blobs.Put(file.Name, file.Data)
		if err != nil {
			return err
		}
		next.FileKey = key
	}

	if markup == "" {
		markup = next.Markup // the type's skeleton
	}
	next.Markup, err = w.checkCategory(markup, next.FullTitle)
	if err != nil {
		return err
	}

	if err := w.categorize(tx, next.DocID, "", next.Markup); err != nil {
		return err
	}
	return w.createIgnoringCategory(tx, next, actor, comment)
}

func (w *Wiki) CreateDocument(ctx context.Context, fullTitle, markup string, actor *User, comment string, file *Upload) error {
	return w.Transaction(ctx, func(tx Tx) error {
		return w.createDocument(tx, fullTitle, markup, actor, comment, file)
	})
}

func (w *Wiki) EditDocument(ctx context.Context, fullTitle, markup string, actor *User, comment string) error {
	fullTitle = NormalizeTitle(fullTitle)
	return w.Transaction(ctx, func(tx Tx) error {
		prev, err := getDoc(tx, fullTitle, -1)
		if err != nil {
			return err
		}
		if prev == nil {
			return denied("the document does not exist")
		}
		if err := CanEdit(&prev.Info, actor.Group); err != nil {
			return err
		}

		var next = *prev
		next.Markup, err = w.checkCategory(markup, prev.FullTitle)
		if err != nil {
			return err
		}
		next.Info.Revision++

		if err := w.categorize(tx, prev.DocID, prev.Markup, next.Markup); err != nil {
			return err
		}
		if err := logDocAction(tx, ActionEdit, prev, &next, actor, comment); err != nil {
			return err
		}
		return w.save(tx, prev, &next)
	})
}

func (w *Wiki) DeleteDocument(ctx context.Context, fullTitle string, actor *User, comment string) error {
	fullTitle = NormalizeTitle(fullTitle)
	return w.Transaction(ctx, func(tx Tx) error {
		prev, err := getDoc(tx, fullTitle, -1)
		if err != nil {
			return err
		}
		if prev == nil {
			return denied("the document does not exist")
		}
		if err := CanDelete(&prev.Info, actor.Group); err != nil {
			return err
		}

		if prev.Type == File && prev.FileKey != "" {
			if err := w.Blobs.Delete(prev.FileKey); err != nil {
				log.Printf("deleting blob %s: %v", prev.FileKey, err)
			}
		}

		if err := w.categorize(tx, prev.DocID, prev.Markup, ""); err != nil {
			return err
		}
		return w.deleteIgnoringCategory(tx, prev, actor, comment)
	})
}

func (w *Wiki) MoveDocument(ctx context.Context, fullTitle string, actor *User, newFullTitle, comment string) error {
	fullTitle = NormalizeTitle(fullTitle)
	newFullTitle = NormalizeTitle(newFullTitle)
	return w.Transaction(ctx, func(tx Tx) error {
		prev, err := tx.GetInfo(fullTitle)
		if err != nil {
			return err
		}
		if prev == nil {
			return denied("the document does not exist")
		}
		existing, err := tx.GetInfo(newFullTitle)
		if err != nil {
			return err
		}
		if existing != nil {
			return denied("document %q already exists", newFullTitle)
		}
		if err := CanMove(prev, newFullTitle, actor.Group); err != nil {
			return err
		}

		var next = *prev
		next.FullTitle = newFullTitle

		if err := logInfoAction(tx, ActionMove, prev, &next, actor, comment); err != nil {
			return err
		}
		if err := tx.SetDocLogTitles(next.DocID, next.FullTitle); err != nil {
			return err
		}
		return tx.UpsertInfo(&next)
	})
}

func (w *Wiki) ChangeAuthority(ctx context.Context, fullTitle string, action Action, groups []Group, actor *User, comment string) error {
	fullTitle = NormalizeTitle(fullTitle)
	return w.Transaction(ctx, func(tx Tx) error {
		prev, err := tx.GetInfo(fullTitle)
		if err != nil {
			return err
		}
		if prev == nil {
			return denied("the document does not exist")
		}
		if err := CanChangeAuthority(prev, groups, actor.Group); err != nil {
			return err
		}

		var next = *prev
		next.Authority = prev.Authority.Clone()
		next.Authority[action] = groups

		if err := logInfoAction(tx, ActionChangeAuthority, prev, &next, actor, comment); err != nil {
			return err
		}
		return tx.UpsertInfo(&next)
	})
}

func (w *Wiki) HideDocument(ctx context.Context, fullTitle string, actor *User, comment string) error {
	return w.changeState(ctx, fullTitle, actor, comment, StateHidden, CanHide)
}

// ShowDocument unhides a document, returning it to the deleted state.
func (w *Wiki) ShowDocument(ctx context.Context, fullTitle string, actor *User, comment string) error {
	return w.changeState(ctx, fullTitle, actor, comment, StateDeleted, CanShow)
}

func (w *Wiki) changeState(ctx context.Context, fullTitle string, actor *User, comment string, state DocState, check func(*Info, Group) error) error {
	fullTitle = NormalizeTitle(fullTitle)
	return w.Transaction(ctx, func(tx Tx) error {
		prev, err := tx.GetInfo(fullTitle)
		if err != nil {
			return err
		}
		if prev == nil {
			return denied("the document does not exist")
		}
		if err := check(prev, actor.Group); err != nil {
			return err
		}

		var next = *prev
		next.State = state

		if err := logInfoAction(tx, ActionChangeState, prev, &next, actor, comment); err != nil {
			return err
		}
		return tx.UpsertInfo(&next)
	})
}

func (w *Wiki) UploadFile(ctx context.Context, fullTitle, markup string, file *Upload, actor *User, comment string) error {
	fullTitle = NormalizeTitle(fullTitle)
	if file == nil {
		return denied("no file attached")
	}
	if err := CanUploadFile(fullTitle, int64(len(file.Data))); err != nil {
		return err
	}
	return w.Transaction(ctx, func(tx Tx) error {
		return w.createDocument(tx, fullTitle, markup, actor, comment, file)
	})
}

// History returns the audit log of a document, newest first.
func (w *Wiki) History(ctx context.Context, fullTitle string, page, count int) ([]DocLog, error) {
	if count <= 0 {
		return nil, denied("the count must be positive")
	}
	if page < 1 {
		page = 1
	}
	fullTitle = NormalizeTitle(fullTitle)
	var logs []DocLog
	var err = w.Transaction(ctx, func(tx Tx) error {
		info, err := tx.GetInfo(fullTitle)
		if err != nil {
			return err
		}
		if info == nil {
			return denied("the document does not exist")
		}
		logs, err = tx.DocLogs(info.DocID, count, (page-1)*count)
		return err
	})
	return logs, err
}

// Backlinks returns the backlink record of a title and a rendered listing
// of it. The record is nil if nothing references the title.
func (w *Wiki) Backlinks(ctx context.Context, fullTitle string) (*Backlink, string, error) {
	fullTitle = NormalizeTitle(fullTitle)
	var backlink *Backlink
	var html string
	var err = w.Transaction(ctx, func(tx Tx) error {
		var err error
		backlink, err = tx.GetBacklink(fullTitle)
		if err != nil || backlink == nil {
			return err
		}
		html = w.Analyzer.Render(backlinkMarkup(backlink), fullTitle, nil)
		return nil
	})
	return backlink, html, err
}

// AllTitles lists the titles of all normal documents, from the mapping
// projection.
func (w *Wiki) AllTitles(ctx context.Context) ([]string, error) {
	var titles []string
	var err = w.Transaction(ctx, func(tx Tx) error {
		var err error
		titles, err = tx.AllTitles()
		return err
	})
	return titles, err
}

// Initialize bootstraps the two protected category documents, the counters
// and the system user. It is idempotent.
func (w *Wiki) Initialize(ctx context.Context) error {
	return w.Transaction(ctx, func(tx Tx) error {
		root, err := tx.GetInfo(RootCategoryTitle)
		if err != nil {
			return err
		}
		if root != nil {
			return nil // already initialized
		}

		if err := tx.EnsureMeta(); err != nil {
			return err
		}

		var sys = SystemUser()
		existing, err := tx.GetUserByEmail(sys.Email)
		if err != nil {
			return err
		}
		if existing == nil {
			if err := tx.InsertUser(sys); err != nil {
				return err
			}
			if err := tx.AddUserCount(1); err != nil {
				return err
			}
		}

		uncategorized, err := EmptyDoc(UncategorizedTitle)
		if err != nil {
			return err
		}
		uncategorized.Authority[ActionEdit] = []Group{GroupManager, GroupDev}
		uncategorized.Markup = "[#[" + PrefixCategory + "]]"

		rootDoc, err := EmptyDoc(RootCategoryTitle)
		if err != nil {
			return err
		}
		rootDoc.Authority[ActionEdit] = []Group{GroupManager, GroupDev}
		rootDoc.Members = []DocID{uncategorized.DocID}
		rootDoc.Markup = "" // the root category is never itself categorized

		if err := w.createIgnoringCategory(tx, uncategorized, sys, ""); err != nil {
			return err
		}
		return w.createIgnoringCategory(tx, rootDoc, sys, "")
	})
}
