package core_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wansing/seedling/core"
	"github.com/wansing/seedling/markup"
	"github.com/wansing/seedling/sqldb"
)

// memBlobs keeps payloads in memory.
type memBlobs struct {
	data map[string][]byte
	n    int
}

func (m *memBlobs) Put(name string, data []byte) (string, error) {
	m.n++
	var key = fmt.Sprintf("blob-%d", m.n)
	m.data[key] = data
	return key, nil
}

func (m *memBlobs) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func (m *memBlobs) ResolveURL(key string) string {
	return "/files/" + key
}

func newTestWiki(t *testing.T) *core.Wiki {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1) // each connection gets its own in-memory database
	t.Cleanup(func() { db.Close() })

	var wiki = &core.Wiki{
		DB:       sqldb.New(db),
		Analyzer: markup.Default{},
		Blobs:    &memBlobs{data: map[string][]byte{}},
	}
	require.NoError(t, wiki.Initialize(context.Background()))
	return wiki
}

func user() *core.User {
	return &core.User{Email: "alice@example.com", Name: "alice", Group: core.GroupUser}
}

func manager() *core.User {
	return &core.User{Email: "mallory@example.com", Name: "mallory", Group: core.GroupManager}
}

func read(t *testing.T, wiki *core.Wiki, fullTitle string) *core.Doc {
	doc, err := wiki.ReadDocument(context.Background(), fullTitle, user(), -1)
	require.NoError(t, err, fullTitle)
	return doc
}

func TestInitialize(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	var root = read(t, wiki, "분류:분류")
	var uncategorized = read(t, wiki, "분류:미분류")

	assert.Equal(t, core.Category, root.Type)
	assert.Equal(t, core.StateNormal, root.State)
	assert.Equal(t, []core.DocID{uncategorized.DocID}, root.Members)
	assert.Empty(t, uncategorized.Members)

	// idempotent
	require.NoError(t, wiki.Initialize(ctx))
	meta, err := wiki.SiteMeta(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, meta.DocCount)
	assert.Equal(t, 1, meta.UserCount)
}

func TestCreateWithoutCategory(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	require.NoError(t, wiki.CreateDocument(ctx, "일반:A", "hello", user(), "", nil))

	var doc = read(t, wiki, "일반:A")
	assert.Equal(t, core.StateNormal, doc.State)
	assert.Equal(t, 1, doc.Info.Revision)
	assert.Contains(t, doc.Markup, "[#[미분류]]")
	assert.Contains(t, doc.Markup, "hello")

	var uncategorized = read(t, wiki, "분류:미분류")
	assert.Equal(t, []core.DocID{doc.DocID}, uncategorized.Members)
	assert.Equal(t, "A", doc.FullTitle) // the general prefix is implicit
	assert.Contains(t, uncategorized.HTML, "/r/A")
}

func TestCreateExistingDenied(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	require.NoError(t, wiki.CreateDocument(ctx, "A", "one", user(), "", nil))
	var err = wiki.CreateDocument(ctx, "A", "two", user(), "", nil)
	assert.True(t, core.IsDenial(err))
}

func TestCreateCategoryDirectlyDenied(t *testing.T) {
	var wiki = newTestWiki(t)
	var err = wiki.CreateDocument(context.Background(), "분류:X", "", manager(), "", nil)
	assert.True(t, core.IsDenial(err))
}

func TestCategorySynthesis(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	require.NoError(t, wiki.CreateDocument(ctx, "일반:A", "[#[X]]", user(), "", nil))

	var doc = read(t, wiki, "일반:A")
	var x = read(t, wiki, "분류:X")
	assert.Equal(t, core.Category, x.Type)
	assert.Equal(t, []core.DocID{doc.DocID}, x.Members)

	// the new category is itself uncategorized
	var uncategorized = read(t, wiki, "분류:미분류")
	assert.Equal(t, []core.DocID{x.DocID}, uncategorized.Members)
}

func TestCategorizeMoveMembership(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	require.NoError(t, wiki.CreateDocument(ctx, "일반:A", "[#[X]]", user(), "", nil))
	require.NoError(t, wiki.EditDocument(ctx, "일반:A", "[#[Y]]", user(), ""))

	var doc = read(t, wiki, "일반:A")
	assert.Equal(t, 2, doc.Info.Revision)

	// X lost its only member and is gone
	_, err := wiki.ReadDocument(ctx, "분류:X", user(), -1)
	assert.True(t, core.IsDenial(err))

	var y = read(t, wiki, "분류:Y")
	assert.Equal(t, []core.DocID{doc.DocID}, y.Members)
}

func TestMoveToSiblingCategory(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	// X and Y share the parent category P
	require.NoError(t, wiki.CreateDocument(ctx, "일반:A", "[#[X]]", user(), "", nil))
	require.NoError(t, wiki.EditDocument(ctx, "분류:X", "[#[P]]", user(), ""))
	require.NoError(t, wiki.CreateDocument(ctx, "일반:B", "[#[Y]]", user(), "", nil))
	require.NoError(t, wiki.EditDocument(ctx, "분류:Y", "[#[P]]", user(), ""))

	// moving A's sole membership from X to Y condemns X, but P survives
	// because Y is still a member
	require.NoError(t, wiki.EditDocument(ctx, "일반:A", "[#[Y]]", user(), ""))

	_, err := wiki.ReadDocument(ctx, "분류:X", user(), -1)
	assert.True(t, core.IsDenial(err))

	var p = read(t, wiki, "분류:P")
	var y = read(t, wiki, "분류:Y")
	assert.Equal(t, []core.DocID{y.DocID}, p.Members)

	var a = read(t, wiki, "일반:A")
	var b = read(t, wiki, "일반:B")
	assert.ElementsMatch(t, []core.DocID{b.DocID, a.DocID}, y.Members)
}

func TestCascadeChain(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	require.NoError(t, wiki.CreateDocument(ctx, "일반:A", "[#[X]]", user(), "", nil))
	require.NoError(t, wiki.EditDocument(ctx, "분류:X", "[#[Z]]", user(), ""))

	// Z holds X, X holds A
	var x = read(t, wiki, "분류:X")
	var z = read(t, wiki, "분류:Z")
	assert.Equal(t, []core.DocID{x.DocID}, z.Members)

	require.NoError(t, wiki.DeleteDocument(ctx, "일반:A", user(), ""))

	// the whole chain collapsed
	_, err := wiki.ReadDocument(ctx, "분류:X", user(), -1)
	assert.True(t, core.IsDenial(err))
	_, err = wiki.ReadDocument(ctx, "분류:Z", user(), -1)
	assert.True(t, core.IsDenial(err))

	// the protected categories survive
	var uncategorized = read(t, wiki, "분류:미분류")
	assert.Empty(t, uncategorized.Members)
	read(t, wiki, "분류:분류")
}

func TestUncategorizedConflict(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	var err = wiki.CreateDocument(ctx, "A", "[#[미분류]]\n[#[X]]", user(), "", nil)
	require.Error(t, err)
	assert.False(t, core.IsDenial(err))
	assert.ErrorIs(t, err, core.ErrIntegrity)

	// the failed transaction left nothing behind
	_, err = wiki.ReadDocument(ctx, "A", user(), -1)
	assert.True(t, core.IsDenial(err))
}

func TestEditRootCategory(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	// the root page is editable, it just stays uncategorized
	assert.True(t, core.IsDenial(wiki.EditDocument(ctx, "분류:분류", "the root of all categories", user(), "")))
	require.NoError(t, wiki.EditDocument(ctx, "분류:분류", "the root of all categories", manager(), ""))

	var root = read(t, wiki, "분류:분류")
	assert.Contains(t, root.Markup, "the root of all categories")
	assert.NotContains(t, root.Markup, "[#[")

	// declaring a category on the root breaks the graph invariant
	var err = wiki.EditDocument(ctx, "분류:분류", "[#[X]]", manager(), "")
	assert.False(t, core.IsDenial(err))
	assert.ErrorIs(t, err, core.ErrIntegrity)
}

func TestProtectedCategoriesImmortal(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	assert.True(t, core.IsDenial(wiki.DeleteDocument(ctx, "분류:미분류", manager(), "")))
	assert.True(t, core.IsDenial(wiki.DeleteDocument(ctx, "분류:분류", manager(), "")))
}

func TestRecreateDeletedKeepsIdentity(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	require.NoError(t, wiki.CreateDocument(ctx, "A", "one", user(), "", nil))
	var before = read(t, wiki, "A")

	require.NoError(t, wiki.DeleteDocument(ctx, "A", user(), ""))
	_, err := wiki.ReadDocument(ctx, "A", user(), -1)
	assert.True(t, core.IsDenial(err))

	// older revisions stay readable
	doc, err := wiki.ReadDocument(ctx, "A", user(), 1)
	require.NoError(t, err)
	assert.Contains(t, doc.Markup, "one")

	require.NoError(t, wiki.CreateDocument(ctx, "A", "two", user(), "", nil))
	var after = read(t, wiki, "A")
	assert.Equal(t, before.DocID, after.DocID)
	assert.Equal(t, 3, after.Info.Revision) // create, delete, create
}

func TestEditDeletedDenied(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	require.NoError(t, wiki.CreateDocument(ctx, "A", "one", user(), "", nil))
	require.NoError(t, wiki.DeleteDocument(ctx, "A", user(), ""))
	assert.True(t, core.IsDenial(wiki.EditDocument(ctx, "A", "two", user(), "")))
}

func TestBacklinks(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	require.NoError(t, wiki.CreateDocument(ctx, "일반:A", "see [[일반:B]] and [*[머리말]]", user(), "", nil))

	backlink, html, err := wiki.Backlinks(ctx, "일반:B")
	require.NoError(t, err)
	require.NotNil(t, backlink)
	assert.False(t, backlink.Empty())
	assert.Equal(t, []string{"A"}, backlink.LinkedFrom)
	assert.Contains(t, html, "/r/A")

	embedded, _, err := wiki.Backlinks(ctx, "틀:머리말")
	require.NoError(t, err)
	require.NotNil(t, embedded)
	assert.Equal(t, []string{"A"}, embedded.EmbeddedIn)

	// removing the last reference garbage-collects the record
	require.NoError(t, wiki.EditDocument(ctx, "일반:A", "nothing here", user(), ""))
	backlink, _, err = wiki.Backlinks(ctx, "일반:B")
	require.NoError(t, err)
	assert.Nil(t, backlink)
}

func TestRedirectBacklink(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	require.NoError(t, wiki.CreateDocument(ctx, "일반:A", "[>[일반:B]]", user(), "", nil))

	backlink, _, err := wiki.Backlinks(ctx, "일반:B")
	require.NoError(t, err)
	require.NotNil(t, backlink)
	assert.Equal(t, []string{"A"}, backlink.RedirectedFrom)
}

func TestDeleteRemovesBacklinkSources(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	require.NoError(t, wiki.CreateDocument(ctx, "일반:A", "[[일반:B]]", user(), "", nil))
	require.NoError(t, wiki.DeleteDocument(ctx, "일반:A", user(), ""))

	backlink, _, err := wiki.Backlinks(ctx, "일반:B")
	require.NoError(t, err)
	assert.Nil(t, backlink)
}

func TestMove(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	require.NoError(t, wiki.CreateDocument(ctx, "일반:A", "hello", user(), "", nil))
	var before = read(t, wiki, "일반:A")

	require.NoError(t, wiki.MoveDocument(ctx, "일반:A", user(), "일반:B", ""))

	var after = read(t, wiki, "일반:B")
	assert.Equal(t, before.DocID, after.DocID)

	_, err := wiki.ReadDocument(ctx, "일반:A", user(), -1)
	assert.True(t, core.IsDenial(err))

	// the old title is free again
	require.NoError(t, wiki.CreateDocument(ctx, "일반:A", "fresh", user(), "", nil))

	// moving onto a taken title is denied
	assert.True(t, core.IsDenial(wiki.MoveDocument(ctx, "일반:B", user(), "일반:A", "")))
}

func TestMoveRewritesHistoryTitles(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	require.NoError(t, wiki.CreateDocument(ctx, "일반:A", "hello", user(), "", nil))
	require.NoError(t, wiki.MoveDocument(ctx, "일반:A", user(), "일반:B", ""))

	logs, err := wiki.History(ctx, "일반:B", 1, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, "B", l.FullTitle)
	}
	assert.Equal(t, core.ActionMove, logs[0].Action)
	assert.Equal(t, "A→B", logs[0].SystemLog)
}

func TestHideShow(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	require.NoError(t, wiki.CreateDocument(ctx, "A", "secret", user(), "", nil))
	require.NoError(t, wiki.DeleteDocument(ctx, "A", user(), ""))

	assert.True(t, core.IsDenial(wiki.HideDocument(ctx, "A", user(), "")))
	require.NoError(t, wiki.HideDocument(ctx, "A", manager(), ""))

	// ordinary users cannot read hidden documents at all
	_, err := wiki.ReadDocument(ctx, "A", user(), 1)
	assert.True(t, core.IsDenial(err))

	// guests fall under the read-all exception, but the markup is blanked
	var guest = &core.User{Group: core.GroupGuest}
	doc, err := wiki.ReadDocument(ctx, "A", guest, 1)
	require.NoError(t, err)
	assert.Empty(t, doc.Markup)

	require.NoError(t, wiki.ShowDocument(ctx, "A", manager(), ""))
	doc, err = wiki.ReadDocument(ctx, "A", user(), 1)
	require.NoError(t, err)
	assert.Contains(t, doc.Markup, "secret")
}

func TestChangeAuthority(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	require.NoError(t, wiki.CreateDocument(ctx, "A", "hello", user(), "", nil))

	assert.True(t, core.IsDenial(wiki.ChangeAuthority(ctx, "A", core.ActionEdit, []core.Group{core.GroupManager}, user(), "")))
	require.NoError(t, wiki.ChangeAuthority(ctx, "A", core.ActionEdit, []core.Group{core.GroupManager}, manager(), ""))

	assert.True(t, core.IsDenial(wiki.EditDocument(ctx, "A", "vandalism", user(), "")))
	require.NoError(t, wiki.EditDocument(ctx, "A", "fine", manager(), ""))
}

func TestUploadFile(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	assert.True(t, core.IsDenial(wiki.UploadFile(ctx, "파일:logo.png", "", nil, user(), "")))

	var upload = &core.Upload{Name: "logo.png", Data: []byte("fake image")}
	require.NoError(t, wiki.UploadFile(ctx, "파일:logo.png", "", upload, user(), ""))

	var doc = read(t, wiki, "파일:logo.png")
	assert.Equal(t, core.File, doc.Type)
	assert.Contains(t, doc.HTML, "/files/")

	// the file skeleton categorizes the document
	read(t, wiki, "분류:파일")
}

func TestHistoryPaging(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	require.NoError(t, wiki.CreateDocument(ctx, "A", "one", user(), "first", nil))
	require.NoError(t, wiki.EditDocument(ctx, "A", "two", user(), "second"))
	require.NoError(t, wiki.EditDocument(ctx, "A", "three", user(), "third"))

	logs, err := wiki.History(ctx, "A", 1, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "third", logs[0].Comment)
	assert.Equal(t, core.ActionEdit, logs[0].Action)

	logs, err = wiki.History(ctx, "A", 2, 2)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, core.ActionCreate, logs[0].Action)

	_, err = wiki.History(ctx, "A", 1, 0)
	assert.True(t, core.IsDenial(err))
}

func TestAllTitles(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	require.NoError(t, wiki.CreateDocument(ctx, "일반:A", "", user(), "", nil))
	require.NoError(t, wiki.CreateDocument(ctx, "일반:B", "", user(), "", nil))
	require.NoError(t, wiki.DeleteDocument(ctx, "일반:B", user(), ""))

	titles, err := wiki.AllTitles(ctx)
	require.NoError(t, err)
	assert.Contains(t, titles, "A")
	assert.Contains(t, titles, "분류:미분류")
	assert.NotContains(t, titles, "B")
}
