package core

import (
	"context"
)

// A DB provides one atomic transaction per lifecycle operation. The category
// cascade discovers documents only during execution, so the scope is always
// the whole operation, never a single record.
type DB interface {
	Transaction(ctx context.Context, fn func(Tx) error) error
}

// Tx bundles all stores of one transaction. Everything commits or rolls back
// together; a partially applied cascade would corrupt the graphs.
type Tx interface {
	InfoStore
	RevisionStore
	BacklinkStore
	MappingStore
	MetaStore
	LogStore
	UserStore
	PenaltyStore
}

// An InfoStore persists identity records. Get methods return nil (and no
// error) for absent documents. UpsertInfo must transactionally rewrite the
// title mapping, which is strictly derived state.
type InfoStore interface {
	GetInfo(fullTitle string) (*Info, error)
	GetInfoByID(id DocID) (*Info, error)
	GetInfosByID(ids []DocID) ([]*Info, error)          // aligned with ids, nil for missing
	GetInfosByTitle(fullTitles []string) ([]*Info, error) // aligned with fullTitles, nil for missing
	UpsertInfo(info *Info) error
}

// A RevisionStore persists the append-only revision history.
type RevisionStore interface {
	GetRevision(id DocID, revision int) (*Revision, error) // revision < 0 means newest; nil if none
	AppendRevision(rev *Revision) error
}

type Relation string

const (
	RelLink     Relation = "link"
	RelEmbed    Relation = "embed"
	RelRedirect Relation = "redirect"
)

// A Backlink records which titles reference the keyed title, per relation.
// It exists iff at least one of the three sets is non-empty.
type Backlink struct {
	FullTitle      string
	LinkedFrom     []string
	EmbeddedIn     []string
	RedirectedFrom []string
}

func (b *Backlink) Empty() bool {
	return len(b.LinkedFrom) == 0 && len(b.EmbeddedIn) == 0 && len(b.RedirectedFrom) == 0
}

// A BacklinkStore persists backlink records with idempotent set semantics.
// Remove must delete the record once all three sets are empty.
type BacklinkStore interface {
	GetBacklink(fullTitle string) (*Backlink, error) // nil if absent
	InsertBacklink(rel Relation, from, to string) error
	RemoveBacklink(rel Relation, from, to string) error
}

// A MappingStore reads the denormalized title index. It is written by
// InfoStore.UpsertInfo only.
type MappingStore interface {
	DocIDByTitle(fullTitle string) (DocID, error) // "" if no normal document has the title
	TitleByDocID(id DocID) (string, error)        // "" if the document is not normal
	AllTitles() ([]string, error)                 // titles of all normal documents
}

// Meta holds the site-wide counters.
type Meta struct {
	DocCount     int
	UserCount    int
	ContribCount int
}

type MetaStore interface {
	EnsureMeta() error
	GetMeta() (Meta, error)
	AddDocCount(delta int) error
	AddUserCount(delta int) error
	AddContribCount(delta int) error
}

// A UserStore persists accounts. Get methods return nil for unknown users.
type UserStore interface {
	GetUserByEmail(email UserEmail) (*User, error)
	GetUserByName(name UserName) (*User, error)
	InsertUser(u *User) error
	SetUserName(old, new UserName) error
	SetUserGroup(name UserName, group Group) error
	AddUserContrib(name UserName, delta int) error
	DeleteUser(email UserEmail) error
}

type PenaltyStore interface {
	AddPenalty(p *Penalty) (int64, error)
	GetPenalty(id int64) (*Penalty, error) // nil if absent
	DeletePenalty(id int64) error
	PenaltiesByEmail(email UserEmail) ([]Penalty, error)
}

// A BlobStore keeps uploaded file payloads. It is a collaborator, not part
// of the transactional store.
type BlobStore interface {
	Put(name string, data []byte) (string, error) // returns the storage key
	Delete(key string) error
	ResolveURL(key string) string
}

// An Upload is a file payload attached to a create request.
type Upload struct {
	Name string
	Data []byte
}
