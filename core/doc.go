package core

import (
	"github.com/google/uuid"
)

// A DocID identifies a document for its whole life. Titles change on move,
// the id never does.
type DocID string

func NewDocID() DocID {
	return DocID(uuid.NewString())
}

type DocType string

const (
	General  DocType = "general"
	TypeWiki DocType = "wiki" // Wiki names the orchestrator
	File     DocType = "file"
	Category DocType = "category"
	Template DocType = "template"
)

type DocState string

const (
	StateNew     DocState = "new" // in memory only, never persisted
	StateNormal  DocState = "normal"
	StateDeleted DocState = "deleted"
	StateHidden  DocState = "hidden"
)

// Info is the mutable identity record of a document.
type Info struct {
	DocID     DocID
	FullTitle string
	Type      DocType
	State     DocState
	Authority Authority
	Revision  int     // number of the newest Revision
	Members   []DocID // type Category only
	FileKey   string  // type File only
}

// Revision is one immutable snapshot of a document's markup. Revisions are
// append-only, the newest one's number equals Info.Revision.
type Revision struct {
	DocID    DocID
	Revision int
	Markup   string
}

// Doc joins an Info with the markup of one revision. Info.Revision holds the
// revision number of Markup, which may be older than the newest one.
type Doc struct {
	Info
	Markup string
	HTML   string // set by ReadDocument
}

func NewDoc(info *Info, rev *Revision) *Doc {
	var doc = &Doc{Info: *info, Markup: rev.Markup}
	doc.Info.Revision = rev.Revision
	return doc
}

const fileSkeleton = `[#[파일]]
[**Source**][Enter the source.]
[**License**][Enter the license.]
[**Description**][Describe the file.]`

// EmptyDoc returns an in-memory document skeleton for the given title, with a
// fresh id, the type's default authority and markup, state new and revision
// zero.
func EmptyDoc(fullTitle string) (*Doc, error) {
	var doc = &Doc{
		Info: Info{
			DocID:     NewDocID(),
			FullTitle: fullTitle,
			Type:      TypeOfTitle(fullTitle),
			State:     StateNew,
		},
	}
	doc.Authority = DefaultAuthority(doc.Type)
	switch doc.Type {
	case General, TypeWiki:
		// empty markup
	case File:
		doc.Markup = fileSkeleton
	case Category:
		doc.Members = []DocID{}
		doc.Markup = "[#[" + uncategorizedName + "]]"
	case Template:
		doc.Markup = "[#[" + PrefixTemplate + "]]"
	default:
		return nil, integrityf("unknown document type %q", doc.Type)
	}
	return doc, nil
}
