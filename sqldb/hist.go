package sqldb

import (
	"database/sql"

	"github.com/wansing/seedling/core"
)

type histStmts struct {
	get       *sql.Stmt
	getNewest *sql.Stmt
	insert    *sql.Stmt
}

func prepareHist(db *sql.DB) histStmts {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS hist (
			docId varchar(36) NOT NULL,
			revision INTEGER NOT NULL,
			markup text NOT NULL,
			PRIMARY KEY (docId, revision)
		);
		`)
	if err != nil {
		panic(err)
	}

	return histStmts{
		get:       mustPrepare(db, "SELECT docId, revision, markup FROM hist WHERE docId = ? AND revision = ? LIMIT 1"),
		getNewest: mustPrepare(db, "SELECT docId, revision, markup FROM hist WHERE docId = ? ORDER BY revision DESC LIMIT 1"),
		insert:    mustPrepare(db, "INSERT INTO hist (docId, revision, markup) VALUES (?, ?, ?)"),
	}
}

func (t *Tx) GetRevision(id core.DocID, revision int) (*core.Revision, error) {
	var row *sql.Row
	if revision < 0 {
		row = t.stmt(t.db.hist.getNewest).QueryRow(id)
	} else {
		row = t.stmt(t.db.hist.get).QueryRow(id, revision)
	}
	var rev core.Revision
	var err = row.Scan(&rev.DocID, &rev.Revision, &rev.Markup)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (t *Tx) AppendRevision(rev *core.Revision) error {
	_, err := t.stmt(t.db.hist.insert).Exec(rev.DocID, rev.Revision, rev.Markup)
	return err
}
