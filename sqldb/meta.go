package sqldb

import (
	"database/sql"

	"github.com/wansing/seedling/core"
)

type metaStmts struct {
	ensure     *sql.Stmt
	get        *sql.Stmt
	addDocs    *sql.Stmt
	addUsers   *sql.Stmt
	addContrib *sql.Stmt
}

func prepareMeta(db *sql.DB) metaStmts {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS meta (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			docCount INTEGER NOT NULL,
			userCount INTEGER NOT NULL,
			contribCount INTEGER NOT NULL
		);
		`)
	if err != nil {
		panic(err)
	}

	return metaStmts{
		ensure:     mustPrepare(db, "INSERT OR IGNORE INTO meta (id, docCount, userCount, contribCount) VALUES (1, 0, 0, 0)"),
		get:        mustPrepare(db, "SELECT docCount, userCount, contribCount FROM meta WHERE id = 1"),
		addDocs:    mustPrepare(db, "UPDATE meta SET docCount = docCount + ? WHERE id = 1"),
		addUsers:   mustPrepare(db, "UPDATE meta SET userCount = userCount + ? WHERE id = 1"),
		addContrib: mustPrepare(db, "UPDATE meta SET contribCount = contribCount + ? WHERE id = 1"),
	}
}

func (t *Tx) EnsureMeta() error {
	_, err := t.stmt(t.db.meta.ensure).Exec()
	return err
}

func (t *Tx) GetMeta() (core.Meta, error) {
	var meta core.Meta
	var err = t.stmt(t.db.meta.get).QueryRow().Scan(&meta.DocCount, &meta.UserCount, &meta.ContribCount)
	if err == sql.ErrNoRows {
		return meta, nil
	}
	return meta, err
}

func (t *Tx) AddDocCount(delta int) error {
	_, err := t.stmt(t.db.meta.addDocs).Exec(delta)
	return err
}

func (t *Tx) AddUserCount(delta int) error {
	_, err := t.stmt(t.db.meta.addUsers).Exec(delta)
	return err
}

func (t *Tx) AddContribCount(delta int) error {
	_, err := t.stmt(t.db.meta.addContrib).Exec(delta)
	return err
}
