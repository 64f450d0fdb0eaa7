// Package sqldb persists the wiki on an SQL database, tested with sqlite3.
// All statements are prepared once; a transaction binds them with tx.Stmt.
package sqldb

import (
	"context"
	"database/sql"

	"github.com/wansing/seedling/core"
)

func mustPrepare(db *sql.DB, query string) *sql.Stmt {
	stmt, err := db.Prepare(query)
	if err != nil {
		panic(err)
	}
	return stmt
}

type DB struct {
	*sql.DB
	info     infoStmts
	hist     histStmts
	backlink backlinkStmts
	mapping  mappingStmts
	meta     metaStmts
	logs     logStmts
	user     userStmts
	penalty  penaltyStmts
}

func New(db *sql.DB) *DB {
	var d = &DB{DB: db}
	d.mapping = prepareMapping(db) // the info statements reference the mapping table
	d.info = prepareInfo(db)
	d.hist = prepareHist(db)
	d.backlink = prepareBacklink(db)
	d.meta = prepareMeta(db)
	d.logs = prepareLogs(db)
	d.user = prepareUser(db)
	d.penalty = preparePenalty(db)
	return d
}

// Transaction runs fn within one database transaction. Any error from fn
// rolls everything back.
func (db *DB) Transaction(ctx context.Context, fn func(core.Tx) error) error {
	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var tx = &Tx{db: db, tx: sqlTx}
	if err := fn(tx); err != nil {
		sqlTx.Rollback()
		return err
	}
	return sqlTx.Commit()
}

// A Tx implements core.Tx on one database transaction.
type Tx struct {
	db *DB
	tx *sql.Tx
}

func (t *Tx) stmt(s *sql.Stmt) *sql.Stmt {
	return t.tx.Stmt(s)
}
