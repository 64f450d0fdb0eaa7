package sqldb

import (
	"database/sql"

	"github.com/wansing/seedling/core"
)

type mappingStmts struct {
	docIDByTitle *sql.Stmt
	titleByDocID *sql.Stmt
	allTitles    *sql.Stmt
}

func prepareMapping(db *sql.DB) mappingStmts {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS mapping (
			fullTitle text PRIMARY KEY,
			docId varchar(36) NOT NULL,
			UNIQUE (docId)
		);
		`)
	if err != nil {
		panic(err)
	}

	return mappingStmts{
		docIDByTitle: mustPrepare(db, "SELECT docId FROM mapping WHERE fullTitle = ? LIMIT 1"),
		titleByDocID: mustPrepare(db, "SELECT fullTitle FROM mapping WHERE docId = ? LIMIT 1"),
		allTitles:    mustPrepare(db, "SELECT fullTitle FROM mapping ORDER BY fullTitle"),
	}
}

func (t *Tx) DocIDByTitle(fullTitle string) (core.DocID, error) {
	var id core.DocID
	var err = t.stmt(t.db.mapping.docIDByTitle).QueryRow(fullTitle).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return id, err
}

func (t *Tx) TitleByDocID(id core.DocID) (string, error) {
	var fullTitle string
	var err = t.stmt(t.db.mapping.titleByDocID).QueryRow(id).Scan(&fullTitle)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return fullTitle, err
}

func (t *Tx) AllTitles() ([]string, error) {
	rows, err := t.stmt(t.db.mapping.allTitles).Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var titles = []string{}
	for rows.Next() {
		var fullTitle string
		if err := rows.Scan(&fullTitle); err != nil {
			return nil, err
		}
		titles = append(titles, fullTitle)
	}
	return titles, rows.Err()
}
