package sqldb

import (
	"database/sql"

	"github.com/wansing/seedling/core"
)

type backlinkStmts struct {
	get    *sql.Stmt
	insert *sql.Stmt
	remove *sql.Stmt
}

func prepareBacklink(db *sql.DB) backlinkStmts {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS backlink (
			fullTitle text NOT NULL,
			relation varchar(16) NOT NULL,
			source text NOT NULL,
			PRIMARY KEY (fullTitle, relation, source)
		);
		`)
	if err != nil {
		panic(err)
	}

	return backlinkStmts{
		get:    mustPrepare(db, "SELECT relation, source FROM backlink WHERE fullTitle = ? ORDER BY relation, source"),
		insert: mustPrepare(db, "INSERT OR IGNORE INTO backlink (fullTitle, relation, source) VALUES (?, ?, ?)"),
		remove: mustPrepare(db, "DELETE FROM backlink WHERE fullTitle = ? AND relation = ? AND source = ?"),
	}
}

// GetBacklink returns nil if nothing references the title. The record is
// reconstructed from the relation rows, so an empty record cannot exist.
func (t *Tx) GetBacklink(fullTitle string) (*core.Backlink, error) {
	rows, err := t.stmt(t.db.backlink.get).Query(fullTitle)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var backlink *core.Backlink
	for rows.Next() {
		var relation core.Relation
		var source string
		if err := rows.Scan(&relation, &source); err != nil {
			return nil, err
		}
		if backlink == nil {
			backlink = &core.Backlink{FullTitle: fullTitle}
		}
		switch relation {
		case core.RelLink:
			backlink.LinkedFrom = append(backlink.LinkedFrom, source)
		case core.RelEmbed:
			backlink.EmbeddedIn = append(backlink.EmbeddedIn, source)
		case core.RelRedirect:
			backlink.RedirectedFrom = append(backlink.RedirectedFrom, source)
		}
	}
	return backlink, rows.Err()
}

func (t *Tx) InsertBacklink(rel core.Relation, from, to string) error {
	_, err := t.stmt(t.db.backlink.insert).Exec(to, rel, from)
	return err
}

func (t *Tx) RemoveBacklink(rel core.Relation, from, to string) error {
	_, err := t.stmt(t.db.backlink.remove).Exec(to, rel, from)
	return err
}
