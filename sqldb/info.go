package sqldb

import (
	"database/sql"
	"encoding/json"

	"github.com/wansing/seedling/core"
)

type infoStmts struct {
	get           *sql.Stmt
	getByID       *sql.Stmt
	upsert        *sql.Stmt
	getMembers    *sql.Stmt
	clearMembers  *sql.Stmt
	insertMember  *sql.Stmt
	clearMapping  *sql.Stmt
	insertMapping *sql.Stmt
}

func prepareInfo(db *sql.DB) infoStmts {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS info (
			docId varchar(36) PRIMARY KEY,
			fullTitle text NOT NULL,
			type varchar(16) NOT NULL,
			state varchar(16) NOT NULL,
			authority text NOT NULL,
			revision INTEGER NOT NULL,
			fileKey text NOT NULL DEFAULT '',
			UNIQUE (fullTitle)
		);
		CREATE TABLE IF NOT EXISTS member (
			docId varchar(36) NOT NULL,
			pos INTEGER NOT NULL,
			member varchar(36) NOT NULL,
			PRIMARY KEY (docId, pos)
		);
		`)
	if err != nil {
		panic(err)
	}

	return infoStmts{
		get:           mustPrepare(db, "SELECT docId, fullTitle, type, state, authority, revision, fileKey FROM info WHERE fullTitle = ? LIMIT 1"),
		getByID:       mustPrepare(db, "SELECT docId, fullTitle, type, state, authority, revision, fileKey FROM info WHERE docId = ? LIMIT 1"),
		upsert:        mustPrepare(db, "INSERT INTO info (docId, fullTitle, type, state, authority, revision, fileKey) VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT (docId) DO UPDATE SET fullTitle = excluded.fullTitle, type = excluded.type, state = excluded.state, authority = excluded.authority, revision = excluded.revision, fileKey = excluded.fileKey"),
		getMembers:    mustPrepare(db, "SELECT member FROM member WHERE docId = ? ORDER BY pos"),
		clearMembers:  mustPrepare(db, "DELETE FROM member WHERE docId = ?"),
		insertMember:  mustPrepare(db, "INSERT INTO member (docId, pos, member) VALUES (?, ?, ?)"),
		clearMapping:  mustPrepare(db, "DELETE FROM mapping WHERE docId = ?"),
		insertMapping: mustPrepare(db, "INSERT INTO mapping (fullTitle, docId) VALUES (?, ?)"),
	}
}

func (t *Tx) scanInfo(row *sql.Row) (*core.Info, error) {
	var info core.Info
	var authority string
	var err = row.Scan(&info.DocID, &info.FullTitle, &info.Type, &info.State, &authority, &info.Revision, &info.FileKey)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(authority), &info.Authority); err != nil {
		return nil, err
	}
	if info.Type == core.Category {
		info.Members = []core.DocID{}
		rows, err := t.stmt(t.db.info.getMembers).Query(info.DocID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		for rows.Next() {
			var member core.DocID
			if err := rows.Scan(&member); err != nil {
				return nil, err
			}
			info.Members = append(info.Members, member)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return &info, nil
}

func (t *Tx) GetInfo(fullTitle string) (*core.Info, error) {
	return t.scanInfo(t.stmt(t.db.info.get).QueryRow(fullTitle))
}

func (t *Tx) GetInfoByID(id core.DocID) (*core.Info, error) {
	return t.scanInfo(t.stmt(t.db.info.getByID).QueryRow(id))
}

func (t *Tx) GetInfosByID(ids []core.DocID) ([]*core.Info, error) {
	var infos = make([]*core.Info, len(ids))
	for i, id := range ids {
		var err error
		if infos[i], err = t.GetInfoByID(id); err != nil {
			return nil, err
		}
	}
	return infos, nil
}

func (t *Tx) GetInfosByTitle(fullTitles []string) ([]*core.Info, error) {
	var infos = make([]*core.Info, len(fullTitles))
	for i, fullTitle := range fullTitles {
		var err error
		if infos[i], err = t.GetInfo(fullTitle); err != nil {
			return nil, err
		}
	}
	return infos, nil
}

// UpsertInfo writes the identity record, its membership rows and the title
// mapping, which only carries normal documents.
func (t *Tx) UpsertInfo(info *core.Info) error {
	authority, err := json.Marshal(info.Authority)
	if err != nil {
		return err
	}
	if _, err := t.stmt(t.db.info.upsert).Exec(info.DocID, info.FullTitle, info.Type, info.State, string(authority), info.Revision, info.FileKey); err != nil {
		return err
	}

	if _, err := t.stmt(t.db.info.clearMembers).Exec(info.DocID); err != nil {
		return err
	}
	for pos, member := range info.Members {
		if _, err := t.stmt(t.db.info.insertMember).Exec(info.DocID, pos, member); err != nil {
			return err
		}
	}

	if _, err := t.stmt(t.db.info.clearMapping).Exec(info.DocID); err != nil {
		return err
	}
	if info.State == core.StateNormal {
		if _, err := t.stmt(t.db.info.insertMapping).Exec(info.FullTitle, info.DocID); err != nil {
			return err
		}
	}
	return nil
}
