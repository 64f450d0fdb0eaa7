package sqldb

import (
	"database/sql"
	"time"

	"github.com/wansing/seedling/core"
)

type penaltyStmts struct {
	insert  *sql.Stmt
	get     *sql.Stmt
	delete  *sql.Stmt
	byEmail *sql.Stmt
}

func preparePenalty(db *sql.DB) penaltyStmts {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS penalty (
			id INTEGER PRIMARY KEY,
			mail varchar(128) NOT NULL,
			type varchar(16) NOT NULL,
			duration INTEGER NOT NULL,
			comment text NOT NULL,
			ts INTEGER NOT NULL
		);
		`)
	if err != nil {
		panic(err)
	}

	return penaltyStmts{
		insert:  mustPrepare(db, "INSERT INTO penalty (mail, type, duration, comment, ts) VALUES (?, ?, ?, ?, ?)"),
		get:     mustPrepare(db, "SELECT id, mail, type, duration, comment, ts FROM penalty WHERE id = ? LIMIT 1"),
		delete:  mustPrepare(db, "DELETE FROM penalty WHERE id = ?"),
		byEmail: mustPrepare(db, "SELECT id, mail, type, duration, comment, ts FROM penalty WHERE mail = ? ORDER BY id DESC"),
	}
}

func scanPenalty(scan func(dest ...interface{}) error) (*core.Penalty, error) {
	var p core.Penalty
	var ts int64
	var err = scan(&p.ID, &p.Email, &p.Type, &p.Duration, &p.Comment, &ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Time = time.Unix(ts, 0)
	return &p, nil
}

func (t *Tx) AddPenalty(p *core.Penalty) (int64, error) {
	result, err := t.stmt(t.db.penalty.insert).Exec(p.Email, p.Type, p.Duration, p.Comment, p.Time.Unix())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (t *Tx) GetPenalty(id int64) (*core.Penalty, error) {
	return scanPenalty(t.stmt(t.db.penalty.get).QueryRow(id).Scan)
}

func (t *Tx) DeletePenalty(id int64) error {
	_, err := t.stmt(t.db.penalty.delete).Exec(id)
	return err
}

func (t *Tx) PenaltiesByEmail(email core.UserEmail) ([]core.Penalty, error) {
	rows, err := t.stmt(t.db.penalty.byEmail).Query(email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var penalties = []core.Penalty{}
	for rows.Next() {
		var p core.Penalty
		var ts int64
		if err := rows.Scan(&p.ID, &p.Email, &p.Type, &p.Duration, &p.Comment, &ts); err != nil {
			return nil, err
		}
		p.Time = time.Unix(ts, 0)
		penalties = append(penalties, p)
	}
	return penalties, rows.Err()
}
