package sqldb

import (
	"database/sql"
	"time"

	"github.com/wansing/seedling/core"
)

type logStmts struct {
	insertDoc     *sql.Stmt
	docLogs       *sql.Stmt
	docLogsByName *sql.Stmt
	setTitles     *sql.Stmt
	setNames      *sql.Stmt
	insertUser    *sql.Stmt
	lastUser      *sql.Stmt
	insertPenalty *sql.Stmt
}

func prepareLogs(db *sql.DB) logStmts {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS docLog (
			id INTEGER PRIMARY KEY,
			docId varchar(36) NOT NULL,
			fullTitle text NOT NULL,
			revision INTEGER NOT NULL,
			delta INTEGER NOT NULL,
			userEmail varchar(128) NOT NULL,
			userName varchar(64) NOT NULL,
			comment text NOT NULL,
			action varchar(32) NOT NULL,
			systemLog text NOT NULL,
			ts INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS userLog (
			id INTEGER PRIMARY KEY,
			userEmail varchar(128) NOT NULL,
			systemLog text NOT NULL,
			action varchar(32) NOT NULL,
			ts INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS penaltyLog (
			id INTEGER PRIMARY KEY,
			userEmail varchar(128) NOT NULL,
			penalizedEmail varchar(128) NOT NULL,
			type varchar(16) NOT NULL,
			action varchar(16) NOT NULL,
			duration INTEGER NOT NULL,
			comment text NOT NULL,
			ts INTEGER NOT NULL
		);
		`)
	if err != nil {
		panic(err)
	}

	return logStmts{
		insertDoc:     mustPrepare(db, "INSERT INTO docLog (docId, fullTitle, revision, delta, userEmail, userName, comment, action, systemLog, ts) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		docLogs:       mustPrepare(db, "SELECT docId, fullTitle, revision, delta, userEmail, userName, comment, action, systemLog, ts FROM docLog WHERE docId = ? ORDER BY id DESC LIMIT ? OFFSET ?"),
		docLogsByName: mustPrepare(db, "SELECT docId, fullTitle, revision, delta, userEmail, userName, comment, action, systemLog, ts FROM docLog WHERE userName = ? ORDER BY id DESC LIMIT ? OFFSET ?"),
		setTitles:     mustPrepare(db, "UPDATE docLog SET fullTitle = ? WHERE docId = ?"),
		setNames:      mustPrepare(db, "UPDATE docLog SET userName = ? WHERE userEmail = ?"),
		insertUser:    mustPrepare(db, "INSERT INTO userLog (userEmail, systemLog, action, ts) VALUES (?, ?, ?, ?)"),
		lastUser:      mustPrepare(db, "SELECT userEmail, systemLog, action, ts FROM userLog WHERE userEmail = ? AND action = ? ORDER BY id DESC LIMIT 1"),
		insertPenalty: mustPrepare(db, "INSERT INTO penaltyLog (userEmail, penalizedEmail, type, action, duration, comment, ts) VALUES (?, ?, ?, ?, ?, ?, ?)"),
	}
}

func (t *Tx) AddDocLog(l *core.DocLog) error {
	_, err := t.stmt(t.db.logs.insertDoc).Exec(l.DocID, l.FullTitle, l.Revision, l.Delta, l.UserEmail, l.UserName, l.Comment, l.Action, l.SystemLog, l.Time.Unix())
	return err
}

func (t *Tx) docLogs(stmt *sql.Stmt, args ...interface{}) ([]core.DocLog, error) {
	rows, err := t.stmt(stmt).Query(args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs = []core.DocLog{}
	for rows.Next() {
		var l core.DocLog
		var ts int64
		if err := rows.Scan(&l.DocID, &l.FullTitle, &l.Revision, &l.Delta, &l.UserEmail, &l.UserName, &l.Comment, &l.Action, &l.SystemLog, &ts); err != nil {
			return nil, err
		}
		l.Time = time.Unix(ts, 0)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (t *Tx) DocLogs(id core.DocID, limit, offset int) ([]core.DocLog, error) {
	return t.docLogs(t.db.logs.docLogs, id, limit, offset)
}

func (t *Tx) DocLogsByUserName(name core.UserName, limit, offset int) ([]core.DocLog, error) {
	return t.docLogs(t.db.logs.docLogsByName, name, limit, offset)
}

func (t *Tx) SetDocLogTitles(id core.DocID, fullTitle string) error {
	_, err := t.stmt(t.db.logs.setTitles).Exec(fullTitle, id)
	return err
}

func (t *Tx) SetDocLogNames(email core.UserEmail, name core.UserName) error {
	_, err := t.stmt(t.db.logs.setNames).Exec(name, email)
	return err
}

func (t *Tx) AddUserLog(l *core.UserLog) error {
	_, err := t.stmt(t.db.logs.insertUser).Exec(l.UserEmail, l.SystemLog, l.Action, l.Time.Unix())
	return err
}

func (t *Tx) LastUserLog(email core.UserEmail, action core.UserAction) (*core.UserLog, error) {
	var l core.UserLog
	var ts int64
	var err = t.stmt(t.db.logs.lastUser).QueryRow(email, action).Scan(&l.UserEmail, &l.SystemLog, &l.Action, &ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l.Time = time.Unix(ts, 0)
	return &l, nil
}

func (t *Tx) AddPenaltyLog(l *core.PenaltyLog) error {
	_, err := t.stmt(t.db.logs.insertPenalty).Exec(l.UserEmail, l.PenalizedEmail, l.Type, l.Action, l.Duration, l.Comment, l.Time.Unix())
	return err
}
