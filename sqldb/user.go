package sqldb

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"

	"github.com/wansing/seedling/core"
	"github.com/wansing/seedling/util"
)

var ErrAuth = errors.New("authentication failed")

func hash(salt string, password string) string {
	var hash = sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(hash[:])
}

type userStmts struct {
	getByEmail  *sql.Stmt
	getByName   *sql.Stmt
	insert      *sql.Stmt
	setName     *sql.Stmt
	setGroup    *sql.Stmt
	addContrib  *sql.Stmt
	delete      *sql.Stmt
	login       *sql.Stmt
	setPassword *sql.Stmt
}

func prepareUser(db *sql.DB) userStmts {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS usr (
			mail varchar(128) PRIMARY KEY,
			name varchar(64) NOT NULL,
			grp varchar(16) NOT NULL,
			contribCount INTEGER NOT NULL DEFAULT 0,
			salt varchar(64) NOT NULL DEFAULT '',
			password varchar(64) NOT NULL DEFAULT '', /* empty field is safe because no hash value equals it */
			UNIQUE (name)
		);
		`)
	if err != nil {
		panic(err)
	}

	return userStmts{
		getByEmail:  mustPrepare(db, "SELECT mail, name, grp, contribCount FROM usr WHERE mail = ? LIMIT 1"),
		getByName:   mustPrepare(db, "SELECT mail, name, grp, contribCount FROM usr WHERE name = ? LIMIT 1"),
		insert:      mustPrepare(db, "INSERT INTO usr (mail, name, grp) VALUES (?, ?, ?)"),
		setName:     mustPrepare(db, "UPDATE usr SET name = ? WHERE name = ?"),
		setGroup:    mustPrepare(db, "UPDATE usr SET grp = ? WHERE name = ?"),
		addContrib:  mustPrepare(db, "UPDATE usr SET contribCount = contribCount + ? WHERE name = ?"),
		delete:      mustPrepare(db, "DELETE FROM usr WHERE mail = ?"),
		login:       mustPrepare(db, "SELECT salt, password FROM usr WHERE mail = ?"),
		setPassword: mustPrepare(db, "UPDATE usr SET salt = ?, password = ? WHERE mail = ?"),
	}
}

func scanUser(row *sql.Row) (*core.User, error) {
	var u core.User
	var err = row.Scan(&u.Email, &u.Name, &u.Group, &u.ContribCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (t *Tx) GetUserByEmail(email core.UserEmail) (*core.User, error) {
	return scanUser(t.stmt(t.db.user.getByEmail).QueryRow(email))
}

func (t *Tx) GetUserByName(name core.UserName) (*core.User, error) {
	return scanUser(t.stmt(t.db.user.getByName).QueryRow(name))
}

func (t *Tx) InsertUser(u *core.User) error {
	_, err := t.stmt(t.db.user.insert).Exec(u.Email, u.Name, u.Group)
	return err
}

func (t *Tx) SetUserName(old, new core.UserName) error {
	_, err := t.stmt(t.db.user.setName).Exec(new, old)
	return err
}

func (t *Tx) SetUserGroup(name core.UserName, group core.Group) error {
	_, err := t.stmt(t.db.user.setGroup).Exec(group, name)
	return err
}

func (t *Tx) AddUserContrib(name core.UserName, delta int) error {
	_, err := t.stmt(t.db.user.addContrib).Exec(delta, name)
	return err
}

func (t *Tx) DeleteUser(email core.UserEmail) error {
	_, err := t.stmt(t.db.user.delete).Exec(email)
	return err
}

// SetPassword stores a fresh salt and the salted hash of the password.
func (db *DB) SetPassword(email core.UserEmail, password string) error {
	salt, err := util.RandomString32()
	if err != nil {
		return err
	}
	result, err := db.user.setPassword.Exec(salt, hash(salt, password), email)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errors.New("no such user")
	}
	return nil
}

// Authenticate returns ErrAuth if the email is unknown or the password does
// not match.
func (db *DB) Authenticate(email core.UserEmail, password string) error {
	var salt, pass string
	var err = db.user.login.QueryRow(email).Scan(&salt, &pass)
	if err == sql.ErrNoRows {
		return ErrAuth
	}
	if err != nil {
		return err
	}
	if hash(salt, password) != pass {
		return ErrAuth
	}
	return nil
}
