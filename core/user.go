package core

import (
	"context"
	"fmt"
	"time"
)

type UserEmail string

type UserName string

// A User is an account. The password lives in the authentication layer, not
// here.
type User struct {
	Email        UserEmail
	Name         UserName
	Group        Group
	ContribCount int
}

const renameInterval = 30 * 24 * time.Hour

// Signup creates an account in the user group. The requested name is
// deduplicated by appending underscores until it is free.
func (w *Wiki) Signup(ctx context.Context, email UserEmail, name UserName) (*User, error) {
	var user *User
	var err = w.Transaction(ctx, func(tx Tx) error {
		existing, err := tx.GetUserByEmail(email)
		if err != nil {
			return err
		}
		if existing != nil {
			return denied("the email is already registered")
		}

		for {
			taken, err := tx.GetUserByName(name)
			if err != nil {
				return err
			}
			if taken == nil {
				break
			}
			name += "_"
		}

		user = &User{
			Email: email,
			Name:  name,
			Group: GroupUser,
		}
		if err := tx.InsertUser(user); err != nil {
			return err
		}
		if err := tx.AddUserCount(1); err != nil {
			return err
		}
		return tx.AddUserLog(&UserLog{
			UserEmail: email,
			SystemLog: fmt.Sprintf("signed up as %s", name),
			Action:    UserSignup,
			Time:      time.Now(),
		})
	})
	return user, err
}

// ChangeName renames an account, at most once per thirty days. The audit log
// is rewritten so past contributions show the new name.
func (w *Wiki) ChangeName(ctx context.Context, operator *User, newName UserName) error {
	return w.Transaction(ctx, func(tx Tx) error {
		target, err := tx.GetUserByEmail(operator.Email)
		if err != nil {
			return err
		}
		if err := CanChangeName(target, operator.Email, operator.Group); err != nil {
			return err
		}

		last, err := tx.LastUserLog(target.Email, UserChangeName)
		if err != nil {
			return err
		}
		if last != nil && time.Since(last.Time) < renameInterval {
			return denied("the name can be changed once per thirty days")
		}

		taken, err := tx.GetUserByName(newName)
		if err != nil {
			return err
		}
		if taken != nil {
			return denied("the name %q is taken", newName)
		}

		if err := tx.SetUserName(target.Name, newName); err != nil {
			return err
		}
		if err := tx.SetDocLogNames(target.Email, newName); err != nil {
			return err
		}
		return tx.AddUserLog(&UserLog{
			UserEmail: target.Email,
			SystemLog: fmt.Sprintf("%s→%s", target.Name, newName),
			Action:    UserChangeName,
			Time:      time.Now(),
		})
	})
}

// ChangeGroupByName promotes or demotes an account between the user and
// manager groups.
func (w *Wiki) ChangeGroupByName(ctx context.Context, operator *User, name UserName, group Group) error {
	if group != GroupUser && group != GroupManager {
		return denied("a user can only be made %s or %s", GroupUser, GroupManager)
	}
	return w.Transaction(ctx, func(tx Tx) error {
		target, err := tx.GetUserByName(name)
		if err != nil {
			return err
		}
		return w.changeGroup(tx, operator, target, group)
	})
}

func (w *Wiki) changeGroup(tx Tx, operator *User, target *User, group Group) error {
	if err := CanChangeGroup(target, operator.Group); err != nil {
		return err
	}
	if target.Group == group {
		return nil
	}
	if err := tx.SetUserGroup(target.Name, group); err != nil {
		return err
	}
	return tx.AddUserLog(&UserLog{
		UserEmail: target.Email,
		SystemLog: fmt.Sprintf("%s→%s", target.Group, group),
		Action:    UserChangeGroup,
		Time:      time.Now(),
	})
}

// RemoveUser deletes an account. Only the account owner or a privileged
// operator may do so; the system user is indestructible.
func (w *Wiki) RemoveUser(ctx context.Context, operator *User, email UserEmail) error {
	return w.Transaction(ctx, func(tx Tx) error {
		target, err := tx.GetUserByEmail(email)
		if err != nil {
			return err
		}
		if target == nil {
			return denied("the user does not exist")
		}
		if target.Group == GroupSystem {
			return denied("the system user cannot be removed")
		}
		if target.Email != operator.Email && !isPrivileged(operator.Group) {
			return denied("no authority to remove the account")
		}
		if err := tx.DeleteUser(email); err != nil {
			return err
		}
		return tx.AddUserCount(-1)
	})
}

// Contributions returns the audit entries written under a user name, newest
// first.
func (w *Wiki) Contributions(ctx context.Context, name UserName, page, count int) ([]DocLog, error) {
	if count <= 0 {
		return nil, denied("the count must be positive")
	}
	if page < 1 {
		page = 1
	}
	var logs []DocLog
	var err = w.Transaction(ctx, func(tx Tx) error {
		var err error
		logs, err = tx.DocLogsByUserName(name, count, (page-1)*count)
		return err
	})
	return logs, err
}

// UserByEmail resolves an account, or nil if there is none. A blocked
// account whose blocks have all expired is returned to the user group on the
// way.
func (w *Wiki) UserByEmail(ctx context.Context, email UserEmail) (*User, error) {
	var user *User
	var err = w.Transaction(ctx, func(tx Tx) error {
		u, err := tx.GetUserByEmail(email)
		if err != nil || u == nil {
			return err
		}
		if u.Group == GroupBlocked {
			penalties, err := tx.PenaltiesByEmail(u.Email)
			if err != nil {
				return err
			}
			var blocked bool
			for _, p := range penalties {
				if p.Type == PenaltyBlock && !p.Expired() {
					blocked = true
					break
				}
			}
			if !blocked {
				if err := tx.SetUserGroup(u.Name, GroupUser); err != nil {
					return err
				}
				u.Group = GroupUser
			}
		}
		user = u
		return nil
	})
	return user, err
}

// SiteMeta returns the site-wide counters.
func (w *Wiki) SiteMeta(ctx context.Context) (Meta, error) {
	var meta Meta
	var err = w.Transaction(ctx, func(tx Tx) error {
		var err error
		meta, err = tx.GetMeta()
		return err
	})
	return meta, err
}
