package core

import (
	"context"
	"time"
)

type PenaltyType string

const (
	PenaltyBlock PenaltyType = "block"
	PenaltyWarn  PenaltyType = "warn"
)

// A Penalty is an active warning or block. Duration is in minutes, zero
// meaning permanent.
type Penalty struct {
	ID       int64
	Email    UserEmail
	Type     PenaltyType
	Duration int
	Comment  string
	Time     time.Time
}

// Expired reports whether a timed penalty has run out.
func (p *Penalty) Expired() bool {
	if p.Duration == 0 {
		return false
	}
	return time.Since(p.Time) > time.Duration(p.Duration)*time.Minute
}

// BlockUser applies a block penalty and moves the account to the blocked
// group.
func (w *Wiki) BlockUser(ctx context.Context, operator *User, email UserEmail, duration int, comment string) error {
	return w.applyPenalty(ctx, operator, email, PenaltyBlock, duration, comment)
}

// WarnUser applies a warning penalty. The group stays untouched.
func (w *Wiki) WarnUser(ctx context.Context, operator *User, email UserEmail, duration int, comment string) error {
	return w.applyPenalty(ctx, operator, email, PenaltyWarn, duration, comment)
}

func (w *Wiki) applyPenalty(ctx context.Context, operator *User, email UserEmail, typ PenaltyType, duration int, comment string) error {
	return w.Transaction(ctx, func(tx Tx) error {
		target, err := tx.GetUserByEmail(email)
		if err != nil {
			return err
		}
		if err := CanApplyPenalty(target, duration, operator.Group); err != nil {
			return err
		}

		if _, err := tx.AddPenalty(&Penalty{
			Email:    email,
			Type:     typ,
			Duration: duration,
			Comment:  comment,
			Time:     time.Now(),
		}); err != nil {
			return err
		}

		if typ == PenaltyBlock && target.Group != GroupBlocked {
			if err := tx.SetUserGroup(target.Name, GroupBlocked); err != nil {
				return err
			}
		}

		return tx.AddPenaltyLog(&PenaltyLog{
			UserEmail:      operator.Email,
			PenalizedEmail: email,
			Type:           typ,
			Action:         PenaltyApply,
			Duration:       duration,
			Comment:        comment,
			Time:           time.Now(),
		})
	})
}

// RemovePenalty revokes a penalty. Removing the last block of an account
// returns it to the user group.
func (w *Wiki) RemovePenalty(ctx context.Context, operator *User, id int64) error {
	return w.Transaction(ctx, func(tx Tx) error {
		if err := CanRemovePenalty(operator.Group); err != nil {
			return err
		}

		penalty, err := tx.GetPenalty(id)
		if err != nil {
			return err
		}
		if penalty == nil {
			return denied("the penalty does not exist")
		}
		if err := tx.DeletePenalty(id); err != nil {
			return err
		}

		if penalty.Type == PenaltyBlock {
			remaining, err := tx.PenaltiesByEmail(penalty.Email)
			if err != nil {
				return err
			}
			var blocked bool
			for _, p := range remaining {
				if p.Type == PenaltyBlock && !p.Expired() {
					blocked = true
					break
				}
			}
			if !blocked {
				target, err := tx.GetUserByEmail(penalty.Email)
				if err != nil {
					return err
				}
				if target != nil && target.Group == GroupBlocked {
					if err := tx.SetUserGroup(target.Name, GroupUser); err != nil {
						return err
					}
				}
			}
		}

		return tx.AddPenaltyLog(&PenaltyLog{
			UserEmail:      operator.Email,
			PenalizedEmail: penalty.Email,
			Type:           penalty.Type,
			Action:         PenaltyRemove,
			Duration:       penalty.Duration,
			Comment:        penalty.Comment,
			Time:           time.Now(),
		})
	})
}

// Penalties lists the penalties of an account.
func (w *Wiki) Penalties(ctx context.Context, operator *User, email UserEmail) ([]Penalty, error) {
	if !isPrivileged(operator.Group) && operator.Email != email {
		return nil, denied("no authority to inspect penalties")
	}
	var penalties []Penalty
	var err = w.Transaction(ctx, func(tx Tx) error {
		var err error
		penalties, err = tx.PenaltiesByEmail(email)
		return err
	})
	return penalties, err
}
