package core

import (
	"fmt"
	"sort"
	"time"
)

type UserAction string

const (
	UserSignup      UserAction = "signup"
	UserChangeName  UserAction = "change_name"
	UserChangeGroup UserAction = "change_group"
)

type PenaltyAction string

const (
	PenaltyApply  PenaltyAction = "apply"
	PenaltyRemove PenaltyAction = "remove"
)

// A DocLog records one lifecycle action on a document, with a byte delta and
// a generated system summary.
type DocLog struct {
	DocID     DocID
	FullTitle string
	Revision  int
	Delta     int
	UserEmail UserEmail
	UserName  UserName
	Comment   string
	Action    Action
	SystemLog string
	Time      time.Time
}

type UserLog struct {
	UserEmail UserEmail
	SystemLog string
	Action    UserAction
	Time      time.Time
}

type PenaltyLog struct {
	UserEmail      UserEmail // the penalizer
	PenalizedEmail UserEmail
	Type           PenaltyType
	Action         PenaltyAction
	Duration       int
	Comment        string
	Time           time.Time
}

// A LogStore appends audit log entries. One entry is written per lifecycle
// action, carrying before/after summaries.
type LogStore interface {
	AddDocLog(l *DocLog) error
	DocLogs(id DocID, limit, offset int) ([]DocLog, error)
	DocLogsByUserName(name UserName, limit, offset int) ([]DocLog, error)
	SetDocLogTitles(id DocID, fullTitle string) error   // move rewrites history titles
	SetDocLogNames(email UserEmail, name UserName) error // rename rewrites history names
	AddUserLog(l *UserLog) error
	LastUserLog(email UserEmail, action UserAction) (*UserLog, error) // nil if none
	AddPenaltyLog(l *PenaltyLog) error
}

func sameGroups(a, b []Group) bool {
	if len(a) != len(b) {
		return false
	}
	var as = append([]Group{}, a...)
	var bs = append([]Group{}, b...)
	sort.Slice(as, func(i, j int) bool { return as[i] < as[j] })
	sort.Slice(bs, func(i, j int) bool { return bs[i] < bs[j] })
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func makeSystemLog(action Action, prev, next *Info) string {
	switch {
	case action == ActionCreate && next.Type == Category:
		return "[category created]"
	case action == ActionDelete && next.Type == Category:
		return "[category deleted]"
	case action == ActionMove:
		var prevTitle string
		if prev != nil {
			prevTitle = prev.FullTitle
		}
		return fmt.Sprintf("%s→%s", prevTitle, next.FullTitle)
	case action == ActionChangeAuthority:
		if prev == nil {
			return ""
		}
		for docAction, nextGroups := range next.Authority {
			if !sameGroups(prev.Authority.groups(docAction), nextGroups) {
				return fmt.Sprintf("[%s]: %v→%v", docAction, prev.Authority.groups(docAction), nextGroups)
			}
		}
		return ""
	case action == ActionChangeState:
		if next.State == StateHidden {
			return "[hidden]"
		}
		return "[unhidden]"
	default:
		return ""
	}
}

// logDocAction writes the audit entry for one document action and bumps the
// contribution counters.
func logDocAction(tx Tx, action Action, prev, next *Doc, actor *User, comment string) error {
	var delta = len(next.Markup)
	var prevInfo *Info
	if prev != nil {
		delta -= len(prev.Markup)
		prevInfo = &prev.Info
	}
	return logDoc(tx, action, prevInfo, &next.Info, delta, actor, comment)
}

// logInfoAction is like logDocAction for workflows which only touch the
// identity record. The byte delta is zero.
func logInfoAction(tx Tx, action Action, prev, next *Info, actor *User, comment string) error {
	return logDoc(tx, action, prev, next, 0, actor, comment)
}

func logDoc(tx Tx, action Action, prev, next *Info, delta int, actor *User, comment string) error {
	if err := tx.AddContribCount(1); err != nil {
		return err
	}
	if err := tx.AddUserContrib(actor.Name, 1); err != nil {
		return err
	}
	return tx.AddDocLog(&DocLog{
		DocID:     next.DocID,
		FullTitle: next.FullTitle,
		Revision:  next.Revision,
		Delta:     delta,
		UserEmail: actor.Email,
		UserName:  actor.Name,
		Comment:   comment,
		Action:    action,
		SystemLog: makeSystemLog(action, prev, next),
		Time:      time.Now(),
	})
}
