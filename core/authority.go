package core

// The authority engine is a set of pure decision functions over an identity
// record (or nil for a nonexistent document) and the acting user's group.
// Failures are Denials carrying a reason; nothing in here touches storage.

type Group string

const (
	GroupNone    Group = "none" // marker: nobody but system
	GroupAny     Group = "any"  // marker: everybody
	GroupGuest   Group = "guest"
	GroupUser    Group = "user"
	GroupDev     Group = "dev"
	GroupSystem  Group = "system"
	GroupManager Group = "manager"
	GroupBlocked Group = "blocked"
)

type Action string

const (
	ActionRead            Action = "read"
	ActionCreate          Action = "create"
	ActionEdit            Action = "edit"
	ActionMove            Action = "move"
	ActionDelete          Action = "delete"
	ActionChangeAuthority Action = "change_authority"
	ActionChangeState     Action = "change_state"
)

// Authority maps an action to the groups which may perform it. A missing key
// denies everyone but the system group.
type Authority map[Action][]Group

func (a Authority) groups(action Action) []Group {
	if a == nil {
		return nil
	}
	return a[action]
}

// Clone returns a deep copy, so that stored authority maps are never mutated
// through a working copy.
func (a Authority) Clone() Authority {
	var clone = make(Authority, len(a))
	for action, groups := range a {
		clone[action] = append([]Group{}, groups...)
	}
	return clone
}

// IsGroup reports whether name is a recognized group name. The system group
// is deliberately not assignable.
func IsGroup(name Group) bool {
	switch name {
	case GroupNone, GroupAny, GroupGuest, GroupUser, GroupDev, GroupManager, GroupBlocked:
		return true
	}
	return false
}

func containsGroup(groups []Group, group Group) bool {
	for _, g := range groups {
		if g == group {
			return true
		}
	}
	return false
}

// IsAuthorized is the authorization predicate: system always passes, blocked
// and guest always fail (read has its own exception in CanRead), the "any"
// marker passes everyone else, the "none" marker fails everyone else, and
// otherwise the group must literally appear in the list.
func IsAuthorized(groups []Group, group Group) bool {
	if group == GroupBlocked || group == GroupGuest {
		return false
	}
	if group == GroupSystem {
		return true
	}
	if len(groups) == 0 {
		return false
	}
	if containsGroup(groups, GroupAny) {
		return true
	}
	if containsGroup(groups, GroupNone) {
		return false
	}
	return containsGroup(groups, group)
}

// DefaultAuthority returns the authority map a freshly created document of
// the given type starts with.
func DefaultAuthority(docType DocType) Authority {
	switch docType {
	case TypeWiki:
		return Authority{
			ActionRead:            {GroupAny},
			ActionCreate:          {GroupManager, GroupDev},
			ActionEdit:            {GroupManager, GroupDev},
			ActionMove:            {GroupManager, GroupDev},
			ActionDelete:          {GroupManager, GroupDev},
			ActionChangeAuthority: {GroupManager, GroupDev},
			ActionChangeState:     {GroupManager, GroupDev},
		}
	case File:
		return Authority{
			ActionRead:            {GroupAny},
			ActionCreate:          {GroupNone},
			ActionEdit:            {GroupAny},
			ActionMove:            {GroupAny},
			ActionDelete:          {GroupAny},
			ActionChangeAuthority: {GroupManager, GroupDev},
			ActionChangeState:     {GroupManager, GroupDev},
		}
	case Category:
		return Authority{
			ActionRead:            {GroupAny},
			ActionCreate:          {GroupNone},
			ActionEdit:            {GroupAny},
			ActionMove:            {GroupNone},
			ActionDelete:          {GroupNone},
			ActionChangeAuthority: {GroupManager, GroupDev},
			ActionChangeState:     {GroupNone},
		}
	default: // General, Template
		return Authority{
			ActionRead:            {GroupAny},
			ActionCreate:          {GroupAny},
			ActionEdit:            {GroupAny},
			ActionMove:            {GroupAny},
			ActionDelete:          {GroupAny},
			ActionChangeAuthority: {GroupManager, GroupDev},
			ActionChangeState:     {GroupManager, GroupDev},
		}
	}
}

// SystemUser is the built-in actor for cascades and bootstrap.
func SystemUser() *User {
	return &User{
		Email: "<SYSTEM>@<SYSTEM>",
		Name:  "<SYSTEM>",
		Group: GroupSystem,
	}
}

// readAllException reports the read exception for blocked users and guests:
// they may read if and only if the read authority contains the "any" marker.
func readAllException(info *Info, group Group) bool {
	return (group == GroupBlocked || group == GroupGuest) &&
		containsGroup(info.Authority.groups(ActionRead), GroupAny)
}

// CanRead checks reading. Deleted documents stay readable so that their
// authority and history remain accessible.
func CanRead(info *Info, group Group) error {
	if info == nil || info.State == StateNew {
		return denied("the document does not exist")
	}
	if info.State == StateHidden {
		if readAllException(info, group) {
			return nil
		}
		return denied("hidden documents cannot be read")
	}
	if readAllException(info, group) {
		return nil
	}
	if IsAuthorized(info.Authority.groups(ActionRead), group) {
		return nil
	}
	return denied("no read authority")
}

// CanCreate checks creation of fullTitle. old is the prior identity sharing
// the title, or nil. A deleted document may be recreated under its old
// authority; an attached file lets anyone create a file document.
func CanCreate(old *Info, fullTitle string, group Group, hasFile bool) error {
	var prefix, title = SplitTitle(fullTitle)

	if prefix == PrefixCategory {
		return denied("category documents cannot be created directly")
	}
	if prefix == PrefixFile && !hasFile {
		return denied("file documents cannot be created without a file")
	}
	if title == "" {
		return denied("the document has no title")
	}

	var authority = DefaultAuthority(TypeOfTitle(fullTitle))
	if old != nil {
		switch old.State {
		case StateDeleted:
			authority = old.Authority
		case StateHidden:
			return denied("the document must be unhidden before it can be created")
		default:
			return denied("the document already exists")
		}
	}

	if IsAuthorized(authority.groups(ActionCreate), group) {
		return nil
	}
	if hasFile {
		return nil
	}
	return denied("no create authority")
}

func CanEdit(info *Info, group Group) error {
	if info == nil || info.State == StateNew {
		return denied("the document does not exist")
	}
	if info.State == StateHidden {
		return denied("hidden documents cannot be edited")
	}
	if info.State == StateDeleted {
		return denied("a deleted document must be created before it can be edited")
	}
	if IsAuthorized(info.Authority.groups(ActionEdit), group) {
		return nil
	}
	return denied("no edit authority")
}

func CanDelete(info *Info, group Group) error {
	if info == nil || info.State == StateNew {
		return denied("the document does not exist")
	}
	if info.State == StateHidden {
		return denied("hidden documents are already deleted")
	}
	if info.State == StateDeleted {
		return denied("the document is already deleted")
	}
	if info.Type == Category {
		return denied("category documents cannot be deleted directly")
	}
	if IsAuthorized(info.Authority.groups(ActionDelete), group) {
		return nil
	}
	return denied("no delete authority")
}

// CanMove checks moving to nextFullTitle. The prefix must stay the same.
func CanMove(info *Info, nextFullTitle string, group Group) error {
	if info == nil || info.State == StateNew {
		return denied("the document does not exist")
	}
	if info.State == StateHidden {
		return denied("hidden documents cannot be moved")
	}
	if info.Type == Category {
		return denied("category documents cannot be moved")
	}
	if !IsAuthorized(info.Authority.groups(ActionMove), group) {
		return denied("no move authority")
	}

	var newPrefix, newTitle = SplitTitle(nextFullTitle)
	var oldPrefix, _ = SplitTitle(info.FullTitle)

	if newTitle == "" {
		return denied("the new title is empty")
	}
	if newPrefix != oldPrefix {
		return denied("the title prefix cannot be changed")
	}
	return nil
}

func CanChangeAuthority(info *Info, groups []Group, group Group) error {
	if info == nil || info.State == StateNew {
		return denied("the document does not exist")
	}
	if info.State == StateHidden {
		return denied("the authority of hidden documents cannot be changed")
	}
	if !IsAuthorized(info.Authority.groups(ActionChangeAuthority), group) {
		return denied("no authority to change authority")
	}
	for _, g := range groups {
		if !IsGroup(g) {
			return denied("group %s does not exist", g)
		}
	}
	return nil
}

// CanHide checks hiding. Only deleted documents may be hidden.
func CanHide(info *Info, group Group) error {
	if info == nil || info.State == StateNew {
		return denied("the document does not exist")
	}
	if info.State == StateHidden {
		return denied("the document is already hidden")
	}
	if info.State == StateNormal {
		return denied("only deleted documents can be hidden")
	}
	if IsAuthorized(info.Authority.groups(ActionChangeState), group) {
		return nil
	}
	return denied("no hide authority")
}

// CanShow checks unhiding. The document returns to the deleted state.
func CanShow(info *Info, group Group) error {
	if info == nil || info.State == StateNew {
		return denied("the document does not exist")
	}
	if info.State != StateHidden {
		return denied("the document is not hidden")
	}
	if IsAuthorized(info.Authority.groups(ActionChangeState), group) {
		return nil
	}
	return denied("no show authority")
}

func CanUploadFile(fullTitle string, size int64) error {
	var prefix, title = SplitTitle(fullTitle)
	if prefix != PrefixFile {
		return denied("the title of a file document must have the %s prefix", PrefixFile)
	}
	if title == "" {
		return denied("the file document has no title")
	}
	if size <= 0 {
		return denied("the file is empty")
	}
	return nil
}

func isPrivileged(group Group) bool {
	return group == GroupManager || group == GroupSystem || group == GroupDev
}

func CanApplyPenalty(penalized *User, duration int, penalizer Group) error {
	if penalized == nil {
		return denied("the user does not exist")
	}
	if duration < 0 {
		return denied("the penalty duration must be at least zero minutes (zero is permanent)")
	}
	if !isPrivileged(penalizer) {
		return denied("no authority to warn or block")
	}
	if penalized.Group == GroupSystem || penalized.Group == GroupDev {
		return denied("system and dev accounts cannot be penalized")
	}
	return nil
}

func CanRemovePenalty(penalizer Group) error {
	if !isPrivileged(penalizer) {
		return denied("no authority to revoke warnings or blocks")
	}
	return nil
}

// CanChangeName allows only the account owner to rename, never system
// accounts and never blocked operators. Rate limiting happens in the user
// workflow.
func CanChangeName(target *User, operatorEmail UserEmail, operatorGroup Group) error {
	if target == nil {
		return denied("the user does not exist")
	}
	if operatorGroup == GroupBlocked {
		return denied("blocked users cannot change their name")
	}
	if target.Group == GroupSystem {
		return denied("the system user cannot be renamed")
	}
	if target.Email != operatorEmail {
		return denied("only the account owner can change the name")
	}
	return nil
}

func CanChangeGroup(target *User, operatorGroup Group) error {
	if target == nil {
		return denied("the user does not exist")
	}
	if !isPrivileged(operatorGroup) {
		return denied("no authority to change groups")
	}
	if target.Group == GroupSystem || target.Group == GroupDev {
		return denied("system and dev accounts cannot change groups")
	}
	return nil
}
