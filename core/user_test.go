package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wansing/seedling/core"
)

func TestSignup(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	alice, err := wiki.Signup(ctx, "alice@example.com", "alice")
	require.NoError(t, err)
	assert.Equal(t, core.UserName("alice"), alice.Name)
	assert.Equal(t, core.GroupUser, alice.Group)

	// same email is rejected
	_, err = wiki.Signup(ctx, "alice@example.com", "alice2")
	assert.True(t, core.IsDenial(err))

	// same name gets deduplicated
	bob, err := wiki.Signup(ctx, "bob@example.com", "alice")
	require.NoError(t, err)
	assert.Equal(t, core.UserName("alice_"), bob.Name)

	meta, err := wiki.SiteMeta(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, meta.UserCount) // system, alice, bob
}

func TestChangeNameRateLimit(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	alice, err := wiki.Signup(ctx, "alice@example.com", "alice")
	require.NoError(t, err)

	require.NoError(t, wiki.ChangeName(ctx, alice, "allie"))

	resolved, err := wiki.UserByEmail(ctx, alice.Email)
	require.NoError(t, err)
	assert.Equal(t, core.UserName("allie"), resolved.Name)

	// once per thirty days
	var err2 = wiki.ChangeName(ctx, resolved, "alice")
	assert.True(t, core.IsDenial(err2))
}

func TestChangeNameRewritesHistory(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	alice, err := wiki.Signup(ctx, "alice@example.com", "alice")
	require.NoError(t, err)
	require.NoError(t, wiki.CreateDocument(ctx, "A", "hello", alice, "", nil))

	require.NoError(t, wiki.ChangeName(ctx, alice, "allie"))

	logs, err := wiki.Contributions(ctx, "allie", 1, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, core.UserName("allie"), logs[0].UserName)
}

func TestChangeGroup(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	alice, err := wiki.Signup(ctx, "alice@example.com", "alice")
	require.NoError(t, err)

	// ordinary users cannot promote
	assert.True(t, core.IsDenial(wiki.ChangeGroupByName(ctx, alice, "alice", core.GroupManager)))

	require.NoError(t, wiki.ChangeGroupByName(ctx, core.SystemUser(), "alice", core.GroupManager))
	resolved, err := wiki.UserByEmail(ctx, alice.Email)
	require.NoError(t, err)
	assert.Equal(t, core.GroupManager, resolved.Group)

	// only user and manager are assignable here
	assert.True(t, core.IsDenial(wiki.ChangeGroupByName(ctx, core.SystemUser(), "alice", core.GroupDev)))
}

func TestBlockAndUnblock(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	alice, err := wiki.Signup(ctx, "alice@example.com", "alice")
	require.NoError(t, err)

	// blocking needs privilege
	assert.True(t, core.IsDenial(wiki.BlockUser(ctx, alice, alice.Email, 0, "self block")))

	require.NoError(t, wiki.BlockUser(ctx, core.SystemUser(), alice.Email, 0, "vandalism"))

	blocked, err := wiki.UserByEmail(ctx, alice.Email)
	require.NoError(t, err)
	assert.Equal(t, core.GroupBlocked, blocked.Group)

	// blocked users cannot create
	assert.True(t, core.IsDenial(wiki.CreateDocument(ctx, "A", "hello", blocked, "", nil)))

	penalties, err := wiki.Penalties(ctx, core.SystemUser(), alice.Email)
	require.NoError(t, err)
	require.Len(t, penalties, 1)
	assert.Equal(t, core.PenaltyBlock, penalties[0].Type)

	require.NoError(t, wiki.RemovePenalty(ctx, core.SystemUser(), penalties[0].ID))

	unblocked, err := wiki.UserByEmail(ctx, alice.Email)
	require.NoError(t, err)
	assert.Equal(t, core.GroupUser, unblocked.Group)
}

func TestWarnKeepsGroup(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	alice, err := wiki.Signup(ctx, "alice@example.com", "alice")
	require.NoError(t, err)

	require.NoError(t, wiki.WarnUser(ctx, core.SystemUser(), alice.Email, 60, "be nice"))

	warned, err := wiki.UserByEmail(ctx, alice.Email)
	require.NoError(t, err)
	assert.Equal(t, core.GroupUser, warned.Group)
}

func TestRemoveUser(t *testing.T) {
	var wiki = newTestWiki(t)
	var ctx = context.Background()

	alice, err := wiki.Signup(ctx, "alice@example.com", "alice")
	require.NoError(t, err)
	bob, err := wiki.Signup(ctx, "bob@example.com", "bob")
	require.NoError(t, err)

	// only the owner or a privileged operator
	assert.True(t, core.IsDenial(wiki.RemoveUser(ctx, alice, bob.Email)))
	require.NoError(t, wiki.RemoveUser(ctx, alice, alice.Email))

	gone, err := wiki.UserByEmail(ctx, alice.Email)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// the system user is indestructible
	assert.True(t, core.IsDenial(wiki.RemoveUser(ctx, core.SystemUser(), core.SystemUser().Email)))
}
