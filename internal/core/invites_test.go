package core_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupdump/internal/core"
	"groupdump/internal/domain"
	"groupdump/internal/models"
)

// inviteFixture creates a group with one outstanding invitation and returns
// its token alongside a user registered under the invitee's email.
func inviteFixture(t *testing.T, env *testEnv) (*models.Group, *models.User, string) {
	t.Helper()
	ctx := context.Background()

	invited, err := env.svc.RegisterUser(ctx, core.RegisterUserInput{
		Email:    "invited@example.com",
		Name:     "Invited",
		Password: "longenough",
	})
	require.NoError(t, err)

	creator := env.user(t, "creator")
	g := env.group(t, creator, 3, core.InviteeInput{Name: "Invited", Email: "invited@example.com"})

	invitees, err := env.svc.GroupInvitees(ctx, creator.ID, g.ID)
	require.NoError(t, err)
	require.Len(t, invitees, 1)
	require.NotEmpty(t, invitees[0].JoinToken)

	return g, invited, invitees[0].JoinToken
}

func TestRedeemInvite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	g, invited, token := inviteFixture(t, env)

	member, err := env.svc.RedeemInvite(ctx, invited.ID, token, slotIDs(g)[:1])
	require.NoError(t, err)
	assert.Equal(t, invited.ID, member.UserID)
	assert.Equal(t, g.ID, member.GroupID)

	// The token is burned with the admission.
	var count int64
	require.NoError(t, env.db.Model(&models.Invitee{}).Where("join_token = ?", token).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRedeemInviteTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	g, invited, token := inviteFixture(t, env)

	_, err := env.svc.RedeemInvite(ctx, invited.ID, token, slotIDs(g)[:1])
	require.NoError(t, err)

	_, err = env.svc.RedeemInvite(ctx, invited.ID, token, slotIDs(g)[:1])
	require.Error(t, err)
	kind := domain.KindOf(err)
	assert.True(t, kind == domain.KindNotFound || kind == domain.KindConflict, "got kind %s", kind)
}

func TestRedeemInviteConcurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	g, invited, token := inviteFixture(t, env)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.RedeemInvite(ctx, invited.ID, token, slotIDs(g)[:1])
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	members, err := env.svc.GroupMembers(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestRedeemInviteWrongEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	g, _, token := inviteFixture(t, env)
	stranger := env.user(t, "stranger")

	_, err := env.svc.RedeemInvite(ctx, stranger.ID, token, slotIDs(g)[:1])
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	// The failed attempt must not burn the token.
	var count int64
	require.NoError(t, env.db.Model(&models.Invitee{}).Where("join_token = ?", token).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRedeemInviteUnknownToken(t *testing.T) {
	env := newTestEnv(t)
	invited := env.user(t, "invited")

	_, err := env.svc.RedeemInvite(context.Background(), invited.ID, "no-such-token", nil)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestGroupInviteesCreatorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.user(t, "creator")
	outsider := env.user(t, "outsider")
	g := env.group(t, creator, 3, core.InviteeInput{Name: "Bob", Email: "bob@example.com"})

	_, err := env.svc.GroupInvitees(ctx, outsider.ID, g.ID)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestInviteeTokensAreUnique(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.user(t, "creator")

	g := env.group(t, creator, 5,
		core.InviteeInput{Name: "A", Email: "a@example.com"},
		core.InviteeInput{Name: "B", Email: "b@example.com"},
		core.InviteeInput{Name: "C", Email: "c@example.com"},
	)

	invitees, err := env.svc.GroupInvitees(ctx, creator.ID, g.ID)
	require.NoError(t, err)
	require.Len(t, invitees, 3)

	seen := make(map[string]bool)
	for _, inv := range invitees {
		assert.GreaterOrEqual(t, len(inv.JoinToken), 40)
		assert.False(t, seen[inv.JoinToken])
		seen[inv.JoinToken] = true
	}
}
