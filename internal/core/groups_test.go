package core_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupdump/internal/core"
	"groupdump/internal/domain"
	"groupdump/internal/models"
)

func TestCreateGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.user(t, "creator")

	g := env.group(t, creator, 4)

	assert.Equal(t, models.GroupForming, g.Status)
	assert.Equal(t, models.CardPending, g.CardStatus)
	assert.Equal(t, 4, g.MaxParticipants)
	assert.Len(t, g.TimeSlots, 2)

	// The creator is admitted automatically with every slot selected.
	members, err := env.svc.GroupMembers(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, creator.ID, members[0].UserID)
	assert.Equal(t, models.PaymentPending, members[0].PaymentStatus)

	analysis, err := env.svc.AnalyzeSlots(ctx, g.ID)
	require.NoError(t, err)
	for _, slot := range analysis.Slots {
		assert.Equal(t, 1, slot.SelectedCount)
		assert.True(t, slot.IsUniversal)
	}
}

func TestCreateGroupValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.user(t, "creator")

	cases := []struct {
		name string
		in   core.CreateGroupInput
	}{
		{"missing name", core.CreateGroupInput{Address: "12 Maple St"}},
		{"missing address", core.CreateGroupInput{Name: "Cleanup"}},
		{"slot without end", core.CreateGroupInput{
			Name: "Cleanup", Address: "12 Maple St",
			Slots: []core.SlotInput{{StartDate: "2026-10-01"}},
		}},
		{"invitee bad email", core.CreateGroupInput{
			Name: "Cleanup", Address: "12 Maple St",
			Invitees: []core.InviteeInput{{Name: "Bob", Email: "nope"}},
		}},
		{"capacity below creator plus invitees", core.CreateGroupInput{
			Name: "Cleanup", Address: "12 Maple St", MaxParticipants: 2,
			Invitees: []core.InviteeInput{
				{Name: "Bob", Email: "bob@example.com"},
				{Name: "Carol", Email: "carol@example.com"},
			},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.CreateGroup(ctx, creator.ID, tc.in)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestCreateGroupDefaultCapacity(t *testing.T) {
	env := newTestEnv(t)
	creator := env.user(t, "creator")

	g, err := env.svc.CreateGroup(context.Background(), creator.ID, core.CreateGroupInput{
		Name:    "Cleanup",
		Address: "12 Maple St",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, g.MaxParticipants)
}

func TestJoinGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.user(t, "creator")
	joiner := env.user(t, "joiner")

	g := env.group(t, creator, 3)

	member, err := env.svc.JoinGroup(ctx, joiner.ID, g.ID, slotIDs(g)[:1])
	require.NoError(t, err)
	assert.Equal(t, joiner.ID, member.UserID)
	assert.Equal(t, models.PaymentPending, member.PaymentStatus)

	// Joining twice is a conflict.
	_, err = env.svc.JoinGroup(ctx, joiner.ID, g.ID, slotIDs(g)[:1])
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestJoinGroupSlotValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.user(t, "creator")
	joiner := env.user(t, "joiner")

	g := env.group(t, creator, 3)

	_, err := env.svc.JoinGroup(ctx, joiner.ID, g.ID, nil)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = env.svc.JoinGroup(ctx, joiner.ID, g.ID, []uuid.UUID{uuid.New()})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestJoinGroupCapacity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.user(t, "creator")

	g := env.group(t, creator, 2)

	first := env.user(t, "first")
	_, err := env.svc.JoinGroup(ctx, first.ID, g.ID, slotIDs(g)[:1])
	require.NoError(t, err)

	second := env.user(t, "second")
	_, err = env.svc.JoinGroup(ctx, second.ID, g.ID, slotIDs(g)[:1])
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestJoinGroupConcurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.user(t, "creator")

	g := env.group(t, creator, 2)

	users := []*models.User{env.user(t, "racer"), env.user(t, "racer")}
	errs := make([]error, len(users))

	var wg sync.WaitGroup
	for i, u := range users {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = env.svc.JoinGroup(ctx, id, g.ID, slotIDs(g)[:1])
		}(i, u.ID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, domain.KindConflict, domain.KindOf(err))
		}
	}
	assert.Equal(t, 1, succeeded)

	members, err := env.svc.GroupMembers(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestDeleteGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.user(t, "creator")
	outsider := env.user(t, "outsider")

	g := env.group(t, creator, 3, core.InviteeInput{Name: "Bob", Email: "bob@example.com"})
	env.rental(t, creator, g.ID, 300)

	err := env.svc.DeleteGroup(ctx, outsider.ID, g.ID)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	require.NoError(t, env.svc.DeleteGroup(ctx, creator.ID, g.ID))

	_, err = env.svc.GetGroup(ctx, g.ID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	// Owned rows go with the group.
	var count int64
	for _, model := range []any{&models.Member{}, &models.Invitee{}, &models.TimeSlot{}, &models.Rental{}} {
		require.NoError(t, env.db.Model(model).Where("group_id = ?", g.ID).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestDeleteGroupAfterScheduling(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.user(t, "creator")

	g := scheduleFixture(t, env, creator)

	err := env.svc.DeleteGroup(ctx, creator.ID, g.ID)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}
