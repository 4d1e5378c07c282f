package service

import (
	"fmt"
	"testing"

	"spottr/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGymService_Membership(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "member")
	first := env.createGym(t, "First")
	second := env.createGym(t, "Second")

	_, err := env.gym.ReportBusyLevel(t.Context(), user.ID, 3)
	requireCode(t, err, models.CodeValidation)

	detail, err := env.gym.JoinGym(t.Context(), user.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Gym.MemberCount)

	detail, err = env.gym.JoinGym(t.Context(), user.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Second", detail.Gym.Name)

	overview, err := env.gym.Overview(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Len(t, overview.Gyms, 2)
	require.NotNil(t, overview.MyGym)
	assert.Equal(t, second.ID, overview.MyGym.Gym.ID)

	old, err := env.gym.GymDetail(t.Context(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, old.Gym.MemberCount)

	_, err = env.gym.JoinGym(t.Context(), user.ID, 9999)
	requireCode(t, err, models.CodeNotFound)

	require.NoError(t, env.gym.LeaveGym(t.Context(), user.ID))
	require.NoError(t, env.gym.LeaveGym(t.Context(), user.ID))
	overview, err = env.gym.Overview(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Nil(t, overview.MyGym)
}

func TestGymService_ReportBusyLevel(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "reporter")
	gym := env.createGym(t, "Busy")
	_, err := env.gym.JoinGym(t.Context(), user.ID, gym.ID)
	require.NoError(t, err)

	level, err := env.gym.ReportBusyLevel(t.Context(), user.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, models.BusyVeryHigh, level)

	stored, err := env.gyms.GetByID(t.Context(), gym.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BusyVeryHigh, stored.BusyLevel)

	_, err = env.gym.ReportBusyLevel(t.Context(), user.ID, 0)
	requireCode(t, err, models.CodeValidation)
	_, err = env.gym.ReportBusyLevel(t.Context(), user.ID, 6)
	requireCode(t, err, models.CodeValidation)
}

func TestGymService_TopLifters(t *testing.T) {
	env := newTestEnv(t)
	gym := env.createGym(t, "Barbell Club")
	a := env.createUser(t, "a")
	b := env.createUser(t, "b")
	for _, u := range []*models.User{a, b} {
		_, err := env.gym.JoinGym(t.Context(), u.ID, gym.ID)
		require.NoError(t, err)
	}

	lift, err := env.gym.UpsertTopLift(t.Context(), TopLiftInput{UserID: a.ID, SquatMax: 200, BenchMax: 150, DeadliftMax: 250})
	require.NoError(t, err)
	assert.Equal(t, 600, lift.Total)
	_, err = env.gym.UpsertTopLift(t.Context(), TopLiftInput{UserID: b.ID, SquatMax: 300, BenchMax: 200, DeadliftMax: 350})
	require.NoError(t, err)
	_, err = env.gym.UpsertTopLift(t.Context(), TopLiftInput{UserID: a.ID, SquatMax: 210, BenchMax: 150, DeadliftMax: 250})
	require.NoError(t, err)

	detail, err := env.gym.GymDetail(t.Context(), gym.ID)
	require.NoError(t, err)
	require.Len(t, detail.TopLifters, 2)
	assert.Equal(t, b.ID, detail.TopLifters[0].UserID)
	assert.Equal(t, 850, detail.TopLifters[0].Total)
	assert.Equal(t, 610, detail.TopLifters[1].Total)

	_, err = env.gym.UpsertTopLift(t.Context(), TopLiftInput{UserID: a.ID, SquatMax: -1})
	requireCode(t, err, models.CodeValidation)
}

func TestGymService_SendGymInviteFanoutCap(t *testing.T) {
	env := newTestEnv(t)
	gym := env.createGym(t, "Packed")
	sender := env.createUser(t, "sender")
	_, err := env.gym.JoinGym(t.Context(), sender.ID, gym.ID)
	require.NoError(t, err)
	for i := 0; i < models.MaxGymInviteFanout+3; i++ {
		u := env.createUser(t, fmt.Sprintf("member%02d", i))
		_, err := env.gym.JoinGym(t.Context(), u.ID, gym.ID)
		require.NoError(t, err)
	}

	invites, err := env.gym.SendGymInvite(t.Context(), InviteInput{FromUserID: sender.ID, WorkoutType: "Legs"})
	require.NoError(t, err)
	assert.Len(t, invites, models.MaxGymInviteFanout)
	for _, inv := range invites {
		assert.NotEqual(t, sender.ID, inv.ToUserID)
		assert.Equal(t, models.InviteTypeGym, inv.InviteType)
		assert.Equal(t, 1, inv.Spots)
		require.NotNil(t, inv.GymID)
		assert.Equal(t, gym.ID, *inv.GymID)
	}
}

func TestGymService_InviteValidation(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "sender")

	tests := []struct {
		name string
		in   InviteInput
	}{
		{"missing type", InviteInput{FromUserID: sender.ID}},
		{"too many spots", InviteInput{FromUserID: sender.ID, WorkoutType: "Run", Spots: 21}},
		{"negative spots", InviteInput{FromUserID: sender.ID, WorkoutType: "Run", Spots: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.gym.SendFriendInvite(t.Context(), tt.in)
			requireCode(t, err, models.CodeValidation)
		})
	}

	_, err := env.gym.SendGymInvite(t.Context(), InviteInput{FromUserID: sender.ID, WorkoutType: "Run"})
	requireCode(t, err, models.CodeValidation)
}

func TestGymService_FriendInviteAndRespond(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "sender")
	a := env.createUser(t, "a")
	b := env.createUser(t, "b")

	invites, err := env.gym.SendFriendInvite(t.Context(), InviteInput{
		FromUserID: sender.ID, ToUserIDs: []uint{a.ID, b.ID, a.ID, sender.ID, 9999}, WorkoutType: "Cardio", Spots: 2,
	})
	require.NoError(t, err)
	require.Len(t, invites, 2)

	received, err := env.gym.Invites(t.Context(), a.ID, models.InviteStatusPending)
	require.NoError(t, err)
	require.Len(t, received, 1)
	invite := received[0]

	_, err = env.gym.RespondInvite(t.Context(), b.ID, invite.ID, "accept")
	requireCode(t, err, models.CodeNotFound)

	status, err := env.gym.RespondInvite(t.Context(), a.ID, invite.ID, "accept")
	require.NoError(t, err)
	assert.Equal(t, models.InviteStatusAccepted, status)

	received, err = env.gym.Invites(t.Context(), b.ID, models.InviteStatusPending)
	require.NoError(t, err)
	require.Len(t, received, 1)
	status, err = env.gym.RespondInvite(t.Context(), b.ID, received[0].ID, "nope")
	require.NoError(t, err)
	assert.Equal(t, models.InviteStatusDeclined, status)

	accepted, err := env.gym.Invites(t.Context(), a.ID, models.InviteStatusAccepted)
	require.NoError(t, err)
	assert.Len(t, accepted, 1)
}
