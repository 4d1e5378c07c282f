package service

import (
	"testing"

	"spottr/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateJoinCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := generateJoinCode()
		require.NoError(t, err)
		assert.Regexp(t, `^[A-Z0-9]{8}$`, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestGroupService_CreateGroup(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "creator")
	friend := env.createUser(t, "friend")

	_, err := env.group.CreateGroup(t.Context(), CreateGroupInput{CreatorID: creator.ID, Name: " "})
	requireCode(t, err, models.CodeValidation)

	group, err := env.group.CreateGroup(t.Context(), CreateGroupInput{
		CreatorID: creator.ID, Name: "Morning Crew", MemberIDs: []uint{friend.ID, creator.ID, 9999},
	})
	require.NoError(t, err)
	assert.Len(t, group.JoinCode, models.JoinCodeLength)
	assert.Equal(t, "💪", group.AvatarEmoji)
	assert.Equal(t, 2, group.MemberCount)
	require.NotNil(t, group.Streak)
	assert.Equal(t, 0, group.Streak.CurrentStreak)
}

func TestGroupService_CreateGroupRetriesTakenCodes(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "creator")

	codes := []string{"TAKEN001", "TAKEN001", "FRESH002"}
	env.group.newCode = func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}
	first, err := env.group.CreateGroup(t.Context(), CreateGroupInput{CreatorID: creator.ID, Name: "One"})
	require.NoError(t, err)
	assert.Equal(t, "TAKEN001", first.JoinCode)

	second, err := env.group.CreateGroup(t.Context(), CreateGroupInput{CreatorID: creator.ID, Name: "Two"})
	require.NoError(t, err)
	assert.Equal(t, "FRESH002", second.JoinCode)

	env.group.newCode = func() (string, error) { return "TAKEN001", nil }
	_, err = env.group.CreateGroup(t.Context(), CreateGroupInput{CreatorID: creator.ID, Name: "Three"})
	requireCode(t, err, models.CodeConflict)
}

func TestGroupService_JoinByCode(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "creator")
	joiner := env.createUser(t, "joiner")
	env.group.newCode = func() (string, error) { return "ABCD1234", nil }
	group, err := env.group.CreateGroup(t.Context(), CreateGroupInput{CreatorID: creator.ID, Name: "Crew"})
	require.NoError(t, err)

	_, err = env.group.JoinByCode(t.Context(), joiner.ID, "abc")
	requireCode(t, err, models.CodeValidation)
	_, err = env.group.JoinByCode(t.Context(), joiner.ID, "ZZZZ9999")
	requireCode(t, err, models.CodeNotFound)

	joined, err := env.group.JoinByCode(t.Context(), joiner.ID, " abcd1234 ")
	require.NoError(t, err)
	assert.Equal(t, group.ID, joined.ID)
	assert.Equal(t, 2, joined.MemberCount)

	again, err := env.group.JoinByCode(t.Context(), joiner.ID, "ABCD1234")
	require.NoError(t, err)
	assert.Equal(t, 2, again.MemberCount)
}

func TestGroupService_Messaging(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	outsider := env.createUser(t, "outsider")
	group, err := env.group.CreateGroup(t.Context(), CreateGroupInput{
		CreatorID: alice.ID, Name: "Crew", MemberIDs: []uint{bob.ID},
	})
	require.NoError(t, err)

	_, err = env.group.SendGroupMessage(t.Context(), outsider.ID, group.ID, "hi")
	requireCode(t, err, models.CodeForbidden)
	_, err = env.group.SendGroupMessage(t.Context(), alice.ID, group.ID, "  ")
	requireCode(t, err, models.CodeValidation)
	_, err = env.group.GroupHistory(t.Context(), outsider.ID, group.ID)
	requireCode(t, err, models.CodeForbidden)

	for _, text := range []string{"gym at 6?", "bring chalk"} {
		_, err := env.group.SendGroupMessage(t.Context(), alice.ID, group.ID, text)
		require.NoError(t, err)
	}

	summaries, err := env.group.ListGroups(t.Context(), bob.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(2), summaries[0].UnreadCount)

	history, err := env.group.GroupHistory(t.Context(), bob.ID, group.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "gym at 6?", history[0].Content)

	summaries, err = env.group.ListGroups(t.Context(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), summaries[0].UnreadCount)

	_, err = env.group.SendDirectMessage(t.Context(), bob.ID, bob.ID, "me")
	requireCode(t, err, models.CodeValidation)
	_, err = env.group.SendDirectMessage(t.Context(), bob.ID, 9999, "ghost")
	requireCode(t, err, models.CodeNotFound)
	dm, err := env.group.SendDirectMessage(t.Context(), bob.ID, alice.ID, "on my way")
	require.NoError(t, err)
	require.NotNil(t, dm.RecipientID)

	unread, err := env.group.UnreadCount(t.Context(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	convo, err := env.group.DirectHistory(t.Context(), alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, convo, 1)

	unread, err = env.group.UnreadCount(t.Context(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}
