package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPost_DerivesTypeFromBody(t *testing.T) {
	cases := []struct {
		body PostBody
		want PostType
	}{
		{WorkoutBody{WorkoutID: 3}, PostTypeWorkout},
		{PRBody{Exercise: "Bench", Weight: 225}, PostTypePR},
		{StreakBody{Days: 7}, PostTypeStreak},
		{CheckinBody{Location: "Iron Temple"}, PostTypeCheckin},
		{GeneralBody{}, PostTypeGeneral},
	}
	for _, tc := range cases {
		t.Run(string(tc.want), func(t *testing.T) {
			p := NewPost(1, "hello", tc.body)
			require.Equal(t, tc.want, p.PostType)
			require.Equal(t, tc.body, p.Body())
			require.NoError(t, p.Validate())
		})
	}
}

func TestPostValidate_RejectsMismatchedDetails(t *testing.T) {
	p := NewPost(1, "", PRBody{Exercise: "Squat", Weight: 315})
	p.PostType = PostTypeStreak

	err := p.Validate()
	require.Error(t, err)
	require.True(t, IsCode(err, CodeValidation))
}

func TestPostValidate_RejectsTwoVariants(t *testing.T) {
	p := NewPost(1, "", StreakBody{Days: 3})
	p.Details.Workout = &WorkoutBody{WorkoutID: 9}

	require.Error(t, p.Validate())
}

func TestPostValidate_PollOptionBounds(t *testing.T) {
	one := NewPost(1, "", GeneralBody{Poll: &Poll{Question: "?", Options: []string{"a"}}})
	require.Error(t, one.Validate())

	five := NewPost(1, "", GeneralBody{Poll: &Poll{Question: "?", Options: []string{"a", "b", "c", "d", "e"}}})
	require.Error(t, five.Validate())

	ok := NewPost(1, "", PRBody{Exercise: "Deadlift", Weight: 405, Poll: &Poll{Question: "next?", Options: []string{"a", "b"}}})
	require.NoError(t, ok.Validate())
	require.NotNil(t, ok.Poll())
}

func TestPost_EmptyGeneralDetailsAreValid(t *testing.T) {
	p := &Post{PostType: PostTypeGeneral}
	require.NoError(t, p.Validate())
	require.Equal(t, GeneralBody{}, p.Body())
	require.Nil(t, p.Poll())
}

func TestPostDetails_JSONCarriesOnlyOneVariant(t *testing.T) {
	p := NewPost(1, "", CheckinBody{Activities: []string{"legs"}})
	raw, err := json.Marshal(p.Details)
	require.NoError(t, err)
	require.JSONEq(t, `{"checkin":{"activities":["legs"]}}`, string(raw))
}

func TestReactionTypeValid(t *testing.T) {
	for _, r := range []ReactionType{ReactionHeart, ReactionThumbsUp, ReactionFlex, ReactionFire} {
		require.True(t, r.Valid(), r)
	}
	require.False(t, ReactionType("wave").Valid())
}
