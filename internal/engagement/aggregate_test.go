package engagement

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPost(owner string) *Aggregate {
	a := NewAggregate(KindPost, owner)
	return &a
}

func sumComments(a *Aggregate) int {
	n := 0
	for _, c := range a.Comments {
		n += 1 + len(c.Replies)
	}
	return n
}

func TestCommentReplyScenario(t *testing.T) {
	a := newPost("owner")

	c, err := a.AddComment("u1", "hi")
	require.NoError(t, err)
	assert.Equal(t, 1, a.CommentsCount)

	_, err = a.AddReply(c.ID, "u2", "yo")
	require.NoError(t, err)
	assert.Equal(t, 2, a.CommentsCount)

	require.NoError(t, a.DeleteComment(c.ID, Principal{ID: "u1", Role: RoleUser}))
	assert.Equal(t, 0, a.CommentsCount)
	assert.Empty(t, a.Comments)
}

func TestCountInvariantAcrossMutations(t *testing.T) {
	a := newPost("owner")
	pr := Principal{ID: "owner", Role: RoleUser}

	var ids []string
	for i := 0; i < 5; i++ {
		c, err := a.AddComment("u1", "comment")
		require.NoError(t, err)
		ids = append(ids, c.ID)
		assert.Equal(t, sumComments(a), a.CommentsCount)
	}

	var replyIDs []string
	for i := 0; i < 3; i++ {
		r, err := a.AddReply(ids[1], "u2", "reply")
		require.NoError(t, err)
		replyIDs = append(replyIDs, r.ID)
		assert.Equal(t, sumComments(a), a.CommentsCount)
	}

	require.NoError(t, a.DeleteReply(ids[1], replyIDs[0], pr))
	assert.Equal(t, sumComments(a), a.CommentsCount)

	require.NoError(t, a.DeleteComment(ids[1], pr))
	assert.Equal(t, sumComments(a), a.CommentsCount)
	assert.Equal(t, 4, a.CommentsCount)

	likes, comments := RecomputeCounts(a)
	assert.Equal(t, 0, likes)
	assert.Equal(t, 4, comments)
}

func TestToggleLikeScenario(t *testing.T) {
	a := newPost("owner")

	liked := a.ToggleLike("u1")
	assert.True(t, liked)
	assert.Equal(t, []string{"u1"}, a.Likes)
	assert.Equal(t, 1, a.LikesCount)
	assert.Equal(t, "Post Liked Successfully", LikeMessage(a.Kind.Label(), liked))

	liked = a.ToggleLike("u1")
	assert.False(t, liked)
	assert.Empty(t, a.Likes)
	assert.Equal(t, 0, a.LikesCount)
	assert.Equal(t, "Post Disliked Successfully", LikeMessage(a.Kind.Label(), liked))
}

func TestDoubleToggleRestoresLikes(t *testing.T) {
	a := newPost("owner")
	a.ToggleLike("u1")
	a.ToggleLike("u2")
	before := append([]string(nil), a.Likes...)

	a.ToggleLike("u3")
	a.ToggleLike("u3")

	assert.Equal(t, before, a.Likes)
	assert.Equal(t, 2, a.LikesCount)
}

func TestCommentAndReplyLikes(t *testing.T) {
	a := newPost("owner")
	c, err := a.AddComment("u1", "hi")
	require.NoError(t, err)
	r, err := a.AddReply(c.ID, "u2", "yo")
	require.NoError(t, err)

	liked, err := a.ToggleCommentLike(c.ID, "u3")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, []string{"u3"}, a.Comments[0].Likes)

	liked, err = a.ToggleReplyLike(c.ID, r.ID, "u3")
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = a.ToggleReplyLike(c.ID, r.ID, "u3")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Empty(t, a.Comments[0].Replies[0].Likes)

	_, err = a.ToggleCommentLike("missing", "u3")
	assert.ErrorIs(t, err, ErrCommentNotFound)
	_, err = a.ToggleReplyLike(c.ID, "missing", "u3")
	assert.ErrorIs(t, err, ErrReplyNotFound)
}

func TestDeleteCommentAuthorization(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		pr      Principal
		wantErr error
	}{
		{"post stranger denied", KindPost, Principal{ID: "stranger", Role: RoleUser}, ErrNotAllowed},
		{"post admin denied", KindPost, Principal{ID: "admin", Role: RoleAdmin}, ErrNotAllowed},
		{"post entity owner allowed", KindPost, Principal{ID: "owner", Role: RoleUser}, nil},
		{"post author allowed", KindPost, Principal{ID: "u1", Role: RoleUser}, nil},
		{"gallery stranger denied", KindGallery, Principal{ID: "stranger", Role: RoleUser}, ErrNotAllowed},
		{"gallery entity owner allowed", KindGallery, Principal{ID: "owner", Role: RolePostHandler}, nil},
		{"event admin allowed", KindEvent, Principal{ID: "admin", Role: RoleAdmin}, nil},
		{"event post handler denied", KindEvent, Principal{ID: "ph", Role: RolePostHandler}, ErrNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAggregate(tt.kind, "owner")
			c, err := a.AddComment("u1", "hello")
			require.NoError(t, err)

			err = a.DeleteComment(c.ID, tt.pr)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Len(t, a.Comments, 1)
				assert.Equal(t, 1, a.CommentsCount)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, a.Comments)
		})
	}
}

func TestDeleteReplyAuthorization(t *testing.T) {
	a := newPost("owner")
	c, err := a.AddComment("u1", "hi")
	require.NoError(t, err)
	r, err := a.AddReply(c.ID, "u2", "yo")
	require.NoError(t, err)

	err = a.DeleteReply(c.ID, r.ID, Principal{ID: "u1", Role: RoleUser})
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.Equal(t, 2, a.CommentsCount)

	err = a.DeleteReply(c.ID, "missing", Principal{ID: "u2"})
	assert.ErrorIs(t, err, ErrReplyNotFound)

	err = a.DeleteReply("missing", r.ID, Principal{ID: "u2"})
	assert.ErrorIs(t, err, ErrCommentNotFound)

	require.NoError(t, a.DeleteReply(c.ID, r.ID, Principal{ID: "u2"}))
	assert.Equal(t, 1, a.CommentsCount)
}

func TestEditOwnerOnly(t *testing.T) {
	a := newPost("owner")
	c, err := a.AddComment("u1", "hi")
	require.NoError(t, err)
	r, err := a.AddReply(c.ID, "u2", "yo")
	require.NoError(t, err)

	assert.ErrorIs(t, a.EditComment(c.ID, "owner", "changed"), ErrNotOwner)
	assert.ErrorIs(t, a.EditComment("missing", "u1", "changed"), ErrCommentNotFound)
	require.NoError(t, a.EditComment(c.ID, "u1", "  changed  "))
	assert.Equal(t, "changed", a.Comments[0].Content)

	assert.ErrorIs(t, a.EditReply(c.ID, r.ID, "u1", "changed"), ErrNotOwner)
	require.NoError(t, a.EditReply(c.ID, r.ID, "u2", "changed"))
	assert.Equal(t, "changed", a.Comments[0].Replies[0].Reply)
	assert.Equal(t, 2, a.CommentsCount)
}

func TestGatedComments(t *testing.T) {
	a := newPost("owner")
	c, err := a.AddComment("u1", "first")
	require.NoError(t, err)

	on, err := a.ToggleAllowComments(Principal{ID: "owner"})
	require.NoError(t, err)
	assert.False(t, on)

	_, err = a.AddComment("u1", "second")
	assert.ErrorIs(t, err, ErrCommentsDisabled)
	_, err = a.AddReply(c.ID, "u2", "reply")
	assert.ErrorIs(t, err, ErrCommentsDisabled)
	assert.Len(t, a.Comments, 1)
	assert.Equal(t, 1, a.CommentsCount)
}

func TestCommentValidation(t *testing.T) {
	a := newPost("owner")

	_, err := a.AddComment("u1", "   ")
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = a.AddComment("u1", strings.Repeat("x", 101))
	assert.ErrorIs(t, err, ErrContentTooLong)

	ev := NewAggregate(KindEvent, "owner")
	_, err = ev.AddComment("u1", strings.Repeat("x", 200))
	assert.NoError(t, err)
	assert.Empty(t, a.Comments)
}

func TestShare(t *testing.T) {
	a := newPost("owner")
	require.NoError(t, a.Share())
	require.NoError(t, a.Share())
	assert.EqualValues(t, 2, a.Shares)

	on, err := a.ToggleAllowShares(Principal{ID: "owner"})
	require.NoError(t, err)
	assert.False(t, on)
	assert.ErrorIs(t, a.Share(), ErrSharesDisabled)
	assert.EqualValues(t, 2, a.Shares)
}

func TestToggleFlagsPolicy(t *testing.T) {
	post := newPost("owner")
	_, err := post.ToggleAllowComments(Principal{ID: "admin", Role: RoleAdmin})
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.True(t, post.AllowComments)

	ev := NewAggregate(KindEvent, "owner")
	_, err = ev.ToggleAllowShares(Principal{ID: "owner", Role: RoleUser})
	assert.ErrorIs(t, err, ErrNotAllowed)

	on, err := ev.ToggleAllowShares(Principal{ID: "ph", Role: RolePostHandler})
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, "Sharing Are Off Now", AllowSharesMessage(on))

	on, err = ev.ToggleAllowShares(Principal{ID: "ph", Role: RolePostHandler})
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, "Sharing Are On Now", AllowSharesMessage(on))
}

func TestCloneIsDeep(t *testing.T) {
	a := newPost("owner")
	c, err := a.AddComment("u1", "hi")
	require.NoError(t, err)
	_, err = a.AddReply(c.ID, "u2", "yo")
	require.NoError(t, err)

	b := a.Clone()
	b.ToggleLike("u9")
	b.Comments[0].Replies[0].Reply = "changed"

	assert.Empty(t, a.Likes)
	assert.Equal(t, "yo", a.Comments[0].Replies[0].Reply)
}
