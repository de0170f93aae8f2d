package store

import (
	"context"
	"testing"
	"time"

	"blogd/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// runStoreContract exercises the behavior every backend must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	setup := func(t *testing.T) (Store, string, string) {
		st := newStore(t)
		userID, err := st.CreateUser(ctx, &models.User{
			Name:         "Alice",
			Email:        "a@x.com",
			PasswordHash: "hash",
			CreatedAt:    testEpoch,
		})
		require.NoError(t, err)

		post := models.NewPost(st.NewID(), "Hello World", "body", nil, "Alice", testEpoch)
		require.NoError(t, st.AppendPost(ctx, userID, post))
		return st, userID, post.PostID
	}

	t.Run("CreateUserRejectsDuplicateEmail", func(t *testing.T) {
		st, _, _ := setup(t)
		_, err := st.CreateUser(ctx, &models.User{Name: "Other", Email: "a@x.com", PasswordHash: "h"})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("FindUser", func(t *testing.T) {
		st, userID, postID := setup(t)

		u, err := st.FindUserByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, userID, u.ID)
		assert.Equal(t, "hash", u.PasswordHash)

		u, err = st.FindUserByID(ctx, userID)
		require.NoError(t, err)
		require.Len(t, u.Posts, 1)
		assert.Equal(t, postID, u.Posts[0].PostID)

		_, err = st.FindUserByID(ctx, "not-an-id")
		assert.ErrorIs(t, err, ErrInvalidID)
		_, err = st.FindUserByID(ctx, st.NewID())
		assert.ErrorIs(t, err, ErrUserNotFound)
		_, err = st.FindUserByEmail(ctx, "nobody@x.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("AppendPost", func(t *testing.T) {
		st, _, postID := setup(t)

		p, err := st.FindPost(ctx, postID)
		require.NoError(t, err)
		assert.Equal(t, "Hello World", p.Title)
		assert.Equal(t, "Alice", p.Author)
		assert.Equal(t, 0, p.Likes)
		assert.Equal(t, 0, p.Views)
		assert.Empty(t, p.Comments)

		err = st.AppendPost(ctx, st.NewID(), models.NewPost(st.NewID(), "t", "c", nil, "x", testEpoch))
		assert.ErrorIs(t, err, ErrUserNotFound)
		err = st.AppendPost(ctx, "bad", models.NewPost(st.NewID(), "t", "c", nil, "x", testEpoch))
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("UpdatePost", func(t *testing.T) {
		st, userID, postID := setup(t)
		img := "cover.png"

		err := st.UpdatePost(ctx, userID, postID, PostPatch{
			Title: "Edited", Content: "new body", Image: &img, UpdatedAt: testEpoch.Add(time.Hour),
		})
		require.NoError(t, err)

		p, err := st.FindPost(ctx, postID)
		require.NoError(t, err)
		assert.Equal(t, "Edited", p.Title)
		assert.Equal(t, "new body", p.Content)
		require.NotNil(t, p.Image)
		assert.Equal(t, "cover.png", *p.Image)
		assert.NotNil(t, p.UpdatedAt)

		err = st.UpdatePost(ctx, userID, st.NewID(), PostPatch{Title: "x", Content: "y"})
		assert.ErrorIs(t, err, ErrPostNotFound)
		err = st.UpdatePost(ctx, st.NewID(), postID, PostPatch{Title: "x", Content: "y"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("RemovePostCascades", func(t *testing.T) {
		st, userID, postID := setup(t)
		require.NoError(t, st.AppendComment(ctx, postID, models.NewComment(st.NewID(), "Alice", "hi", testEpoch)))

		require.NoError(t, st.RemovePost(ctx, userID, postID))

		_, err := st.FindPost(ctx, postID)
		assert.ErrorIs(t, err, ErrPostNotFound)
		u, err := st.FindUserByID(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, u.Posts)

		assert.ErrorIs(t, st.RemovePost(ctx, userID, postID), ErrPostNotFound)
		assert.ErrorIs(t, st.RemovePost(ctx, st.NewID(), postID), ErrUserNotFound)
	})

	t.Run("SearchPosts", func(t *testing.T) {
		st, userID, _ := setup(t)
		require.NoError(t, st.AppendPost(ctx, userID,
			models.NewPost(st.NewID(), "Go concurrency", "c", nil, "Alice", testEpoch.Add(time.Minute))))

		all, err := st.AllPosts(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		hits, err := st.SearchPosts(ctx, "hello")
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "Hello World", hits[0].Title)

		hits, err = st.SearchPosts(ctx, "zzz")
		require.NoError(t, err)
		assert.Empty(t, hits)

		hits, err = st.SearchPosts(ctx, "h.llo")
		require.NoError(t, err)
		assert.Empty(t, hits, "title query is matched literally")
	})

	t.Run("CommentsAndReplies", func(t *testing.T) {
		st, _, postID := setup(t)
		first := models.NewComment(st.NewID(), "Alice", "first", testEpoch)
		second := models.NewComment(st.NewID(), "Bob", "second", testEpoch.Add(time.Second))
		require.NoError(t, st.AppendComment(ctx, postID, first))
		require.NoError(t, st.AppendComment(ctx, postID, second))

		reply := models.Reply{ReplyID: st.NewID(), ReplyCommenter: "Alice", ReplyContent: "thanks", Timestamp: testEpoch}
		require.NoError(t, st.AppendReply(ctx, postID, second.CommentID, reply))

		p, err := st.FindPost(ctx, postID)
		require.NoError(t, err)
		require.Len(t, p.Comments, 2)
		assert.Equal(t, "first", p.Comments[0].Content)
		assert.Empty(t, p.Comments[0].Replies)
		require.Len(t, p.Comments[1].Replies, 1)
		assert.Equal(t, "thanks", p.Comments[1].Replies[0].ReplyContent)

		err = st.AppendReply(ctx, postID, st.NewID(), reply)
		assert.ErrorIs(t, err, ErrCommentNotFound)
		err = st.AppendReply(ctx, st.NewID(), second.CommentID, reply)
		assert.ErrorIs(t, err, ErrPostNotFound)
		err = st.AppendComment(ctx, st.NewID(), first)
		assert.ErrorIs(t, err, ErrPostNotFound)
	})

	t.Run("ToggleReaction", func(t *testing.T) {
		st, _, postID := setup(t)

		p, err := st.ToggleReaction(ctx, postID, "u2", models.ReactionLike)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Likes)
		assert.Equal(t, []string{"u2"}, p.LikedBy)

		p, err = st.ToggleReaction(ctx, postID, "u2", models.ReactionLike)
		require.NoError(t, err)
		assert.Equal(t, 0, p.Likes)
		assert.Empty(t, p.LikedBy)

		_, err = st.ToggleReaction(ctx, postID, "u2", models.ReactionDislike)
		require.NoError(t, err)
		p, err = st.ToggleReaction(ctx, postID, "u2", models.ReactionLike)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Likes)
		assert.Equal(t, 0, p.Dislikes)
		assert.Empty(t, p.DislikedBy)

		_, err = st.ToggleReaction(ctx, st.NewID(), "u2", models.ReactionLike)
		assert.ErrorIs(t, err, ErrPostNotFound)
	})

	t.Run("AddViewIsIdempotent", func(t *testing.T) {
		st, _, postID := setup(t)

		p, err := st.AddView(ctx, postID, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, p.Views)

		p, err = st.AddView(ctx, postID, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, p.Views)

		p, err = st.AddView(ctx, postID, "u2")
		require.NoError(t, err)
		assert.Equal(t, 2, p.Views)

		_, err = st.AddView(ctx, st.NewID(), "u1")
		assert.ErrorIs(t, err, ErrPostNotFound)
	})

	t.Run("PingAndMigrate", func(t *testing.T) {
		st := newStore(t)
		assert.NoError(t, st.Ping(ctx))
		assert.NoError(t, st.Migrate(ctx))
		assert.NotEmpty(t, st.Name())
	})
}
