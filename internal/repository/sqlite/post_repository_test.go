package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"dev-answer/internal/domain"
)

func newForumDB(t *testing.T) (*sql.DB, int64) {
	t.Helper()

	db := newTestDB(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	require.NoError(t, users.Init(ctx))
	require.NoError(t, NewPostRepository(db).Init(ctx))
	require.NoError(t, NewCommentRepository(db).Init(ctx))

	author := newTestUser("author@x.com")
	id, err := users.Create(ctx, author)
	require.NoError(t, err)
	return db, id
}

func TestPostRepositoryCreateGetList(t *testing.T) {
	db, authorID := newForumDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	first := &domain.Post{AuthorID: authorID, Title: "How do I exit vim?", Content: "Asking for a friend."}
	_, err := repo.Create(ctx, first)
	require.NoError(t, err)

	second := &domain.Post{AuthorID: authorID, Title: "Go or Rust?", Content: "Discuss."}
	_, err = repo.Create(ctx, second)
	require.NoError(t, err)

	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, "How do I exit vim?", got.Title)
	require.Equal(t, "Test User", got.AuthorName)

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	// newest first
	require.Equal(t, second.ID, posts[0].ID)
	require.Equal(t, first.ID, posts[1].ID)

	_, err = repo.Get(ctx, 999)
	require.ErrorContains(t, err, "not found")
}

func TestCommentRepositoryListByPost(t *testing.T) {
	db, authorID := newForumDB(t)
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	post := &domain.Post{AuthorID: authorID, Title: "T", Content: "C"}
	_, err := posts.Create(ctx, post)
	require.NoError(t, err)

	_, err = comments.Create(ctx, &domain.Comment{PostID: post.ID, AuthorID: authorID, Body: "first answer"})
	require.NoError(t, err)
	_, err = comments.Create(ctx, &domain.Comment{PostID: post.ID, AuthorID: authorID, Body: "second answer"})
	require.NoError(t, err)

	list, err := comments.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "second answer", list[0].Body)
	require.Equal(t, "Test User", list[0].AuthorName)

	empty, err := comments.ListByPost(ctx, 999)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestCommentRequiresExistingPost(t *testing.T) {
	db, authorID := newForumDB(t)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	_, err := comments.Create(ctx, &domain.Comment{PostID: 999, AuthorID: authorID, Body: "orphan"})
	require.Error(t, err)
}
