package repository

import (
	"context"

	"dev-answer/internal/domain"
)

// PostRepository defines persistence operations for questions.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
}

// CommentRepository defines persistence operations for answers.
type CommentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, comment *domain.Comment) (int64, error)
	ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error)
}
