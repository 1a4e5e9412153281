package service

import (
	"context"
	"errors"
	"strings"

	"dev-answer/internal/domain"
	"dev-answer/internal/repository"
)

// ErrPostNotFound is returned when the referenced question does not exist.
var ErrPostNotFound = errors.New("post not found")

// PostService coordinates questions and their answers.
type PostService interface {
	CreatePost(ctx context.Context, authorID int64, title, content string) (*domain.Post, error)
	GetPost(ctx context.Context, id int64) (*domain.Post, error)
	ListPosts(ctx context.Context) ([]domain.Post, error)
	AddComment(ctx context.Context, postID, authorID int64, body string) (*domain.Comment, error)
}

type postService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
}

func NewPostService(posts repository.PostRepository, comments repository.CommentRepository) PostService {
	return &postService{
		posts:    posts,
		comments: comments,
	}
}

func (s *postService) CreatePost(ctx context.Context, authorID int64, title, content string) (*domain.Post, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return nil, errors.New("title is required")
	}
	if content == "" {
		return nil, errors.New("content is required")
	}

	post := &domain.Post{
		AuthorID: authorID,
		Title:    title,
		Content:  content,
	}
	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.Get(ctx, post.ID)
}

func (s *postService) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comments, err := s.comments.ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Comments = comments
	return post, nil
}

func (s *postService) ListPosts(ctx context.Context) ([]domain.Post, error) {
	return s.posts.List(ctx)
}

func (s *postService) AddComment(ctx context.Context, postID, authorID int64, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errors.New("answer body is required")
	}

	if _, err := s.posts.Get(ctx, postID); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comment := &domain.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Body:     body,
	}
	if _, err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
