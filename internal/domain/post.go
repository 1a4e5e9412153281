package domain

import "time"

// Post is a question asked by a user.
type Post struct {
	ID         int64
	AuthorID   int64
	AuthorName string
	Title      string
	Content    string
	CreatedAt  time.Time
	Comments   []Comment
}

// Comment is an answer left on a post.
type Comment struct {
	ID         int64
	PostID     int64
	AuthorID   int64
	AuthorName string
	Body       string
	CreatedAt  time.Time
}
