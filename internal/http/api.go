package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dev-answer/internal/domain"
	"dev-answer/internal/service"
	"dev-answer/internal/storage"
)

const (
	sessionCookieName = "session_token"
	avatarURLExpiry   = 15 * time.Minute
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users      service.UserService
	sessions   service.SessionService
	resets     service.ResetService
	posts      service.PostService
	storage    storage.Service
	bucket     string
	keyPrefix  string
	sessionTTL time.Duration
	limiter    *rateLimiter
}

type Config struct {
	Users           service.UserService
	Sessions        service.SessionService
	Resets          service.ResetService
	Posts           service.PostService
	Storage         storage.Service
	Bucket          string
	KeyPrefix       string
	SessionTTL      time.Duration
	RateLimitPerSec int
	RateLimitBurst  int
}

func NewHandler(cfg Config) *Handler {
	return &Handler{
		users:      cfg.Users,
		sessions:   cfg.Sessions,
		resets:     cfg.Resets,
		posts:      cfg.Posts,
		storage:    cfg.Storage,
		bucket:     cfg.Bucket,
		keyPrefix:  cfg.KeyPrefix,
		sessionTTL: cfg.SessionTTL,
		limiter:    newRateLimiter(cfg.RateLimitPerSec, cfg.RateLimitBurst),
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.register)
			auth.POST("/login", h.limiter.middleware(), h.login)
			auth.POST("/logout", h.requireUser(), h.logout)
			auth.GET("/me", h.me)
			auth.POST("/reset/request", h.limiter.middleware(), h.requestReset)
			auth.POST("/reset/confirm", h.confirmReset)
		}

		profile := api.Group("/profile", h.requireUser())
		{
			profile.GET("", h.getProfile)
			profile.PUT("", h.updateProfile)
			profile.POST("/avatar", h.uploadAvatar)
		}

		api.GET("/posts", h.listPosts)
		api.POST("/posts", h.requireUser(), h.createPost)
		api.GET("/posts/:id", h.getPost)
		api.POST("/posts/:id/comments", h.requireUser(), h.createComment)

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	CreatedAt string `json:"created_at"`
}

type CommentResponse struct {
	ID         int64  `json:"id"`
	PostID     int64  `json:"post_id"`
	AuthorID   int64  `json:"author_id"`
	AuthorName string `json:"author_name"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at"`
}

type PostResponse struct {
	ID         int64             `json:"id"`
	AuthorID   int64             `json:"author_id"`
	AuthorName string            `json:"author_name"`
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	CreatedAt  string            `json:"created_at"`
	Comments   []CommentResponse `json:"comments,omitempty"`
}

func (h *Handler) userToResponse(c *gin.Context, user *domain.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.AvatarKey != "" && h.storage != nil && h.bucket != "" {
		if url, err := h.storage.ObjectURL(c.Request.Context(), h.bucket, user.AvatarKey, avatarURLExpiry); err == nil {
			resp.AvatarURL = url
		}
	}
	return resp
}

func commentToResponse(comment domain.Comment) CommentResponse {
	return CommentResponse{
		ID:         comment.ID,
		PostID:     comment.PostID,
		AuthorID:   comment.AuthorID,
		AuthorName: comment.AuthorName,
		Body:       comment.Body,
		CreatedAt:  comment.CreatedAt.Format(time.RFC3339),
	}
}

func postToResponse(post domain.Post) PostResponse {
	resp := PostResponse{
		ID:         post.ID,
		AuthorID:   post.AuthorID,
		AuthorName: post.AuthorName,
		Title:      post.Title,
		Content:    post.Content,
		CreatedAt:  post.CreatedAt.Format(time.RFC3339),
		Comments:   make([]CommentResponse, len(post.Comments)),
	}
	for i := range post.Comments {
		resp.Comments[i] = commentToResponse(post.Comments[i])
	}
	return resp
}
