package http

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dev-answer/internal/service"
)

const maxAvatarSize = 5 << 20 // 5 MiB

var allowedAvatarTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

func (h *Handler) getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, h.userToResponse(c, currentUser(c)))
}

type updateProfileRequest struct {
	Email       string `json:"email" binding:"required"`
	FullName    string `json:"full_name" binding:"required"`
	NewPassword string `json:"new_password"`
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	updated, err := h.users.UpdateProfile(c.Request.Context(), user.ID, req.FullName, req.Email, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateEmail):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, h.userToResponse(c, updated))
}

func (h *Handler) uploadAvatar(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar storage is not configured"})
		return
	}

	file, err := c.FormFile("picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "picture file is required"})
		return
	}
	if file.Size > maxAvatarSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "picture is too large"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := allowedAvatarTypes[ext]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported picture format"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	key := fmt.Sprintf("%s/%s%s", strings.Trim(h.keyPrefix, "/"), uuid.NewString(), ext)
	if err := h.storage.Upload(c.Request.Context(), h.bucket, key, contentType, src); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	oldKey := user.AvatarKey

	updated, err := h.users.SetAvatar(c.Request.Context(), user.ID, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if oldKey != "" {
		// best effort, the new avatar is already in place
		_ = h.storage.Delete(c.Request.Context(), h.bucket, oldKey)
	}

	c.JSON(http.StatusOK, h.userToResponse(c, updated))
}
