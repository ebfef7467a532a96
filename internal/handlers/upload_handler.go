package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxAvatarSize = 2 << 20 // 2 MiB

var avatarExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// UploadAvatar is the handler for POST /api/users/avatar
// It saves the image under UPLOAD_DIR and stores its public URL on the user.
func (h *Handlers) UploadAvatar(c *gin.Context) {
	// 1. Get the file from the request
	file, err := c.FormFile("avatar")
	if err != nil {
		h.respondError(c, apperr.Validation("No file uploaded"))
		return
	}
	if file.Size > maxAvatarSize {
		h.respondError(c, apperr.Validation("Avatar must be at most 2 MB"))
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !avatarExts[ext] {
		h.respondError(c, apperr.Validation("Avatar must be a jpg, png, gif or webp image"))
		return
	}

	// 2. Create the upload directory if it doesn't exist
	dir := h.Config.UploadDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		h.respondError(c, apperr.Internal("Failed to save file", err))
		return
	}

	// 3. Generate a safe unique filename (uuid + extension) and save
	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(dir, name)); err != nil {
		h.respondError(c, apperr.Internal("Failed to save file", err))
		return
	}

	// 4. Store the public URL
	url := fmt.Sprintf("%s/uploads/%s", strings.TrimRight(h.Config.BaseURL, "/"), name)
	u, err := h.Users.SetAvatar(c.Request.Context(), userID(c), url)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "user": u})
}
