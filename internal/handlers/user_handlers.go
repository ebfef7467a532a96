package handlers

import (
	"net/http"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/users"
	"github.com/gin-gonic/gin"
)

//
// --- Auth Handlers ---
//

// Register is the handler for POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var input users.RegisterInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}
	res, err := h.Users.Register(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login is the handler for POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}
	res, err := h.Users.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Me is the handler for GET /api/auth/me
func (h *Handlers) Me(c *gin.Context) {
	profile, err := h.Users.Me(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// ChangePassword is the handler for PUT /api/auth/password
func (h *Handlers) ChangePassword(c *gin.Context) {
	var input ChangePasswordInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Users.ChangePassword(c.Request.Context(), userID(c), input.CurrentPassword, input.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

//
// --- Profile Handlers ---
//

// UpdateProfile is the handler for PUT /api/users/profile
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var patch users.ProfilePatch
	if err := bindJSON(c, &patch); err != nil {
		h.respondError(c, err)
		return
	}
	u, err := h.Users.UpdateProfile(c.Request.Context(), userID(c), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": u})
}

// GetAddresses is the handler for GET /api/users/addresses
func (h *Handlers) GetAddresses(c *gin.Context) {
	list, err := h.Users.Addresses(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// AddAddress is the handler for POST /api/users/addresses
func (h *Handlers) AddAddress(c *gin.Context) {
	var input users.AddressInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}
	a, err := h.Users.AddAddress(c.Request.Context(), userID(c), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// UpdateAddress is the handler for PUT /api/users/addresses/:id
func (h *Handlers) UpdateAddress(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var input users.AddressInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}
	a, err := h.Users.UpdateAddress(c.Request.Context(), userID(c), id, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// DeleteAddress is the handler for DELETE /api/users/addresses/:id
func (h *Handlers) DeleteAddress(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Users.DeleteAddress(c.Request.Context(), userID(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}

// GetSettings is the handler for GET /api/users/settings
func (h *Handlers) GetSettings(c *gin.Context) {
	st, err := h.Users.Settings(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// UpdateSettings is the handler for PUT /api/users/settings
// Only the fields present in the body change.
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var patch models.SettingsPatch
	if err := bindJSON(c, &patch); err != nil {
		h.respondError(c, err)
		return
	}
	st, err := h.Users.UpdateSettings(c.Request.Context(), userID(c), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
