package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Samsoniteyd/newtailor/internal/apperr"
	"github.com/Samsoniteyd/newtailor/internal/middleware"
	"github.com/Samsoniteyd/newtailor/internal/models"
	"github.com/Samsoniteyd/newtailor/internal/util"
)

// GetProfile returns the current user.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Fail(c, apperr.Unauthorized(""))
		return
	}
	util.Success(c, http.StatusOK, util.Response{"user": user})
}

// ---------- update profile ----------

type updateProfileReq struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// UpdateProfile changes name/email/phone. The duplicate-identity rule from
// registration applies, excluding the user's own row.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Fail(c, apperr.Unauthorized(""))
		return
	}

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	if req.Name == nil && req.Email == nil && req.Phone == nil {
		util.Fail(c, apperr.Validation("nothing to update"))
		return
	}

	fields := map[string]string{}
	if req.Name != nil {
		*req.Name = strings.TrimSpace(*req.Name)
		if err := util.ValidateName(*req.Name); err != nil {
			fields["name"] = err.Error()
		}
	}
	var newEmail, newPhone string
	if req.Email != nil {
		newEmail = strings.ToLower(strings.TrimSpace(*req.Email))
		if newEmail != "" {
			if err := util.ValidateEmail(newEmail); err != nil {
				fields["email"] = err.Error()
			}
		}
	}
	if req.Phone != nil {
		newPhone = strings.TrimSpace(*req.Phone)
		if newPhone != "" {
			if err := util.ValidatePhone(newPhone); err != nil {
				fields["phone"] = err.Error()
			}
		}
	}
	if len(fields) > 0 {
		util.Fail(c, apperr.ValidationFields(fields))
		return
	}

	// the account must keep at least one contact method
	finalEmail := userEmail(user)
	if req.Email != nil {
		finalEmail = newEmail
	}
	finalPhone := userPhone(user)
	if req.Phone != nil {
		finalPhone = newPhone
	}
	if finalEmail == "" && finalPhone == "" {
		util.Fail(c, apperr.Validation("either email or phone is required"))
		return
	}

	taken, err := identityTaken(h.DB, newEmail, newPhone, user.ID)
	if err != nil {
		util.Fail(c, apperr.Server("check identity", err))
		return
	}
	if taken {
		util.Fail(c, apperr.DuplicateIdentity())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = nilIfEmpty(newEmail)
	}
	if req.Phone != nil {
		updates["phone"] = nilIfEmpty(newPhone)
	}

	if err := h.DB.Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Fail(c, apperr.DuplicateIdentity())
			return
		}
		util.Fail(c, apperr.Server("update profile", err))
		return
	}

	// reflect the update in the response
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = strPtrOrNil(newEmail)
	}
	if req.Phone != nil {
		user.Phone = strPtrOrNil(newPhone)
	}

	util.Success(c, http.StatusOK, util.Response{"user": user})
}

// ---------- change password ----------

type changePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Fail(c, apperr.Unauthorized(""))
		return
	}

	var req changePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("old and new password are required"))
		return
	}
	if err := util.ValidatePassword(req.NewPassword); err != nil {
		util.Fail(c, apperr.ValidationFields(map[string]string{"new_password": err.Error()}))
		return
	}

	if !util.ComparePassword(req.OldPassword, user.PasswordHash) {
		util.Fail(c, apperr.Validation("old password is incorrect"))
		return
	}

	hash, err := util.HashPassword(req.NewPassword, h.BcryptCost)
	if err != nil {
		util.Fail(c, apperr.Server("hash password", err))
		return
	}

	if err := h.DB.Model(user).Update("password_hash", hash).Error; err != nil {
		util.Fail(c, apperr.Server("update password", err))
		return
	}

	util.Success(c, http.StatusOK, util.Response{
		"message": "password changed, please log in again with the new password",
	})
}

// ---------- delete account ----------

// DeleteAccount removes the user and, via foreign keys, their requisitions
// and audit rows. Implies logout: the session cookie is cleared and the
// still-valid token dies with the account on the next lookup.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Fail(c, apperr.Unauthorized(""))
		return
	}

	if err := h.DB.Delete(&models.User{}, user.ID).Error; err != nil {
		util.Fail(c, apperr.Server("delete account", err))
		return
	}

	h.clearSessionCookie(c)
	util.Success(c, http.StatusOK, util.Response{
		"message": "account deleted",
	})
}

// ---------- small helpers ----------

func userEmail(u *models.User) string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

func userPhone(u *models.User) string {
	if u.Phone == nil {
		return ""
	}
	return *u.Phone
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
