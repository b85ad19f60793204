package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Samsoniteyd/newtailor/internal/apperr"
	"github.com/Samsoniteyd/newtailor/internal/middleware"
	"github.com/Samsoniteyd/newtailor/internal/models"
	"github.com/Samsoniteyd/newtailor/internal/util"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	DB           *gorm.DB
	JWTSecret    string
	TokenTTL     time.Duration
	BcryptCost   int
	SecureCookie bool
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, ttlHours, bcryptCost int, secureCookie bool) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 7 * 24
	}
	return &AuthHandler{
		DB:           db,
		JWTSecret:    jwtSecret,
		TokenTTL:     time.Duration(ttlHours) * time.Hour,
		BcryptCost:   bcryptCost,
		SecureCookie: secureCookie,
	}
}

// setSessionCookie mirrors the token into the session cookie. Secure and
// strict same-site in release deployments.
func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, token, int(h.TokenTTL.Seconds()), "/", "", h.SecureCookie, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.SecureCookie, true)
}

// findByIdentity looks a user up by email or phone, whichever is given.
func findByIdentity(db *gorm.DB, email, phone string) (*models.User, error) {
	q := db.Model(&models.User{})
	switch {
	case email != "" && phone != "":
		q = q.Where("email = ? OR phone = ?", email, phone)
	case email != "":
		q = q.Where("email = ?", email)
	case phone != "":
		q = q.Where("phone = ?", phone)
	default:
		return nil, gorm.ErrRecordNotFound
	}

	var user models.User
	if err := q.First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// identityTaken reports whether another user (excluding excludeID) already
// holds the given email or phone. Advisory only: the unique indexes on the
// users table are the real arbiter under concurrent registration.
func identityTaken(db *gorm.DB, email, phone string, excludeID uint) (bool, error) {
	if email == "" && phone == "" {
		return false, nil
	}
	q := db.Model(&models.User{})
	switch {
	case email != "" && phone != "":
		q = q.Where("email = ? OR phone = ?", email, phone)
	case email != "":
		q = q.Where("email = ?", email)
	default:
		q = q.Where("phone = ?", phone)
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ---------- register ----------

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func validateRegister(req *registerReq) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)

	fields := map[string]string{}
	if err := util.ValidateName(req.Name); err != nil {
		fields["name"] = err.Error()
	}
	if req.Email == "" && req.Phone == "" {
		fields["email"] = "either email or phone is required"
	}
	if req.Email != "" {
		if err := util.ValidateEmail(req.Email); err != nil {
			fields["email"] = err.Error()
		}
	}
	if req.Phone != "" {
		if err := util.ValidatePhone(req.Phone); err != nil {
			fields["phone"] = err.Error()
		}
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		fields["password"] = err.Error()
	}
	if len(fields) > 0 {
		return apperr.ValidationFields(fields)
	}
	return nil
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}

	if err := validateRegister(&req); err != nil {
		util.Fail(c, err)
		return
	}

	taken, err := identityTaken(h.DB, req.Email, req.Phone, 0)
	if err != nil {
		util.Fail(c, apperr.Server("check identity", err))
		return
	}
	if taken {
		util.Fail(c, apperr.DuplicateIdentity())
		return
	}

	hash, err := util.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		util.Fail(c, apperr.Server("hash password", err))
		return
	}

	user := models.User{
		Name:         req.Name,
		PasswordHash: hash,
	}
	if req.Email != "" {
		user.Email = &req.Email
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	if err := h.DB.Create(&user).Error; err != nil {
		// lost a race against a concurrent registration with the same identity
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Fail(c, apperr.DuplicateIdentity())
			return
		}
		util.Fail(c, apperr.Server("create user", err))
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, user.ID, h.TokenTTL)
	if err != nil {
		util.Fail(c, apperr.Server("generate token", err))
		return
	}

	h.setSessionCookie(c, token)
	util.Success(c, http.StatusCreated, util.Response{
		"user":  user,
		"token": token,
	})
}

// ---------- login ----------

type loginReq struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Password == "" || (req.Email == "" && req.Phone == "") {
		util.Fail(c, apperr.Validation("email or phone and password are required"))
		return
	}

	user, err := findByIdentity(h.DB, req.Email, req.Phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// same message as a wrong password: no account enumeration
			util.Fail(c, apperr.InvalidCredentials())
		} else {
			util.Fail(c, apperr.Server("look up user", err))
		}
		return
	}

	if !util.ComparePassword(req.Password, user.PasswordHash) {
		util.Fail(c, apperr.InvalidCredentials())
		return
	}

	// last-login bookkeeping never blocks a login
	now := time.Now()
	user.LastLoginAt = &now
	_ = h.DB.Model(user).Update("last_login_at", now).Error

	token, err := util.GenerateToken(h.JWTSecret, user.ID, h.TokenTTL)
	if err != nil {
		util.Fail(c, apperr.Server("generate token", err))
		return
	}

	h.setSessionCookie(c, token)
	util.Success(c, http.StatusOK, util.Response{
		"user":  user,
		"token": token,
	})
}
