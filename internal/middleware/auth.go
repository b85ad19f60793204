package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Samsoniteyd/newtailor/internal/apperr"
	"github.com/Samsoniteyd/newtailor/internal/models"
	"github.com/Samsoniteyd/newtailor/internal/util"
)

// TokenCookie is the cookie the server mirrors the bearer token into so
// browser clients survive a reload without re-entering credentials.
const TokenCookie = "ts_token"

// CurrentUserKey is the gin context key the middleware stores the user under.
const CurrentUserKey = "currentUser"

// Auth verifies the session token and loads the current user into the
// context. Rejected requests never reach the handler.
func Auth(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Header: Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		// 2) query param ?token=xxx, for file downloads where the client
		// cannot set headers
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		// 3) session cookie
		if tokenStr == "" {
			if cookie, err := c.Cookie(TokenCookie); err == nil {
				tokenStr = cookie
			}
		}

		if tokenStr == "" {
			util.Fail(c, apperr.Unauthorized("authentication required"))
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, util.ErrTokenExpired) {
				msg = "session expired, please log in again"
			}
			util.Fail(c, apperr.Unauthorized(msg))
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Fail(c, apperr.Unauthorized("account no longer exists"))
			} else {
				util.Fail(c, apperr.Server("load user", err))
			}
			c.Abort()
			return
		}

		c.Set(CurrentUserKey, &user)
		c.Next()
	}
}

// CurrentUser extracts the authenticated user placed by Auth. The bool is
// false only if the middleware was somehow skipped.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
