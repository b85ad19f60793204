package middleware

import (
	"bytes"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Samsoniteyd/newtailor/internal/models"
)

const maxAuditBody = 2000

// Audit records each authenticated operation as an AuditLog row.
// Must run after Auth so the current user is available.
func Audit(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID uint
		if user, ok := CurrentUser(c); ok {
			userID = user.ID
		}

		// buffer the body so the handler can still read it
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		if userID == 0 {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		// never record credentials
		if len(bodyBytes) > 0 && len(bodyBytes) < maxAuditBody && !strings.Contains(string(bodyBytes), "password") {
			action += " " + string(bodyBytes)
		}

		log := models.AuditLog{
			UserID:    &userID,
			Method:    c.Request.Method,
			Path:      path,
			Action:    action,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		_ = db.Create(&log).Error
	}
}
