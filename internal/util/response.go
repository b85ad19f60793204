package util

import (
	"github.com/gin-gonic/gin"

	"github.com/Samsoniteyd/newtailor/internal/apperr"
)

// Response is the data payload of a successful reply.
type Response map[string]interface{}

// Success writes the uniform success envelope.
func Success(c *gin.Context, status int, data Response) {
	c.JSON(status, gin.H{
		"code": apperr.CodeOK,
		"data": data,
	})
}

// Fail maps an internal error to its HTTP status and writes the uniform
// error envelope. All handler failures go through here.
func Fail(c *gin.Context, err error) {
	body := gin.H{
		"code":    apperr.Code(err),
		"message": apperr.Message(err),
	}
	if fields := apperr.FieldErrors(err); len(fields) > 0 {
		body["errors"] = fields
	}
	c.JSON(apperr.Status(err), body)
}
