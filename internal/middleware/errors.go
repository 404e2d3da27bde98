package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tickerlens/internal/domain/dto"
)

// ErrorHandler turns errors attached with c.Error into a 500 JSON body when
// the handler has not written a response itself.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", c.Errors.Last().Err))
}

// AbortWithError records err on the context and aborts with a standard
// error body.
//
// Parameters:
//   - status: HTTP status to respond with.
//   - message: human readable message.
//   - err: optional cause, exposed as the "error" field.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
