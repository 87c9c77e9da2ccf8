package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/rollcall/internal/app/models/dto"
)

// BindJSON binds and validates a JSON body. On failure it writes the 400 and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}

// BindForm binds and validates a form-encoded body. On failure it writes the 400 and returns false.
func BindForm(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBind(obj); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}
