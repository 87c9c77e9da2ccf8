package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/rollcall/internal/app/models/dto"
	"github.com/yigit/rollcall/internal/pkg/apperrors"
	"github.com/yigit/rollcall/internal/pkg/helpers"
)

var errUnauthenticated = apperrors.ErrTokenInvalid

// paginate reads ?page and ?size and returns the store window plus a builder for the response metadata
func paginate(ctx *gin.Context) (offset uint64, limit int, info func(total int64) dto.PaginationInfo) {
	page := helpers.PageFromQuery(ctx)
	offset, limit = page.Window()
	return offset, limit, page.Info
}
