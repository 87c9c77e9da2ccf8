package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/rollcall/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a 1-based page request for admin listings
type Page struct {
	Number int
	Size   int
}

// NewPage normalizes a page request. Sizes above MaxPageSize are clamped.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// PageFromQuery reads ?page and ?size. Unparseable values fall back to the defaults.
func PageFromQuery(c *gin.Context) Page {
	number, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))
	return NewPage(number, size)
}

// Window is the store offset and limit for the page
func (p Page) Window() (offset uint64, limit int) {
	return uint64(p.Number-1) * uint64(p.Size), p.Size
}

// Info describes the page against the total row count. An empty listing
// still reports one page; a page past the end reports the last one.
func (p Page) Info(total int64) dto.PaginationInfo {
	pages := int((total + int64(p.Size) - 1) / int64(p.Size))
	if pages == 0 {
		pages = 1
	}
	current := p.Number
	if current > pages {
		current = pages
	}
	return dto.PaginationInfo{
		CurrentPage: current,
		TotalPages:  pages,
		PageSize:    p.Size,
		TotalItems:  total,
	}
}
