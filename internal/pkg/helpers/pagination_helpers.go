package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studyhub-il/studyhub/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 1
	// MaxPage bounds the page number read from the query string
	MaxPage = 1_000_000
)

// NewPaginationInfo builds page metadata. An empty list still has one page.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}

	totalPages := 1
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(size)))
	}

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}

// ParsePaginationParams reads "page" and "size" with the global default size
func ParsePaginationParams(c *gin.Context) (page, size int) {
	return ParsePaginationParamsWithDefault(c, DefaultPageSize)
}

// ParsePaginationParamsWithDefault reads "page" and "size", falling back to
// defaultSize when size is absent or out of range.
func ParsePaginationParamsWithDefault(c *gin.Context, defaultSize int) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}

	size, err = strconv.Atoi(c.Query("size"))
	if err != nil || size <= 0 || size > MaxPageSize {
		size = defaultSize
	}

	return page, size
}

// ParseSeq reads the optional client sequence number echoed back in list responses
func ParseSeq(c *gin.Context) *int64 {
	raw := c.Query("seq")
	if raw == "" {
		return nil
	}
	seq, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &seq
}

// CalculateSliceIndices returns the [start, end) window of a page over
// totalItems elements. Both indices are clamped to totalItems.
func CalculateSliceIndices(page, size, totalItems int) (start, end int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}

	// Compare before multiplying so huge page numbers cannot overflow
	if page-1 > totalItems/size {
		return totalItems, totalItems
	}
	start = (page - 1) * size
	if start > totalItems {
		start = totalItems
	}
	if size > totalItems-start {
		end = totalItems
	} else {
		end = start + size
	}

	return start, end
}
