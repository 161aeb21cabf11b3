package helpers

import (
	"math"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSliceIndices(t *testing.T) {
	tests := []struct {
		name              string
		page, size, total int
		start, end        int
	}{
		{"first page", 1, 10, 25, 0, 10},
		{"last partial page", 3, 10, 25, 20, 25},
		{"past the end", 4, 10, 25, 25, 25},
		{"defaults", 0, 0, 5, 0, 5},
		{"huge page", math.MaxInt, 10, 25, 25, 25},
		{"huge size", 2, math.MaxInt, 25, 25, 25},
		{"huge page and size", math.MaxInt, math.MaxInt, 25, 25, 25},
		{"empty list", 1, 10, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := CalculateSliceIndices(tt.page, tt.size, tt.total)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(25, 2, 9)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, int64(25), info.TotalItems)

	empty := NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 1, empty.TotalPages)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=3&size=500&seq=17", nil)

	page, size := ParsePaginationParamsWithDefault(c, 9)
	assert.Equal(t, 3, page)
	assert.Equal(t, 9, size)

	c.Request = httptest.NewRequest("GET", "/?page=9223372036854775807", nil)
	page, _ = ParsePaginationParams(c)
	assert.Equal(t, MaxPage, page)

	c.Request = httptest.NewRequest("GET", "/?page=3&size=500&seq=17", nil)
	seq := ParseSeq(c)
	require.NotNil(t, seq)
	assert.Equal(t, int64(17), *seq)
}

func TestWithinWindow(t *testing.T) {
	now := time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)

	assert.True(t, WithinWindow(now.Add(-2*time.Hour), now, "today"))
	assert.False(t, WithinWindow(now.Add(-16*time.Hour), now, "today"))
	assert.True(t, WithinWindow(now.AddDate(0, 0, -6), now, "week"))
	assert.False(t, WithinWindow(now.AddDate(0, 0, -8), now, "week"))
	assert.True(t, WithinWindow(now.AddDate(-5, 0, 0), now, "all"))
}
