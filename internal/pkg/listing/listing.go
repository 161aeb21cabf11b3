// Package listing filters, sorts and pages lists that were already loaded
// from storage. Predicates are conjunctive so every added filter can only
// narrow a result, and sorting is stable so equal keys keep their input order.
package listing

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/pkg/helpers"
)

// SortKey selects the ordering of a list
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortRating    SortKey = "rating"
	SortDownloads SortKey = "downloads"
	SortViews     SortKey = "views"
	SortTitle     SortKey = "title"
)

// ParseSortKey accepts the client's sort names, including the legacy "recent"
func ParseSortKey(s string) SortKey {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "newest", "recent", "date":
		return SortNewest
	case "rating":
		return SortRating
	case "downloads":
		return SortDownloads
	case "views":
		return SortViews
	case "title":
		return SortTitle
	}
	return ""
}

// Query is the set of client-selected predicates, ordering and page
type Query struct {
	Search   string
	Category string
	CourseID int64
	FileType string
	Window   string
	Sort     SortKey
	Page     int
	Size     int
}

// Accessors tells the generic functions how to read an item. A nil accessor
// disables the matching predicate or sort key.
type Accessors[T any] struct {
	Text      func(T) []string
	Category  func(T) string
	CourseID  func(T) int64
	FileType  func(T) string
	Created   func(T) time.Time
	Rating    func(T) float64
	Downloads func(T) int64
	Views     func(T) int64
	Title     func(T) string
}

// Filter keeps the items matching every active predicate of q, in input order
func Filter[T any](items []T, q Query, acc Accessors[T], now time.Time) []T {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	category := strings.TrimSpace(q.Category)
	if category == "all" {
		category = ""
	}
	fileType := strings.ToLower(strings.TrimSpace(q.FileType))
	if fileType == "all" {
		fileType = ""
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if search != "" && acc.Text != nil && !containsFold(acc.Text(item), search) {
			continue
		}
		if category != "" && acc.Category != nil && acc.Category(item) != category {
			continue
		}
		if q.CourseID > 0 && acc.CourseID != nil && acc.CourseID(item) != q.CourseID {
			continue
		}
		if fileType != "" && acc.FileType != nil && !matchesFileType(acc.FileType(item), fileType) {
			continue
		}
		if q.Window != "" && acc.Created != nil && !helpers.WithinWindow(acc.Created(item), now, q.Window) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Sort returns a stably sorted copy of items. Numeric keys sort descending,
// title ascending. An empty or unsupported key keeps the input order.
func Sort[T any](items []T, key SortKey, acc Accessors[T]) []T {
	out := slices.Clone(items)

	var compare func(a, b T) int
	switch {
	case key == SortNewest && acc.Created != nil:
		compare = func(a, b T) int { return acc.Created(b).Compare(acc.Created(a)) }
	case key == SortRating && acc.Rating != nil:
		compare = func(a, b T) int { return cmp.Compare(acc.Rating(b), acc.Rating(a)) }
	case key == SortDownloads && acc.Downloads != nil:
		compare = func(a, b T) int { return cmp.Compare(acc.Downloads(b), acc.Downloads(a)) }
	case key == SortViews && acc.Views != nil:
		compare = func(a, b T) int { return cmp.Compare(acc.Views(b), acc.Views(a)) }
	case key == SortTitle && acc.Title != nil:
		compare = func(a, b T) int { return strings.Compare(acc.Title(a), acc.Title(b)) }
	default:
		return out
	}

	slices.SortStableFunc(out, compare)
	return out
}

// Paginate returns the requested window and its page metadata
func Paginate[T any](items []T, page, size int) ([]T, dto.PaginationInfo) {
	if size <= 0 {
		size = helpers.DefaultPageSize
	}
	if page < 1 {
		page = helpers.DefaultPage
	}
	start, end := helpers.CalculateSliceIndices(page, size, len(items))
	return items[start:end], helpers.NewPaginationInfo(int64(len(items)), page, size)
}

// Apply runs Filter, Sort and Paginate in that order
func Apply[T any](items []T, q Query, acc Accessors[T], now time.Time) ([]T, dto.PaginationInfo) {
	filtered := Filter(items, q, acc, now)
	sorted := Sort(filtered, q.Sort, acc)
	return Paginate(sorted, q.Page, q.Size)
}

func containsFold(fields []string, needle string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// "ppt" also matches "pptx", "doc" also matches "docx"
func matchesFileType(actual, wanted string) bool {
	actual = strings.ToLower(actual)
	return actual == wanted || actual == wanted+"x"
}
