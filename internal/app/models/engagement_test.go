package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRatingAggregate(t *testing.T) {
	empty := NewRatingAggregate(nil)
	assert.Nil(t, empty.Average)
	assert.Zero(t, empty.Count)

	agg := NewRatingAggregate([]int{3, 4})
	require.NotNil(t, agg.Average)
	assert.Equal(t, 3.5, *agg.Average)
	assert.Equal(t, 2, agg.Count)

	agg = NewRatingAggregate([]int{5, 4, 4})
	assert.InDelta(t, 4.3333, *agg.Average, 0.0001)
}

func TestTargetType(t *testing.T) {
	assert.True(t, TargetSummary.Commentable())
	assert.True(t, TargetForumPost.Commentable())
	assert.False(t, TargetTool.Commentable())
	assert.False(t, TargetType("course").Valid())
}

func TestValidRating(t *testing.T) {
	for _, v := range []int{1, 2, 3, 4, 5} {
		assert.True(t, ValidRating(v))
	}
	for _, v := range []int{0, 6, -1} {
		assert.False(t, ValidRating(v))
	}
}

func TestInstitutionCourseCode(t *testing.T) {
	assert.Equal(t, "TECHN-CS101", InstitutionCourseCode("technion institute", "CS101"))
	assert.Equal(t, "AB-CS101", InstitutionCourseCode("ab", "CS101"))
	assert.Equal(t, "האוני-COURSE01", InstitutionCourseCode("האוניברסיטה העברית", "COURSE01"))
}
