package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultInstitution is the catch-all institution of the seeded catalog
const DefaultInstitution = "כללי"

// Course is an academic course offered at an institution
type Course struct {
	ID          int64     `json:"id" db:"id"`
	CourseCode  string    `json:"courseCode" db:"course_code" example:"COURSE01"`
	CourseName  string    `json:"courseName" db:"course_name" example:"מבוא למדעי המחשב"`
	Institution string    `json:"institution" db:"institution" example:"כללי"`
	Semester    *string   `json:"semester,omitempty" db:"semester"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`

	SummaryCount   int64 `json:"summaryCount"`
	ForumPostCount int64 `json:"forumPostCount"`
}

// CourseRef is the compact course projection embedded in content
type CourseRef struct {
	ID          int64  `json:"id"`
	CourseCode  string `json:"courseCode"`
	CourseName  string `json:"courseName"`
	Institution string `json:"institution"`
}

// InstitutionCoursePrefix derives the short code used to namespace a course
// copy for another institution: the first word longer than two characters,
// cut to five characters and upper-cased.
func InstitutionCoursePrefix(institution string) string {
	source := institution
	for _, w := range strings.Fields(institution) {
		if utf8.RuneCountInString(w) > 2 {
			source = w
			break
		}
	}
	runes := []rune(source)
	if len(runes) > 5 {
		runes = runes[:5]
	}
	return strings.ToUpper(string(runes))
}

// InstitutionCourseCode is the course code of an institution-specific copy
func InstitutionCourseCode(institution, baseCode string) string {
	return InstitutionCoursePrefix(institution) + "-" + baseCode
}
