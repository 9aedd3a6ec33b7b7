package progress

import (
	"math"
	"time"
)

// Enrollment statuses, the student's access level for a course.
const (
	EnrollmentActive    = "active"
	EnrollmentPaused    = "paused"
	EnrollmentRevoked   = "revoked"
	EnrollmentCompleted = "completed"
)

var EnrollmentStatuses = []string{EnrollmentActive, EnrollmentPaused, EnrollmentRevoked, EnrollmentCompleted}

// Lesson statuses from the student's perspective. Locked and Available are
// derived on read, never stored; only InProgress and Completed are persisted.
const (
	LessonLocked     = "locked"
	LessonAvailable  = "available"
	LessonInProgress = "in_progress"
	LessonCompleted  = "completed"
)

// Enrollment links one student to one course. At most one per (user, course) pair.
type Enrollment struct {
	ID             string     `json:"id" db:"id"`
	UserID         string     `json:"user_id" db:"user_id"`
	CourseID       string     `json:"course_id" db:"course_id"`
	Status         string     `json:"status" db:"status"`
	EnrolledAt     time.Time  `json:"enrolled_at" db:"enrolled_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at" db:"last_accessed_at"`
}

// CourseProgress is the per-enrollment aggregate, recomputed whenever a lesson
// completes or the course's lesson count changes.
type CourseProgress struct {
	EnrollmentID     string    `json:"enrollment_id" db:"enrollment_id"`
	UserID           string    `json:"user_id" db:"user_id"`
	CourseID         string    `json:"course_id" db:"course_id"`
	CompletedLessons int       `json:"completed_lessons" db:"completed_lessons"`
	TotalLessons     int       `json:"total_lessons" db:"total_lessons"`
	Percentage       int       `json:"percentage" db:"percentage"`
	LastLessonID     string    `json:"last_lesson_id" db:"last_lesson_id"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// LessonProgress is the per-(user, lesson) record. CompletedAt is set exactly
// once, when the lesson completes, and never cleared.
type LessonProgress struct {
	ID               string     `json:"id" db:"id"`
	UserID           string     `json:"user_id" db:"user_id"`
	LessonID         string     `json:"lesson_id" db:"lesson_id"`
	CourseID         string     `json:"course_id" db:"course_id"`
	Status           string     `json:"status" db:"status"`
	VideoPositionSec int        `json:"video_position_sec" db:"video_position_sec"`
	VideoCompleted   bool       `json:"video_completed" db:"video_completed"`
	StartedAt        time.Time  `json:"started_at" db:"started_at"`
	CompletedAt      *time.Time `json:"completed_at" db:"completed_at"`
}

func (lp *LessonProgress) IsCompleted() bool { return lp.Status == LessonCompleted }

// Percent returns round(100 * completed / total), clamped to [0, 100].
func Percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(completed) / float64(total)))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ValidEnrollmentStatus reports whether s is a known enrollment status.
func ValidEnrollmentStatus(s string) bool {
	for _, st := range EnrollmentStatuses {
		if s == st {
			return true
		}
	}
	return false
}
