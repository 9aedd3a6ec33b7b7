package views

import (
	"github.com/laurahq/lms/core/catalog"
	"github.com/laurahq/lms/core/homework"
	"github.com/laurahq/lms/core/progress"
	"github.com/laurahq/lms/core/user"
)

// CourseCard is a published course joined with the student's aggregate
// progress, zero-valued if the student has not started.
type CourseCard struct {
	catalog.Course
	Progress progress.CourseProgress `json:"progress"`
}

// CourseTree is the course program: modules and lessons in sort order, with
// per-lesson student state.
type CourseTree struct {
	catalog.Course
	Modules []ModuleNode `json:"modules"`
}

type ModuleNode struct {
	catalog.Module
	Lessons []LessonNode `json:"lessons"`
}

type LessonNode struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	SortOrder        int    `json:"sort_order"`
	VideoDurationSec int    `json:"video_duration_sec"`
	HasHomework      bool   `json:"has_homework"`
	Status           string `json:"status"`
	// student-specific state, derived at read time
	UserStatus     string `json:"user_status"`
	HomeworkStatus string `json:"homework_status"`
}

// LessonDetail is the full lesson player payload: the lesson, its attachments,
// and the student's progress and homework submission (nil if none).
type LessonDetail struct {
	catalog.Lesson
	Attachments []catalog.Attachment     `json:"attachments"`
	Progress    *progress.LessonProgress `json:"progress"`
	Submission  *homework.Submission     `json:"homework_submission"`
}

// EnrollmentRow is one course line in an admin student row.
type EnrollmentRow struct {
	CourseID    string                  `json:"course_id"`
	CourseTitle string                  `json:"course_title"`
	Status      string                  `json:"status"`
	Progress    progress.CourseProgress `json:"progress"`
}

// AdminStudentRow joins a student with their enrollments and progress.
type AdminStudentRow struct {
	User        user.Preview    `json:"user"`
	Enrollments []EnrollmentRow `json:"enrollments"`
	LastLoginAt string          `json:"last_login_at,omitempty"`
}

// HomeworkFeedItem enriches a submission with its student and catalog context
// plus the accumulated review trail.
type HomeworkFeedItem struct {
	Submission  homework.Submission `json:"submission"`
	Student     user.Preview        `json:"student"`
	LessonTitle string              `json:"lesson_title"`
	CourseTitle string              `json:"course_title"`
	Reviews     []homework.Review   `json:"reviews"`
}
