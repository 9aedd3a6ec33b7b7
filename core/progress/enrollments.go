package progress

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/laurahq/lms/core"
	"github.com/laurahq/lms/core/catalog"
)

var (
	// errors
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrAlreadyEnrolled    = errors.New("student is already enrolled in this course")
	ErrUnknownStatus      = errors.New("unknown enrollment status")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateEnrollment(enr Enrollment) (Enrollment, error)
		UpdateEnrollment(enr Enrollment) (Enrollment, error)
		GetEnrollment(userID, courseID string) (Enrollment, error)
		QueryEnrollmentsByUserID(userID string) ([]Enrollment, error)
		QueryEnrollmentsByCourseID(courseID string) ([]Enrollment, error)

		GetCourseProgress(userID, courseID string) (CourseProgress, error)
		GetLessonProgress(userID, lessonID string) (LessonProgress, error)
		QueryLessonProgressByCourse(userID, courseID string) ([]LessonProgress, error)
		SaveLessonProgress(lp LessonProgress) (LessonProgress, error)
		// SaveProgress persists the lesson progress and the recomputed course
		// aggregate as one atomic unit: no reader may observe a completed
		// lesson paired with a stale course aggregate.
		SaveProgress(lp LessonProgress, cp CourseProgress) error
	}

	// Enrollments administers a student's access state per course. Any
	// transition is allowed: this is an authority-holder override, not a
	// guarded state machine.
	Enrollments struct {
		repo    Repository
		catalog *catalog.Service
	}
)

func NewEnrollments(repo Repository, catalogSvc *catalog.Service) *Enrollments {
	return &Enrollments{repo: repo, catalog: catalogSvc}
}

// Enroll grants the student access to a course. At most one enrollment may
// exist per (user, course) pair.
func (svc *Enrollments) Enroll(userID, courseID string) (Enrollment, error) {
	crs, err := svc.catalog.CourseByID(courseID)
	if err != nil {
		return Enrollment{}, err
	}

	if _, err = svc.repo.GetEnrollment(userID, crs.ID); err == nil {
		return Enrollment{}, core.NewValidationError(ErrAlreadyEnrolled)
	} else if err != ErrEnrollmentNotFound {
		return Enrollment{}, err
	}

	enr := Enrollment{
		ID:         uuid.NewString(),
		UserID:     userID,
		CourseID:   crs.ID,
		Status:     EnrollmentActive,
		EnrolledAt: nowFunc().UTC(),
	}
	return svc.repo.CreateEnrollment(enr)
}

// SetStatus applies an administrative enrollment transition. No status is
// forbidden from any other.
func (svc *Enrollments) SetStatus(userID, courseID, status string) (Enrollment, error) {
	if !ValidEnrollmentStatus(status) {
		return Enrollment{}, core.NewValidationError(
			ErrUnknownStatus, core.FieldError{Field: "status", Error: ErrUnknownStatus.Error()})
	}

	enr, err := svc.repo.GetEnrollment(userID, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	enr.Status = status
	return svc.repo.UpdateEnrollment(enr)
}

func (svc *Enrollments) Get(userID, courseID string) (Enrollment, error) {
	return svc.repo.GetEnrollment(userID, courseID)
}

func (svc *Enrollments) ByUser(userID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollmentsByUserID(userID)
}

func (svc *Enrollments) ByCourse(courseID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollmentsByCourseID(courseID)
}

// touch bumps the enrollment's LastAccessedAt. Missing enrollments are
// ignored: playback tracking works for un-enrolled previews too.
func (svc *Enrollments) touch(userID, courseID string) error {
	enr, err := svc.repo.GetEnrollment(userID, courseID)
	if err != nil {
		if err == ErrEnrollmentNotFound {
			return nil
		}
		return err
	}
	now := nowFunc().UTC()
	enr.LastAccessedAt = &now
	_, err = svc.repo.UpdateEnrollment(enr)
	return err
}

// complete is the completion trigger fired by the Tracker when every lesson
// of the course is done. It is the only non-administrative writer.
func (svc *Enrollments) complete(enr Enrollment) error {
	if enr.Status == EnrollmentCompleted {
		return nil
	}
	enr.Status = EnrollmentCompleted
	_, err := svc.repo.UpdateEnrollment(enr)
	return err
}
