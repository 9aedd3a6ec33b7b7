package progress

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/laurahq/lms/core"
	"github.com/laurahq/lms/core/catalog"
)

var ErrProgressNotFound = errors.New("progress not found")

// Tracker maintains LessonProgress and the derived CourseProgress per student.
type Tracker struct {
	repo        Repository
	catalog     *catalog.Service
	enrollments *Enrollments

	strictLocking      bool
	videoCompletionPct int
}

func NewTracker(repo Repository, catalogSvc *catalog.Service, enrollments *Enrollments, conf *core.Config) *Tracker {
	return &Tracker{
		repo:               repo,
		catalog:            catalogSvc,
		enrollments:        enrollments,
		strictLocking:      conf.Progress.StrictLessonLocking,
		videoCompletionPct: conf.Progress.VideoCompletionPct,
	}
}

// RecordPlaybackPosition upserts the student's resume point for a lesson.
// The first interaction creates the record as InProgress; a completed lesson
// never regresses back to InProgress.
func (t *Tracker) RecordPlaybackPosition(userID, lessonID string, positionSec int) (LessonProgress, error) {
	lsn, err := t.catalog.LessonByID(lessonID)
	if err != nil {
		return LessonProgress{}, err
	}
	if err = t.checkUnlocked(userID, lsn); err != nil {
		return LessonProgress{}, err
	}
	if positionSec < 0 {
		positionSec = 0
	}

	lp, err := t.repo.GetLessonProgress(userID, lessonID)
	if err != nil {
		if err != ErrProgressNotFound {
			return LessonProgress{}, err
		}
		lp = LessonProgress{
			ID:        uuid.NewString(),
			UserID:    userID,
			LessonID:  lsn.ID,
			CourseID:  lsn.CourseID,
			Status:    LessonInProgress,
			StartedAt: nowFunc().UTC(),
		}
	}

	lp.VideoPositionSec = positionSec
	if lsn.VideoDurationSec > 0 && positionSec*100 >= lsn.VideoDurationSec*t.videoCompletionPct {
		lp.VideoCompleted = true
	}

	lp, err = t.repo.SaveLessonProgress(lp)
	if err != nil {
		return LessonProgress{}, err
	}
	if err = t.enrollments.touch(userID, lsn.CourseID); err != nil {
		return LessonProgress{}, err
	}
	return lp, nil
}

// MarkLessonCompleted completes the lesson for the student and recomputes the
// owning course aggregate as a single atomic unit. Calling it twice is a
// no-op on the second call: CompletedAt never changes once set.
// Completing the last outstanding lesson advances the enrollment to Completed.
func (t *Tracker) MarkLessonCompleted(userID, lessonID string) (CourseProgress, error) {
	lsn, err := t.catalog.LessonByID(lessonID)
	if err != nil {
		return CourseProgress{}, err
	}
	if err = t.checkUnlocked(userID, lsn); err != nil {
		return CourseProgress{}, err
	}
	enr, err := t.repo.GetEnrollment(userID, lsn.CourseID)
	if err != nil {
		return CourseProgress{}, err
	}

	lp, err := t.repo.GetLessonProgress(userID, lessonID)
	if err != nil {
		if err != ErrProgressNotFound {
			return CourseProgress{}, err
		}
		lp = LessonProgress{
			ID:        uuid.NewString(),
			UserID:    userID,
			LessonID:  lsn.ID,
			CourseID:  lsn.CourseID,
			StartedAt: nowFunc().UTC(),
		}
	}
	if lp.IsCompleted() {
		return t.CourseProgressFor(userID, lsn.CourseID)
	}

	now := nowFunc().UTC()
	lp.Status = LessonCompleted
	lp.VideoCompleted = true
	lp.CompletedAt = &now
	if lp.StartedAt.IsZero() {
		lp.StartedAt = now
	}

	crs, err := t.catalog.CourseByID(lsn.CourseID)
	if err != nil {
		return CourseProgress{}, err
	}
	lps, err := t.repo.QueryLessonProgressByCourse(userID, lsn.CourseID)
	if err != nil {
		return CourseProgress{}, err
	}
	completed := 1 // this lesson
	for _, other := range lps {
		if other.LessonID != lsn.ID && other.IsCompleted() {
			completed++
		}
	}

	cp := CourseProgress{
		EnrollmentID:     enr.ID,
		UserID:           userID,
		CourseID:         lsn.CourseID,
		CompletedLessons: completed,
		TotalLessons:     crs.TotalLessons,
		Percentage:       Percent(completed, crs.TotalLessons),
		LastLessonID:     lsn.ID,
		UpdatedAt:        now,
	}
	if err = t.repo.SaveProgress(lp, cp); err != nil {
		return CourseProgress{}, err
	}

	if crs.TotalLessons > 0 && completed >= crs.TotalLessons {
		if err = t.enrollments.complete(enr); err != nil {
			return CourseProgress{}, err
		}
	}
	return cp, nil
}

// CourseProgressFor returns the student's aggregate for a course, or a
// zero-valued default if the student has not started it yet. Lesson membership
// may have changed since the aggregate was last stored, so the total and
// percentage are reconciled against the catalog on every read.
func (t *Tracker) CourseProgressFor(userID, courseID string) (CourseProgress, error) {
	crs, err := t.catalog.CourseByID(courseID)
	if err != nil {
		return CourseProgress{}, err
	}

	cp, err := t.repo.GetCourseProgress(userID, courseID)
	if err != nil {
		if err != ErrProgressNotFound {
			return CourseProgress{}, err
		}
		cp = CourseProgress{
			UserID:       userID,
			CourseID:     crs.ID,
			TotalLessons: crs.TotalLessons,
		}
		if enr, err := t.repo.GetEnrollment(userID, courseID); err == nil {
			cp.EnrollmentID = enr.ID
		}
		return cp, nil
	}

	if cp.TotalLessons != crs.TotalLessons {
		cp.TotalLessons = crs.TotalLessons
		cp.Percentage = Percent(cp.CompletedLessons, crs.TotalLessons)
	}
	return cp, nil
}

// LessonProgressFor returns the stored per-lesson record, if any.
func (t *Tracker) LessonProgressFor(userID, lessonID string) (LessonProgress, error) {
	return t.repo.GetLessonProgress(userID, lessonID)
}

// LessonStatuses derives the student-facing status of every lesson in the
// course, keyed by lesson ID, applying the configured locking policy.
func (t *Tracker) LessonStatuses(userID, courseID string) (map[string]string, error) {
	lsns, err := t.catalog.LessonsOfCourse(courseID)
	if err != nil {
		return nil, err
	}
	lps, err := t.repo.QueryLessonProgressByCourse(userID, courseID)
	if err != nil {
		return nil, err
	}

	byLesson := make(map[string]LessonProgress, len(lps))
	for _, lp := range lps {
		byLesson[lp.LessonID] = lp
	}

	statuses := make(map[string]string, len(lsns))
	priorCompleted := true // first lesson in the course is always available
	for _, lsn := range lsns {
		lp, started := byLesson[lsn.ID]
		switch {
		case started && lp.IsCompleted():
			statuses[lsn.ID] = LessonCompleted
		case started && lp.Status == LessonInProgress:
			statuses[lsn.ID] = LessonInProgress
		case !t.strictLocking || priorCompleted:
			statuses[lsn.ID] = LessonAvailable
		default:
			statuses[lsn.ID] = LessonLocked
		}
		priorCompleted = priorCompleted && started && lp.IsCompleted()
	}
	return statuses, nil
}

// checkUnlocked rejects writes against a lesson the locking policy still
// derives as Locked. A no-op unless strict locking is enabled.
func (t *Tracker) checkUnlocked(userID string, lsn catalog.Lesson) error {
	if !t.strictLocking {
		return nil
	}
	statuses, err := t.LessonStatuses(userID, lsn.CourseID)
	if err != nil {
		return err
	}
	if statuses[lsn.ID] == LessonLocked {
		return core.NewInvalidOperationError(
			fmt.Sprintf("lesson %q is locked until the preceding lessons are completed", lsn.ID))
	}
	return nil
}
