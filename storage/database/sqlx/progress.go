package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/laurahq/lms/core/progress"
)

type progressRepository struct {
	db *sqlx.DB
}

func NewProgressRepository(db *sql.DB) progress.Repository {
	return &progressRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo *progressRepository) CreateEnrollment(enr progress.Enrollment) (progress.Enrollment, error) {
	const query = `
		INSERT INTO enrollment (id, user_id, course_id, status, enrolled_at, last_accessed_at)
		VALUES (:id, :user_id, :course_id, :status, :enrolled_at, :last_accessed_at)`
	if _, err := repo.db.NamedExec(query, enr); err != nil {
		return progress.Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	return enr, nil
}

func (repo *progressRepository) UpdateEnrollment(enr progress.Enrollment) (progress.Enrollment, error) {
	const query = `
		UPDATE enrollment
		SET status = :status, last_accessed_at = :last_accessed_at
		WHERE id = :id`
	res, err := repo.db.NamedExec(query, enr)
	if err != nil {
		return progress.Enrollment{}, errors.Wrap(err, "updating enrollment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return progress.Enrollment{}, progress.ErrEnrollmentNotFound
	}
	return enr, nil
}

func (repo *progressRepository) GetEnrollment(userID, courseID string) (progress.Enrollment, error) {
	var enr progress.Enrollment
	err := repo.db.Get(&enr, `SELECT * FROM enrollment WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return progress.Enrollment{}, progress.ErrEnrollmentNotFound
		}
		return progress.Enrollment{}, errors.Wrap(err, "getting enrollment")
	}
	return enr, nil
}

func (repo *progressRepository) QueryEnrollmentsByUserID(userID string) ([]progress.Enrollment, error) {
	enrs := make([]progress.Enrollment, 0)
	if err := repo.db.Select(&enrs, `SELECT * FROM enrollment WHERE user_id = $1 ORDER BY enrolled_at`, userID); err != nil {
		return nil, errors.Wrap(err, "querying user enrollments")
	}
	return enrs, nil
}

func (repo *progressRepository) QueryEnrollmentsByCourseID(courseID string) ([]progress.Enrollment, error) {
	enrs := make([]progress.Enrollment, 0)
	if err := repo.db.Select(&enrs, `SELECT * FROM enrollment WHERE course_id = $1 ORDER BY enrolled_at`, courseID); err != nil {
		return nil, errors.Wrap(err, "querying course enrollments")
	}
	return enrs, nil
}

func (repo *progressRepository) GetCourseProgress(userID, courseID string) (progress.CourseProgress, error) {
	var cp progress.CourseProgress
	err := repo.db.Get(&cp, `SELECT * FROM course_progress WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return progress.CourseProgress{}, progress.ErrProgressNotFound
		}
		return progress.CourseProgress{}, errors.Wrap(err, "getting course progress")
	}
	return cp, nil
}

func (repo *progressRepository) GetLessonProgress(userID, lessonID string) (progress.LessonProgress, error) {
	var lp progress.LessonProgress
	err := repo.db.Get(&lp, `SELECT * FROM lesson_progress WHERE user_id = $1 AND lesson_id = $2`, userID, lessonID)
	if err != nil {
		if err == sql.ErrNoRows {
			return progress.LessonProgress{}, progress.ErrProgressNotFound
		}
		return progress.LessonProgress{}, errors.Wrap(err, "getting lesson progress")
	}
	return lp, nil
}

func (repo *progressRepository) QueryLessonProgressByCourse(userID, courseID string) ([]progress.LessonProgress, error) {
	lps := make([]progress.LessonProgress, 0)
	err := repo.db.Select(&lps,
		`SELECT * FROM lesson_progress WHERE user_id = $1 AND course_id = $2 ORDER BY started_at`, userID, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course lesson progress")
	}
	return lps, nil
}

const upsertLessonProgressQuery = `
	INSERT INTO lesson_progress (id, user_id, lesson_id, course_id, status, video_position_sec,
	                             video_completed, started_at, completed_at)
	VALUES (:id, :user_id, :lesson_id, :course_id, :status, :video_position_sec,
	        :video_completed, :started_at, :completed_at)
	ON CONFLICT (user_id, lesson_id) DO UPDATE
	SET status = EXCLUDED.status, video_position_sec = EXCLUDED.video_position_sec,
	    video_completed = EXCLUDED.video_completed, completed_at = EXCLUDED.completed_at`

func (repo *progressRepository) SaveLessonProgress(lp progress.LessonProgress) (progress.LessonProgress, error) {
	if _, err := repo.db.NamedExec(upsertLessonProgressQuery, lp); err != nil {
		return progress.LessonProgress{}, errors.Wrap(err, "saving lesson progress")
	}
	return lp, nil
}

// SaveProgress writes the lesson record and the course aggregate in one
// transaction so readers never see one without the other.
func (repo *progressRepository) SaveProgress(lp progress.LessonProgress, cp progress.CourseProgress) error {
	const upsertCourseProgressQuery = `
		INSERT INTO course_progress (enrollment_id, user_id, course_id, completed_lessons,
		                             total_lessons, percentage, last_lesson_id, updated_at)
		VALUES (:enrollment_id, :user_id, :course_id, :completed_lessons,
		        :total_lessons, :percentage, :last_lesson_id, :updated_at)
		ON CONFLICT (user_id, course_id) DO UPDATE
		SET completed_lessons = EXCLUDED.completed_lessons, total_lessons = EXCLUDED.total_lessons,
		    percentage = EXCLUDED.percentage, last_lesson_id = EXCLUDED.last_lesson_id,
		    updated_at = EXCLUDED.updated_at`

	tx, err := repo.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "beginning progress transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err = tx.NamedExec(upsertLessonProgressQuery, lp); err != nil {
		return errors.Wrap(err, "saving lesson progress")
	}
	if _, err = tx.NamedExec(upsertCourseProgressQuery, cp); err != nil {
		return errors.Wrap(err, "saving course progress")
	}
	return errors.Wrap(tx.Commit(), "committing progress transaction")
}
