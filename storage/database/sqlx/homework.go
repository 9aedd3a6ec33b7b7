package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/laurahq/lms/core/homework"
)

type homeworkRepository struct {
	db *sqlx.DB
}

func NewHomeworkRepository(db *sql.DB) homework.Repository {
	return &homeworkRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo *homeworkRepository) GetSubmissionByID(id string) (homework.Submission, error) {
	var sub homework.Submission
	if err := repo.db.Get(&sub, `SELECT * FROM homework_submission WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return homework.Submission{}, homework.ErrSubmissionNotFound
		}
		return homework.Submission{}, errors.Wrap(err, "getting submission by ID")
	}
	return sub, nil
}

func (repo *homeworkRepository) GetSubmissionByUserLesson(userID, lessonID string) (homework.Submission, error) {
	var sub homework.Submission
	err := repo.db.Get(&sub, `SELECT * FROM homework_submission WHERE user_id = $1 AND lesson_id = $2`, userID, lessonID)
	if err != nil {
		if err == sql.ErrNoRows {
			return homework.Submission{}, homework.ErrSubmissionNotFound
		}
		return homework.Submission{}, errors.Wrap(err, "getting submission by user and lesson")
	}
	return sub, nil
}

func (repo *homeworkRepository) UpsertSubmission(sub homework.Submission) (homework.Submission, error) {
	const query = `
		INSERT INTO homework_submission (id, user_id, lesson_id, course_id, content, attachment_url,
		                                 status, submitted_at, updated_at)
		VALUES (:id, :user_id, :lesson_id, :course_id, :content, :attachment_url,
		        :status, :submitted_at, :updated_at)
		ON CONFLICT (user_id, lesson_id) DO UPDATE
		SET content = EXCLUDED.content, attachment_url = EXCLUDED.attachment_url,
		    status = EXCLUDED.status, submitted_at = EXCLUDED.submitted_at, updated_at = EXCLUDED.updated_at`
	if _, err := repo.db.NamedExec(query, sub); err != nil {
		return homework.Submission{}, errors.Wrap(err, "upserting submission")
	}
	return sub, nil
}

func (repo *homeworkRepository) FilterSubmissions(filter homework.Filter) ([]homework.Submission, error) {
	query := `SELECT * FROM homework_submission`
	var clauses []string
	var args []interface{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, "status = "+dollar(len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		clauses = append(clauses, "user_id = "+dollar(len(args)))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY submitted_at DESC"

	subs := make([]homework.Submission, 0)
	if err := repo.db.Select(&subs, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering submissions")
	}
	return subs, nil
}

// AppendReview flips the pending submission and records the review in one
// transaction. The status guard in the UPDATE makes concurrent reviews of the
// same submission yield exactly one success.
func (repo *homeworkRepository) AppendReview(rev homework.Review, updatedAt time.Time) (homework.Submission, error) {
	tx, err := repo.db.Beginx()
	if err != nil {
		return homework.Submission{}, errors.Wrap(err, "beginning review transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	const flipQuery = `
		UPDATE homework_submission
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`
	res, err := tx.Exec(flipQuery, rev.Status, updatedAt, rev.SubmissionID, homework.StatusPending)
	if err != nil {
		return homework.Submission{}, errors.Wrap(err, "updating submission status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err = tx.Get(&exists, `SELECT EXISTS (SELECT 1 FROM homework_submission WHERE id = $1)`, rev.SubmissionID); err != nil {
			return homework.Submission{}, errors.Wrap(err, "checking submission existence")
		}
		if !exists {
			return homework.Submission{}, homework.ErrSubmissionNotFound
		}
		return homework.Submission{}, homework.ErrNotPending
	}

	const insertQuery = `
		INSERT INTO homework_review (id, submission_id, reviewer_id, comment, status, created_at)
		VALUES (:id, :submission_id, :reviewer_id, :comment, :status, :created_at)`
	if _, err = tx.NamedExec(insertQuery, rev); err != nil {
		return homework.Submission{}, errors.Wrap(err, "inserting review")
	}

	var sub homework.Submission
	if err = tx.Get(&sub, `SELECT * FROM homework_submission WHERE id = $1`, rev.SubmissionID); err != nil {
		return homework.Submission{}, errors.Wrap(err, "reloading submission")
	}
	if err = tx.Commit(); err != nil {
		return homework.Submission{}, errors.Wrap(err, "committing review transaction")
	}
	return sub, nil
}

func (repo *homeworkRepository) QueryReviewsBySubmissionID(submissionID string) ([]homework.Review, error) {
	revs := make([]homework.Review, 0)
	err := repo.db.Select(&revs,
		`SELECT * FROM homework_review WHERE submission_id = $1 ORDER BY created_at`, submissionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying submission reviews")
	}
	return revs, nil
}
