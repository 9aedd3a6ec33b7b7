package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/laurahq/lms/core/catalog"
)

type catalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sql.DB) catalog.Repository {
	return &catalogRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo *catalogRepository) CheckSlugUniqueness(slug string, excludedCourses ...catalog.Course) error {
	query := `SELECT count(*) FROM course WHERE slug = $1`
	args := []interface{}{slug}
	if len(excludedCourses) > 0 {
		ids := make([]string, 0, len(excludedCourses))
		for _, crs := range excludedCourses {
			ids = append(ids, crs.ID)
		}
		query += ` AND NOT (id = ANY($2))`
		args = append(args, pqStringArray(ids))
	}

	var count int
	if err := repo.db.Get(&count, query, args...); err != nil {
		return errors.Wrap(err, "checking slug uniqueness")
	}
	if count > 0 {
		return catalog.ErrSlugExists
	}
	return nil
}

func (repo *catalogRepository) CreateCourse(crs catalog.Course) (catalog.Course, error) {
	const query = `
		INSERT INTO course (id, title, slug, description, short_description, cover_url, status, author_id,
		                    total_lessons, estimated_duration_min, created_at, updated_at)
		VALUES (:id, :title, :slug, :description, :short_description, :cover_url, :status, :author_id,
		        :total_lessons, :estimated_duration_min, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(query, crs); err != nil {
		return catalog.Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

func (repo *catalogRepository) UpdateCourse(crs catalog.Course) (catalog.Course, error) {
	const query = `
		UPDATE course
		SET title = :title, slug = :slug, description = :description, short_description = :short_description,
		    cover_url = :cover_url, status = :status, total_lessons = :total_lessons,
		    estimated_duration_min = :estimated_duration_min, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExec(query, crs)
	if err != nil {
		return catalog.Course{}, errors.Wrap(err, "updating course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.Course{}, catalog.ErrCourseNotFound
	}
	return crs, nil
}

func (repo *catalogRepository) GetCourseByID(id string) (catalog.Course, error) {
	var crs catalog.Course
	if err := repo.db.Get(&crs, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Course{}, catalog.ErrCourseNotFound
		}
		return catalog.Course{}, errors.Wrap(err, "getting course by ID")
	}
	return crs, nil
}

func (repo *catalogRepository) GetCourseBySlug(slug string) (catalog.Course, error) {
	var crs catalog.Course
	if err := repo.db.Get(&crs, `SELECT * FROM course WHERE slug = $1`, slug); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Course{}, catalog.ErrCourseNotFound
		}
		return catalog.Course{}, errors.Wrap(err, "getting course by slug")
	}
	return crs, nil
}

func (repo *catalogRepository) QueryAllCourses() ([]catalog.Course, error) {
	courses := make([]catalog.Course, 0)
	if err := repo.db.Select(&courses, `SELECT * FROM course ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo *catalogRepository) QueryCoursesByStatus(status string) ([]catalog.Course, error) {
	courses := make([]catalog.Course, 0)
	if err := repo.db.Select(&courses, `SELECT * FROM course WHERE status = $1 ORDER BY created_at`, status); err != nil {
		return nil, errors.Wrap(err, "querying courses by status")
	}
	return courses, nil
}

func (repo *catalogRepository) CreateModule(mod catalog.Module) (catalog.Module, error) {
	const query = `
		INSERT INTO module (id, course_id, title, description, sort_order, status, created_at, updated_at)
		VALUES (:id, :course_id, :title, :description, :sort_order, :status, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(query, mod); err != nil {
		return catalog.Module{}, errors.Wrap(err, "creating module")
	}
	return mod, nil
}

func (repo *catalogRepository) GetModuleByID(id string) (catalog.Module, error) {
	var mod catalog.Module
	if err := repo.db.Get(&mod, `SELECT * FROM module WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Module{}, catalog.ErrModuleNotFound
		}
		return catalog.Module{}, errors.Wrap(err, "getting module by ID")
	}
	return mod, nil
}

func (repo *catalogRepository) QueryModulesByCourseID(courseID string) ([]catalog.Module, error) {
	mods := make([]catalog.Module, 0)
	if err := repo.db.Select(&mods, `SELECT * FROM module WHERE course_id = $1 ORDER BY sort_order`, courseID); err != nil {
		return nil, errors.Wrap(err, "querying modules")
	}
	return mods, nil
}

func (repo *catalogRepository) CreateLesson(lsn catalog.Lesson) (catalog.Lesson, error) {
	const query = `
		INSERT INTO lesson (id, module_id, course_id, title, slug, sort_order, video_url, video_provider,
		                    video_duration_sec, content_html, has_homework, homework_task, status, created_at, updated_at)
		VALUES (:id, :module_id, :course_id, :title, :slug, :sort_order, :video_url, :video_provider,
		        :video_duration_sec, :content_html, :has_homework, :homework_task, :status, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(query, lsn); err != nil {
		return catalog.Lesson{}, errors.Wrap(err, "creating lesson")
	}
	return lsn, nil
}

func (repo *catalogRepository) UpdateLesson(lsn catalog.Lesson) (catalog.Lesson, error) {
	const query = `
		UPDATE lesson
		SET title = :title, slug = :slug, sort_order = :sort_order, video_url = :video_url,
		    video_provider = :video_provider, video_duration_sec = :video_duration_sec,
		    content_html = :content_html, has_homework = :has_homework, homework_task = :homework_task,
		    status = :status, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExec(query, lsn)
	if err != nil {
		return catalog.Lesson{}, errors.Wrap(err, "updating lesson")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.Lesson{}, catalog.ErrLessonNotFound
	}
	return lsn, nil
}

func (repo *catalogRepository) GetLessonByID(id string) (catalog.Lesson, error) {
	var lsn catalog.Lesson
	if err := repo.db.Get(&lsn, `SELECT * FROM lesson WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Lesson{}, catalog.ErrLessonNotFound
		}
		return catalog.Lesson{}, errors.Wrap(err, "getting lesson by ID")
	}
	return lsn, nil
}

func (repo *catalogRepository) QueryLessonsByModuleID(moduleID string) ([]catalog.Lesson, error) {
	lsns := make([]catalog.Lesson, 0)
	if err := repo.db.Select(&lsns, `SELECT * FROM lesson WHERE module_id = $1 ORDER BY sort_order`, moduleID); err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}
	return lsns, nil
}

func (repo *catalogRepository) QueryLessonsByCourseID(courseID string) ([]catalog.Lesson, error) {
	const query = `
		SELECT l.* FROM lesson l
		JOIN module m ON m.id = l.module_id
		WHERE l.course_id = $1
		ORDER BY m.sort_order, l.sort_order`
	lsns := make([]catalog.Lesson, 0)
	if err := repo.db.Select(&lsns, query, courseID); err != nil {
		return nil, errors.Wrap(err, "querying course lessons")
	}
	return lsns, nil
}

func (repo *catalogRepository) CreateAttachment(att catalog.Attachment) (catalog.Attachment, error) {
	const query = `
		INSERT INTO attachment (id, lesson_id, title, file_url, file_type, file_size_bytes, sort_order, created_at)
		VALUES (:id, :lesson_id, :title, :file_url, :file_type, :file_size_bytes, :sort_order, :created_at)`
	if _, err := repo.db.NamedExec(query, att); err != nil {
		return catalog.Attachment{}, errors.Wrap(err, "creating attachment")
	}
	return att, nil
}

func (repo *catalogRepository) QueryAttachmentsByLessonID(lessonID string) ([]catalog.Attachment, error) {
	atts := make([]catalog.Attachment, 0)
	if err := repo.db.Select(&atts, `SELECT * FROM attachment WHERE lesson_id = $1 ORDER BY sort_order`, lessonID); err != nil {
		return nil, errors.Wrap(err, "querying attachments")
	}
	return atts, nil
}
