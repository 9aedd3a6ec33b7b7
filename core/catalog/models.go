package catalog

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/laurahq/lms/core"
)

// Publication statuses for courses, modules and lessons.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Supported video hosting providers.
const (
	VideoYoutube = "youtube"
	VideoVimeo   = "vimeo"
	VideoBunny   = "bunny"
	VideoCustom  = "custom"
)

// Downloadable attachment file types.
const (
	FilePDF   = "pdf"
	FileXLSX  = "xlsx"
	FileDOCX  = "docx"
	FilePPTX  = "pptx"
	FileZIP   = "zip"
	FileImage = "image"
	FileOther = "other"
)

type Course struct {
	ID               string    `json:"id" db:"id"`
	Title            string    `json:"title" db:"title"`
	Slug             string    `json:"slug" db:"slug"`
	Description      string    `json:"description" db:"description"`
	ShortDescription string    `json:"short_description" db:"short_description"`
	CoverURL         string    `json:"cover_url" db:"cover_url"`
	Status           string    `json:"status" db:"status"`
	AuthorID         string    `json:"author_id" db:"author_id"`
	// TotalLessons and EstimatedDurationMin are denormalized caches, recomputed
	// by the service whenever lesson membership changes.
	TotalLessons         int       `json:"total_lessons" db:"total_lessons"`
	EstimatedDurationMin int       `json:"estimated_duration_min" db:"estimated_duration_min"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

func (c *Course) IsPublished() bool { return c.Status == StatusPublished }

type Module struct {
	ID          string    `json:"id" db:"id"`
	CourseID    string    `json:"course_id" db:"course_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Lesson struct {
	ID               string  `json:"id" db:"id"`
	ModuleID         string  `json:"module_id" db:"module_id"`
	CourseID         string  `json:"course_id" db:"course_id"`
	Title            string  `json:"title" db:"title"`
	Slug             string  `json:"slug" db:"slug"`
	SortOrder        int     `json:"sort_order" db:"sort_order"`
	VideoURL         string  `json:"video_url" db:"video_url"`
	VideoProvider    string  `json:"video_provider" db:"video_provider"`
	VideoDurationSec int     `json:"video_duration_sec" db:"video_duration_sec"`
	ContentHTML      string  `json:"content_html" db:"content_html"`
	// HasHomework == (HomeworkTask != nil) is enforced at the authoring boundary.
	HasHomework  bool      `json:"has_homework" db:"has_homework"`
	HomeworkTask *string   `json:"homework_task" db:"homework_task"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type Attachment struct {
	ID            string    `json:"id" db:"id"`
	LessonID      string    `json:"lesson_id" db:"lesson_id"`
	Title         string    `json:"title" db:"title"`
	FileURL       string    `json:"file_url" db:"file_url"`
	FileType      string    `json:"file_type" db:"file_type"`
	FileSizeBytes int64     `json:"file_size_bytes" db:"file_size_bytes"`
	SortOrder     int       `json:"sort_order" db:"sort_order"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title            string `json:"title" validate:"required"`
	Slug             string `json:"slug" validate:"required,slug"`
	Description      string `json:"description"`
	ShortDescription string `json:"short_description"`
	CoverURL         string `json:"cover_url" validate:"omitempty,url"`
	Status           string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

func (nc *NewCourse) Validate(validate *validator.Validate, svc *Service) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Slug = core.CleanString(nc.Slug, true /* lower */)
	if nc.Status == "" {
		nc.Status = StatusDraft
	}

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.checkSlugUniqueness(nc.Slug)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Title            string `json:"title"`
	Slug             string `json:"slug" validate:"omitempty,slug"`
	Description      string `json:"description"`
	ShortDescription string `json:"short_description"`
	CoverURL         string `json:"cover_url" validate:"omitempty,url"`
	Status           string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate, origCrs Course, svc *Service) error {
	if title := core.CleanString(uc.Title); title != "" {
		uc.Title = title
	} else {
		uc.Title = origCrs.Title
	}
	if slug := core.CleanString(uc.Slug, true /* lower */); slug != "" {
		uc.Slug = slug
	} else {
		uc.Slug = origCrs.Slug
	}
	if uc.Status == "" {
		uc.Status = origCrs.Status
	}

	if err := validate.Struct(uc); err != nil {
		return err
	}
	return svc.checkSlugUniqueness(uc.Slug, origCrs)
}

// NewModule contains information needed to add a Module to a Course.
type NewModule struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order" validate:"omitempty,min=1"`
	Status      string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	if nm.Status == "" {
		nm.Status = StatusDraft
	}
	return validate.Struct(nm)
}

// NewLesson contains information needed to add a Lesson to a Module.
type NewLesson struct {
	Title            string  `json:"title" validate:"required"`
	Slug             string  `json:"slug" validate:"required,slug"`
	SortOrder        int     `json:"sort_order" validate:"omitempty,min=1"`
	VideoURL         string  `json:"video_url" validate:"omitempty,url"`
	VideoProvider    string  `json:"video_provider" validate:"omitempty,oneof=youtube vimeo bunny custom"`
	VideoDurationSec int     `json:"video_duration_sec" validate:"omitempty,min=0"`
	ContentHTML      string  `json:"content_html"`
	HasHomework      bool    `json:"has_homework"`
	HomeworkTask     *string `json:"homework_task"`
	Status           string  `json:"status" validate:"omitempty,oneof=draft published archived"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	nl.Slug = core.CleanString(nl.Slug, true /* lower */)
	if nl.Status == "" {
		nl.Status = StatusDraft
	}

	if err := validate.Struct(nl); err != nil {
		return err
	}

	// a lesson has a homework task if and only if it requires homework
	if nl.HasHomework && (nl.HomeworkTask == nil || core.CleanString(*nl.HomeworkTask) == "") {
		return core.NewValidationError(
			ErrHomeworkTaskRequired,
			core.FieldError{Field: "homework_task", Error: ErrHomeworkTaskRequired.Error()},
		)
	}
	if !nl.HasHomework && nl.HomeworkTask != nil {
		return core.NewValidationError(
			ErrUnexpectedHomeworkTask,
			core.FieldError{Field: "homework_task", Error: ErrUnexpectedHomeworkTask.Error()},
		)
	}
	return nil
}

// NewAttachment contains information needed to attach a file to a Lesson.
type NewAttachment struct {
	Title         string `json:"title" validate:"required"`
	FileURL       string `json:"file_url" validate:"required,url"`
	FileType      string `json:"file_type" validate:"omitempty,oneof=pdf xlsx docx pptx zip image other"`
	FileSizeBytes int64  `json:"file_size_bytes" validate:"omitempty,min=0"`
	SortOrder     int    `json:"sort_order" validate:"omitempty,min=1"`
}

func (na *NewAttachment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	if na.FileType == "" {
		na.FileType = FileOther
	}
	return validate.Struct(na)
}
