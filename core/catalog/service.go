package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/laurahq/lms/core"
)

var (
	// errors
	ErrCourseNotFound     = errors.New("course not found")
	ErrModuleNotFound     = errors.New("module not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrSlugExists         = errors.New("a course with this slug already exists")
	ErrSortOrderTaken     = errors.New("this sort order is already taken")

	ErrHomeworkTaskRequired   = errors.New("a homework task is required when homework is enabled")
	ErrUnexpectedHomeworkTask = errors.New("a homework task is not allowed when homework is disabled")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CheckSlugUniqueness(slug string, excludedCourses ...Course) error
		CreateCourse(crs Course) (Course, error)
		UpdateCourse(crs Course) (Course, error)
		GetCourseByID(id string) (Course, error)
		GetCourseBySlug(slug string) (Course, error)
		QueryAllCourses() ([]Course, error)
		QueryCoursesByStatus(status string) ([]Course, error)

		CreateModule(mod Module) (Module, error)
		GetModuleByID(id string) (Module, error)
		// QueryModulesByCourseID returns the course's modules sorted by SortOrder.
		QueryModulesByCourseID(courseID string) ([]Module, error)

		CreateLesson(lsn Lesson) (Lesson, error)
		UpdateLesson(lsn Lesson) (Lesson, error)
		GetLessonByID(id string) (Lesson, error)
		// QueryLessonsByModuleID returns the module's lessons sorted by SortOrder.
		QueryLessonsByModuleID(moduleID string) ([]Lesson, error)
		// QueryLessonsByCourseID returns the course's lessons in canonical course
		// order: module SortOrder first, lesson SortOrder within each module.
		QueryLessonsByCourseID(courseID string) ([]Lesson, error)

		CreateAttachment(att Attachment) (Attachment, error)
		// QueryAttachmentsByLessonID returns the lesson's attachments sorted by SortOrder.
		QueryAttachmentsByLessonID(lessonID string) ([]Attachment, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkSlugUniqueness(slug string, exclCourses ...Course) error {
	if err := svc.repo.CheckSlugUniqueness(slug, exclCourses...); err != nil {
		if err == ErrSlugExists {
			return core.NewValidationError(err, core.FieldError{Field: "slug", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) CreateCourse(authorID string, nc NewCourse) (Course, error) {
	now := nowFunc().UTC()
	crs := Course{
		ID:               uuid.NewString(),
		Title:            nc.Title,
		Slug:             nc.Slug,
		Description:      nc.Description,
		ShortDescription: nc.ShortDescription,
		CoverURL:         nc.CoverURL,
		Status:           nc.Status,
		AuthorID:         authorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return svc.repo.CreateCourse(crs)
}

func (svc *Service) UpdateCourse(id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourseByID(id)
	if err != nil {
		return Course{}, err
	}
	crs.Title = uc.Title
	crs.Slug = uc.Slug
	crs.Description = uc.Description
	crs.ShortDescription = uc.ShortDescription
	crs.CoverURL = uc.CoverURL
	crs.Status = uc.Status
	crs.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateCourse(crs)
}

func (svc *Service) AddModule(courseID string, nm NewModule) (Module, error) {
	crs, err := svc.repo.GetCourseByID(courseID)
	if err != nil {
		return Module{}, err
	}

	mods, err := svc.repo.QueryModulesByCourseID(crs.ID)
	if err != nil {
		return Module{}, err
	}
	if nm.SortOrder == 0 {
		nm.SortOrder = len(mods) + 1
	} else {
		for _, mod := range mods {
			if mod.SortOrder == nm.SortOrder {
				return Module{}, core.NewValidationError(
					ErrSortOrderTaken, core.FieldError{Field: "sort_order", Error: ErrSortOrderTaken.Error()})
			}
		}
	}

	now := nowFunc().UTC()
	mod := Module{
		ID:          uuid.NewString(),
		CourseID:    crs.ID,
		Title:       nm.Title,
		Description: nm.Description,
		SortOrder:   nm.SortOrder,
		Status:      nm.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateModule(mod)
}

func (svc *Service) AddLesson(moduleID string, nl NewLesson) (Lesson, error) {
	mod, err := svc.repo.GetModuleByID(moduleID)
	if err != nil {
		return Lesson{}, err
	}

	lsns, err := svc.repo.QueryLessonsByModuleID(mod.ID)
	if err != nil {
		return Lesson{}, err
	}
	if nl.SortOrder == 0 {
		nl.SortOrder = len(lsns) + 1
	} else {
		for _, lsn := range lsns {
			if lsn.SortOrder == nl.SortOrder {
				return Lesson{}, core.NewValidationError(
					ErrSortOrderTaken, core.FieldError{Field: "sort_order", Error: ErrSortOrderTaken.Error()})
			}
		}
	}

	now := nowFunc().UTC()
	lsn := Lesson{
		ID:               uuid.NewString(),
		ModuleID:         mod.ID,
		CourseID:         mod.CourseID,
		Title:            nl.Title,
		Slug:             nl.Slug,
		SortOrder:        nl.SortOrder,
		VideoURL:         nl.VideoURL,
		VideoProvider:    nl.VideoProvider,
		VideoDurationSec: nl.VideoDurationSec,
		ContentHTML:      nl.ContentHTML,
		HasHomework:      nl.HasHomework,
		HomeworkTask:     nl.HomeworkTask,
		Status:           nl.Status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	lsn, err = svc.repo.CreateLesson(lsn)
	if err != nil {
		return Lesson{}, err
	}
	if err = svc.refreshCourseTotals(mod.CourseID); err != nil {
		return Lesson{}, err
	}
	return lsn, nil
}

func (svc *Service) AddAttachment(lessonID string, na NewAttachment) (Attachment, error) {
	lsn, err := svc.repo.GetLessonByID(lessonID)
	if err != nil {
		return Attachment{}, err
	}

	atts, err := svc.repo.QueryAttachmentsByLessonID(lsn.ID)
	if err != nil {
		return Attachment{}, err
	}
	if na.SortOrder == 0 {
		na.SortOrder = len(atts) + 1
	}

	att := Attachment{
		ID:            uuid.NewString(),
		LessonID:      lsn.ID,
		Title:         na.Title,
		FileURL:       na.FileURL,
		FileType:      na.FileType,
		FileSizeBytes: na.FileSizeBytes,
		SortOrder:     na.SortOrder,
		CreatedAt:     nowFunc().UTC(),
	}
	return svc.repo.CreateAttachment(att)
}

// refreshCourseTotals recomputes the denormalized TotalLessons and
// EstimatedDurationMin caches from the course's current lesson membership.
func (svc *Service) refreshCourseTotals(courseID string) error {
	crs, err := svc.repo.GetCourseByID(courseID)
	if err != nil {
		return err
	}
	lsns, err := svc.repo.QueryLessonsByCourseID(courseID)
	if err != nil {
		return err
	}

	var totalSec int
	for _, lsn := range lsns {
		totalSec += lsn.VideoDurationSec
	}
	crs.TotalLessons = len(lsns)
	crs.EstimatedDurationMin = (totalSec + 59) / 60
	crs.UpdatedAt = nowFunc().UTC()

	_, err = svc.repo.UpdateCourse(crs)
	return err
}

// Queries

func (svc *Service) CourseByID(id string) (Course, error) {
	return svc.repo.GetCourseByID(id)
}

func (svc *Service) CourseBySlug(slug string) (Course, error) {
	return svc.repo.GetCourseBySlug(core.CleanString(slug, true /* lower */))
}

func (svc *Service) AllCourses() ([]Course, error) {
	return svc.repo.QueryAllCourses()
}

func (svc *Service) PublishedCourses() ([]Course, error) {
	return svc.repo.QueryCoursesByStatus(StatusPublished)
}

func (svc *Service) ModulesOf(courseID string) ([]Module, error) {
	return svc.repo.QueryModulesByCourseID(courseID)
}

func (svc *Service) LessonByID(id string) (Lesson, error) {
	return svc.repo.GetLessonByID(id)
}

func (svc *Service) LessonsOfModule(moduleID string) ([]Lesson, error) {
	return svc.repo.QueryLessonsByModuleID(moduleID)
}

// LessonsOfCourse returns the course's lessons in canonical course order.
func (svc *Service) LessonsOfCourse(courseID string) ([]Lesson, error) {
	return svc.repo.QueryLessonsByCourseID(courseID)
}

func (svc *Service) AttachmentsOf(lessonID string) ([]Attachment, error) {
	return svc.repo.QueryAttachmentsByLessonID(lessonID)
}
