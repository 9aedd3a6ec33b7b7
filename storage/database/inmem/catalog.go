package inmemdb

import (
	"sort"

	"github.com/laurahq/lms/core/catalog"
)

type catalogRepository struct {
	db *catalogTable
}

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{db: db.catalog}
}

func (repo *catalogRepository) CheckSlugUniqueness(slug string, excludedCourses ...catalog.Course) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

outer:
	for _, crs := range repo.db.courses {
		if crs.Slug != slug {
			continue
		}
		for _, excl := range excludedCourses {
			if crs.ID == excl.ID {
				continue outer
			}
		}
		return catalog.ErrSlugExists
	}
	return nil
}

func (repo *catalogRepository) CreateCourse(crs catalog.Course) (catalog.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *catalogRepository) UpdateCourse(crs catalog.Course) (catalog.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[crs.ID]; !ok {
		return catalog.Course{}, catalog.ErrCourseNotFound
	}
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *catalogRepository) GetCourseByID(id string) (catalog.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return catalog.Course{}, catalog.ErrCourseNotFound
}

func (repo *catalogRepository) GetCourseBySlug(slug string) (catalog.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, crs := range repo.db.courses {
		if crs.Slug == slug {
			return *crs, nil
		}
	}
	return catalog.Course{}, catalog.ErrCourseNotFound
}

func (repo *catalogRepository) QueryAllCourses() ([]catalog.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]catalog.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.Before(courses[j].CreatedAt) })
	return courses, nil
}

func (repo *catalogRepository) QueryCoursesByStatus(status string) ([]catalog.Course, error) {
	courses, _ := repo.QueryAllCourses()
	matched := make([]catalog.Course, 0, len(courses))
	for _, crs := range courses {
		if crs.Status == status {
			matched = append(matched, crs)
		}
	}
	return matched, nil
}

func (repo *catalogRepository) CreateModule(mod catalog.Module) (catalog.Module, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.modules[mod.ID] = &mod
	return mod, nil
}

func (repo *catalogRepository) GetModuleByID(id string) (catalog.Module, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if mod, ok := repo.db.modules[id]; ok {
		return *mod, nil
	}
	return catalog.Module{}, catalog.ErrModuleNotFound
}

func (repo *catalogRepository) QueryModulesByCourseID(courseID string) ([]catalog.Module, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.modulesOf(courseID), nil
}

func (repo *catalogRepository) modulesOf(courseID string) []catalog.Module {
	mods := make([]catalog.Module, 0)
	for _, mod := range repo.db.modules {
		if mod.CourseID == courseID {
			mods = append(mods, *mod)
		}
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].SortOrder < mods[j].SortOrder })
	return mods
}

func (repo *catalogRepository) CreateLesson(lsn catalog.Lesson) (catalog.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.lessons[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *catalogRepository) UpdateLesson(lsn catalog.Lesson) (catalog.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.lessons[lsn.ID]; !ok {
		return catalog.Lesson{}, catalog.ErrLessonNotFound
	}
	repo.db.lessons[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *catalogRepository) GetLessonByID(id string) (catalog.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if lsn, ok := repo.db.lessons[id]; ok {
		return *lsn, nil
	}
	return catalog.Lesson{}, catalog.ErrLessonNotFound
}

func (repo *catalogRepository) QueryLessonsByModuleID(moduleID string) ([]catalog.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.lessonsOfModule(moduleID), nil
}

func (repo *catalogRepository) lessonsOfModule(moduleID string) []catalog.Lesson {
	lsns := make([]catalog.Lesson, 0)
	for _, lsn := range repo.db.lessons {
		if lsn.ModuleID == moduleID {
			lsns = append(lsns, *lsn)
		}
	}
	sort.Slice(lsns, func(i, j int) bool { return lsns[i].SortOrder < lsns[j].SortOrder })
	return lsns
}

func (repo *catalogRepository) QueryLessonsByCourseID(courseID string) ([]catalog.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	lsns := make([]catalog.Lesson, 0)
	for _, mod := range repo.modulesOf(courseID) {
		lsns = append(lsns, repo.lessonsOfModule(mod.ID)...)
	}
	return lsns, nil
}

func (repo *catalogRepository) CreateAttachment(att catalog.Attachment) (catalog.Attachment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.attachments[att.ID] = &att
	return att, nil
}

func (repo *catalogRepository) QueryAttachmentsByLessonID(lessonID string) ([]catalog.Attachment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	atts := make([]catalog.Attachment, 0)
	for _, att := range repo.db.attachments {
		if att.LessonID == lessonID {
			atts = append(atts, *att)
		}
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].SortOrder < atts[j].SortOrder })
	return atts, nil
}
