package inmemdb

import (
	"github.com/laurahq/lms/core/progress"
)

type progressRepository struct {
	db *progressTable
}

func NewProgressRepository(db *DB) progress.Repository {
	return &progressRepository{db: db.progress}
}

func (repo *progressRepository) CreateEnrollment(enr progress.Enrollment) (progress.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.enrollments[pairKey(enr.UserID, enr.CourseID)] = &enr
	return enr, nil
}

func (repo *progressRepository) UpdateEnrollment(enr progress.Enrollment) (progress.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := pairKey(enr.UserID, enr.CourseID)
	if _, ok := repo.db.enrollments[key]; !ok {
		return progress.Enrollment{}, progress.ErrEnrollmentNotFound
	}
	repo.db.enrollments[key] = &enr
	return enr, nil
}

func (repo *progressRepository) GetEnrollment(userID, courseID string) (progress.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if enr, ok := repo.db.enrollments[pairKey(userID, courseID)]; ok {
		return *enr, nil
	}
	return progress.Enrollment{}, progress.ErrEnrollmentNotFound
}

func (repo *progressRepository) QueryEnrollmentsByUserID(userID string) ([]progress.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enrs := make([]progress.Enrollment, 0)
	for _, enr := range repo.db.enrollments {
		if enr.UserID == userID {
			enrs = append(enrs, *enr)
		}
	}
	return enrs, nil
}

func (repo *progressRepository) QueryEnrollmentsByCourseID(courseID string) ([]progress.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enrs := make([]progress.Enrollment, 0)
	for _, enr := range repo.db.enrollments {
		if enr.CourseID == courseID {
			enrs = append(enrs, *enr)
		}
	}
	return enrs, nil
}

func (repo *progressRepository) GetCourseProgress(userID, courseID string) (progress.CourseProgress, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cp, ok := repo.db.courseProgress[pairKey(userID, courseID)]; ok {
		return *cp, nil
	}
	return progress.CourseProgress{}, progress.ErrProgressNotFound
}

func (repo *progressRepository) GetLessonProgress(userID, lessonID string) (progress.LessonProgress, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if lp, ok := repo.db.lessonProgress[pairKey(userID, lessonID)]; ok {
		return *lp, nil
	}
	return progress.LessonProgress{}, progress.ErrProgressNotFound
}

func (repo *progressRepository) QueryLessonProgressByCourse(userID, courseID string) ([]progress.LessonProgress, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	lps := make([]progress.LessonProgress, 0)
	for _, lp := range repo.db.lessonProgress {
		if lp.UserID == userID && lp.CourseID == courseID {
			lps = append(lps, *lp)
		}
	}
	return lps, nil
}

func (repo *progressRepository) SaveLessonProgress(lp progress.LessonProgress) (progress.LessonProgress, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.lessonProgress[pairKey(lp.UserID, lp.LessonID)] = &lp
	return lp, nil
}

// SaveProgress applies both writes under one lock so a reader never sees the
// completed lesson without the recomputed course aggregate.
func (repo *progressRepository) SaveProgress(lp progress.LessonProgress, cp progress.CourseProgress) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.lessonProgress[pairKey(lp.UserID, lp.LessonID)] = &lp
	repo.db.courseProgress[pairKey(cp.UserID, cp.CourseID)] = &cp
	return nil
}
