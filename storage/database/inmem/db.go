package inmemdb

import (
	"sync"

	"github.com/laurahq/lms/core/catalog"
	"github.com/laurahq/lms/core/homework"
	"github.com/laurahq/lms/core/progress"
	"github.com/laurahq/lms/core/user"
)

type (
	DB struct {
		user     *userTable
		catalog  *catalogTable
		progress *progressTable
		homework *homeworkTable
	}

	userTable struct {
		table map[string]*user.User
		mutex sync.RWMutex
	}

	catalogTable struct {
		courses     map[string]*catalog.Course
		modules     map[string]*catalog.Module
		lessons     map[string]*catalog.Lesson
		attachments map[string]*catalog.Attachment
		mutex       sync.RWMutex
	}

	progressTable struct {
		enrollments    map[string]*progress.Enrollment     // key: userID|courseID
		courseProgress map[string]*progress.CourseProgress // key: userID|courseID
		lessonProgress map[string]*progress.LessonProgress // key: userID|lessonID
		mutex          sync.RWMutex
	}

	homeworkTable struct {
		submissions  map[string]*homework.Submission // key: submission ID
		byUserLesson map[string]string               // key: userID|lessonID -> submission ID
		reviews      map[string][]homework.Review    // key: submission ID, append-only
		mutex        sync.RWMutex
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		catalog: &catalogTable{
			courses:     make(map[string]*catalog.Course),
			modules:     make(map[string]*catalog.Module),
			lessons:     make(map[string]*catalog.Lesson),
			attachments: make(map[string]*catalog.Attachment),
		},
		progress: &progressTable{
			enrollments:    make(map[string]*progress.Enrollment),
			courseProgress: make(map[string]*progress.CourseProgress),
			lessonProgress: make(map[string]*progress.LessonProgress),
		},
		homework: &homeworkTable{
			submissions:  make(map[string]*homework.Submission),
			byUserLesson: make(map[string]string),
			reviews:      make(map[string][]homework.Review),
		},
	}
	return db, nil
}

func pairKey(left, right string) string { return left + "|" + right }
