package testutil

import (
	"net/mail"
	"testing"

	"github.com/laurahq/lms/core"
	"github.com/laurahq/lms/core/catalog"
	"github.com/laurahq/lms/core/homework"
	"github.com/laurahq/lms/core/progress"
	"github.com/laurahq/lms/core/user"
	"github.com/laurahq/lms/core/views"
	emailsvc "github.com/laurahq/lms/services/email"
	inmemdb "github.com/laurahq/lms/storage/database/inmem"
)

// Services is the full in-memory service graph used by package tests.
type Services struct {
	Conf *core.Config

	UserRepo     user.Repository
	CatalogRepo  catalog.Repository
	ProgressRepo progress.Repository
	HomeworkRepo homework.Repository

	Users       *user.Service
	Catalog     *catalog.Service
	Enrollments *progress.Enrollments
	Tracker     *progress.Tracker
	Homework    *homework.Service
	Views       *views.Service
}

func NewConfig() *core.Config {
	return &core.Config{
		Debug:            true,
		TestMode:         true,
		Env:              "TEST",
		AppName:          "Laura LMS",
		SecretKey:        "test-secret",
		DefaultFromEmail: mail.Address{Name: "Laura LMS", Address: "noreply@localhost"},
		Progress: core.ProgressConfig{
			StrictLessonLocking: false,
			VideoCompletionPct:  90,
		},
	}
}

// NewServices wires every service against a fresh in-memory store.
func NewServices(t *testing.T, conf ...*core.Config) *Services {
	t.Helper()

	c := NewConfig()
	if len(conf) > 0 {
		c = conf[0]
	}

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening in-memory store: %v", err)
	}

	s := &Services{
		Conf:         c,
		UserRepo:     inmemdb.NewUserRepository(db),
		CatalogRepo:  inmemdb.NewCatalogRepository(db),
		ProgressRepo: inmemdb.NewProgressRepository(db),
		HomeworkRepo: inmemdb.NewHomeworkRepository(db),
	}
	s.Users = user.NewService(s.UserRepo)
	s.Catalog = catalog.NewService(s.CatalogRepo)
	s.Enrollments = progress.NewEnrollments(s.ProgressRepo, s.Catalog)
	s.Tracker = progress.NewTracker(s.ProgressRepo, s.Catalog, s.Enrollments, c)
	s.Homework = homework.NewService(s.HomeworkRepo, s.Catalog, s.Users, emailsvc.NewConsoleServiceMock(c))
	s.Views = views.NewService(s.Users, s.Catalog, s.Tracker, s.Enrollments, s.Homework)
	return s
}

// CreateUser creates an active user or fails the test.
func (s *Services) CreateUser(t *testing.T, name, email, role string) user.User {
	t.Helper()
	usr, err := s.Users.Create(user.NewUser{
		FullName:        name,
		Email:           email,
		Role:            role,
		Password:        "s3cr3t!",
		PasswordConfirm: "s3cr3t!",
	})
	if err != nil {
		t.Fatalf("creating user %s: %v", email, err)
	}
	return usr
}

// CreateCourse creates a published course with one module and the given
// lessons, returning the course and its lessons in course order.
func (s *Services) CreateCourse(t *testing.T, slug string, lessons ...catalog.NewLesson) (catalog.Course, []catalog.Lesson) {
	t.Helper()

	author := s.CreateUser(t, "Author "+slug, "author-"+slug+"@test.cd", user.RoleAdmin)
	crs, err := s.Catalog.CreateCourse(author.ID, catalog.NewCourse{
		Title:  "Course " + slug,
		Slug:   slug,
		Status: catalog.StatusPublished,
	})
	if err != nil {
		t.Fatalf("creating course %s: %v", slug, err)
	}
	mod, err := s.Catalog.AddModule(crs.ID, catalog.NewModule{
		Title:  "Module 1",
		Status: catalog.StatusPublished,
	})
	if err != nil {
		t.Fatalf("adding module: %v", err)
	}

	seeded := make([]catalog.Lesson, 0, len(lessons))
	for _, nl := range lessons {
		if nl.Status == "" {
			nl.Status = catalog.StatusPublished
		}
		lsn, err := s.Catalog.AddLesson(mod.ID, nl)
		if err != nil {
			t.Fatalf("adding lesson %s: %v", nl.Slug, err)
		}
		seeded = append(seeded, lsn)
	}

	// pick up the refreshed lesson totals
	crs, err = s.Catalog.CourseByID(crs.ID)
	if err != nil {
		t.Fatalf("reloading course: %v", err)
	}
	return crs, seeded
}

// VideoLesson returns a lesson payload with a video of the given duration.
func VideoLesson(slug string, durationSec int) catalog.NewLesson {
	return catalog.NewLesson{
		Title:            "Lesson " + slug,
		Slug:             slug,
		VideoURL:         "https://vid.test.cd/" + slug,
		VideoProvider:    catalog.VideoYoutube,
		VideoDurationSec: durationSec,
	}
}

// HomeworkLesson returns a lesson payload that requires homework.
func HomeworkLesson(slug string, durationSec int) catalog.NewLesson {
	task := "Do the thing for " + slug
	nl := VideoLesson(slug, durationSec)
	nl.HasHomework = true
	nl.HomeworkTask = &task
	return nl
}
