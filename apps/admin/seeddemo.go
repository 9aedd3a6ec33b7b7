package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/laurahq/lms/core/catalog"
	"github.com/laurahq/lms/core/homework"
	"github.com/laurahq/lms/core/user"
)

func strPtr(s string) *string { return &s }

// seedDemo loads the demo fixture set: the author and a couple of students,
// one published course with its first module and lessons, an active
// enrollment with partial progress and a pending homework submission.
func (cli *commandLine) seedDemo() error {
	author, err := cli.seedUser("laura@laura-courses.com", "Лаура Александровська", user.RoleAdmin)
	if err != nil {
		return err
	}
	if _, err = cli.seedUser("maria@laura-courses.com", "Марія Бондаренко", user.RoleCurator); err != nil {
		return err
	}
	student, err := cli.seedUser("ivan@example.com", "Іван Петренко", user.RoleStudent)
	if err != nil {
		return err
	}
	if _, err = cli.seedUser("olena@example.com", "Олена Коваленко", user.RoleStudent); err != nil {
		return err
	}

	if _, err = cli.catalogSvc.CourseBySlug("sales-architecture"); err == nil {
		fmt.Println("demo data already loaded")
		return nil
	} else if err != catalog.ErrCourseNotFound {
		return err
	}

	crs, err := cli.catalogSvc.CreateCourse(author.ID, catalog.NewCourse{
		Title:            "Архітектура Відділу Продажів",
		Slug:             "sales-architecture",
		Description:      "Побудова команди, яка робить X2. Від групового найму та онбордингу до впровадження скриптів та «Книги продажів» як основи масштабування.",
		ShortDescription: "Побудова відділу продажів з нуля до масштабування.",
		Status:           catalog.StatusPublished,
	})
	if err != nil {
		return errors.Wrap(err, "seeding course")
	}

	mod, err := cli.catalogSvc.AddModule(crs.ID, catalog.NewModule{
		Title:       "Фундамент відділу продажів",
		Description: "Структура, ролі та KPI для побудови ефективного відділу.",
		Status:      catalog.StatusPublished,
	})
	if err != nil {
		return errors.Wrap(err, "seeding module")
	}

	lessons := []catalog.NewLesson{
		{
			Title:            "Чому 90% відділів продажів не працюють",
			Slug:             "why-sales-fail",
			VideoURL:         "https://www.youtube.com/embed/dQw4w9WgXcQ",
			VideoProvider:    catalog.VideoYoutube,
			VideoDurationSec: 1260,
			ContentHTML:      "<h2>Основні причини невдач</h2><p>Системні помилки, які допускають 90% керівників при побудові відділів продажів.</p>",
			HasHomework:      true,
			HomeworkTask:     strPtr("Проаналізуйте свій поточний відділ продажів. Опишіть 3 головні проблеми та запропонуйте рішення для кожної."),
			Status:           catalog.StatusPublished,
		},
		{
			Title:            "Оргструктура ідеального відділу",
			Slug:             "ideal-org-structure",
			VideoURL:         "https://www.youtube.com/embed/dQw4w9WgXcQ",
			VideoProvider:    catalog.VideoYoutube,
			VideoDurationSec: 1800,
			ContentHTML:      "<h2>Побудова оргструктури</h2><p>Від плоских команд до ієрархічних відділів.</p>",
			Status:           catalog.StatusPublished,
		},
		{
			Title:            "KPI та система мотивації",
			Slug:             "kpi-motivation",
			VideoURL:         "https://www.youtube.com/embed/dQw4w9WgXcQ",
			VideoProvider:    catalog.VideoYoutube,
			VideoDurationSec: 2100,
			ContentHTML:      "<h2>Система KPI</h2><p>Як створити систему KPI, яка мотивує, а не демотивує.</p>",
			HasHomework:      true,
			HomeworkTask:     strPtr("Розробіть систему KPI для відділу продажів з 5 менеджерів."),
			Status:           catalog.StatusPublished,
		},
		{
			Title:            "Бюджетування відділу продажів",
			Slug:             "sales-budgeting",
			VideoURL:         "https://www.youtube.com/embed/dQw4w9WgXcQ",
			VideoProvider:    catalog.VideoYoutube,
			VideoDurationSec: 1500,
			ContentHTML:      "<h2>Бюджет відділу</h2><p>ФОП, інструменти, навчання та реклама.</p>",
			Status:           catalog.StatusPublished,
		},
	}
	seeded := make([]catalog.Lesson, 0, len(lessons))
	for _, nl := range lessons {
		lsn, err := cli.catalogSvc.AddLesson(mod.ID, nl)
		if err != nil {
			return errors.Wrapf(err, "seeding lesson %q", nl.Slug)
		}
		seeded = append(seeded, lsn)
	}

	attachments := []struct {
		lessonIdx int
		na        catalog.NewAttachment
	}{
		{0, catalog.NewAttachment{Title: "Чек-лист: Аудит відділу продажів", FileURL: "https://files.laura-courses.com/sales-audit-checklist.pdf", FileType: catalog.FilePDF, FileSizeBytes: 245000}},
		{0, catalog.NewAttachment{Title: "Шаблон оргструктури (Excel)", FileURL: "https://files.laura-courses.com/org-structure-template.xlsx", FileType: catalog.FileXLSX, FileSizeBytes: 128000}},
		{2, catalog.NewAttachment{Title: "KPI Dashboard Template", FileURL: "https://files.laura-courses.com/kpi-dashboard.xlsx", FileType: catalog.FileXLSX, FileSizeBytes: 312000}},
	}
	for _, at := range attachments {
		if _, err = cli.catalogSvc.AddAttachment(seeded[at.lessonIdx].ID, at.na); err != nil {
			return errors.Wrapf(err, "seeding attachment %q", at.na.Title)
		}
	}

	// enrollment with partial progress: lesson 1 done, lesson 2 in progress
	if _, err = cli.enrollments.Enroll(student.ID, crs.ID); err != nil {
		return errors.Wrap(err, "seeding enrollment")
	}
	if _, err = cli.tracker.MarkLessonCompleted(student.ID, seeded[0].ID); err != nil {
		return errors.Wrap(err, "seeding lesson completion")
	}
	if _, err = cli.tracker.RecordPlaybackPosition(student.ID, seeded[1].ID, 640); err != nil {
		return errors.Wrap(err, "seeding playback position")
	}

	// pending homework for the completed lesson
	now := time.Now().UTC()
	if _, err = cli.hwRepo.UpsertSubmission(homework.Submission{
		ID:          uuid.NewString(),
		UserID:      student.ID,
		LessonID:    seeded[0].ID,
		CourseID:    crs.ID,
		Content:     "Проблеми: відсутність структури, хаотичний найм, немає скриптів. Рішення додаю в документі.",
		Status:      homework.StatusPending,
		SubmittedAt: now,
		UpdatedAt:   now,
	}); err != nil {
		return errors.Wrap(err, "seeding homework submission")
	}

	fmt.Println("demo data loaded")
	return nil
}

// seedUser creates the user if it does not exist yet; fixtures are loadable
// repeatedly without duplicating accounts.
func (cli *commandLine) seedUser(email, name, role string) (user.User, error) {
	usr, err := cli.usrSvc.GetByEmail(email)
	if err == nil {
		return usr, nil
	}
	if err != user.ErrNotFound {
		return user.User{}, err
	}

	usr, err = cli.usrSvc.Create(user.NewUser{
		FullName:        name,
		Email:           email,
		Role:            role,
		Password:        "laura2026",
		PasswordConfirm: "laura2026",
	})
	if err != nil {
		return user.User{}, errors.Wrapf(err, "seeding user %s", email)
	}
	return usr, nil
}
