package views

import (
	"time"

	"github.com/laurahq/lms/core/catalog"
	"github.com/laurahq/lms/core/homework"
	"github.com/laurahq/lms/core/progress"
	"github.com/laurahq/lms/core/user"
)

// placeholder substituted for missing join targets: the presentation layer
// must stay renderable even with partial data.
const unknownPlaceholder = "Unknown"

// Service is the read-side composition layer. It holds no state of its own
// and never fails on a missing join target.
type Service struct {
	users       *user.Service
	catalog     *catalog.Service
	tracker     *progress.Tracker
	enrollments *progress.Enrollments
	homework    *homework.Service
}

func NewService(
	usrSvc *user.Service,
	catalogSvc *catalog.Service,
	tracker *progress.Tracker,
	enrollments *progress.Enrollments,
	hwSvc *homework.Service,
) *Service {
	return &Service{
		users:       usrSvc,
		catalog:     catalogSvc,
		tracker:     tracker,
		enrollments: enrollments,
		homework:    hwSvc,
	}
}

// CourseCardsFor joins every published course with the student's aggregate
// progress, defaulting to zero progress where the student has not started.
func (svc *Service) CourseCardsFor(userID string) ([]CourseCard, error) {
	courses, err := svc.catalog.PublishedCourses()
	if err != nil {
		return nil, err
	}

	cards := make([]CourseCard, 0, len(courses))
	for _, crs := range courses {
		card := CourseCard{Course: crs}
		if cp, err := svc.tracker.CourseProgressFor(userID, crs.ID); err == nil {
			card.Progress = cp
		} else {
			card.Progress = progress.CourseProgress{
				UserID:       userID,
				CourseID:     crs.ID,
				TotalLessons: crs.TotalLessons,
			}
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// CourseTreeFor assembles the course program with per-lesson student state.
func (svc *Service) CourseTreeFor(courseID, userID string) (CourseTree, error) {
	crs, err := svc.catalog.CourseByID(courseID)
	if err != nil {
		return CourseTree{}, err
	}
	mods, err := svc.catalog.ModulesOf(crs.ID)
	if err != nil {
		return CourseTree{}, err
	}
	statuses, err := svc.tracker.LessonStatuses(userID, crs.ID)
	if err != nil {
		return CourseTree{}, err
	}

	tree := CourseTree{Course: crs, Modules: make([]ModuleNode, 0, len(mods))}
	for _, mod := range mods {
		node := ModuleNode{Module: mod}
		lsns, err := svc.catalog.LessonsOfModule(mod.ID)
		if err != nil {
			return CourseTree{}, err
		}
		node.Lessons = make([]LessonNode, 0, len(lsns))
		for _, lsn := range lsns {
			node.Lessons = append(node.Lessons, LessonNode{
				ID:               lsn.ID,
				Title:            lsn.Title,
				SortOrder:        lsn.SortOrder,
				VideoDurationSec: lsn.VideoDurationSec,
				HasHomework:      lsn.HasHomework,
				Status:           lsn.Status,
				UserStatus:       svc.lessonUserStatus(statuses, lsn.ID),
				HomeworkStatus:   svc.homeworkStatus(userID, lsn),
			})
		}
		tree.Modules = append(tree.Modules, node)
	}
	return tree, nil
}

// LessonDetailFor joins the lesson with its attachments and the student's
// progress and homework submission.
func (svc *Service) LessonDetailFor(lessonID, userID string) (LessonDetail, error) {
	lsn, err := svc.catalog.LessonByID(lessonID)
	if err != nil {
		return LessonDetail{}, err
	}

	detail := LessonDetail{Lesson: lsn}
	if atts, err := svc.catalog.AttachmentsOf(lsn.ID); err == nil {
		detail.Attachments = atts
	}
	if lp, err := svc.tracker.LessonProgressFor(userID, lsn.ID); err == nil {
		detail.Progress = &lp
	}
	if sub, err := svc.homework.SubmissionFor(userID, lsn.ID); err == nil {
		detail.Submission = &sub
	}
	return detail, nil
}

// AdminStudentRows joins every student with their enrollments and progress.
// A deleted course degrades to an "Unknown" placeholder rather than failing
// the whole query.
func (svc *Service) AdminStudentRows() ([]AdminStudentRow, error) {
	students, err := svc.users.Filter(user.QueryFilter{Role: user.RoleStudent})
	if err != nil {
		return nil, err
	}

	rows := make([]AdminStudentRow, 0, len(students))
	for _, usr := range students {
		row := AdminStudentRow{User: usr.Preview()}
		if !usr.LastLoginAt.IsZero() {
			row.LastLoginAt = usr.LastLoginAt.UTC().Format(time.RFC3339)
		}

		enrs, err := svc.enrollments.ByUser(usr.ID)
		if err != nil {
			return nil, err
		}
		row.Enrollments = make([]EnrollmentRow, 0, len(enrs))
		for _, enr := range enrs {
			er := EnrollmentRow{
				CourseID:    enr.CourseID,
				CourseTitle: unknownPlaceholder,
				Status:      enr.Status,
			}
			if crs, err := svc.catalog.CourseByID(enr.CourseID); err == nil {
				er.CourseTitle = crs.Title
			}
			if cp, err := svc.tracker.CourseProgressFor(usr.ID, enr.CourseID); err == nil {
				er.Progress = cp
			} else {
				er.Progress = progress.CourseProgress{
					EnrollmentID: enr.ID,
					UserID:       usr.ID,
					CourseID:     enr.CourseID,
				}
			}
			row.Enrollments = append(row.Enrollments, er)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// HomeworkFeed delegates to the homework engine and enriches each submission
// with student identity, catalog titles and the review trail. Missing join
// targets degrade to placeholders.
func (svc *Service) HomeworkFeed(filter homework.Filter) ([]HomeworkFeedItem, error) {
	subs, err := svc.homework.Feed(filter)
	if err != nil {
		return nil, err
	}

	items := make([]HomeworkFeedItem, 0, len(subs))
	for _, sub := range subs {
		item := HomeworkFeedItem{
			Submission:  sub,
			Student:     user.Preview{ID: sub.UserID, FullName: unknownPlaceholder},
			LessonTitle: unknownPlaceholder,
			CourseTitle: unknownPlaceholder,
		}
		if usr, err := svc.users.GetByID(sub.UserID); err == nil {
			item.Student = usr.Preview()
		}
		if lsn, err := svc.catalog.LessonByID(sub.LessonID); err == nil {
			item.LessonTitle = lsn.Title
		}
		if crs, err := svc.catalog.CourseByID(sub.CourseID); err == nil {
			item.CourseTitle = crs.Title
		}
		if revs, err := svc.homework.Reviews(sub.ID); err == nil {
			item.Reviews = revs
		}
		items = append(items, item)
	}
	return items, nil
}

func (svc *Service) lessonUserStatus(statuses map[string]string, lessonID string) string {
	if status, ok := statuses[lessonID]; ok {
		return status
	}
	return progress.LessonAvailable
}

func (svc *Service) homeworkStatus(userID string, lsn catalog.Lesson) string {
	if !lsn.HasHomework {
		return ""
	}
	if sub, err := svc.homework.SubmissionFor(userID, lsn.ID); err == nil {
		return sub.Status
	}
	return homework.StatusNotSubmitted
}
