package views_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laurahq/lms/core/homework"
	"github.com/laurahq/lms/core/progress"
	"github.com/laurahq/lms/core/user"
	testutil "github.com/laurahq/lms/tests"
)

func TestService_CourseCardsFor(t *testing.T) {
	svcs := testutil.NewServices(t)
	started, startedLsns := svcs.CreateCourse(t, "started",
		testutil.VideoLesson("s1", 60),
		testutil.VideoLesson("s2", 60),
	)
	untouched, _ := svcs.CreateCourse(t, "untouched", testutil.VideoLesson("u1", 60))
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)

	_, err := svcs.Enrollments.Enroll(student.ID, started.ID)
	require.NoError(t, err)
	_, err = svcs.Tracker.MarkLessonCompleted(student.ID, startedLsns[0].ID)
	require.NoError(t, err)

	cards, err := svcs.Views.CourseCardsFor(student.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	byID := make(map[string]int)
	for i, card := range cards {
		byID[card.Course.ID] = i
	}

	startedCard := cards[byID[started.ID]]
	assert.Equal(t, 1, startedCard.Progress.CompletedLessons)
	assert.Equal(t, 50, startedCard.Progress.Percentage)

	// a course the student never touched still renders, with zero progress
	untouchedCard := cards[byID[untouched.ID]]
	assert.Equal(t, 0, untouchedCard.Progress.CompletedLessons)
	assert.Equal(t, 0, untouchedCard.Progress.Percentage)
	assert.Equal(t, 1, untouchedCard.Progress.TotalLessons)
}

func TestService_CourseTreeFor(t *testing.T) {
	svcs := testutil.NewServices(t)
	crs, lsns := svcs.CreateCourse(t, "tree",
		testutil.HomeworkLesson("t1", 60),
		testutil.VideoLesson("t2", 60),
	)
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)
	_, err := svcs.Enrollments.Enroll(student.ID, crs.ID)
	require.NoError(t, err)

	_, err = svcs.Tracker.MarkLessonCompleted(student.ID, lsns[0].ID)
	require.NoError(t, err)
	_, err = svcs.Homework.Submit(student.ID, lsns[0].ID, homework.SubmitData{Content: "done"})
	require.NoError(t, err)

	tree, err := svcs.Views.CourseTreeFor(crs.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, crs.ID, tree.Course.ID)
	require.Len(t, tree.Modules, 1)
	require.Len(t, tree.Modules[0].Lessons, 2)

	first := tree.Modules[0].Lessons[0]
	assert.Equal(t, progress.LessonCompleted, first.UserStatus)
	assert.True(t, first.HasHomework)
	assert.Equal(t, homework.StatusPending, first.HomeworkStatus)

	second := tree.Modules[0].Lessons[1]
	assert.Equal(t, progress.LessonAvailable, second.UserStatus)
	assert.Empty(t, second.HomeworkStatus) // no homework on this lesson
}

func TestService_LessonDetailFor(t *testing.T) {
	svcs := testutil.NewServices(t)
	crs, lsns := svcs.CreateCourse(t, "detail", testutil.HomeworkLesson("d1", 100))
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)
	_, err := svcs.Enrollments.Enroll(student.ID, crs.ID)
	require.NoError(t, err)

	// untouched lesson: no progress, no submission, still renderable
	detail, err := svcs.Views.LessonDetailFor(lsns[0].ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, lsns[0].ID, detail.Lesson.ID)
	assert.Nil(t, detail.Progress)
	assert.Nil(t, detail.Submission)

	_, err = svcs.Tracker.RecordPlaybackPosition(student.ID, lsns[0].ID, 30)
	require.NoError(t, err)
	_, err = svcs.Homework.Submit(student.ID, lsns[0].ID, homework.SubmitData{Content: "answer"})
	require.NoError(t, err)

	detail, err = svcs.Views.LessonDetailFor(lsns[0].ID, student.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Progress)
	assert.Equal(t, 30, detail.Progress.VideoPositionSec)
	require.NotNil(t, detail.Submission)
	assert.Equal(t, homework.StatusPending, detail.Submission.Status)
}

func TestService_AdminStudentRows(t *testing.T) {
	svcs := testutil.NewServices(t)
	crs, lsns := svcs.CreateCourse(t, "roster", testutil.VideoLesson("r1", 60))
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)
	svcs.CreateUser(t, "Curator", "curator@test.cd", user.RoleCurator)

	_, err := svcs.Enrollments.Enroll(student.ID, crs.ID)
	require.NoError(t, err)
	_, err = svcs.Tracker.MarkLessonCompleted(student.ID, lsns[0].ID)
	require.NoError(t, err)

	rows, err := svcs.Views.AdminStudentRows()
	require.NoError(t, err)

	// only students are listed; the course authors are admins
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, student.ID, row.User.ID)
	require.Len(t, row.Enrollments, 1)
	assert.Equal(t, crs.Title, row.Enrollments[0].CourseTitle)
	assert.Equal(t, progress.EnrollmentCompleted, row.Enrollments[0].Status)
	assert.Equal(t, 100, row.Enrollments[0].Progress.Percentage)
}

func TestService_HomeworkFeed(t *testing.T) {
	svcs := testutil.NewServices(t)
	crs, lsns := svcs.CreateCourse(t, "hwfeed", testutil.HomeworkLesson("h1", 60))
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)
	curator := svcs.CreateUser(t, "Curator", "curator@test.cd", user.RoleCurator)

	sub, err := svcs.Homework.Submit(student.ID, lsns[0].ID, homework.SubmitData{Content: "answer"})
	require.NoError(t, err)
	_, _, err = svcs.Homework.Review(sub.ID, curator.ID, homework.ReviewData{
		Comment: "good",
		Status:  homework.StatusApproved,
	})
	require.NoError(t, err)

	items, err := svcs.Views.HomeworkFeed(homework.Filter{})
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, student.FullName, item.Student.FullName)
	assert.Equal(t, lsns[0].Title, item.LessonTitle)
	assert.Equal(t, crs.Title, item.CourseTitle)
	require.Len(t, item.Reviews, 1)
	assert.Equal(t, "good", item.Reviews[0].Comment)
}

func TestService_HomeworkFeed_missingJoins(t *testing.T) {
	svcs := testutil.NewServices(t)
	_, lsns := svcs.CreateCourse(t, "orphan", testutil.HomeworkLesson("o1", 60))
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)

	_, err := svcs.Homework.Submit(student.ID, lsns[0].ID, homework.SubmitData{Content: "answer"})
	require.NoError(t, err)

	// the student account disappears; the feed must keep rendering
	require.NoError(t, svcs.Users.Delete(student.ID))

	items, err := svcs.Views.HomeworkFeed(homework.Filter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Unknown", items[0].Student.FullName)
	assert.Equal(t, lsns[0].Title, items[0].LessonTitle)
}
