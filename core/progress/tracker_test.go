package progress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laurahq/lms/core"
	"github.com/laurahq/lms/core/progress"
	"github.com/laurahq/lms/core/user"
	testutil "github.com/laurahq/lms/tests"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name             string
		completed, total int
		want             int
	}{
		{name: "zero total", completed: 3, total: 0, want: 0},
		{name: "negative total", completed: 3, total: -1, want: 0},
		{name: "none completed", completed: 0, total: 10, want: 0},
		{name: "half", completed: 5, total: 10, want: 50},
		{name: "rounds up", completed: 2, total: 3, want: 67},
		{name: "rounds down", completed: 1, total: 3, want: 33},
		{name: "all completed", completed: 10, total: 10, want: 100},
		{name: "clamped above", completed: 12, total: 10, want: 100},
		{name: "clamped below", completed: -2, total: 10, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, progress.Percent(tt.completed, tt.total))
		})
	}
}

func TestTracker_RecordPlaybackPosition(t *testing.T) {
	svcs := testutil.NewServices(t)
	crs, lsns := svcs.CreateCourse(t, "playback", testutil.VideoLesson("l1", 100))
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)
	_, err := svcs.Enrollments.Enroll(student.ID, crs.ID)
	require.NoError(t, err)

	// first interaction creates the record in progress
	lp, err := svcs.Tracker.RecordPlaybackPosition(student.ID, lsns[0].ID, 42)
	require.NoError(t, err)
	assert.Equal(t, progress.LessonInProgress, lp.Status)
	assert.Equal(t, 42, lp.VideoPositionSec)
	assert.False(t, lp.VideoCompleted)
	assert.False(t, lp.StartedAt.IsZero())

	// enrollment access time is bumped
	enr, err := svcs.Enrollments.Get(student.ID, crs.ID)
	require.NoError(t, err)
	require.NotNil(t, enr.LastAccessedAt)

	// negative positions clamp to zero
	lp, err = svcs.Tracker.RecordPlaybackPosition(student.ID, lsns[0].ID, -10)
	require.NoError(t, err)
	assert.Equal(t, 0, lp.VideoPositionSec)

	// crossing the watch-through threshold flags the video completed
	lp, err = svcs.Tracker.RecordPlaybackPosition(student.ID, lsns[0].ID, 90)
	require.NoError(t, err)
	assert.True(t, lp.VideoCompleted)

	// seeking back never clears the flag
	lp, err = svcs.Tracker.RecordPlaybackPosition(student.ID, lsns[0].ID, 10)
	require.NoError(t, err)
	assert.True(t, lp.VideoCompleted)
	assert.Equal(t, 10, lp.VideoPositionSec)
}

func TestTracker_RecordPlaybackPosition_unknownLesson(t *testing.T) {
	svcs := testutil.NewServices(t)
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)

	_, err := svcs.Tracker.RecordPlaybackPosition(student.ID, "nope", 10)
	assert.Error(t, err)
}

func TestTracker_MarkLessonCompleted(t *testing.T) {
	svcs := testutil.NewServices(t)
	crs, lsns := svcs.CreateCourse(t, "completion",
		testutil.VideoLesson("l1", 60),
		testutil.VideoLesson("l2", 60),
	)
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)
	_, err := svcs.Enrollments.Enroll(student.ID, crs.ID)
	require.NoError(t, err)

	cp, err := svcs.Tracker.MarkLessonCompleted(student.ID, lsns[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cp.CompletedLessons)
	assert.Equal(t, 2, cp.TotalLessons)
	assert.Equal(t, 50, cp.Percentage)
	assert.Equal(t, lsns[0].ID, cp.LastLessonID)

	lp, err := svcs.Tracker.LessonProgressFor(student.ID, lsns[0].ID)
	require.NoError(t, err)
	require.NotNil(t, lp.CompletedAt)
	firstCompletedAt := *lp.CompletedAt

	// idempotent: the second call changes nothing
	cp, err = svcs.Tracker.MarkLessonCompleted(student.ID, lsns[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cp.CompletedLessons)
	assert.Equal(t, 50, cp.Percentage)

	lp, err = svcs.Tracker.LessonProgressFor(student.ID, lsns[0].ID)
	require.NoError(t, err)
	require.NotNil(t, lp.CompletedAt)
	assert.Equal(t, firstCompletedAt, *lp.CompletedAt)

	// enrollment stays active until the last lesson
	enr, err := svcs.Enrollments.Get(student.ID, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, progress.EnrollmentActive, enr.Status)

	// completing the last lesson completes the enrollment
	cp, err = svcs.Tracker.MarkLessonCompleted(student.ID, lsns[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, cp.CompletedLessons)
	assert.Equal(t, 100, cp.Percentage)

	enr, err = svcs.Enrollments.Get(student.ID, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, progress.EnrollmentCompleted, enr.Status)
}

func TestTracker_MarkLessonCompleted_requiresEnrollment(t *testing.T) {
	svcs := testutil.NewServices(t)
	_, lsns := svcs.CreateCourse(t, "noenroll", testutil.VideoLesson("l1", 60))
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)

	_, err := svcs.Tracker.MarkLessonCompleted(student.ID, lsns[0].ID)
	assert.Equal(t, progress.ErrEnrollmentNotFound, err)
}

func TestTracker_CourseProgressFor_reconcilesLessonCount(t *testing.T) {
	svcs := testutil.NewServices(t)
	crs, lsns := svcs.CreateCourse(t, "growing", testutil.VideoLesson("l1", 60))
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)
	_, err := svcs.Enrollments.Enroll(student.ID, crs.ID)
	require.NoError(t, err)

	cp, err := svcs.Tracker.MarkLessonCompleted(student.ID, lsns[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 100, cp.Percentage)

	// adding a lesson dilutes the stored aggregate on the next read
	mods, err := svcs.Catalog.ModulesOf(crs.ID)
	require.NoError(t, err)
	_, err = svcs.Catalog.AddLesson(mods[0].ID, testutil.VideoLesson("l2", 60))
	require.NoError(t, err)

	cp, err = svcs.Tracker.CourseProgressFor(student.ID, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cp.CompletedLessons)
	assert.Equal(t, 2, cp.TotalLessons)
	assert.Equal(t, 50, cp.Percentage)

	// the completion milestone already reached is not rolled back
	enr, err := svcs.Enrollments.Get(student.ID, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, progress.EnrollmentCompleted, enr.Status)

	// the idempotent completion path reports the reconciled numbers too
	cp, err = svcs.Tracker.MarkLessonCompleted(student.ID, lsns[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 50, cp.Percentage)
}

func TestTracker_CourseProgressFor_zeroDefault(t *testing.T) {
	svcs := testutil.NewServices(t)
	crs, _ := svcs.CreateCourse(t, "untouched",
		testutil.VideoLesson("l1", 60),
		testutil.VideoLesson("l2", 60),
		testutil.VideoLesson("l3", 60),
	)
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)

	cp, err := svcs.Tracker.CourseProgressFor(student.ID, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, cp.CompletedLessons)
	assert.Equal(t, 3, cp.TotalLessons)
	assert.Equal(t, 0, cp.Percentage)
	assert.Empty(t, cp.EnrollmentID)
}

func TestTracker_LessonStatuses_open(t *testing.T) {
	svcs := testutil.NewServices(t)
	crs, lsns := svcs.CreateCourse(t, "open",
		testutil.VideoLesson("l1", 60),
		testutil.VideoLesson("l2", 60),
		testutil.VideoLesson("l3", 60),
	)
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)
	_, err := svcs.Enrollments.Enroll(student.ID, crs.ID)
	require.NoError(t, err)

	_, err = svcs.Tracker.MarkLessonCompleted(student.ID, lsns[0].ID)
	require.NoError(t, err)
	_, err = svcs.Tracker.RecordPlaybackPosition(student.ID, lsns[1].ID, 10)
	require.NoError(t, err)

	statuses, err := svcs.Tracker.LessonStatuses(student.ID, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, progress.LessonCompleted, statuses[lsns[0].ID])
	assert.Equal(t, progress.LessonInProgress, statuses[lsns[1].ID])
	assert.Equal(t, progress.LessonAvailable, statuses[lsns[2].ID])
}

func TestTracker_LessonStatuses_strictLocking(t *testing.T) {
	conf := testutil.NewConfig()
	conf.Progress.StrictLessonLocking = true
	svcs := testutil.NewServices(t, conf)

	crs, lsns := svcs.CreateCourse(t, "strict",
		testutil.VideoLesson("l1", 60),
		testutil.VideoLesson("l2", 60),
		testutil.VideoLesson("l3", 60),
	)
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)
	_, err := svcs.Enrollments.Enroll(student.ID, crs.ID)
	require.NoError(t, err)

	// nothing done yet: only the first lesson is open
	statuses, err := svcs.Tracker.LessonStatuses(student.ID, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, progress.LessonAvailable, statuses[lsns[0].ID])
	assert.Equal(t, progress.LessonLocked, statuses[lsns[1].ID])
	assert.Equal(t, progress.LessonLocked, statuses[lsns[2].ID])

	// completing the first unlocks the second but not the third
	_, err = svcs.Tracker.MarkLessonCompleted(student.ID, lsns[0].ID)
	require.NoError(t, err)

	statuses, err = svcs.Tracker.LessonStatuses(student.ID, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, progress.LessonCompleted, statuses[lsns[0].ID])
	assert.Equal(t, progress.LessonAvailable, statuses[lsns[1].ID])
	assert.Equal(t, progress.LessonLocked, statuses[lsns[2].ID])
}

func TestTracker_strictLocking_blocksWrites(t *testing.T) {
	conf := testutil.NewConfig()
	conf.Progress.StrictLessonLocking = true
	svcs := testutil.NewServices(t, conf)

	crs, lsns := svcs.CreateCourse(t, "strictwrites",
		testutil.VideoLesson("l1", 60),
		testutil.VideoLesson("l2", 60),
	)
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)
	_, err := svcs.Enrollments.Enroll(student.ID, crs.ID)
	require.NoError(t, err)

	// a locked lesson rejects writes, not just displays as locked
	_, err = svcs.Tracker.RecordPlaybackPosition(student.ID, lsns[1].ID, 10)
	assert.True(t, core.IsInvalidOperation(err))
	_, err = svcs.Tracker.MarkLessonCompleted(student.ID, lsns[1].ID)
	assert.True(t, core.IsInvalidOperation(err))
	_, err = svcs.Tracker.LessonProgressFor(student.ID, lsns[1].ID)
	assert.Equal(t, progress.ErrProgressNotFound, err)

	// completing the first lesson unlocks the second for writes
	_, err = svcs.Tracker.MarkLessonCompleted(student.ID, lsns[0].ID)
	require.NoError(t, err)

	lp, err := svcs.Tracker.RecordPlaybackPosition(student.ID, lsns[1].ID, 10)
	require.NoError(t, err)
	assert.Equal(t, progress.LessonInProgress, lp.Status)
}
