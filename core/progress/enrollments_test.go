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

func TestEnrollments_Enroll(t *testing.T) {
	svcs := testutil.NewServices(t)
	crs, _ := svcs.CreateCourse(t, "enroll", testutil.VideoLesson("l1", 60))
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)

	enr, err := svcs.Enrollments.Enroll(student.ID, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, progress.EnrollmentActive, enr.Status)
	assert.False(t, enr.EnrolledAt.IsZero())
	assert.Nil(t, enr.LastAccessedAt)

	// at most one enrollment per (user, course) pair
	_, err = svcs.Enrollments.Enroll(student.ID, crs.ID)
	assert.True(t, core.IsValidationError(err))

	// unknown course
	_, err = svcs.Enrollments.Enroll(student.ID, "nope")
	assert.Error(t, err)
}

func TestEnrollments_SetStatus(t *testing.T) {
	svcs := testutil.NewServices(t)
	crs, _ := svcs.CreateCourse(t, "status", testutil.VideoLesson("l1", 60))
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)
	_, err := svcs.Enrollments.Enroll(student.ID, crs.ID)
	require.NoError(t, err)

	// any transition is allowed, in any direction
	for _, status := range []string{
		progress.EnrollmentPaused,
		progress.EnrollmentRevoked,
		progress.EnrollmentCompleted,
		progress.EnrollmentActive,
	} {
		enr, err := svcs.Enrollments.SetStatus(student.ID, crs.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, enr.Status)
	}

	// unknown status
	_, err = svcs.Enrollments.SetStatus(student.ID, crs.ID, "expelled")
	assert.True(t, core.IsValidationError(err))

	// missing enrollment
	_, err = svcs.Enrollments.SetStatus(student.ID, "nope", progress.EnrollmentPaused)
	assert.Equal(t, progress.ErrEnrollmentNotFound, err)
}
