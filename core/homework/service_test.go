package homework_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laurahq/lms/core"
	"github.com/laurahq/lms/core/homework"
	"github.com/laurahq/lms/core/user"
	emailsvc "github.com/laurahq/lms/services/email"
	testutil "github.com/laurahq/lms/tests"
)

func TestService_Submit(t *testing.T) {
	svcs := testutil.NewServices(t)
	_, lsns := svcs.CreateCourse(t, "submit",
		testutil.HomeworkLesson("l1", 60),
		testutil.VideoLesson("l2", 60),
	)
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)

	sub, err := svcs.Homework.Submit(student.ID, lsns[0].ID, homework.SubmitData{Content: "my answer"})
	require.NoError(t, err)
	assert.Equal(t, homework.StatusPending, sub.Status)
	assert.Equal(t, "my answer", sub.Content)
	assert.False(t, sub.SubmittedAt.IsZero())

	// a lesson without homework rejects submissions outright
	_, err = svcs.Homework.Submit(student.ID, lsns[1].ID, homework.SubmitData{Content: "hello?"})
	assert.True(t, core.IsInvalidOperation(err))

	// unknown lesson
	_, err = svcs.Homework.Submit(student.ID, "nope", homework.SubmitData{Content: "hello?"})
	assert.Error(t, err)
}

func TestService_payloadGuards(t *testing.T) {
	svcs := testutil.NewServices(t)
	_, lsns := svcs.CreateCourse(t, "guards", testutil.HomeworkLesson("l1", 60))
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)
	curator := svcs.CreateUser(t, "Curator", "curator@test.cd", user.RoleCurator)

	// blank content never reaches the repository
	_, err := svcs.Homework.Submit(student.ID, lsns[0].ID, homework.SubmitData{Content: "   "})
	assert.True(t, core.IsValidationError(err))
	_, err = svcs.Homework.SubmissionFor(student.ID, lsns[0].ID)
	assert.Equal(t, homework.ErrSubmissionNotFound, err)

	sub, err := svcs.Homework.Submit(student.ID, lsns[0].ID, homework.SubmitData{Content: "real answer"})
	require.NoError(t, err)

	// a decision needs a comment and a terminal status
	_, _, err = svcs.Homework.Review(sub.ID, curator.ID, homework.ReviewData{Status: homework.StatusApproved})
	assert.True(t, core.IsValidationError(err))
	_, _, err = svcs.Homework.Review(sub.ID, curator.ID, homework.ReviewData{Comment: "hm", Status: homework.StatusPending})
	assert.True(t, core.IsValidationError(err))

	// rejected payloads leave the submission untouched
	sub, err = svcs.Homework.SubmissionByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, homework.StatusPending, sub.Status)
	revs, err := svcs.Homework.Reviews(sub.ID)
	require.NoError(t, err)
	assert.Empty(t, revs)
}

func TestService_Review(t *testing.T) {
	emailsvc.ClearSentMessages()
	svcs := testutil.NewServices(t)
	_, lsns := svcs.CreateCourse(t, "review", testutil.HomeworkLesson("l1", 60))
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)
	curator := svcs.CreateUser(t, "Curator", "curator@test.cd", user.RoleCurator)

	sub, err := svcs.Homework.Submit(student.ID, lsns[0].ID, homework.SubmitData{Content: "v1"})
	require.NoError(t, err)

	sub, rev, err := svcs.Homework.Review(sub.ID, curator.ID, homework.ReviewData{
		Comment: "needs more work",
		Status:  homework.StatusRejected,
	})
	require.NoError(t, err)
	assert.Equal(t, homework.StatusRejected, sub.Status)
	assert.Equal(t, homework.StatusRejected, rev.Status)
	assert.Equal(t, curator.ID, rev.ReviewerID)

	// the decision is mailed to the student
	require.Len(t, emailsvc.SentMessages, 1)
	assert.Equal(t, student.Email, emailsvc.SentMessages[0].To[0].Address)
	assert.Contains(t, emailsvc.SentMessages[0].Subject, "needs more work")

	// reviewing a non-pending submission fails and appends nothing
	_, _, err = svcs.Homework.Review(sub.ID, curator.ID, homework.ReviewData{
		Comment: "again",
		Status:  homework.StatusApproved,
	})
	assert.True(t, core.IsValidationError(err))
	revs, err := svcs.Homework.Reviews(sub.ID)
	require.NoError(t, err)
	assert.Len(t, revs, 1)

	// unknown submission
	_, _, err = svcs.Homework.Review("nope", curator.ID, homework.ReviewData{
		Comment: "hm",
		Status:  homework.StatusApproved,
	})
	assert.Equal(t, homework.ErrSubmissionNotFound, err)
}

func TestService_resubmissionCycle(t *testing.T) {
	svcs := testutil.NewServices(t)
	_, lsns := svcs.CreateCourse(t, "cycle", testutil.HomeworkLesson("l1", 60))
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)
	curator := svcs.CreateUser(t, "Curator", "curator@test.cd", user.RoleCurator)

	sub, err := svcs.Homework.Submit(student.ID, lsns[0].ID, homework.SubmitData{Content: "v1"})
	require.NoError(t, err)
	firstID := sub.ID

	sub, _, err = svcs.Homework.Review(sub.ID, curator.ID, homework.ReviewData{
		Comment: "try again",
		Status:  homework.StatusRejected,
	})
	require.NoError(t, err)

	// resubmission reuses the same record and re-opens the cycle
	sub, err = svcs.Homework.Submit(student.ID, lsns[0].ID, homework.SubmitData{Content: "v2"})
	require.NoError(t, err)
	assert.Equal(t, firstID, sub.ID)
	assert.Equal(t, homework.StatusPending, sub.Status)
	assert.Equal(t, "v2", sub.Content)

	// the earlier review trail survives the resubmission
	revs, err := svcs.Homework.Reviews(sub.ID)
	require.NoError(t, err)
	require.Len(t, revs, 1)
	assert.Equal(t, "try again", revs[0].Comment)

	sub, _, err = svcs.Homework.Review(sub.ID, curator.ID, homework.ReviewData{
		Comment: "well done",
		Status:  homework.StatusApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, homework.StatusApproved, sub.Status)

	// approved is terminal: no further resubmission
	_, err = svcs.Homework.Submit(student.ID, lsns[0].ID, homework.SubmitData{Content: "v3"})
	assert.True(t, core.IsValidationError(err))

	revs, err = svcs.Homework.Reviews(sub.ID)
	require.NoError(t, err)
	assert.Len(t, revs, 2)
}

func TestService_Review_concurrent(t *testing.T) {
	svcs := testutil.NewServices(t)
	_, lsns := svcs.CreateCourse(t, "race", testutil.HomeworkLesson("l1", 60))
	student := svcs.CreateUser(t, "Student", "student@test.cd", user.RoleStudent)
	curator := svcs.CreateUser(t, "Curator", "curator@test.cd", user.RoleCurator)
	admin := svcs.CreateUser(t, "Admin", "admin@test.cd", user.RoleAdmin)

	sub, err := svcs.Homework.Submit(student.ID, lsns[0].ID, homework.SubmitData{Content: "v1"})
	require.NoError(t, err)

	// two reviewers race on the same pending submission
	reviewers := []struct {
		id     string
		status string
	}{
		{curator.ID, homework.StatusApproved},
		{admin.ID, homework.StatusRejected},
	}
	errs := make([]error, len(reviewers))
	var wg sync.WaitGroup
	for i, r := range reviewers {
		wg.Add(1)
		go func(i int, reviewerID, status string) {
			defer wg.Done()
			_, _, errs[i] = svcs.Homework.Review(sub.ID, reviewerID, homework.ReviewData{
				Comment: "decision",
				Status:  status,
			})
		}(i, r.id, r.status)
	}
	wg.Wait()

	// exactly one wins
	var won int
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.True(t, core.IsValidationError(err))
		}
	}
	assert.Equal(t, 1, won)

	revs, err := svcs.Homework.Reviews(sub.ID)
	require.NoError(t, err)
	assert.Len(t, revs, 1)
}

func TestService_Feed(t *testing.T) {
	svcs := testutil.NewServices(t)
	_, lsns := svcs.CreateCourse(t, "feed",
		testutil.HomeworkLesson("l1", 60),
		testutil.HomeworkLesson("l2", 60),
	)
	alice := svcs.CreateUser(t, "Alice", "alice@test.cd", user.RoleStudent)
	bob := svcs.CreateUser(t, "Bob", "bob@test.cd", user.RoleStudent)
	curator := svcs.CreateUser(t, "Curator", "curator@test.cd", user.RoleCurator)

	first, err := svcs.Homework.Submit(alice.ID, lsns[0].ID, homework.SubmitData{Content: "a1"})
	require.NoError(t, err)
	second, err := svcs.Homework.Submit(bob.ID, lsns[0].ID, homework.SubmitData{Content: "b1"})
	require.NoError(t, err)
	third, err := svcs.Homework.Submit(alice.ID, lsns[1].ID, homework.SubmitData{Content: "a2"})
	require.NoError(t, err)

	_, _, err = svcs.Homework.Review(second.ID, curator.ID, homework.ReviewData{
		Comment: "ok",
		Status:  homework.StatusApproved,
	})
	require.NoError(t, err)

	// most recent first
	subs, err := svcs.Homework.Feed(homework.Filter{})
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, third.ID, subs[0].ID)
	assert.Equal(t, second.ID, subs[1].ID)
	assert.Equal(t, first.ID, subs[2].ID)

	// by status
	subs, err = svcs.Homework.Feed(homework.Filter{Status: homework.StatusPending})
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	// by student
	subs, err = svcs.Homework.Feed(homework.Filter{UserID: alice.ID})
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	// combined
	subs, err = svcs.Homework.Feed(homework.Filter{UserID: bob.ID, Status: homework.StatusApproved})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, second.ID, subs[0].ID)
}
