package inmemdb

import (
	"sort"
	"time"

	"github.com/laurahq/lms/core/homework"
)

type homeworkRepository struct {
	db *homeworkTable
}

func NewHomeworkRepository(db *DB) homework.Repository {
	return &homeworkRepository{db: db.homework}
}

func (repo *homeworkRepository) GetSubmissionByID(id string) (homework.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sub, ok := repo.db.submissions[id]; ok {
		return *sub, nil
	}
	return homework.Submission{}, homework.ErrSubmissionNotFound
}

func (repo *homeworkRepository) GetSubmissionByUserLesson(userID, lessonID string) (homework.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if id, ok := repo.db.byUserLesson[pairKey(userID, lessonID)]; ok {
		if sub, ok := repo.db.submissions[id]; ok {
			return *sub, nil
		}
	}
	return homework.Submission{}, homework.ErrSubmissionNotFound
}

func (repo *homeworkRepository) UpsertSubmission(sub homework.Submission) (homework.Submission, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.submissions[sub.ID] = &sub
	repo.db.byUserLesson[pairKey(sub.UserID, sub.LessonID)] = sub.ID
	return sub, nil
}

func (repo *homeworkRepository) FilterSubmissions(filter homework.Filter) ([]homework.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subs := make([]homework.Submission, 0, len(repo.db.submissions))
	for _, sub := range repo.db.submissions {
		if filter.Status != "" && sub.Status != filter.Status {
			continue
		}
		if filter.UserID != "" && sub.UserID != filter.UserID {
			continue
		}
		subs = append(subs, *sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubmittedAt.After(subs[j].SubmittedAt) })
	return subs, nil
}

// AppendReview does the pending check, the status flip and the append under
// one lock: of two concurrent reviews exactly one succeeds.
func (repo *homeworkRepository) AppendReview(rev homework.Review, updatedAt time.Time) (homework.Submission, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub, ok := repo.db.submissions[rev.SubmissionID]
	if !ok {
		return homework.Submission{}, homework.ErrSubmissionNotFound
	}
	if !sub.IsPending() {
		return homework.Submission{}, homework.ErrNotPending
	}

	sub.Status = rev.Status
	sub.UpdatedAt = updatedAt
	repo.db.reviews[rev.SubmissionID] = append(repo.db.reviews[rev.SubmissionID], rev)
	return *sub, nil
}

func (repo *homeworkRepository) QueryReviewsBySubmissionID(submissionID string) ([]homework.Review, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	revs := make([]homework.Review, len(repo.db.reviews[submissionID]))
	copy(revs, repo.db.reviews[submissionID])
	return revs, nil
}
