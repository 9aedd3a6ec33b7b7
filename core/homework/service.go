package homework

import (
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/laurahq/lms/core"
	"github.com/laurahq/lms/core/catalog"
	"github.com/laurahq/lms/core/user"
)

var (
	// errors
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrNotPending         = errors.New("submission is not pending review")
	ErrAlreadyApproved    = errors.New("submission has already been approved")
	ErrContentRequired    = errors.New("submission content is required")
	ErrCommentRequired    = errors.New("a review comment is required")
	ErrInvalidDecision    = errors.New("a review decision must be approved or rejected")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		GetSubmissionByID(id string) (Submission, error)
		GetSubmissionByUserLesson(userID, lessonID string) (Submission, error)
		UpsertSubmission(sub Submission) (Submission, error)
		// FilterSubmissions returns submissions matching the filter, ordered by
		// SubmittedAt descending (most recent first).
		FilterSubmissions(filter Filter) ([]Submission, error)
		// AppendReview atomically flips the pending submission to rev.Status,
		// bumps its UpdatedAt and appends rev to the audit trail. It fails with
		// ErrNotPending unless the submission is currently pending, appending
		// nothing: concurrent reviews yield exactly one success.
		AppendReview(rev Review, updatedAt time.Time) (Submission, error)
		// QueryReviewsBySubmissionID returns the trail oldest first.
		QueryReviewsBySubmissionID(submissionID string) ([]Review, error)
	}

	// Service manages the homework submission lifecycle:
	// NotSubmitted → Pending → {Approved, Rejected}; Rejected → Pending on
	// resubmission; Approved is terminal.
	Service struct {
		repo    Repository
		catalog *catalog.Service
		users   *user.Service
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, catalogSvc *catalog.Service, usrSvc *user.Service, mailSvc core.EmailService) *Service {
	return &Service{
		repo:    repo,
		catalog: catalogSvc,
		users:   usrSvc,
		mailSvc: mailSvc,
	}
}

// Submit creates or overwrites the student's submission for a lesson, setting
// it Pending. A prior Rejected submission is resubmitted in place, preserving
// its review trail; an Approved one can no longer change.
func (svc *Service) Submit(userID, lessonID string, data SubmitData) (Submission, error) {
	// the transport payload is validated upstream; content presence is
	// enforced again at the service boundary
	data.Content = core.CleanString(data.Content)
	if data.Content == "" {
		return Submission{}, core.NewValidationError(ErrContentRequired,
			core.FieldError{Field: "content", Error: ErrContentRequired.Error()})
	}

	lsn, err := svc.catalog.LessonByID(lessonID)
	if err != nil {
		return Submission{}, err
	}
	if !lsn.HasHomework {
		return Submission{}, core.NewInvalidOperationError(
			fmt.Sprintf("lesson %q does not require homework", lsn.ID))
	}

	sub, err := svc.repo.GetSubmissionByUserLesson(userID, lessonID)
	if err != nil {
		if err != ErrSubmissionNotFound {
			return Submission{}, err
		}
		sub = Submission{
			ID:       uuid.NewString(),
			UserID:   userID,
			LessonID: lsn.ID,
			CourseID: lsn.CourseID,
		}
	} else if sub.IsApproved() {
		return Submission{}, core.NewValidationError(ErrAlreadyApproved)
	}

	now := nowFunc().UTC()
	sub.Content = data.Content
	sub.AttachmentURL = data.AttachmentURL
	sub.Status = StatusPending
	sub.SubmittedAt = now
	sub.UpdatedAt = now
	return svc.repo.UpsertSubmission(sub)
}

// Review applies a curator decision to a pending submission and appends an
// immutable Review record. Reviewing a non-pending submission fails and
// appends nothing.
func (svc *Service) Review(submissionID, reviewerID string, data ReviewData) (Submission, Review, error) {
	data.Comment = core.CleanString(data.Comment)
	if data.Comment == "" {
		return Submission{}, Review{}, core.NewValidationError(ErrCommentRequired,
			core.FieldError{Field: "comment", Error: ErrCommentRequired.Error()})
	}
	if data.Status != StatusApproved && data.Status != StatusRejected {
		return Submission{}, Review{}, core.NewValidationError(ErrInvalidDecision,
			core.FieldError{Field: "status", Error: ErrInvalidDecision.Error()})
	}

	if _, err := svc.repo.GetSubmissionByID(submissionID); err != nil {
		return Submission{}, Review{}, err
	}

	now := nowFunc().UTC()
	rev := Review{
		ID:           uuid.NewString(),
		SubmissionID: submissionID,
		ReviewerID:   reviewerID,
		Comment:      data.Comment,
		Status:       data.Status,
		CreatedAt:    now,
	}
	sub, err := svc.repo.AppendReview(rev, now)
	if err != nil {
		if err == ErrNotPending {
			return Submission{}, Review{}, core.NewValidationError(err)
		}
		return Submission{}, Review{}, err
	}

	svc.notifyStudent(sub, rev)
	return sub, rev, nil
}

// Feed returns submissions matching the filter, most recent first. Used for
// both the admin review queue and per-student homework history.
func (svc *Service) Feed(filter Filter) ([]Submission, error) {
	return svc.repo.FilterSubmissions(filter)
}

func (svc *Service) SubmissionByID(id string) (Submission, error) {
	return svc.repo.GetSubmissionByID(id)
}

// SubmissionFor returns the one visible submission for a (user, lesson) pair.
func (svc *Service) SubmissionFor(userID, lessonID string) (Submission, error) {
	return svc.repo.GetSubmissionByUserLesson(userID, lessonID)
}

func (svc *Service) Reviews(submissionID string) ([]Review, error) {
	return svc.repo.QueryReviewsBySubmissionID(submissionID)
}

func (svc *Service) notifyStudent(sub Submission, rev Review) {
	usr, err := svc.users.GetByID(sub.UserID)
	if err != nil {
		return
	}
	lsn, err := svc.catalog.LessonByID(sub.LessonID)
	if err != nil {
		return
	}

	var subject string
	switch rev.Status {
	case StatusApproved:
		subject = fmt.Sprintf("Homework for %q accepted", lsn.Title)
	case StatusRejected:
		subject = fmt.Sprintf("Homework for %q needs more work", lsn.Title)
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.FullName, Address: usr.Email}},
		Subject: subject,
		Body:    rev.Comment,
	})
}
