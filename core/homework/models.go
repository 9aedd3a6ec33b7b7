package homework

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/laurahq/lms/core"
)

// Submission statuses. A review can only ever assign Approved or Rejected;
// Approved is terminal, Rejected re-opens the cycle on resubmission.
const (
	StatusNotSubmitted = "not_submitted"
	StatusPending      = "pending"
	StatusApproved     = "approved"
	StatusRejected     = "rejected"
)

// Submission is the one visible homework record per (user, lesson) pair.
// A resubmission updates this record rather than creating a duplicate.
type Submission struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	LessonID      string    `json:"lesson_id" db:"lesson_id"`
	CourseID      string    `json:"course_id" db:"course_id"`
	Content       string    `json:"content" db:"content"`
	AttachmentURL string    `json:"attachment_url" db:"attachment_url"`
	Status        string    `json:"status" db:"status"`
	SubmittedAt   time.Time `json:"submitted_at" db:"submitted_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

func (s *Submission) IsPending() bool  { return s.Status == StatusPending }
func (s *Submission) IsApproved() bool { return s.Status == StatusApproved }

// Review is an append-only audit entry tied to a submission. Immutable once
// created; resubmission cycles accumulate reviews against the same submission.
type Review struct {
	ID           string    `json:"id" db:"id"`
	SubmissionID string    `json:"submission_id" db:"submission_id"`
	ReviewerID   string    `json:"reviewer_id" db:"reviewer_id"`
	Comment      string    `json:"comment" db:"comment"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// SubmitData is the student's homework submission payload.
type SubmitData struct {
	Content       string `json:"content" validate:"required"`
	AttachmentURL string `json:"attachment_url" validate:"omitempty,url"`
}

func (sd *SubmitData) Validate(validate *validator.Validate) error {
	sd.Content = core.CleanString(sd.Content)
	sd.AttachmentURL = core.CleanString(sd.AttachmentURL)
	return validate.Struct(sd)
}

// ReviewData is the curator's decision payload. Pending can never be assigned.
type ReviewData struct {
	Comment string `json:"comment" validate:"required"`
	Status  string `json:"status" validate:"required,oneof=approved rejected"`
}

func (rd *ReviewData) Validate(validate *validator.Validate) error {
	rd.Comment = core.CleanString(rd.Comment)
	return validate.Struct(rd)
}

// Filter narrows the submission feed.
type Filter struct {
	Status string `query:"status"`
	UserID string `query:"user_id"`
}

func (f *Filter) IsEmpty() bool { return f.Status == "" && f.UserID == "" }
