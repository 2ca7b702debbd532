package models

import "time"

// SubmissionStatus is the grading status the platform reports for a
// submission. Only correct submissions count toward completion.
type SubmissionStatus string

const (
	SubmissionCorrect    SubmissionStatus = "correct"
	SubmissionWrong      SubmissionStatus = "wrong"
	SubmissionEvaluation SubmissionStatus = "evaluation"
)

// Submission is one graded response to an attempt at a step. Fetched page by
// page, filtered, and discarded; never persisted.
type Submission struct {
	ID      int64            `json:"id"`
	Status  SubmissionStatus `json:"status"`
	Attempt int64            `json:"attempt"`
	Time    time.Time        `json:"time"`
}

// IsCorrect reports whether the submission solved the step.
func (s *Submission) IsCorrect() bool {
	return s.Status == SubmissionCorrect
}

// Attempt maps an attempt id back to the user that owns it. Resolved in
// batches keyed by attempt id.
type Attempt struct {
	ID   int64 `json:"id"`
	User int64 `json:"user"`
}

// UserSet is a deduplicated set of platform user ids, the output of
// submission resolution for one step.
type UserSet map[int64]struct{}

// Add inserts a user id into the set.
func (u UserSet) Add(id int64) {
	u[id] = struct{}{}
}

// Contains reports membership of a user id.
func (u UserSet) Contains(id int64) bool {
	_, ok := u[id]
	return ok
}
