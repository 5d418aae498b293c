package util

import (
	"errors"
	"fmt"
)

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrCourseNotPublished = errors.New("course not published")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailRegistered    = errors.New("email already registered")
)

// ValidationError rejects a malformed or incomplete payload before any side
// effect happens.
type ValidationError struct {
	Message string
	Missing []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AttemptsExhaustedError carries enough state for the client to render the
// attempt situation without a second round-trip.
type AttemptsExhaustedError struct {
	CurrentAttempts int
	MaxAttempts     int
	BestScore       int
}

func (e *AttemptsExhaustedError) Error() string {
	return fmt.Sprintf("maximum attempts reached (%d/%d)", e.CurrentAttempts, e.MaxAttempts)
}

// EnrollmentRequiredError means the learner must enroll (and pay) before the
// engine records anything for this course.
type EnrollmentRequiredError struct {
	CourseID uint
}

func (e *EnrollmentRequiredError) Error() string {
	return fmt.Sprintf("enrollment required for course %d", e.CourseID)
}

// MalformedQuizError marks authored content that cannot be graded, such as a
// quiz whose questions sum to zero points.
type MalformedQuizError struct {
	QuizID string
	Reason string
}

func (e *MalformedQuizError) Error() string {
	return fmt.Sprintf("quiz %s cannot be graded: %s", e.QuizID, e.Reason)
}

// PersistenceError distinguishes "graded but not saved" from a hard failure.
// A submission whose attempt could not be recorded is a failed operation even
// though grading succeeded, and the client must not treat it as accepted.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
