package service

import (
	"sync"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureEnrollmentCreatesOnce(t *testing.T) {
	env := newQuizEnv(testCourse())
	course := testCourse()

	first, err := env.enrollment.EnsureEnrollment(7, course)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentActive, first.Status)
	assert.False(t, first.EnrolledAt.IsZero())

	second, err := env.enrollment.EnsureEnrollment(7, course)
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, 1, env.enrollments.creates)
}

func TestEnsureEnrollmentConcurrentSingleRow(t *testing.T) {
	env := newQuizEnv(testCourse())
	course := testCourse()

	const callers = 20
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.enrollment.EnsureEnrollment(7, course)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, env.enrollments.creates, "racing first accesses must enroll exactly once")
}

func TestEnsureEnrollmentPricedCourseRejected(t *testing.T) {
	env := newQuizEnv(testCourse())
	course := testCourse()
	course.Price = 19.99

	_, err := env.enrollment.EnsureEnrollment(7, course)
	var required *util.EnrollmentRequiredError
	require.ErrorAs(t, err, &required)
	assert.Equal(t, course.ID, required.CourseID)
	assert.Zero(t, env.enrollments.creates)
}

func TestEnsureEnrollmentPricedCourseWithExistingEnrollment(t *testing.T) {
	env := newQuizEnv(testCourse())
	course := testCourse()
	course.Price = 19.99

	_, err := env.enrollment.Enroll(7, course.ID)
	require.NoError(t, err)

	// an enrolled learner on a priced course passes the guard
	e, err := env.enrollment.EnsureEnrollment(7, course)
	require.NoError(t, err)
	assert.Equal(t, uint(7), e.UserID)
}

func TestEnrollUnknownCourse(t *testing.T) {
	env := newQuizEnv(testCourse())

	_, err := env.enrollment.Enroll(7, 42)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestEnrollUnpublishedCourse(t *testing.T) {
	course := testCourse()
	course.IsPublished = false
	env := newQuizEnv(course)

	_, err := env.enrollment.Enroll(7, course.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotPublished)
}

func TestEnrollIdempotent(t *testing.T) {
	env := newQuizEnv(testCourse())

	first, err := env.enrollment.Enroll(7, 1)
	require.NoError(t, err)
	second, err := env.enrollment.Enroll(7, 1)
	require.NoError(t, err)

	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, first.CourseID, second.CourseID)
	assert.Equal(t, 1, env.enrollments.creates)
}
