package service

import (
	"errors"
	"fmt"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/util"
	"lms_backend/pkg/keylock"
	"lms_backend/pkg/monitoring"

	"gorm.io/gorm"
)

type EnrollmentService struct {
	Enrollments EnrollmentStore
	Courses     CourseStore
	Locks       *keylock.KeyedMutex
}

func NewEnrollmentService(enrollments EnrollmentStore, courses CourseStore, locks *keylock.KeyedMutex) *EnrollmentService {
	return &EnrollmentService{
		Enrollments: enrollments,
		Courses:     courses,
		Locks:       locks,
	}
}

func enrollKey(userID, courseID uint) string {
	return fmt.Sprintf("enroll:%d:%d", userID, courseID)
}

// EnsureEnrollment is the auto-enrollment guard: quiz access on a free
// course enrolls the learner as a side effect; a priced course without an
// enrollment is a hard rejection. Get-or-create runs under a per-(user,
// course) lock so racing first accesses cannot enroll twice.
func (s *EnrollmentService) EnsureEnrollment(userID uint, course *model.Course) (*model.Enrollment, error) {
	e, err := s.Enrollments.FindByUserAndCourse(userID, course.ID)
	if err == nil {
		go s.Enrollments.TouchLastAccessed(userID, course.ID)
		return e, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if course.Price > 0 {
		return nil, &util.EnrollmentRequiredError{CourseID: course.ID}
	}

	key := enrollKey(userID, course.ID)
	s.Locks.Lock(key)
	defer s.Locks.Unlock(key)

	// re-check under the lock: a concurrent call may have enrolled already
	if e, err := s.Enrollments.FindByUserAndCourse(userID, course.ID); err == nil {
		return e, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := &model.Enrollment{
		UserID:     userID,
		CourseID:   course.ID,
		Status:     model.EnrollmentActive,
		EnrolledAt: time.Now(),
	}
	if err := s.Enrollments.EnrollUser(fresh); err != nil {
		// the unique index caught a race that slipped past the lock
		// (e.g. another instance); fall back to the existing row
		if existing, findErr := s.Enrollments.FindByUserAndCourse(userID, course.ID); findErr == nil {
			return existing, nil
		}
		return nil, err
	}
	monitoring.AutoEnrollments.Inc()
	return fresh, nil
}

// Enroll is the explicit enrollment operation. Payment validation for priced
// courses happens upstream in the billing collaborator.
func (s *EnrollmentService) Enroll(userID, courseID uint) (*model.Enrollment, error) {
	course, err := s.Courses.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if !course.IsPublished {
		return nil, util.ErrCourseNotPublished
	}

	key := enrollKey(userID, courseID)
	s.Locks.Lock(key)
	defer s.Locks.Unlock(key)

	if e, err := s.Enrollments.FindByUserAndCourse(userID, courseID); err == nil {
		return e, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	e := &model.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Status:     model.EnrollmentActive,
		EnrolledAt: time.Now(),
	}
	if err := s.Enrollments.EnrollUser(e); err != nil {
		if existing, findErr := s.Enrollments.FindByUserAndCourse(userID, courseID); findErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return e, nil
}
