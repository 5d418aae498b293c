package service

import "lms_backend/internal/model"

// Store interfaces consumed by the engine. The gorm repositories implement
// them in production; tests substitute in-memory fakes.

type CourseStore interface {
	FindByID(id uint) (*model.Course, error)
}

type EnrollmentStore interface {
	FindByUserAndCourse(userID, courseID uint) (*model.Enrollment, error)
	EnrollUser(e *model.Enrollment) error
	UpdateProgress(userID, courseID uint, progress int) error
	TouchLastAccessed(userID, courseID uint) error
}

type ProgressStore interface {
	Find(userID, courseID uint) (*model.Progress, error)
	GetOrCreate(userID, courseID uint) (*model.Progress, error)
	Update(p *model.Progress) error
}
