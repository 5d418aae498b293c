package repository

import (
	"time"

	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) FindByUserAndCourse(userID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) FindByUser(userID uint) ([]model.Enrollment, error) {
	var es []model.Enrollment
	err := r.DB.Where("user_id = ?", userID).Order("enrolled_at desc").Find(&es).Error
	return es, err
}

// EnrollUser creates the enrollment row. The unique (user_id, course_id)
// index makes a racing duplicate create fail instead of inserting twice.
func (r *EnrollmentRepository) EnrollUser(e *model.Enrollment) error {
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now()
	}
	e.LastAccessedAt = e.EnrolledAt
	return r.DB.Create(e).Error
}

func (r *EnrollmentRepository) UpdateProgress(userID, courseID uint, progress int) error {
	updates := map[string]interface{}{
		"progress":         progress,
		"last_accessed_at": time.Now(),
	}
	if progress >= 100 {
		updates["status"] = model.EnrollmentCompleted
	}
	return r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Updates(updates).Error
}

func (r *EnrollmentRepository) TouchLastAccessed(userID, courseID uint) error {
	return r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Update("last_accessed_at", time.Now()).Error
}
