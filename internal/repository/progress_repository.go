package repository

import (
	"errors"

	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) Find(userID, courseID uint) (*model.Progress, error) {
	var p model.Progress
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&p).Error
	if err != nil {
		return nil, err
	}
	p.EnsureMaps()
	return &p, nil
}

// GetOrCreate loads the aggregate or lazily creates an empty one. The unique
// (user_id, course_id) index turns a racing create into a retryable read.
func (r *ProgressRepository) GetOrCreate(userID, courseID uint) (*model.Progress, error) {
	p, err := r.Find(userID, courseID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := &model.Progress{
		UserID:           userID,
		CourseID:         courseID,
		CompletedLessons: model.LessonSet{},
	}
	fresh.EnsureMaps()
	if err := r.DB.Create(fresh).Error; err != nil {
		// lost the create race; the row exists now
		if existing, findErr := r.Find(userID, courseID); findErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return fresh, nil
}

func (r *ProgressRepository) Update(p *model.Progress) error {
	return r.DB.Save(p).Error
}
