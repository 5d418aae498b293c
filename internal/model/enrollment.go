package model

import "time"

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentSuspended EnrollmentStatus = "suspended"
	EnrollmentRefunded  EnrollmentStatus = "refunded"
)

// Enrollment is one learner's membership in a course. Progress mirrors the
// rounded overall progress of the Progress aggregate and is written by the
// progress aggregator as a side effect.
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID         uint             `gorm:"index:idx_user_course_enrollment,unique;type:bigint unsigned" json:"userId"`
	CourseID       uint             `gorm:"index:idx_user_course_enrollment,unique;type:bigint unsigned" json:"courseId"`
	Status         EnrollmentStatus `gorm:"type:enum('active','completed','suspended','refunded');default:'active'" json:"status"`
	Progress       int              `gorm:"default:0" json:"progress"`
	EnrolledAt     time.Time        `json:"enrolledAt"`
	LastAccessedAt time.Time        `json:"lastAccessedAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
