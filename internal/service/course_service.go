package service

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

// CourseService is the read surface over the authored content tree. The
// engine never mutates content; authoring and its workflow live elsewhere.
type CourseService struct {
	CourseRepo *repository.CourseRepository
}

func NewCourseService(courseRepo *repository.CourseRepository) *CourseService {
	return &CourseService{CourseRepo: courseRepo}
}

type CourseSummary struct {
	ID           uint    `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	SectionCount int     `json:"sectionCount"`
	LessonCount  int     `json:"lessonCount"`
	QuizCount    int     `json:"quizCount"`
}

func (s *CourseService) ListCourses(page, limit int) ([]CourseSummary, int64, error) {
	courses, total, err := s.CourseRepo.ListPublished(page, limit)
	if err != nil {
		return nil, 0, err
	}
	summaries := make([]CourseSummary, len(courses))
	for i := range courses {
		c := &courses[i]
		quizzes := 0
		c.WalkQuizzes(func(model.QuizRef) bool {
			quizzes++
			return true
		})
		summaries[i] = CourseSummary{
			ID:           c.ID,
			Title:        c.Title,
			Description:  c.Description,
			Price:        c.Price,
			SectionCount: len(c.Sections),
			LessonCount:  c.TotalLessons(),
			QuizCount:    quizzes,
		}
	}
	return summaries, total, nil
}

// GetCourse returns the content tree with every answer key stripped.
func (s *CourseService) GetCourse(id uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if !course.IsPublished {
		return nil, util.ErrCourseNotFound
	}

	sanitized := *course
	sanitized.Sections = make(model.Sections, len(course.Sections))
	for i, sec := range course.Sections {
		lessons := make([]model.Lesson, len(sec.Lessons))
		for j, lesson := range sec.Lessons {
			if lesson.Quiz != nil {
				lesson.Quiz = lesson.Quiz.Sanitized()
			}
			lessons[j] = lesson
		}
		sec.Lessons = lessons
		if sec.ModuleQuiz != nil {
			sec.ModuleQuiz = sec.ModuleQuiz.Sanitized()
		}
		sanitized.Sections[i] = sec
	}
	if course.FinalAssessment != nil {
		sanitized.FinalAssessment = course.FinalAssessment.Sanitized()
	}
	return &sanitized, nil
}
