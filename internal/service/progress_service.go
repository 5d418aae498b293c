package service

import (
	"errors"
	"math"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"
	"lms_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressService is the lesson completion tracker and the progress
// aggregator. It is the only place the externally visible overall
// percentage is computed.
type ProgressService struct {
	Courses     CourseStore
	Enrollments EnrollmentStore
	Progresses  ProgressStore
	Guard       *EnrollmentService
}

func NewProgressService(courses CourseStore, enrollments EnrollmentStore, progresses ProgressStore, guard *EnrollmentService) *ProgressService {
	return &ProgressService{
		Courses:     courses,
		Enrollments: enrollments,
		Progresses:  progresses,
		Guard:       guard,
	}
}

type LessonProgressRequest struct {
	TimeSpent         int                 `json:"timeSpent"`
	CurrentPosition   float64             `json:"currentPosition"`
	PercentageWatched float64             `json:"percentageWatched"`
	Interactions      []model.Interaction `json:"interactions,omitempty"`
	Notes             []model.Note        `json:"notes,omitempty"`
	Bookmarks         []model.Bookmark    `json:"bookmarks,omitempty"`
	IsCompleted       bool                `json:"isCompleted"`
}

type LessonProgressResult struct {
	LessonID         string             `json:"lessonId"`
	Completed        bool               `json:"completed"`
	SectionID        string             `json:"sectionId"`
	SectionCompleted bool               `json:"sectionCompleted"`
	CompletedLessons int                `json:"completedLessons"`
	TotalLessons     int                `json:"totalLessons"`
	OverallProgress  int                `json:"overallProgress"`
	State            *model.LessonState `json:"state"`
}

// UpdateLessonProgress merges a watch event into the aggregate. Every merge
// is commutative and idempotent (max for time, append for logs, set add for
// completion) so replays and out-of-order delivery settle on the same state.
func (s *ProgressService) UpdateLessonProgress(userID, courseID uint, lessonID string, req LessonProgressRequest) (*LessonProgressResult, error) {
	course, section, lesson, err := s.lookupLesson(courseID, lessonID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Guard.EnsureEnrollment(userID, course); err != nil {
		return nil, err
	}

	p, err := s.Progresses.GetOrCreate(userID, courseID)
	if err != nil {
		return nil, err
	}

	state, ok := p.LessonProgress[lessonID]
	if !ok {
		state = &model.LessonState{StartedAt: time.Now()}
		p.LessonProgress[lessonID] = state
	}

	if req.TimeSpent > state.TimeSpent {
		delta := req.TimeSpent - state.TimeSpent
		state.TimeSpent = req.TimeSpent
		p.TimeSpent += delta
	}
	if req.CurrentPosition > 0 {
		state.LastPosition = req.CurrentPosition
	}
	state.Interactions = append(state.Interactions, req.Interactions...)
	state.Notes = append(state.Notes, req.Notes...)
	state.Bookmarks = append(state.Bookmarks, req.Bookmarks...)

	if req.IsCompleted || req.PercentageWatched >= util.CompletionWatchThreshold {
		s.markCompleted(p, lessonID, state)
	}
	p.LastWatched = lessonID

	s.syncOverallProgress(p, course)
	if err := s.Progresses.Update(p); err != nil {
		return nil, &util.PersistenceError{Op: "save lesson progress", Err: err}
	}
	s.propagateEnrollment(p)

	return s.lessonResult(p, course, section, lesson, state), nil
}

// CompleteLesson is the explicit manual completion path. It shares the
// idempotent set-add semantics with watch-driven completion.
func (s *ProgressService) CompleteLesson(userID, courseID uint, lessonID string) (*LessonProgressResult, error) {
	course, section, lesson, err := s.lookupLesson(courseID, lessonID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Guard.EnsureEnrollment(userID, course); err != nil {
		return nil, err
	}

	p, err := s.Progresses.GetOrCreate(userID, courseID)
	if err != nil {
		return nil, err
	}

	state, ok := p.LessonProgress[lessonID]
	if !ok {
		state = &model.LessonState{StartedAt: time.Now()}
		p.LessonProgress[lessonID] = state
	}
	s.markCompleted(p, lessonID, state)
	p.CurrentLesson = lessonID

	s.syncOverallProgress(p, course)
	if err := s.Progresses.Update(p); err != nil {
		return nil, &util.PersistenceError{Op: "save lesson completion", Err: err}
	}
	s.propagateEnrollment(p)

	return s.lessonResult(p, course, section, lesson, state), nil
}

func (s *ProgressService) markCompleted(p *model.Progress, lessonID string, state *model.LessonState) {
	if p.CompletedLessons.Add(lessonID) {
		monitoring.LessonsCompleted.Inc()
	}
	if state.CompletedAt == nil {
		now := time.Now()
		state.CompletedAt = &now
	}
}

// SectionCompleted implements the all_lessons policy: a section is complete
// iff every one of its lessons is in the completed set. Other declared
// policies fall back to this derivation for reporting.
func SectionCompleted(sec *model.Section, completed model.LessonSet) bool {
	if len(sec.Lessons) == 0 {
		return false
	}
	for i := range sec.Lessons {
		if !completed.Has(sec.Lessons[i].ID) {
			return false
		}
	}
	return true
}

// syncOverallProgress recomputes the derived percentage after any mutation
// of completed lessons or quiz scores. Total lessons come from the content
// tree, never from the aggregate itself.
func (s *ProgressService) syncOverallProgress(p *model.Progress, course *model.Course) {
	total := course.TotalLessons()
	if total == 0 {
		p.OverallProgress = 0
		return
	}
	pct := int(math.Round(100 * float64(len(p.CompletedLessons)) / float64(total)))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	p.OverallProgress = pct
}

// propagateEnrollment mirrors the percentage onto the enrollment record.
// Best effort: the Progress row is the source of truth, so a failed mirror
// write is logged and the operation still succeeds.
func (s *ProgressService) propagateEnrollment(p *model.Progress) {
	if err := s.Enrollments.UpdateProgress(p.UserID, p.CourseID, p.OverallProgress); err != nil {
		logger.Log.Warn("enrollment progress update failed",
			zap.Uint("userId", p.UserID),
			zap.Uint("courseId", p.CourseID),
			zap.Int("progress", p.OverallProgress),
			zap.Error(err))
	}
}

func (s *ProgressService) lookupLesson(courseID uint, lessonID string) (*model.Course, *model.Section, *model.Lesson, error) {
	course, err := s.Courses.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, util.ErrCourseNotFound
		}
		return nil, nil, nil, err
	}
	section, lesson := course.FindLesson(lessonID)
	if lesson == nil {
		return nil, nil, nil, util.ErrLessonNotFound
	}
	return course, section, lesson, nil
}

func (s *ProgressService) lessonResult(p *model.Progress, course *model.Course, section *model.Section, lesson *model.Lesson, state *model.LessonState) *LessonProgressResult {
	return &LessonProgressResult{
		LessonID:         lesson.ID,
		Completed:        p.CompletedLessons.Has(lesson.ID),
		SectionID:        section.ID,
		SectionCompleted: SectionCompleted(section, p.CompletedLessons),
		CompletedLessons: len(p.CompletedLessons),
		TotalLessons:     course.TotalLessons(),
		OverallProgress:  p.OverallProgress,
		State:            state,
	}
}

type SectionProgressView struct {
	SectionID        string  `json:"sectionId"`
	Title            string  `json:"title"`
	TotalLessons     int     `json:"totalLessons"`
	CompletedLessons int     `json:"completedLessons"`
	Completed        bool    `json:"completed"`
	Percentage       float64 `json:"percentage"`
}

type ProgressOverview struct {
	CourseID         uint                  `json:"courseId"`
	OverallProgress  int                   `json:"overallProgress"`
	CompletedLessons model.LessonSet       `json:"completedLessons"`
	TotalLessons     int                   `json:"totalLessons"`
	TimeSpent        int                   `json:"timeSpent"`
	CurrentLesson    string                `json:"currentLesson"`
	LastWatched      string                `json:"lastWatched"`
	Sections         []SectionProgressView `json:"sections"`
}

// GetCourseProgress returns the per-section derived completion view.
func (s *ProgressService) GetCourseProgress(userID, courseID uint) (*ProgressOverview, error) {
	course, err := s.Courses.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	overview := &ProgressOverview{
		CourseID:         courseID,
		CompletedLessons: model.LessonSet{},
		TotalLessons:     course.TotalLessons(),
	}

	p, err := s.Progresses.Find(userID, courseID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if p != nil {
		overview.OverallProgress = p.OverallProgress
		overview.CompletedLessons = p.CompletedLessons
		overview.TimeSpent = p.TimeSpent
		overview.CurrentLesson = p.CurrentLesson
		overview.LastWatched = p.LastWatched
	}

	completed := overview.CompletedLessons
	for i := range course.Sections {
		sec := &course.Sections[i]
		done := 0
		for j := range sec.Lessons {
			if completed.Has(sec.Lessons[j].ID) {
				done++
			}
		}
		view := SectionProgressView{
			SectionID:        sec.ID,
			Title:            sec.Title,
			TotalLessons:     len(sec.Lessons),
			CompletedLessons: done,
			Completed:        SectionCompleted(sec, completed),
		}
		if len(sec.Lessons) > 0 {
			view.Percentage = math.Round(100*float64(done)/float64(len(sec.Lessons))*100) / 100
		}
		overview.Sections = append(overview.Sections, view)
	}
	return overview, nil
}

type QuizGrade struct {
	QuizID           string         `json:"quizId"`
	QuizTitle        string         `json:"quizTitle"`
	ModuleTitle      string         `json:"moduleTitle"`
	Type             model.QuizKind `json:"type"`
	Percentage       int            `json:"percentage"`
	Passed           bool           `json:"passed"`
	Attempts         int            `json:"attempts"`
	TimeSpentMinutes int            `json:"timeSpentMinutes"`
}

type GradeOverallStats struct {
	OverallGrade     int  `json:"overallGrade"`
	CoursePassed     bool `json:"coursePassed"`
	ModulesCompleted int  `json:"modulesCompleted"`
	TotalQuizzes     int  `json:"totalQuizzes"`
	QuizzesAttempted int  `json:"quizzesAttempted"`
	QuizzesPassed    int  `json:"quizzesPassed"`
}

type GradeReport struct {
	CourseID     uint              `json:"courseId"`
	CourseTitle  string            `json:"courseTitle"`
	Grades       []QuizGrade       `json:"grades"`
	OverallStats GradeOverallStats `json:"overallStats"`
}

// GetCourseGrades builds the grade report. A learner with no progress record
// gets an explicit zeroed report, never an error.
func (s *ProgressService) GetCourseGrades(userID, courseID uint) (*GradeReport, error) {
	course, err := s.Courses.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	report := &GradeReport{
		CourseID:    courseID,
		CourseTitle: course.Title,
		Grades:      []QuizGrade{},
	}

	p, err := s.Progresses.Find(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			course.WalkQuizzes(func(model.QuizRef) bool {
				report.OverallStats.TotalQuizzes++
				return true
			})
			return report, nil
		}
		return nil, err
	}

	sum := 0
	course.WalkQuizzes(func(ref model.QuizRef) bool {
		report.OverallStats.TotalQuizzes++
		state, ok := p.QuizScores[ref.Quiz.ID]
		if !ok || state.TotalAttempts == 0 {
			return true
		}

		kind := ref.Kind
		if kind == model.LessonQuiz {
			// lesson quizzes report under their module
			kind = model.ModuleQuiz
		}
		report.Grades = append(report.Grades, QuizGrade{
			QuizID:           ref.Quiz.ID,
			QuizTitle:        ref.Quiz.Title,
			ModuleTitle:      ref.SectionTitle,
			Type:             kind,
			Percentage:       state.BestPercentage,
			Passed:           state.Passed,
			Attempts:         state.TotalAttempts,
			TimeSpentMinutes: state.TotalQuizTime() / 60,
		})
		sum += state.BestPercentage
		report.OverallStats.QuizzesAttempted++
		if state.Passed {
			report.OverallStats.QuizzesPassed++
			if kind == model.ModuleQuiz {
				report.OverallStats.ModulesCompleted++
			}
		}
		return true
	})

	if report.OverallStats.QuizzesAttempted > 0 {
		report.OverallStats.OverallGrade = int(math.Round(float64(sum) / float64(report.OverallStats.QuizzesAttempted)))
	}
	report.OverallStats.CoursePassed = report.OverallStats.QuizzesAttempted > 0 &&
		report.OverallStats.OverallGrade >= util.CoursePassingGrade

	return report, nil
}
