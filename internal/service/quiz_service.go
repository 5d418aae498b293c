package service

import (
	"errors"
	"fmt"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/util"
	"lms_backend/pkg/keylock"
	"lms_backend/pkg/monitoring"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuizService is the attempt ledger: it lists quizzes with per-user state,
// accepts submissions under the attempt cap, and reports attempt history.
type QuizService struct {
	Courses    CourseStore
	Progresses ProgressStore
	Grader     *GradingService
	Guard      *EnrollmentService
	Progress   *ProgressService
	Locks      *keylock.KeyedMutex
}

func NewQuizService(
	courses CourseStore,
	progresses ProgressStore,
	grader *GradingService,
	guard *EnrollmentService,
	progress *ProgressService,
	locks *keylock.KeyedMutex,
) *QuizService {
	return &QuizService{
		Courses:    courses,
		Progresses: progresses,
		Grader:     grader,
		Guard:      guard,
		Progress:   progress,
		Locks:      locks,
	}
}

func attemptKey(userID uint, quizID string) string {
	return fmt.Sprintf("attempt:%d:%s", userID, quizID)
}

type QuizView struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Description       string             `json:"description,omitempty"`
	Kind              model.QuizKind     `json:"kind"`
	SectionID         string             `json:"sectionId,omitempty"`
	SectionTitle      string             `json:"sectionTitle,omitempty"`
	Origin            model.QuizOrigin   `json:"origin"`
	QuestionCount     int                `json:"questionCount"`
	TotalPoints       int                `json:"totalPoints"`
	Settings          model.QuizSettings `json:"settings"`
	IsCompleted       bool               `json:"isCompleted"`
	BestPercentage    int                `json:"bestPercentage"`
	TotalAttempts     int                `json:"totalAttempts"`
	RemainingAttempts int                `json:"remainingAttempts"`
	Passed            bool               `json:"passed"`
	IsUnlocked        bool               `json:"isUnlocked"`
}

type QuizListStats struct {
	TotalQuizzes    int `json:"totalQuizzes"`
	Attempted       int `json:"attempted"`
	Passed          int `json:"passed"`
	AverageBest     int `json:"averageBest"`
	OverallProgress int `json:"overallProgress"`
}

type QuizListResponse struct {
	Quizzes []QuizView    `json:"quizzes"`
	Stats   QuizListStats `json:"stats"`
}

// GetQuizzes lists every quiz of the course with the caller's attempt state
// folded in. Accessing quizzes on a free course auto-enrolls the caller.
func (s *QuizService) GetQuizzes(userID, courseID uint) (*QuizListResponse, error) {
	course, err := s.findCourse(courseID)
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

	resp := &QuizListResponse{Quizzes: []QuizView{}}
	bestSum := 0
	course.WalkQuizzes(func(ref model.QuizRef) bool {
		view := QuizView{
			ID:            ref.Quiz.ID,
			Title:         ref.Quiz.Title,
			Description:   ref.Quiz.Description,
			Kind:          ref.Kind,
			SectionID:     ref.SectionID,
			SectionTitle:  ref.SectionTitle,
			Origin:        ref.Quiz.Origin,
			QuestionCount: len(ref.Quiz.Questions),
			TotalPoints:   ref.Quiz.MaxPoints(),
			Settings:      ref.Quiz.Settings,
			IsUnlocked:    quizUnlocked(course, ref, p),
		}
		if state, ok := p.QuizScores[ref.Quiz.ID]; ok {
			view.IsCompleted = state.TotalAttempts > 0
			view.BestPercentage = state.BestPercentage
			view.TotalAttempts = state.TotalAttempts
			view.Passed = state.Passed
			if state.TotalAttempts > 0 {
				resp.Stats.Attempted++
				bestSum += state.BestPercentage
			}
			if state.Passed {
				resp.Stats.Passed++
			}
		}
		view.RemainingAttempts = remainingAttempts(ref.Quiz.Settings.MaxAttempts, view.TotalAttempts)
		resp.Quizzes = append(resp.Quizzes, view)
		return true
	})

	resp.Stats.TotalQuizzes = len(resp.Quizzes)
	if resp.Stats.Attempted > 0 {
		resp.Stats.AverageBest = bestSum / resp.Stats.Attempted
	}
	resp.Stats.OverallProgress = p.OverallProgress
	return resp, nil
}

// quizUnlocked: lesson and module quizzes are always available; the final
// assessment opens once every lesson is complete.
func quizUnlocked(course *model.Course, ref model.QuizRef, p *model.Progress) bool {
	if ref.Kind != model.FinalQuiz {
		return true
	}
	for id := range course.LessonIDs() {
		if !p.CompletedLessons.Has(id) {
			return false
		}
	}
	return true
}

func remainingAttempts(max, used int) int {
	if max <= 0 {
		return -1 // unlimited
	}
	if used >= max {
		return 0
	}
	return max - used
}

type SubmitQuizRequest struct {
	Answers   []SubmittedAnswer `json:"answers" binding:"required"`
	TimeSpent int               `json:"timeSpent"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type SubmitQuizResponse struct {
	Score          int                  `json:"score"`
	Passed         bool                 `json:"passed"`
	CorrectAnswers int                  `json:"correctAnswers"`
	TotalQuestions int                  `json:"totalQuestions"`
	Results        []model.GradedAnswer `json:"results"`
	Grading        GradeSummary         `json:"grading"`
	Quiz           QuizView             `json:"quiz"`
	Metadata       SubmitMetadata       `json:"metadata"`
}

type SubmitMetadata struct {
	AttemptID         string    `json:"attemptId"`
	AttemptNumber     int       `json:"attemptNumber"`
	RemainingAttempts int       `json:"remainingAttempts"`
	TimeSpent         int       `json:"timeSpent"`
	SubmittedAt       time.Time `json:"submittedAt"`
}

// SubmitQuiz grades a submission and appends it to the attempt ledger. The
// cap check and the append run under one per-(user, quiz) lock so concurrent
// submissions cannot push totalAttempts past maxAttempts.
func (s *QuizService) SubmitQuiz(userID, courseID uint, quizID string, req SubmitQuizRequest) (*SubmitQuizResponse, error) {
	if len(req.Answers) == 0 {
		return nil, &util.ValidationError{Message: "answers are required"}
	}

	course, err := s.findCourse(courseID)
	if err != nil {
		return nil, err
	}
	ref := course.FindQuiz(quizID)
	if ref == nil {
		return nil, util.ErrQuizNotFound
	}
	quiz := ref.Quiz

	if _, err := s.Guard.EnsureEnrollment(userID, course); err != nil {
		return nil, err
	}

	if missing := missingAnswers(quiz, req.Answers); len(missing) > 0 {
		return nil, &util.ValidationError{
			Message: fmt.Sprintf("%d question(s) not answered", len(missing)),
			Missing: missing,
		}
	}

	key := attemptKey(userID, quizID)
	s.Locks.Lock(key)
	defer s.Locks.Unlock(key)

	p, err := s.Progresses.GetOrCreate(userID, courseID)
	if err != nil {
		return nil, err
	}
	state := p.QuizState(quizID)

	maxAttempts := quiz.Settings.MaxAttempts
	if maxAttempts > 0 && state.TotalAttempts >= maxAttempts {
		monitoring.QuizSubmissions.WithLabelValues("rejected").Inc()
		return nil, &util.AttemptsExhaustedError{
			CurrentAttempts: state.TotalAttempts,
			MaxAttempts:     maxAttempts,
			BestScore:       state.BestScore,
		}
	}

	graded, err := s.Grader.Grade(quiz.ID, quiz.Questions, req.Answers, GradeOptions{
		PassingScore:       quiz.Settings.PassingScore,
		ShowCorrectAnswers: quiz.Settings.ShowCorrectAnswers,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	attempt := model.Attempt{
		ID:          uuid.New().String(),
		Score:       graded.Summary.TotalPoints,
		MaxScore:    graded.Summary.MaxPossiblePoints,
		Percentage:  graded.Summary.Percentage,
		StartedAt:   now.Add(-time.Duration(req.TimeSpent) * time.Second),
		CompletedAt: now,
		TimeSpent:   req.TimeSpent,
		Answers:     graded.Results,
	}
	state.Record(attempt, quiz.Settings.PassingScore)
	p.TimeSpent += req.TimeSpent

	s.Progress.syncOverallProgress(p, course)
	if err := s.Progresses.Update(p); err != nil {
		// grading succeeded but nothing was recorded; the submission is a
		// failed operation, not a partial success
		monitoring.QuizSubmissions.WithLabelValues("failed").Inc()
		return nil, &util.PersistenceError{Op: "record quiz attempt", Err: err}
	}
	s.Progress.propagateEnrollment(p)
	monitoring.QuizSubmissions.WithLabelValues("accepted").Inc()

	results := graded.Results
	if !quiz.Settings.ShowCorrectAnswers {
		results = stripAnswerKeys(results)
	}

	return &SubmitQuizResponse{
		Score:          graded.Summary.TotalPoints,
		Passed:         graded.Summary.Passed,
		CorrectAnswers: graded.Summary.CorrectAnswers,
		TotalQuestions: graded.Summary.TotalQuestions,
		Results:        results,
		Grading:        graded.Summary,
		Quiz: QuizView{
			ID:                quiz.ID,
			Title:             quiz.Title,
			Kind:              ref.Kind,
			SectionID:         ref.SectionID,
			SectionTitle:      ref.SectionTitle,
			Origin:            quiz.Origin,
			QuestionCount:     len(quiz.Questions),
			TotalPoints:       quiz.MaxPoints(),
			Settings:          quiz.Settings,
			IsCompleted:       true,
			BestPercentage:    state.BestPercentage,
			TotalAttempts:     state.TotalAttempts,
			RemainingAttempts: remainingAttempts(maxAttempts, state.TotalAttempts),
			Passed:            state.Passed,
			IsUnlocked:        true,
		},
		Metadata: SubmitMetadata{
			AttemptID:         attempt.ID,
			AttemptNumber:     state.TotalAttempts,
			RemainingAttempts: remainingAttempts(maxAttempts, state.TotalAttempts),
			TimeSpent:         req.TimeSpent,
			SubmittedAt:       now,
		},
	}, nil
}

func missingAnswers(quiz *model.Quiz, answers []SubmittedAnswer) []string {
	answered := make(map[string]bool, len(answers))
	for i := range answers {
		answered[answers[i].QuestionID] = true
	}
	var missing []string
	for i := range quiz.Questions {
		if !answered[quiz.Questions[i].ID] {
			missing = append(missing, quiz.Questions[i].ID)
		}
	}
	return missing
}

func stripAnswerKeys(results []model.GradedAnswer) []model.GradedAnswer {
	out := make([]model.GradedAnswer, len(results))
	for i, r := range results {
		r.CorrectAnswer = nil
		r.Explanation = ""
		out[i] = r
	}
	return out
}

type AttemptInfo struct {
	QuizID            string          `json:"quizId"`
	CurrentAttempts   int             `json:"currentAttempts"`
	MaxAttempts       int             `json:"maxAttempts"`
	RemainingAttempts int             `json:"remainingAttempts"`
	CanTakeQuiz       bool            `json:"canTakeQuiz"`
	BestScore         int             `json:"bestScore"`
	BestAttempt       *model.Attempt  `json:"bestAttempt,omitempty"`
	LastAttempt       *model.Attempt  `json:"lastAttempt,omitempty"`
	Passed            bool            `json:"passed"`
	Attempts          []model.Attempt `json:"attempts"`
}

func (s *QuizService) GetAttemptInfo(userID, courseID uint, quizID string) (*AttemptInfo, error) {
	course, err := s.findCourse(courseID)
	if err != nil {
		return nil, err
	}
	ref := course.FindQuiz(quizID)
	if ref == nil {
		return nil, util.ErrQuizNotFound
	}
	if _, err := s.Guard.EnsureEnrollment(userID, course); err != nil {
		return nil, err
	}

	info := &AttemptInfo{
		QuizID:      quizID,
		MaxAttempts: ref.Quiz.Settings.MaxAttempts,
		Attempts:    []model.Attempt{},
	}

	p, err := s.Progresses.Find(userID, courseID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if p != nil {
		if state, ok := p.QuizScores[quizID]; ok {
			info.CurrentAttempts = state.TotalAttempts
			info.BestScore = state.BestScore
			info.BestAttempt = state.BestAttempt()
			info.LastAttempt = state.LastAttempt()
			info.Passed = state.Passed
			info.Attempts = state.Attempts
		}
	}
	info.RemainingAttempts = remainingAttempts(info.MaxAttempts, info.CurrentAttempts)
	info.CanTakeQuiz = info.RemainingAttempts != 0
	return info, nil
}

func (s *QuizService) findCourse(courseID uint) (*model.Course, error) {
	course, err := s.Courses.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}
