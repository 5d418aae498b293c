package model

import "time"

// Progress is the per-(user, course) aggregate every learner action folds
// into. All mutations are commutative merges (max, set add, append) so that
// out-of-order delivery from a client cannot corrupt state. OverallProgress
// is derived and written only by the progress aggregator.
// swagger:model Progress
type Progress struct {
	BaseModel
	UserID           uint                       `gorm:"index:idx_user_course_progress,unique;type:bigint unsigned" json:"userId"`
	CourseID         uint                       `gorm:"index:idx_user_course_progress,unique;type:bigint unsigned" json:"courseId"`
	CompletedLessons LessonSet                  `gorm:"type:json;serializer:json" json:"completedLessons"`
	LessonProgress   map[string]*LessonState    `gorm:"type:json;serializer:json" json:"lessonProgress"`
	QuizScores       map[string]*QuizScoreState `gorm:"type:json;serializer:json" json:"quizScores"`
	OverallProgress  int                        `gorm:"default:0" json:"overallProgress"`
	TimeSpent        int                        `gorm:"default:0" json:"timeSpent"` // seconds
	CurrentLesson    string                     `gorm:"size:64" json:"currentLesson"`
	LastWatched      string                     `gorm:"size:64" json:"lastWatched"`
}

func (Progress) TableName() string {
	return "course_progress"
}

// LessonSet is an append-only set of completed lesson ids.
type LessonSet []string

func (s LessonSet) Has(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Add inserts id and reports whether the set changed. Adding an existing id
// is a no-op, which is what makes completion events replay-safe.
func (s *LessonSet) Add(id string) bool {
	if s.Has(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

type Interaction struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Detail    string    `json:"detail,omitempty"`
}

type Note struct {
	Content   string    `json:"content"`
	Position  float64   `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

type Bookmark struct {
	Title     string    `json:"title"`
	Position  float64   `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

// LessonState accumulates one lesson's watch state. TimeSpent merges by max
// rather than sum so a resumed session reported twice is not double counted.
type LessonState struct {
	TimeSpent    int           `json:"timeSpent"`
	LastPosition float64       `json:"lastPosition"`
	Interactions []Interaction `json:"interactions,omitempty"`
	Notes        []Note        `json:"notes,omitempty"`
	Bookmarks    []Bookmark    `json:"bookmarks,omitempty"`
	StartedAt    time.Time     `json:"startedAt"`
	CompletedAt  *time.Time    `json:"completedAt,omitempty"`
}

// GradedAnswer is one question's grading outcome inside an attempt.
type GradedAnswer struct {
	QuestionID           string      `json:"questionId"`
	Correct              bool        `json:"correct"`
	PointsAwarded        int         `json:"pointsAwarded"`
	PointsPossible       int         `json:"pointsPossible"`
	RequiresManualReview bool        `json:"requiresManualReview,omitempty"`
	CorrectAnswer        interface{} `json:"correctAnswer,omitempty"`
	Explanation          string      `json:"explanation,omitempty"`
	TimeSpent            int         `json:"timeSpent,omitempty"`
	HintsUsed            int         `json:"hintsUsed,omitempty"`
	Confidence           string      `json:"confidence,omitempty"`
}

// Attempt is immutable once recorded.
type Attempt struct {
	ID          string         `json:"id"`
	Score       int            `json:"score"`
	MaxScore    int            `json:"maxScore"`
	Percentage  int            `json:"percentage"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt time.Time      `json:"completedAt"`
	TimeSpent   int            `json:"timeSpent"`
	Answers     []GradedAnswer `json:"answers"`
}

type QuizScoreState struct {
	Attempts       []Attempt `json:"attempts"`
	BestScore      int       `json:"bestScore"`
	BestPercentage int       `json:"bestPercentage"`
	TotalAttempts  int       `json:"totalAttempts"`
	Passed         bool      `json:"passed"`
}

// Record appends an attempt and folds it into the derived fields. Best
// score and percentage never decrease and Passed is sticky.
func (s *QuizScoreState) Record(a Attempt, passingScore int) {
	s.Attempts = append(s.Attempts, a)
	s.TotalAttempts = len(s.Attempts)
	if a.Score > s.BestScore {
		s.BestScore = a.Score
	}
	if a.Percentage > s.BestPercentage {
		s.BestPercentage = a.Percentage
	}
	if a.Percentage >= passingScore {
		s.Passed = true
	}
}

func (s *QuizScoreState) LastAttempt() *Attempt {
	if len(s.Attempts) == 0 {
		return nil
	}
	return &s.Attempts[len(s.Attempts)-1]
}

func (s *QuizScoreState) BestAttempt() *Attempt {
	var best *Attempt
	for i := range s.Attempts {
		if best == nil || s.Attempts[i].Percentage > best.Percentage {
			best = &s.Attempts[i]
		}
	}
	return best
}

// TotalQuizTime is the cumulative seconds spent across attempts.
func (s *QuizScoreState) TotalQuizTime() int {
	total := 0
	for i := range s.Attempts {
		total += s.Attempts[i].TimeSpent
	}
	return total
}

// EnsureMaps initializes the aggregate's maps after a fresh load or create.
func (p *Progress) EnsureMaps() {
	if p.LessonProgress == nil {
		p.LessonProgress = make(map[string]*LessonState)
	}
	if p.QuizScores == nil {
		p.QuizScores = make(map[string]*QuizScoreState)
	}
}

func (p *Progress) QuizState(quizID string) *QuizScoreState {
	p.EnsureMaps()
	state, ok := p.QuizScores[quizID]
	if !ok {
		state = &QuizScoreState{}
		p.QuizScores[quizID] = state
	}
	return state
}
