package model

// QuestionType tags the variant of an authored question. Grading switches
// exhaustively on this tag; unknown types are never silently scored.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	TrueFalse      QuestionType = "true-false"
	MultipleSelect QuestionType = "multiple-select"
	FillBlank      QuestionType = "fill-blank"
	Essay          QuestionType = "essay"
	Code           QuestionType = "code"
	Matching       QuestionType = "matching"
	DragDrop       QuestionType = "drag-drop"
)

type QuizKind string

const (
	LessonQuiz QuizKind = "lesson"
	ModuleQuiz QuizKind = "module"
	FinalQuiz  QuizKind = "final"
)

// QuizOrigin records whether a quiz carries authored questions or was
// resolved to a synthesized template at read time.
type QuizOrigin string

const (
	Authored    QuizOrigin = "authored"
	Synthesized QuizOrigin = "synthesized"
)

type CompletionPolicy string

const (
	AllLessonsPolicy CompletionPolicy = "all_lessons"
	PercentagePolicy CompletionPolicy = "percentage"
	TimePolicy       CompletionPolicy = "time"
	AssessmentPolicy CompletionPolicy = "assessment"
)

// swagger:model Course
type Course struct {
	BaseModel
	Title           string   `gorm:"size:255;not null" json:"title"`
	Description     string   `gorm:"type:text" json:"description"`
	Price           float64  `gorm:"default:0" json:"price"`
	IsPublished     bool     `gorm:"default:false" json:"isPublished"`
	Sections        Sections `gorm:"type:json;serializer:json" json:"sections"`
	FinalAssessment *Quiz    `gorm:"type:json;serializer:json" json:"finalAssessment,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

type Sections []Section

type Section struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Order            int              `json:"order"`
	CompletionPolicy CompletionPolicy `json:"completionPolicy,omitempty"`
	Lessons          []Lesson         `json:"lessons"`
	ModuleQuiz       *Quiz            `json:"moduleQuiz,omitempty"`
}

type Lesson struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Order      int         `json:"order"`
	Duration   int         `json:"duration,omitempty"` // seconds of video content
	Quiz       *Quiz       `json:"quiz,omitempty"`
	Assignment *Assignment `json:"assignment,omitempty"`
}

type Assignment struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDays     int    `json:"dueDays,omitempty"`
}

type QuizSettings struct {
	PassingScore int `json:"passingScore"`
	MaxAttempts  int `json:"maxAttempts"`
	// TimeLimit is minutes, recorded for the client only; the server never
	// enforces it.
	TimeLimit          int  `json:"timeLimit"`
	ShowCorrectAnswers bool `json:"showCorrectAnswers"`
}

type Quiz struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Questions   []Question   `json:"questions"`
	Settings    QuizSettings `json:"settings"`
	Origin      QuizOrigin   `json:"origin,omitempty"`
}

// Question is the tagged variant over all supported types. Only the answer
// key fields of the tagged type are populated.
type Question struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	Text        string       `json:"text"`
	Points      int          `json:"points"`
	Explanation string       `json:"explanation,omitempty"`

	Options         []string    `json:"options,omitempty"`         // multiple-choice, multiple-select
	CorrectOption   string      `json:"correctOption,omitempty"`   // multiple-choice
	CorrectBool     *bool       `json:"correctBool,omitempty"`     // true-false
	CorrectOptions  []string    `json:"correctOptions,omitempty"`  // multiple-select
	AcceptedAnswers []string    `json:"acceptedAnswers,omitempty"` // fill-blank
	TestCases       []TestCase  `json:"testCases,omitempty"`       // code
	Pairs           []MatchPair `json:"pairs,omitempty"`           // matching, drag-drop
}

type TestCase struct {
	Input    string `json:"input,omitempty"`
	Expected string `json:"expected"`
	Points   int    `json:"points"`
}

type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// MaxPoints is the maximum a question can award. Code questions with test
// cases are worth the sum of their test case points, everything else is
// worth the question's own points.
func (q *Question) MaxPoints() int {
	if q.Type == Code && len(q.TestCases) > 0 {
		total := 0
		for _, tc := range q.TestCases {
			total += tc.Points
		}
		return total
	}
	return q.Points
}

func (q *Quiz) MaxPoints() int {
	total := 0
	for i := range q.Questions {
		total += q.Questions[i].MaxPoints()
	}
	return total
}

// Sanitized returns a copy with all answer key material removed, for
// delivery to learners who have not earned answer visibility.
func (q *Quiz) Sanitized() *Quiz {
	out := *q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.CorrectOption = ""
		question.CorrectBool = nil
		question.CorrectOptions = nil
		question.AcceptedAnswers = nil
		question.Pairs = nil
		for j := range question.TestCases {
			question.TestCases[j].Expected = ""
		}
		question.Explanation = ""
		out.Questions[i] = question
	}
	return &out
}

// QuizRef is one quiz discovered during a course walk, with enough context
// for grade reporting.
type QuizRef struct {
	Quiz         *Quiz
	Kind         QuizKind
	SectionID    string
	SectionTitle string
}

// WalkQuizzes visits every quiz in the course: lesson quizzes and module
// quizzes in section order, then the final assessment. The visit func
// returns false to stop the walk.
func (c *Course) WalkQuizzes(visit func(ref QuizRef) bool) {
	for si := range c.Sections {
		sec := &c.Sections[si]
		for li := range sec.Lessons {
			if quiz := sec.Lessons[li].Quiz; quiz != nil {
				if !visit(QuizRef{Quiz: quiz, Kind: LessonQuiz, SectionID: sec.ID, SectionTitle: sec.Title}) {
					return
				}
			}
		}
		if sec.ModuleQuiz != nil {
			if !visit(QuizRef{Quiz: sec.ModuleQuiz, Kind: ModuleQuiz, SectionID: sec.ID, SectionTitle: sec.Title}) {
				return
			}
		}
	}
	if c.FinalAssessment != nil {
		visit(QuizRef{Quiz: c.FinalAssessment, Kind: FinalQuiz, SectionTitle: c.Title})
	}
}

// WalkLessons visits every lesson in section order.
func (c *Course) WalkLessons(visit func(sec *Section, lesson *Lesson) bool) {
	for si := range c.Sections {
		sec := &c.Sections[si]
		for li := range sec.Lessons {
			if !visit(sec, &sec.Lessons[li]) {
				return
			}
		}
	}
}

func (c *Course) TotalLessons() int {
	count := 0
	c.WalkLessons(func(*Section, *Lesson) bool {
		count++
		return true
	})
	return count
}

func (c *Course) LessonIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	c.WalkLessons(func(_ *Section, lesson *Lesson) bool {
		ids[lesson.ID] = struct{}{}
		return true
	})
	return ids
}

// FindLesson returns the lesson and its section, or nil when the id is not
// part of this course.
func (c *Course) FindLesson(lessonID string) (*Section, *Lesson) {
	var foundSec *Section
	var foundLesson *Lesson
	c.WalkLessons(func(sec *Section, lesson *Lesson) bool {
		if lesson.ID == lessonID {
			foundSec, foundLesson = sec, lesson
			return false
		}
		return true
	})
	return foundSec, foundLesson
}

func (c *Course) FindQuiz(quizID string) *QuizRef {
	var found *QuizRef
	c.WalkQuizzes(func(ref QuizRef) bool {
		if ref.Quiz.ID == quizID {
			r := ref
			found = &r
			return false
		}
		return true
	})
	return found
}
