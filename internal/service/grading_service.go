package service

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"lms_backend/internal/model"
	"lms_backend/internal/util"
)

// GradingService scores submitted answers against authored questions. It is
// a pure function of its inputs: no persisted state is read or written here.
type GradingService struct{}

func NewGradingService() *GradingService {
	return &GradingService{}
}

type SubmittedAnswer struct {
	QuestionID string          `json:"questionId" binding:"required"`
	Answer     json.RawMessage `json:"answer"`
	TimeSpent  int             `json:"timeSpent,omitempty"`
	HintsUsed  int             `json:"hintsUsed,omitempty"`
	Confidence string          `json:"confidence,omitempty"`
}

type GradeOptions struct {
	PassingScore       int
	ShowCorrectAnswers bool
}

type GradeSummary struct {
	TotalPoints          int      `json:"totalPoints"`
	MaxPossiblePoints    int      `json:"maxPossiblePoints"`
	Percentage           int      `json:"percentage"`
	Passed               bool     `json:"passed"`
	CorrectAnswers       int      `json:"correctAnswers"`
	TotalQuestions       int      `json:"totalQuestions"`
	LetterGrade          string   `json:"letterGrade"`
	Performance          string   `json:"performance"`
	Feedback             string   `json:"feedback"`
	Suggestions          []string `json:"suggestions"`
	RequiresManualReview bool     `json:"requiresManualReview,omitempty"`
}

type GradeResult struct {
	Results []model.GradedAnswer `json:"results"`
	Summary GradeSummary         `json:"summary"`
}

// Grade assumes the caller already verified that every question is answered.
func (g *GradingService) Grade(quizID string, questions []model.Question, answers []SubmittedAnswer, opts GradeOptions) (*GradeResult, error) {
	maxPoints := 0
	for i := range questions {
		maxPoints += questions[i].MaxPoints()
	}
	if maxPoints == 0 {
		return nil, &util.MalformedQuizError{QuizID: quizID, Reason: "questions sum to zero points"}
	}

	byQuestion := make(map[string]*SubmittedAnswer, len(answers))
	for i := range answers {
		byQuestion[answers[i].QuestionID] = &answers[i]
	}

	result := &GradeResult{Results: make([]model.GradedAnswer, 0, len(questions))}
	totalPoints := 0
	correctCount := 0
	manual := false

	for i := range questions {
		q := &questions[i]
		graded := gradeQuestion(q, byQuestion[q.ID])
		if graded.RequiresManualReview {
			manual = true
		}
		if graded.Correct {
			correctCount++
		}
		totalPoints += graded.PointsAwarded
		if opts.ShowCorrectAnswers {
			graded.CorrectAnswer = answerKey(q)
			graded.Explanation = q.Explanation
		}
		result.Results = append(result.Results, graded)
	}

	percentage := int(math.Round(100 * float64(totalPoints) / float64(maxPoints)))
	passed := percentage >= opts.PassingScore

	result.Summary = GradeSummary{
		TotalPoints:          totalPoints,
		MaxPossiblePoints:    maxPoints,
		Percentage:           percentage,
		Passed:               passed,
		CorrectAnswers:       correctCount,
		TotalQuestions:       len(questions),
		LetterGrade:          letterGrade(percentage),
		Performance:          performanceTier(percentage),
		Feedback:             feedback(percentage, passed),
		Suggestions:          suggestions(percentage, passed),
		RequiresManualReview: manual,
	}
	return result, nil
}

func gradeQuestion(q *model.Question, sub *SubmittedAnswer) model.GradedAnswer {
	graded := model.GradedAnswer{
		QuestionID:     q.ID,
		PointsPossible: q.MaxPoints(),
	}
	if sub != nil {
		graded.TimeSpent = sub.TimeSpent
		graded.HintsUsed = sub.HintsUsed
		graded.Confidence = sub.Confidence
	}
	if sub == nil || len(sub.Answer) == 0 {
		return graded
	}

	switch q.Type {
	case model.MultipleChoice:
		var choice string
		if json.Unmarshal(sub.Answer, &choice) == nil && choice == q.CorrectOption {
			graded.Correct = true
			graded.PointsAwarded = q.Points
		}
	case model.TrueFalse:
		var value bool
		if q.CorrectBool != nil && json.Unmarshal(sub.Answer, &value) == nil && value == *q.CorrectBool {
			graded.Correct = true
			graded.PointsAwarded = q.Points
		}
	case model.MultipleSelect:
		// all-or-nothing: the submitted set must equal the key exactly.
		// Partial credit is a deliberate non-feature of the baseline policy.
		var selected []string
		if json.Unmarshal(sub.Answer, &selected) == nil && sameStringSet(selected, q.CorrectOptions) {
			graded.Correct = true
			graded.PointsAwarded = q.Points
		}
	case model.FillBlank:
		var text string
		if json.Unmarshal(sub.Answer, &text) == nil {
			normalized := strings.ToLower(strings.TrimSpace(text))
			for _, accepted := range q.AcceptedAnswers {
				if normalized == strings.ToLower(strings.TrimSpace(accepted)) {
					graded.Correct = true
					graded.PointsAwarded = q.Points
					break
				}
			}
		}
	case model.Essay:
		graded.RequiresManualReview = true
	case model.Code:
		if len(q.TestCases) == 0 {
			// nothing to score against; never silently award points
			graded.RequiresManualReview = true
			break
		}
		var outputs []string
		if json.Unmarshal(sub.Answer, &outputs) != nil {
			break
		}
		matched := 0
		for i, tc := range q.TestCases {
			if i < len(outputs) && strings.TrimSpace(outputs[i]) == strings.TrimSpace(tc.Expected) {
				graded.PointsAwarded += tc.Points
				matched++
			}
		}
		graded.Correct = matched == len(q.TestCases)
	case model.Matching, model.DragDrop:
		var mapping map[string]string
		if json.Unmarshal(sub.Answer, &mapping) != nil || len(q.Pairs) == 0 {
			break
		}
		matched := 0
		for _, pair := range q.Pairs {
			if mapping[pair.Left] == pair.Right {
				matched++
			}
		}
		graded.PointsAwarded = int(math.Round(float64(q.Points) * float64(matched) / float64(len(q.Pairs))))
		graded.Correct = matched == len(q.Pairs)
	}

	return graded
}

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func answerKey(q *model.Question) interface{} {
	switch q.Type {
	case model.MultipleChoice:
		return q.CorrectOption
	case model.TrueFalse:
		if q.CorrectBool != nil {
			return *q.CorrectBool
		}
	case model.MultipleSelect:
		return q.CorrectOptions
	case model.FillBlank:
		return q.AcceptedAnswers
	case model.Code:
		return q.TestCases
	case model.Matching, model.DragDrop:
		return q.Pairs
	}
	return nil
}

func letterGrade(percentage int) string {
	switch {
	case percentage >= 90:
		return "A"
	case percentage >= 80:
		return "B"
	case percentage >= 70:
		return "C"
	case percentage >= 60:
		return "D"
	default:
		return "F"
	}
}

func performanceTier(percentage int) string {
	switch {
	case percentage >= 90:
		return "excellent"
	case percentage >= 80:
		return "good"
	case percentage >= 70:
		return "satisfactory"
	case percentage >= 60:
		return "needs_improvement"
	default:
		return "unsatisfactory"
	}
}

func feedback(percentage int, passed bool) string {
	switch {
	case percentage >= 90:
		return "Outstanding work. You have mastered this material."
	case percentage >= 80:
		return "Good job. A quick review of the missed questions will get you to mastery."
	case passed:
		return "You passed. Review the explanations for the questions you missed."
	case percentage >= 50:
		return "Not quite there yet. Revisit the lessons in this module and try again."
	default:
		return "This material needs more work. Rewatch the lessons before your next attempt."
	}
}

func suggestions(percentage int, passed bool) []string {
	if percentage >= 90 {
		return []string{"Move on to the next module."}
	}
	out := []string{"Review the explanations for incorrect answers."}
	if !passed {
		out = append(out, "Rewatch the lessons covered by this quiz.", "Retake the quiz once you feel ready.")
	}
	return out
}
