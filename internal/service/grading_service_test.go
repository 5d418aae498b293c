package service

import (
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeMultipleChoice(t *testing.T) {
	g := NewGradingService()
	questions := []model.Question{
		{ID: "q1", Type: model.MultipleChoice, Points: 10, CorrectOption: "b"},
	}

	result, err := g.Grade("quiz", questions, []SubmittedAnswer{
		{QuestionID: "q1", Answer: rawAnswer(t, "b")},
	}, GradeOptions{PassingScore: 70})
	require.NoError(t, err)
	assert.True(t, result.Results[0].Correct)
	assert.Equal(t, 10, result.Summary.TotalPoints)
	assert.Equal(t, 100, result.Summary.Percentage)
	assert.True(t, result.Summary.Passed)

	result, err = g.Grade("quiz", questions, []SubmittedAnswer{
		{QuestionID: "q1", Answer: rawAnswer(t, "a")},
	}, GradeOptions{PassingScore: 70})
	require.NoError(t, err)
	assert.False(t, result.Results[0].Correct)
	assert.Equal(t, 0, result.Summary.TotalPoints)
	assert.False(t, result.Summary.Passed)
}

func TestGradeTrueFalse(t *testing.T) {
	g := NewGradingService()
	questions := []model.Question{
		{ID: "q1", Type: model.TrueFalse, Points: 5, CorrectBool: boolPtr(false)},
	}

	result, err := g.Grade("quiz", questions, []SubmittedAnswer{
		{QuestionID: "q1", Answer: rawAnswer(t, false)},
	}, GradeOptions{PassingScore: 50})
	require.NoError(t, err)
	assert.True(t, result.Results[0].Correct)
	assert.Equal(t, 5, result.Results[0].PointsAwarded)
}

func TestGradeMultipleSelectAllOrNothing(t *testing.T) {
	g := NewGradingService()
	questions := []model.Question{
		{ID: "q1", Type: model.MultipleSelect, Points: 10, CorrectOptions: []string{"a", "c"}},
	}

	cases := []struct {
		name     string
		selected []string
		points   int
	}{
		{"exact match", []string{"a", "c"}, 10},
		{"order does not matter", []string{"c", "a"}, 10},
		{"subset earns nothing", []string{"a"}, 0},
		{"superset earns nothing", []string{"a", "b", "c"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := g.Grade("quiz", questions, []SubmittedAnswer{
				{QuestionID: "q1", Answer: rawAnswer(t, tc.selected)},
			}, GradeOptions{PassingScore: 50})
			require.NoError(t, err)
			assert.Equal(t, tc.points, result.Results[0].PointsAwarded)
		})
	}
}

func TestGradeFillBlankNormalizes(t *testing.T) {
	g := NewGradingService()
	questions := []model.Question{
		{ID: "q1", Type: model.FillBlank, Points: 10, AcceptedAnswers: []string{"Inner", "inner join"}},
	}

	for _, answer := range []string{"inner", "  INNER  ", "Inner Join"} {
		result, err := g.Grade("quiz", questions, []SubmittedAnswer{
			{QuestionID: "q1", Answer: rawAnswer(t, answer)},
		}, GradeOptions{PassingScore: 50})
		require.NoError(t, err)
		assert.True(t, result.Results[0].Correct, "answer %q should match", answer)
	}

	result, err := g.Grade("quiz", questions, []SubmittedAnswer{
		{QuestionID: "q1", Answer: rawAnswer(t, "outer")},
	}, GradeOptions{PassingScore: 50})
	require.NoError(t, err)
	assert.False(t, result.Results[0].Correct)
}

func TestGradeEssayRequiresManualReview(t *testing.T) {
	g := NewGradingService()
	questions := []model.Question{
		{ID: "q1", Type: model.Essay, Points: 20},
	}

	result, err := g.Grade("quiz", questions, []SubmittedAnswer{
		{QuestionID: "q1", Answer: rawAnswer(t, "my essay text")},
	}, GradeOptions{PassingScore: 50})
	require.NoError(t, err)
	assert.True(t, result.Results[0].RequiresManualReview)
	assert.Equal(t, 0, result.Results[0].PointsAwarded)
	assert.True(t, result.Summary.RequiresManualReview)
}

func TestGradeCodePerTestCase(t *testing.T) {
	g := NewGradingService()
	questions := []model.Question{
		{
			ID:     "q1",
			Type:   model.Code,
			Points: 99, // ignored: test case points decide the maximum
			TestCases: []model.TestCase{
				{Input: "1 2", Expected: "3", Points: 4},
				{Input: "2 2", Expected: "4", Points: 4},
				{Input: "0 0", Expected: "0", Points: 2},
			},
		},
	}
	assert.Equal(t, 10, questions[0].MaxPoints())

	result, err := g.Grade("quiz", questions, []SubmittedAnswer{
		{QuestionID: "q1", Answer: rawAnswer(t, []string{"3", "5", "0"})},
	}, GradeOptions{PassingScore: 50})
	require.NoError(t, err)
	assert.Equal(t, 6, result.Results[0].PointsAwarded)
	assert.False(t, result.Results[0].Correct)
	assert.Equal(t, 60, result.Summary.Percentage)
}

func TestGradeCodeWithoutTestCases(t *testing.T) {
	g := NewGradingService()
	questions := []model.Question{
		{ID: "q1", Type: model.Code, Points: 10},
	}

	result, err := g.Grade("quiz", questions, []SubmittedAnswer{
		{QuestionID: "q1", Answer: rawAnswer(t, []string{"whatever"})},
	}, GradeOptions{PassingScore: 50})
	require.NoError(t, err)
	assert.True(t, result.Results[0].RequiresManualReview)
	assert.Equal(t, 0, result.Results[0].PointsAwarded)
}

func TestGradeMatchingProportional(t *testing.T) {
	g := NewGradingService()
	questions := []model.Question{
		{
			ID:     "q1",
			Type:   model.Matching,
			Points: 10,
			Pairs: []model.MatchPair{
				{Left: "a", Right: "1"},
				{Left: "b", Right: "2"},
				{Left: "c", Right: "3"},
			},
		},
	}

	result, err := g.Grade("quiz", questions, []SubmittedAnswer{
		{QuestionID: "q1", Answer: rawAnswer(t, map[string]string{"a": "1", "b": "2", "c": "9"})},
	}, GradeOptions{PassingScore: 50})
	require.NoError(t, err)
	// 2 of 3 pairs: round(10 * 2/3) = 7
	assert.Equal(t, 7, result.Results[0].PointsAwarded)
	assert.False(t, result.Results[0].Correct)

	result, err = g.Grade("quiz", questions, []SubmittedAnswer{
		{QuestionID: "q1", Answer: rawAnswer(t, map[string]string{"a": "1", "b": "2", "c": "3"})},
	}, GradeOptions{PassingScore: 50})
	require.NoError(t, err)
	assert.Equal(t, 10, result.Results[0].PointsAwarded)
	assert.True(t, result.Results[0].Correct)
}

func TestGradeMixedQuiz(t *testing.T) {
	g := NewGradingService()
	questions := []model.Question{
		{ID: "q1", Type: model.MultipleChoice, Points: 10, CorrectOption: "b"},
		{ID: "q2", Type: model.TrueFalse, Points: 5, CorrectBool: boolPtr(true)},
		{ID: "q3", Type: model.FillBlank, Points: 5, AcceptedAnswers: []string{"go"}},
	}
	answers := []SubmittedAnswer{
		{QuestionID: "q1", Answer: rawAnswer(t, "b")},
		{QuestionID: "q2", Answer: rawAnswer(t, false)},
		{QuestionID: "q3", Answer: rawAnswer(t, " GO ")},
	}

	result, err := g.Grade("quiz", questions, answers, GradeOptions{PassingScore: 70})
	require.NoError(t, err)
	assert.Equal(t, 15, result.Summary.TotalPoints)
	assert.Equal(t, 20, result.Summary.MaxPossiblePoints)
	assert.Equal(t, 75, result.Summary.Percentage)
	assert.True(t, result.Summary.Passed)
	assert.Equal(t, 2, result.Summary.CorrectAnswers)
	assert.Equal(t, "C", result.Summary.LetterGrade)
	assert.Equal(t, "satisfactory", result.Summary.Performance)
}

func TestGradeHalfRightFailsAtSeventy(t *testing.T) {
	g := NewGradingService()
	questions := []model.Question{
		{ID: "q1", Type: model.MultipleChoice, Points: 1, CorrectOption: "a"},
		{ID: "q2", Type: model.TrueFalse, Points: 1, CorrectBool: boolPtr(true)},
	}

	result, err := g.Grade("quiz", questions, []SubmittedAnswer{
		{QuestionID: "q1", Answer: rawAnswer(t, "a")},
		{QuestionID: "q2", Answer: rawAnswer(t, false)},
	}, GradeOptions{PassingScore: 70})
	require.NoError(t, err)
	assert.Equal(t, 50, result.Summary.Percentage)
	assert.False(t, result.Summary.Passed)
}

func TestGradeIsDeterministic(t *testing.T) {
	g := NewGradingService()
	course := testCourse()
	quiz := course.Sections[0].Lessons[0].Quiz
	answers := []SubmittedAnswer{
		{QuestionID: "q1", Answer: rawAnswer(t, "WHERE")},
	}

	first, err := g.Grade(quiz.ID, quiz.Questions, answers, GradeOptions{PassingScore: 70, ShowCorrectAnswers: true})
	require.NoError(t, err)
	second, err := g.Grade(quiz.ID, quiz.Questions, answers, GradeOptions{PassingScore: 70, ShowCorrectAnswers: true})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGradeShowCorrectAnswers(t *testing.T) {
	g := NewGradingService()
	questions := []model.Question{
		{ID: "q1", Type: model.MultipleChoice, Points: 10, CorrectOption: "b", Explanation: "b is right"},
	}
	answers := []SubmittedAnswer{{QuestionID: "q1", Answer: rawAnswer(t, "a")}}

	shown, err := g.Grade("quiz", questions, answers, GradeOptions{PassingScore: 50, ShowCorrectAnswers: true})
	require.NoError(t, err)
	assert.Equal(t, "b", shown.Results[0].CorrectAnswer)
	assert.Equal(t, "b is right", shown.Results[0].Explanation)

	hidden, err := g.Grade("quiz", questions, answers, GradeOptions{PassingScore: 50})
	require.NoError(t, err)
	assert.Nil(t, hidden.Results[0].CorrectAnswer)
	assert.Empty(t, hidden.Results[0].Explanation)
}

func TestGradeZeroPointQuizRejected(t *testing.T) {
	g := NewGradingService()
	questions := []model.Question{
		{ID: "q1", Type: model.MultipleChoice, Points: 0, CorrectOption: "a"},
	}

	_, err := g.Grade("quiz", questions, []SubmittedAnswer{
		{QuestionID: "q1", Answer: rawAnswer(t, "a")},
	}, GradeOptions{PassingScore: 50})
	var malformed *util.MalformedQuizError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "quiz", malformed.QuizID)
}

func TestLetterGradeBoundaries(t *testing.T) {
	cases := map[int]string{100: "A", 90: "A", 89: "B", 80: "B", 79: "C", 70: "C", 69: "D", 60: "D", 59: "F", 0: "F"}
	for pct, want := range cases {
		assert.Equal(t, want, letterGrade(pct), "percentage %d", pct)
	}
}
