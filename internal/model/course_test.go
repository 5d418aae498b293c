package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walkableCourse() *Course {
	return &Course{
		Title: "Walkable",
		Sections: Sections{
			{
				ID:    "s1",
				Title: "One",
				Lessons: []Lesson{
					{ID: "l1", Quiz: &Quiz{ID: "q-l1"}},
					{ID: "l2"},
				},
				ModuleQuiz: &Quiz{ID: "q-m1"},
			},
			{
				ID:      "s2",
				Title:   "Two",
				Lessons: []Lesson{{ID: "l3", Quiz: &Quiz{ID: "q-l3"}}},
			},
		},
		FinalAssessment: &Quiz{ID: "q-final"},
	}
}

func TestWalkQuizzesOrder(t *testing.T) {
	course := walkableCourse()

	var visited []string
	var kinds []QuizKind
	course.WalkQuizzes(func(ref QuizRef) bool {
		visited = append(visited, ref.Quiz.ID)
		kinds = append(kinds, ref.Kind)
		return true
	})

	assert.Equal(t, []string{"q-l1", "q-m1", "q-l3", "q-final"}, visited)
	assert.Equal(t, []QuizKind{LessonQuiz, ModuleQuiz, LessonQuiz, FinalQuiz}, kinds)
}

func TestWalkQuizzesEarlyStop(t *testing.T) {
	course := walkableCourse()

	count := 0
	course.WalkQuizzes(func(QuizRef) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}

func TestTotalLessonsAndIDs(t *testing.T) {
	course := walkableCourse()
	assert.Equal(t, 3, course.TotalLessons())

	ids := course.LessonIDs()
	assert.Len(t, ids, 3)
	_, ok := ids["l2"]
	assert.True(t, ok)
}

func TestFindLesson(t *testing.T) {
	course := walkableCourse()

	sec, lesson := course.FindLesson("l3")
	require.NotNil(t, lesson)
	assert.Equal(t, "s2", sec.ID)

	sec, lesson = course.FindLesson("missing")
	assert.Nil(t, sec)
	assert.Nil(t, lesson)
}

func TestFindQuiz(t *testing.T) {
	course := walkableCourse()

	ref := course.FindQuiz("q-m1")
	require.NotNil(t, ref)
	assert.Equal(t, ModuleQuiz, ref.Kind)
	assert.Equal(t, "s1", ref.SectionID)

	assert.Nil(t, course.FindQuiz("missing"))
}

func TestQuestionMaxPoints(t *testing.T) {
	plain := Question{Type: MultipleChoice, Points: 10}
	assert.Equal(t, 10, plain.MaxPoints())

	code := Question{
		Type:   Code,
		Points: 99,
		TestCases: []TestCase{
			{Expected: "1", Points: 3},
			{Expected: "2", Points: 4},
		},
	}
	assert.Equal(t, 7, code.MaxPoints(), "test case points override the question's own points")

	codeNoTests := Question{Type: Code, Points: 12}
	assert.Equal(t, 12, codeNoTests.MaxPoints())
}

func TestQuizSanitizedStripsKeys(t *testing.T) {
	quiz := &Quiz{
		ID: "q",
		Questions: []Question{
			{
				ID:              "q1",
				Type:            MultipleChoice,
				Options:         []string{"a", "b"},
				CorrectOption:   "b",
				Explanation:     "because",
				AcceptedAnswers: []string{"b"},
				TestCases:       []TestCase{{Input: "in", Expected: "out", Points: 1}},
				Pairs:           []MatchPair{{Left: "l", Right: "r"}},
			},
		},
	}

	clean := quiz.Sanitized()
	q := clean.Questions[0]
	assert.Empty(t, q.CorrectOption)
	assert.Nil(t, q.CorrectBool)
	assert.Nil(t, q.AcceptedAnswers)
	assert.Nil(t, q.Pairs)
	assert.Empty(t, q.Explanation)
	assert.Empty(t, q.TestCases[0].Expected)
	assert.Equal(t, "in", q.TestCases[0].Input, "prompts stay visible")
	assert.Equal(t, []string{"a", "b"}, q.Options, "choices stay visible")

	// the original is untouched
	assert.Equal(t, "b", quiz.Questions[0].CorrectOption)
}
