package repository

import (
	"testing"

	"lms_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveQuizSources(t *testing.T) {
	course := &model.Course{
		Sections: model.Sections{
			{
				ID: "s1",
				Lessons: []model.Lesson{
					{
						ID: "l1",
						Quiz: &model.Quiz{
							ID: "authored",
							Questions: []model.Question{
								{ID: "q1", Type: model.MultipleChoice, Points: 10, CorrectOption: "a"},
							},
							Settings: model.QuizSettings{PassingScore: 80, MaxAttempts: 5},
						},
					},
				},
				ModuleQuiz: &model.Quiz{
					ID:       "declared-empty",
					Settings: model.QuizSettings{},
				},
			},
		},
	}

	resolveQuizSources(course)

	authored := course.Sections[0].Lessons[0].Quiz
	assert.Equal(t, model.Authored, authored.Origin)
	assert.Len(t, authored.Questions, 1, "authored questions are never replaced")
	assert.Equal(t, 80, authored.Settings.PassingScore)

	synthesized := course.Sections[0].ModuleQuiz
	assert.Equal(t, model.Synthesized, synthesized.Origin)
	require.Len(t, synthesized.Questions, 2)
	assert.Equal(t, "declared-empty-q1", synthesized.Questions[0].ID)
	assert.Positive(t, synthesized.MaxPoints(), "synthesized quizzes must be gradeable")
	assert.Equal(t, 50, synthesized.Settings.PassingScore)
	assert.Equal(t, 3, synthesized.Settings.MaxAttempts)
}

func TestResolveQuizSourcesKeepsDeclaredSettings(t *testing.T) {
	course := &model.Course{
		FinalAssessment: &model.Quiz{
			ID:       "final",
			Settings: model.QuizSettings{PassingScore: 90, MaxAttempts: 1},
		},
	}

	resolveQuizSources(course)

	assert.Equal(t, model.Synthesized, course.FinalAssessment.Origin)
	assert.Equal(t, 90, course.FinalAssessment.Settings.PassingScore, "declared settings survive synthesis")
	assert.Equal(t, 1, course.FinalAssessment.Settings.MaxAttempts)
}
