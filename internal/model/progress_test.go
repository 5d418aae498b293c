package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLessonSetAddIdempotent(t *testing.T) {
	var set LessonSet

	assert.True(t, set.Add("l1"))
	assert.False(t, set.Add("l1"), "re-adding must not change the set")
	assert.True(t, set.Add("l2"))

	assert.Equal(t, LessonSet{"l1", "l2"}, set)
	assert.True(t, set.Has("l1"))
	assert.False(t, set.Has("l3"))
}

func TestQuizScoreStateRecord(t *testing.T) {
	state := &QuizScoreState{}

	state.Record(Attempt{ID: "a1", Score: 8, Percentage: 80, TimeSpent: 60}, 70)
	assert.Equal(t, 1, state.TotalAttempts)
	assert.Equal(t, 8, state.BestScore)
	assert.Equal(t, 80, state.BestPercentage)
	assert.True(t, state.Passed)

	// a worse retry never lowers the best and passed stays sticky
	state.Record(Attempt{ID: "a2", Score: 3, Percentage: 30, TimeSpent: 45}, 70)
	assert.Equal(t, 2, state.TotalAttempts)
	assert.Equal(t, 8, state.BestScore)
	assert.Equal(t, 80, state.BestPercentage)
	assert.True(t, state.Passed)

	assert.Equal(t, "a2", state.LastAttempt().ID)
	assert.Equal(t, "a1", state.BestAttempt().ID)
	assert.Equal(t, 105, state.TotalQuizTime())
}

func TestQuizScoreStateEmpty(t *testing.T) {
	state := &QuizScoreState{}
	assert.Nil(t, state.LastAttempt())
	assert.Nil(t, state.BestAttempt())
	assert.Zero(t, state.TotalQuizTime())
}

func TestProgressQuizState(t *testing.T) {
	p := &Progress{}

	state := p.QuizState("q1")
	assert.NotNil(t, state)
	assert.Same(t, state, p.QuizState("q1"))
}
