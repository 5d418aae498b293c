package service

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/pkg/keylock"

	"gorm.io/gorm"
)

// In-memory store fakes. GetOrCreate and Find hand out deep copies and
// Update writes a copy back, mirroring how rows move through gorm: a failed
// Update must leave the stored row untouched.

type fakeCourseStore struct {
	courses map[uint]*model.Course
}

func (f *fakeCourseStore) FindByID(id uint) (*model.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return course, nil
}

type progressKey struct {
	userID   uint
	courseID uint
}

type fakeProgressStore struct {
	mu         sync.Mutex
	rows       map[progressKey]*model.Progress
	failUpdate bool
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{rows: make(map[progressKey]*model.Progress)}
}

func cloneProgress(p *model.Progress) *model.Progress {
	raw, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	out := &model.Progress{}
	if err := json.Unmarshal(raw, out); err != nil {
		panic(err)
	}
	out.EnsureMaps()
	return out
}

func (f *fakeProgressStore) Find(userID, courseID uint) (*model.Progress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[progressKey{userID, courseID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneProgress(row), nil
}

func (f *fakeProgressStore) GetOrCreate(userID, courseID uint) (*model.Progress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := progressKey{userID, courseID}
	row, ok := f.rows[key]
	if !ok {
		row = &model.Progress{
			UserID:           userID,
			CourseID:         courseID,
			CompletedLessons: model.LessonSet{},
		}
		row.EnsureMaps()
		f.rows[key] = row
	}
	return cloneProgress(row), nil
}

func (f *fakeProgressStore) Update(p *model.Progress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate {
		return errors.New("storage offline")
	}
	f.rows[progressKey{p.UserID, p.CourseID}] = cloneProgress(p)
	return nil
}

type fakeEnrollmentStore struct {
	mu           sync.Mutex
	rows         map[progressKey]*model.Enrollment
	creates      int
	failProgress bool
}

func newFakeEnrollmentStore() *fakeEnrollmentStore {
	return &fakeEnrollmentStore{rows: make(map[progressKey]*model.Enrollment)}
}

func (f *fakeEnrollmentStore) FindByUserAndCourse(userID, courseID uint) (*model.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[progressKey{userID, courseID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *row
	return &out, nil
}

func (f *fakeEnrollmentStore) EnrollUser(e *model.Enrollment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := progressKey{e.UserID, e.CourseID}
	if _, ok := f.rows[key]; ok {
		return errors.New("Error 1062: Duplicate entry")
	}
	row := *e
	f.rows[key] = &row
	f.creates++
	return nil
}

func (f *fakeEnrollmentStore) UpdateProgress(userID, courseID uint, progress int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failProgress {
		return errors.New("storage offline")
	}
	row, ok := f.rows[progressKey{userID, courseID}]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.Progress = progress
	if progress >= 100 {
		row.Status = model.EnrollmentCompleted
	}
	return nil
}

func (f *fakeEnrollmentStore) TouchLastAccessed(userID, courseID uint) error {
	return nil
}

func rawAnswer(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal answer: %v", err)
	}
	return raw
}

func boolPtr(b bool) *bool { return &b }

// testCourse is a free published course with a lesson quiz, a module quiz
// and a final assessment spread over two sections.
func testCourse() *model.Course {
	return &model.Course{
		BaseModel:   model.BaseModel{ID: 1},
		Title:       "Intro to Databases",
		IsPublished: true,
		Sections: model.Sections{
			{
				ID:    "s1",
				Title: "Relational Basics",
				Lessons: []model.Lesson{
					{
						ID:    "l1",
						Title: "Tables and Rows",
						Quiz: &model.Quiz{
							ID:    "q-l1",
							Title: "Tables Check",
							Questions: []model.Question{
								{
									ID:            "q1",
									Type:          model.MultipleChoice,
									Text:          "Which clause filters rows?",
									Points:        10,
									Options:       []string{"SELECT", "WHERE", "ORDER BY"},
									CorrectOption: "WHERE",
								},
							},
							Settings: model.QuizSettings{PassingScore: 70, MaxAttempts: 3, ShowCorrectAnswers: true},
							Origin:   model.Authored,
						},
					},
					{ID: "l2", Title: "Keys"},
				},
				ModuleQuiz: &model.Quiz{
					ID:    "q-m1",
					Title: "Module One Quiz",
					Questions: []model.Question{
						{
							ID:          "q2",
							Type:        model.TrueFalse,
							Text:        "A primary key can be NULL.",
							Points:      5,
							CorrectBool: boolPtr(false),
						},
					},
					Settings: model.QuizSettings{PassingScore: 50},
					Origin:   model.Authored,
				},
			},
			{
				ID:      "s2",
				Title:   "Joins",
				Lessons: []model.Lesson{{ID: "l3", Title: "Inner Joins"}},
			},
		},
		FinalAssessment: &model.Quiz{
			ID:    "q-final",
			Title: "Final Assessment",
			Questions: []model.Question{
				{
					ID:              "q3",
					Type:            model.FillBlank,
					Text:            "The join returning only matching rows is an ____ join.",
					Points:          10,
					AcceptedAnswers: []string{"inner"},
				},
			},
			Settings: model.QuizSettings{PassingScore: 60, MaxAttempts: 2},
			Origin:   model.Authored,
		},
	}
}

type quizEnv struct {
	courses     *fakeCourseStore
	progresses  *fakeProgressStore
	enrollments *fakeEnrollmentStore
	enrollment  *EnrollmentService
	progress    *ProgressService
	quiz        *QuizService
}

func newQuizEnv(course *model.Course) *quizEnv {
	env := &quizEnv{
		courses:     &fakeCourseStore{courses: map[uint]*model.Course{course.ID: course}},
		progresses:  newFakeProgressStore(),
		enrollments: newFakeEnrollmentStore(),
	}
	locks := keylock.New()
	env.enrollment = NewEnrollmentService(env.enrollments, env.courses, locks)
	env.progress = NewProgressService(env.courses, env.enrollments, env.progresses, env.enrollment)
	env.quiz = NewQuizService(env.courses, env.progresses, NewGradingService(), env.enrollment, env.progress, locks)
	return env
}
