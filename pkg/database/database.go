package database

import (
	"fmt"
	"log"

	"lms_backend/internal/config"
	"lms_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Enrollment{},
		&model.Progress{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedSampleCourse(db)

	return db, nil
}

// seedSampleCourse inserts one free demo course on an empty database so a
// fresh install has content to walk through.
func seedSampleCourse(db *gorm.DB) {
	var count int64
	db.Model(&model.Course{}).Count(&count)
	if count > 0 {
		return
	}

	course := &model.Course{
		Title:       "Getting Started with Go",
		Description: "A short introductory course used to exercise the progress and assessment engine.",
		Price:       0,
		IsPublished: true,
		Sections: model.Sections{
			{
				ID:               "sec-basics",
				Title:            "Language Basics",
				Order:            1,
				CompletionPolicy: model.AllLessonsPolicy,
				Lessons: []model.Lesson{
					{ID: "lesson-hello", Title: "Hello, World", Order: 1, Duration: 420},
					{ID: "lesson-types", Title: "Types and Variables", Order: 2, Duration: 660,
						Quiz: &model.Quiz{
							ID:    "quiz-types",
							Title: "Types Check",
							Questions: []model.Question{
								{
									ID: "q-types-1", Type: model.MultipleChoice, Text: "Which keyword declares a variable?",
									Points:        1,
									Options:       []string{"var", "let", "dim", "def"},
									CorrectOption: "var",
								},
							},
							Settings: model.QuizSettings{PassingScore: 60, MaxAttempts: 3, ShowCorrectAnswers: true},
						}},
				},
				ModuleQuiz: &model.Quiz{
					ID:       "quiz-basics",
					Title:    "Basics Module Quiz",
					Settings: model.QuizSettings{PassingScore: 70, MaxAttempts: 3},
					// no authored questions: resolved to a synthesized
					// template at read time
				},
			},
			{
				ID:               "sec-flow",
				Title:            "Control Flow",
				Order:            2,
				CompletionPolicy: model.AllLessonsPolicy,
				Lessons: []model.Lesson{
					{ID: "lesson-if", Title: "Conditionals", Order: 1, Duration: 540},
					{ID: "lesson-loops", Title: "Loops", Order: 2, Duration: 600},
				},
			},
		},
		FinalAssessment: &model.Quiz{
			ID:    "quiz-final",
			Title: "Final Assessment",
			Questions: []model.Question{
				{
					ID: "q-final-1", Type: model.TrueFalse, Text: "Go has a while keyword.",
					Points:      2,
					CorrectBool: boolPtr(false),
				},
				{
					ID: "q-final-2", Type: model.FillBlank, Text: "The entry point of a Go program is the ____ function.",
					Points:          2,
					AcceptedAnswers: []string{"main"},
				},
			},
			Settings: model.QuizSettings{PassingScore: 70, MaxAttempts: 2, TimeLimit: 30},
		},
	}

	if err := db.Create(course).Error; err != nil {
		log.Printf("sample course seed failed: %v", err)
	}
}

func boolPtr(b bool) *bool { return &b }
