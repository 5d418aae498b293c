package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// GetQuizzes godoc
// @Summary List quizzes for a course
// @Description All lesson, module and final quizzes with the caller's attempt state. Accessing a free course auto-enrolls the caller.
// @Tags quizzes
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "course id"
// @Success 200 {object} util.Response{data=service.QuizListResponse}
// @Failure 403 {object} util.Response "enrollment required"
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/quizzes [get]
func (c *QuizController) GetQuizzes(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.QuizService.GetQuizzes(claims.UserID, courseID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// SubmitQuiz godoc
// @Summary Submit a quiz attempt
// @Description Grades the submission, appends it to the attempt ledger and returns the graded result
// @Tags quizzes
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "course id"
// @Param   quizId path string true "quiz id"
// @Param   body body service.SubmitQuizRequest true "answers"
// @Success 200 {object} util.Response{data=service.SubmitQuizResponse}
// @Failure 400 {object} util.Response "unanswered questions"
// @Failure 403 {object} util.Response "attempts exhausted or enrollment required"
// @Failure 404 {object} util.Response
// @Failure 422 {object} util.Response "quiz cannot be graded"
// @Failure 500 {object} util.Response "attempt could not be recorded"
// @Router /api/courses/{id}/quizzes/{quizId}/submit [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	quizID := ctx.Param("quizId")

	var req service.SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.QuizService.SubmitQuiz(claims.UserID, courseID, quizID, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// GetAttempts godoc
// @Summary Attempt history for a quiz
// @Tags quizzes
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "course id"
// @Param   quizId path string true "quiz id"
// @Success 200 {object} util.Response{data=service.AttemptInfo}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/quizzes/{quizId}/attempts [get]
func (c *QuizController) GetAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	quizID := ctx.Param("quizId")

	info, err := c.QuizService.GetAttemptInfo(claims.UserID, courseID, quizID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, info)
}
