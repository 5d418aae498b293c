package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// UpdateLessonProgress godoc
// @Summary Record a lesson watch event
// @Description Merges time spent, position, interactions and completion into the learner's progress
// @Tags progress
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "course id"
// @Param   lessonId path string true "lesson id"
// @Param   body body service.LessonProgressRequest true "watch event"
// @Success 200 {object} util.Response{data=service.LessonProgressResult}
// @Failure 403 {object} util.Response "enrollment required"
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/lessons/{lessonId}/progress [put]
func (c *ProgressController) UpdateLessonProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	lessonID := ctx.Param("lessonId")

	var req service.LessonProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ProgressService.UpdateLessonProgress(claims.UserID, courseID, lessonID, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// CompleteLesson godoc
// @Summary Mark a lesson complete
// @Description Idempotent; completing a completed lesson changes nothing
// @Tags progress
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "course id"
// @Param   lessonId path string true "lesson id"
// @Success 200 {object} util.Response{data=service.LessonProgressResult}
// @Failure 403 {object} util.Response "enrollment required"
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/lessons/{lessonId}/complete [post]
func (c *ProgressController) CompleteLesson(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	lessonID := ctx.Param("lessonId")

	result, err := c.ProgressService.CompleteLesson(claims.UserID, courseID, lessonID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetProgress godoc
// @Summary Course progress overview
// @Description Per-section completion derived from the learner's progress record
// @Tags progress
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "course id"
// @Success 200 {object} util.Response{data=service.ProgressOverview}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	overview, err := c.ProgressService.GetCourseProgress(claims.UserID, courseID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// GetGrades godoc
// @Summary Course grade report
// @Description Best percentage per quiz plus overall grade; zeroed for a learner with no progress
// @Tags progress
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "course id"
// @Success 200 {object} util.Response{data=service.GradeReport}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/grades [get]
func (c *ProgressController) GetGrades(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	report, err := c.ProgressService.GetCourseGrades(claims.UserID, courseID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
