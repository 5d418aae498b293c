package controller

import (
	"lms_backend/internal/repository"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
	EnrollmentRepo    *repository.EnrollmentRepository
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService, enrollmentRepo *repository.EnrollmentRepository) *EnrollmentController {
	return &EnrollmentController{
		EnrollmentService: enrollmentService,
		EnrollmentRepo:    enrollmentRepo,
	}
}

// Enroll godoc
// @Summary Enroll in a course
// @Description Explicitly enrolls the caller; idempotent for an existing enrollment
// @Tags enrollments
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "course id"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Failure 403 {object} util.Response "course not published"
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	enrollment, err := c.EnrollmentService.Enroll(claims.UserID, courseID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, enrollment)
}

// MyEnrollments godoc
// @Summary List the caller's enrollments
// @Tags enrollments
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/enrollments [get]
func (c *EnrollmentController) MyEnrollments(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	enrollments, err := c.EnrollmentRepo.FindByUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"enrollments": enrollments})
}
