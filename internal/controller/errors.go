package controller

import (
	"errors"
	"net/http"
	"strconv"

	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondServiceError maps service-layer errors onto HTTP responses in one
// place so every handler reports the same shape for the same failure.
func respondServiceError(ctx *gin.Context, err error) {
	var validation *util.ValidationError
	var exhausted *util.AttemptsExhaustedError
	var enrollment *util.EnrollmentRequiredError
	var malformed *util.MalformedQuizError
	var persistence *util.PersistenceError

	switch {
	case errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrQuizNotFound),
		errors.Is(err, util.ErrLessonNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrCourseNotPublished):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.As(err, &validation):
		util.ErrorWithData(ctx, http.StatusBadRequest, validation.Message, gin.H{
			"missingQuestions": validation.Missing,
		})
	case errors.As(err, &exhausted):
		util.ErrorWithData(ctx, http.StatusForbidden, exhausted.Error(), gin.H{
			"currentAttempts": exhausted.CurrentAttempts,
			"maxAttempts":     exhausted.MaxAttempts,
			"bestScore":       exhausted.BestScore,
		})
	case errors.As(err, &enrollment):
		util.ErrorWithData(ctx, http.StatusForbidden, enrollment.Error(), gin.H{
			"courseId":           enrollment.CourseID,
			"enrollmentRequired": true,
		})
	case errors.As(err, &malformed):
		util.Error(ctx, http.StatusUnprocessableEntity, malformed.Error())
	case errors.As(err, &persistence):
		// the caller must know the operation did not take effect, e.g. a
		// graded submission that was never recorded
		logger.Log.Error("persistence failure", zap.String("op", persistence.Op), zap.Error(persistence.Err))
		util.Error(ctx, http.StatusInternalServerError, persistence.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

func parseUintParam(ctx *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}
