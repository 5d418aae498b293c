package controller

import (
	"strconv"

	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// ListCourses godoc
// @Summary List published courses
// @Tags courses
// @Produce  json
// @Param   page query int false "page number" default(1)
// @Param   limit query int false "page size" default(20)
// @Success 200 {object} util.Response{data=object}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(util.DefaultPageSize)))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > util.MaxPageSize {
		limit = util.DefaultPageSize
	}

	courses, total, err := c.CourseService.ListCourses(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"courses": courses,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// GetCourse godoc
// @Summary Course content tree
// @Description Returns the full section and lesson tree with answer keys stripped
// @Tags courses
// @Produce  json
// @Param   id path int true "course id"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	course, err := c.CourseService.GetCourse(id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, course)
}
