package controller

import (
	"errors"

	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LearningController struct {
	LearningService *service.LearningService
}

func NewLearningController(learningService *service.LearningService) *LearningController {
	return &LearningController{LearningService: learningService}
}

// @Summary 开始学习课时
// @Tags 学习
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/lessons/{lessonId}/start [post]
func (c *LearningController) StartLesson(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID := util.MustParseUint(ctx.Param("lessonId"))
	if err := c.LearningService.StartLesson(ctx.Request.Context(), user.UserID, lessonID); err != nil {
		c.renderLearningError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "lesson started"})
}

// @Summary 完成课时
// @Description 标记课时完成，课程内课时全部完成时自动结课
// @Tags 学习
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/lessons/{lessonId}/complete [post]
func (c *LearningController) CompleteLesson(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID := util.MustParseUint(ctx.Param("lessonId"))
	if err := c.LearningService.CompleteLesson(ctx.Request.Context(), user.UserID, lessonID); err != nil {
		c.renderLearningError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "lesson completed"})
}

// @Summary 提交测验成绩
// @Tags 学习
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "课时ID"
// @Success 201 {object} util.Response{data=model.QuizAttempt}
// @Router /api/lessons/{lessonId}/quiz [post]
func (c *LearningController) SubmitQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req struct {
		Score float64 `json:"score" binding:"min=0,max=100"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lessonID := util.MustParseUint(ctx.Param("lessonId"))
	attempt, err := c.LearningService.RecordQuizAttempt(ctx.Request.Context(), user.UserID, lessonID, req.Score)
	if err != nil {
		c.renderLearningError(ctx, err)
		return
	}
	util.Created(ctx, attempt)
}

// @Summary 课程学习进度
// @Tags 学习
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/progress [get]
func (c *LearningController) GetCourseProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := util.MustParseUint(ctx.Param("id"))
	progresses, err := c.LearningService.GetCourseProgress(user.UserID, courseID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progresses)
}

func (c *LearningController) renderLearningError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrLessonNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrNotEnrolled):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
