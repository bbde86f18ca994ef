package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/cache"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
	Invalidator      *service.CacheInvalidator
}

func NewDashboardController(dashboardService *service.DashboardService, invalidator *service.CacheInvalidator) *DashboardController {
	return &DashboardController{
		DashboardService: dashboardService,
		Invalidator:      invalidator,
	}
}

// @Summary 获取平台仪表盘
// @Description 平台级统计：用户/课程/课时总数、选课完成率、最近动态、热门课程
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.DashboardStats}
// @Router /api/dashboard [get]
func (c *DashboardController) GetGlobalStats(ctx *gin.Context) {
	stats, err := c.DashboardService.GetGlobalStats(ctx.Request.Context())
	if err != nil {
		c.renderStatsError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 获取我的学习统计
// @Description 当前用户的选课进度、课时完成率和最近完成记录
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.DashboardStats}
// @Router /api/dashboard/me [get]
func (c *DashboardController) GetStudentStats(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.DashboardService.GetStudentStats(ctx.Request.Context(), user.UserID)
	if err != nil {
		c.renderStatsError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 获取课程统计
// @Description 单门课程的选课、完成率和各课时完成人数分布
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=model.DashboardStats}
// @Router /api/dashboard/courses/{courseId} [get]
func (c *DashboardController) GetCourseStats(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid courseId")
		return
	}

	stats, err := c.DashboardService.GetCourseStats(ctx.Request.Context(), courseID)
	if err != nil {
		c.renderStatsError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 获取连续学习天数
// @Description 以当前时间为基准实时计算，不走缓存
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/dashboard/streak [get]
func (c *DashboardController) GetLearningStreak(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	streak, err := c.DashboardService.GetLearningStreak(ctx.Request.Context(), user.UserID)
	if err != nil {
		c.renderStatsError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"streakDays": streak})
}

// @Summary 热门课程榜单
// @Description 按选课人数排序的课程列表
// @Tags 仪表盘
// @Produce json
// @Param limit query int false "返回条数，默认6，最大20"
// @Success 200 {object} util.Response
// @Router /api/dashboard/courses/top [get]
func (c *DashboardController) GetTopCourses(ctx *gin.Context) {
	limit := util.ParseLimit(ctx.Query("limit"), 6, 20)

	courses, err := c.DashboardService.TopCourses(ctx.Request.Context(), limit)
	if err != nil {
		c.renderStatsError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary 清空仪表盘缓存
// @Description 运维用的整体重置，清除后下一次读取全部重算
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/admin/cache/clear [post]
func (c *DashboardController) ClearCache(ctx *gin.Context) {
	if err := c.Invalidator.ClearAll(ctx.Request.Context()); err != nil {
		if cache.IsUnavailable(err) {
			util.ServiceUnavailable(ctx, "cache backend unavailable")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "dashboard cache cleared"})
}

// renderStatsError 仪表盘读取失败整体报错，不吐半成品数据
func (c *DashboardController) renderStatsError(ctx *gin.Context, err error) {
	if util.IsAggregationError(err) {
		util.ServiceUnavailable(ctx, "statistics temporarily unavailable")
		return
	}
	util.LogInternalError(ctx, err)
}
