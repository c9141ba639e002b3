package controller

import (
	"fmt"
	"math_quest_backend/internal/service"
	"math_quest_backend/internal/util"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// @Summary 学习面板
// @Description 完成百分比、已完成知识点和下一个可学习的知识点
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.Dashboard}
// @Router /dashboard [get]
func (c *ProgressController) Dashboard(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	dashboard, err := c.ProgressService.Dashboard(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}

// @Summary 进度总览
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.ProgressOverview}
// @Router /progress [get]
func (c *ProgressController) Overview(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	overview, err := c.ProgressService.Overview(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// @Summary 单个知识点进度
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "知识点ID"
// @Success 200 {object} util.Response{data=model.ConceptProgress}
// @Failure 404 {object} util.Response
// @Router /progress/concepts/{id} [get]
func (c *ProgressController) ConceptProgress(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	conceptID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	progress, err := c.ProgressService.ConceptProgress(userID, conceptID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary 学习统计
// @Description 总分、总时长、正确率以及最近四周的学习情况
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.ProgressStats}
// @Router /progress/stats [get]
func (c *ProgressController) Stats(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	stats, err := c.ProgressService.Stats(userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 成就徽章
// @Description 全部徽章按固定顺序返回，earned 表示是否已获得
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Badge}
// @Router /progress/achievements [get]
func (c *ProgressController) Achievements(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	badges, err := c.ProgressService.Achievements(userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}

// @Summary 累计得分曲线
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.ChartPoint}
// @Router /progress/chart-data [get]
func (c *ProgressController) ChartData(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	points, err := c.ProgressService.ChartData(userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, points)
}

// @Summary 导出学习进度
// @Description 下载 xlsx 工作簿
// @Tags 进度
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security ApiKeyAuth
// @Success 200 {file} file
// @Router /progress/export [get]
func (c *ProgressController) Export(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	data, err := c.ProgressService.ExportProgress(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	filename := fmt.Sprintf("math-quest-progress-%s.xlsx", time.Now().Format(util.DateFormat))
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Data(http.StatusOK, util.MimeXLSX, data)
}

// @Summary 排行榜
// @Description 按总分排序，limit 默认 10，最大 100
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "数量"
// @Success 200 {object} util.Response{data=[]model.LeaderboardEntry}
// @Router /leaderboard [get]
func (c *ProgressController) Leaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(util.LeaderboardLimit)))
	entries, err := c.ProgressService.Leaderboard(limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}
