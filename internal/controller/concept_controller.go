package controller

import (
	"math_quest_backend/internal/service"
	"math_quest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ConceptController struct {
	ConceptService  *service.ConceptService
	ProgressService *service.ProgressService
}

func NewConceptController(conceptService *service.ConceptService, progressService *service.ProgressService) *ConceptController {
	return &ConceptController{
		ConceptService:  conceptService,
		ProgressService: progressService,
	}
}

// @Summary 课程大纲
// @Description 按课程顺序列出全部知识点，无需登录
// @Tags 知识点
// @Produce json
// @Success 200 {object} util.Response{data=[]model.ConceptSummary}
// @Router /curriculum [get]
func (c *ConceptController) Curriculum(ctx *gin.Context) {
	summaries, err := c.ConceptService.Curriculum(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, summaries)
}

// @Summary 知识点列表
// @Description 每个知识点附带 available 和 completed 状态
// @Tags 知识点
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.ConceptStatus}
// @Router /concepts [get]
func (c *ConceptController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	statuses, err := c.ConceptService.ListForUser(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, statuses)
}

// @Summary 知识点详情
// @Description 返回课程内容、例题和练习题；前置知识点未完成时返回 403
// @Tags 知识点
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "知识点 slug"
// @Success 200 {object} util.Response{data=service.ConceptDetail}
// @Failure 403 {object} util.Response "前置知识点未完成"
// @Failure 404 {object} util.Response
// @Router /concepts/{slug} [get]
func (c *ConceptController) Detail(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	detail, err := c.ConceptService.GetForUser(ctx.Request.Context(), userID, ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 知识点练习题
// @Tags 知识点
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "知识点 slug"
// @Success 200 {object} util.Response{data=[]model.ProblemView}
// @Failure 404 {object} util.Response
// @Router /concepts/{slug}/problems [get]
func (c *ConceptController) Problems(ctx *gin.Context) {
	problems, err := c.ConceptService.Problems(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, problems)
}

// @Summary 标记知识点完成
// @Description 等价于提交一次满分成绩
// @Tags 知识点
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "知识点 slug"
// @Success 200 {object} util.Response{data=service.ProgressUpdate}
// @Router /concepts/{slug}/complete [post]
func (c *ConceptController) Complete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	update, err := c.ProgressService.CompleteConcept(ctx.Request.Context(), userID, ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, update)
}

// @Summary 更新知识点进度
// @Description 请求体 {score, time_spent}，分数截断到 0-100，达到 80 分即完成
// @Tags 知识点
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "知识点 slug"
// @Success 200 {object} util.Response{data=service.ProgressUpdate}
// @Router /concepts/{slug}/progress [post]
func (c *ConceptController) UpdateProgress(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	fields := submissionFields(ctx)
	update, err := c.ProgressService.UpdateConceptProgress(
		ctx.Request.Context(),
		userID,
		ctx.Param("slug"),
		intField(fields["score"]),
		intField(fields["time_spent"]),
	)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, update)
}
