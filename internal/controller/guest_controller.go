package controller

import (
	"math_quest_backend/internal/service"
	"math_quest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// GuestController 访客模式：不校验前置知识点，不保存任何数据
type GuestController struct {
	ConceptService  *service.ConceptService
	PracticeService *service.PracticeService
}

func NewGuestController(conceptService *service.ConceptService, practiceService *service.PracticeService) *GuestController {
	return &GuestController{
		ConceptService:  conceptService,
		PracticeService: practiceService,
	}
}

// @Summary 访客知识点列表
// @Tags 访客
// @Produce json
// @Success 200 {object} util.Response{data=[]model.ConceptSummary}
// @Router /guest/concepts [get]
func (c *GuestController) Concepts(ctx *gin.Context) {
	summaries, err := c.ConceptService.Curriculum(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, summaries)
}

// @Summary 访客知识点详情
// @Description 课程内容加最多 3 道练习题
// @Tags 访客
// @Produce json
// @Param slug path string true "知识点 slug"
// @Success 200 {object} util.Response{data=service.ConceptDetail}
// @Failure 404 {object} util.Response
// @Router /guest/concepts/{slug} [get]
func (c *GuestController) ConceptDetail(ctx *gin.Context) {
	detail, err := c.ConceptService.GuestDetail(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 访客练习题
// @Description 最多 5 道题
// @Tags 访客
// @Produce json
// @Param conceptId path int true "知识点ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response
// @Router /guest/practice/{conceptId} [get]
func (c *GuestController) Practice(ctx *gin.Context) {
	conceptID, ok := pathID(ctx, "conceptId")
	if !ok {
		return
	}
	concept, problems, err := c.ConceptService.GuestPractice(conceptID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"concept": concept, "problems": problems})
}

// @Summary 访客提交答案
// @Description 只返回对错和解析，不计分
// @Tags 访客
// @Accept json
// @Produce json
// @Param problemId path int true "题目ID"
// @Success 200 {object} util.Response{data=service.GuestResult}
// @Failure 404 {object} util.Response
// @Router /guest/practice/submit/{problemId} [post]
func (c *GuestController) Submit(ctx *gin.Context) {
	problemID, ok := pathID(ctx, "problemId")
	if !ok {
		return
	}
	fields := submissionFields(ctx)
	result, err := c.PracticeService.GuestCheck(problemID, answerString(fields["answer"]))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
