package controller

import (
	"math_quest_backend/internal/service"
	"math_quest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PracticeController struct {
	PracticeService *service.PracticeService
}

func NewPracticeController(practiceService *service.PracticeService) *PracticeController {
	return &PracticeController{PracticeService: practiceService}
}

// @Summary 获取单道练习题
// @Tags 练习
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response{data=model.ProblemView}
// @Failure 404 {object} util.Response
// @Router /practice/problems/{id} [get]
func (c *PracticeController) GetProblem(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	problem, err := c.PracticeService.GetProblem(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, problem)
}

// @Summary 提交练习答案
// @Description 请求体 {answer, time_taken}，格式不正确时按空答案判为错误
// @Tags 练习
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param problemId path int true "题目ID"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 404 {object} util.Response
// @Router /practice/submit/{problemId} [post]
func (c *PracticeController) Submit(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	problemID, ok := pathID(ctx, "problemId")
	if !ok {
		return
	}

	fields := submissionFields(ctx)
	result, err := c.PracticeService.Submit(
		ctx.Request.Context(),
		userID,
		problemID,
		answerString(fields["answer"]),
		intField(fields["time_taken"]),
	)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 获取测验题目
// @Description 每次最多 10 道题
// @Tags 练习
// @Produce json
// @Security ApiKeyAuth
// @Param conceptId path int true "知识点ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response
// @Router /practice/quiz/{conceptId} [get]
func (c *PracticeController) Quiz(ctx *gin.Context) {
	conceptID, ok := pathID(ctx, "conceptId")
	if !ok {
		return
	}
	concept, problems, err := c.PracticeService.QuizProblems(conceptID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"concept": concept, "problems": problems})
}

// @Summary 提交测验
// @Description 请求体 {concept_id, answers: {problem_id: answer}, total_time}，成绩百分比同时写入知识点进度
// @Tags 练习
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=learning.QuizResult}
// @Failure 404 {object} util.Response
// @Router /practice/quiz/submit [post]
func (c *PracticeController) SubmitQuiz(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	fields := submissionFields(ctx)
	result, err := c.PracticeService.SubmitQuiz(ctx.Request.Context(), userID, service.QuizSubmission{
		ConceptID: uint(intField(fields["concept_id"])),
		Answers:   quizAnswers(fields["answers"]),
		TotalTime: intField(fields["total_time"]),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 练习历史
// @Description 最近 50 条作答记录
// @Tags 练习
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.AttemptView}
// @Router /practice/history [get]
func (c *PracticeController) History(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	history, err := c.PracticeService.History(userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, history)
}
