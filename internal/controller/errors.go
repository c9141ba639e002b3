package controller

import (
	"errors"
	"math_quest_backend/internal/service"
	"math_quest_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError 把业务错误映射成 HTTP 状态码，未知错误记录日志后返回 500
func respondError(ctx *gin.Context, err error) {
	var prereq *service.PrerequisiteError
	switch {
	case errors.As(err, &prereq):
		ctx.JSON(http.StatusForbidden, util.Response{
			Code:    http.StatusForbidden,
			Message: util.ErrPrerequisitesUnmet.Error(),
			Data:    gin.H{"missing": prereq.Missing},
		})
	case errors.Is(err, util.ErrPrerequisitesUnmet):
		util.Error(ctx, http.StatusForbidden, util.ErrPrerequisitesUnmet.Error())
	case errors.Is(err, util.ErrConceptNotFound),
		errors.Is(err, util.ErrProblemNotFound),
		errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrNoProblems):
		util.NotFoundMessage(ctx, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrInvalidCurriculum),
		errors.Is(err, util.ErrUnsupportedImageType),
		errors.Is(err, util.ErrInvalidRole):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// currentUserID 已通过 AuthMiddleware 的请求一定带有用户信息
func currentUserID(ctx *gin.Context) (uint, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return 0, false
	}
	return claims.UserID, true
}

// pathID 非法 id 与不存在的资源一样按 404 处理
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, ok := util.ParseID(ctx.Param(name))
	if !ok {
		util.NotFound(ctx)
		return 0, false
	}
	return id, true
}
