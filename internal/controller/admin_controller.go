package controller

import (
	"math_quest_backend/internal/service"
	"math_quest_backend/internal/util"
	"math_quest_backend/pkg/logger"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxIllustrationSize = 5 << 20

type AdminController struct {
	ConceptService    *service.ConceptService
	CurriculumService *service.CurriculumService
	StorageService    *service.StorageService
	UserService       *service.UserService
}

func NewAdminController(
	conceptService *service.ConceptService,
	curriculumService *service.CurriculumService,
	storageService *service.StorageService,
	userService *service.UserService,
) *AdminController {
	return &AdminController{
		ConceptService:    conceptService,
		CurriculumService: curriculumService,
		StorageService:    storageService,
		UserService:       userService,
	}
}

// @Summary 上传知识点插图
// @Description multipart 字段 file，支持 png/jpg/gif/svg/webp，最大 5MB
// @Tags 管理
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "知识点 slug"
// @Param file formData file true "图片"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /admin/concepts/{slug}/illustration [post]
func (c *AdminController) UploadIllustration(ctx *gin.Context) {
	concept, err := c.ConceptService.BySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	if file.Size > maxIllustrationSize {
		util.BadRequest(ctx, "file too large")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, util.MimeImage) {
		respondError(ctx, util.ErrUnsupportedImageType)
		return
	}

	key, err := service.IllustrationKey(concept.Slug, file.Filename)
	if err != nil {
		respondError(ctx, err)
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	url, err := c.StorageService.Upload(ctx.Request.Context(), key, src, file.Size, contentType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	oldKey, err := c.ConceptService.SetIllustration(ctx.Request.Context(), concept.ID, url, key)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if oldKey != "" {
		if err := c.StorageService.Delete(ctx.Request.Context(), oldKey); err != nil {
			logger.Log.Warn("Failed to delete replaced illustration",
				zap.String("key", oldKey),
				zap.Error(err))
		}
	}

	logger.Log.Info("Illustration uploaded",
		zap.String("concept", concept.Slug),
		zap.String("url", url))
	util.Success(ctx, gin.H{"url": url})
}

// @Summary 重新导入课程
// @Description 重新读取课程种子文件，按 slug 更新知识点
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.SeedResult}
// @Failure 400 {object} util.Response "课程文件不合法"
// @Router /admin/curriculum/reload [post]
func (c *AdminController) ReloadCurriculum(ctx *gin.Context) {
	result, err := c.CurriculumService.Reload(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, util.Response{
		Code:    http.StatusOK,
		Message: "curriculum reloaded",
		Data:    result,
	})
}

type UpdateRoleRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// @Summary 修改用户角色
// @Description role 取值 student 或 admin，用户重新登录后生效
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body UpdateRoleRequest true "邮箱和角色"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /admin/users/role [put]
func (c *AdminController) UpdateUserRole(ctx *gin.Context) {
	var req UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	role, err := service.ParseRole(req.Role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	user, err := c.UserService.SetRole(req.Email, role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}
