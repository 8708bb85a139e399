package system

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/repository"
	"gorm.io/gorm"
)

type OrganizationHandler struct {
	repo *repository.OrganizationRepository
}

func NewOrganizationHandler(repo *repository.OrganizationRepository) *OrganizationHandler {
	return &OrganizationHandler{repo: repo}
}

// ListOrganizations 获取组织列表
// @Summary 获取组织列表
// @Tags organizations
// @Produce json
// @Success 200 {object} model.Response
// @Router /api/v1/organizations [get]
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	orgs, err := h.repo.List()
	if err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "获取组织列表失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(orgs))
}

// GetOrganization 获取单个组织
// @Summary 获取单个组织
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {object} model.Response
// @Router /api/v1/organizations/{id} [get]
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	org, err := h.repo.FindByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, model.Error(404, "组织不存在"))
			return
		}
		model.HandleError(c, http.StatusInternalServerError, err, "获取组织失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(org))
}

// CreateOrganization 创建组织
// @Summary 创建组织
// @Tags organizations
// @Accept json
// @Produce json
// @Param request body model.CreateOrganizationRequest true "Organization"
// @Success 200 {object} model.Response
// @Router /api/v1/organizations [post]
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	var req model.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	// slug全局唯一
	if existing, err := h.repo.FindBySlug(req.Slug); err == nil && existing != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "组织标识已被占用"))
		return
	}

	org := &model.Organization{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Slug:     req.Slug,
		Plan:     req.Plan,
		IsActive: true,
		Timezone: req.Timezone,
	}
	if org.Plan == "" {
		org.Plan = "free"
	}

	if err := h.repo.Create(org); err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "创建组织失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(org))
}

// UpdateOrganization 更新组织
// @Summary 更新组织
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID"
// @Param request body model.UpdateOrganizationRequest true "Organization"
// @Success 200 {object} model.Response
// @Router /api/v1/organizations/{id} [put]
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	var req model.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	org, err := h.repo.FindByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, model.Error(404, "组织不存在"))
			return
		}
		model.HandleError(c, http.StatusInternalServerError, err, "获取组织失败")
		return
	}

	org.Name = req.Name
	if req.Plan != "" {
		org.Plan = req.Plan
	}
	if req.Timezone != "" {
		org.Timezone = req.Timezone
	}
	if req.IsActive != nil {
		org.IsActive = *req.IsActive
	}

	if err := h.repo.Update(org); err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "更新组织失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(org))
}
