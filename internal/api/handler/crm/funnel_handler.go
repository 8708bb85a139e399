package crm

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/service/crm"
)

type FunnelHandler struct {
	service *crm.FunnelService
}

func NewFunnelHandler(service *crm.FunnelService) *FunnelHandler {
	return &FunnelHandler{service: service}
}

// ListFunnels 获取漏斗列表
// @Summary 获取漏斗列表
// @Tags funnels
// @Produce json
// @Param type query string false "漏斗类型过滤: sales, services, predetermined"
// @Param includeGlobal query bool false "是否附带平台级模板漏斗"
// @Success 200 {object} model.Response
// @Router /api/v1/funnels [get]
func (h *FunnelHandler) ListFunnels(c *gin.Context) {
	includeGlobal := c.Query("includeGlobal") == "true"
	funnels, err := h.service.List(c.GetString("organization_id"), c.Query("type"), includeGlobal)
	if err != nil {
		respondError(c, err, "获取漏斗列表失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(funnels))
}

// GetFunnel 获取漏斗详情（含阶段）
// @Summary 获取漏斗详情
// @Tags funnels
// @Produce json
// @Param id path string true "Funnel ID"
// @Success 200 {object} model.Response
// @Router /api/v1/funnels/{id} [get]
func (h *FunnelHandler) GetFunnel(c *gin.Context) {
	f, err := h.service.Get(c.GetString("organization_id"), c.Param("id"))
	if err != nil {
		respondError(c, err, "获取漏斗失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(f))
}

// CreateFunnel 创建漏斗，不传阶段时按类型生成默认阶段
// @Summary 创建漏斗
// @Tags funnels
// @Accept json
// @Produce json
// @Param request body model.CreateFunnelRequest true "Funnel"
// @Success 200 {object} model.Response
// @Router /api/v1/funnels [post]
func (h *FunnelHandler) CreateFunnel(c *gin.Context) {
	var req model.CreateFunnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	f, err := h.service.Create(c.GetString("organization_id"), &req)
	if err != nil {
		respondError(c, err, "创建漏斗失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(f))
}

// UpdateFunnel 更新漏斗及其阶段定义
// @Summary 更新漏斗
// @Tags funnels
// @Accept json
// @Produce json
// @Param id path string true "Funnel ID"
// @Param request body model.UpdateFunnelRequest true "Funnel"
// @Success 200 {object} model.Response
// @Router /api/v1/funnels/{id} [put]
func (h *FunnelHandler) UpdateFunnel(c *gin.Context) {
	var req model.UpdateFunnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	f, err := h.service.Update(c.GetString("organization_id"), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "更新漏斗失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(f))
}

// DuplicateFunnel 复制漏斗（含阶段和阶段要求）
// @Summary 复制漏斗
// @Tags funnels
// @Accept json
// @Produce json
// @Param id path string true "Funnel ID"
// @Param request body model.DuplicateFunnelRequest false "Duplicate options"
// @Success 200 {object} model.Response
// @Router /api/v1/funnels/{id}/duplicate [post]
func (h *FunnelHandler) DuplicateFunnel(c *gin.Context) {
	var req model.DuplicateFunnelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	f, err := h.service.Duplicate(c.GetString("organization_id"), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "复制漏斗失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(f))
}

// DeleteFunnel 删除漏斗
// @Summary 删除漏斗
// @Tags funnels
// @Produce json
// @Param id path string true "Funnel ID"
// @Success 200 {object} model.Response
// @Router /api/v1/funnels/{id} [delete]
func (h *FunnelHandler) DeleteFunnel(c *gin.Context) {
	if err := h.service.Delete(c.GetString("organization_id"), c.Param("id")); err != nil {
		respondError(c, err, "删除漏斗失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(nil))
}
