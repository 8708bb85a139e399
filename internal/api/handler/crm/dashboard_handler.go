package crm

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/service/crm"
)

type DashboardHandler struct {
	service *crm.StatsService
}

func NewDashboardHandler(service *crm.StatsService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// GetStats 获取工单统计（状态/优先级分布、SLA超期和临期数）
// @Summary 获取看板统计
// @Tags dashboard
// @Produce json
// @Param funnelId query string false "漏斗过滤"
// @Success 200 {object} model.Response
// @Router /api/v1/dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Dashboard(c.GetString("organization_id"), c.Query("funnelId"))
	if err != nil {
		respondError(c, err, "获取统计失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(stats))
}
