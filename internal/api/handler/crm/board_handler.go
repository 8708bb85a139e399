package crm

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/service/crm"
)

type BoardHandler struct {
	service *crm.BoardService
}

func NewBoardHandler(service *crm.BoardService) *BoardHandler {
	return &BoardHandler{service: service}
}

// GetBoard 获取漏斗的看板视图（阶段列+工单分组）
// @Summary 获取看板视图
// @Tags board
// @Produce json
// @Param id path string true "Funnel ID"
// @Success 200 {object} model.Response
// @Router /api/v1/funnels/{id}/board [get]
func (h *BoardHandler) GetBoard(c *gin.Context) {
	board, err := h.service.Board(c.GetString("organization_id"), c.Param("id"))
	if err != nil {
		respondError(c, err, "获取看板失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(board))
}

// MoveTicket 把工单移动到目标阶段
// @Summary 移动工单到目标阶段
// @Tags board
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body model.MoveTicketRequest true "Move"
// @Success 200 {object} model.Response
// @Failure 409 {object} model.Response "版本冲突"
// @Failure 422 {object} model.Response "阶段要求未满足"
// @Router /api/v1/tickets/{id}/move [post]
func (h *BoardHandler) MoveTicket(c *gin.Context) {
	var req model.MoveTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	ticket, err := h.service.Move(c.GetString("organization_id"), c.Param("id"), &req, c.GetString("user_id"))
	if err != nil {
		respondError(c, err, "移动工单失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(ticket))
}

// ValidateStage 校验工单是否满足某阶段的前置要求
// @Summary 校验阶段前置要求
// @Tags board
// @Produce json
// @Param id path string true "Ticket ID"
// @Param stageId path string true "Stage ID"
// @Success 200 {object} model.Response
// @Router /api/v1/tickets/{id}/stages/{stageId}/validation [get]
func (h *BoardHandler) ValidateStage(c *gin.Context) {
	result, err := h.service.Validate(c.GetString("organization_id"), c.Param("id"), c.Param("stageId"))
	if err != nil {
		respondError(c, err, "校验阶段要求失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(result))
}

// GetStageStatuses 获取工单在各阶段的派生状态
// @Summary 获取工单的阶段状态
// @Tags board
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} model.Response
// @Router /api/v1/tickets/{id}/stage-statuses [get]
func (h *BoardHandler) GetStageStatuses(c *gin.Context) {
	statuses, err := h.service.StageStatuses(c.GetString("organization_id"), c.Param("id"))
	if err != nil {
		respondError(c, err, "获取阶段状态失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(statuses))
}
