package crm

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/service/crm"
)

type ApprovalHandler struct {
	service *crm.ApprovalService
}

func NewApprovalHandler(service *crm.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{service: service}
}

// RequestApproval 为工单当前阶段发起审批
// @Summary 发起阶段审批
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body model.RequestApprovalRequest false "Approval request"
// @Success 200 {object} model.Response
// @Router /api/v1/tickets/{id}/approvals [post]
func (h *ApprovalHandler) RequestApproval(c *gin.Context) {
	var req model.RequestApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	approval, err := h.service.Request(c.GetString("organization_id"), c.Param("id"), c.GetString("user_id"), &req)
	if err != nil {
		respondError(c, err, "发起审批失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(approval))
}

// DecideApproval 审批通过或驳回；通过时工单自动推进到下一阶段
// @Summary 审批决定
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param stageId path string true "Stage ID"
// @Param request body model.DecideApprovalRequest true "Decision"
// @Success 200 {object} model.Response
// @Failure 409 {object} model.Response "版本冲突"
// @Router /api/v1/tickets/{id}/stages/{stageId}/approval [post]
func (h *ApprovalHandler) DecideApproval(c *gin.Context) {
	var req model.DecideApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	ticket, err := h.service.Decide(c.GetString("organization_id"), c.Param("id"), c.Param("stageId"), c.GetString("user_id"), &req)
	if err != nil {
		respondError(c, err, "审批失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(ticket))
}

// GetApprovalHistory 获取工单的全部审批记录（追加式日志）
// @Summary 获取审批历史
// @Tags approvals
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} model.Response
// @Router /api/v1/tickets/{id}/approvals [get]
func (h *ApprovalHandler) GetApprovalHistory(c *gin.Context) {
	history, err := h.service.History(c.GetString("organization_id"), c.Param("id"))
	if err != nil {
		respondError(c, err, "获取审批历史失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(history))
}

// GetLatestApprovals 获取工单每个阶段的最新审批状态
// @Summary 获取各阶段最新审批状态
// @Tags approvals
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} model.Response
// @Router /api/v1/tickets/{id}/approvals/latest [get]
func (h *ApprovalHandler) GetLatestApprovals(c *gin.Context) {
	latest, err := h.service.Latest(c.GetString("organization_id"), c.Param("id"))
	if err != nil {
		respondError(c, err, "获取审批状态失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(latest))
}
