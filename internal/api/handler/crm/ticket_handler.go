package crm

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/repository"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/service/crm"
)

type TicketHandler struct {
	service *crm.TicketService
}

func NewTicketHandler(service *crm.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

// ListTickets 获取工单列表
// @Summary 获取工单列表
// @Tags tickets
// @Produce json
// @Param funnelId query string false "漏斗过滤"
// @Param stageId query string false "阶段过滤"
// @Param status query string false "状态过滤"
// @Param priority query string false "优先级过滤"
// @Param assigneeId query string false "负责人过滤"
// @Param search query string false "标题/客户名搜索"
// @Param page query int false "页码（默认1）"
// @Param pageSize query int false "每页条数（默认50，上限200）"
// @Success 200 {object} model.Response
// @Router /api/v1/tickets [get]
func (h *TicketHandler) ListTickets(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))

	filter := &repository.TicketFilter{
		FunnelID:   c.Query("funnelId"),
		StageID:    c.Query("stageId"),
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		AssigneeID: c.Query("assigneeId"),
		Search:     c.Query("search"),
		Page:       page,
		PageSize:   pageSize,
	}

	tickets, total, err := h.service.List(c.GetString("organization_id"), filter)
	if err != nil {
		respondError(c, err, "获取工单列表失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(model.Paginated(tickets, total, filter.Page, filter.PageSize)))
}

// GetTicket 获取工单详情
// @Summary 获取工单详情
// @Tags tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} model.Response
// @Router /api/v1/tickets/{id} [get]
func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticket, err := h.service.Get(c.GetString("organization_id"), c.Param("id"))
	if err != nil {
		respondError(c, err, "获取工单失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(ticket))
}

// CreateTicket 创建工单，默认落在漏斗第一个阶段
// @Summary 创建工单
// @Tags tickets
// @Accept json
// @Produce json
// @Param request body model.CreateTicketRequest true "Ticket"
// @Success 200 {object} model.Response
// @Router /api/v1/tickets [post]
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	var req model.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	ticket, err := h.service.Create(c.GetString("organization_id"), c.GetString("user_id"), &req)
	if err != nil {
		respondError(c, err, "创建工单失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(ticket))
}

// UpdateTicket 更新工单字段
// @Summary 更新工单
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body model.UpdateTicketRequest true "Ticket"
// @Success 200 {object} model.Response
// @Router /api/v1/tickets/{id} [put]
func (h *TicketHandler) UpdateTicket(c *gin.Context) {
	var req model.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	ticket, err := h.service.Update(c.GetString("organization_id"), c.Param("id"), c.GetString("user_id"), &req)
	if err != nil {
		respondError(c, err, "更新工单失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(ticket))
}

// DeleteTicket 删除工单及其关联数据
// @Summary 删除工单
// @Tags tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} model.Response
// @Router /api/v1/tickets/{id} [delete]
func (h *TicketHandler) DeleteTicket(c *gin.Context) {
	if err := h.service.Delete(c.GetString("organization_id"), c.Param("id")); err != nil {
		respondError(c, err, "删除工单失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(nil))
}

// AddTask 给工单添加任务
// @Summary 添加任务
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body model.CreateTaskRequest true "Task"
// @Success 200 {object} model.Response
// @Router /api/v1/tickets/{id}/tasks [post]
func (h *TicketHandler) AddTask(c *gin.Context) {
	var req model.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	task, err := h.service.AddTask(c.GetString("organization_id"), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "添加任务失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(task))
}

// UpdateTask 更新任务（标题、状态等）
// @Summary 更新任务
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param taskId path string true "Task ID"
// @Param request body model.UpdateTaskRequest true "Task"
// @Success 200 {object} model.Response
// @Router /api/v1/tickets/{id}/tasks/{taskId} [put]
func (h *TicketHandler) UpdateTask(c *gin.Context) {
	var req model.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	task, err := h.service.UpdateTask(c.GetString("organization_id"), c.Param("id"), c.Param("taskId"), &req)
	if err != nil {
		respondError(c, err, "更新任务失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(task))
}

// DeleteTask 删除任务
// @Summary 删除任务
// @Tags tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Param taskId path string true "Task ID"
// @Success 200 {object} model.Response
// @Router /api/v1/tickets/{id}/tasks/{taskId} [delete]
func (h *TicketHandler) DeleteTask(c *gin.Context) {
	if err := h.service.DeleteTask(c.GetString("organization_id"), c.Param("id"), c.Param("taskId")); err != nil {
		respondError(c, err, "删除任务失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(nil))
}

// AddProduct 给工单添加产品/预算项
// @Summary 添加产品
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body model.CreateProductRequest true "Product"
// @Success 200 {object} model.Response
// @Router /api/v1/tickets/{id}/products [post]
func (h *TicketHandler) AddProduct(c *gin.Context) {
	var req model.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	product, err := h.service.AddProduct(c.GetString("organization_id"), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "添加产品失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(product))
}

// DeleteProduct 删除产品项
// @Summary 删除产品
// @Tags tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Param productId path string true "Product ID"
// @Success 200 {object} model.Response
// @Router /api/v1/tickets/{id}/products/{productId} [delete]
func (h *TicketHandler) DeleteProduct(c *gin.Context) {
	if err := h.service.DeleteProduct(c.GetString("organization_id"), c.Param("id"), c.Param("productId")); err != nil {
		respondError(c, err, "删除产品失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(nil))
}

// GetActivities 获取工单活动流
// @Summary 获取工单活动流
// @Tags tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Param limit query int false "返回条数上限"
// @Success 200 {object} model.Response
// @Router /api/v1/tickets/{id}/activities [get]
func (h *TicketHandler) GetActivities(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	activities, err := h.service.Activities(c.GetString("organization_id"), c.Param("id"), limit)
	if err != nil {
		respondError(c, err, "获取活动流失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(activities))
}

// AddComment 给工单添加评论
// @Summary 添加评论
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} model.Response
// @Router /api/v1/tickets/{id}/comments [post]
func (h *TicketHandler) AddComment(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	activity, err := h.service.AddComment(c.GetString("organization_id"), c.Param("id"), c.GetString("user_id"), req.Message)
	if err != nil {
		respondError(c, err, "添加评论失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(activity))
}
