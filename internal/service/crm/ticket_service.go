package crm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/funnel"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/repository"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/logger"
)

// TicketService 工单及其任务、产品的CRUD
type TicketService struct {
	funnels *FunnelService
	tickets *repository.TicketRepository
}

// NewTicketService 创建工单服务
func NewTicketService(funnels *FunnelService, tickets *repository.TicketRepository) *TicketService {
	return &TicketService{funnels: funnels, tickets: tickets}
}

// newTicketNumber 生成工单编号：时间戳 + 随机后缀
func newTicketNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("TKT-%s-%s", time.Now().Format("20060102150405"), suffix)
}

// List 按条件分页列出组织下的工单，返回当前页数据和总数
func (s *TicketService) List(orgID string, filter *repository.TicketFilter) ([]model.ServiceTicket, int64, error) {
	if filter == nil {
		filter = &repository.TicketFilter{}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	if filter.PageSize > 200 {
		filter.PageSize = 200
	}

	total, err := s.tickets.Count(orgID, filter)
	if err != nil {
		return nil, 0, err
	}
	tickets, err := s.tickets.List(orgID, filter)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

// Get 获取工单详情
func (s *TicketService) Get(orgID, ticketID string) (*model.ServiceTicket, error) {
	return s.tickets.FindByID(orgID, ticketID)
}

// Create 创建工单。未指定阶段时落在漏斗的第一个阶段。
func (s *TicketService) Create(orgID, actorID string, req *model.CreateTicketRequest) (*model.ServiceTicket, error) {
	f, err := s.funnels.Get(orgID, req.FunnelID)
	if err != nil {
		return nil, err
	}

	stages := funnel.SortStages(f.Stages)
	if len(stages) == 0 {
		return nil, errors.New("漏斗没有任何阶段")
	}

	stageID := req.StageID
	if stageID == "" {
		stageID = stages[0].ID
	} else if f.StageByID(stageID) == nil {
		return nil, ErrStageNotInFunnel
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	ticket := &model.ServiceTicket{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		FunnelID:       req.FunnelID,
		StageID:        stageID,
		Number:         newTicketNumber(),
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Status:         model.TicketStatusOpen,
		Priority:       priority,
		AssigneeID:     req.AssigneeID,
		ClientName:     req.ClientName,
		ClientEmail:    req.ClientEmail,
		ClientPhone:    req.ClientPhone,
		PropertyID:     req.PropertyID,
		Value:          req.Value,
		Tags:           req.Tags,
		SLADueAt:       req.SLADueAt,
		CreatedBy:      actorID,
	}
	if len(req.CustomFields) > 0 {
		raw, err := json.Marshal(req.CustomFields)
		if err != nil {
			return nil, fmt.Errorf("序列化自定义字段失败: %w", err)
		}
		ticket.CustomFields = raw
	}
	if err := s.tickets.Create(ticket); err != nil {
		return nil, fmt.Errorf("创建工单失败: %w", err)
	}

	s.recordActivity(orgID, ticket.ID, model.ActivityCreated, actorID, "工单创建", nil)
	return s.tickets.FindByID(orgID, ticket.ID)
}

// Update 更新工单字段（不含阶段移动）
func (s *TicketService) Update(orgID, ticketID, actorID string, req *model.UpdateTicketRequest) (*model.ServiceTicket, error) {
	if _, err := s.tickets.FindByID(orgID, ticketID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != "" {
		updates["status"] = req.Status
		if req.Status == model.TicketStatusResolved {
			updates["resolved_at"] = time.Now()
		}
	}
	if req.Priority != "" {
		updates["priority"] = req.Priority
	}
	if req.AssigneeID != nil {
		updates["assignee_id"] = *req.AssigneeID
	}
	if req.ClientName != nil {
		updates["client_name"] = *req.ClientName
	}
	if req.ClientEmail != nil {
		updates["client_email"] = *req.ClientEmail
	}
	if req.ClientPhone != nil {
		updates["client_phone"] = *req.ClientPhone
	}
	if req.PropertyID != nil {
		updates["property_id"] = *req.PropertyID
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Value != nil {
		updates["value"] = *req.Value
	}
	if req.Tags != nil {
		updates["tags"] = model.StringArray(req.Tags)
	}
	if req.CustomFields != nil {
		raw, err := json.Marshal(req.CustomFields)
		if err != nil {
			return nil, fmt.Errorf("序列化自定义字段失败: %w", err)
		}
		updates["custom_fields"] = raw
	}
	if req.SLADueAt != nil {
		updates["sla_due_at"] = *req.SLADueAt
	}

	if len(updates) > 0 {
		if err := s.tickets.UpdateFields(orgID, ticketID, updates); err != nil {
			return nil, fmt.Errorf("更新工单失败: %w", err)
		}
		s.recordActivity(orgID, ticketID, model.ActivityUpdated, actorID, "工单更新", nil)
	}

	return s.tickets.FindByID(orgID, ticketID)
}

// Delete 删除工单及其关联数据
func (s *TicketService) Delete(orgID, ticketID string) error {
	if _, err := s.tickets.FindByID(orgID, ticketID); err != nil {
		return err
	}
	return s.tickets.Delete(orgID, ticketID)
}

// ===== Task Methods =====

// AddTask 给工单添加子任务，默认归属工单当前阶段
func (s *TicketService) AddTask(orgID, ticketID string, req *model.CreateTaskRequest) (*model.ServiceTask, error) {
	ticket, err := s.tickets.FindByID(orgID, ticketID)
	if err != nil {
		return nil, err
	}

	stageID := req.StageID
	if stageID == "" {
		stageID = ticket.StageID
	}

	task := &model.ServiceTask{
		ID:         uuid.New().String(),
		TicketID:   ticketID,
		StageID:    stageID,
		Title:      req.Title,
		Status:     model.TaskStatusTodo,
		Position:   req.Position,
		AssigneeID: req.AssigneeID,
	}
	if err := s.tickets.CreateTask(task); err != nil {
		return nil, fmt.Errorf("创建任务失败: %w", err)
	}
	return task, nil
}

// UpdateTask 更新子任务，状态变为completed时记录完成时间
func (s *TicketService) UpdateTask(orgID, ticketID, taskID string, req *model.UpdateTaskRequest) (*model.ServiceTask, error) {
	if _, err := s.tickets.FindByID(orgID, ticketID); err != nil {
		return nil, err
	}

	task, err := s.tickets.FindTaskByID(ticketID, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		task.Title = req.Title
	}
	if req.Status != "" && req.Status != task.Status {
		task.Status = req.Status
		if req.Status == model.TaskStatusCompleted {
			now := time.Now()
			task.CompletedAt = &now
		} else {
			task.CompletedAt = nil
		}
	}
	if req.AssigneeID != nil {
		task.AssigneeID = *req.AssigneeID
	}
	if req.Position != nil {
		task.Position = *req.Position
	}

	if err := s.tickets.UpdateTask(task); err != nil {
		return nil, fmt.Errorf("更新任务失败: %w", err)
	}
	return task, nil
}

// DeleteTask 删除子任务
func (s *TicketService) DeleteTask(orgID, ticketID, taskID string) error {
	if _, err := s.tickets.FindByID(orgID, ticketID); err != nil {
		return err
	}
	return s.tickets.DeleteTask(ticketID, taskID)
}

// ===== Product Methods =====

// AddProduct 给工单添加关联产品
func (s *TicketService) AddProduct(orgID, ticketID string, req *model.CreateProductRequest) (*model.TicketProduct, error) {
	if _, err := s.tickets.FindByID(orgID, ticketID); err != nil {
		return nil, err
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	product := &model.TicketProduct{
		ID:        uuid.New().String(),
		TicketID:  ticketID,
		Name:      req.Name,
		Quantity:  quantity,
		UnitPrice: req.UnitPrice,
	}
	if err := s.tickets.CreateProduct(product); err != nil {
		return nil, fmt.Errorf("添加产品失败: %w", err)
	}
	return product, nil
}

// DeleteProduct 删除工单关联产品
func (s *TicketService) DeleteProduct(orgID, ticketID, productID string) error {
	if _, err := s.tickets.FindByID(orgID, ticketID); err != nil {
		return err
	}
	return s.tickets.DeleteProduct(ticketID, productID)
}

// ===== Activity Methods =====

// Activities 返回工单活动流（按时间倒序）
func (s *TicketService) Activities(orgID, ticketID string, limit int) ([]model.TicketActivity, error) {
	return s.tickets.ListActivities(orgID, ticketID, limit)
}

// AddComment 给工单添加评论（作为活动记录）
func (s *TicketService) AddComment(orgID, ticketID, actorID, message string) (*model.TicketActivity, error) {
	if _, err := s.tickets.FindByID(orgID, ticketID); err != nil {
		return nil, err
	}

	activity := &model.TicketActivity{
		ID:             uuid.New().String(),
		TicketID:       ticketID,
		OrganizationID: orgID,
		Type:           model.ActivityComment,
		ActorID:        actorID,
		Message:        message,
	}
	if err := s.tickets.CreateActivity(activity); err != nil {
		return nil, fmt.Errorf("添加评论失败: %w", err)
	}
	return activity, nil
}

func (s *TicketService) recordActivity(orgID, ticketID, activityType, actorID, message string, metadata map[string]string) {
	var meta []byte
	if metadata != nil {
		meta, _ = json.Marshal(metadata)
	}
	activity := &model.TicketActivity{
		ID:             uuid.New().String(),
		TicketID:       ticketID,
		OrganizationID: orgID,
		Type:           activityType,
		ActorID:        actorID,
		Message:        message,
		Metadata:       meta,
	}
	if err := s.tickets.CreateActivity(activity); err != nil {
		logger.Warnf("Failed to record %s activity for ticket %s: %v", activityType, ticketID, err)
	}
}
