package repository

import (
	"time"

	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"gorm.io/gorm"
)

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// TicketFilter 工单列表过滤条件
// PageSize大于0时启用分页，否则返回全部匹配行（看板装配用）
type TicketFilter struct {
	FunnelID   string
	StageID    string
	Status     string
	Priority   string
	AssigneeID string
	Search     string
	Page       int
	PageSize   int
}

// scoped 应用组织和过滤条件（不含分页）
func (r *TicketRepository) scoped(query *gorm.DB, orgID string, filter *TicketFilter) *gorm.DB {
	query = query.Where("organization_id = ?", orgID)
	if filter == nil {
		return query
	}
	if filter.FunnelID != "" {
		query = query.Where("funnel_id = ?", filter.FunnelID)
	}
	if filter.StageID != "" {
		query = query.Where("stage_id = ?", filter.StageID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.AssigneeID != "" {
		query = query.Where("assignee_id = ?", filter.AssigneeID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR client_name LIKE ?", like, like)
	}
	return query
}

func (r *TicketRepository) preloaded() *gorm.DB {
	return r.db.
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

// List 按条件列出组织下的工单（含任务和产品）
func (r *TicketRepository) List(orgID string, filter *TicketFilter) ([]model.ServiceTicket, error) {
	query := r.scoped(r.preloaded(), orgID, filter)
	if filter != nil && filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var tickets []model.ServiceTicket
	err := query.Order("created_at DESC").Find(&tickets).Error
	return tickets, err
}

// Count 统计匹配过滤条件的工单总数（分页用，忽略分页参数本身）
func (r *TicketRepository) Count(orgID string, filter *TicketFilter) (int64, error) {
	var count int64
	err := r.scoped(r.db.Model(&model.ServiceTicket{}), orgID, filter).Count(&count).Error
	return count, err
}

// FindByID 按组织和ID获取工单（含任务和产品）
func (r *TicketRepository) FindByID(orgID, id string) (*model.ServiceTicket, error) {
	var t model.ServiceTicket
	err := r.preloaded().Where("organization_id = ? AND id = ?", orgID, id).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TicketRepository) Create(t *model.ServiceTicket) error {
	return r.db.Create(t).Error
}

// UpdateFields 更新工单字段并递增版本号
func (r *TicketRepository) UpdateFields(orgID, id string, updates map[string]interface{}) error {
	updates["version"] = gorm.Expr("version + 1")
	return r.db.Model(&model.ServiceTicket{}).
		Where("organization_id = ? AND id = ?", orgID, id).
		Updates(updates).Error
}

// MoveStage 带乐观锁的阶段移动：只有版本号匹配时才生效，返回受影响行数。
// 返回0行表示版本冲突（其他写入已抢先），调用方应返回409。
func (r *TicketRepository) MoveStage(orgID, id string, expectedVersion uint, updates map[string]interface{}) (int64, error) {
	updates["version"] = gorm.Expr("version + 1")
	result := r.db.Model(&model.ServiceTicket{}).
		Where("organization_id = ? AND id = ? AND version = ?", orgID, id, expectedVersion).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// Delete 删除工单及其任务、产品、活动记录（单事务）
func (r *TicketRepository) Delete(orgID, id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ticket_id = ?", id).Delete(&model.ServiceTask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("ticket_id = ?", id).Delete(&model.TicketProduct{}).Error; err != nil {
			return err
		}
		if err := tx.Where("ticket_id = ?", id).Delete(&model.TicketActivity{}).Error; err != nil {
			return err
		}
		return tx.Where("organization_id = ? AND id = ?", orgID, id).
			Delete(&model.ServiceTicket{}).Error
	})
}

// ===== Task Methods =====

func (r *TicketRepository) CreateTask(task *model.ServiceTask) error {
	return r.db.Create(task).Error
}

func (r *TicketRepository) FindTaskByID(ticketID, taskID string) (*model.ServiceTask, error) {
	var task model.ServiceTask
	err := r.db.Where("ticket_id = ? AND id = ?", ticketID, taskID).First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TicketRepository) UpdateTask(task *model.ServiceTask) error {
	return r.db.Save(task).Error
}

func (r *TicketRepository) DeleteTask(ticketID, taskID string) error {
	return r.db.Where("ticket_id = ? AND id = ?", ticketID, taskID).
		Delete(&model.ServiceTask{}).Error
}

// ===== Product Methods =====

func (r *TicketRepository) CreateProduct(p *model.TicketProduct) error {
	return r.db.Create(p).Error
}

func (r *TicketRepository) DeleteProduct(ticketID, productID string) error {
	return r.db.Where("ticket_id = ? AND id = ?", ticketID, productID).
		Delete(&model.TicketProduct{}).Error
}

// ===== Activity Methods =====

func (r *TicketRepository) CreateActivity(a *model.TicketActivity) error {
	return r.db.Create(a).Error
}

func (r *TicketRepository) ListActivities(orgID, ticketID string, limit int) ([]model.TicketActivity, error) {
	if limit <= 0 {
		limit = 100
	}
	var activities []model.TicketActivity
	err := r.db.Where("organization_id = ? AND ticket_id = ?", orgID, ticketID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}

// ===== Stats Methods =====

type statusCount struct {
	Label string
	Count int64
}

// CountByStatus 按状态统计工单数，funnelID为空时统计整个组织
func (r *TicketRepository) CountByStatus(orgID, funnelID string) (map[string]int64, error) {
	return r.countGrouped(orgID, funnelID, "status")
}

// CountByPriority 按优先级统计工单数
func (r *TicketRepository) CountByPriority(orgID, funnelID string) (map[string]int64, error) {
	return r.countGrouped(orgID, funnelID, "priority")
}

func (r *TicketRepository) countGrouped(orgID, funnelID, column string) (map[string]int64, error) {
	query := r.db.Model(&model.ServiceTicket{}).Where("organization_id = ?", orgID)
	if funnelID != "" {
		query = query.Where("funnel_id = ?", funnelID)
	}

	var rows []statusCount
	err := query.Select(column + " as label, COUNT(*) as count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Label] = row.Count
	}
	return counts, nil
}

// CountTotal 统计组织（或漏斗）下的工单总数
func (r *TicketRepository) CountTotal(orgID, funnelID string) (int64, error) {
	query := r.db.Model(&model.ServiceTicket{}).Where("organization_id = ?", orgID)
	if funnelID != "" {
		query = query.Where("funnel_id = ?", funnelID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// CountOpenByFunnel 按漏斗统计未解决工单数（跨组织，供指标上报使用）
func (r *TicketRepository) CountOpenByFunnel() (map[string]int64, error) {
	var rows []struct {
		FunnelID string
		Total    int64
	}
	err := r.db.Model(&model.ServiceTicket{}).
		Select("funnel_id, COUNT(*) as total").
		Where("status NOT IN ?", []string{model.TicketStatusResolved, model.TicketStatusClosed, model.TicketStatusCancelled}).
		Group("funnel_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.FunnelID] = row.Total
	}
	return counts, nil
}

func (r *TicketRepository) slaOpen(orgID string) *gorm.DB {
	query := r.db.Model(&model.ServiceTicket{}).
		Where("status NOT IN ?", []string{model.TicketStatusResolved, model.TicketStatusClosed, model.TicketStatusCancelled}).
		Where("sla_due_at IS NOT NULL")
	if orgID != "" {
		query = query.Where("organization_id = ?", orgID)
	}
	return query
}

// CountSLABreached 统计SLA已超期的未解决工单
func (r *TicketRepository) CountSLABreached(orgID string, now time.Time) (int64, error) {
	var count int64
	err := r.slaOpen(orgID).Where("sla_due_at < ?", now).Count(&count).Error
	return count, err
}

// CountSLADueSoon 统计SLA即将到期（now ~ now+window）的未解决工单
func (r *TicketRepository) CountSLADueSoon(orgID string, now time.Time, window time.Duration) (int64, error) {
	var count int64
	err := r.slaOpen(orgID).
		Where("sla_due_at >= ? AND sla_due_at < ?", now, now.Add(window)).
		Count(&count).Error
	return count, err
}

// ListSLABreached 列出SLA已超期且尚未打上超期标记的工单（跨组织，供定时任务使用）
func (r *TicketRepository) ListSLABreached(now time.Time, limit int) ([]model.ServiceTicket, error) {
	if limit <= 0 {
		limit = 200
	}
	var tickets []model.ServiceTicket
	err := r.slaOpen("").
		Where("sla_due_at < ?", now).
		Where("sla_breached = ?", false).
		Order("sla_due_at ASC").
		Limit(limit).
		Find(&tickets).Error
	return tickets, err
}

// MarkSLABreached 打上SLA超期标记，后续扫描不再重复登记
func (r *TicketRepository) MarkSLABreached(id string) error {
	return r.db.Model(&model.ServiceTicket{}).
		Where("id = ?", id).
		Update("sla_breached", true).Error
}
