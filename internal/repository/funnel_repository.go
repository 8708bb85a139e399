package repository

import (
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"gorm.io/gorm"
)

type FunnelRepository struct {
	db *gorm.DB
}

func NewFunnelRepository(db *gorm.DB) *FunnelRepository {
	return &FunnelRepository{db: db}
}

// ListByOrganization 列出组织下的漏斗（含有序阶段），funnelType为空时不过滤类型。
// includeGlobal 为true时附带平台级模板漏斗（is_global_default）。
func (r *FunnelRepository) ListByOrganization(orgID, funnelType string, includeGlobal bool) ([]model.Funnel, error) {
	var funnels []model.Funnel
	query := r.db.Where("organization_id = ?", orgID)
	if includeGlobal {
		query = r.db.Where("organization_id = ? OR is_global_default = ?", orgID, true)
	}
	if funnelType != "" {
		query = query.Where("type = ?", funnelType)
	}
	err := query.
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("position ASC, created_at ASC").
		Find(&funnels).Error
	return funnels, err
}

// FindByID 按组织和ID获取漏斗（含有序阶段）
func (r *FunnelRepository) FindByID(orgID, id string) (*model.Funnel, error) {
	var f model.Funnel
	err := r.db.Where("organization_id = ? AND id = ?", orgID, id).
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// FindDefault 获取组织下某类型的默认漏斗，没有标记默认时退回该类型第一个
func (r *FunnelRepository) FindDefault(orgID, funnelType string) (*model.Funnel, error) {
	var f model.Funnel
	err := r.db.Where("organization_id = ? AND type = ? AND is_default = ?", orgID, funnelType, true).
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&f).Error
	if err == gorm.ErrRecordNotFound {
		err = r.db.Where("organization_id = ? AND type = ?", orgID, funnelType).
			Preload("Stages", func(db *gorm.DB) *gorm.DB {
				return db.Order("position ASC")
			}).
			Order("created_at ASC").
			First(&f).Error
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CountByType 统计组织下某类型漏斗数量
func (r *FunnelRepository) CountByType(orgID, funnelType string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Funnel{}).
		Where("organization_id = ? AND type = ?", orgID, funnelType).
		Count(&count).Error
	return count, err
}

// Create 创建漏斗及其全部阶段（单事务）
func (r *FunnelRepository) Create(f *model.Funnel) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		stages := f.Stages
		f.Stages = nil
		if err := tx.Create(f).Error; err != nil {
			return err
		}
		for i := range stages {
			if err := tx.Create(&stages[i]).Error; err != nil {
				return err
			}
		}
		f.Stages = stages
		return nil
	})
}

// Update 更新漏斗并整体替换阶段列表（单事务）
// f.Stages 中不存在的旧阶段会被删除，带ID的阶段按ID更新，新阶段插入
func (r *FunnelRepository) Update(f *model.Funnel) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		stages := f.Stages
		f.Stages = nil
		if err := tx.Save(f).Error; err != nil {
			return err
		}

		keepIDs := make([]string, 0, len(stages))
		for i := range stages {
			keepIDs = append(keepIDs, stages[i].ID)
		}
		del := tx.Where("funnel_id = ?", f.ID)
		if len(keepIDs) > 0 {
			del = del.Where("id NOT IN ?", keepIDs)
		}
		if err := del.Delete(&model.FunnelStage{}).Error; err != nil {
			return err
		}

		for i := range stages {
			if err := tx.Save(&stages[i]).Error; err != nil {
				return err
			}
		}
		f.Stages = stages
		return nil
	})
}

// Delete 删除漏斗及其全部阶段（单事务）
func (r *FunnelRepository) Delete(orgID, id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("funnel_id = ?", id).Delete(&model.FunnelStage{}).Error; err != nil {
			return err
		}
		return tx.Where("organization_id = ? AND id = ?", orgID, id).
			Delete(&model.Funnel{}).Error
	})
}

// CountTickets 统计漏斗下的工单数，用于删除前检查
func (r *FunnelRepository) CountTickets(orgID, funnelID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.ServiceTicket{}).
		Where("organization_id = ? AND funnel_id = ?", orgID, funnelID).
		Count(&count).Error
	return count, err
}
