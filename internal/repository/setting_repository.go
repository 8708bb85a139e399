package repository

import (
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"gorm.io/gorm"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// GetAll 获取组织的所有配置
func (r *SettingRepository) GetAll(orgID string) ([]model.Setting, error) {
	var settings []model.Setting
	err := r.db.Where("organization_id = ?", orgID).
		Order("category ASC, `key` ASC").
		Find(&settings).Error
	return settings, err
}

// GetByKey 获取单个配置，不存在时返回 nil, nil
func (r *SettingRepository) GetByKey(orgID, key string) (*model.Setting, error) {
	var setting model.Setting
	err := r.db.Where("organization_id = ? AND `key` = ?", orgID, key).First(&setting).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// Get 获取配置值，不存在时返回空串
func (r *SettingRepository) Get(orgID, key string) (string, error) {
	setting, err := r.GetByKey(orgID, key)
	if err != nil {
		return "", err
	}
	if setting == nil {
		return "", nil
	}
	return setting.Value, nil
}

// Upsert 更新或插入配置
func (r *SettingRepository) Upsert(setting *model.Setting) error {
	var existing model.Setting
	err := r.db.Where("organization_id = ? AND `key` = ?", setting.OrganizationID, setting.Key).
		First(&existing).Error

	if err == gorm.ErrRecordNotFound {
		return r.db.Create(setting).Error
	} else if err != nil {
		return err
	}

	existing.Value = setting.Value
	existing.Category = setting.Category
	existing.UpdatedBy = setting.UpdatedBy
	return r.db.Save(&existing).Error
}

// Delete 删除配置
func (r *SettingRepository) Delete(orgID, key string) error {
	return r.db.Where("organization_id = ? AND `key` = ?", orgID, key).
		Delete(&model.Setting{}).Error
}
