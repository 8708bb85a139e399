package crm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/repository"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/logger"
)

// FunnelService 漏斗定义的CRUD、复制与删除保护
type FunnelService struct {
	repo        *repository.FunnelRepository
	redisClient *goredis.Client
	cacheTTL    time.Duration
}

// NewFunnelService 创建漏斗服务
// redisClient 允许为nil（未启用Redis时漏斗读取直达数据库）
func NewFunnelService(repo *repository.FunnelRepository, redisClient *goredis.Client, cacheTTLSeconds int) *FunnelService {
	if cacheTTLSeconds <= 0 {
		cacheTTLSeconds = 60
	}
	return &FunnelService{
		repo:        repo,
		redisClient: redisClient,
		cacheTTL:    time.Duration(cacheTTLSeconds) * time.Second,
	}
}

func funnelCacheKey(orgID, funnelID string) string {
	return fmt.Sprintf("crm:funnel:%s:%s", orgID, funnelID)
}

// List 列出组织的漏斗，funnelType为空时返回全部类型；
// includeGlobal 为true时附带平台级模板漏斗
func (s *FunnelService) List(orgID, funnelType string, includeGlobal bool) ([]model.Funnel, error) {
	return s.repo.ListByOrganization(orgID, funnelType, includeGlobal)
}

// Get 获取漏斗（含有序阶段），优先走Redis缓存
func (s *FunnelService) Get(orgID, funnelID string) (*model.Funnel, error) {
	if s.redisClient != nil {
		cached, err := s.redisClient.Get(context.Background(), funnelCacheKey(orgID, funnelID)).Result()
		if err == nil {
			var f model.Funnel
			if jsonErr := json.Unmarshal([]byte(cached), &f); jsonErr == nil {
				return &f, nil
			}
			// 缓存内容损坏时当作未命中
		} else if !errors.Is(err, goredis.Nil) {
			logger.Debugf("Funnel cache read failed: %v", err)
		}
	}

	f, err := s.repo.FindByID(orgID, funnelID)
	if err != nil {
		return nil, err
	}

	s.cacheFunnel(f)
	return f, nil
}

// GetDefault 获取组织下某类型的默认漏斗
func (s *FunnelService) GetDefault(orgID, funnelType string) (*model.Funnel, error) {
	return s.repo.FindDefault(orgID, funnelType)
}

func (s *FunnelService) cacheFunnel(f *model.Funnel) {
	if s.redisClient == nil {
		return
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return
	}
	if err := s.redisClient.Set(context.Background(), funnelCacheKey(f.OrganizationID, f.ID), raw, s.cacheTTL).Err(); err != nil {
		logger.Debugf("Funnel cache write failed: %v", err)
	}
}

func (s *FunnelService) invalidate(orgID, funnelID string) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(context.Background(), funnelCacheKey(orgID, funnelID)).Err(); err != nil {
		logger.Debugf("Funnel cache invalidation failed: %v", err)
	}
}

// applyFunnelConfig 序列化标签文案和扩展配置到漏斗模型
func applyFunnelConfig(f *model.Funnel, statusCfg *model.FunnelStatusConfig, metadata map[string]interface{}) error {
	if statusCfg != nil {
		raw, err := json.Marshal(statusCfg)
		if err != nil {
			return fmt.Errorf("序列化标签配置失败: %w", err)
		}
		f.StatusConfig = raw
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("序列化扩展配置失败: %w", err)
		}
		f.Metadata = raw
	}
	return nil
}

// buildStages 把阶段定义转成持久化模型，Position按列表顺序重排
func buildStages(funnelID string, inputs []model.StageInput) ([]model.FunnelStage, error) {
	stages := make([]model.FunnelStage, 0, len(inputs))
	for i, in := range inputs {
		stage := model.FunnelStage{
			ID:         in.ID,
			FunnelID:   funnelID,
			Name:       in.Name,
			Color:      in.Color,
			Position:   i,
			IsResolved: in.IsResolved,
		}
		if stage.ID == "" {
			stage.ID = uuid.New().String()
		}
		if stage.Color == "" {
			stage.Color = "#3b82f6"
		}
		if in.Requirements != nil && !in.Requirements.IsEmpty() {
			raw, err := json.Marshal(in.Requirements)
			if err != nil {
				return nil, fmt.Errorf("序列化阶段要求失败: %w", err)
			}
			stage.Requirements = raw
		}
		stages = append(stages, stage)
	}
	return stages, nil
}

// Create 创建漏斗。未提供阶段时使用该类型的默认阶段集；
// 组织内该类型的第一个漏斗自动标记为默认。
func (s *FunnelService) Create(orgID string, req *model.CreateFunnelRequest) (*model.Funnel, error) {
	inputs := req.Stages
	if len(inputs) == 0 {
		inputs = model.DefaultStageSet(req.Type)
	}
	if len(inputs) == 0 {
		return nil, errors.New("漏斗至少需要一个阶段")
	}

	count, err := s.repo.CountByType(orgID, req.Type)
	if err != nil {
		return nil, err
	}

	f := &model.Funnel{
		ID:                uuid.New().String(),
		OrganizationID:    orgID,
		Name:              req.Name,
		Type:              req.Type,
		Description:       req.Description,
		IsDefault:         count == 0,
		EnforceSequential: req.EnforceSequential,
		Position:          int(count),
	}
	if err := applyFunnelConfig(f, req.StatusConfig, req.Metadata); err != nil {
		return nil, err
	}

	stages, err := buildStages(f.ID, inputs)
	if err != nil {
		return nil, err
	}
	f.Stages = stages

	if err := s.repo.Create(f); err != nil {
		return nil, fmt.Errorf("创建漏斗失败: %w", err)
	}

	logger.Infof("Funnel created: %s (%s) with %d stages, org=%s", f.Name, f.Type, len(f.Stages), orgID)
	return f, nil
}

// Update 更新漏斗并整体替换阶段列表
func (s *FunnelService) Update(orgID, funnelID string, req *model.UpdateFunnelRequest) (*model.Funnel, error) {
	f, err := s.repo.FindByID(orgID, funnelID)
	if err != nil {
		return nil, err
	}

	if len(req.Stages) == 0 {
		return nil, errors.New("漏斗至少需要一个阶段")
	}

	// 带ID的阶段必须原本就属于该漏斗，防止越权挪用其他漏斗的阶段
	existing := make(map[string]bool, len(f.Stages))
	for _, st := range f.Stages {
		existing[st.ID] = true
	}
	for _, in := range req.Stages {
		if in.ID != "" && !existing[in.ID] {
			return nil, ErrStageNotInFunnel
		}
	}

	f.Name = req.Name
	f.Description = req.Description
	f.EnforceSequential = req.EnforceSequential
	if err := applyFunnelConfig(f, req.StatusConfig, req.Metadata); err != nil {
		return nil, err
	}

	stages, err := buildStages(f.ID, req.Stages)
	if err != nil {
		return nil, err
	}
	f.Stages = stages

	if err := s.repo.Update(f); err != nil {
		return nil, fmt.Errorf("更新漏斗失败: %w", err)
	}

	s.invalidate(orgID, funnelID)
	return f, nil
}

// Duplicate 复制漏斗：克隆全部阶段（含要求配置），新漏斗不继承默认标记
func (s *FunnelService) Duplicate(orgID, funnelID string, req *model.DuplicateFunnelRequest) (*model.Funnel, error) {
	src, err := s.repo.FindByID(orgID, funnelID)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = src.Name + " (cópia)"
	}

	count, err := s.repo.CountByType(orgID, src.Type)
	if err != nil {
		return nil, err
	}

	clone := &model.Funnel{
		ID:                uuid.New().String(),
		OrganizationID:    orgID,
		Name:              name,
		Type:              src.Type,
		Description:       src.Description,
		IsDefault:         false,
		EnforceSequential: src.EnforceSequential,
		StatusConfig:      src.StatusConfig,
		Metadata:          src.Metadata,
		Position:          int(count),
	}

	for _, st := range src.Stages {
		clone.Stages = append(clone.Stages, model.FunnelStage{
			ID:           uuid.New().String(),
			FunnelID:     clone.ID,
			Name:         st.Name,
			Color:        st.Color,
			Position:     st.Position,
			IsResolved:   st.IsResolved,
			Requirements: st.Requirements,
		})
	}

	if err := s.repo.Create(clone); err != nil {
		return nil, fmt.Errorf("复制漏斗失败: %w", err)
	}

	logger.Infof("Funnel duplicated: %s -> %s, org=%s", src.ID, clone.ID, orgID)
	return clone, nil
}

// Delete 删除漏斗。
// 保护：平台级模板漏斗不可删除；不能删除某类型的最后一个漏斗；
// 漏斗下仍有工单时拒绝删除。
func (s *FunnelService) Delete(orgID, funnelID string) error {
	f, err := s.repo.FindByID(orgID, funnelID)
	if err != nil {
		return err
	}

	if f.IsGlobalDefault {
		return ErrGlobalDefaultFunnel
	}

	count, err := s.repo.CountByType(orgID, f.Type)
	if err != nil {
		return err
	}
	if count <= 1 {
		return ErrLastFunnelOfType
	}

	tickets, err := s.repo.CountTickets(orgID, funnelID)
	if err != nil {
		return err
	}
	if tickets > 0 {
		return ErrFunnelHasTickets
	}

	if err := s.repo.Delete(orgID, funnelID); err != nil {
		return fmt.Errorf("删除漏斗失败: %w", err)
	}

	s.invalidate(orgID, funnelID)
	logger.Infof("Funnel deleted: %s (%s), org=%s", f.Name, f.Type, orgID)
	return nil
}
