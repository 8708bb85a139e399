package system

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/repository"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/crypto"
)

type SettingHandler struct {
	repo   *repository.SettingRepository
	crypto *crypto.Crypto
}

func NewSettingHandler(repo *repository.SettingRepository, c *crypto.Crypto) *SettingHandler {
	return &SettingHandler{repo: repo, crypto: c}
}

// GetAllSettings 获取组织的所有配置，敏感项脱敏
// @Summary 获取组织配置
// @Tags settings
// @Produce json
// @Success 200 {object} model.Response
// @Router /api/v1/settings [get]
func (h *SettingHandler) GetAllSettings(c *gin.Context) {
	settings, err := h.repo.GetAll(c.GetString("organization_id"))
	if err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "获取配置失败")
		return
	}

	for i := range settings {
		if model.SensitiveSettingKeys[settings[i].Key] && settings[i].Value != "" {
			settings[i].Value = "******"
		}
	}

	c.JSON(http.StatusOK, model.Success(settings))
}

// UpdateSetting 更新单个配置，敏感项加密落库
// @Summary 更新配置
// @Tags settings
// @Accept json
// @Produce json
// @Param request body model.UpsertSettingRequest true "Setting"
// @Success 200 {object} model.Response
// @Router /api/v1/settings [put]
func (h *SettingHandler) UpdateSetting(c *gin.Context) {
	var req model.UpsertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	value := req.Value
	if model.SensitiveSettingKeys[req.Key] && value != "" && !h.crypto.IsEncrypted(value) {
		encrypted, err := h.crypto.Encrypt(value)
		if err != nil {
			model.HandleError(c, http.StatusInternalServerError, err, "配置加密失败")
			return
		}
		value = encrypted
	}

	category := req.Category
	if category == "" {
		category = "general"
	}

	setting := &model.Setting{
		ID:             uuid.New().String(),
		OrganizationID: c.GetString("organization_id"),
		Key:            req.Key,
		Value:          value,
		Category:       category,
		UpdatedBy:      c.GetString("user_id"),
	}
	if err := h.repo.Upsert(setting); err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "保存配置失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(nil))
}

// DeleteSetting 删除配置
// @Summary 删除配置
// @Tags settings
// @Produce json
// @Param key path string true "Setting key"
// @Success 200 {object} model.Response
// @Router /api/v1/settings/{key} [delete]
func (h *SettingHandler) DeleteSetting(c *gin.Context) {
	if err := h.repo.Delete(c.GetString("organization_id"), c.Param("key")); err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "删除配置失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(nil))
}
