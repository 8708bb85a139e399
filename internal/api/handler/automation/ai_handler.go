package automation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/service/ai"
)

type AIHandler struct {
	service *ai.Service
}

func NewAIHandler(service *ai.Service) *AIHandler {
	return &AIHandler{service: service}
}

// Interpret 把自然语言描述解释成结构化自动化定义
// @Summary AI解释自动化
// @Tags automations
// @Accept json
// @Produce json
// @Param request body ai.InterpretRequest true "Interpret"
// @Success 200 {object} model.Response
// @Failure 422 {object} model.Response "模型未产出有效定义"
// @Router /api/v1/automations/ai-interpret [post]
func (h *AIHandler) Interpret(c *gin.Context) {
	var req ai.InterpretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	orgID := c.GetString("organization_id")
	result, err := h.service.Interpret(c.Request.Context(), orgID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrNotConfigured):
			c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		case errors.Is(err, ai.ErrInvalidAIOutput):
			// 带上原始回复，方便前端展示模型到底说了什么
			c.JSON(http.StatusUnprocessableEntity, model.Response{
				Code:    http.StatusUnprocessableEntity,
				Message: err.Error(),
				Data:    result,
			})
		default:
			model.HandleError(c, http.StatusBadGateway, err, "AI解释失败")
		}
		return
	}

	c.JSON(http.StatusOK, model.Success(result))
}

// ConfigureAI 配置组织的AI服务商
// @Summary 配置AI服务商
// @Tags automations
// @Accept json
// @Produce json
// @Success 200 {object} model.Response
// @Router /api/v1/automations/ai-settings [put]
func (h *AIHandler) ConfigureAI(c *gin.Context) {
	var req struct {
		Provider string `json:"provider" binding:"required,oneof=openai anthropic deepseek"`
		Model    string `json:"model"`
		APIKey   string `json:"apiKey"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	err := h.service.Configure(c.GetString("organization_id"), c.GetString("user_id"), req.Provider, req.Model, req.APIKey)
	if err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "保存AI配置失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(nil))
}

// GetAISettings 获取组织的AI配置（API Key脱敏）
// @Summary 获取AI配置
// @Tags automations
// @Produce json
// @Success 200 {object} model.Response
// @Router /api/v1/automations/ai-settings [get]
func (h *AIHandler) GetAISettings(c *gin.Context) {
	settings, err := h.service.Settings(c.GetString("organization_id"))
	if err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "获取AI配置失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(settings))
}
