package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/repository"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/crypto"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/logger"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/metrics"
)

// AutomationTrigger 自动化触发条件
type AutomationTrigger struct {
	Type      string      `json:"type"`
	Field     string      `json:"field,omitempty"`
	Operator  string      `json:"operator,omitempty"`
	Value     interface{} `json:"value,omitempty"`
	Schedule  string      `json:"schedule,omitempty"`
	Threshold *float64    `json:"threshold,omitempty"`
}

// AutomationCondition 自动化附加条件
type AutomationCondition struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// AutomationAction 自动化动作
type AutomationAction struct {
	Type     string                 `json:"type"`
	Channel  string                 `json:"channel,omitempty"`
	Template string                 `json:"template,omitempty"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
}

// AutomationMetadata 自动化元信息
type AutomationMetadata struct {
	Priority         string   `json:"priority,omitempty"`
	RequiresApproval bool     `json:"requiresApproval,omitempty"`
	NotifyChannels   []string `json:"notifyChannels,omitempty"`
}

// AutomationDefinition 结构化的自动化定义
type AutomationDefinition struct {
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Trigger     *AutomationTrigger    `json:"trigger"`
	Conditions  []AutomationCondition `json:"conditions,omitempty"`
	Actions     []AutomationAction    `json:"actions"`
	Metadata    *AutomationMetadata   `json:"metadata,omitempty"`
}

// valid 判断定义是否完整：必须有名称、触发条件和至少一个动作
func (d *AutomationDefinition) valid() bool {
	return d != nil && d.Name != "" && d.Trigger != nil && len(d.Actions) > 0
}

// InterpretRequest 自然语言转自动化请求
type InterpretRequest struct {
	Input               string        `json:"input" binding:"required"`
	Modules             []string      `json:"modules"`
	Properties          []string      `json:"properties"`
	Channel             string        `json:"channel"`
	Priority            string        `json:"priority"`
	Language            string        `json:"language"`
	ConversationMode    bool          `json:"conversationMode"`
	ConversationHistory []ChatMessage `json:"conversationHistory"`
}

// InterpretResult 解释结果。
// Definition为nil且Conversational为true表示模型在追问，前端应继续对话。
type InterpretResult struct {
	Definition     *AutomationDefinition `json:"definition"`
	Summary        string                `json:"aiInterpretationSummary,omitempty"`
	Impact         string                `json:"impactDescription,omitempty"`
	Conversational bool                  `json:"conversational"`
	RawText        string                `json:"rawText"`
	Provider       string                `json:"provider"`
	Model          string                `json:"model"`
}

// ErrInvalidAIOutput 非对话模式下模型没有产出有效的自动化定义（422）
var ErrInvalidAIOutput = errors.New("AI返回的格式无效，请换个说法或补充更多细节")

// ErrNotConfigured 组织还没有配置AI服务商（400）
var ErrNotConfigured = errors.New("尚未配置AI服务商，请先在设置中配置")

const systemPrompt = `Você é o copiloto responsável por converter comandos em linguagem natural em automações configuráveis dentro do sistema Rendizy.

REGRAS IMPORTANTES:
1. Se você precisa de mais informações, responda de forma CONVERSACIONAL (texto livre, sem JSON) fazendo perguntas específicas.
2. Quando tiver TODAS as informações necessárias, retorne APENAS um JSON válido seguindo este schema:
{
  "definition": {
    "name": string,
    "description": string,
    "trigger": {"type": string, "field": string | null, "operator": string | null, "value": any, "schedule": string | null, "threshold": number | null},
    "conditions": [{"field": string, "operator": string, "value": any}],
    "actions": [{"type": string, "channel": string | null, "template": string | null, "payload": object}],
    "metadata": {"priority": "baixa" | "media" | "alta", "requiresApproval": boolean, "notifyChannels": string[]}
  },
  "ai_interpretation_summary": string,
  "impact_description": string
}
3. Use sempre snake_case para campos e valores chave.
4. Se faltar informação crítica, NÃO gere JSON. Faça perguntas conversacionais.
5. Se faltar informação não-crítica, faça suposições razoáveis e indique em metadata.requiresApproval = true.
6. CRÍTICO: O JSON deve começar com { e terminar com }. Não use blocos de código markdown. Não adicione explicações antes ou depois do JSON.`

// Service 自然语言自动化解释服务
type Service struct {
	settings *repository.SettingRepository
	crypto   *crypto.Crypto
	client   *http.Client
}

// NewService 创建AI服务
func NewService(settings *repository.SettingRepository, c *crypto.Crypto) *Service {
	return &Service{
		settings: settings,
		crypto:   c,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Interpret 把自然语言描述解释成结构化自动化定义
func (s *Service) Interpret(ctx context.Context, orgID string, req *InterpretRequest) (*InterpretResult, error) {
	if len(strings.TrimSpace(req.Input)) < 10 {
		return nil, errors.New("请更详细地描述这条自动化（至少10个字符）")
	}

	call, err := s.providerCallFor(orgID)
	if err != nil {
		return nil, err
	}

	call.Messages = s.buildMessages(req)
	call.Temperature = 0.1
	if req.ConversationMode {
		call.Temperature = 0.3
	}
	call.MaxTokens = 2000

	text, err := chat(ctx, s.client, call)
	if err != nil {
		metrics.AIInterpretTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	result := &InterpretResult{
		RawText:  text,
		Provider: call.Provider,
		Model:    call.Model,
	}

	raw, found := ExtractJSON(text)
	if found {
		result.Definition, result.Summary, result.Impact = parseDefinition(raw)
	}

	if !result.Definition.valid() {
		result.Definition = nil
		result.Conversational = true
		if !req.ConversationMode {
			metrics.AIInterpretTotal.WithLabelValues("invalid").Inc()
			logger.Warnf("AI interpret produced no valid definition for org %s: %s", orgID, truncate(text, 200))
			return result, ErrInvalidAIOutput
		}
		metrics.AIInterpretTotal.WithLabelValues("conversational").Inc()
		return result, nil
	}

	metrics.AIInterpretTotal.WithLabelValues("ok").Inc()
	return result, nil
}

// parseDefinition 解析提取出的JSON。
// 兼容两种形态：带definition包装的新格式，以及JSON本身就是definition的旧格式。
func parseDefinition(raw json.RawMessage) (*AutomationDefinition, string, string) {
	var wrapped struct {
		Definition *AutomationDefinition `json:"definition"`
		Summary    string                `json:"ai_interpretation_summary"`
		Impact     string                `json:"impact_description"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Definition != nil {
		return wrapped.Definition, wrapped.Summary, wrapped.Impact
	}

	var direct AutomationDefinition
	if err := json.Unmarshal(raw, &direct); err == nil {
		return &direct, "", ""
	}
	return nil, "", ""
}

func (s *Service) buildMessages(req *InterpretRequest) []ChatMessage {
	messages := []ChatMessage{{Role: "system", Content: systemPrompt}}

	// 只保留最近10条历史，避免超出上下文窗口
	history := req.ConversationHistory
	if len(history) > 10 {
		history = history[len(history)-10:]
	}
	messages = append(messages, history...)

	modulesContext := "Módulo: financeiro (padrão)"
	if len(req.Modules) > 0 {
		modulesContext = "Módulos relacionados: " + strings.Join(req.Modules, ", ")
	}
	propertiesContext := "Esta automação é GLOBAL (aplica-se a todos os imóveis)."
	if len(req.Properties) > 0 {
		propertiesContext = fmt.Sprintf("Esta automação se aplica a %d imóvel(is) específico(s).", len(req.Properties))
	}
	channel := req.Channel
	if channel == "" {
		channel = "chat"
	}
	priority := req.Priority
	if priority == "" {
		priority = "media"
	}
	language := req.Language
	if language == "" {
		language = "pt-BR"
	}

	messages = append(messages, ChatMessage{
		Role: "user",
		Content: fmt.Sprintf(`Contexto:
- %s
- %s
- Canal desejado: %s
- Prioridade: %s
- Idioma esperado: %s

Pedido do usuário:
"""
%s
"""`, modulesContext, propertiesContext, channel, priority, language, strings.TrimSpace(req.Input)),
	})

	return messages
}

// providerCallFor 读取组织的AI配置（API Key解密后使用）
func (s *Service) providerCallFor(orgID string) (*providerCall, error) {
	provider, err := s.settings.Get(orgID, model.SettingAIProvider)
	if err != nil {
		return nil, err
	}
	if provider == "" {
		return nil, ErrNotConfigured
	}

	encryptedKey, err := s.settings.Get(orgID, model.SettingAIAPIKey)
	if err != nil {
		return nil, err
	}
	if encryptedKey == "" {
		return nil, ErrNotConfigured
	}

	apiKey := encryptedKey
	if s.crypto.IsEncrypted(encryptedKey) {
		apiKey, err = s.crypto.Decrypt(encryptedKey)
		if err != nil {
			return nil, fmt.Errorf("解密API Key失败: %w", err)
		}
	}

	aiModel, err := s.settings.Get(orgID, model.SettingAIModel)
	if err != nil {
		return nil, err
	}
	if aiModel == "" {
		aiModel = defaultModelFor(provider)
	}

	return &providerCall{Provider: provider, Model: aiModel, APIKey: apiKey}, nil
}

func newSettingID() string {
	return uuid.New().String()
}

func defaultModelFor(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "claude-3-5-sonnet-20241022"
	case ProviderDeepSeek:
		return "deepseek-chat"
	default:
		return "gpt-4o-mini"
	}
}

// Configure 保存组织的AI服务商配置，API Key加密落库
func (s *Service) Configure(orgID, actorID, provider, aiModel, apiKey string) error {
	switch provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderDeepSeek:
	default:
		return fmt.Errorf("不支持的AI服务商: %s", provider)
	}

	if err := s.settings.Upsert(&model.Setting{
		ID:             newSettingID(),
		OrganizationID: orgID,
		Key:            model.SettingAIProvider,
		Value:          provider,
		Category:       "ai",
		UpdatedBy:      actorID,
	}); err != nil {
		return err
	}

	if aiModel != "" {
		if err := s.settings.Upsert(&model.Setting{
			ID:             newSettingID(),
			OrganizationID: orgID,
			Key:            model.SettingAIModel,
			Value:          aiModel,
			Category:       "ai",
			UpdatedBy:      actorID,
		}); err != nil {
			return err
		}
	}

	if apiKey != "" {
		encrypted, err := s.crypto.Encrypt(apiKey)
		if err != nil {
			return fmt.Errorf("加密API Key失败: %w", err)
		}
		if err := s.settings.Upsert(&model.Setting{
			ID:             newSettingID(),
			OrganizationID: orgID,
			Key:            model.SettingAIAPIKey,
			Value:          encrypted,
			Category:       "ai",
			UpdatedBy:      actorID,
		}); err != nil {
			return err
		}
	}

	return nil
}

// Settings 返回组织的AI配置视图（API Key只暴露是否已配置）
func (s *Service) Settings(orgID string) (*model.AISettings, error) {
	provider, err := s.settings.Get(orgID, model.SettingAIProvider)
	if err != nil {
		return nil, err
	}
	aiModel, err := s.settings.Get(orgID, model.SettingAIModel)
	if err != nil {
		return nil, err
	}
	key, err := s.settings.Get(orgID, model.SettingAIAPIKey)
	if err != nil {
		return nil, err
	}

	return &model.AISettings{
		Provider:  provider,
		Model:     aiModel,
		HasAPIKey: key != "",
	}, nil
}
