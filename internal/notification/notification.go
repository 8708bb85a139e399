package notification

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/logger"
)

// Notifier 通知接口
type Notifier interface {
	Send(event string, payload map[string]interface{}) error
}

// WebhookNotifier 通用Webhook通知器
// 向配置的URL发送JSON事件，配置了Secret时附带HMAC-SHA256签名头
type WebhookNotifier struct {
	WebhookURL string
	Secret     string
	client     *http.Client
}

// NewWebhookNotifier 创建Webhook通知器
func NewWebhookNotifier(webhookURL, secret string) *WebhookNotifier {
	return &WebhookNotifier{
		WebhookURL: webhookURL,
		Secret:     secret,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Send 发送事件
func (n *WebhookNotifier) Send(event string, payload map[string]interface{}) error {
	body := map[string]interface{}{
		"event":     event,
		"timestamp": time.Now().Unix(),
		"data":      payload,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, n.WebhookURL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.Secret != "" {
		req.Header.Set("X-Rendizy-Signature", n.sign(raw))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (n *WebhookNotifier) sign(body []byte) string {
	h := hmac.New(sha256.New, []byte(n.Secret))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Manager 通知管理器，把业务事件异步分发给全部通知器
type Manager struct {
	notifiers []Notifier
	enabled   bool
	mu        sync.RWMutex
}

// NewManager 创建通知管理器
func NewManager() *Manager {
	return &Manager{
		notifiers: make([]Notifier, 0),
		enabled:   true,
	}
}

// SetEnabled 设置是否启用通知
func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// AddNotifier 添加通知器
func (m *Manager) AddNotifier(notifier Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifiers = append(m.notifiers, notifier)
}

// NotifiersCount 获取通知器数量
func (m *Manager) NotifiersCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.notifiers)
}

// dispatch 异步分发事件，失败只记日志不影响业务
func (m *Manager) dispatch(event string, payload map[string]interface{}) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.enabled || len(m.notifiers) == 0 {
		return
	}

	for _, notifier := range m.notifiers {
		go func(n Notifier) {
			if err := n.Send(event, payload); err != nil {
				logger.Warnf("[Notification] Failed to send %s event: %v", event, err)
			}
		}(notifier)
	}
}

// SendTicketMoved 工单阶段变更通知
func (m *Manager) SendTicketMoved(orgID, ticketID, title, fromStage, toStage, actor string) {
	m.dispatch("ticket.stage_changed", map[string]interface{}{
		"organizationId": orgID,
		"ticketId":       ticketID,
		"title":          title,
		"fromStage":      fromStage,
		"toStage":        toStage,
		"actor":          actor,
	})
}

// SendApprovalDecision 审批决定通知
func (m *Manager) SendApprovalDecision(orgID, ticketID, stageID, decision, decidedBy, comment string) {
	m.dispatch("ticket.approval_decided", map[string]interface{}{
		"organizationId": orgID,
		"ticketId":       ticketID,
		"stageId":        stageID,
		"decision":       decision,
		"decidedBy":      decidedBy,
		"comment":        comment,
	})
}

// SendSLABreach SLA超期通知
func (m *Manager) SendSLABreach(orgID, ticketID, title string, dueAt time.Time) {
	m.dispatch("ticket.sla_breached", map[string]interface{}{
		"organizationId": orgID,
		"ticketId":       ticketID,
		"title":          title,
		"dueAt":          dueAt.Format(time.RFC3339),
	})
}
