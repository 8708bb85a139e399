package notification

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookNotifierSend(t *testing.T) {
	var gotBody []byte
	var gotSignature string
	var gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSignature = r.Header.Get("X-Rendizy-Signature")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, "test-secret")
	err := n.Send("ticket.stage_changed", map[string]interface{}{
		"ticketId":  "t1",
		"fromStage": "s1",
		"toStage":   "s2",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}

	var body struct {
		Event     string                 `json:"event"`
		Timestamp int64                  `json:"timestamp"`
		Data      map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(gotBody, &body); err != nil {
		t.Fatalf("请求体不是合法JSON: %v", err)
	}
	if body.Event != "ticket.stage_changed" {
		t.Errorf("event = %q", body.Event)
	}
	if body.Timestamp == 0 {
		t.Error("timestamp 不应为空")
	}
	if body.Data["ticketId"] != "t1" || body.Data["toStage"] != "s2" {
		t.Errorf("data 字段不完整: %v", body.Data)
	}

	// 签名必须是对原始请求体的HMAC-SHA256
	h := hmac.New(sha256.New, []byte("test-secret"))
	h.Write(gotBody)
	want := hex.EncodeToString(h.Sum(nil))
	if gotSignature != want {
		t.Errorf("签名不匹配: got %s, want %s", gotSignature, want)
	}
}

func TestWebhookNotifierNoSecret(t *testing.T) {
	var gotSignature string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Rendizy-Signature")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, "")
	if err := n.Send("ticket.sla_breached", map[string]interface{}{"ticketId": "t1"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotSignature != "" {
		t.Errorf("未配置Secret时不应携带签名头, got %q", gotSignature)
	}
}

func TestWebhookNotifierNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, "")
	if err := n.Send("ticket.stage_changed", nil); err == nil {
		t.Error("非2xx响应应返回错误")
	}
}

func TestManagerNotifiers(t *testing.T) {
	m := NewManager()
	if m.NotifiersCount() != 0 {
		t.Errorf("初始通知器数 = %d", m.NotifiersCount())
	}
	m.AddNotifier(NewWebhookNotifier("http://example.com", ""))
	m.AddNotifier(NewWebhookNotifier("http://example.org", "s"))
	if m.NotifiersCount() != 2 {
		t.Errorf("通知器数 = %d, want 2", m.NotifiersCount())
	}
	m.SetEnabled(false)
	// 关闭后分发应直接返回，不触发任何请求
	m.SendTicketMoved("org1", "t1", "título", "s1", "s2", "u1")
}
