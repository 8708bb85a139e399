package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ChatMessage 一条对话消息
type ChatMessage struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// providerCall 单次补全调用的参数
type providerCall struct {
	Provider    string
	Model       string
	APIKey      string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderDeepSeek  = "deepseek"
)

// chat 调用配置的AI服务商，返回模型输出文本
func chat(ctx context.Context, client *http.Client, call *providerCall) (string, error) {
	switch call.Provider {
	case ProviderAnthropic:
		return chatAnthropic(ctx, client, call)
	case ProviderOpenAI, ProviderDeepSeek:
		return chatOpenAI(ctx, client, call)
	default:
		return "", fmt.Errorf("不支持的AI服务商: %s", call.Provider)
	}
}

func providerBaseURL(provider string) string {
	if provider == ProviderDeepSeek {
		return "https://api.deepseek.com/v1/chat/completions"
	}
	return "https://api.openai.com/v1/chat/completions"
}

// chatOpenAI OpenAI兼容的chat completions接口（OpenAI、DeepSeek）
func chatOpenAI(ctx context.Context, client *http.Client, call *providerCall) (string, error) {
	body := map[string]interface{}{
		"model":       call.Model,
		"messages":    call.Messages,
		"temperature": call.Temperature,
		"max_tokens":  call.MaxTokens,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, providerBaseURL(call.Provider), bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+call.APIKey)

	respBody, err := doRequest(client, req)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("解析AI响应失败: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("AI没有返回任何结果")
	}
	return parsed.Choices[0].Message.Content, nil
}

// chatAnthropic Anthropic messages接口
// system消息走独立的system字段，不在messages数组里
func chatAnthropic(ctx context.Context, client *http.Client, call *providerCall) (string, error) {
	system := ""
	messages := make([]ChatMessage, 0, len(call.Messages))
	for _, m := range call.Messages {
		if m.Role == "system" {
			system = m.Content
			continue
		}
		messages = append(messages, m)
	}

	body := map[string]interface{}{
		"model":       call.Model,
		"messages":    messages,
		"temperature": call.Temperature,
		"max_tokens":  call.MaxTokens,
	}
	if system != "" {
		body["system"] = system
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.anthropic.com/v1/messages", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", call.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	respBody, err := doRequest(client, req)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("解析AI响应失败: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("AI没有返回任何结果")
	}
	return parsed.Content[0].Text, nil
}

func doRequest(client *http.Client, req *http.Request) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求AI服务商失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("AI服务商认证失败，请检查API Key配置")
	case resp.StatusCode == http.StatusPaymentRequired:
		return nil, fmt.Errorf("AI服务商余额不足")
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("AI服务商返回错误 %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
