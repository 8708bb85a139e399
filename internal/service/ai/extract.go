package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// ExtractJSON 从AI返回的自由文本中提取JSON对象。
// 模型并不总是听话：JSON可能被markdown代码块包住，也可能混在解释文字中间。
// 依次尝试：
//  1. 整段直接解析
//  2. markdown代码块内容（```json 或裸 ```）
//  3. 文本中第一个配平的花括号片段
//
// 找不到可解析的JSON时返回 nil, false。
func ExtractJSON(text string) (json.RawMessage, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}

	if raw, ok := tryParse(text); ok {
		return raw, true
	}

	for _, match := range fencedBlockRe.FindAllStringSubmatch(text, -1) {
		candidate := strings.TrimSpace(match[1])
		if candidate == "" {
			continue
		}
		if !strings.HasPrefix(candidate, "{") && !strings.HasPrefix(candidate, "[") {
			continue
		}
		if raw, ok := tryParse(candidate); ok {
			return raw, true
		}
	}

	return scanBalanced(text)
}

func tryParse(candidate string) (json.RawMessage, bool) {
	var parsed interface{}
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, false
	}
	return json.RawMessage(candidate), true
}

// scanBalanced 扫描文本中花括号配平的片段并逐个尝试解析
func scanBalanced(text string) (json.RawMessage, bool) {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start != -1 {
				if raw, ok := tryParse(text[start : i+1]); ok {
					return raw, true
				}
				start = -1
			}
		}
	}
	return nil, false
}
