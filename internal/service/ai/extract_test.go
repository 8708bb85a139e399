package ai

import (
	"encoding/json"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFound bool
		wantKey   string
	}{
		{
			name:      "纯JSON直接解析",
			input:     `{"name":"cobranca-atrasada"}`,
			wantFound: true,
			wantKey:   "cobranca-atrasada",
		},
		{
			name:      "带前后空白",
			input:     "\n  {\"name\":\"x\"}  \n",
			wantFound: true,
			wantKey:   "x",
		},
		{
			name:      "markdown代码块",
			input:     "Aqui está:\n```json\n{\"name\":\"lembrete\"}\n```\nPronto.",
			wantFound: true,
			wantKey:   "lembrete",
		},
		{
			name:      "无语言标注的代码块",
			input:     "```\n{\"name\":\"sem-tag\"}\n```",
			wantFound: true,
			wantKey:   "sem-tag",
		},
		{
			name:      "正文夹杂JSON",
			input:     `Criei a automação {"name":"embutida","actions":[]} conforme pedido.`,
			wantFound: true,
			wantKey:   "embutida",
		},
		{
			name:      "字符串里有大括号",
			input:     `resultado: {"name":"a{b}c","note":"fecha}"}`,
			wantFound: true,
			wantKey:   "a{b}c",
		},
		{
			name:      "纯对话文本",
			input:     "Preciso de mais detalhes: qual canal você prefere?",
			wantFound: false,
		},
		{
			name:      "大括号不闭合",
			input:     `{"name":"quebrado"`,
			wantFound: false,
		},
		{
			name:      "空输入",
			input:     "",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, found := ExtractJSON(tt.input)
			if found != tt.wantFound {
				t.Fatalf("ExtractJSON() found = %v, want %v", found, tt.wantFound)
			}
			if !found {
				return
			}
			var obj struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(raw, &obj); err != nil {
				t.Fatalf("提取结果不是合法JSON: %v", err)
			}
			if obj.Name != tt.wantKey {
				t.Errorf("name = %q, want %q", obj.Name, tt.wantKey)
			}
		})
	}
}

func TestParseDefinition(t *testing.T) {
	wrapped := json.RawMessage(`{
		"definition": {
			"name": "notificar-atraso",
			"trigger": {"type": "payment_overdue"},
			"actions": [{"type": "send_message", "channel": "whatsapp"}]
		},
		"ai_interpretation_summary": "Notifica atrasos",
		"impact_description": "Envia mensagem automática"
	}`)

	def, summary, impact := parseDefinition(wrapped)
	if !def.valid() {
		t.Fatal("包装格式应解析出有效定义")
	}
	if def.Name != "notificar-atraso" {
		t.Errorf("name = %q", def.Name)
	}
	if summary != "Notifica atrasos" || impact != "Envia mensagem automática" {
		t.Errorf("summary/impact 解析错误: %q / %q", summary, impact)
	}

	direct := json.RawMessage(`{
		"name": "direto",
		"trigger": {"type": "stage_entered"},
		"actions": [{"type": "create_task"}]
	}`)
	def, _, _ = parseDefinition(direct)
	if !def.valid() {
		t.Fatal("旧格式（无包装）也应解析出有效定义")
	}
	if def.Name != "direto" {
		t.Errorf("name = %q", def.Name)
	}

	incomplete := json.RawMessage(`{"name": "sem-acao", "trigger": {"type": "x"}}`)
	def, _, _ = parseDefinition(incomplete)
	if def.valid() {
		t.Error("缺少actions的定义不应视为有效")
	}
}

func TestDefinitionValid(t *testing.T) {
	var nilDef *AutomationDefinition
	if nilDef.valid() {
		t.Error("nil定义应无效")
	}

	def := &AutomationDefinition{
		Name:    "ok",
		Trigger: &AutomationTrigger{Type: "manual"},
		Actions: []AutomationAction{{Type: "notify"}},
	}
	if !def.valid() {
		t.Error("完整定义应有效")
	}

	noTrigger := &AutomationDefinition{Name: "x", Actions: []AutomationAction{{Type: "notify"}}}
	if noTrigger.valid() {
		t.Error("缺少trigger的定义应无效")
	}
}
