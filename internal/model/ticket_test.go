package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func TestFieldValue(t *testing.T) {
	ticket := &ServiceTicket{
		Number:     "TKT-20260831-ABC123",
		Title:      "Instalação de ar condicionado",
		Category:   "manutencao",
		ClientName: "Maria Souza",
		Value:      decimal.NewFromInt(1200),
		CustomFields: datatypes.JSON(`{
			"contract_number": "CT-2026-001",
			"floor": 3,
			"notes": null
		}`),
	}

	tests := []struct {
		field string
		want  string
	}{
		{"number", "TKT-20260831-ABC123"},
		{"title", "Instalação de ar condicionado"},
		{"category", "manutencao"},
		{"client_name", "Maria Souza"},
		{"clientName", "Maria Souza"},
		{"value", "1200"},
		{"contract_number", "CT-2026-001"},
		{"floor", "3"}, // 非字符串值格式化为字符串
		{"notes", ""},  // null等同于未填写
		{"unknown_field", ""},
	}

	for _, tt := range tests {
		if got := ticket.FieldValue(tt.field); got != tt.want {
			t.Errorf("FieldValue(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}

	t.Run("零金额视为未填写", func(t *testing.T) {
		empty := &ServiceTicket{}
		if got := empty.FieldValue("value"); got != "" {
			t.Errorf("FieldValue(value) = %q, want empty", got)
		}
	})

	t.Run("损坏的自定义字段返回空串", func(t *testing.T) {
		broken := &ServiceTicket{CustomFields: datatypes.JSON(`{invalid`)}
		if got := broken.FieldValue("contract_number"); got != "" {
			t.Errorf("FieldValue() = %q, want empty", got)
		}
	})
}
