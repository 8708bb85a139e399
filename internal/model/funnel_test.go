package model

import (
	"testing"

	"gorm.io/datatypes"
)

func TestSequentialEnforced(t *testing.T) {
	boolPtr := func(v bool) *bool { return &v }

	tests := []struct {
		name          string
		override      *bool
		globalDefault bool
		want          bool
	}{
		{"未设置时跟随全局false", nil, false, false},
		{"未设置时跟随全局true", nil, true, true},
		{"覆盖为true", boolPtr(true), false, true},
		{"覆盖为false", boolPtr(false), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Funnel{EnforceSequential: tt.override}
			if got := f.SequentialEnforced(tt.globalDefault); got != tt.want {
				t.Errorf("SequentialEnforced(%v) = %v, want %v", tt.globalDefault, got, tt.want)
			}
		})
	}
}

func TestStageByID(t *testing.T) {
	f := &Funnel{
		Stages: []FunnelStage{
			{ID: "s1", Name: "Triagem"},
			{ID: "s2", Name: "Em Análise"},
		},
	}

	if got := f.StageByID("s2"); got == nil || got.Name != "Em Análise" {
		t.Errorf("StageByID(s2) = %v", got)
	}
	if got := f.StageByID("missing"); got != nil {
		t.Errorf("StageByID(missing) = %v, want nil", got)
	}
}

func TestParseRequirements(t *testing.T) {
	t.Run("未配置返回空要求", func(t *testing.T) {
		s := &FunnelStage{}
		reqs, err := s.ParseRequirements()
		if err != nil {
			t.Fatal(err)
		}
		if !reqs.IsEmpty() {
			t.Error("无配置的阶段应返回空要求")
		}
	})

	t.Run("完整配置", func(t *testing.T) {
		s := &FunnelStage{
			Requirements: datatypes.JSON(`{
				"requiredTasks": ["t1", "t2"],
				"requiredFields": ["value", "assignee_id"],
				"requiredApproval": true,
				"requiredProducts": true,
				"minProgress": 80
			}`),
		}
		reqs, err := s.ParseRequirements()
		if err != nil {
			t.Fatal(err)
		}
		if len(reqs.RequiredTasks) != 2 || len(reqs.RequiredFields) != 2 {
			t.Errorf("requiredTasks/requiredFields 解析错误: %v / %v", reqs.RequiredTasks, reqs.RequiredFields)
		}
		if !reqs.RequiredApproval || !reqs.RequiredProducts || reqs.MinProgress != 80 {
			t.Errorf("布尔和进度字段解析错误: %+v", reqs)
		}
		if reqs.IsEmpty() {
			t.Error("非空要求不应判为IsEmpty")
		}
	})

	t.Run("损坏的JSON返回错误", func(t *testing.T) {
		s := &FunnelStage{Requirements: datatypes.JSON(`{invalid`)}
		if _, err := s.ParseRequirements(); err == nil {
			t.Error("损坏的要求配置应返回错误")
		}
	})
}

func TestDefaultStageSet(t *testing.T) {
	tests := []struct {
		funnelType string
		wantNames  []string
	}{
		{FunnelTypeSales, []string{"Qualificado", "Contato Feito", "Reunião Agendada", "Proposta Enviada", "Negociação"}},
		{FunnelTypeServices, []string{"Triagem", "Em Análise", "Em Resolução", "Resolvido"}},
		{FunnelTypePredetermined, []string{"Início", "Em Progresso", "Conclusão"}},
	}

	for _, tt := range tests {
		t.Run(tt.funnelType, func(t *testing.T) {
			stages := DefaultStageSet(tt.funnelType)
			if len(stages) != len(tt.wantNames) {
				t.Fatalf("阶段数 = %d, want %d", len(stages), len(tt.wantNames))
			}
			for i, want := range tt.wantNames {
				if stages[i].Name != want {
					t.Errorf("stage[%d] = %q, want %q", i, stages[i].Name, want)
				}
			}
			// 最后一个阶段在服务/预定义漏斗中是解决阶段
			last := stages[len(stages)-1]
			if tt.funnelType != FunnelTypeSales && !last.IsResolved {
				t.Errorf("%s 的末阶段 %q 应标记为 isResolved", tt.funnelType, last.Name)
			}
		})
	}

	t.Run("未知类型无默认阶段", func(t *testing.T) {
		if stages := DefaultStageSet("unknown"); stages != nil {
			t.Errorf("未知类型应返回nil, got %v", stages)
		}
	})
}
