package crm

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
)

func TestCreateFunnel_DefaultStages(t *testing.T) {
	env := newTestEnv(t)

	f, err := env.funnels.Create(testOrgID, &model.CreateFunnelRequest{
		Name: "Atendimentos",
		Type: model.FunnelTypeServices,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(f.Stages) != 4 {
		t.Errorf("阶段数 = %d, want 4（services默认阶段集）", len(f.Stages))
	}
	if !f.IsDefault {
		t.Error("组织内该类型的第一个漏斗应标记为默认")
	}
	if !f.Stages[len(f.Stages)-1].IsResolved {
		t.Error("services默认阶段集的末阶段应标记为已解决")
	}
}

func TestCreateFunnel_StatusConfigAndMetadata(t *testing.T) {
	env := newTestEnv(t)

	f, err := env.funnels.Create(testOrgID, &model.CreateFunnelRequest{
		Name:         "Processos",
		Type:         model.FunnelTypePredetermined,
		StatusConfig: &model.FunnelStatusConfig{ResolvedLabel: "Concluído", InProgressLabel: "Andamento"},
		Metadata:     map[string]interface{}{"source": "onboarding"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	stored, err := env.funnels.Get(testOrgID, f.ID)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := stored.ParseStatusConfig()
	if err != nil {
		t.Fatalf("ParseStatusConfig() error = %v", err)
	}
	if cfg.ResolvedLabel != "Concluído" || cfg.InProgressLabel != "Andamento" {
		t.Errorf("标签配置 = %+v", cfg)
	}
	if len(stored.Metadata) == 0 {
		t.Error("扩展配置应已持久化")
	}
}

func TestDeleteFunnel_Guards(t *testing.T) {
	env := newTestEnv(t)

	t.Run("最后一个同类型漏斗不可删除", func(t *testing.T) {
		f, err := env.funnels.Create(testOrgID, &model.CreateFunnelRequest{Name: "Vendas", Type: model.FunnelTypeSales})
		if err != nil {
			t.Fatal(err)
		}
		if err := env.funnels.Delete(testOrgID, f.ID); !errors.Is(err, ErrLastFunnelOfType) {
			t.Errorf("err = %v, want ErrLastFunnelOfType", err)
		}
	})

	t.Run("还有工单的漏斗不可删除", func(t *testing.T) {
		f1 := env.seedFunnel(t, nil, model.FunnelStage{Name: "A"})
		env.seedFunnel(t, nil, model.FunnelStage{Name: "A"})
		env.seedTicket(t, f1, f1.Stages[0].ID)

		if err := env.funnels.Delete(testOrgID, f1.ID); !errors.Is(err, ErrFunnelHasTickets) {
			t.Errorf("err = %v, want ErrFunnelHasTickets", err)
		}
	})

	t.Run("平台默认漏斗不可删除", func(t *testing.T) {
		global := &model.Funnel{
			ID:              uuid.New().String(),
			OrganizationID:  testOrgID,
			Name:            "Processos (padrão)",
			Type:            model.FunnelTypePredetermined,
			IsGlobalDefault: true,
		}
		if err := env.funnelRepo.Create(global); err != nil {
			t.Fatal(err)
		}
		env.seedFunnel(t, nil, model.FunnelStage{Name: "A"})

		if err := env.funnels.Delete(testOrgID, global.ID); !errors.Is(err, ErrGlobalDefaultFunnel) {
			t.Errorf("err = %v, want ErrGlobalDefaultFunnel", err)
		}
	})

	t.Run("无保护命中时删除成功", func(t *testing.T) {
		f1 := env.seedFunnel(t, nil, model.FunnelStage{Name: "A"})
		if err := env.funnels.Delete(testOrgID, f1.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := env.funnels.Get(testOrgID, f1.ID); err == nil {
			t.Error("删除后不应还能查到漏斗")
		}
	})
}

func TestListFunnels_IncludeGlobal(t *testing.T) {
	env := newTestEnv(t)
	env.seedFunnel(t, nil, model.FunnelStage{Name: "A"})

	// 其他组织持有的平台级模板
	global := &model.Funnel{
		ID:              uuid.New().String(),
		OrganizationID:  "org-platform",
		Name:            "Funil de Vendas (padrão)",
		Type:            model.FunnelTypeSales,
		IsGlobalDefault: true,
	}
	if err := env.funnelRepo.Create(global); err != nil {
		t.Fatal(err)
	}

	own, err := env.funnels.List(testOrgID, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(own) != 1 {
		t.Errorf("不含模板时漏斗数 = %d, want 1", len(own))
	}

	withGlobal, err := env.funnels.List(testOrgID, "", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(withGlobal) != 2 {
		t.Errorf("含模板时漏斗数 = %d, want 2", len(withGlobal))
	}
}

func TestUpdateFunnel_RejectsForeignStage(t *testing.T) {
	env := newTestEnv(t)
	f1 := env.seedFunnel(t, nil, model.FunnelStage{Name: "A"})
	f2 := env.seedFunnel(t, nil, model.FunnelStage{Name: "X"})

	_, err := env.funnels.Update(testOrgID, f1.ID, &model.UpdateFunnelRequest{
		Name:   "Atualizado",
		Stages: []model.StageInput{{ID: f2.Stages[0].ID, Name: "X"}},
	})
	if !errors.Is(err, ErrStageNotInFunnel) {
		t.Errorf("err = %v, want ErrStageNotInFunnel", err)
	}
}

func TestDuplicateFunnel(t *testing.T) {
	env := newTestEnv(t)
	src, err := env.funnels.Create(testOrgID, &model.CreateFunnelRequest{Name: "Vendas", Type: model.FunnelTypeSales})
	if err != nil {
		t.Fatal(err)
	}

	clone, err := env.funnels.Duplicate(testOrgID, src.ID, &model.DuplicateFunnelRequest{})
	if err != nil {
		t.Fatalf("Duplicate() error = %v", err)
	}
	if clone.Name != "Vendas (cópia)" {
		t.Errorf("Name = %q", clone.Name)
	}
	if clone.IsDefault {
		t.Error("副本不应继承默认标记")
	}
	if len(clone.Stages) != len(src.Stages) {
		t.Errorf("阶段数 = %d, want %d", len(clone.Stages), len(src.Stages))
	}
}
