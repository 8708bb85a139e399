package crm

import (
	"errors"
	"testing"

	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
)

func TestDecide_OnlyCurrentStage(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFunnel(t, nil,
		model.FunnelStage{Name: "A"},
		model.FunnelStage{Name: "B"},
	)
	ticket := env.seedTicket(t, f, f.Stages[0].ID)
	svc := env.approvalService()

	_, err := svc.Decide(testOrgID, ticket.ID, f.Stages[1].ID, "gestor-1",
		&model.DecideApprovalRequest{Decision: model.ApprovalApproved})
	if !errors.Is(err, ErrNotCurrentStage) {
		t.Errorf("err = %v, want ErrNotCurrentStage", err)
	}
}

func TestDecide_ApproveAdvances(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFunnel(t, nil,
		model.FunnelStage{Name: "A"},
		model.FunnelStage{Name: "B"},
		model.FunnelStage{Name: "C"},
	)
	ticket := env.seedTicket(t, f, f.Stages[0].ID)
	svc := env.approvalService()

	updated, err := svc.Decide(testOrgID, ticket.ID, f.Stages[0].ID, "gestor-1",
		&model.DecideApprovalRequest{Decision: model.ApprovalApproved, Comment: "ok"})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if updated.StageID != f.Stages[1].ID {
		t.Errorf("StageID = %s, want %s (通过后推进一格)", updated.StageID, f.Stages[1].ID)
	}
	if updated.Version != 1 {
		t.Errorf("Version = %d, want 1", updated.Version)
	}
	if updated.Status != model.TicketStatusInProgress {
		t.Errorf("Status = %s, want in_progress", updated.Status)
	}

	history, err := svc.History(testOrgID, ticket.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Status != model.ApprovalApproved {
		t.Errorf("history = %+v, want 1条approved记录", history)
	}
}

func TestDecide_ApproveAtLastStageIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFunnel(t, nil,
		model.FunnelStage{Name: "A"},
		model.FunnelStage{Name: "B"},
	)
	ticket := env.seedTicket(t, f, f.Stages[1].ID)
	svc := env.approvalService()

	for i := 0; i < 2; i++ {
		updated, err := svc.Decide(testOrgID, ticket.ID, f.Stages[1].ID, "gestor-1",
			&model.DecideApprovalRequest{Decision: model.ApprovalApproved})
		if err != nil {
			t.Fatalf("Decide() #%d error = %v", i+1, err)
		}
		if updated.StageID != f.Stages[1].ID {
			t.Errorf("StageID = %s, 末阶段通过后指针不应移动", updated.StageID)
		}
	}

	history, err := svc.History(testOrgID, ticket.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Errorf("history长度 = %d, want 2（重复通过仍各记一条）", len(history))
	}
}

func TestDecide_RejectStays(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFunnel(t, nil,
		model.FunnelStage{Name: "A"},
		model.FunnelStage{Name: "B"},
	)
	ticket := env.seedTicket(t, f, f.Stages[0].ID)
	svc := env.approvalService()

	updated, err := svc.Decide(testOrgID, ticket.ID, f.Stages[0].ID, "gestor-1",
		&model.DecideApprovalRequest{Decision: model.ApprovalRejected, Comment: "documentação incompleta"})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if updated.StageID != f.Stages[0].ID {
		t.Errorf("StageID = %s, 驳回后工单应停在原阶段", updated.StageID)
	}

	latest, err := svc.Latest(testOrgID, ticket.ID)
	if err != nil {
		t.Fatal(err)
	}
	if latest[f.Stages[0].ID] == nil || latest[f.Stages[0].ID].Status != model.ApprovalRejected {
		t.Errorf("latest = %+v, want rejected", latest[f.Stages[0].ID])
	}
}

func TestApprovalLog_AppendOnly(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFunnel(t, nil,
		model.FunnelStage{Name: "A"},
		model.FunnelStage{Name: "B"},
	)
	ticket := env.seedTicket(t, f, f.Stages[0].ID)
	svc := env.approvalService()

	if _, err := svc.Request(testOrgID, ticket.ID, "agente-1", &model.RequestApprovalRequest{Comment: "pronto para revisão"}); err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if _, err := svc.Decide(testOrgID, ticket.ID, f.Stages[0].ID, "gestor-1",
		&model.DecideApprovalRequest{Decision: model.ApprovalApproved}); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	history, err := svc.History(testOrgID, ticket.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("history长度 = %d, want 2（pending和approved各一条）", len(history))
	}
	if history[0].Status != model.ApprovalPending || history[1].Status != model.ApprovalApproved {
		t.Errorf("history顺序 = [%s, %s], want [pending, approved]", history[0].Status, history[1].Status)
	}
}
