package crm

import (
	"errors"
	"testing"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"gorm.io/datatypes"
)

func TestMove_SequentialGate(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFunnel(t, boolPtr(true),
		model.FunnelStage{Name: "Início", Requirements: datatypes.JSON(`{"requiredFields":["client_name"]}`)},
		model.FunnelStage{Name: "Em Progresso"},
		model.FunnelStage{Name: "Conclusão", IsResolved: true},
	)
	ticket := env.seedTicket(t, f, f.Stages[0].ID)
	svc := env.boardService()

	t.Run("跳级移动被拒", func(t *testing.T) {
		_, err := svc.Move(testOrgID, ticket.ID, &model.MoveTicketRequest{StageID: f.Stages[2].ID, Version: 0}, "user-1")
		if !errors.Is(err, ErrSequentialMove) {
			t.Errorf("err = %v, want ErrSequentialMove", err)
		}
	})

	t.Run("当前阶段要求未满足时移动被拒", func(t *testing.T) {
		_, err := svc.Move(testOrgID, ticket.ID, &model.MoveTicketRequest{StageID: f.Stages[1].ID, Version: 0}, "user-1")
		blocked, ok := IsValidationBlocked(err)
		if !ok {
			t.Fatalf("err = %v, want ValidationBlockedError", err)
		}
		if blocked.Result.Valid || len(blocked.Result.Missing) == 0 {
			t.Errorf("blocked result = %+v, want invalid with missing entries", blocked.Result)
		}
	})

	t.Run("要求满足后移动到下一阶段", func(t *testing.T) {
		if err := env.db.Model(&model.ServiceTicket{}).Where("id = ?", ticket.ID).
			Update("client_name", "Maria Souza").Error; err != nil {
			t.Fatal(err)
		}
		moved, err := svc.Move(testOrgID, ticket.ID, &model.MoveTicketRequest{StageID: f.Stages[1].ID, Version: 0}, "user-1")
		if err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		if moved.StageID != f.Stages[1].ID {
			t.Errorf("StageID = %s, want %s", moved.StageID, f.Stages[1].ID)
		}
		if moved.Version != 1 {
			t.Errorf("Version = %d, want 1", moved.Version)
		}
		if moved.Status != model.TicketStatusInProgress {
			t.Errorf("Status = %s, want in_progress", moved.Status)
		}
	})

	t.Run("移动记录阶段变更活动", func(t *testing.T) {
		activities, err := env.tickets.ListActivities(testOrgID, ticket.ID, 10)
		if err != nil {
			t.Fatal(err)
		}
		found := false
		for _, a := range activities {
			if a.Type == model.ActivityStageChange {
				found = true
			}
		}
		if !found {
			t.Error("缺少 stage_change 活动记录")
		}
	})
}

func TestMove_VersionConflict(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFunnel(t, boolPtr(false),
		model.FunnelStage{Name: "A"},
		model.FunnelStage{Name: "B"},
	)
	ticket := env.seedTicket(t, f, f.Stages[0].ID)
	svc := env.boardService()

	t.Run("携带过期版本号返回冲突", func(t *testing.T) {
		_, err := svc.Move(testOrgID, ticket.ID, &model.MoveTicketRequest{StageID: f.Stages[1].ID, Version: 5}, "user-1")
		if !errors.Is(err, ErrVersionConflict) {
			t.Errorf("err = %v, want ErrVersionConflict", err)
		}
	})

	t.Run("成功移动后旧版本号失效", func(t *testing.T) {
		if _, err := svc.Move(testOrgID, ticket.ID, &model.MoveTicketRequest{StageID: f.Stages[1].ID, Version: 0}, "user-1"); err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		_, err := svc.Move(testOrgID, ticket.ID, &model.MoveTicketRequest{StageID: f.Stages[0].ID, Version: 0}, "user-1")
		if !errors.Is(err, ErrVersionConflict) {
			t.Errorf("err = %v, want ErrVersionConflict", err)
		}
	})
}

func TestMove_ResolvedStage(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFunnel(t, boolPtr(false),
		model.FunnelStage{Name: "Triagem"},
		model.FunnelStage{Name: "Resolvido", IsResolved: true},
	)
	ticket := env.seedTicket(t, f, f.Stages[0].ID)
	svc := env.boardService()

	moved, err := svc.Move(testOrgID, ticket.ID, &model.MoveTicketRequest{StageID: f.Stages[1].ID, Version: 0}, "user-1")
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if moved.Status != model.TicketStatusResolved {
		t.Errorf("Status = %s, want resolved", moved.Status)
	}
	if moved.ResolvedAt == nil {
		t.Error("ResolvedAt 应已记录")
	}

	// 从已解决阶段移回，工单重新打开
	reopened, err := svc.Move(testOrgID, ticket.ID, &model.MoveTicketRequest{StageID: f.Stages[0].ID, Version: moved.Version}, "user-1")
	if err != nil {
		t.Fatalf("Move() back error = %v", err)
	}
	if reopened.Status != model.TicketStatusInProgress {
		t.Errorf("Status = %s, want in_progress", reopened.Status)
	}
	if reopened.ResolvedAt != nil {
		t.Error("ResolvedAt 应已清空")
	}
}

func TestMove_BackwardAllowedInSequentialMode(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFunnel(t, boolPtr(true),
		model.FunnelStage{Name: "A", Requirements: datatypes.JSON(`{"requiredApproval":true}`)},
		model.FunnelStage{Name: "B"},
		model.FunnelStage{Name: "C"},
	)
	ticket := env.seedTicket(t, f, f.Stages[2].ID)
	svc := env.boardService()

	// 顺序模式只拦向前跳级，退回不校验要求
	moved, err := svc.Move(testOrgID, ticket.ID, &model.MoveTicketRequest{StageID: f.Stages[0].ID, Version: 0}, "user-1")
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if moved.StageID != f.Stages[0].ID {
		t.Errorf("StageID = %s, want %s", moved.StageID, f.Stages[0].ID)
	}
}

func TestMove_StageNotInFunnel(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFunnel(t, boolPtr(false), model.FunnelStage{Name: "A"})
	ticket := env.seedTicket(t, f, f.Stages[0].ID)
	svc := env.boardService()

	_, err := svc.Move(testOrgID, ticket.ID, &model.MoveTicketRequest{StageID: "stage-de-outro-funil", Version: 0}, "user-1")
	if !errors.Is(err, ErrStageNotInFunnel) {
		t.Errorf("err = %v, want ErrStageNotInFunnel", err)
	}
}

func TestMove_LockUnavailableFallsBackToVersionCheck(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFunnel(t, boolPtr(false),
		model.FunnelStage{Name: "A"},
		model.FunnelStage{Name: "B"},
	)
	ticket := env.seedTicket(t, f, f.Stages[0].ID)

	// 指向不可达地址的客户端：TryLock报错，但移动必须照常进行
	unreachable := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer unreachable.Close()

	svc := NewBoardService(env.funnels, env.tickets, env.approvals, unreachable, env.crmCfg, nil, nil)

	moved, err := svc.Move(testOrgID, ticket.ID, &model.MoveTicketRequest{StageID: f.Stages[1].ID, Version: 0}, "user-1")
	if err != nil {
		t.Fatalf("Move() error = %v, Redis故障不应阻断移动", err)
	}
	if moved.StageID != f.Stages[1].ID {
		t.Errorf("StageID = %s, want %s", moved.StageID, f.Stages[1].ID)
	}

	// 版本号保护依旧生效
	_, err = svc.Move(testOrgID, ticket.ID, &model.MoveTicketRequest{StageID: f.Stages[0].ID, Version: 0}, "user-1")
	if !errors.Is(err, ErrVersionConflict) {
		t.Errorf("err = %v, want ErrVersionConflict", err)
	}
}
