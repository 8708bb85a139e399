package funnel

import (
	"encoding/json"
	"testing"

	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
)

func threeStages() []model.FunnelStage {
	return []model.FunnelStage{
		{ID: "stage-a", FunnelID: "funnel-1", Name: "Início", Position: 0},
		{ID: "stage-b", FunnelID: "funnel-1", Name: "Em Progresso", Position: 1},
		{ID: "stage-c", FunnelID: "funnel-1", Name: "Conclusão", Position: 2},
	}
}

func TestDeriveStatus_NoTicket(t *testing.T) {
	stages := threeStages()
	for i := range stages {
		if got := DeriveStatus(stages, nil, i, nil); got != StatusBlocked {
			t.Errorf("stage %d without ticket = %s, want blocked", i, got)
		}
	}
}

func TestDeriveStatus_Positional(t *testing.T) {
	stages := threeStages()
	ticket := makeTicket("stage-b", nil)

	tests := []struct {
		name  string
		index int
		want  StageStatus
	}{
		{"当前阶段之前为completed", 0, StatusCompleted},
		{"当前阶段无要求为in_progress", 1, StatusInProgress},
		{"当前阶段之后为blocked", 2, StatusBlocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(stages, ticket, tt.index, nil); got != tt.want {
				t.Errorf("DeriveStatus(%d) = %s, want %s", tt.index, got, tt.want)
			}
		})
	}
}

func TestDeriveStatus_RejectedOverridesPosition(t *testing.T) {
	stages := threeStages()
	ticket := makeTicket("stage-b", nil)
	approvals := map[string]*model.StageApproval{
		"stage-b": {Status: model.ApprovalRejected, Comment: "faltam documentos"},
	}

	if got := DeriveStatus(stages, ticket, 1, approvals); got != StatusRejected {
		t.Errorf("rejected stage = %s, want rejected", got)
	}
	// 驳回只影响有驳回记录的阶段
	if got := DeriveStatus(stages, ticket, 0, approvals); got != StatusCompleted {
		t.Errorf("past stage = %s, want completed", got)
	}
	if got := DeriveStatus(stages, ticket, 2, approvals); got != StatusBlocked {
		t.Errorf("future stage = %s, want blocked", got)
	}
}

func TestDeriveStatus_WarningOnUnmetRequirements(t *testing.T) {
	stages := threeStages()
	reqs, err := json.Marshal(&model.StageRequirements{MinProgress: 100})
	if err != nil {
		t.Fatal(err)
	}
	stages[0].Requirements = reqs

	// 两个阶段任务只完成一个，完成率50% < 100%
	ticket := makeTicket("stage-a", []model.ServiceTask{
		{ID: "t1", StageID: "stage-a", Status: model.TaskStatusCompleted},
		{ID: "t2", StageID: "stage-a", Status: model.TaskStatusTodo},
	})

	if got := DeriveStatus(stages, ticket, 0, nil); got != StatusWarning {
		t.Errorf("current stage with unmet requirements = %s, want warning", got)
	}

	// 完成剩余任务后变为in_progress
	ticket.Tasks[1].Status = model.TaskStatusCompleted
	if got := DeriveStatus(stages, ticket, 0, nil); got != StatusInProgress {
		t.Errorf("current stage with met requirements = %s, want in_progress", got)
	}
}

func TestDeriveStatus_PastStageNotDemotedByRequirements(t *testing.T) {
	stages := threeStages()
	reqs, err := json.Marshal(&model.StageRequirements{RequiredProducts: true})
	if err != nil {
		t.Fatal(err)
	}
	stages[0].Requirements = reqs

	// 工单已越过stage-a但从未满足其要求，历史阶段仍显示completed
	ticket := makeTicket("stage-c", nil)
	if got := DeriveStatus(stages, ticket, 0, nil); got != StatusCompleted {
		t.Errorf("past stage = %s, want completed", got)
	}
}

func TestDeriveStatus_UnknownCurrentStage(t *testing.T) {
	stages := threeStages()
	ticket := makeTicket("stage-x", nil)
	for i := range stages {
		if got := DeriveStatus(stages, ticket, i, nil); got != StatusBlocked {
			t.Errorf("stage %d with orphaned ticket = %s, want blocked", i, got)
		}
	}
}

func TestDeriveStatus_CorruptRequirementsDoNotBlock(t *testing.T) {
	stages := threeStages()
	stages[1].Requirements = []byte("{not json")

	ticket := makeTicket("stage-b", nil)
	if got := DeriveStatus(stages, ticket, 1, nil); got != StatusInProgress {
		t.Errorf("stage with corrupt requirements = %s, want in_progress", got)
	}
}

func TestDeriveAll(t *testing.T) {
	stages := threeStages()
	ticket := makeTicket("stage-b", nil)
	got := DeriveAll(stages, ticket, nil)

	want := []StageStatus{StatusCompleted, StatusInProgress, StatusBlocked}
	if len(got) != len(want) {
		t.Fatalf("DeriveAll returned %d statuses, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DeriveAll[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
