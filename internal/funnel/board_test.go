package funnel

import (
	"testing"

	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
)

func TestGroup(t *testing.T) {
	// 阶段乱序给入，分组结果必须按Position排列
	f := &model.Funnel{
		ID: "funnel-1",
		Stages: []model.FunnelStage{
			{ID: "stage-c", Name: "Conclusão", Position: 2},
			{ID: "stage-a", Name: "Início", Position: 0},
			{ID: "stage-b", Name: "Em Progresso", Position: 1},
		},
	}
	tickets := []model.ServiceTicket{
		{ID: "t1", StageID: "stage-b"},
		{ID: "t2", StageID: "stage-a"},
		{ID: "t3", StageID: "stage-b"},
		{ID: "t4", StageID: "stage-x"}, // 阶段不在漏斗内
	}

	columns := Group(f, tickets)
	if len(columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(columns))
	}

	if columns[0].Stage.ID != "stage-a" || columns[1].Stage.ID != "stage-b" || columns[2].Stage.ID != "stage-c" {
		t.Errorf("columns out of order: %s, %s, %s", columns[0].Stage.ID, columns[1].Stage.ID, columns[2].Stage.ID)
	}

	if columns[0].Count != 1 || columns[0].Tickets[0].ID != "t2" {
		t.Errorf("column A should hold only t2, got %+v", columns[0].Tickets)
	}
	if columns[1].Count != 2 || columns[1].Tickets[0].ID != "t1" || columns[1].Tickets[1].ID != "t3" {
		t.Errorf("column B should hold t1,t3 in order, got %+v", columns[1].Tickets)
	}
	if columns[2].Count != 0 {
		t.Errorf("column C should be empty, got %d tickets", columns[2].Count)
	}
}

func TestGroup_EmptyTickets(t *testing.T) {
	f := &model.Funnel{
		ID:     "funnel-1",
		Stages: []model.FunnelStage{{ID: "stage-a", Position: 0}},
	}
	columns := Group(f, nil)
	if len(columns) != 1 {
		t.Fatalf("expected 1 column, got %d", len(columns))
	}
	if columns[0].Tickets == nil {
		t.Error("empty column must carry an empty slice, not nil")
	}
}

func TestSortStages_DoesNotMutateInput(t *testing.T) {
	stages := []model.FunnelStage{
		{ID: "stage-b", Position: 1},
		{ID: "stage-a", Position: 0},
	}
	sorted := SortStages(stages)
	if sorted[0].ID != "stage-a" {
		t.Errorf("sorted[0] = %s, want stage-a", sorted[0].ID)
	}
	if stages[0].ID != "stage-b" {
		t.Error("input slice must not be reordered")
	}
}
