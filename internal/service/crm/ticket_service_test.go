package crm

import (
	"strings"
	"testing"

	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/repository"
)

func TestCreateTicket_GeneratesNumberAndPersistsFields(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFunnel(t, nil, model.FunnelStage{Name: "Triagem"}, model.FunnelStage{Name: "Resolvido", IsResolved: true})
	svc := env.ticketService()

	created, err := svc.Create(testOrgID, "user-1", &model.CreateTicketRequest{
		FunnelID: f.ID,
		Title:    "Vazamento no apartamento 302",
		Category: "manutencao",
		Tags:     []string{"urgente", "hidraulica"},
		CustomFields: map[string]interface{}{
			"contract_number": "CT-2026-001",
			"floor":           3,
		},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !strings.HasPrefix(created.Number, "TKT-") {
		t.Errorf("Number = %q, 应以TKT-开头", created.Number)
	}
	if created.StageID != f.Stages[0].ID {
		t.Errorf("未指定阶段时应落在第一个阶段, got %s", created.StageID)
	}
	if created.Category != "manutencao" {
		t.Errorf("Category = %q", created.Category)
	}
	if !created.Tags.Contains("urgente") {
		t.Errorf("Tags = %v", created.Tags)
	}
	if got := created.FieldValue("contract_number"); got != "CT-2026-001" {
		t.Errorf("FieldValue(contract_number) = %q", got)
	}
	if got := created.FieldValue("floor"); got != "3" {
		t.Errorf("FieldValue(floor) = %q, 非字符串值应格式化后返回", got)
	}
}

func TestListTickets_Pagination(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFunnel(t, nil, model.FunnelStage{Name: "A"})
	for i := 0; i < 3; i++ {
		env.seedTicket(t, f, f.Stages[0].ID)
	}
	svc := env.ticketService()

	page1, total, err := svc.List(testOrgID, &repository.TicketFilter{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(page1) != 2 {
		t.Errorf("第一页条数 = %d, want 2", len(page1))
	}

	page2, total, err := svc.List(testOrgID, &repository.TicketFilter{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(page2) != 1 {
		t.Errorf("第二页条数 = %d, want 1", len(page2))
	}

	// 缺省分页参数由服务层补齐
	all, total, err := svc.List(testOrgID, nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Errorf("缺省分页: total=%d len=%d, want 3/3", total, len(all))
	}
}

func TestListTickets_FilterByStage(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFunnel(t, nil, model.FunnelStage{Name: "A"}, model.FunnelStage{Name: "B"})
	env.seedTicket(t, f, f.Stages[0].ID)
	env.seedTicket(t, f, f.Stages[1].ID)
	svc := env.ticketService()

	got, total, err := svc.List(testOrgID, &repository.TicketFilter{StageID: f.Stages[1].ID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 || len(got) != 1 {
		t.Fatalf("阶段过滤: total=%d len=%d, want 1/1", total, len(got))
	}
	if got[0].StageID != f.Stages[1].ID {
		t.Errorf("StageID = %s", got[0].StageID)
	}
}
