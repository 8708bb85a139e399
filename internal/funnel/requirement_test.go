package funnel

import (
	"testing"

	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func makeTicket(stageID string, tasks []model.ServiceTask) *model.ServiceTicket {
	return &model.ServiceTicket{
		ID:      "ticket-1",
		StageID: stageID,
		Title:   "Instalação de ar condicionado",
		Tasks:   tasks,
	}
}

func TestValidate_NoRequirements(t *testing.T) {
	tests := []struct {
		name string
		reqs *model.StageRequirements
	}{
		{"要求为nil", nil},
		{"要求为空结构", &model.StageRequirements{}},
	}

	ticket := makeTicket("stage-a", nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate("stage-a", tt.reqs, ticket, nil)
			if !result.Valid {
				t.Errorf("expected valid result, got invalid: %v", result.Missing)
			}
			if len(result.Missing) != 0 {
				t.Errorf("expected no missing requirements, got %v", result.Missing)
			}
		})
	}
}

func TestValidate_RequiredTasks(t *testing.T) {
	tests := []struct {
		name      string
		tasks     []model.ServiceTask
		required  model.StringArray
		wantValid bool
	}{
		{
			name: "全部必须任务已完成",
			tasks: []model.ServiceTask{
				{ID: "t1", StageID: "stage-a", Status: model.TaskStatusCompleted},
				{ID: "t2", StageID: "stage-a", Status: model.TaskStatusCompleted},
			},
			required:  model.StringArray{"t1", "t2"},
			wantValid: true,
		},
		{
			name: "部分必须任务未完成",
			tasks: []model.ServiceTask{
				{ID: "t1", StageID: "stage-a", Status: model.TaskStatusCompleted},
				{ID: "t2", StageID: "stage-a", Status: model.TaskStatusInProgress},
			},
			required:  model.StringArray{"t1", "t2"},
			wantValid: false,
		},
		{
			name: "必须任务属于其他阶段不计入",
			tasks: []model.ServiceTask{
				{ID: "t1", StageID: "stage-b", Status: model.TaskStatusCompleted},
			},
			required:  model.StringArray{"t1"},
			wantValid: false,
		},
		{
			name:      "工单没有任何任务",
			tasks:     nil,
			required:  model.StringArray{"t1"},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := makeTicket("stage-a", tt.tasks)
			reqs := &model.StageRequirements{RequiredTasks: tt.required}
			result := Validate("stage-a", reqs, ticket, nil)
			if result.Valid != tt.wantValid {
				t.Errorf("Validate() valid = %v, want %v (missing: %v)", result.Valid, tt.wantValid, result.Missing)
			}
			if !tt.wantValid && len(result.Missing) == 0 {
				t.Error("invalid result must carry missing requirement messages")
			}
		})
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	ticket := makeTicket("stage-a", nil)
	ticket.ClientName = "Maria Souza"
	ticket.ClientEmail = "   " // 只有空白等同于未填写

	reqs := &model.StageRequirements{
		RequiredFields: model.StringArray{"clientName", "clientEmail", "propertyId"},
	}
	result := Validate("stage-a", reqs, ticket, nil)
	if result.Valid {
		t.Fatal("expected invalid result when required fields are empty")
	}
	if result.Fields.Met {
		t.Error("fields check should not be met")
	}
	// clientName已填写，缺失的是clientEmail和propertyId
	if len(result.Missing) != 1 {
		t.Fatalf("expected single missing-fields entry, got %v", result.Missing)
	}
	if result.Missing[0] != "Campos: clientEmail, propertyId" {
		t.Errorf("unexpected missing message: %q", result.Missing[0])
	}
}

func TestValidate_RequiredCustomFields(t *testing.T) {
	reqs := &model.StageRequirements{
		RequiredFields: model.StringArray{"contract_number"},
	}

	missing := makeTicket("stage-a", nil)
	result := Validate("stage-a", reqs, missing, nil)
	if result.Valid {
		t.Fatal("expected invalid result when the custom field is absent")
	}
	if len(result.Missing) != 1 || result.Missing[0] != "Campos: contract_number" {
		t.Errorf("unexpected missing message: %v", result.Missing)
	}

	filled := makeTicket("stage-a", nil)
	filled.CustomFields = datatypes.JSON(`{"contract_number":"CT-2026-001"}`)
	if result := Validate("stage-a", reqs, filled, nil); !result.Valid {
		t.Errorf("custom field value should satisfy the requirement, missing: %v", result.Missing)
	}
}

func TestValidate_RequiredApproval(t *testing.T) {
	ticket := makeTicket("stage-a", nil)
	reqs := &model.StageRequirements{RequiredApproval: true}

	tests := []struct {
		name      string
		approval  *model.StageApproval
		wantValid bool
	}{
		{"无审批记录", nil, false},
		{"审批待定", &model.StageApproval{Status: model.ApprovalPending}, false},
		{"审批被驳回", &model.StageApproval{Status: model.ApprovalRejected}, false},
		{"审批已通过", &model.StageApproval{Status: model.ApprovalApproved}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate("stage-a", reqs, ticket, tt.approval)
			if result.Valid != tt.wantValid {
				t.Errorf("Validate() valid = %v, want %v", result.Valid, tt.wantValid)
			}
		})
	}
}

func TestValidate_RequiredProducts(t *testing.T) {
	reqs := &model.StageRequirements{RequiredProducts: true}

	empty := makeTicket("stage-a", nil)
	if result := Validate("stage-a", reqs, empty, nil); result.Valid {
		t.Error("ticket without products should fail the products check")
	}

	withProducts := makeTicket("stage-a", nil)
	withProducts.Products = []model.TicketProduct{
		{ID: "p1", Name: "Manutenção preventiva", Quantity: 1, UnitPrice: decimal.NewFromInt(250)},
	}
	if result := Validate("stage-a", reqs, withProducts, nil); !result.Valid {
		t.Errorf("ticket with products should pass, missing: %v", result.Missing)
	}
}

func TestValidate_MinProgress(t *testing.T) {
	tests := []struct {
		name         string
		tasks        []model.ServiceTask
		minProgress  int
		wantValid    bool
		wantProgress int
	}{
		{
			name: "完成率达标",
			tasks: []model.ServiceTask{
				{ID: "t1", StageID: "stage-a", Status: model.TaskStatusCompleted},
				{ID: "t2", StageID: "stage-a", Status: model.TaskStatusCompleted},
			},
			minProgress:  100,
			wantValid:    true,
			wantProgress: 100,
		},
		{
			name: "完成率不足",
			tasks: []model.ServiceTask{
				{ID: "t1", StageID: "stage-a", Status: model.TaskStatusCompleted},
				{ID: "t2", StageID: "stage-a", Status: model.TaskStatusTodo},
			},
			minProgress:  100,
			wantValid:    false,
			wantProgress: 50,
		},
		{
			name:         "该阶段没有任务时完成率为0",
			tasks:        nil,
			minProgress:  1,
			wantValid:    false,
			wantProgress: 0,
		},
		{
			name: "其他阶段的任务不计入完成率",
			tasks: []model.ServiceTask{
				{ID: "t1", StageID: "stage-b", Status: model.TaskStatusCompleted},
				{ID: "t2", StageID: "stage-a", Status: model.TaskStatusCompleted},
			},
			minProgress:  100,
			wantValid:    true,
			wantProgress: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := makeTicket("stage-a", tt.tasks)
			reqs := &model.StageRequirements{MinProgress: tt.minProgress}
			result := Validate("stage-a", reqs, ticket, nil)
			if result.Valid != tt.wantValid {
				t.Errorf("Validate() valid = %v, want %v", result.Valid, tt.wantValid)
			}
			if result.ProgressPercent != tt.wantProgress {
				t.Errorf("ProgressPercent = %d, want %d", result.ProgressPercent, tt.wantProgress)
			}
		})
	}
}

func TestOverallProgress(t *testing.T) {
	empty := makeTicket("stage-a", nil)
	if got := OverallProgress(empty); got != 0 {
		t.Errorf("OverallProgress(no tasks) = %d, want 0", got)
	}

	ticket := makeTicket("stage-a", []model.ServiceTask{
		{ID: "t1", StageID: "stage-a", Status: model.TaskStatusCompleted},
		{ID: "t2", StageID: "stage-b", Status: model.TaskStatusCompleted},
		{ID: "t3", StageID: "stage-b", Status: model.TaskStatusTodo},
	})
	if got := OverallProgress(ticket); got != 66 {
		t.Errorf("OverallProgress = %d, want 66", got)
	}
}
