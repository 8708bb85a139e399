package crm

import (
	"testing"

	"github.com/google/uuid"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/notification"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/repository"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testOrgID = "org-test"

func boolPtr(v bool) *bool { return &v }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Funnel{},
		&model.FunnelStage{},
		&model.ServiceTicket{},
		&model.ServiceTask{},
		&model.TicketProduct{},
		&model.TicketActivity{},
		&model.StageApproval{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// testEnv 服务层测试共用的仓储和服务装配
type testEnv struct {
	db         *gorm.DB
	funnelRepo *repository.FunnelRepository
	tickets    *repository.TicketRepository
	approvals  *repository.ApprovalRepository
	funnels    *FunnelService
	crmCfg     *config.CRMConfig
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := openTestDB(t)
	funnelRepo := repository.NewFunnelRepository(db)
	return &testEnv{
		db:         db,
		funnelRepo: funnelRepo,
		tickets:    repository.NewTicketRepository(db),
		approvals:  repository.NewApprovalRepository(db),
		funnels:    NewFunnelService(funnelRepo, nil, 60),
		crmCfg:     &config.CRMConfig{EnforceSequential: false, MoveLockTTL: 10},
	}
}

func (e *testEnv) boardService() *BoardService {
	return NewBoardService(e.funnels, e.tickets, e.approvals, nil, e.crmCfg, notification.NewManager(), nil)
}

func (e *testEnv) approvalService() *ApprovalService {
	return NewApprovalService(e.funnels, e.tickets, e.approvals, notification.NewManager(), nil)
}

func (e *testEnv) ticketService() *TicketService {
	return NewTicketService(e.funnels, e.tickets)
}

// seedFunnel 直接落库一个漏斗，阶段Position按传入顺序编号
func (e *testEnv) seedFunnel(t *testing.T, enforce *bool, stageDefs ...model.FunnelStage) *model.Funnel {
	t.Helper()
	f := &model.Funnel{
		ID:                uuid.New().String(),
		OrganizationID:    testOrgID,
		Name:              "测试流程",
		Type:              model.FunnelTypePredetermined,
		EnforceSequential: enforce,
	}
	for i := range stageDefs {
		st := stageDefs[i]
		if st.ID == "" {
			st.ID = uuid.New().String()
		}
		st.FunnelID = f.ID
		st.Position = i
		f.Stages = append(f.Stages, st)
	}
	if err := e.funnelRepo.Create(f); err != nil {
		t.Fatalf("seed funnel: %v", err)
	}
	return f
}

// seedTicket 直接落库一张工单（version为0）
func (e *testEnv) seedTicket(t *testing.T, f *model.Funnel, stageID string) *model.ServiceTicket {
	t.Helper()
	ticket := &model.ServiceTicket{
		ID:             uuid.New().String(),
		OrganizationID: testOrgID,
		FunnelID:       f.ID,
		StageID:        stageID,
		Number:         "TKT-" + uuid.New().String()[:18],
		Title:          "测试工单",
		Status:         model.TicketStatusOpen,
		Priority:       model.PriorityMedium,
	}
	if err := e.tickets.Create(ticket); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	return ticket
}

func (e *testEnv) reloadTicket(t *testing.T, id string) *model.ServiceTicket {
	t.Helper()
	ticket, err := e.tickets.FindByID(testOrgID, id)
	if err != nil {
		t.Fatalf("reload ticket: %v", err)
	}
	return ticket
}
