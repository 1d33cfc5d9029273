package service

import (
	"testing"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"
)

func TestAdminAuditRecordAndList(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewAdminAuditService(repository.NewAdminAuditLogRepository(db))

	if err := svc.Record(AdminAuditInput{
		AdminID:       1,
		AdminUsername: "admin",
		Action:        constants.AuditActionOrderStatusUpdate,
		TargetType:    "order",
		TargetID:      "RR-20250310-ABC123",
		RequestID:     "req-1",
		Detail:        models.JSON{"from": "PENDING", "to": "SHIPPED"},
	}); err != nil {
		t.Fatalf("record audit failed: %v", err)
	}
	if err := svc.Record(AdminAuditInput{AdminID: 1, Action: constants.AuditActionBookDelete, TargetType: "book", TargetID: "9"}); err != nil {
		t.Fatalf("record audit failed: %v", err)
	}
	// 缺少操作人时忽略
	if err := svc.Record(AdminAuditInput{Action: constants.AuditActionBookDelete}); err != nil {
		t.Fatalf("anonymous audit should be ignored, got %v", err)
	}

	logs, total, err := svc.List(repository.AdminAuditListFilter{TargetType: "order"})
	if err != nil {
		t.Fatalf("list audit failed: %v", err)
	}
	if total != 1 || len(logs) != 1 {
		t.Fatalf("unexpected audit rows: total=%d len=%d", total, len(logs))
	}
	if logs[0].Detail["to"] != "SHIPPED" {
		t.Fatalf("audit detail not persisted: %+v", logs[0].Detail)
	}

	_, total, err = svc.List(repository.AdminAuditListFilter{})
	if err != nil || total != 2 {
		t.Fatalf("expected 2 audit rows, got %d (%v)", total, err)
	}
}
