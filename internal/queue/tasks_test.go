package queue

import (
	"context"
	"testing"

	"github.com/readrover/internal/config"
	"github.com/readrover/internal/constants"
)

func TestOrderPlacedEmailTaskRoundTrip(t *testing.T) {
	task, err := NewOrderPlacedEmailTask(OrderPlacedEmailPayload{OrderID: 7, OrderNo: "RR-20250101-ABC123"})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if task.Type() != TaskOrderPlacedEmail {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	payload, err := ParseOrderPlacedEmailPayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.OrderID != 7 || payload.OrderNo != "RR-20250101-ABC123" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestDisabledClientSkipsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("expected disabled client")
	}
	if err := client.EnqueueOrderStatusEmail(context.Background(), OrderStatusEmailPayload{OrderID: 1, Status: "SHIPPED"}); err != nil {
		t.Fatalf("disabled client should ignore enqueue: %v", err)
	}
}

func TestBuildServerConfig(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("unexpected redis addr: %s", opt.Addr)
	}
	if cfg.Concurrency != 10 {
		t.Fatalf("unexpected concurrency: %d", cfg.Concurrency)
	}
	if cfg.Queues[constants.QueueCritical] <= cfg.Queues[constants.QueueDefault] {
		t.Fatalf("critical queue should have the higher weight: %+v", cfg.Queues)
	}

	opt, cfg = BuildServerConfig(&config.QueueConfig{
		Host:        " redis.internal ",
		Port:        6380,
		DB:          2,
		Concurrency: 4,
		Queues:      map[string]int{constants.QueueDefault: 1},
	})
	if opt.Addr != "redis.internal:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis option: %+v", opt)
	}
	if cfg.Concurrency != 4 || len(cfg.Queues) != 1 {
		t.Fatalf("configured values should win: %+v", cfg)
	}
}
