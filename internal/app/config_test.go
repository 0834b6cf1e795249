package app

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.OrdersTopic != "orders_topic" {
		t.Errorf("unexpected orders topic: %s", cfg.OrdersTopic)
	}
	if cfg.FailedTopic != "orders_failed_topic" {
		t.Errorf("unexpected failed topic: %s", cfg.FailedTopic)
	}
	if cfg.ConsumerGroup != "order_group" {
		t.Errorf("unexpected consumer group: %s", cfg.ConsumerGroup)
	}

	if cfg.WaitTimeout != 5*time.Second {
		t.Errorf("unexpected wait timeout: %v", cfg.WaitTimeout)
	}
	if cfg.LeaseTimeout != 10*time.Second {
		t.Errorf("unexpected lease timeout: %v", cfg.LeaseTimeout)
	}
	if cfg.MaxAttempts != 5 {
		t.Errorf("unexpected max attempts: %d", cfg.MaxAttempts)
	}
	if cfg.BackoffBase != time.Second {
		t.Errorf("unexpected backoff base: %v", cfg.BackoffBase)
	}
	if cfg.BackoffMultiplier != 2.0 {
		t.Errorf("unexpected backoff multiplier: %f", cfg.BackoffMultiplier)
	}

	// Таймаут коллаборатора обязан быть меньше lease, иначе lease может
	// истечь посреди этапа.
	if cfg.CollaboratorTimeout >= cfg.LeaseTimeout {
		t.Errorf("collaborator timeout %v must be below lease timeout %v", cfg.CollaboratorTimeout, cfg.LeaseTimeout)
	}
}

func TestSchedulerConfigMapping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 3
	cfg.BackoffBase = 500 * time.Millisecond
	cfg.BackoffMultiplier = 3.0

	sc := cfg.SchedulerConfig()

	if sc.MaxAttempts != 3 {
		t.Errorf("unexpected max attempts: %d", sc.MaxAttempts)
	}
	if sc.BackoffBase != 500*time.Millisecond {
		t.Errorf("unexpected backoff base: %v", sc.BackoffBase)
	}
	if sc.BackoffMultiplier != 3.0 {
		t.Errorf("unexpected backoff multiplier: %f", sc.BackoffMultiplier)
	}
}
