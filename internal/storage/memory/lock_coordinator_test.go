package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/victorcov/order-worker/internal/domain"
)

func TestLockCoordinator_ExclusivePerOrder(t *testing.T) {
	locks := NewLockCoordinator()
	ctx := context.Background()

	lease, err := locks.Acquire(ctx, "order-1", 0, time.Minute)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	if _, err := locks.Acquire(ctx, "order-1", 10*time.Millisecond, time.Minute); !errors.Is(err, domain.ErrLockNotAcquired) {
		t.Fatalf("expected ErrLockNotAcquired for held lock, got %v", err)
	}

	// Блокировки разных заказов независимы.
	other, err := locks.Acquire(ctx, "order-2", 0, time.Minute)
	if err != nil {
		t.Fatalf("acquire for another order: %v", err)
	}
	_ = locks.Release(ctx, other)

	if err := locks.Release(ctx, lease); err != nil {
		t.Fatalf("release: %v", err)
	}
	reacquired, err := locks.Acquire(ctx, "order-1", 0, time.Minute)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	_ = locks.Release(ctx, reacquired)
}

func TestLockCoordinator_WaitsForRelease(t *testing.T) {
	locks := NewLockCoordinator()
	ctx := context.Background()

	lease, err := locks.Acquire(ctx, "order-1", 0, time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = locks.Release(ctx, lease)
	}()

	second, err := locks.Acquire(ctx, "order-1", time.Second, time.Minute)
	if err != nil {
		t.Fatalf("expected second acquire to succeed after release, got %v", err)
	}
	_ = locks.Release(ctx, second)
}

func TestLockCoordinator_LeaseExpires(t *testing.T) {
	locks := NewLockCoordinator()
	ctx := context.Background()

	if _, err := locks.Acquire(ctx, "order-1", 0, 20*time.Millisecond); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// Упавший владелец не освобождает блокировку: lease истекает сама.
	lease, err := locks.Acquire(ctx, "order-1", time.Second, time.Minute)
	if err != nil {
		t.Fatalf("expected acquire after lease expiry, got %v", err)
	}
	_ = locks.Release(ctx, lease)
}

func TestLockCoordinator_ReleaseIsIdempotent(t *testing.T) {
	locks := NewLockCoordinator()
	ctx := context.Background()

	lease, err := locks.Acquire(ctx, "order-1", 0, time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := locks.Release(ctx, lease); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if err := locks.Release(ctx, lease); err != nil {
		t.Fatalf("second release must be a no-op, got %v", err)
	}
}

func TestLockCoordinator_ReleaseForeignLeaseIsNoop(t *testing.T) {
	locks := NewLockCoordinator()
	ctx := context.Background()

	stale := domain.Lease{Key: "order:lock:order-1", HolderToken: "stale-token"}

	current, err := locks.Acquire(ctx, "order-1", 0, time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := locks.Release(ctx, stale); err != nil {
		t.Fatalf("foreign release must be a no-op, got %v", err)
	}

	// Текущий владелец не должен потерять блокировку.
	if _, err := locks.Acquire(ctx, "order-1", 10*time.Millisecond, time.Minute); !errors.Is(err, domain.ErrLockNotAcquired) {
		t.Fatalf("expected lock to still be held, got %v", err)
	}
	_ = locks.Release(ctx, current)
}

func TestLockCoordinator_ContextCancelStopsWaiting(t *testing.T) {
	locks := NewLockCoordinator()

	lease, err := locks.Acquire(context.Background(), "order-1", 0, time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer func() { _ = locks.Release(context.Background(), lease) }()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	if _, err := locks.Acquire(ctx, "order-1", time.Minute, time.Minute); !errors.Is(err, domain.ErrLockNotAcquired) {
		t.Fatalf("expected ErrLockNotAcquired on canceled context, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("acquire did not stop promptly after context cancel")
	}
}
