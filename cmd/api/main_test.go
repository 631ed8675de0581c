package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/roguepikachu/vanish/internal/config"
	"github.com/roguepikachu/vanish/internal/repository"
	"github.com/roguepikachu/vanish/internal/repository/memory"
	redisRepo "github.com/roguepikachu/vanish/internal/repository/redis"
	"github.com/roguepikachu/vanish/internal/service"
	"github.com/roguepikachu/vanish/pkg/ctxutil"
)

func intPtr(v int) *int { return &v }

func TestOpenStore_Memory(t *testing.T) {
	st, err := openStore(context.Background(), config.Config{Store: config.StoreMemory})
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer st.Close()
	if _, ok := st.repo.(*memory.PasteRepository); !ok {
		t.Fatalf("want memory repository, got %T", st.repo)
	}
	if _, ok := st.repo.(repository.Sweeper); !ok {
		t.Fatal("memory repository should support sweeping")
	}
	if st.pg != nil || st.redis != nil {
		t.Fatal("memory store should not hold clients")
	}
}

func TestOpenStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	st, err := openStore(context.Background(), config.Config{Store: config.StoreRedis, RedisAddr: mr.Addr(), RedisRetention: time.Minute})
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer st.Close()
	if _, ok := st.repo.(*redisRepo.PasteRepository); !ok {
		t.Fatalf("want redis repository, got %T", st.repo)
	}
	if st.redis == nil {
		t.Fatal("redis client should be kept for readiness checks")
	}
}

func TestOpenStore_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := openStore(ctx, config.Config{Store: config.StoreRedis, RedisAddr: addr}); err == nil {
		t.Fatal("expected error for unreachable redis")
	}
}

func TestStartJanitor_TestModeKeepsPinnedPastes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := memory.NewPasteRepository()
	svc := service.NewService(repo, service.RealClock{})
	p, err := svc.CreatePaste(ctxutil.WithNow(ctx, time.UnixMilli(1000)), "hello", intPtr(60), intPtr(2))
	if err != nil {
		t.Fatalf("CreatePaste: %v", err)
	}

	cfg := config.Config{TestMode: true, SweepInterval: 5 * time.Millisecond}
	if startJanitor(ctx, cfg, repo, service.RealClock{}) {
		t.Fatal("janitor must not run in test mode")
	}
	time.Sleep(30 * time.Millisecond)

	got, err := svc.ConsumePaste(ctxutil.WithNow(ctx, time.UnixMilli(2000)), p.ID)
	if err != nil {
		t.Fatalf("pinned-readable paste was lost: %v", err)
	}
	if got.RemainingViews == nil || *got.RemainingViews != 1 {
		t.Fatalf("want 1 view left, got %v", got.RemainingViews)
	}
}

func TestStartJanitor_SweepsOutsideTestMode(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := memory.NewPasteRepository()
	svc := service.NewService(repo, service.RealClock{})
	if _, err := svc.CreatePaste(ctxutil.WithNow(ctx, time.UnixMilli(1000)), "old", intPtr(1), nil); err != nil {
		t.Fatalf("CreatePaste: %v", err)
	}

	cfg := config.Config{SweepInterval: 5 * time.Millisecond}
	if !startJanitor(ctx, cfg, repo, service.RealClock{}) {
		t.Fatal("janitor should start for a sweepable store")
	}
	deadline := time.Now().Add(2 * time.Second)
	for repo.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expired paste was never swept")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartJanitor_Disabled(t *testing.T) {
	ctx := context.Background()
	if startJanitor(ctx, config.Config{SweepInterval: 0}, memory.NewPasteRepository(), service.RealClock{}) {
		t.Fatal("zero interval should disable sweeping")
	}
	mr := miniredis.RunT(t)
	st, err := openStore(ctx, config.Config{Store: config.StoreRedis, RedisAddr: mr.Addr()})
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer st.Close()
	if startJanitor(ctx, config.Config{SweepInterval: time.Minute}, st.repo, service.RealClock{}) {
		t.Fatal("redis store does not sweep")
	}
}
