package panel

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLoopRunsTasksInPostOrder(t *testing.T) {
	loop := NewLoop(zap.NewNop())
	var got []int
	for i := 0; i < 100; i++ {
		n := i
		loop.Post(func() { got = append(got, n) })
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	if err := loop.Do(ctx, func() {}); err != nil {
		t.Fatalf("do: %v", err)
	}
	if len(got) != 100 {
		t.Fatalf("expected 100 tasks, got %d", len(got))
	}
	for i, n := range got {
		if n != i {
			t.Fatalf("task %d ran out of order (%d)", i, n)
		}
	}
}

func TestLoopSurvivesPanickingTask(t *testing.T) {
	loop := NewLoop(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	loop.Post(func() { panic("boom") })
	ran := false
	if err := loop.Do(ctx, func() { ran = true }); err != nil {
		t.Fatalf("do: %v", err)
	}
	if !ran {
		t.Fatal("expected loop to keep running after a panic")
	}
}

func TestLoopDoHonorsContext(t *testing.T) {
	loop := NewLoop(zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := loop.Do(ctx, func() {}); err == nil {
		t.Fatal("expected context error without a running loop")
	}
}

func TestLoopConcurrentProducers(t *testing.T) {
	loop := NewLoop(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	var count int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				loop.Post(func() { count++ })
			}
		}()
	}
	wg.Wait()
	if err := loop.Do(ctx, func() {}); err != nil {
		t.Fatalf("do: %v", err)
	}

	var final int64
	_ = loop.Do(ctx, func() { final = count })
	if final != 400 {
		t.Fatalf("expected 400 tasks, got %d", final)
	}
}

func TestSchedulerTimersAreIndependent(t *testing.T) {
	var statusTicks, logTicks int64
	block := make(chan struct{})
	defer close(block)

	s := NewScheduler(10*time.Millisecond, 10*time.Millisecond,
		func(context.Context) {
			atomic.AddInt64(&statusTicks, 1)
			<-block
		},
		func(context.Context) { atomic.AddInt64(&logTicks, 1) },
		zap.NewNop(),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt64(&statusTicks) >= 3 && atomic.LoadInt64(&logTicks) >= 3 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected both timers to keep ticking, status=%d logs=%d",
		atomic.LoadInt64(&statusTicks), atomic.LoadInt64(&logTicks))
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := NewScheduler(time.Hour, time.Hour, func(context.Context) {}, func(context.Context) {}, zap.NewNop())
	s.Start(context.Background())
	s.Stop()
	s.Stop()
}
