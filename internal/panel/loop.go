package panel

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Loop is the single consumer for every state mutation. Producers (fetch
// goroutines, the push listener, HTTP commands) post tasks; Run applies them
// one at a time in the order they were posted.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	logger *zap.Logger
}

func NewLoop(logger *zap.Logger) *Loop {
	return &Loop{
		wake:   make(chan struct{}, 1),
		logger: logger,
	}
}

// Post enqueues a task. It never blocks and never drops.
func (l *Loop) Post(task func()) {
	l.mu.Lock()
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do posts task and waits until it has run or ctx ends.
func (l *Loop) Do(ctx context.Context, task func()) error {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		task()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the queue until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	for {
		for {
			task, ok := l.next()
			if !ok {
				break
			}
			l.runTask(task)
		}

		select {
		case <-l.wake:
		case <-ctx.Done():
			return
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return task, true
}

func (l *Loop) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Panel task panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	task()
}
