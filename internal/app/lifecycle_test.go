package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type blockingService struct {
	started atomic.Bool
	stopped atomic.Bool
	once    sync.Once
	done    chan struct{}
}

func newBlockingService() *blockingService {
	return &blockingService{done: make(chan struct{})}
}

func (b *blockingService) Start() error {
	b.started.Store(true)
	<-b.done
	return nil
}

func (b *blockingService) Stop() {
	b.stopped.Store(true)
	b.once.Do(func() { close(b.done) })
}

func runAsync(lc *Lifecycle, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	return done
}

func waitResult(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
		return nil
	}
}

func TestLifecycle_CancelStopsServices(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	svc1, svc2 := newBlockingService(), newBlockingService()
	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)
	require.Eventually(t, func() bool {
		return svc1.started.Load() && svc2.started.Load()
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, waitResult(t, done))
	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
}

func TestLifecycle_ReturnsWhenAllServicesFinish(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	lc := NewLifecycle(zap.New(core))
	var runs atomic.Int32
	lc.Add("bounded", Funcs{StartFn: func() error {
		runs.Add(1)
		return nil
	}})

	assert.NoError(t, waitResult(t, runAsync(lc, context.Background())))
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, 1, logs.FilterMessage("service finished").Len())
	assert.Equal(t, 1, logs.FilterMessage("shutdown complete").Len())
}

func TestLifecycle_ServiceErrorStopsOthers(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	boom := errors.New("boom")
	other := newBlockingService()
	lc.Add("other", other)
	lc.Add("failing", Funcs{StartFn: func() error { return boom }})

	err := waitResult(t, runAsync(lc, context.Background()))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service failing")
	assert.True(t, other.stopped.Load())
}

func TestLifecycle_StopsInReverseOrder(t *testing.T) {
	lc := NewLifecycle(zap.NewNop())
	var mu sync.Mutex
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		svc := newBlockingService()
		lc.Add(name, Funcs{
			StartFn: svc.Start,
			StopFn: func() {
				mu.Lock()
				order = append(order, name)
				mu.Unlock()
				svc.Stop()
			},
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, waitResult(t, runAsync(lc, ctx)))
	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestFuncs(t *testing.T) {
	started, stopped := false, false
	svc := Funcs{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn: func() { stopped = true },
	}
	assert.NoError(t, svc.Start())
	assert.True(t, started)
	svc.Stop()
	assert.True(t, stopped)

	assert.NotPanics(t, Funcs{StartFn: func() error { return nil }}.Stop)
}
