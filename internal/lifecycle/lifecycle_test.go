package lifecycle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	started atomic.Bool
	stopped atomic.Bool
	startFn func() error
}

func (m *mockService) Start() error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn()
	}
	// Block until stopped
	for !m.stopped.Load() {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func (m *mockService) Stop() {
	m.stopped.Store(true)
}

func runAsync(lc *Lifecycle, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	return done
}

func await(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
		return nil
	}
}

func TestLifecycle_CancelStopsBlockingServices(t *testing.T) {
	lc := New(zaptest.NewLogger(t))
	svc1, svc2 := &mockService{}, &mockService{}
	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)
	require.Eventually(t, func() bool { return svc1.started.Load() && svc2.started.Load() }, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, await(t, done))
	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
}

func TestLifecycle_ReturnsWhenAllServicesFinish(t *testing.T) {
	lc := New(zaptest.NewLogger(t))
	a := &mockService{startFn: func() error { return nil }}
	b := &mockService{startFn: func() error { time.Sleep(20 * time.Millisecond); return nil }}
	lc.Add("a", a)
	lc.Add("b", b)

	assert.NoError(t, await(t, runAsync(lc, context.Background())))
	assert.True(t, a.stopped.Load())
	assert.True(t, b.stopped.Load())
}

func TestLifecycle_FailureStopsTheRest(t *testing.T) {
	lc := New(zaptest.NewLogger(t))
	boom := errors.New("boom")
	blocking := &mockService{}
	lc.Add("blocking", blocking)
	lc.Add("failing", &mockService{startFn: func() error { return boom }})

	err := await(t, runAsync(lc, context.Background()))
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "service failing")
	assert.True(t, blocking.stopped.Load())
}

func TestContextService_StopCancels(t *testing.T) {
	svc := ContextService(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	done := make(chan error, 1)
	go func() { done <- svc.Start() }()
	svc.Stop()
	assert.NoError(t, await(t, done))
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	assert.NoError(t, svc.Start())
	assert.True(t, started)
	svc.Stop()
	assert.True(t, stopped)

	(&FuncService{StartFn: func() error { return nil }}).Stop()
}
