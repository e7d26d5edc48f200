package workerutil

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type faultLog struct {
	mu     sync.Mutex
	faults map[string]error
	done   int
}

func (f *faultLog) options() Options {
	f.faults = make(map[string]error)
	return Options{
		OnFault: func(task string, err error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.faults[task] = err
		},
		OnDone: func(string, time.Time, time.Duration, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.done++
		},
	}
}

func TestRunnerRecoversPanics(t *testing.T) {
	var fl faultLog
	r := NewRunner(context.Background(), fl.options())

	r.Go("boom", func(context.Context) error { panic("bad action") })
	r.Go("fails", func(context.Context) error { return errors.New("no device") })
	r.Go("ok", func(context.Context) error { return nil })
	require.True(t, r.Shutdown(time.Second))

	fl.mu.Lock()
	defer fl.mu.Unlock()
	assert.Equal(t, 3, fl.done)
	require.Len(t, fl.faults, 2)

	var pe *PanicError
	require.True(t, errors.As(fl.faults["boom"], &pe))
	assert.Equal(t, "bad action", pe.Value)
	assert.NotEmpty(t, pe.Stack)
	assert.EqualError(t, fl.faults["fails"], "no device")
}

func TestRunnerShutdownCancelsContext(t *testing.T) {
	r := NewRunner(context.Background(), Options{})
	started := make(chan struct{})
	r.Go("poller", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	})
	<-started
	assert.True(t, r.Shutdown(time.Second))
	assert.Equal(t, int64(0), r.Running())
}

func TestRunnerShutdownAbandonsAfterGrace(t *testing.T) {
	r := NewRunner(context.Background(), Options{})
	release := make(chan struct{})
	defer close(release)
	r.Go("stuck", func(context.Context) error {
		<-release
		return nil
	})

	start := time.Now()
	assert.False(t, r.Shutdown(50*time.Millisecond))
	assert.Less(t, time.Since(start), time.Second)
}

func TestRunnerDropsAfterShutdown(t *testing.T) {
	r := NewRunner(context.Background(), Options{})
	require.True(t, r.Shutdown(time.Second))
	assert.False(t, r.Go("late", func(context.Context) error { return nil }))
}
