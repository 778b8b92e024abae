package core_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/orrery/engine/core"
)

func TestNewJobSystemRejectsBadSizes(t *testing.T) {
	_, err := core.NewJobSystem(0, 1)
	assert.ErrorIs(t, err, core.ErrNoWorkers)

	_, err = core.NewJobSystem(1, -1)
	assert.ErrorIs(t, err, core.ErrNegativeChannelSize)
}

func TestJobSystemRunsCallbacks(t *testing.T) {
	js, err := core.NewJobSystem(4, 8)
	require.NoError(t, err)

	var (
		wg                          sync.WaitGroup
		started, completed, settled atomic.Int32
		mu                          sync.Mutex
		failures                    []error
	)
	boom := errors.New("boom")
	for i := 0; i < 10; i++ {
		fail := i%5 == 0
		wg.Add(1)
		require.NoError(t, js.Submit(core.JobTask{
			OnStart: func() error {
				started.Add(1)
				if fail {
					return boom
				}
				return nil
			},
			OnComplete: func() { completed.Add(1) },
			OnFailure: func(err error) {
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
			},
			OnCompletionCallback: func() {
				settled.Add(1)
				wg.Done()
			},
		}))
	}
	wg.Wait()

	assert.Equal(t, int32(10), started.Load())
	assert.Equal(t, int32(8), completed.Load())
	assert.Equal(t, int32(10), settled.Load())
	require.Len(t, failures, 2)
	assert.ErrorIs(t, failures[0], boom)

	require.NoError(t, js.Shutdown())
}

func TestJobSystemShutdown(t *testing.T) {
	js, err := core.NewJobSystem(1, 0)
	require.NoError(t, err)

	assert.ErrorIs(t, js.Submit(core.JobTask{}), core.ErrPreconditionViolation)

	var ran atomic.Bool
	require.NoError(t, js.Submit(core.JobTask{OnStart: func() error {
		ran.Store(true)
		return nil
	}}))
	require.NoError(t, js.Shutdown())
	assert.True(t, ran.Load())

	assert.ErrorIs(t, js.Shutdown(), core.ErrAlreadyShutdown)
	assert.ErrorIs(t, js.Submit(core.JobTask{OnStart: func() error { return nil }}), core.ErrAlreadyShutdown)
}
