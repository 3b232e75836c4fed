package avatar

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	mu      sync.Mutex
	ran     []Job
	release chan struct{} // non-nil blocks Run until closed
}

func (r *recordingRunner) Run(_ context.Context, job Job) error {
	if r.release != nil {
		<-r.release
	}
	r.mu.Lock()
	r.ran = append(r.ran, job)
	r.mu.Unlock()
	return nil
}

func (r *recordingRunner) jobs() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Job(nil), r.ran...)
}

func TestPool_RunsSubmittedJobs(t *testing.T) {
	runner := &recordingRunner{}
	pool := NewPool(runner, 2, 8)
	pool.Start(context.Background())

	for i := 0; i < 5; i++ {
		require.True(t, pool.Submit(NewJob("s1", "emotion")))
	}
	pool.Stop()

	assert.Len(t, runner.jobs(), 5)
}

func TestPool_SubmitRejectsWhenSaturated(t *testing.T) {
	release := make(chan struct{})
	runner := &recordingRunner{release: release}
	pool := NewPool(runner, 1, 1)
	pool.Start(context.Background())

	// First job occupies the worker, second fills the queue.
	require.True(t, pool.Submit(NewJob("s1", "a")))
	require.Eventually(t, func() bool {
		return pool.Submit(NewJob("s1", "b"))
	}, time.Second, 5*time.Millisecond, "queue slot frees once the worker picks up the first job")

	assert.False(t, pool.Submit(NewJob("s1", "c")), "full queue rejects without blocking")

	close(release)
	pool.Stop()
}

func TestPool_ScheduleReportsSaturation(t *testing.T) {
	release := make(chan struct{})
	runner := &recordingRunner{release: release}
	pool := NewPool(runner, 1, 1)
	pool.Start(context.Background())

	require.NoError(t, pool.Schedule(context.Background(), "s1", "a"))
	require.Eventually(t, func() bool {
		return pool.Schedule(context.Background(), "s1", "b") == nil
	}, time.Second, 5*time.Millisecond)

	err := pool.Schedule(context.Background(), "s1", "c")
	assert.Error(t, err)

	close(release)
	pool.Stop()
}
