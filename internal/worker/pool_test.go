package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type testResult struct {
	value int
	err   error
}

func (r *testResult) GetError() error { return r.err }

type testJob struct {
	value int
	delay time.Duration
	fail  bool
}

func (j *testJob) Execute(ctx context.Context) Result {
	if j.delay > 0 {
		select {
		case <-time.After(j.delay):
		case <-ctx.Done():
			return &testResult{err: ctx.Err()}
		}
	}
	if j.fail {
		return &testResult{err: errors.New("job failed")}
	}
	return &testResult{value: j.value}
}

func TestPoolRunsAllJobs(t *testing.T) {
	pool := NewPool(3)
	pool.Start()

	for i := 1; i <= 10; i++ {
		pool.Submit(&testJob{value: i})
	}

	results := pool.Wait()
	if len(results) != 10 {
		t.Fatalf("results = %d, want 10", len(results))
	}

	sum := 0
	for _, r := range results {
		tr := r.(*testResult)
		if tr.err != nil {
			t.Errorf("unexpected error: %v", tr.err)
		}
		sum += tr.value
	}
	if sum != 55 {
		t.Errorf("sum = %d, want 55", sum)
	}
}

func TestPoolCollectsFailures(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	pool.Submit(&testJob{value: 1})
	pool.Submit(&testJob{fail: true})

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}

	var failures int
	for _, r := range results {
		if r.GetError() != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("failures = %d, want 1: one bad job must not drop the other's result", failures)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	pool := NewPool(2)

	var running, peak atomic.Int32
	jobs := make([]*gaugeJob, 8)
	for i := range jobs {
		jobs[i] = &gaugeJob{running: &running, peak: &peak}
	}

	pool.Start()
	for _, j := range jobs {
		pool.Submit(j)
	}
	pool.Wait()

	if got := peak.Load(); got > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", got)
	}
}

type gaugeJob struct {
	running *atomic.Int32
	peak    *atomic.Int32
}

func (j *gaugeJob) Execute(ctx context.Context) Result {
	now := j.running.Add(1)
	for {
		old := j.peak.Load()
		if now <= old || j.peak.CompareAndSwap(old, now) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	j.running.Add(-1)
	return &testResult{}
}

func TestPoolShutdownStopsWorkers(t *testing.T) {
	pool := NewPool(1)
	pool.Start()

	pool.Submit(&testJob{delay: time.Minute})

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown() did not cancel the in-flight job")
	}
}

func TestPoolZeroWorkersDefaultsToOne(t *testing.T) {
	pool := NewPool(0)
	pool.Start()
	pool.Submit(&testJob{value: 42})

	results := pool.Wait()
	if len(results) != 1 || results[0].(*testResult).value != 42 {
		t.Fatalf("results = %+v", results)
	}
}
