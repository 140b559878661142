package preview

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahongtrung/phenomic/internal/build"
)

func TestShouldIgnoreEvent(t *testing.T) {
	cases := []struct {
		path   string
		ignore bool
	}{
		{"content/posts/hello.md", false},
		{"content/.hello.md.swp", true},
		{"content/hello.md~", true},
		{"content/#hello.md#", true},
		{"content/.git", true},
		{"content/Thumbs.db", true},
		{"content/data.json", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ignore, shouldIgnoreEvent(tc.path), "shouldIgnoreEvent(%q)", tc.path)
	}
}

func TestDebouncerCoalescesBursts(t *testing.T) {
	rebuildReq, trigger := newDebouncer(20 * time.Millisecond)

	for range 10 {
		trigger()
		time.Sleep(2 * time.Millisecond)
	}

	select {
	case <-rebuildReq:
	case <-time.After(time.Second):
		t.Fatal("expected a rebuild request after the burst settled")
	}

	select {
	case <-rebuildReq:
		t.Fatal("burst should coalesce into a single rebuild request")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRebuildWorkerSerializesBuilds(t *testing.T) {
	var inFlight, maxSeen, total atomic.Int32
	done := make(chan struct{}, 8)

	buildFn := func(ctx context.Context) (*build.Report, error) {
		cur := inFlight.Add(1)
		for {
			prev := maxSeen.Load()
			if cur <= prev || maxSeen.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		inFlight.Add(-1)
		total.Add(1)
		done <- struct{}{}
		return &build.Report{}, nil
	}

	stat := &status{}
	rebuildReq := make(chan struct{}, 1)
	startRebuildWorker(t.Context(), buildFn, stat, rebuildReq)

	// Fire one request, then another while the first build is running. The
	// second must be queued, not run concurrently.
	rebuildReq <- struct{}{}
	time.Sleep(10 * time.Millisecond)
	rebuildReq <- struct{}{}

	for range 2 {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for rebuilds")
		}
	}

	assert.Equal(t, int32(1), maxSeen.Load(), "builds must not overlap")
	assert.Equal(t, int32(2), total.Load())

	lastErr, good := stat.snapshot()
	require.NoError(t, lastErr)
	assert.True(t, good)
}

func TestRunBuildRecordsFailure(t *testing.T) {
	stat := &status{}
	runBuild(t.Context(), func(context.Context) (*build.Report, error) {
		return nil, assert.AnError
	}, stat)

	lastErr, good := stat.snapshot()
	assert.Error(t, lastErr)
	assert.False(t, good)

	runBuild(t.Context(), func(context.Context) (*build.Report, error) {
		return &build.Report{}, nil
	}, stat)

	lastErr, good = stat.snapshot()
	assert.NoError(t, lastErr)
	assert.True(t, good)
}
