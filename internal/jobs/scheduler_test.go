package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/estofaria/os-api/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// sqlite-backed tests close their pools in t.Cleanup; the opener may still be unwinding
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

func TestScheduler_AddJob(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())

	require.NoError(t, s.AddJob("b", "0 0 * * * *", func() {}))
	require.NoError(t, s.AddJob("a", "@every 1h", func() {}))

	assert.Error(t, s.AddJob("a", "@every 1h", func() {}), "duplicate name")
	assert.Error(t, s.AddJob("c", "not a spec", func() {}))
	assert.Equal(t, []string{"a", "b"}, s.JobNames())

	require.NoError(t, s.RemoveJob("a"))
	assert.Error(t, s.RemoveJob("a"))
	assert.Equal(t, []string{"b"}, s.JobNames())
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())
	ran := make(chan struct{}, 1)
	require.NoError(t, s.AddJob("tick", "* * * * * *", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))

	s.Start()
	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_RecoversPanics(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())
	calls := make(chan struct{}, 4)
	require.NoError(t, s.AddJob("boom", "* * * * * *", func() {
		calls <- struct{}{}
		panic("boom")
	}))

	s.Start()
	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(3 * time.Second):
			t.Fatal("scheduler stopped after a panic")
		}
	}
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_StopWaitsForRunningJobs(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())
	started := make(chan struct{})
	release := make(chan struct{})
	var once bool
	require.NoError(t, s.AddJob("slow", "* * * * * *", func() {
		if once {
			return
		}
		once = true
		close(started)
		<-release
	}))

	s.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, s.Stop(ctx), "job is still blocked")

	close(release)
	require.NoError(t, s.Stop(context.Background()))
}
