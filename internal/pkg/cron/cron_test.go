package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSchedulerRunsAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(zaptest.NewLogger(t))

	var ok, bad atomic.Int32
	s.Register(Job{Name: "evict", Interval: 5 * time.Millisecond, Fn: func(context.Context) error {
		ok.Add(1)
		return nil
	}})
	s.Register(Job{Name: "broken", Interval: 5 * time.Millisecond, Fn: func(context.Context) error {
		bad.Add(1)
		return errors.New("nope")
	}})

	s.Start(ctx)
	require.Eventually(t, func() bool { return ok.Load() >= 2 && bad.Load() >= 1 }, time.Second, time.Millisecond)
	cancel()
	s.Wait()

	items := s.List()
	require.Len(t, items, 2)
	assert.Equal(t, "broken", items[0].Name)
	assert.Equal(t, StatusReject, items[0].Status)
	assert.Equal(t, "nope", items[0].Message)
	assert.Equal(t, "evict", items[1].Name)
	assert.Equal(t, StatusFulfill, items[1].Status)
	assert.NotNil(t, items[1].LastRunAt)
}

func TestListBeforeStart(t *testing.T) {
	s := New(nil)
	s.Register(Job{Name: "idle", Interval: time.Hour, Fn: func(context.Context) error { return nil }})
	items := s.List()
	require.Len(t, items, 1)
	assert.Equal(t, StatusIdle, items[0].Status)
	assert.Nil(t, items[0].LastRunAt)
}
