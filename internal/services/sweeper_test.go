package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) ListUserIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	args := m.Called(ctx, afterID, limit)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

type mockResyncer struct {
	mock.Mock
}

func (m *mockResyncer) Resync(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func TestDefaultSweeperConfig(t *testing.T) {
	config := DefaultSweeperConfig()

	if config.Interval != time.Hour {
		t.Errorf("expected Interval 1h, got %v", config.Interval)
	}
	if config.BatchSize != 50 {
		t.Errorf("expected BatchSize 50, got %d", config.BatchSize)
	}
}

func TestMilestoneSweeper_IsRunning(t *testing.T) {
	sweeper := NewMilestoneSweeper(nil, nil, DefaultSweeperConfig())

	if sweeper.IsRunning() {
		t.Error("sweeper should not be running initially")
	}
}

func TestMilestoneSweeper_StartTwice(t *testing.T) {
	sweeper := NewMilestoneSweeper(nil, nil, DefaultSweeperConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sweeper.Start(ctx); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if err := sweeper.Start(ctx); err == nil {
		t.Error("expected error when starting already running sweeper")
	}
	if err := sweeper.Stop(ctx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if sweeper.IsRunning() {
		t.Error("sweeper should not be running after Stop")
	}
}

func TestMilestoneSweeper_StartRejectsZeroInterval(t *testing.T) {
	sweeper := NewMilestoneSweeper(nil, nil, SweeperConfig{})
	if err := sweeper.Start(context.Background()); err == nil {
		t.Error("expected error for zero interval")
	}
}

func TestMilestoneSweeper_StopNotRunning(t *testing.T) {
	sweeper := NewMilestoneSweeper(nil, nil, DefaultSweeperConfig())

	if err := sweeper.Stop(context.Background()); err != nil {
		t.Errorf("Stop should not error when not running: %v", err)
	}
}

func TestMilestoneSweeper_ConcurrentStop(t *testing.T) {
	sweeper := NewMilestoneSweeper(nil, nil, DefaultSweeperConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := sweeper.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- sweeper.Stop(ctx)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Stop failed: %v", err)
		}
	}
	if sweeper.IsRunning() {
		t.Error("sweeper should not be running after Stop")
	}
	if err := sweeper.Start(ctx); err != nil {
		t.Errorf("restart after Stop failed: %v", err)
	}
	_ = sweeper.Stop(ctx)
}

func TestMilestoneSweeper_SweepOnce(t *testing.T) {
	ctx := context.Background()
	users := &mockUsers{}
	users.On("ListUserIDs", mock.Anything, int64(0), 2).Return([]int64{1, 2}, nil).Once()
	users.On("ListUserIDs", mock.Anything, int64(2), 2).Return([]int64{3}, nil).Once()

	sync := &mockResyncer{}
	sync.On("Resync", mock.Anything, int64(1)).Return(2, nil)
	sync.On("Resync", mock.Anything, int64(2)).Return(0, errors.New("boom"))
	sync.On("Resync", mock.Anything, int64(3)).Return(1, nil)

	sweeper := NewMilestoneSweeper(users, sync, SweeperConfig{Interval: time.Hour, BatchSize: 2})
	changed, err := sweeper.SweepOnce(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, changed, "a failing user is skipped")
	users.AssertExpectations(t)
	sync.AssertExpectations(t)
}

func TestMilestoneSweeper_SweepOnceListError(t *testing.T) {
	users := &mockUsers{}
	users.On("ListUserIDs", mock.Anything, int64(0), 50).Return(nil, errors.New("db closed"))

	sweeper := NewMilestoneSweeper(users, &mockResyncer{}, DefaultSweeperConfig())
	_, err := sweeper.SweepOnce(context.Background())
	assert.Error(t, err)
}
