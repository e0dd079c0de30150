package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SweeperConfig holds configuration for the milestone sweeper
type SweeperConfig struct {
	// Interval is how often every user is re-synced (default: 1h)
	Interval time.Duration

	// BatchSize is how many user ids are read per page (default: 50)
	BatchSize int
}

// DefaultSweeperConfig returns sensible defaults
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval:  time.Hour,
		BatchSize: 50,
	}
}

// userLister is the part of the store the sweeper pages through.
type userLister interface {
	ListUserIDs(ctx context.Context, afterID int64, limit int) ([]int64, error)
}

// resyncer re-evaluates one user's milestones.
type resyncer interface {
	Resync(ctx context.Context, userID int64) (int, error)
}

// MilestoneSweeper periodically re-syncs the milestone statuses of every
// user so that changes not triggered by a questionnaire write (new
// expenses, salary updates, children plans) are eventually persisted.
type MilestoneSweeper struct {
	users  userLister
	sync   resyncer
	config SweeperConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewMilestoneSweeper(users userLister, sync resyncer, config SweeperConfig) *MilestoneSweeper {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultSweeperConfig().BatchSize
	}
	return &MilestoneSweeper{
		users:  users,
		sync:   sync,
		config: config,
	}
}

// Start begins the sweep loop. Returns an error if already running.
func (p *MilestoneSweeper) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("milestone sweeper is already running")
	}
	if p.config.Interval <= 0 {
		p.mu.Unlock()
		return fmt.Errorf("milestone sweeper interval must be positive")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Milestone sweeper started",
		"interval", p.config.Interval,
		"batch_size", p.config.BatchSize)

	return nil
}

// Stop gracefully stops the sweeper and waits for completion. It is safe to
// call concurrently and more than once.
func (p *MilestoneSweeper) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	select {
	case <-p.stopCh:
	default:
		close(p.stopCh)
	}
	done := p.doneCh
	p.mu.Unlock()

	select {
	case <-done:
		slog.InfoContext(ctx, "Milestone sweeper stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Milestone sweeper stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	if p.doneCh == done {
		p.running = false
	}
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the sweeper is currently running
func (p *MilestoneSweeper) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *MilestoneSweeper) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.SweepOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "Milestone sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce re-syncs every user once and returns the number of step
// changes persisted. A failing user is logged and skipped.
func (p *MilestoneSweeper) SweepOnce(ctx context.Context) (int, error) {
	var after int64
	changed, users := 0, 0
	for {
		ids, err := p.users.ListUserIDs(ctx, after, p.config.BatchSize)
		if err != nil {
			return changed, fmt.Errorf("list users after %d: %w", after, err)
		}
		for _, id := range ids {
			select {
			case <-p.stopCh:
				return changed, nil
			case <-ctx.Done():
				return changed, ctx.Err()
			default:
			}
			n, err := p.sync.Resync(ctx, id)
			if err != nil {
				slog.WarnContext(ctx, "Milestone resync failed", "user_id", id, "error", err)
				continue
			}
			changed += n
		}
		users += len(ids)
		if len(ids) < p.config.BatchSize {
			break
		}
		after = ids[len(ids)-1]
	}
	slog.InfoContext(ctx, "Milestone sweep complete", "users", users, "changes", changed)
	return changed, nil
}
