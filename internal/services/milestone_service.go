package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"pfm/internal/cache"
	"pfm/internal/core"
	"pfm/internal/log"
	"pfm/internal/metrics"
	"pfm/internal/milestones"
	"pfm/internal/notify"
	"pfm/internal/storage"

	"github.com/google/uuid"
)

// ErrSyncFailed is returned when milestone statuses could not be persisted,
// including after the single conflict retry.
var ErrSyncFailed = errors.New("milestone sync failed")

// MilestoneService evaluates Baby Steps progress and keeps the persisted
// per-step statuses in line with it.
type MilestoneService struct {
	store    storage.Store
	notifier notify.Notifier
	metrics  *metrics.Metrics
	reports  cache.Store
	now      func() time.Time
}

func NewMilestoneService(store storage.Store, notifier notify.Notifier, m *metrics.Metrics) *MilestoneService {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &MilestoneService{
		store:    store,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
}

// WithReportCache enables caching of evaluation reports.
func (s *MilestoneService) WithReportCache(c cache.Store) *MilestoneService {
	s.reports = c
	return s
}

// WithClock overrides the time source used for completed_at.
func (s *MilestoneService) WithClock(now func() time.Time) *MilestoneService {
	s.now = now
	return s
}

// reportRecord has Report's fields without its custom JSON shape, so a
// cached report decodes back losslessly.
type reportRecord milestones.Report

// Cached reports are keyed by two generation tokens: one per user, bumped by
// Invalidate, and a global one bumped by InvalidateAll. A report is always
// stored under the key computed before its inputs were read, so an
// invalidation that races with an evaluation orphans the stale entry
// instead of being overwritten by it.
const reportEpochKey = "report:epoch"

func reportGenKey(userID int64) string {
	return "report:gen:" + strconv.FormatInt(userID, 10)
}

func (s *MilestoneService) reportKey(ctx context.Context, userID int64) (string, error) {
	epoch, err := s.generation(ctx, reportEpochKey)
	if err != nil {
		return "", err
	}
	gen, err := s.generation(ctx, reportGenKey(userID))
	if err != nil {
		return "", err
	}
	return "report:" + strconv.FormatInt(userID, 10) + ":" + epoch + ":" + gen, nil
}

// generation returns the token stored at key, minting one when absent.
// Tokens are random so an expired generation never comes back.
func (s *MilestoneService) generation(ctx context.Context, key string) (string, error) {
	data, ok, err := s.reports.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if ok {
		return string(data), nil
	}
	return s.bump(ctx, key)
}

func (s *MilestoneService) bump(ctx context.Context, key string) (string, error) {
	token := uuid.NewString()
	if err := s.reports.Set(ctx, key, []byte(token)); err != nil {
		return "", err
	}
	return token, nil
}

// Evaluate builds the milestone report for a user. An unknown user yields
// the "user not found" report rather than an error.
func (s *MilestoneService) Evaluate(ctx context.Context, userID int64) (milestones.Report, error) {
	key := s.cacheKey(ctx, userID)
	if rep, ok := s.cachedReport(ctx, userID, key); ok {
		return rep, nil
	}

	user, in, err := loadInput(ctx, s.store, userID)
	if errors.Is(err, core.ErrNotFound) {
		s.metrics.Evaluation("not_found")
		return milestones.NotFoundReport(), nil
	}
	if err != nil {
		s.metrics.Evaluation("error")
		return milestones.Report{}, fmt.Errorf("evaluate milestones for user %d: %w", userID, err)
	}

	rep := milestones.NewReport(user, in)
	if rep.NoData {
		s.metrics.Evaluation("no_data")
	} else {
		s.metrics.Evaluation("ok")
	}
	s.storeReport(ctx, userID, key, rep)
	return rep, nil
}

// Statuses returns the persisted per-step statuses of a user.
func (s *MilestoneService) Statuses(ctx context.Context, userID int64) ([]core.UserMilestoneStatus, error) {
	return s.store.ListUserMilestones(ctx, userID)
}

// RecalculateAndNotify re-evaluates a user's milestones, persists any
// completion changes and sends the status summary. The read-evaluate-write
// cycle runs in one transaction and is retried once on a store conflict.
// Notification failures are logged, never returned.
func (s *MilestoneService) RecalculateAndNotify(ctx context.Context, userID int64) error {
	_, err := s.recalculate(ctx, userID, true)
	return err
}

// Resync is RecalculateAndNotify for background sweeps: the summary is only
// sent when at least one step changed. It returns the number of changes.
func (s *MilestoneService) Resync(ctx context.Context, userID int64) (int, error) {
	return s.recalculate(ctx, userID, false)
}

func (s *MilestoneService) recalculate(ctx context.Context, userID int64, always bool) (int, error) {
	res, err := s.syncOnce(ctx, userID)
	if errors.Is(err, core.ErrConflict) {
		slog.WarnContext(ctx, "Milestone sync conflict, retrying", "user_id", userID, "error", err)
		res, err = s.syncOnce(ctx, userID)
	}
	if errors.Is(err, core.ErrNotFound) {
		return 0, fmt.Errorf("recalculate milestones: user %d: %w", userID, err)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: user %d: %v", ErrSyncFailed, userID, err)
	}
	s.Invalidate(ctx, userID)

	if res.flags == nil {
		slog.DebugContext(ctx, "No questionnaire submitted, skipping milestone sync", "user_id", userID)
		return 0, nil
	}
	if !always && res.changed == 0 {
		return 0, nil
	}
	if to := notify.RecipientFor(res.user); to.Reachable() {
		notify.Send(ctx, s.notifier, s.metrics, to, notify.MilestoneUpdate(res.user.Username, res.flags))
	}
	return res.changed, nil
}

type syncResult struct {
	user    core.User
	flags   map[int]bool
	changed int
}

func (s *MilestoneService) syncOnce(ctx context.Context, userID int64) (syncResult, error) {
	var res syncResult
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		u, in, err := loadInput(ctx, tx, userID)
		if err != nil {
			return err
		}
		res.user = u
		results := milestones.Evaluate(in)
		if results == nil {
			return nil
		}
		res.flags = milestones.Flags(results)
		res.changed, err = s.persist(ctx, tx, userID, res.flags)
		return err
	})
	return res, err
}

// persist applies completion transitions. Rows are created on first sight;
// false→true stamps completed_at, true→false clears it, and unchanged
// rows are not written.
func (s *MilestoneService) persist(ctx context.Context, tx storage.MilestoneStore, userID int64, flags map[int]bool) (int, error) {
	existing, err := tx.ListUserMilestones(ctx, userID)
	if err != nil {
		return 0, err
	}
	byStep := make(map[int]core.UserMilestoneStatus, len(existing))
	for _, st := range existing {
		byStep[st.Step] = st
	}

	now := s.now().UTC()
	changed := 0
	for step := 1; step <= milestones.TotalSteps; step++ {
		completed := flags[step]
		st, ok := byStep[step]
		if !ok {
			st = core.UserMilestoneStatus{UserID: userID, Step: step, IsCompleted: completed}
			if completed {
				st.CompletedAt = &now
			}
			if _, err := tx.CreateUserMilestone(ctx, st); err != nil {
				return 0, err
			}
			s.metrics.Transition(step, completed)
			changed++
			continue
		}
		if st.IsCompleted == completed {
			continue
		}
		st.IsCompleted = completed
		st.CompletedAt = nil
		if completed {
			st.CompletedAt = &now
		}
		if err := tx.UpdateUserMilestone(ctx, st); err != nil {
			return 0, err
		}
		s.metrics.Transition(step, completed)
		changed++
		log.Default().LogMilestoneChanged(ctx, userID, step, completed)
	}
	return changed, nil
}

// Invalidate drops the cached report of a user.
func (s *MilestoneService) Invalidate(ctx context.Context, userID int64) {
	if s.reports == nil {
		return
	}
	if _, err := s.bump(ctx, reportGenKey(userID)); err != nil {
		slog.WarnContext(ctx, "Failed to invalidate report cache", "user_id", userID, "error", err)
	}
}

// InvalidateAll drops every cached report. Used when shared inputs such as
// category names change.
func (s *MilestoneService) InvalidateAll(ctx context.Context) {
	if s.reports == nil {
		return
	}
	if _, err := s.bump(ctx, reportEpochKey); err != nil {
		slog.WarnContext(ctx, "Failed to invalidate report cache", "error", err)
	}
}

// cacheKey returns "" when caching is off or the generations are unreadable.
func (s *MilestoneService) cacheKey(ctx context.Context, userID int64) string {
	if s.reports == nil {
		return ""
	}
	key, err := s.reportKey(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "Report cache unavailable", "user_id", userID, "error", err)
		return ""
	}
	return key
}

func (s *MilestoneService) cachedReport(ctx context.Context, userID int64, key string) (milestones.Report, bool) {
	if key == "" {
		return milestones.Report{}, false
	}
	data, ok, err := s.reports.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "Report cache lookup failed", "user_id", userID, "error", err)
		return milestones.Report{}, false
	}
	s.metrics.CacheLookup(ok)
	if !ok {
		return milestones.Report{}, false
	}
	var rec reportRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		slog.WarnContext(ctx, "Discarding corrupt cached report", "user_id", userID, "error", err)
		return milestones.Report{}, false
	}
	return milestones.Report(rec), true
}

func (s *MilestoneService) storeReport(ctx context.Context, userID int64, key string, rep milestones.Report) {
	if key == "" {
		return
	}
	data, err := json.Marshal(reportRecord(rep))
	if err != nil {
		return
	}
	if err := s.reports.Set(ctx, key, data); err != nil {
		slog.WarnContext(ctx, "Failed to cache report", "user_id", userID, "error", err)
	}
}

// loadInput gathers everything the evaluator reads for one user.
func loadInput(ctx context.Context, s storage.Store, userID int64) (core.User, milestones.Input, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return core.User{}, milestones.Input{}, err
	}
	resp, err := s.LatestResponse(ctx, userID)
	if err != nil {
		return user, milestones.Input{}, err
	}
	in := milestones.Input{Salary: user.Salary, Response: resp}
	if resp == nil {
		return user, in, nil
	}
	if in.Sums, err = categorySums(ctx, s, userID); err != nil {
		return user, in, err
	}
	if in.PlannedChildren, err = s.PlannedContributionTotal(ctx, userID); err != nil {
		return user, in, err
	}
	return user, in, nil
}
