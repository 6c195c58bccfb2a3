package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rental-manager/internal/hierarchy"
	"rental-manager/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Hydrator is the part of the hierarchy store the scheduler drives
type Hydrator interface {
	LoadFromRemote(ctx context.Context, ownerID string) (int, error)
	Properties() []models.Property
}

// Indexer receives the full property list after each hydration
type Indexer interface {
	ReplaceAll(props []models.Property) error
}

// Scheduler periodically reloads the tree from the remote store and
// refreshes the search index
type Scheduler struct {
	cron      *cron.Cron
	store     Hydrator
	indexer   Indexer
	ownerID   string
	schedule  string
	timeout   time.Duration
	log       *logrus.Entry
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler. indexer may be nil.
func NewScheduler(store Hydrator, indexer Indexer, ownerID, schedule string, timeout time.Duration, log *logrus.Entry) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		store:    store,
		indexer:  indexer,
		ownerID:  ownerID,
		schedule: schedule,
		timeout:  timeout,
		log:      log,
	}
}

// Start starts the scheduler. An empty schedule or owner leaves it disabled.
func (s *Scheduler) Start() error {
	if s.schedule == "" || s.ownerID == "" {
		s.log.Info("periodic hydration is disabled")
		return nil
	}

	cronSpec, err := parseSchedule(s.schedule)
	if err != nil {
		return err
	}

	_, err = s.cron.AddFunc(cronSpec, func() {
		ctx := context.Background()
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		if err := s.RunNow(ctx); err != nil {
			s.log.WithError(err).Warn("scheduled hydration failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.mu.Lock()
	s.isRunning = true
	s.mu.Unlock()
	s.log.WithField("cron", cronSpec).Info("scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		<-s.cron.Stop().Done()
		s.isRunning = false
		s.log.Info("scheduler stopped")
	}
}

// RunNow hydrates the store and reindexes search
func (s *Scheduler) RunNow(ctx context.Context) error {
	n, err := s.store.LoadFromRemote(ctx, s.ownerID)
	if err != nil && !errors.Is(err, hierarchy.ErrNoGateway) {
		return err
	}
	s.log.WithField("count", n).Debug("hydration finished")

	if s.indexer == nil {
		return nil
	}
	props := s.store.Properties()
	if err := s.indexer.ReplaceAll(props); err != nil {
		return fmt.Errorf("reindex %d properties: %w", len(props), err)
	}
	return nil
}

// parseSchedule accepts a daily "HH:MM" time or a standard five-field cron spec
// Example: "02:00" -> "0 2 * * *"
func parseSchedule(schedule string) (string, error) {
	var hour, minute int
	var rest string
	n, _ := fmt.Sscanf(schedule, "%d:%d%s", &hour, &minute, &rest)
	if n == 2 {
		if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
			return "", fmt.Errorf("invalid daily time %q", schedule)
		}
		return fmt.Sprintf("%d %d * * *", minute, hour), nil
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return "", fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return schedule, nil
}
