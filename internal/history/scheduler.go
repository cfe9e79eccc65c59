package history

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler prunes the history on a cron schedule
type Scheduler struct {
	history   *History
	cron      *cron.Cron
	retention time.Duration
}

// NewScheduler creates a scheduler that removes entries older than
// retention. schedule accepts standard cron expressions with an optional
// seconds field and descriptors such as "@hourly".
func NewScheduler(h *History, schedule string, retention time.Duration) (*Scheduler, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %s", retention)
	}

	s := &Scheduler{
		history:   h,
		cron:      cron.New(cron.WithLocation(time.UTC), cron.WithParser(cron.NewParser(cron.SecondOptional|cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor))),
		retention: retention,
	}
	if _, err := s.cron.AddFunc(schedule, s.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins running the schedule in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("History pruning scheduled, retention %s", s.retention)
}

// Stop halts the schedule and waits for a running prune to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce prunes entries older than the retention and syncs the storage
func (s *Scheduler) RunOnce() {
	n, err := s.history.Prune(time.Now().Add(-s.retention))
	if err != nil {
		log.Printf("Failed to prune history: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Pruned %d history entries", n)
	}
	if err := s.history.Sync(); err != nil {
		log.Printf("Failed to sync history: %v", err)
	}
}
