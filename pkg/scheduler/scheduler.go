package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aquasentinel/aquasentinel-go/utils"
)

// Service runs recurring maintenance jobs, currently the periodic model
// retraining. Jobs are registered before Start and share one cron
// runner.
type Service struct {
	cron *cron.Cron
	jobs map[string]cron.EntryID
	log  *utils.FieldLogger
}

// NewService creates a scheduler service with no jobs registered
func NewService() *Service {
	return &Service{
		cron: cron.New(),
		jobs: make(map[string]cron.EntryID),
		log:  utils.GetLogger().WithFields(utils.Component("scheduler")),
	}
}

// AddJob registers a named job under a standard cron expression
func (s *Service) AddJob(name, expr string, job func()) error {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	entryID := s.cron.Schedule(schedule, cron.FuncJob(job))
	s.jobs[name] = entryID

	s.log.Info("job scheduled",
		utils.String("job", name),
		utils.String("schedule", expr),
		utils.String("next_run", schedule.Next(time.Now()).Format(time.RFC3339)))
	return nil
}

// Start starts the cron runner
func (s *Service) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron runner, letting running jobs finish
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

// NextRun reports the next execution time of a registered job
func (s *Service) NextRun(name string) (time.Time, bool) {
	entryID, ok := s.jobs[name]
	if !ok {
		return time.Time{}, false
	}
	entry := s.cron.Entry(entryID)
	return entry.Next, entry.Valid()
}
