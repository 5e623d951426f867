// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/damoang/angple-wiki/pkg/logger"
	"github.com/robfig/cron/v3"
)

// InvitationPurger deletes long-expired invitations
type InvitationPurger interface {
	PurgeExpired(ctx context.Context, retain time.Duration) (int64, error)
}

// Scheduler wraps a cron runner
type Scheduler struct {
	cron *cron.Cron
}

// New creates a scheduler; jobs are added with the Add* methods before Start
func New() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// AddInvitationPurge schedules removal of unused invitations expired for longer than retain
func (s *Scheduler) AddInvitationPurge(spec string, purger InvitationPurger, retain time.Duration) error {
	_, err := s.cron.AddFunc(spec, func() {
		PurgeInvitations(context.Background(), purger, retain)
	})
	return err
}

// PurgeInvitations runs one purge and logs the outcome
func PurgeInvitations(ctx context.Context, purger InvitationPurger, retain time.Duration) {
	n, err := purger.PurgeExpired(ctx, retain)
	if err != nil {
		logger.GetLogger().Error().Err(err).Msg("purge expired invitations")
		return
	}
	if n > 0 {
		logger.GetLogger().Info().Int64("deleted", n).Msg("purged expired invitations")
	}
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.GetLogger().Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.GetLogger().Info().Msg("scheduler stopped")
}
