// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/schoolshelf/librarian/internal/tasks"
)

// AuditCleanupScheduler periodically enqueues the audit retention task.
type AuditCleanupScheduler struct {
	taskClient    *tasks.Client
	schedule      string
	retentionDays int

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

func NewAuditCleanupScheduler(taskClient *tasks.Client, schedule string, retentionDays int) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		taskClient:    taskClient,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start schedules the cleanup job. The actual deletion runs through the task
// queue so a crash mid-cleanup is retried by backlite, not lost.
func (s *AuditCleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.taskClient == nil {
		log.Printf("Audit cleanup scheduler: task queue disabled, skipping")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, s.enqueueCleanup)
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup job: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Audit cleanup scheduler: started with schedule %q (retention %d days)", s.schedule, s.retentionDays)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	log.Printf("Audit cleanup scheduler: stopped")
}

func (s *AuditCleanupScheduler) enqueueCleanup() {
	_, err := s.taskClient.Add(tasks.CleanupAuditLogsTask{
		RetentionDays: s.retentionDays,
	}).Save()
	if err != nil {
		log.Printf("Audit cleanup scheduler: failed to enqueue cleanup task: %v", err)
	}
}
