package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/logging"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/metrics"
)

// AgentLister lists the agents that have stored results.
type AgentLister interface {
	Agents(ctx context.Context) ([]string, error)
}

// DigestScheduler periodically generates a report for every stored agent and
// writes a summary of it to the log.
type DigestScheduler struct {
	cron     *cron.Cron
	agents   AgentLister
	reports  *ReportService
	schedule string
	logger   logrus.FieldLogger
	recorder *metrics.Recorder

	mu      sync.Mutex
	running bool
}

// NewDigestScheduler creates a scheduler firing on the given cron expression.
// An empty schedule disables it.
func NewDigestScheduler(agents AgentLister, reports *ReportService, schedule string, logger logrus.FieldLogger, recorder *metrics.Recorder) *DigestScheduler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &DigestScheduler{
		cron:     cron.New(),
		agents:   agents,
		reports:  reports,
		schedule: schedule,
		logger:   logger.WithField("job", "digest"),
		recorder: recorder,
	}
}

// Start registers the digest job and starts the cron runner.
func (s *DigestScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("digest scheduler already running")
	}
	if s.schedule == "" {
		s.logger.Info("digest scheduler disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			s.logger.WithError(err).Warn("digest run finished with errors")
		}
	}); err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.running = true
	s.logger.WithField("schedule", s.schedule).Info("digest scheduler started")
	return nil
}

// Stop halts the cron runner and waits for a running digest to finish or ctx to expire.
func (s *DigestScheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("digest scheduler stop timed out")
	}
}

// RunOnce generates a report for every stored agent and returns how many
// succeeded. A failing agent is logged and skipped; the joined failures are returned.
func (s *DigestScheduler) RunOnce(ctx context.Context) (int, error) {
	agents, err := s.agents.Agents(ctx)
	if err != nil {
		s.recorder.ObserveDigest(err)
		return 0, fmt.Errorf("failed to list agents: %w", err)
	}

	var (
		generated int
		errs      []error
	)
	for _, agentID := range agents {
		report, err := s.reports.Generate(ctx, agentID)
		if err != nil {
			s.logger.WithField("agent", agentID).WithError(err).Warn("failed to generate digest report")
			errs = append(errs, fmt.Errorf("agent %s: %w", agentID, err))
			continue
		}
		generated++

		entry := s.logger.WithFields(logrus.Fields{
			"agent":           agentID,
			"insights":        len(report.Insights),
			"recommendations": len(report.Recommendations),
		})
		if len(report.Recommendations) > 0 {
			top := report.Recommendations[0]
			entry = entry.WithFields(logrus.Fields{
				"top_priority": top.Priority,
				"top_title":    top.Title,
			})
		}
		entry.Info("agent digest")
	}

	err = errors.Join(errs...)
	s.recorder.ObserveDigest(err)
	s.logger.WithFields(logrus.Fields{
		"agents":    len(agents),
		"generated": generated,
	}).Info("digest run finished")
	return generated, err
}
