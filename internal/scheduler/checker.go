package scheduler

import (
	"context"
	"time"

	"github.com/hako/durafmt"
	log "github.com/sirupsen/logrus"

	"planboard/internal/models"
	"planboard/internal/repositories"
)

// DefaultInterval is the period of the expiration sweep.
const DefaultInterval = 60 * time.Second

// Checker walks every plan on a fixed period and flips status between normal
// and expired from the deadline comparison. Moving a deadline back into the
// future clears an expired status on the next tick.
type Checker struct {
	plans    repositories.PlanRepository
	interval time.Duration
	now      func() time.Time
}

func NewChecker(plans repositories.PlanRepository, interval time.Duration) *Checker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Checker{plans: plans, interval: interval, now: time.Now}
}

// Run blocks until the context is cancelled.
func (c *Checker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	log.Infof("expiration checker running every %s", durafmt.Parse(c.interval))
	for {
		select {
		case <-ctx.Done():
			log.Info("expiration checker stopped")
			return
		case <-ticker.C:
			if err := c.Tick(ctx); err != nil {
				log.Errorf("expiration check failed: %v", err)
			}
		}
	}
}

// Tick runs one sweep. Every plan is persisted every tick whether or not its
// status changed.
func (c *Checker) Tick(ctx context.Context) error {
	plans, err := c.plans.FindAll(ctx)
	if err != nil {
		return err
	}

	now := c.now()
	for i := range plans {
		plan := &plans[i]
		expired := now.After(plan.Deadline)
		if expired {
			plan.Status = models.PlanStatusExpired
		} else if plan.Status == models.PlanStatusExpired {
			plan.Status = models.PlanStatusNormal
		}
		if err := c.plans.Save(ctx, plan); err != nil {
			return err
		}
	}
	log.Debug("scheduled expiration check completed")
	return nil
}
