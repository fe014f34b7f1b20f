package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/riskibarqy/match-digest/internal/scheduler"
	"github.com/riskibarqy/match-digest/internal/usecase"
)

// Publish job names accepted by RunPublish.
const (
	JobGoodMorning          = "good-morning"
	JobMatchesReady         = "matches-ready"
	JobPrediction           = "prediction"
	JobAdvert               = "advert"
	JobCouponAnnouncement   = "coupon-announcement"
	JobCoupon               = "coupon"
	JobHalfTimeAnnouncement = "half-time-announcement"
	JobHalfTimeGoals        = "half-time-goals"
)

var PublishJobs = []string{
	JobGoodMorning,
	JobMatchesReady,
	JobPrediction,
	JobAdvert,
	JobCouponAnnouncement,
	JobCoupon,
	JobHalfTimeAnnouncement,
	JobHalfTimeGoals,
}

// RunPublish posts one publish job. index selects the prediction slot and is
// ignored by the other jobs.
func (a *App) RunPublish(ctx context.Context, job string, index int) error {
	p := a.Publish
	switch job {
	case JobGoodMorning:
		return p.PostGoodMorning(ctx)
	case JobMatchesReady:
		return p.PostMatchesReady(ctx)
	case JobPrediction:
		return p.PostPrediction(ctx, index)
	case JobAdvert:
		return p.PostAdvert(ctx)
	case JobCouponAnnouncement:
		return p.PostCouponAnnouncement(ctx)
	case JobCoupon:
		return p.PostDailyCoupon(ctx)
	case JobHalfTimeAnnouncement:
		return p.PostHalfTimeAnnouncement(ctx)
	case JobHalfTimeGoals:
		return p.PostHalfTimeGoals(ctx)
	default:
		return fmt.Errorf("%w: unknown publish job %q, valid jobs are %v", usecase.ErrInvalidInput, job, PublishJobs)
	}
}

func IsPublishJob(job string) bool {
	return slices.Contains(PublishJobs, job)
}

// NewScheduler registers the daily pipeline on the configured schedules.
// Failed runs are reported through the notifier.
func (a *App) NewScheduler() (*scheduler.Scheduler, error) {
	s := scheduler.New(scheduler.Config{
		Location:  a.cfg.Location,
		OnFailure: a.NotifyFailure,
		Logger:    a.logger,
	})

	schedules := a.cfg.Schedules
	publish := func(job string) scheduler.Job {
		return func(ctx context.Context) error { return a.RunPublish(ctx, job, 0) }
	}

	if err := s.Add("ingest", schedules.Ingest, func(ctx context.Context) error {
		_, err := a.RunIngestion(ctx, "", true)
		return err
	}); err != nil {
		return nil, err
	}
	if err := s.Add("reconcile", schedules.Reconcile, func(ctx context.Context) error {
		_, err := a.RunReconcile(ctx, false)
		return err
	}); err != nil {
		return nil, err
	}
	if err := s.AddEach(JobPrediction, schedules.Predictions, func(index int) scheduler.Job {
		return func(ctx context.Context) error { return a.RunPublish(ctx, JobPrediction, index) }
	}); err != nil {
		return nil, err
	}

	for _, entry := range []struct {
		job   string
		specs string
	}{
		{JobGoodMorning, schedules.GoodMorning},
		{JobMatchesReady, schedules.MatchesReady},
		{JobAdvert, schedules.Advert},
		{JobCouponAnnouncement, schedules.CouponAnnouncement},
		{JobCoupon, schedules.Coupon},
		{JobHalfTimeAnnouncement, schedules.HalfTimeAnnounce},
		{JobHalfTimeGoals, schedules.HalfTimeList},
	} {
		if err := s.Add(entry.job, entry.specs, publish(entry.job)); err != nil {
			return nil, err
		}
	}
	return s, nil
}
