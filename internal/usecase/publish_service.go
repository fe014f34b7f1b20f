package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/riskibarqy/match-digest/internal/digest"
	"github.com/riskibarqy/match-digest/internal/domain/match"
	"github.com/riskibarqy/match-digest/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// MajorLeagues is the default set of leagues whose predictions are posted.
var MajorLeagues = []string{
	"Spanish La Liga",
	"English Premier League",
	"German Bundesliga",
	"Italian Serie A",
	"French Ligue 1",
	"Turkey Super Lig",
	"UEFA Champions League",
	"UEFA Europa League",
	"UEFA Europa Conference League",
	"England Championship",
}

type PublishConfig struct {
	Leagues    []string
	CouponSize int
	SiteURL    string
	Location   *time.Location
}

// PublishService posts the day's stored predictions to a notifier.
type PublishService struct {
	reader   match.Reader
	notifier Notifier
	ads      *AdRotator
	cfg      PublishConfig
	logger   *logging.Logger
	now      func() time.Time
	shuffle  func(n int, swap func(i, j int))
}

func NewPublishService(reader match.Reader, notifier Notifier, ads *AdRotator, cfg PublishConfig, logger *logging.Logger) *PublishService {
	if len(cfg.Leagues) == 0 {
		cfg.Leagues = MajorLeagues
	}
	if cfg.CouponSize < 1 {
		cfg.CouponSize = 3
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if ads == nil {
		ads = NewAdRotator(DefaultAdverts())
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PublishService{
		reader:   reader,
		notifier: notifier,
		ads:      ads,
		cfg:      cfg,
		logger:   logger.Named("publish"),
		now:      time.Now,
		shuffle:  rand.Shuffle,
	}
}

func (s *PublishService) today() time.Time {
	return s.now().In(s.cfg.Location)
}

// Today is the current date in the publishing zone, as YYYY-MM-DD.
func (s *PublishService) Today() string {
	return s.today().Format(match.DateLayout)
}

func (s *PublishService) PostGoodMorning(ctx context.Context) error {
	return s.send(ctx, "good_morning", digest.GoodMorning(s.today().Weekday()))
}

func (s *PublishService) PostMatchesReady(ctx context.Context) error {
	return s.send(ctx, "matches_ready", digest.MatchesReady)
}

func (s *PublishService) PostCouponAnnouncement(ctx context.Context) error {
	return s.send(ctx, "coupon_announcement", digest.CouponAnnouncement)
}

func (s *PublishService) PostHalfTimeAnnouncement(ctx context.Context) error {
	return s.send(ctx, "half_time_announcement", digest.HalfTimeAnnouncement)
}

// PostPrediction posts the index-th publishable league prediction of the day,
// ordered by kickoff. An index past the end sends nothing.
func (s *PublishService) PostPrediction(ctx context.Context, index int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PublishService.PostPrediction", attribute.Int("publish.index", index))
	defer span.End()

	if index < 0 {
		return fmt.Errorf("%w: prediction index must be >= 0", ErrInvalidInput)
	}
	messages, err := s.predictionMessages(ctx)
	if err != nil {
		recordSpanError(span, err)
		return err
	}
	if len(messages) == 0 {
		if index == 0 {
			return s.send(ctx, "prediction", digest.NoPredictions)
		}
		return nil
	}
	if index >= len(messages) {
		s.logger.InfoContext(ctx, "no prediction for slot", "index", index, "available", len(messages))
		return nil
	}
	return s.send(ctx, "prediction", messages[index])
}

func (s *PublishService) predictionMessages(ctx context.Context) ([]string, error) {
	date := s.Today()
	views, err := s.reader.ListLeaguePredictions(ctx, date, s.cfg.Leagues)
	if err != nil {
		return nil, fmt.Errorf("list league predictions date=%s: %w", date, err)
	}
	out := make([]string, 0, len(views))
	for _, view := range views {
		text, err := digest.Prediction(view, s.cfg.SiteURL)
		if errors.Is(err, digest.ErrNothingToPublish) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}

// PostDailyCoupon posts CouponSize randomly chosen picks of the day.
func (s *PublishService) PostDailyCoupon(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PublishService.PostDailyCoupon")
	defer span.End()

	date := s.Today()
	views, err := s.reader.ListLeaguePredictions(ctx, date, s.cfg.Leagues)
	if err != nil {
		recordSpanError(span, err)
		return fmt.Errorf("list coupon candidates date=%s: %w", date, err)
	}

	picks := make([]digest.Pick, 0, len(views))
	for _, view := range views {
		market, value, ok := digest.BestPick(view.Prediction)
		if !ok {
			continue
		}
		picks = append(picks, digest.Pick{Match: view.Match, Market: market, Value: value})
	}
	if len(picks) < s.cfg.CouponSize {
		s.logger.InfoContext(ctx, "not enough coupon candidates", "available", len(picks), "required", s.cfg.CouponSize)
		return s.send(ctx, "coupon", digest.NotEnoughCouponPicks)
	}

	s.shuffle(len(picks), func(i, j int) { picks[i], picks[j] = picks[j], picks[i] })
	picks = picks[:s.cfg.CouponSize]
	return s.send(ctx, "coupon", digest.Coupon(date, picks, s.cfg.SiteURL))
}

func (s *PublishService) PostHalfTimeGoals(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PublishService.PostHalfTimeGoals")
	defer span.End()

	date := s.Today()
	picks, err := s.reader.ListHalfTimeGoalPicks(ctx, date)
	if err != nil {
		recordSpanError(span, err)
		return fmt.Errorf("list half-time goal picks date=%s: %w", date, err)
	}
	if len(picks) == 0 {
		return s.send(ctx, "half_time_goals", digest.NoHalfTimePicks)
	}
	return s.send(ctx, "half_time_goals", digest.HalfTimeGoals(date, picks, s.cfg.SiteURL))
}

// PostAdvert posts the next advert, as a photo when its image file exists.
func (s *PublishService) PostAdvert(ctx context.Context) error {
	ad, ok := s.ads.Next()
	if !ok {
		s.logger.InfoContext(ctx, "no adverts configured")
		return nil
	}
	if ad.Image != "" {
		if _, err := os.Stat(ad.Image); err == nil {
			if err := s.notifier.SendPhoto(ctx, ad.Image, ad.Text); err != nil {
				return fmt.Errorf("send advert photo: %w", err)
			}
			return nil
		}
		s.logger.WarnContext(ctx, "advert image missing, sending text", "image", ad.Image)
	}
	return s.send(ctx, "advert", ad.Text)
}

func (s *PublishService) PostIngestionReport(ctx context.Context, summary IngestionSummary, runErr error) error {
	title := "✅ Match analysis finished " + summary.Date
	if runErr != nil {
		title = "❌ Match analysis failed " + summary.Date
	}
	fields := []digest.Field{
		{Label: "status", Value: string(summary.Status)},
		{Label: "total", Value: strconv.Itoa(summary.Total)},
		{Label: "stored", Value: strconv.Itoa(summary.Success)},
		{Label: "failed", Value: strconv.Itoa(summary.Failed)},
		{Label: "skipped", Value: strconv.Itoa(summary.Skipped)},
		{Label: "duration", Value: (time.Duration(summary.DurationMs) * time.Millisecond).String()},
	}
	if runErr != nil {
		fields = append(fields, digest.Field{Label: "error", Value: runErr.Error()})
	}
	return s.send(ctx, "ingestion_report", digest.Report(title, fields))
}

func (s *PublishService) PostReconcileReport(ctx context.Context, summary ReconcileSummary, runErr error) error {
	title := "✅ Score check finished"
	if runErr != nil {
		title = "❌ Score check failed"
	}
	fields := []digest.Field{
		{Label: "checked", Value: strconv.Itoa(summary.Total)},
		{Label: "updated", Value: strconv.Itoa(summary.Updated)},
		{Label: "failed", Value: strconv.Itoa(summary.Failed)},
	}
	if runErr != nil {
		fields = append(fields, digest.Field{Label: "error", Value: runErr.Error()})
	}
	return s.send(ctx, "reconcile_report", digest.Report(title, fields))
}

// PostJobFailure tells the operator that a scheduled or manual run failed.
func (s *PublishService) PostJobFailure(ctx context.Context, job string, runErr error) error {
	fields := []digest.Field{
		{Label: "job", Value: job},
		{Label: "time", Value: s.today().Format("2006-01-02 15:04")},
	}
	if runErr != nil {
		fields = append(fields, digest.Field{Label: "error", Value: runErr.Error()})
	}
	return s.send(ctx, "job_failure", digest.Report("⚠️ Job failed", fields))
}

func (s *PublishService) send(ctx context.Context, kind, text string) error {
	if err := s.notifier.SendText(ctx, text); err != nil {
		s.logger.ErrorContext(ctx, "send message failed", "kind", kind, "error", err)
		return fmt.Errorf("send %s: %w", kind, err)
	}
	s.logger.InfoContext(ctx, "message sent", "kind", kind)
	return nil
}
