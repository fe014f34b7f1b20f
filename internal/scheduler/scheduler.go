// Package scheduler runs named jobs on cron schedules in a fixed time zone.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/match-digest/internal/platform/id"
	"github.com/riskibarqy/match-digest/internal/platform/logging"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("match-digest/internal/scheduler")

// Job is one scheduled unit of work. Errors are logged and passed to the
// failure hook; they never stop the scheduler.
type Job func(ctx context.Context) error

type Config struct {
	Location *time.Location
	// JobTimeout bounds a single run. Zero means no deadline.
	JobTimeout time.Duration
	// OnFailure is called after a job returned an error or panicked.
	OnFailure func(ctx context.Context, name string, err error)
	// IDs names each run; the run_id is bound to the job context so every
	// log line of the run carries it.
	IDs    id.Generator
	Logger *logging.Logger
}

type Scheduler struct {
	cron       *cron.Cron
	location   *time.Location
	jobTimeout time.Duration
	onFailure  func(ctx context.Context, name string, err error)
	ids        id.Generator
	logger     *logging.Logger

	mu      sync.Mutex
	entries map[string][]cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(cfg Config) *Scheduler {
	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("scheduler")
	ids := cfg.IDs
	if ids == nil {
		ids = id.NewTimeOrderedGenerator()
	}

	adapter := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		location:   location,
		jobTimeout: cfg.JobTimeout,
		onFailure:  cfg.OnFailure,
		ids:        ids,
		logger:     logger,
		entries:    make(map[string][]cron.EntryID),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Add registers job under name for every schedule in specs. A spec is either
// a wall-clock time "HH:MM" (daily) or a standard five-field cron expression.
// Several specs may be joined with ';'.
func (s *Scheduler) Add(name, specs string, job Job) error {
	parsed, err := ParseSpecs(specs)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	for _, spec := range parsed {
		if err := s.add(name, spec, job); err != nil {
			return err
		}
	}
	return nil
}

// AddEach registers jobs[i] for the i-th spec in specs. It is used for
// schedules where each slot runs a different variant of one job.
func (s *Scheduler) AddEach(name, specs string, job func(index int) Job) error {
	parsed, err := ParseSpecs(specs)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	for i, spec := range parsed {
		if err := s.add(fmt.Sprintf("%s#%d", name, i), spec, job(i)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) add(name, spec string, job Job) error {
	entryID, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}

	s.mu.Lock()
	s.entries[name] = append(s.entries[name], entryID)
	s.mu.Unlock()

	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	ctx := s.ctx
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	runID, err := s.ids.NewID()
	if err != nil {
		s.logger.Warn("run id unavailable", "job", name, "error", err)
	}
	ctx = logging.ContextWith(ctx, "job", name, "run_id", runID)
	ctx, span := tracer.Start(ctx, "scheduler.job "+name, trace.WithAttributes(
		attribute.String("job.name", name),
		attribute.String("job.run_id", runID),
	))
	defer span.End()

	started := time.Now()
	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return job(ctx)
	}()
	if err == nil {
		s.logger.InfoContext(ctx, "job finished", "duration_ms", time.Since(started).Milliseconds())
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.ErrorContext(ctx, "job failed", "duration_ms", time.Since(started).Milliseconds(), "error", err)
	if s.onFailure != nil && s.ctx.Err() == nil {
		s.onFailure(logging.ContextWith(s.ctx, "job", name, "run_id", runID), name, err)
	}
}

// Next returns the next activation of name, or zero time when unknown.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	ids := s.entries[name]
	s.mu.Unlock()

	var next time.Time
	for _, entryID := range ids {
		entry := s.cron.Entry(entryID)
		if entry.Next.IsZero() {
			continue
		}
		if next.IsZero() || entry.Next.Before(next) {
			next = entry.Next
		}
	}
	return next
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "location", s.location.String(), "jobs", len(s.cron.Entries()))
}

// Stop cancels running jobs and waits for them to return or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ParseSpecs splits a ';'-separated schedule list and converts "HH:MM" items
// into daily cron expressions.
func ParseSpecs(raw string) ([]string, error) {
	var out []string
	for _, item := range strings.Split(raw, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		spec, err := toCronSpec(item)
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty schedule")
	}
	return out, nil
}

func toCronSpec(item string) (string, error) {
	if clock, err := time.Parse("15:04", item); err == nil {
		return fmt.Sprintf("%d %d * * *", clock.Minute(), clock.Hour()), nil
	}
	if _, err := cron.ParseStandard(item); err != nil {
		return "", fmt.Errorf("invalid schedule %q: %w", item, err)
	}
	return item, nil
}

type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
