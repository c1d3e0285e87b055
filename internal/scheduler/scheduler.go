package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobFunc is a periodic unit of work. Errors are logged and the job is
// rescheduled; a failing job never stops the loop or other jobs.
type JobFunc func(ctx context.Context) error

// cronParser accepts standard 5-field cron expressions (minute, hour,
// dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

type schedule interface {
	next(from time.Time) time.Time
	describe() string
}

type intervalSchedule struct {
	every time.Duration
}

func (s intervalSchedule) next(from time.Time) time.Time { return from.Add(s.every) }
func (s intervalSchedule) describe() string              { return fmt.Sprintf("every %s", s.every) }

type cronSchedule struct {
	expr  string
	sched cron.Schedule
}

func (s cronSchedule) next(from time.Time) time.Time { return s.sched.Next(from) }
func (s cronSchedule) describe() string              { return fmt.Sprintf("cron %q", s.expr) }

type job struct {
	id      string
	fn      JobFunc
	sched   schedule
	lastRun *time.Time
	nextRun time.Time
}

// JobStatus is the introspection view of a registered job.
type JobStatus struct {
	ID       string     `json:"id"`
	Schedule string     `json:"schedule"`
	LastRun  *time.Time `json:"last_run,omitempty"`
	NextRun  time.Time  `json:"next_run"`
}

// Scheduler runs registered jobs on their schedules from a single loop.
// Jobs execute sequentially; each run is independently committed, so the
// loop is safely interruptible between jobs.
type Scheduler struct {
	mu     sync.Mutex
	jobs   map[string]*job
	order  []string
	logger *zap.Logger
	now    func() time.Time
	tick   time.Duration
}

// New constructs a scheduler. now may be nil for time.Now.
func New(logger *zap.Logger, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		jobs:   make(map[string]*job),
		logger: logger,
		now:    now,
		tick:   time.Second,
	}
}

// AddInterval registers a fixed-interval job. With immediate set, the
// first run happens on the next tick instead of after one interval.
func (s *Scheduler) AddInterval(id string, every time.Duration, immediate bool, fn JobFunc) {
	now := s.now()
	next := now.Add(every)
	if immediate {
		next = now
	}
	s.register(&job{id: id, fn: fn, sched: intervalSchedule{every: every}, nextRun: next})
	s.logger.Info("job registered",
		zap.String("job_id", id),
		zap.Duration("interval", every),
		zap.Bool("immediate", immediate))
}

// AddCron registers a job on a 5-field cron expression.
func (s *Scheduler) AddCron(id, expr string, fn JobFunc) error {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return fmt.Errorf("parse cron %q: %w", expr, err)
	}
	cs := cronSchedule{expr: expr, sched: sched}
	s.register(&job{id: id, fn: fn, sched: cs, nextRun: cs.next(s.now())})
	s.logger.Info("job registered", zap.String("job_id", id), zap.String("cron", expr))
	return nil
}

func (s *Scheduler) register(j *job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[j.id]; exists {
		s.logger.Warn("job already registered, overwriting", zap.String("job_id", j.id))
	} else {
		s.order = append(s.order, j.id)
	}
	s.jobs[j.id] = j
}

// Run blocks, executing due jobs until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.Jobs())))
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

// runDue executes every job whose next-run time has passed.
func (s *Scheduler) runDue(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	var due []*job
	for _, id := range s.order {
		j := s.jobs[id]
		if !now.Before(j.nextRun) {
			due = append(due, j)
		}
	}
	s.mu.Unlock()

	for _, j := range due {
		if ctx.Err() != nil {
			return
		}
		started := s.now()
		err := j.fn(ctx)
		if err != nil {
			s.logger.Error("job failed", zap.String("job_id", j.id), zap.Error(err))
		} else {
			s.logger.Debug("job completed",
				zap.String("job_id", j.id),
				zap.Duration("took", s.now().Sub(started)))
		}

		s.mu.Lock()
		ran := started
		j.lastRun = &ran
		// Reschedule even after failure so a broken job cannot wedge
		// itself into a hot loop.
		j.nextRun = j.sched.next(s.now())
		s.mu.Unlock()
	}
}

// JobStatus returns the status of one job.
func (s *Scheduler) JobStatus(id string) (JobStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return JobStatus{}, false
	}
	return statusOf(j), true
}

// Jobs returns the status of every registered job, sorted by id.
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		result = append(result, statusOf(j))
	}
	sort.Slice(result, func(i, k int) bool { return result[i].ID < result[k].ID })
	return result
}

func statusOf(j *job) JobStatus {
	status := JobStatus{
		ID:       j.id,
		Schedule: j.sched.describe(),
		NextRun:  j.nextRun,
	}
	if j.lastRun != nil {
		lastRun := *j.lastRun
		status.LastRun = &lastRun
	}
	return status
}
