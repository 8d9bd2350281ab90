package scheduler

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/KotFed0t/portfolio_analyzer/utils"
	"github.com/go-co-op/gocron/v2"
)

type TaskFn func(ctx context.Context) error

type Scheduler struct {
	scheduler gocron.Scheduler
	timeout   time.Duration
}

// New builds a scheduler whose job runs are each bounded by timeout.
func New(timeout time.Duration) *Scheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		panic(err.Error())
	}
	return &Scheduler{scheduler: scheduler, timeout: timeout}
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		slog.Error("scheduler shutdown error", slog.String("err", err.Error()))
	}
}

func (s *Scheduler) NewIntervalJob(name string, fn TaskFn, interval time.Duration, startImmediately bool) {
	opts := []gocron.JobOption{
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}

	if startImmediately {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	_, err := s.scheduler.NewJob(gocron.DurationJob(interval), gocron.NewTask(s.run(fn, name)), opts...)
	if err != nil {
		slog.Error("scheduler creating job error", slog.String("jobName", name), slog.String("err", err.Error()))
		panic(err.Error())
	}
}

// run wraps fn so that every execution gets its own rqID and a bounded
// context, and a panic inside fn does not kill the scheduler.
func (s *Scheduler) run(fn TaskFn, jobName string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(utils.CreateCtxWithRqID(context.Background()), s.timeout)
		defer cancel()

		rqID := utils.GetRequestIDFromCtx(ctx)
		now := time.Now()

		defer func() {
			if r := recover(); r != nil {
				slog.Error(
					"panic recovered in scheduler job",
					slog.String("rqID", rqID),
					slog.String("jobName", jobName),
					slog.Any("panic", r),
					slog.String("stacktrace", string(debug.Stack())),
				)
			}
		}()

		slog.Info("job start", slog.String("rqID", rqID), slog.String("jobName", jobName))

		if err := fn(ctx); err != nil {
			slog.Error("job failed", slog.String("rqID", rqID), slog.String("jobName", jobName), slog.String("err", err.Error()))
			return
		}

		slog.Info(
			"job completed",
			slog.String("rqID", rqID),
			slog.String("jobName", jobName),
			slog.Duration("duration", time.Since(now)),
		)
	}
}
