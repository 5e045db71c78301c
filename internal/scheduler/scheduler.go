package scheduler

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/KotFed0t/crypto_portfolio_bot/utils"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

type taskFn = func(ctx context.Context) error

type Scheduler struct {
	scheduler gocron.Scheduler
}

func New() *Scheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		panic(err.Error())
	}
	return &Scheduler{scheduler: scheduler}
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

func (s *Scheduler) Stop() {
	_ = s.scheduler.Shutdown()
}

// createJob регистрирует задачу; повторный запуск, пока предыдущий не завершился, переносится
func (s *Scheduler) createJob(jobDefinition gocron.JobDefinition, name string, fn taskFn, startImmediately bool) (uuid.UUID, error) {
	opts := []gocron.JobOption{
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}

	if startImmediately {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	job, err := s.scheduler.NewJob(
		jobDefinition,
		gocron.NewTask(s.taskWithRecover(fn, name)),
		opts...,
	)
	if err != nil {
		slog.Error("Scheduler creating job error", slog.String("jobName", name), slog.String("err", err.Error()))
		return uuid.Nil, err
	}

	return job.ID(), nil
}

func (s *Scheduler) NewIntervalJob(name string, fn taskFn, interval time.Duration, startImmediately bool) (uuid.UUID, error) {
	return s.createJob(gocron.DurationJob(interval), name, fn, startImmediately)
}

// MustNewCrontabJob is used at startup where a bad crontab is a configuration error.
func (s *Scheduler) MustNewCrontabJob(name string, fn taskFn, crontab string, startImmediately bool) {
	_, err := s.createJob(gocron.CronJob(crontab, true), name, fn, startImmediately)
	if err != nil {
		panic(err.Error())
	}
}

func (s *Scheduler) RemoveJob(id uuid.UUID) error {
	err := s.scheduler.RemoveJob(id)
	if err != nil {
		slog.Error("Scheduler removing job error", slog.String("jobID", id.String()), slog.String("err", err.Error()))
	}
	return err
}

func (s *Scheduler) taskWithRecover(fn taskFn, jobName string) func(ctx context.Context) {
	return func(ctx context.Context) {
		ctx = utils.WithNewRqID(ctx)
		rqID := utils.GetRequestIDFromCtx(ctx)

		defer func() {
			if r := recover(); r != nil {
				slog.Error(
					"Panic recovered in scheduler job",
					slog.String("jobName", jobName),
					slog.String("rqID", rqID),
					slog.Any("panic", r),
					slog.String("stacktrace", string(debug.Stack())),
				)
			}
		}()

		slog.Debug("job start", slog.String("jobName", jobName), slog.String("rqID", rqID))

		err := fn(ctx)
		if err != nil {
			slog.Error("job failed", slog.String("jobName", jobName), slog.String("rqID", rqID), slog.Any("error", err))
		} else {
			slog.Debug("job completed", slog.String("jobName", jobName), slog.String("rqID", rqID))
		}
	}
}
