package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/kode4food/cadence"
	"github.com/kode4food/cadence/pkg/log"
	"github.com/kode4food/cadence/pkg/scheduler"
)

// cadence is a small demo daemon that exercises the scheduler: a periodic
// tick, an optional cron entry, and a one-shot banner, all logged until the
// process receives an interrupt
type cadence struct {
	sched *scheduler.Scheduler
	tick  time.Duration
	cron  string
	quit  chan os.Signal
}

const (
	defaultTick     = time.Second
	defaultCapacity = 8
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func main() {
	s := &cadence{
		tick: envDuration("CADENCE_TICK", defaultTick),
		cron: os.Getenv("CADENCE_CRON"),
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start scheduler", log.Error(err))
		os.Exit(1)
	}
}

func (s *cadence) run() error {
	sched, err := scheduler.New(&scheduler.Config{
		CapacityHint: defaultCapacity,
	})
	if err != nil {
		return err
	}
	s.sched = sched

	if err := s.registerTimers(); err != nil {
		return err
	}
	if err := s.sched.Run(); err != nil {
		return err
	}

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *cadence) registerTimers() error {
	h, err := s.sched.AddTimer(s.tick, func(h scheduler.Handle) {
		slog.Info("Tick", log.Handle(h))
	})
	if err != nil {
		return err
	}
	slog.Info("Tick registered", log.Handle(h), log.Period(s.tick))

	if s.cron != "" {
		h, err := s.sched.AddCron(s.cron, func(h scheduler.Handle) {
			slog.Info("Cron fired", log.Handle(h))
		})
		if err != nil {
			return err
		}
		slog.Info("Cron registered", log.Handle(h),
			slog.String("expr", s.cron))
	}

	_, err = s.sched.AddOnce(0, func(scheduler.Handle) {
		slog.Info("Scheduler demo running; interrupt to exit")
	})
	return err
}

func (s *cadence) setupLogging() {
	level, ok := logLevels[os.Getenv("CADENCE_LOG_LEVEL")]
	if !ok {
		level = slog.LevelInfo
	}

	env := os.Getenv("CADENCE_ENV")
	var logger *slog.Logger
	if env == "dev" {
		logger = log.NewDev(app.Name, level)
	} else {
		logger = log.NewWithLevel(app.Name, env, app.Version, level)
	}
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)
}

func (s *cadence) shutdown() {
	slog.Info("Shutting down")
	s.sched.Reset()
	slog.Info("Scheduler exited")
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("Ignoring invalid duration",
			slog.String("key", key), slog.String("value", raw))
		return fallback
	}
	return d
}
