package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"jobscanner/config"
	"jobscanner/db"
	"jobscanner/metrics"
	"jobscanner/notify"
	"jobscanner/services"
	"jobscanner/store"
)

func main() {
	os.Exit(run(context.Background(), config.LoadEnv()))
}

// run performs a single scan and returns the process exit code. It is
// non-zero only when the failure alert itself could not be sent.
func run(ctx context.Context, env config.Env) int {
	runID := uuid.NewString()

	cfg, cfgErr := config.Load(env.ConfigPath, env)

	logCfg := config.Default().Log
	if cfg != nil {
		logCfg = cfg.Log
	}
	logger, closeLog := newLogger(logCfg, os.Stdout)
	defer closeLog()
	logger = logger.With(slog.String("run_id", runID))
	slog.SetDefault(logger)

	logger.Info("initiating job scanner", slog.String("config", env.ConfigPath))
	if cfgErr != nil {
		logger.Error("config invalid", slog.String("error", cfgErr.Error()))
	} else {
		logger.Info("config loaded",
			slog.Int("jobs", len(cfg.Jobs)),
			slog.Int("ems_files", len(cfg.EMSFiles)),
			slog.String("notifier", cfg.Notifier),
		)
	}

	var result services.Result
	if cfgErr != nil {
		result = services.Fatal(cfgErr)
	} else {
		result = scan(ctx, cfg, logger)
	}

	if cfg != nil && cfg.MetricsTextfile != "" {
		recorder := metrics.NewRecorder(cfg.Env)
		recorder.Observe(result, time.Now())
		if err := recorder.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Warn("failed to write metrics", slog.String("error", err.Error()))
		}
	}

	if result.Outcome != services.OutcomeFatal {
		logger.Info("scan finished", slog.String("outcome", result.Outcome.String()))
		return 0
	}

	logger.Error("the scanner failed", slog.String("error", result.Err.Error()))

	alertCfg := fatalConfig(cfg, env)
	fatal, err := notify.New(alertCfg.FatalNotifier, alertCfg, logger)
	if err != nil {
		logger.Error("failed to create failure notifier", slog.String("error", err.Error()))
		return 1
	}
	if err := services.NotifyFatal(ctx, fatal, alertCfg, runID, result.Err); err != nil {
		logger.Error("failed to send failure alert", slog.String("error", err.Error()))
		return 1
	}
	logger.Info("failure alert sent", slog.String("notifier", fatal.Name()))
	return 0
}

func scan(ctx context.Context, cfg *config.Config, logger *slog.Logger) services.Result {
	var statuses store.StatusStore
	if len(cfg.Jobs) > 0 {
		conn, err := db.Open(ctx, cfg.StatusStore)
		if err != nil {
			return services.Fatal(err)
		}
		defer conn.Close()
		statuses = store.NewSQLStore(conn)
	}

	primary, err := notify.New(cfg.Notifier, cfg, logger)
	if err != nil {
		return services.Fatal(err)
	}

	return services.NewScanner(cfg, statuses, primary, logger).Run(ctx)
}

// fatalConfig picks the settings for the failure alert. A config that never
// loaded, or whose fatal-notifier is unusable, falls back to the environment.
func fatalConfig(cfg *config.Config, env config.Env) *config.Config {
	if cfg == nil {
		return config.Fallback(env)
	}
	switch cfg.FatalNotifier {
	case config.NotifierSMTP, config.NotifierSendGrid, config.NotifierLog:
		return cfg
	}
	fallback := *cfg
	fallback.FatalNotifier = config.DefaultNotifier
	return &fallback
}
