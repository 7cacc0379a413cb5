package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"MarketMovers/internal/notifier"
	"MarketMovers/internal/scheduler"
	"MarketMovers/internal/server"
)

var runOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, scheduled watchlist report and Telegram bot",
	Long:  `Serves reports over HTTP, runs the watchlist report on the configured cron schedule, and answers Telegram commands when a bot token is configured.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&runOnStart, "run-on-start", os.Getenv("RUN_ON_START") == "true", "run the watchlist report immediately")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		tn     *notifier.TelegramNotifier
		sender scheduler.Sender
	)
	if a.cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy, a.logger)
		sender = tn
	} else {
		a.logger.Info("telegram not configured, notifications disabled")
	}

	sched := scheduler.NewScheduler(ctx, a.pipeline, sender, a.recorder, a.cfg.Report.Symbols, a.cfg.Report.LookbackDays, a.logger)
	if err := sched.Register(a.cfg.Schedule.ReportCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		a.logger.Info("telegram polling started")
	}
	if runOnStart {
		a.logger.Info("run-on-start enabled, executing watchlist report now")
		go sched.RunNow()
	}

	srv := server.New(sched, a.recorder, a.registry, a.cfg.Report.Symbols, a.cfg.Report.LookbackDays, a.logger)
	err = srv.ListenAndServe(ctx, a.cfg.Server.Addr)
	if err != nil && ctx.Err() == nil {
		return err
	}
	a.logger.Info("shutdown complete")
	return nil
}
