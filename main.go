package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bounceBackAPI/handlers"
	"bounceBackAPI/internal/config"
	"bounceBackAPI/internal/logger"
	"bounceBackAPI/internal/queue"
	"bounceBackAPI/internal/types/chore"
	"bounceBackAPI/internal/workers"
	"bounceBackAPI/middleware"

	_ "net/http/pprof"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bounceback",
		Short:         "Bounce Back API server and maintenance jobs",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(serveCmd(), sweepCmd(), snapshotCmd(), consumeCmd())
	return root
}

// setup loads configuration, builds the logger and wires the app. The
// returned context is cancelled on SIGINT or SIGTERM.
func setup(cmd *cobra.Command) (context.Context, *app, func(), error) {
	cfg, foundEnvFile, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.IsDevelopment())
	if !foundEnvFile {
		log.Info("no .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		stop()
		log.Error("failed to initialize", zap.Error(err))
		return nil, nil, nil, err
	}

	cleanup := func() {
		a.Close()
		stop()
		_ = log.Sync()
	}
	return ctx, a, cleanup, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the daily reset worker and the reset queue consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	cfg, log := a.cfg, a.logger

	verifier, err := a.tokenVerifier(ctx)
	if err != nil {
		return err
	}

	middleware.InitPrometheus()

	policy, _ := chore.ParsePolicy(cfg.ResetPolicy)
	daily := workers.NewDailyJob("chore-reset", cfg.SweepHour, time.Local, func(ctx context.Context, now time.Time) error {
		return a.sweep(ctx, now, policy)
	}, log)
	daily.Start(ctx)

	if cfg.RabbitMQURL != "" {
		go runConsumer(ctx, a)
	}

	h := &handlers.Handlers{
		Chore:    handlers.NewChoreHandler(a.choreService, log),
		Progress: handlers.NewProgressHandler(a.progressService, log),
		Contact:  handlers.NewContactHandler(a.contactService, log),
		Journal:  handlers.NewJournalHandler(a.journalService, log),
		Activity: handlers.NewActivityHandler(a.activityService, log),
		Zone:     handlers.NewZoneHandler(a.zoneService, log),
		Profile:  handlers.NewProfileHandler(a.profileService, log),
		Data:     handlers.NewDataHandler(a.dataService, log),
		Chat:     handlers.NewChatHandler(a.chatService, log),
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.CleanupVisitors(ctx)

	r := mux.NewRouter()
	r.Use(middleware.Logging(log))
	r.Use(limiter.Middleware)
	r.Use(middleware.MonitorMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(cfg.PprofSecret)(http.DefaultServeMux))

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.AuthMiddleware(verifier, log))
	h.Register(api)

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
	)

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("error starting server: %w", err)
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
		return err
	}

	log.Info("server shutdown complete")
	return nil
}

func runConsumer(ctx context.Context, a *app) {
	policy, _ := chore.ParsePolicy(a.cfg.PubSubResetPolicy)
	consumer := queue.NewResetConsumer(a.cfg.RabbitMQURL, a.cfg.ResetQueue, policy, a.sweep, a.logger)

	for {
		err := consumer.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		a.logger.Warn("reset consumer stopped, reconnecting", zap.Error(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func sweepCmd() *cobra.Command {
	var (
		policyFlag string
		enqueue    bool
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Reset every user's chores whose cycle has elapsed",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := chore.ParsePolicy(policyFlag)
			if err != nil {
				return err
			}

			ctx, a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			now := time.Now()
			if enqueue {
				if a.cfg.RabbitMQURL == "" {
					return errors.New("RABBITMQ_URL is required to enqueue a sweep")
				}
				msg := queue.ResetMessage{Policy: policy, RequestedAt: &now}
				if err := queue.Publish(ctx, a.cfg.RabbitMQURL, a.cfg.ResetQueue, msg); err != nil {
					return err
				}
				a.logger.Info("sweep enqueued", zap.String("queue", a.cfg.ResetQueue), zap.String("policy", string(policy)))
				return nil
			}

			report, err := a.choreService.ResetSweep(ctx, now, policy)
			if err != nil {
				return err
			}
			if report.Partial() {
				return fmt.Errorf("sweep reset %d chores with %d failures", report.ChoresReset, len(report.Failures))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&policyFlag, "policy", string(chore.PolicyCalendar), "reset policy: calendar or elapsed")
	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "publish a reset message instead of sweeping in-process")
	return cmd
}

func snapshotCmd() *cobra.Command {
	var uid string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Build and store today's progress snapshot for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			snap, err := a.progressService.BuildSnapshot(ctx, uid, time.Now())
			if err != nil {
				return err
			}
			a.logger.Info("snapshot stored", zap.String("uid", uid), zap.String("date_key", snap.DateKey))
			return nil
		},
	}

	cmd.Flags().StringVar(&uid, "uid", "", "user id")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}

func consumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Consume reset messages from the queue until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if a.cfg.RabbitMQURL == "" {
				return errors.New("RABBITMQ_URL is required")
			}
			runConsumer(ctx, a)
			return nil
		},
	}
}
