package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"bounceBackAPI/internal/analysis"
	"bounceBackAPI/internal/config"
	"bounceBackAPI/internal/firebaseapp"
	"bounceBackAPI/internal/llm"
	"bounceBackAPI/internal/lock"
	"bounceBackAPI/internal/notification"
	"bounceBackAPI/internal/store"
	"bounceBackAPI/internal/types/chore"
	"bounceBackAPI/middleware"
	"bounceBackAPI/services"
)

// app holds every long-lived dependency built from the configuration.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	firebase   *firebase.App
	store      store.Store
	redis      *redis.Client
	dispatcher *notification.Dispatcher

	choreService    *services.ChoreService
	progressService *services.ProgressService
	contactService  *services.ContactService
	journalService  *services.JournalService
	activityService *services.ActivityService
	zoneService     *services.ZoneService
	profileService  *services.ProfileService
	dataService     *services.DataService
	chatService     *services.ChatService
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	if cfg.NeedsFirebase() {
		fb, err := firebaseapp.New(ctx, a.credentials(), logger)
		if err != nil {
			return nil, err
		}
		a.firebase = fb
	}

	st, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.store = st

	a.choreService = services.NewChoreService(st, logger)
	a.progressService = services.NewProgressService(st, logger)
	a.contactService = services.NewContactService(st, logger)
	a.activityService = services.NewActivityService(st, logger)
	a.zoneService = services.NewZoneService(st, logger)
	a.profileService = services.NewProfileService(st, logger)
	a.dataService = services.NewDataService(st, logger)

	var analyzer services.Analyzer
	if cfg.ModelAPIURL != "" {
		client, err := a.analysisClient(ctx)
		if err != nil {
			logger.Warn("could not initialize model API client, entries will be stored unanalysed", zap.Error(err))
		} else {
			analyzer = client
		}
	} else {
		logger.Warn("MODEL_API_URL not set, entries will be stored unanalysed")
	}
	a.journalService = services.NewJournalService(st, analyzer, logger)

	var model services.ChatModel
	if cfg.MistralAPIKey != "" {
		model = llm.NewMistralClient(cfg.MistralAPIKey, cfg.MistralBaseURL, cfg.MistralModel, logger)
	} else {
		logger.Warn("MISTRAL_API_KEY not set, chat is disabled")
	}
	a.chatService = services.NewChatService(st, a.progressService, model, logger)

	if a.firebase != nil {
		fcmService, err := notification.NewFCMService(ctx, a.firebase, logger)
		if err != nil {
			logger.Warn("could not initialize FCM, reset digests are disabled", zap.Error(err))
		} else {
			a.dispatcher = notification.NewDispatcher(fcmService, 5, logger)
			a.choreService.SetPushProvider(a.dispatcher)
			logger.Info("FCM push provider initialized")
		}
	}

	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.redis.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, sweeps will fail until it recovers", zap.Error(err))
		}
		a.choreService.SetLocker(lock.NewRedisLocker(a.redis), cfg.SweepLockTTL)
	}

	return a, nil
}

func (a *app) credentials() firebaseapp.Credentials {
	return firebaseapp.Credentials{
		ProjectID:   a.cfg.FirebaseProjectID,
		EncodedJSON: a.cfg.FirebaseServiceAccountJSON,
		File:        a.cfg.FirebaseCredentialsFile,
	}
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	switch a.cfg.StoreBackend {
	case config.BackendFirestore:
		client, err := a.firebase.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to open firestore: %w", err)
		}
		a.logger.Info("using firestore document store")
		return store.NewFirestore(client), nil

	case config.BackendPostgres:
		poolConfig, err := pgxpool.ParseConfig(a.cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse database URL: %w", err)
		}
		poolConfig.MaxConns = 25
		poolConfig.MinConns = 5
		poolConfig.MaxConnLifetime = time.Hour
		poolConfig.MaxConnIdleTime = 30 * time.Minute
		poolConfig.HealthCheckPeriod = time.Minute

		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		if err := pool.Ping(connectCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}

		pg := store.NewPostgres(pool)
		if err := pg.Migrate(connectCtx); err != nil {
			pool.Close()
			return nil, err
		}
		a.logger.Info("using postgres document store")
		return pg, nil

	case config.BackendMemory:
		a.logger.Warn("using in-memory document store, data is lost on exit")
		return store.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", a.cfg.StoreBackend)
}

func (a *app) analysisClient(ctx context.Context) (*analysis.Client, error) {
	opt, err := a.credentials().ClientOption(a.logger)
	if err != nil {
		return nil, err
	}
	var opts []option.ClientOption
	if opt != nil {
		opts = append(opts, opt)
	}
	return analysis.New(ctx, a.cfg.ModelAPIURL, a.logger, opts...)
}

func (a *app) tokenVerifier(ctx context.Context) (middleware.TokenVerifier, error) {
	if a.cfg.AuthProvider == config.AuthClerk {
		return middleware.NewClerkVerifier(a.cfg.ClerkSecretKey), nil
	}
	client, err := a.firebase.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
	}
	return middleware.NewFirebaseVerifier(client), nil
}

// sweep runs one reset sweep and reports a partial failure as an error so
// queue deliveries get retried.
func (a *app) sweep(ctx context.Context, now time.Time, policy chore.Policy) error {
	report, err := a.choreService.ResetSweep(ctx, now, policy)
	if err != nil {
		return err
	}
	if report.Partial() {
		return fmt.Errorf("sweep finished with %d failures", len(report.Failures))
	}
	return nil
}

func (a *app) Close() {
	if a.dispatcher != nil {
		a.dispatcher.Stop()
	}

	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("error while closing resources", zap.Error(err))
	}
}
