package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/replenish/modules/replenish"
	"github.com/dmitrymomot/replenish/pkg/config"
	"github.com/dmitrymomot/replenish/pkg/email"
	"github.com/dmitrymomot/replenish/pkg/history"
	"github.com/dmitrymomot/replenish/pkg/httpserver"
	"github.com/dmitrymomot/replenish/pkg/ledger"
	"github.com/dmitrymomot/replenish/pkg/lifespan"
	"github.com/dmitrymomot/replenish/pkg/logger"
	"github.com/dmitrymomot/replenish/pkg/pg"
	"github.com/dmitrymomot/replenish/pkg/redis"
	"github.com/dmitrymomot/replenish/pkg/remind"
	"github.com/dmitrymomot/replenish/pkg/requestid"
	"github.com/dmitrymomot/replenish/pkg/subscription"
)

type appConfig struct {
	Env        string `env:"APP_ENV" envDefault:"development"`
	EmailDir   string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
	LadderPath string `env:"SUBSCRIPTION_LADDER_PATH"`

	HTTP  httpserver.Config
	PG    pg.Config
	Redis redis.Config
	Email email.Config
}

func main() {
	ctx := context.Background()

	var cfg appConfig
	config.MustLoad(&cfg)

	var log *slog.Logger
	if cfg.Env == "production" {
		log = logger.New(
			logger.WithProduction("replenishd"),
			logger.WithContextExtractors(requestid.LoggerExtractor()),
		)
	} else {
		log = logger.New(
			logger.WithDevelopment("replenishd"),
			logger.WithContextExtractors(requestid.LoggerExtractor()),
		)
	}
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		log.ErrorContext(ctx, "failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		log.ErrorContext(ctx, "failed to apply migrations", logger.Error(err))
		os.Exit(1)
	}

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		log.ErrorContext(ctx, "failed to connect to redis", logger.Error(err))
		os.Exit(1)
	}
	defer redisClient.Close()

	store := ledger.NewPGStore(pool)
	schedules := remind.NewRedisScheduleStore(redisClient)
	source := history.NewPGSource(pool)

	estimator := lifespan.NewEstimator(store, lifespan.WithLogger(log))

	ladder := subscription.DefaultLadder()
	if cfg.LadderPath != "" {
		ladder, err = subscription.LoadLadderFile(cfg.LadderPath)
		if err != nil {
			log.ErrorContext(ctx, "failed to load interval ladder", logger.Error(err))
			os.Exit(1)
		}
	}
	recommender := subscription.NewRecommender(ladder)

	var sender email.EmailSender
	if cfg.Email.PostmarkServerToken != "" {
		sender = email.MustNewPostmarkClient(cfg.Email)
	} else {
		sender = email.NewDevSender(cfg.EmailDir)
	}
	dispatcher := email.NewReminderDispatcher(sender, pgRecipientResolver(pool))

	coordinator := remind.NewCoordinator(estimator, store, schedules, dispatcher,
		remind.WithHistorySource(source),
		remind.WithCoordinatorLogger(log),
	)

	svc := replenish.NewService(estimator, coordinator, recommender, schedules,
		replenish.WithLogger(log),
	)

	r := chi.NewRouter()
	r.Get("/healthz", httpserver.HealthCheckHandler(log))
	r.Get("/readyz", httpserver.HealthCheckHandler(log,
		pg.Healthcheck(pool),
		redis.Healthcheck(redisClient),
	))
	r.Mount("/v1", replenish.Router(svc))

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	if err := srv.Run(ctx, r); err != nil {
		log.ErrorContext(ctx, "server stopped", logger.Error(err))
		os.Exit(1)
	}
}

// pgRecipientResolver looks reminder recipients up in the customers table.
func pgRecipientResolver(pool *pgxpool.Pool) email.RecipientResolver {
	return func(ctx context.Context, customerID string) (string, error) {
		var addr string
		if err := pool.QueryRow(ctx, `SELECT email FROM customers WHERE id = $1`, customerID).Scan(&addr); err != nil {
			return "", err
		}
		return addr, nil
	}
}
