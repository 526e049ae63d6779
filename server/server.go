package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/medaverse/meda-api/env"
	"github.com/medaverse/meda-api/middleware"
	"github.com/medaverse/meda-api/service/enrich"
	"github.com/medaverse/meda-api/service/logger"
	"github.com/medaverse/meda-api/service/persist"
	"github.com/medaverse/meda-api/service/persist/postgres"
	"github.com/medaverse/meda-api/service/portfolio"
	"github.com/medaverse/meda-api/service/redis"
	"github.com/medaverse/meda-api/service/rpc"
	"github.com/medaverse/meda-api/service/score"
)

func init() {
	env.RegisterValidation("RPC_ENDPOINTS", "required")
	env.RegisterValidation("INDEXER_BASE_URL", "required")
}

// Init initializes the server
func Init() {
	setDefaults()

	logger.SetLoggerOptions(func(l *logrus.Logger) {
		l.SetReportCaller(true)
		if env.GetString("ENV") != "production" {
			l.SetLevel(logrus.DebugLevel)
		}
	})
	initSentry()

	router := CoreInit(postgres.MustCreateClient(), postgres.MustCreatePgxClient())

	port := env.GetInt("PORT")
	logger.For(nil).Infof("listening on :%d", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), router); err != nil {
		logger.For(nil).WithError(err).Fatal("server exited")
	}
}

// CoreInit initializes core server functionality. This is abstracted
// so the test server can also utilize it
func CoreInit(pqClient *sql.DB, pgx *pgxpool.Pool) *gin.Engine {
	logger.For(nil).Info("initializing server...")

	if env.GetString("ENV") != "production" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.Default()

	repos := newRepos(pqClient, pgx)
	router.Use(middleware.Sentry(true), middleware.HandleCORS(), middleware.GinContextToContext(), middleware.ErrLogger(), middleware.TrackAPIUsage(repos.usage))

	pool, err := rpc.NewPool(env.GetStringSlice("RPC_ENDPOINTS"))
	if err != nil {
		panic(err)
	}
	gateway := rpc.NewGateway(pool, repos.catalog, repos.cacheErrors)
	engine := enrich.NewEngine(gateway, repos.heroes, repos.weapons, repos.catalog, repos.cacheErrors)

	portfolioSnap, nftSnap := newSnapshotCaches()
	indexerClient := portfolio.NewClient(env.GetString("INDEXER_BASE_URL"), env.GetString("INDEXER_API_KEY"), &http.Client{})
	portfolioGateway := portfolio.NewGateway(indexerClient, portfolioSnap, nftSnap, gateway)

	intake := newScoreIntake(repos, engine)

	deps := &dependencies{
		repos:     repos,
		pool:      pool,
		gateway:   gateway,
		engine:    engine,
		portfolio: portfolioGateway,
		intake:    intake,
		redis:     portfolioSnap,
	}

	go sweepResolvedCacheErrors(repos.cacheErrors)

	return handlersInit(router, deps)
}

// dependencies is the root object handed to every handler. No process-wide
// mutable defaults; everything is built once here.
type dependencies struct {
	repos     *repositories
	pool      *rpc.Pool
	gateway   *rpc.Gateway
	engine    *enrich.Engine
	portfolio *portfolio.Gateway
	intake    *score.Intake
	redis     *redis.Cache
}

type repositories struct {
	heroes      persist.HeroTokenRepository
	weapons     persist.WeaponTokenRepository
	catalog     *postgres.CatalogRepository
	cacheErrors persist.CacheErrorRepository
	scores      persist.ScoreRepository
	blacklist   persist.BlacklistRepository
	usage       *postgres.APIUsageRepository
	db          *sql.DB
}

func newRepos(pqClient *sql.DB, pgx *pgxpool.Pool) *repositories {
	return &repositories{
		heroes:      postgres.NewHeroTokenRepository(pgx),
		weapons:     postgres.NewWeaponTokenRepository(pgx),
		catalog:     postgres.NewCatalogRepository(pqClient),
		cacheErrors: postgres.NewCacheErrorRepository(pqClient),
		scores:      postgres.NewScoreRepository(pgx),
		blacklist:   postgres.NewBlacklistRepository(pqClient),
		usage:       postgres.NewAPIUsageRepository(pqClient),
		db:          pqClient,
	}
}

// newScoreIntake builds the score pipeline, or nil when the RSA keys are
// absent. The rest of the server keeps working without it.
func newScoreIntake(repos *repositories, engine *enrich.Engine) *score.Intake {
	decryptor, err := score.NewDecryptor(env.GetString("SCORE_PRIVATE_KEY"), env.GetString("INFO_PRIVATE_KEY"))
	if err != nil {
		logger.For(nil).WithError(err).Warn("score keys unavailable, score intake disabled")
		return nil
	}
	return score.NewIntake(decryptor, repos.scores, repos.blacklist, engine)
}

func newSnapshotCaches() (*redis.Cache, *redis.Cache) {
	portfolioSnap, err := redis.NewCache(redis.PortfolioSnapshotCache)
	if err != nil {
		logger.For(nil).WithError(err).Warn("redis unavailable, snapshots stay process-local")
		return nil, nil
	}
	nftSnap, err := redis.NewCache(redis.NFTSnapshotCache)
	if err != nil {
		logger.For(nil).WithError(err).Warn("redis unavailable, snapshots stay process-local")
		return portfolioSnap, nil
	}
	return portfolioSnap, nftSnap
}

// sweepResolvedCacheErrors deletes resolved error-log rows past retention,
// daily.
func sweepResolvedCacheErrors(repo persist.CacheErrorRepository) {
	retention := time.Duration(env.GetInt("CACHE_ERROR_RETENTION_DAYS")) * 24 * time.Hour
	for {
		time.Sleep(24 * time.Hour)
		ctx, cancel := contextWithTimeout(time.Minute)
		deleted, err := repo.DeleteResolvedOlderThan(ctx, retention)
		cancel()
		if err != nil {
			logger.For(nil).WithError(err).Warn("cache error sweep failed")
			continue
		}
		if deleted > 0 {
			logger.For(nil).Infof("swept %d resolved cache errors", deleted)
		}
	}
}

func contextWithTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}

func setDefaults() {
	viper.SetDefault("ENV", "local")
	viper.SetDefault("PORT", 4000)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("POSTGRES_HOST", "0.0.0.0")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "")
	viper.SetDefault("POSTGRES_DB", "postgres")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("REDIS_PASS", "")
	viper.SetDefault("RPC_ENDPOINTS", "https://polygon-rpc.com")
	viper.SetDefault("CHAIN", "polygon")
	viper.SetDefault("INDEXER_BASE_URL", "https://deep-index.moralis.io/api/v2")
	viper.SetDefault("INDEXER_API_KEY", "")
	viper.SetDefault("SCORE_PRIVATE_KEY", "")
	viper.SetDefault("INFO_PRIVATE_KEY", "")
	viper.SetDefault("ADMIN_PASS", "TEST_ADMIN_PASS")
	viper.SetDefault("CACHE_ERROR_RETENTION_DAYS", 30)
	viper.SetDefault("SENTRY_DSN", "")
	viper.SetDefault("SENTRY_TRACES_SAMPLE_RATE", 0.2)
	viper.SetDefault("VERSION", "")

	viper.AutomaticEnv()
}

func initSentry() {
	if env.GetString("ENV") == "local" {
		logger.For(nil).Info("skipping sentry init")
		return
	}

	logger.For(nil).Info("initializing sentry...")

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              env.GetString("SENTRY_DSN"),
		Environment:      env.GetString("ENV"),
		TracesSampleRate: viper.GetFloat64("SENTRY_TRACES_SAMPLE_RATE"),
		Release:          env.GetString("VERSION"),
		AttachStacktrace: true,
	})
	if err != nil {
		logger.For(nil).WithError(err).Error("failed to start sentry")
	}
}
