package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hyeonwoo-dev/tunequiz-api/api"
	"github.com/hyeonwoo-dev/tunequiz-api/config"
	"github.com/hyeonwoo-dev/tunequiz-api/database"
	"github.com/hyeonwoo-dev/tunequiz-api/repository"
	"github.com/hyeonwoo-dev/tunequiz-api/router"
	"github.com/hyeonwoo-dev/tunequiz-api/services/batch"
	"github.com/hyeonwoo-dev/tunequiz-api/services/challenge"
	"github.com/hyeonwoo-dev/tunequiz-api/services/history"
	"github.com/hyeonwoo-dev/tunequiz-api/services/media"
	"github.com/hyeonwoo-dev/tunequiz-api/services/scheduler"
	"github.com/hyeonwoo-dev/tunequiz-api/services/song"
	"github.com/hyeonwoo-dev/tunequiz-api/utils/cache"
	"gorm.io/gorm"
)

// staleRunningAge is how old a RUNNING execution row must be before the
// startup sweep marks it failed.
const staleRunningAge = time.Hour

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		return fmt.Errorf("failed to get GORM DB instance")
	}

	// Seed the job catalog (inserts missing rows only)
	if err := database.NewSeeder(db).SeedAll(); err != nil {
		return err
	}

	// Redis cache for artist song counts; the app runs without it
	var redisCache *cache.RedisCache
	if getEnv.REDIS_URL != "" {
		redisCache, err = cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Printf("Redis unavailable, running without cache: %v", err)
			redisCache = nil
		}
	}

	// Repositories
	jobConfigs := repository.NewJobConfigStore(db)
	executions := repository.NewExecutionStore(db)
	affected := repository.NewAffectedSongStore(db)
	songs := repository.NewSongStore(db)
	songHistory := repository.NewSongHistoryStore(db)
	members := repository.NewMemberStore(db)
	challenges := repository.NewChallengeStore(db)
	rankings := repository.NewRankingHistoryStore(db)

	// Services
	historyLog := history.NewLog(songHistory)
	songService := song.NewService(songs, redisCache)
	challengeService := challenge.NewService(challenges, songService, historyLog)
	ledger := batch.NewService(affected, executions, songs, historyLog, songService)
	executor := batch.NewExecutor(executions, jobConfigs)

	// A crashed process may have left RUNNING rows behind
	if _, err := executor.SweepStaleRunning(context.Background(), staleRunningAge); err != nil {
		log.Printf("Warning: stale execution sweep failed: %v", err)
	}

	// Scheduler with every implemented job registered
	sched := scheduler.New(jobConfigs, executor)
	sched.RegisterJob(batch.NewYoutubeCheckJob(songs, media.NewYoutubeChecker(getEnv.YOUTUBE_API_KEY), ledger))
	sched.RegisterJob(batch.NewDuplicateCheckJob(songs, ledger))
	sched.RegisterJob(batch.NewFileCheckJob(songs, media.NewLocalFileChecker(getEnv.MEDIA_STORAGE_DIR), ledger))
	sched.RegisterJob(batch.NewPerfectCheckJob(challengeService))
	sched.RegisterJob(batch.NewPerfectRefreshJob(challengeService))
	sched.RegisterJob(batch.NewLpDecayJob(members))
	sched.RegisterJob(batch.NewRankingSnapshotJob(members, rankings))
	sched.RegisterJob(batch.NewCleanupJob(ledger, historyLog))

	if getEnv.BATCH_ENABLED {
		if err := sched.Start(context.Background()); err != nil {
			log.Printf("Warning: failed to start scheduler: %v", err)
		}
	}

	// Defer closing DB, cache and stopping jobs
	defer func() {
		if getEnv.BATCH_ENABLED {
			sched.Stop()
		}
		if redisCache != nil {
			redisCache.Close()
		}
		store.Close()
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Attach Middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Setup Routes
	router.SetupRoutes(app, router.Deps{
		Store:      store,
		JobConfigs: jobConfigs,
		Ledger:     ledger,
		Scheduler:  sched,
	})

	// Get the PORT & Start the Server
	return server.Run()

}
