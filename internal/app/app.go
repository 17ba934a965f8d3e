package app

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/grabarr/grabarr/internal/adapter/disk"
	"github.com/grabarr/grabarr/internal/adapter/downloadclient"
	"github.com/grabarr/grabarr/internal/adapter/indexer"
	"github.com/grabarr/grabarr/internal/config"
	"github.com/grabarr/grabarr/internal/entity"
	httphandler "github.com/grabarr/grabarr/internal/handler/http"
	"github.com/grabarr/grabarr/internal/job"
	"github.com/grabarr/grabarr/internal/limiter"
	"github.com/grabarr/grabarr/internal/repository/sqlite"
	"github.com/grabarr/grabarr/internal/service/dispatch"
	"github.com/grabarr/grabarr/internal/service/history"
	"github.com/grabarr/grabarr/internal/service/importer"
	"github.com/grabarr/grabarr/internal/service/library"
	"github.com/grabarr/grabarr/internal/service/pathmap"
	"github.com/grabarr/grabarr/internal/service/search"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	cfgPath string
	cfg     *config.Config
	srv     *http.Server
	db      *sql.DB
	job     *job.CompletedDownloadJob
	cancel  context.CancelFunc
	log     *slog.Logger
}

func New(cfgPath string) *App {
	return &App{
		cfgPath: cfgPath,
	}
}

func (a *App) Start() {
	a.cfg = config.MustLoad(a.cfgPath)

	lo := &slog.HandlerOptions{}
	switch a.cfg.LogLevel {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		panic("unknown log level")
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, lo))
	a.log = log

	db, err := sqlite.Open(a.cfg.DatabasePath)
	if err != nil {
		panic(err)
	}
	a.db = db

	var rl indexer.RateLimiter
	if a.cfg.RedisURL != "" {
		opt, err := redis.ParseURL(a.cfg.RedisURL)
		if err != nil {
			panic(err)
		}

		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			panic(err)
		}

		rl = limiter.NewRedisLimiter(rdb)
	} else {
		rl = limiter.NewMemoryLimiter()
	}

	fs := afero.NewOsFs()

	games := sqlite.NewGameRepository(db)
	gameFiles := sqlite.NewGameFileRepository(db)
	indexers := sqlite.NewIndexerRepository(db)
	clients := sqlite.NewDownloadClientRepository(db)
	trackings := sqlite.NewTrackingRepository(db)
	histories := sqlite.NewHistoryRepository(db)
	mappings := sqlite.NewPathMappingRepository(db)

	historySrv := history.New(histories, log)
	librarySrv := library.New(games, gameFiles, historySrv, log)
	pathmapSrv := pathmap.New(mappings, log)

	searchSrv := search.New(indexers, func(def *entity.IndexerDefinition) (search.Indexer, error) {
		return indexer.New(def, rl, log)
	}, log)

	dispatchSrv := dispatch.New(clients, trackings, historySrv, func(def *entity.DownloadClientDefinition) (dispatch.Client, error) {
		return downloadclient.New(def, log)
	}, log)

	transferSrv := disk.NewTransferService(log)
	importSrv := importer.New(games, gameFiles, transferSrv, fs, log)

	a.job = job.NewCompletedDownloadJob(dispatchSrv, trackings, importSrv, pathmapSrv, historySrv, fs,
		time.Duration(a.cfg.JobConfig.IntervalSeconds)*time.Second,
		time.Duration(a.cfg.JobConfig.StartupDelaySeconds)*time.Second, log)

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	go a.job.Run(ctx)

	http.Handle("GET /api/search", httphandler.NewSearchHandler(searchSrv, log))
	http.Handle("POST /api/grab", httphandler.NewGrabHandler(dispatchSrv, log))
	http.Handle("GET /api/queue", httphandler.NewQueueHandler(dispatchSrv, log))
	http.Handle("GET /api/history", httphandler.NewHistoryHandler(historySrv, log))
	http.Handle("GET /api/games", httphandler.NewGamesHandler(librarySrv, log))
	http.Handle("POST /api/games", httphandler.NewAddGameHandler(librarySrv, log))
	http.Handle("GET /api/games/{id}", httphandler.NewGameHandler(librarySrv, log))
	http.Handle("DELETE /api/games/{id}", httphandler.NewDeleteGameHandler(librarySrv, log))

	a.srv = &http.Server{
		Addr: a.cfg.Listen,
	}

	go func() {
		log.Info("Start listen", slog.String("addr", a.cfg.Listen))

		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Could not serve", slog.String("listen_addr", a.cfg.Listen), slog.Any("error", err))
			os.Exit(2)
		}
	}()
}

// CheckNow forces an immediate completed-download poll cycle.
func (a *App) CheckNow() {
	a.log.Info("Forced queue check")
	a.job.RunOnce(context.Background())
}

func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.srv != nil {
		a.srv.Shutdown(ctx)
	}

	if a.db != nil {
		a.db.Close()
	}
}
