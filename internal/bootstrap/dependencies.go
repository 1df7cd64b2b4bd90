// Package bootstrap wires every adapter, service and port implementation
// into the process: dependency construction lives here so neither
// main.go nor the services carry ambient globals.
package bootstrap

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	cacheadapter "github.com/jpmarichal/ccmwf-go/adapter/out/cache"
	"github.com/jpmarichal/ccmwf-go/adapter/out/drive"
	"github.com/jpmarichal/ccmwf-go/adapter/out/mail"
	"github.com/jpmarichal/ccmwf-go/adapter/out/persistence"
	"github.com/jpmarichal/ccmwf-go/adapter/out/spreadsheet"
	"github.com/jpmarichal/ccmwf-go/adapter/out/syncstate"
	"github.com/jpmarichal/ccmwf-go/config"
	"github.com/jpmarichal/ccmwf-go/core/port/out"
	cacheservice "github.com/jpmarichal/ccmwf-go/core/service/cache"
	"github.com/jpmarichal/ccmwf-go/core/service/dataset"
	"github.com/jpmarichal/ccmwf-go/core/service/eventbus"
	"github.com/jpmarichal/ccmwf-go/core/service/orchestrator"
	"github.com/jpmarichal/ccmwf-go/core/service/sync"
	"github.com/jpmarichal/ccmwf-go/infra/database"
	"github.com/jpmarichal/ccmwf-go/pkg/crypto"
	"github.com/jpmarichal/ccmwf-go/pkg/metrics"
	"github.com/jpmarichal/ccmwf-go/pkg/ratelimit"
	"github.com/jpmarichal/ccmwf-go/pkg/snowflake"
)

// Dependencies holds every constructed adapter and service, shared by
// NewAPI and NewWorker.
type Dependencies struct {
	Config *config.Config

	DB      *pgxpool.Pool
	SQLDB   *sqlx.DB
	Redis   *redis.Client
	MongoDB *mongo.Client

	Mail       out.MailGateway
	Store      out.ObjectStore
	Records    out.MissionaryRecordRepository
	States     out.SyncStateRepository
	Spreadsheet out.SpreadsheetReader
	Cache      out.Cache
	Events     *eventbus.Bus

	CacheService *cacheservice.Service
	SyncEngine   *sync.Engine
	Orchestrator *orchestrator.Orchestrator
	DatasetRunner *dataset.Runner

	Debouncer *ratelimit.Debouncer
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	_ = snowflake.Init(0)

	deps := &Dependencies{Config: cfg}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if cfg.DBDSN != "" {
		db, err := database.NewPostgres(cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		deps.DB = db
		cleanups = append(cleanups, func() { db.Close() })

		sqlxURL := cfg.DBDSN
		if strings.Contains(sqlxURL, "?") {
			sqlxURL += "&default_query_exec_mode=simple_protocol"
		} else {
			sqlxURL += "?default_query_exec_mode=simple_protocol"
		}
		sqlDB, err := database.NewSqlx(sqlxURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		deps.SQLDB = sqlDB
		cleanups = append(cleanups, func() { sqlDB.Close() })
		metrics.RegisterPool("postgres", sqlDB.DB)
	}

	if cfg.MongoURL != "" {
		mongoClient, err := database.NewMongo(cfg.MongoURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		deps.MongoDB = mongoClient
		cleanups = append(cleanups, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoClient.Disconnect(ctx)
		})
	}

	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		deps.Redis = redisClient
		cleanups = append(cleanups, func() { redisClient.Close() })
	}

	oauthToken, driveToken := cfg.OAuthRefreshToken, cfg.DriveRefreshToken
	if cfg.EncryptionKey != "" {
		enc, err := crypto.NewEncryptor([]byte(cfg.EncryptionKey))
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		// Refresh tokens are stored encrypted at rest; decrypt here so
		// the mail/drive adapters only ever see plaintext credentials.
		if crypto.IsEncrypted(oauthToken) {
			if plain, err := enc.DecryptToken(oauthToken); err == nil {
				oauthToken = plain
			}
		}
		if crypto.IsEncrypted(driveToken) {
			if plain, err := enc.DecryptToken(driveToken); err == nil {
				driveToken = plain
			}
		}
	}
	cfg.OAuthRefreshToken, cfg.DriveRefreshToken = oauthToken, driveToken

	deps.Mail = mail.New(cfg)
	deps.Store = drive.NewAdapter(drive.Config{
		ClientID:     cfg.DriveClientID,
		ClientSecret: cfg.DriveClientSecret,
		RefreshToken: cfg.DriveRefreshToken,
	})
	deps.Spreadsheet = spreadsheet.NewExcelReader()

	if deps.SQLDB != nil {
		deps.Records = persistence.NewRecordRepository(deps.SQLDB)
	}

	if deps.MongoDB != nil {
		// sync_locks keys on generation_date as _id, already unique by
		// construction; no secondary index needed.
		deps.States = syncstate.NewRepository(deps.MongoDB.Database(cfg.MongoDB))
	}

	deps.Events = eventbus.New()

	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	switch cfg.CacheProvider {
	case config.CacheProviderRemote:
		if deps.Redis != nil {
			deps.Cache = cacheadapter.NewRemoteCache(deps.Redis)
		} else {
			deps.Cache = cacheadapter.NewMemoryCache()
		}
	default:
		deps.Cache = cacheadapter.NewMemoryCache()
	}
	deps.CacheService = cacheservice.New(deps.Cache, ttl)
	deps.Events.Subscribe(deps.CacheService.OnDatasetInvalidated)
	deps.DatasetRunner = dataset.NewRunner(deps.Cache, ttl)

	if deps.Records != nil && deps.States != nil {
		deps.SyncEngine = &sync.Engine{
			Store:       deps.Store,
			Records:     deps.Records,
			States:      deps.States,
			Spreadsheet: deps.Spreadsheet,
			Events:      deps.Events,
			BranchID:    cfg.BranchID,
		}
	}

	deps.Orchestrator = orchestrator.New(deps.Mail, deps.Store, deps.SyncEngine, cfg.MailSubjectPattern, cfg.AttachmentsFolderID)

	if deps.Redis != nil {
		deps.Debouncer = ratelimit.NewDebouncer(deps.Redis, time.Minute)
	}

	return deps, cleanup, nil
}
