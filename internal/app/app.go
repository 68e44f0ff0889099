package app

import (
	"context"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/talkincode/toughpos/config"
	"github.com/talkincode/toughpos/internal/adminapi"
	"github.com/talkincode/toughpos/internal/auth"
	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/repository"
	"github.com/talkincode/toughpos/internal/service"
	"github.com/talkincode/toughpos/internal/storage"
	"github.com/talkincode/toughpos/internal/webserver"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	store     storage.Store
	tokens    *auth.TokenService
	services  adminapi.Services
	sched     *cron.Cron
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ StoreProvider     = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Store() storage.Store {
	return a.store
}

// OverrideStore replaces the blob store (used in tests).
func (a *Application) OverrideStore(store storage.Store) {
	a.store = store
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// Init sets up logging, the database, the blob store and the services.
// Handles already set through OverrideDB or OverrideStore are kept.
func (a *Application) Init(ctx context.Context) error {
	cfg := a.appConfig
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	if err := initLogger(cfg.Logger); err != nil {
		return err
	}

	if a.gormDB == nil {
		a.gormDB, err = getDatabase(cfg.Database, cfg.System.Workdir)
		if err != nil {
			return err
		}
		zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)
	}

	if err := a.MigrateDB(cfg.Database.Debug); err != nil {
		return errors.Wrap(err, "database migration failed")
	}

	if a.store == nil {
		a.store, err = newStore(ctx, cfg)
		if err != nil {
			return err
		}
		zap.S().Infof("Blob storage ready, type: %s", cfg.Storage.Type)
	}

	a.checkSuper(ctx)
	a.initServices()
	return nil
}

func initLogger(cfg config.LogConfig) error {
	var zapConfig zap.Config
	if cfg.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			return errors.Wrap(err, "build logger")
		}
	}

	zap.ReplaceGlobals(logger)
	return nil
}

func newStore(ctx context.Context, cfg *config.AppConfig) (storage.Store, error) {
	if cfg.Storage.Type == "s3" {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return s3Store, nil
	}
	localStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		return nil, err
	}
	return localStore, nil
}

func (a *Application) initServices() {
	users := repository.NewGormUserRepository(a.gormDB)
	categories := repository.NewGormCategoryRepository(a.gormDB)
	products := repository.NewGormProductRepository(a.gormDB)
	customers := repository.NewGormCustomerRepository(a.gormDB)
	refs := repository.NewGormImageRefs(a.gormDB)

	a.tokens = auth.NewTokenService(a.appConfig.Web.Secret, users)
	a.services = adminapi.Services{
		Auth:        service.NewAuthService(users, a.tokens),
		Users:       service.NewUserService(users),
		Categories:  service.NewCategoryService(categories, products, refs, a.store),
		Products:    service.NewProductService(products, categories, refs, a.store),
		Customers:   service.NewCustomerService(customers),
		Store:       a.store,
		CleanImages: a.CleanOrphanImages,
	}
}

// Tokens returns the token service, available after Init
func (a *Application) Tokens() *auth.TokenService {
	return a.tokens
}

// NewWebServer builds the http server with every admin api route registered
func (a *Application) NewWebServer() *webserver.Server {
	s := webserver.NewServer(a.appConfig, a.tokens)
	adminapi.New(a.services).Init(s)
	return s
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	db := a.gormDB
	if track {
		db = db.Debug()
	}
	return db.Migrator().AutoMigrate(domain.Tables...)
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

// InitDb drops and recreates every table, then seeds the administrator
func (a *Application) InitDb(ctx context.Context) error {
	a.DropAll()
	if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
		return errors.Wrap(err, "recreate tables")
	}
	a.checkSuper(ctx)
	return nil
}

// StartBackgroundJobs starts the cron jobs and stops them when ctx is done.
func (a *Application) StartBackgroundJobs(ctx context.Context) error {
	if err := a.initJob(); err != nil {
		return err
	}
	<-ctx.Done()
	stopped := a.sched.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(30 * time.Second):
		zap.L().Warn("background jobs did not stop in time")
	}
	return nil
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.gormDB != nil {
		if sqlDB, err := a.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = zap.L().Sync()
}
