package app

import (
	"context"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/talkincode/toughpos/config"
	"github.com/talkincode/toughpos/internal/storage"
	"github.com/talkincode/toughpos/internal/webserver"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// StoreProvider provides the blob store holding uploaded images
type StoreProvider interface {
	Store() storage.Store
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines all provider interfaces for full application context
type AppContext interface {
	DBProvider
	ConfigProvider
	StoreProvider
	SchedulerProvider

	// Application lifecycle methods
	Init(ctx context.Context) error
	MigrateDB(track bool) error
	InitDb(ctx context.Context) error
	DropAll()
	NewWebServer() *webserver.Server
	StartBackgroundJobs(ctx context.Context) error
	// CleanOrphanImages deletes stored images no row references any more
	CleanOrphanImages(ctx context.Context) (int, error)
	Release()
}
