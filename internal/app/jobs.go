package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/talkincode/toughpos/internal/repository"
	"github.com/talkincode/toughpos/internal/storage"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() error {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	schedule := a.appConfig.Storage.GCSchedule
	if schedule == "" {
		schedule = "@daily"
	}
	_, err = a.sched.AddFunc(schedule, a.SchedCleanOrphanImages)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
		return errors.Wrapf(err, "schedule image gc %q", schedule)
	}

	a.sched.Start()
	return nil
}

// SchedCleanOrphanImages is the cron entry of the image gc
func (a *Application) SchedCleanOrphanImages() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	n, err := a.CleanOrphanImages(ctx)
	if err != nil {
		zap.L().Error("image gc failed", zap.Int("deleted", n), zap.Error(err))
		return
	}
	zap.L().Info("image gc finished", zap.Int("deleted", n))
}

// CleanOrphanImages deletes stored images no row references any more
func (a *Application) CleanOrphanImages(ctx context.Context) (int, error) {
	cfg := a.appConfig.Storage
	return collectOrphans(ctx, a.store, repository.NewGormImageRefs(a.gormDB),
		time.Now().Add(-cfg.GCGrace), cfg.GCWorkers)
}

// collectOrphans deletes blobs modified before cutoff that no row references.
// Blobs newer than cutoff may belong to a create or update still in flight.
func collectOrphans(ctx context.Context, store storage.Store, refs repository.ImageRefs,
	cutoff time.Time, workers int) (int, error) {
	objects, err := store.List(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "list blobs")
	}
	held, err := refs.ReferencedImages(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "list referenced images")
	}

	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p interface{}) {
		zap.S().Errorf("image gc worker panic: %v", p)
	}))
	if err != nil {
		return 0, errors.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	var (
		wg      sync.WaitGroup
		deleted atomic.Int64
	)
	for _, obj := range objects {
		if _, ok := held[obj.Path]; ok || !obj.ModTime.Before(cutoff) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		p := obj.Path
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if err := store.Delete(ctx, p); err != nil {
				zap.L().Warn("delete orphan image failed", zap.String("path", p), zap.Error(err))
				return
			}
			deleted.Add(1)
		})
		if err != nil {
			wg.Done()
			zap.L().Warn("submit image gc task failed", zap.String("path", p), zap.Error(err))
		}
	}
	wg.Wait()
	return int(deleted.Load()), ctx.Err()
}
