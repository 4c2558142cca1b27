package app

import (
	"context"
	"time"

	"github.com/postcraft/core/internal/modules/library"
	"github.com/postcraft/core/internal/modules/posts"
	pkgcron "github.com/postcraft/core/internal/pkg/cron"
	"go.uber.org/zap"
)

func (a *App) registerCronJobs(postsSvc *posts.Service, verifier *library.Verifier) {
	retention := a.cfg.Retention

	a.sched.Register(pkgcron.Job{
		Name:        "post-retention",
		Description: "delete generated posts older than the retention window",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			// One instance per pass; the lock outlives the run and expires
			// well before the next interval.
			locked, err := a.rdb.SetNX(ctx, "pc:cron:lock:post-retention", "1", time.Hour)
			if err != nil {
				return err
			}
			if !locked {
				return nil
			}
			deleted, err := postsSvc.DeleteOlderThan(ctx, retention.PostMonths)
			if err != nil {
				return err
			}
			if deleted > 0 {
				a.logger.Info("retention pass removed posts", zap.Int64("deleted", deleted))
			}
			return nil
		},
	})

	verifyInterval := retention.VerifyInterval
	if verifyInterval <= 0 {
		verifyInterval = time.Hour
	}
	a.sched.Register(pkgcron.Job{
		Name:        "content-verification",
		Description: "re-probe content accessibility and refresh the verdict cache",
		Interval:    verifyInterval,
		Fn:          verifier.Sweep,
	})
}
