package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartFavoriteCleaner purges removed favorites older than retention every interval.
// Removal only stamps deleted_at, so a quick re-add restores the original row.
func StartFavoriteCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				res, err := db.ExecContext(ctx, `
                    DELETE FROM favorites
                     WHERE deleted_at IS NOT NULL
                       AND deleted_at < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to purge removed favorites", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("purged removed favorites", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
