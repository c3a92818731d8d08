package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/bookbrief/bookbrief/internal/log"
)

// BookPurger permanently removes books soft-deleted before a cutoff.
type BookPurger interface {
	PurgeDeleted(ctx context.Context, before time.Time) (int64, error)
}

// PurgeDeletedBooksTask removes soft-deleted books, with their chapters,
// once they have been deleted for longer than RetentionDays.
type PurgeDeletedBooksTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t PurgeDeletedBooksTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueuePurgeDeletedBooks,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func PurgeDeletedBooksProcessor(purger BookPurger, recorder Recorder, now func() time.Time) backlite.QueueProcessor[PurgeDeletedBooksTask] {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, task PurgeDeletedBooksTask) (err error) {
		defer func() { finish(recorder, QueuePurgeDeletedBooks, err) }()

		if purger == nil {
			return errors.New("book purger not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = 30
		}

		purged, err := purger.PurgeDeleted(ctx, now().Add(-days(retentionDays)))
		if err != nil {
			return fmt.Errorf("purge deleted books: %w", err)
		}

		log.Info("Purged deleted books",
			zap.Int64("purged", purged),
			zap.Int("retention_days", retentionDays))
		return nil
	}
}

func NewPurgeDeletedBooksQueue(purger BookPurger, recorder Recorder) backlite.Queue {
	return backlite.NewQueue(PurgeDeletedBooksProcessor(purger, recorder, nil))
}
