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

// DailyRotator replaces the current daily reads with a fresh selection.
type DailyRotator interface {
	RotateDaily(ctx context.Context, count int) ([]string, error)
}

// RotateDailyReadsTask picks Count published books as the new daily reads.
type RotateDailyReadsTask struct {
	Count int `json:"count"`
}

func (t RotateDailyReadsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueRotateDailyReads,
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func RotateDailyReadsProcessor(rotator DailyRotator, recorder Recorder) backlite.QueueProcessor[RotateDailyReadsTask] {
	return func(ctx context.Context, task RotateDailyReadsTask) (err error) {
		defer func() { finish(recorder, QueueRotateDailyReads, err) }()

		if rotator == nil {
			return errors.New("daily rotator not configured")
		}

		count := task.Count
		if count <= 0 {
			count = 5
		}

		ids, err := rotator.RotateDaily(ctx, count)
		if err != nil {
			return fmt.Errorf("rotate daily reads: %w", err)
		}

		log.Info("Rotated daily reads", zap.Strings("book_ids", ids))
		return nil
	}
}

func NewRotateDailyReadsQueue(rotator DailyRotator, recorder Recorder) backlite.Queue {
	return backlite.NewQueue(RotateDailyReadsProcessor(rotator, recorder))
}
