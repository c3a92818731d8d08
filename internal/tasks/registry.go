package tasks

import (
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/bookbrief/bookbrief/internal/metrics"
)

const (
	QueuePurgeDeletedBooks  = "purge_deleted_books"
	QueueCleanupAuditEvents = "cleanup_audit_events"
	QueueRotateDailyReads   = "rotate_daily_reads"
)

var ErrUnknownTaskType = errors.New("unknown task type")

// Recorder receives the outcome of every processed task.
type Recorder interface {
	LogTask(action, description string, metadata map[string]any, err error)
}

// TaskType describes a task an admin can trigger by name.
type TaskType struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// Types lists the manually runnable tasks.
func Types() []TaskType {
	return []TaskType{
		{
			Type:        QueuePurgeDeletedBooks,
			Description: "Permanently remove books soft-deleted past the retention period",
			Queue:       QueuePurgeDeletedBooks,
		},
		{
			Type:        QueueCleanupAuditEvents,
			Description: "Delete audit events older than the retention period",
			Queue:       QueueCleanupAuditEvents,
		},
		{
			Type:        QueueRotateDailyReads,
			Description: "Pick a new set of daily reads",
			Queue:       QueueRotateDailyReads,
		},
	}
}

// Defaults carries the configured parameters a task falls back to when the
// caller does not supply one.
type Defaults struct {
	PurgeRetentionDays int
	AuditRetentionDays int
	DailyReadsCount    int
}

// Build returns the task registered under taskType. A positive override
// replaces the default parameter (retention days or book count).
func Build(taskType string, defaults Defaults, override int) (backlite.Task, error) {
	pick := func(def int) int {
		if override > 0 {
			return override
		}
		return def
	}

	switch taskType {
	case QueuePurgeDeletedBooks:
		return PurgeDeletedBooksTask{RetentionDays: pick(defaults.PurgeRetentionDays)}, nil
	case QueueCleanupAuditEvents:
		return CleanupAuditEventsTask{RetentionDays: pick(defaults.AuditRetentionDays)}, nil
	case QueueRotateDailyReads:
		return RotateDailyReadsTask{Count: pick(defaults.DailyReadsCount)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, taskType)
	}
}

// StatusString maps a backlite status onto the API's vocabulary.
func StatusString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

func finish(recorder Recorder, queue string, err error) {
	metrics.TaskDone(queue, err)
	if recorder != nil {
		recorder.LogTask(queue, "background task "+queue, nil, err)
	}
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
