package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"taskboard/backend/internal/cache"
	"taskboard/backend/internal/models"
)

const overdueCountTTL = 2 * time.Hour

// OverdueScanHandler walks incomplete tasks with a past due date and
// stores per-assignee overdue counts in the cache, keyed by user ID.
// The scan runs off the request path so listings never pay for it.
func OverdueScanHandler(db *gorm.DB, cacheInstance *cache.RedisCache) JobHandler {
	return func(ctx context.Context, job *Job) error {
		var tasks []models.Task
		err := db.WithContext(ctx).
			Where("due_date IS NOT NULL AND status <> ?", models.StatusCompleted).
			Find(&tasks).Error
		if err != nil {
			return fmt.Errorf("overdue scan query failed: %w", err)
		}

		now := time.Now()
		counts := make(map[string]int)
		for i := range tasks {
			if tasks[i].IsOverdue(now) {
				counts[tasks[i].AssignedTo.String()]++
			}
		}

		for userID, count := range counts {
			key := fmt.Sprintf("overdue_count:%s", userID)
			if err := cacheInstance.Set(key, count, overdueCountTTL); err != nil {
				log.Printf("failed to cache overdue count for %s: %v", userID, err)
			}
		}

		log.Printf("overdue scan finished: %d assignees with overdue tasks", len(counts))
		return nil
	}
}

// ScheduleOverdueScans enqueues an overdue scan on the given interval
// until the context is cancelled. One scan is enqueued immediately.
func ScheduleOverdueScans(ctx context.Context, queue *JobQueue, queueName string, interval time.Duration) {
	enqueue := func() {
		if err := queue.Enqueue(queueName, JobTypeOverdueScan, nil); err != nil {
			log.Printf("failed to enqueue overdue scan: %v", err)
		}
	}

	enqueue()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				enqueue()
			}
		}
	}()
}
