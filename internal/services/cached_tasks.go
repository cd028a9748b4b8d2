package services

import (
	"fmt"
	"log"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskboard/backend/internal/authz"
	"taskboard/backend/internal/cache"
	"taskboard/backend/internal/models"
)

const (
	taskNamespace = "tasks"
	listCacheTTL  = 2 * time.Minute
)

// CachedTaskService wraps a TaskService with a Redis read-through cache
// for list queries. Keys include the principal's user ID, so one user's
// cached listing can never be served to another. Cache failures fall
// back to the database.
type CachedTaskService struct {
	taskService TaskService
	cache       *cache.RedisCache
}

func NewCachedTaskService(taskService TaskService, cacheInstance *cache.RedisCache) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		cache:       cacheInstance,
	}
}

func (s *CachedTaskService) ListTasks(db *gorm.DB, p authz.Principal, q ListTasksQuery) ([]models.Task, error) {
	key, err := s.listKey(p, q)
	if err == nil {
		var cached []models.Task
		if err := s.cache.Get(key, &cached); err == nil {
			return cached, nil
		}
	}

	tasks, err := s.taskService.ListTasks(db, p, q)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := s.cache.Set(key, tasks, listCacheTTL); err != nil {
			log.Printf("task list cache write failed: %v", err)
		}
	}

	return tasks, nil
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, p authz.Principal, input CreateTaskInput) (*models.Task, error) {
	task, err := s.taskService.CreateTask(db, p, input)
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return task, nil
}

func (s *CachedTaskService) GetTask(db *gorm.DB, p authz.Principal, id uuid.UUID) (*models.Task, error) {
	return s.taskService.GetTask(db, p, id)
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, p authz.Principal, id uuid.UUID, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskService.UpdateTask(db, p, id, input)
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return task, nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, p authz.Principal, id uuid.UUID) error {
	if err := s.taskService.DeleteTask(db, p, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *CachedTaskService) listKey(p authz.Principal, q ListTasksQuery) (string, error) {
	key := fmt.Sprintf("list:%s:%s:%s:%s:%s:%s",
		p.UserID, p.Role, q.Status, q.Priority, q.Search, q.Ordering)
	return s.cache.NamespacedKey(taskNamespace, key)
}

func (s *CachedTaskService) invalidate() {
	if err := s.cache.InvalidateNamespace(taskNamespace); err != nil {
		log.Printf("task cache invalidation failed: %v", err)
	}
}
