package services

import (
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskboard/backend/internal/authz"
	"taskboard/backend/internal/models"
)

// CreateTaskInput is validated here rather than by request binding;
// the handler converts its own bound payload into this struct.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	AssignedTo  string
	DueDate     *time.Time
}

// UpdateTaskInput is a partial update; nil fields are left untouched.
// assigned_by deliberately has no slot here, so a client-supplied value
// is discarded before it can reach the store.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	AssignedTo  *string
	DueDate     *time.Time
}

type ListTasksQuery struct {
	Status   string
	Priority string
	Search   string
	Ordering string
}

type TaskService interface {
	ListTasks(db *gorm.DB, p authz.Principal, q ListTasksQuery) ([]models.Task, error)
	CreateTask(db *gorm.DB, p authz.Principal, input CreateTaskInput) (*models.Task, error)
	GetTask(db *gorm.DB, p authz.Principal, id uuid.UUID) (*models.Task, error)
	UpdateTask(db *gorm.DB, p authz.Principal, id uuid.UUID, input UpdateTaskInput) (*models.Task, error)
	DeleteTask(db *gorm.DB, p authz.Principal, id uuid.UUID) error
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

// ListTasks returns the tasks visible to the principal, filtered and
// ordered. The visibility scope is applied before any filter so that
// search and ordering only ever operate within the scoped set.
func (s *TaskServiceImpl) ListTasks(db *gorm.DB, p authz.Principal, q ListTasksQuery) ([]models.Task, error) {
	query := db.Model(&models.Task{}).Scopes(authz.Scope(p))

	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Priority != "" {
		query = query.Where("priority = ?", q.Priority)
	}
	if q.Search != "" {
		pattern := "%" + strings.ToLower(q.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	query = query.Order(orderingClause(q.Ordering))

	var tasks []models.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func orderingClause(ordering string) string {
	desc := strings.HasPrefix(ordering, "-")
	column := strings.TrimPrefix(ordering, "-")

	switch column {
	case "due_date", "created_at":
	default:
		return "created_at DESC"
	}

	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, p authz.Principal, input CreateTaskInput) (*models.Task, error) {
	if decision := authz.Authorize(p, authz.ActionCreate, nil); decision != authz.Allow {
		return nil, ErrPermissionDenied
	}

	if strings.TrimSpace(input.Title) == "" {
		return nil, NewValidationError("title", "title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, NewValidationError("description", "description is required")
	}

	status := input.Status
	if status == "" {
		status = models.StatusAssigned
	}
	if !models.ValidStatus(status) {
		return nil, NewValidationError("status", "invalid status value")
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, NewValidationError("priority", "invalid priority value")
	}

	assignedTo, err := uuid.FromString(input.AssignedTo)
	if err != nil {
		return nil, NewValidationError("assigned_to", "invalid user ID")
	}

	var assignee models.User
	if err := db.Where("id = ?", assignedTo).First(&assignee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("assigned_to", "assigned user does not exist")
		}
		return nil, err
	}

	task := models.Task{
		ID:          uuid.Must(uuid.NewV4()),
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		AssignedTo:  assignedTo,
		AssignedBy:  p.UserID,
		DueDate:     input.DueDate,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := db.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskServiceImpl) GetTask(db *gorm.DB, p authz.Principal, id uuid.UUID) (*models.Task, error) {
	task, err := s.fetchScoped(db, p, id)
	if err != nil {
		return nil, err
	}

	if decision := authz.Authorize(p, authz.ActionRetrieve, task); decision != authz.Allow {
		return nil, gorm.ErrRecordNotFound
	}
	return task, nil
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, p authz.Principal, id uuid.UUID, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.fetchScoped(db, p, id)
	if err != nil {
		return nil, err
	}

	if decision := authz.Authorize(p, authz.ActionUpdate, task); decision != authz.Allow {
		return nil, gorm.ErrRecordNotFound
	}

	updates := map[string]interface{}{}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, NewValidationError("title", "title cannot be blank")
		}
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		if strings.TrimSpace(*input.Description) == "" {
			return nil, NewValidationError("description", "description cannot be blank")
		}
		updates["description"] = *input.Description
	}
	if input.Status != nil {
		if !models.ValidStatus(*input.Status) {
			return nil, NewValidationError("status", "invalid status value")
		}
		updates["status"] = *input.Status
	}
	if input.Priority != nil {
		if !models.ValidPriority(*input.Priority) {
			return nil, NewValidationError("priority", "invalid priority value")
		}
		updates["priority"] = *input.Priority
	}
	if input.AssignedTo != nil {
		// Reassignment is an admin-only mutation; for the assignee it
		// would be a way to push a task out of their own scope.
		if !p.IsAdmin() {
			return nil, NewValidationError("assigned_to", "only admins can reassign tasks")
		}
		assignedTo, err := uuid.FromString(*input.AssignedTo)
		if err != nil {
			return nil, NewValidationError("assigned_to", "invalid user ID")
		}
		var assignee models.User
		if err := db.Where("id = ?", assignedTo).First(&assignee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewValidationError("assigned_to", "assigned user does not exist")
			}
			return nil, err
		}
		updates["assigned_to"] = assignedTo
	}
	if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := db.Model(task).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if err := db.Where("id = ?", id).First(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, p authz.Principal, id uuid.UUID) error {
	task, err := s.fetchScoped(db, p, id)
	if err != nil {
		return err
	}

	switch authz.Authorize(p, authz.ActionDelete, task) {
	case authz.Allow:
		return db.Delete(task).Error
	case authz.DenyPermission:
		return ErrPermissionDenied
	default:
		return gorm.ErrRecordNotFound
	}
}

// fetchScoped looks a task up within the principal's visibility scope,
// so a task assigned to someone else is indistinguishable from one that
// does not exist.
func (s *TaskServiceImpl) fetchScoped(db *gorm.DB, p authz.Principal, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := db.Scopes(authz.Scope(p)).Where("id = ?", id).First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}
