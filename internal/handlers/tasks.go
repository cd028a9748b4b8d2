package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/services"
)

const dateLayout = "2006-01-02"

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService}
}

type TaskResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Status       string  `json:"status"`
	Priority     string  `json:"priority"`
	AssignedTo   string  `json:"assigned_to"`
	AssignedBy   string  `json:"assigned_by"`
	AssigneeName string  `json:"assignee_name"`
	DueDate      *string `json:"due_date"`
	Overdue      bool    `json:"overdue"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	AssignedTo  string `json:"assigned_to"`
	DueDate     string `json:"due_date"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssignedTo  *string `json:"assigned_to"`
	DueDate     *string `json:"due_date"`
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	p, ok := principalFromContext(c)
	if !ok {
		return
	}

	query := services.ListTasksQuery{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	}

	tasks, err := h.taskService.ListTasks(h.db, p, query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.taskListResponse(tasks))
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	p, ok := principalFromContext(c)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		respondError(c, err)
		return
	}

	input := services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		DueDate:     dueDate,
	}

	task, err := h.taskService.CreateTask(h.db, p, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.taskResponse(task))
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	p, ok := principalFromContext(c)
	if !ok {
		return
	}

	id, err := taskIDParam(c)
	if err != nil {
		respondError(c, gorm.ErrRecordNotFound)
		return
	}

	task, err := h.taskService.GetTask(h.db, p, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.taskResponse(task))
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	p, ok := principalFromContext(c)
	if !ok {
		return
	}

	id, err := taskIDParam(c)
	if err != nil {
		respondError(c, gorm.ErrRecordNotFound)
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
	}

	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			respondError(c, err)
			return
		}
		input.DueDate = dueDate
	}

	task, err := h.taskService.UpdateTask(h.db, p, id, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.taskResponse(task))
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	p, ok := principalFromContext(c)
	if !ok {
		return
	}

	id, err := taskIDParam(c)
	if err != nil {
		respondError(c, gorm.ErrRecordNotFound)
		return
	}

	if err := h.taskService.DeleteTask(h.db, p, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func taskIDParam(c *gin.Context) (uuid.UUID, error) {
	return uuid.FromString(c.Param("id"))
}

func parseDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, services.NewValidationError("due_date", "due_date must be formatted as YYYY-MM-DD")
	}
	return &parsed, nil
}

func (h *TaskHandler) taskResponse(task *models.Task) TaskResponse {
	names := h.assigneeNames([]models.Task{*task})
	return buildTaskResponse(task, names[task.AssignedTo])
}

func (h *TaskHandler) taskListResponse(tasks []models.Task) []TaskResponse {
	names := h.assigneeNames(tasks)
	response := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		response = append(response, buildTaskResponse(&tasks[i], names[tasks[i].AssignedTo]))
	}
	return response
}

// assigneeNames resolves display names for the assignees in one query.
func (h *TaskHandler) assigneeNames(tasks []models.Task) map[uuid.UUID]string {
	seen := map[uuid.UUID]bool{}
	ids := make([]uuid.UUID, 0, len(tasks))
	for _, task := range tasks {
		if !seen[task.AssignedTo] {
			seen[task.AssignedTo] = true
			ids = append(ids, task.AssignedTo)
		}
	}

	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names
	}

	var users []models.User
	if err := h.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return names
	}
	for i := range users {
		names[users[i].ID] = users[i].FullName()
	}
	return names
}

func buildTaskResponse(task *models.Task, assigneeName string) TaskResponse {
	var dueDate *string
	if task.DueDate != nil {
		formatted := task.DueDate.Format(dateLayout)
		dueDate = &formatted
	}

	if assigneeName == "" {
		assigneeName = "Unassigned"
	}

	return TaskResponse{
		ID:           task.ID.String(),
		Title:        task.Title,
		Description:  task.Description,
		Status:       task.Status,
		Priority:     task.Priority,
		AssignedTo:   task.AssignedTo.String(),
		AssignedBy:   task.AssignedBy.String(),
		AssigneeName: assigneeName,
		DueDate:      dueDate,
		Overdue:      task.IsOverdue(time.Now()),
		CreatedAt:    task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    task.UpdatedAt.Format(time.RFC3339),
	}
}
