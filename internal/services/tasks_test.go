package services_test

import (
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taskboard/backend/internal/authz"
	"taskboard/backend/internal/database"
	"taskboard/backend/internal/models"
	"taskboard/backend/internal/services"
)

type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service services.TaskService

	admin authz.Principal
	alice authz.Principal
	bob   authz.Principal
}

func (suite *TaskServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)
	suite.Require().NoError(database.Migrate(db))

	suite.db = db
	suite.service = services.NewTaskService()

	suite.admin = suite.seedUser("admin@x.com", models.RoleAdmin)
	suite.alice = suite.seedUser("alice@x.com", models.RoleUser)
	suite.bob = suite.seedUser("bob@x.com", models.RoleUser)
}

func (suite *TaskServiceTestSuite) seedUser(email, role string) authz.Principal {
	user := models.User{
		ID:       uuid.Must(uuid.NewV4()),
		Email:    email,
		Password: "hashed",
		Role:     role,
		IsActive: true,
	}
	suite.Require().NoError(suite.db.Create(&user).Error)
	return authz.Principal{UserID: user.ID, Role: role}
}

func (suite *TaskServiceTestSuite) createTask(assignee authz.Principal, title string) *models.Task {
	task, err := suite.service.CreateTask(suite.db, suite.admin, services.CreateTaskInput{
		Title:       title,
		Description: "description of " + title,
		AssignedTo:  assignee.UserID.String(),
	})
	suite.Require().NoError(err)
	return task
}

func (suite *TaskServiceTestSuite) TestCreateForcesAssignedBy() {
	task := suite.createTask(suite.alice, "review report")
	suite.Equal(suite.admin.UserID, task.AssignedBy)
	suite.Equal(suite.alice.UserID, task.AssignedTo)
	suite.Equal(models.StatusAssigned, task.Status)
	suite.Equal(models.PriorityMedium, task.Priority)
}

func (suite *TaskServiceTestSuite) TestCreateDeniedForStandardUser() {
	_, err := suite.service.CreateTask(suite.db, suite.alice, services.CreateTaskInput{
		Title:       "sneaky",
		Description: "should not exist",
		AssignedTo:  suite.alice.UserID.String(),
	})
	suite.ErrorIs(err, services.ErrPermissionDenied)

	var count int64
	suite.db.Model(&models.Task{}).Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *TaskServiceTestSuite) TestCreateValidation() {
	_, err := suite.service.CreateTask(suite.db, suite.admin, services.CreateTaskInput{
		Description: "no title",
		AssignedTo:  suite.alice.UserID.String(),
	})
	var validationErr *services.ValidationError
	suite.ErrorAs(err, &validationErr)
	suite.Equal("title", validationErr.Field)

	_, err = suite.service.CreateTask(suite.db, suite.admin, services.CreateTaskInput{
		Title:      "no description",
		AssignedTo: suite.alice.UserID.String(),
	})
	suite.ErrorAs(err, &validationErr)
	suite.Equal("description", validationErr.Field)

	_, err = suite.service.CreateTask(suite.db, suite.admin, services.CreateTaskInput{
		Title:       "ghost assignee",
		Description: "x",
		AssignedTo:  uuid.Must(uuid.NewV4()).String(),
	})
	suite.ErrorAs(err, &validationErr)
	suite.Equal("assigned_to", validationErr.Field)
}

func (suite *TaskServiceTestSuite) TestListVisibilityScope() {
	suite.createTask(suite.alice, "alice one")
	suite.createTask(suite.alice, "alice two")
	suite.createTask(suite.bob, "bob one")

	all, err := suite.service.ListTasks(suite.db, suite.admin, services.ListTasksQuery{})
	suite.Require().NoError(err)
	suite.Len(all, 3)

	mine, err := suite.service.ListTasks(suite.db, suite.alice, services.ListTasksQuery{})
	suite.Require().NoError(err)
	suite.Len(mine, 2)
	for _, task := range mine {
		suite.Equal(suite.alice.UserID, task.AssignedTo)
	}
}

func (suite *TaskServiceTestSuite) TestListFiltersAndSearch() {
	low := suite.createTask(suite.alice, "water plants")
	_, err := suite.service.UpdateTask(suite.db, suite.admin, low.ID, services.UpdateTaskInput{
		Priority: ptr(models.PriorityLow),
	})
	suite.Require().NoError(err)

	done := suite.createTask(suite.alice, "file taxes")
	_, err = suite.service.UpdateTask(suite.db, suite.admin, done.ID, services.UpdateTaskInput{
		Status: ptr(models.StatusCompleted),
	})
	suite.Require().NoError(err)

	byStatus, err := suite.service.ListTasks(suite.db, suite.alice, services.ListTasksQuery{Status: models.StatusCompleted})
	suite.Require().NoError(err)
	suite.Len(byStatus, 1)
	suite.Equal("file taxes", byStatus[0].Title)

	byPriority, err := suite.service.ListTasks(suite.db, suite.alice, services.ListTasksQuery{Priority: models.PriorityLow})
	suite.Require().NoError(err)
	suite.Len(byPriority, 1)
	suite.Equal("water plants", byPriority[0].Title)

	bySearch, err := suite.service.ListTasks(suite.db, suite.alice, services.ListTasksQuery{Search: "TAXES"})
	suite.Require().NoError(err)
	suite.Len(bySearch, 1)
	suite.Equal("file taxes", bySearch[0].Title)
}

func (suite *TaskServiceTestSuite) TestListOrdering() {
	first := suite.createTask(suite.alice, "earlier due")
	second := suite.createTask(suite.alice, "later due")

	early := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	_, err := suite.service.UpdateTask(suite.db, suite.admin, first.ID, services.UpdateTaskInput{DueDate: &early})
	suite.Require().NoError(err)
	_, err = suite.service.UpdateTask(suite.db, suite.admin, second.ID, services.UpdateTaskInput{DueDate: &late})
	suite.Require().NoError(err)

	asc, err := suite.service.ListTasks(suite.db, suite.alice, services.ListTasksQuery{Ordering: "due_date"})
	suite.Require().NoError(err)
	suite.Require().Len(asc, 2)
	suite.Equal("earlier due", asc[0].Title)

	desc, err := suite.service.ListTasks(suite.db, suite.alice, services.ListTasksQuery{Ordering: "-due_date"})
	suite.Require().NoError(err)
	suite.Require().Len(desc, 2)
	suite.Equal("later due", desc[0].Title)

	// Unknown ordering falls back to newest first.
	fallback, err := suite.service.ListTasks(suite.db, suite.alice, services.ListTasksQuery{Ordering: "password"})
	suite.Require().NoError(err)
	suite.Len(fallback, 2)
}

func (suite *TaskServiceTestSuite) TestNonOwnerSeesNotFound() {
	task := suite.createTask(suite.alice, "private to alice")

	_, err := suite.service.GetTask(suite.db, suite.bob, task.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	_, err = suite.service.UpdateTask(suite.db, suite.bob, task.ID, services.UpdateTaskInput{
		Title: ptr("hijacked"),
	})
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	err = suite.service.DeleteTask(suite.db, suite.bob, task.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	// Untouched.
	var persisted models.Task
	suite.Require().NoError(suite.db.First(&persisted, "id = ?", task.ID).Error)
	suite.Equal("private to alice", persisted.Title)
}

func (suite *TaskServiceTestSuite) TestOwnerCanUpdateOwnTask() {
	task := suite.createTask(suite.alice, "accept me")

	updated, err := suite.service.UpdateTask(suite.db, suite.alice, task.ID, services.UpdateTaskInput{
		Status: ptr(models.StatusAccepted),
	})
	suite.Require().NoError(err)
	suite.Equal(models.StatusAccepted, updated.Status)
	suite.Equal(task.AssignedBy, updated.AssignedBy)
}

func (suite *TaskServiceTestSuite) TestOwnerCannotReassign() {
	task := suite.createTask(suite.alice, "stuck with alice")

	_, err := suite.service.UpdateTask(suite.db, suite.alice, task.ID, services.UpdateTaskInput{
		AssignedTo: ptr(suite.bob.UserID.String()),
	})
	var validationErr *services.ValidationError
	suite.ErrorAs(err, &validationErr)
}

func (suite *TaskServiceTestSuite) TestOwnerDeleteDenied() {
	task := suite.createTask(suite.alice, "undeletable by owner")

	err := suite.service.DeleteTask(suite.db, suite.alice, task.ID)
	suite.ErrorIs(err, services.ErrPermissionDenied)

	var count int64
	suite.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *TaskServiceTestSuite) TestAdminDelete() {
	task := suite.createTask(suite.alice, "doomed")

	suite.Require().NoError(suite.service.DeleteTask(suite.db, suite.admin, task.ID))

	var count int64
	suite.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *TaskServiceTestSuite) TestStatusTransitionsArePermissive() {
	task := suite.createTask(suite.alice, "jumpy")

	// Any valid status can be set directly, in any order.
	for _, status := range []string{
		models.StatusCompleted,
		models.StatusAccepted,
		models.StatusInProgress,
		models.StatusAssigned,
	} {
		updated, err := suite.service.UpdateTask(suite.db, suite.alice, task.ID, services.UpdateTaskInput{
			Status: ptr(status),
		})
		suite.Require().NoError(err)
		suite.Equal(status, updated.Status)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
