package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mizutanik/tasktree-api/internal/dto"
	"github.com/mizutanik/tasktree-api/internal/models"
	"github.com/mizutanik/tasktree-api/internal/repository"
	"github.com/mizutanik/tasktree-api/internal/ws"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	events []ws.Event
}

func (p *recordingPublisher) Publish(event string, payload any) {
	p.events = append(p.events, ws.Event{Event: event, Payload: payload})
}

type taskServiceEnv struct {
	db        *gorm.DB
	svc       *TaskService
	publisher *recordingPublisher
}

func setupTaskService(t *testing.T) taskServiceEnv {
	t.Helper()

	// A file-backed database is required here: the service opens a second
	// pool connection inside transactions, and each ":memory:" connection
	// would see its own empty database.
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	publisher := &recordingPublisher{}
	svc := NewTaskService(repository.NewTaskRepository(db), repository.NewUserRepository(db), publisher)

	return taskServiceEnv{db: db, svc: svc, publisher: publisher}
}

func (env taskServiceEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: email, PasswordHash: "hashed"}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestCreateTask_OwnerIsCreator(t *testing.T) {
	env := setupTaskService(t)
	alice := env.createUser(t, "a@x.com")

	task, err := env.svc.CreateTask(alice, CreateTaskInput{
		Name:      "T1",
		StartDate: testStart,
	})
	require.NoError(t, err)
	require.Equal(t, alice.ID, task.OwnerID)
	require.Equal(t, alice.ID, task.UserID, "assignee defaults to creator")
	require.Equal(t, 0, task.CompletionPercentage)
	require.Equal(t, "a@x.com", task.Owner.Email)
}

func TestCreateTask_ExplicitAssignee(t *testing.T) {
	env := setupTaskService(t)
	alice := env.createUser(t, "a@x.com")
	bob := env.createUser(t, "b@x.com")

	task, err := env.svc.CreateTask(alice, CreateTaskInput{
		Name:       "T1",
		StartDate:  testStart,
		AssigneeID: &bob.ID,
	})
	require.NoError(t, err)
	require.Equal(t, alice.ID, task.OwnerID)
	require.Equal(t, bob.ID, task.UserID)

	missing := uint64(9999)
	_, err = env.svc.CreateTask(alice, CreateTaskInput{
		Name:       "T2",
		StartDate:  testStart,
		AssigneeID: &missing,
	})
	require.ErrorIs(t, err, ErrAssigneeNotFound)
}

func TestCreateTask_CompletionBounds(t *testing.T) {
	env := setupTaskService(t)
	alice := env.createUser(t, "a@x.com")

	_, err := env.svc.CreateTask(alice, CreateTaskInput{
		Name:                 "T1",
		StartDate:            testStart,
		CompletionPercentage: 101,
	})
	require.ErrorIs(t, err, ErrCompletionOutOfRange)

	_, err = env.svc.CreateTask(alice, CreateTaskInput{
		Name:                 "T1",
		StartDate:            testStart,
		CompletionPercentage: -1,
	})
	require.ErrorIs(t, err, ErrCompletionOutOfRange)

	require.Empty(t, env.publisher.events, "rejected mutations must not broadcast")
}

func TestCreateTask_ParentMustExist(t *testing.T) {
	env := setupTaskService(t)
	alice := env.createUser(t, "a@x.com")

	missing := uint64(9999)
	_, err := env.svc.CreateTask(alice, CreateTaskInput{
		Name:      "T1",
		StartDate: testStart,
		ParentID:  &missing,
	})
	require.ErrorIs(t, err, ErrParentNotFound)
}

func TestCreateTask_RoundTrip(t *testing.T) {
	env := setupTaskService(t)
	alice := env.createUser(t, "a@x.com")

	created, err := env.svc.CreateTask(alice, CreateTaskInput{
		Name:                 "T1",
		Description:          "first task",
		StartDate:            testStart,
		CompletionPercentage: 25,
		CustomFields:         map[string]any{"priority": "High"},
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	got, err := env.svc.GetTask(created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "T1", got.Name)
	require.Equal(t, "first task", got.Description)
	require.Equal(t, 25, got.CompletionPercentage)
	require.Equal(t, "High", got.CustomFields["priority"])
	require.True(t, got.StartDate.Equal(testStart))
}

func TestUpdateTask_OwnerOrAssigneeOnly(t *testing.T) {
	env := setupTaskService(t)
	alice := env.createUser(t, "a@x.com")
	bob := env.createUser(t, "b@x.com")
	carol := env.createUser(t, "c@x.com")

	task, err := env.svc.CreateTask(alice, CreateTaskInput{
		Name:       "T1",
		StartDate:  testStart,
		AssigneeID: &bob.ID,
	})
	require.NoError(t, err)

	newName := "renamed by owner"
	_, err = env.svc.UpdateTask(alice, task.ID, UpdateTaskInput{Name: &newName})
	require.NoError(t, err)

	newName = "renamed by assignee"
	updated, err := env.svc.UpdateTask(bob, task.ID, UpdateTaskInput{Name: &newName})
	require.NoError(t, err)
	require.Equal(t, "renamed by assignee", updated.Name)

	newName = "renamed by stranger"
	_, err = env.svc.UpdateTask(carol, task.ID, UpdateTaskInput{Name: &newName})
	require.ErrorIs(t, err, ErrTaskPermissionDenied)
}

func TestUpdateTask_OwnerUnchanged(t *testing.T) {
	env := setupTaskService(t)
	alice := env.createUser(t, "a@x.com")
	bob := env.createUser(t, "b@x.com")

	task, err := env.svc.CreateTask(alice, CreateTaskInput{Name: "T1", StartDate: testStart})
	require.NoError(t, err)

	// Reassignment moves the assignee, never the owner.
	updated, err := env.svc.UpdateTask(alice, task.ID, UpdateTaskInput{AssigneeID: &bob.ID})
	require.NoError(t, err)
	require.Equal(t, alice.ID, updated.OwnerID)
	require.Equal(t, bob.ID, updated.UserID)
}

func TestUpdateTask_ParentCycle(t *testing.T) {
	env := setupTaskService(t)
	alice := env.createUser(t, "a@x.com")

	a, err := env.svc.CreateTask(alice, CreateTaskInput{Name: "A", StartDate: testStart})
	require.NoError(t, err)
	b, err := env.svc.CreateTask(alice, CreateTaskInput{Name: "B", StartDate: testStart, ParentID: &a.ID})
	require.NoError(t, err)
	c, err := env.svc.CreateTask(alice, CreateTaskInput{Name: "C", StartDate: testStart, ParentID: &b.ID})
	require.NoError(t, err)

	// A -> B -> C; reparenting A under C closes a loop.
	_, err = env.svc.UpdateTask(alice, a.ID, UpdateTaskInput{ParentID: &c.ID})
	require.ErrorIs(t, err, ErrParentCycle)

	_, err = env.svc.UpdateTask(alice, a.ID, UpdateTaskInput{ParentID: &a.ID})
	require.ErrorIs(t, err, ErrParentCycle)

	// Reparenting C under A directly is fine.
	_, err = env.svc.UpdateTask(alice, c.ID, UpdateTaskInput{ParentID: &a.ID})
	require.NoError(t, err)
}

func TestDeleteTask_ChildrenBlockDeletion(t *testing.T) {
	env := setupTaskService(t)
	alice := env.createUser(t, "a@x.com")

	parent, err := env.svc.CreateTask(alice, CreateTaskInput{Name: "parent", StartDate: testStart})
	require.NoError(t, err)
	child, err := env.svc.CreateTask(alice, CreateTaskInput{Name: "child", StartDate: testStart, ParentID: &parent.ID})
	require.NoError(t, err)

	err = env.svc.DeleteTask(alice, parent.ID)
	require.ErrorIs(t, err, ErrTaskHasChildren)

	require.NoError(t, env.svc.DeleteTask(alice, child.ID))
	require.NoError(t, env.svc.DeleteTask(alice, parent.ID))
}

func TestDeleteTask_RepeatedDeleteFails(t *testing.T) {
	env := setupTaskService(t)
	alice := env.createUser(t, "a@x.com")
	bob := env.createUser(t, "b@x.com")

	task, err := env.svc.CreateTask(alice, CreateTaskInput{Name: "T1", StartDate: testStart})
	require.NoError(t, err)

	err = env.svc.DeleteTask(bob, task.ID)
	require.ErrorIs(t, err, ErrTaskPermissionDenied)

	require.NoError(t, env.svc.DeleteTask(alice, task.ID))

	err = env.svc.DeleteTask(alice, task.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)

	err = env.svc.DeleteTask(alice, uint64(9999))
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestListTasks_FlatForest(t *testing.T) {
	env := setupTaskService(t)
	alice := env.createUser(t, "a@x.com")

	root, err := env.svc.CreateTask(alice, CreateTaskInput{Name: "root", StartDate: testStart})
	require.NoError(t, err)
	_, err = env.svc.CreateTask(alice, CreateTaskInput{Name: "leaf", StartDate: testStart, ParentID: &root.ID})
	require.NoError(t, err)

	tasks, err := env.svc.ListTasks()
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Nil(t, tasks[0].ParentID)
	require.NotNil(t, tasks[1].ParentID)
	require.Equal(t, root.ID, *tasks[1].ParentID)
	require.Equal(t, "a@x.com", tasks[1].Owner.Email)
}

func TestMutations_PublishExactlyOneEvent(t *testing.T) {
	env := setupTaskService(t)
	alice := env.createUser(t, "a@x.com")

	task, err := env.svc.CreateTask(alice, CreateTaskInput{Name: "T1", StartDate: testStart})
	require.NoError(t, err)
	require.Len(t, env.publisher.events, 1)
	require.Equal(t, ws.EventTaskCreated, env.publisher.events[0].Event)

	pct := 100
	_, err = env.svc.UpdateTask(alice, task.ID, UpdateTaskInput{CompletionPercentage: &pct})
	require.NoError(t, err)
	require.Len(t, env.publisher.events, 2)
	require.Equal(t, ws.EventTaskUpdated, env.publisher.events[1].Event)

	payload, ok := env.publisher.events[1].Payload.(dto.TaskDTO)
	require.True(t, ok)
	require.Equal(t, 100, payload.CompletionPercentage)

	require.NoError(t, env.svc.DeleteTask(alice, task.ID))
	require.Len(t, env.publisher.events, 3)
	require.Equal(t, ws.EventTaskDeleted, env.publisher.events[2].Event)
	require.Equal(t, dto.TaskDeletedDTO{ID: task.ID}, env.publisher.events[2].Payload)

	// A failed mutation publishes nothing.
	bad := 101
	_, err = env.svc.UpdateTask(alice, task.ID, UpdateTaskInput{CompletionPercentage: &bad})
	require.Error(t, err)
	require.Len(t, env.publisher.events, 3)
}
