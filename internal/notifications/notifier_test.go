package notifications

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/taskhive-dev/taskhive/internal/models"
)

type stubStore struct {
	projects map[uint]ProjectInfo
	tasks    map[uint]TaskInfo
	users    map[uint]string

	created   []models.Notification
	createErr error
}

func newStubStore() *stubStore {
	return &stubStore{
		projects: make(map[uint]ProjectInfo),
		tasks:    make(map[uint]TaskInfo),
		users:    make(map[uint]string),
	}
}

func (s *stubStore) Project(id uint) (ProjectInfo, error) {
	project, ok := s.projects[id]
	if !ok {
		return ProjectInfo{}, fmt.Errorf("project %d not found", id)
	}
	return project, nil
}

func (s *stubStore) Task(id uint) (TaskInfo, error) {
	task, ok := s.tasks[id]
	if !ok {
		return TaskInfo{}, fmt.Errorf("task %d not found", id)
	}
	return task, nil
}

func (s *stubStore) UserName(id uint) (string, error) {
	name, ok := s.users[id]
	if !ok {
		return "", fmt.Errorf("user %d not found", id)
	}
	return name, nil
}

func (s *stubStore) CreateNotifications(notifications []models.Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, notifications...)
	return nil
}

// fixtureStore: manager 1 ("Morgan") owns project 10 ("Apollo"); task 100
// ("Write launch checklist") belongs to it and is assigned to user 2 ("Uli").
func fixtureStore() *stubStore {
	s := newStubStore()
	s.projects[10] = ProjectInfo{ID: 10, Title: "Apollo", OwnerID: 1}
	s.tasks[100] = TaskInfo{ID: 100, Title: "Write launch checklist", Status: "Done", ProjectID: 10, AssignedTo: 2}
	s.users[1] = "Morgan"
	s.users[2] = "Uli"
	return s
}

func expectOne(t *testing.T, rows []models.Notification) models.Notification {
	t.Helper()
	if len(rows) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(rows))
	}
	return rows[0]
}

func TestEmit_MemberAdded(t *testing.T) {
	store := fixtureStore()
	notifier := New(store)

	rows, err := notifier.Emit(MemberAdded{ProjectID: 10, UserID: 2})
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}

	row := expectOne(t, rows)
	if row.UserID != 2 {
		t.Fatalf("expected recipient 2, got %d", row.UserID)
	}
	if row.Type != models.NotificationProjectAssignment {
		t.Fatalf("unexpected type %q", row.Type)
	}
	if row.RelatedID != 10 {
		t.Fatalf("expected related id 10, got %d", row.RelatedID)
	}
	if row.Message != "You have been added to project 'Apollo'" {
		t.Fatalf("unexpected message %q", row.Message)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected one stored row, got %d", len(store.created))
	}
}

func TestEmit_TaskCreated(t *testing.T) {
	notifier := New(fixtureStore())

	rows, err := notifier.Emit(TaskCreated{TaskID: 100})
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}

	row := expectOne(t, rows)
	if row.UserID != 2 {
		t.Fatalf("expected assignee 2, got %d", row.UserID)
	}
	if row.Type != models.NotificationNewTaskAssignment {
		t.Fatalf("unexpected type %q", row.Type)
	}
	if row.RelatedID != 100 {
		t.Fatalf("expected related id 100, got %d", row.RelatedID)
	}
	if row.Message != "New task assigned: 'Write launch checklist'" {
		t.Fatalf("unexpected message %q", row.Message)
	}
}

func TestEmit_TaskReassigned(t *testing.T) {
	notifier := New(fixtureStore())

	rows, err := notifier.Emit(TaskReassigned{TaskID: 100, NewAssigneeID: 7})
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}

	row := expectOne(t, rows)
	if row.UserID != 7 {
		t.Fatalf("expected new assignee 7, got %d", row.UserID)
	}
	if row.Type != models.NotificationAssignmentChange {
		t.Fatalf("unexpected type %q", row.Type)
	}
	if row.Message != "You are now assigned to task 'Write launch checklist'" {
		t.Fatalf("unexpected message %q", row.Message)
	}
}

func TestEmit_StatusChangedByAssignee(t *testing.T) {
	notifier := New(fixtureStore())

	rows, err := notifier.Emit(StatusChangedByAssignee{
		TaskID:    100,
		ActorID:   2,
		OldStatus: models.TaskStatusTodo,
		NewStatus: models.TaskStatusDone,
	})
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}

	row := expectOne(t, rows)
	if row.UserID != 1 {
		t.Fatalf("expected project owner 1, got %d", row.UserID)
	}
	if row.Type != models.NotificationTaskStatusUpdate {
		t.Fatalf("unexpected type %q", row.Type)
	}
	if row.RelatedID != 100 {
		t.Fatalf("expected related id 100, got %d", row.RelatedID)
	}
	if !strings.Contains(row.Message, "To-Do") || !strings.Contains(row.Message, "Done") {
		t.Fatalf("message must name both statuses, got %q", row.Message)
	}
	if !strings.Contains(row.Message, "Uli") {
		t.Fatalf("message must name the actor, got %q", row.Message)
	}
}

func TestEmit_StatusChangeByOwnerIsSuppressed(t *testing.T) {
	store := fixtureStore()
	store.tasks[100] = TaskInfo{ID: 100, Title: "Write launch checklist", Status: "Done", ProjectID: 10, AssignedTo: 1}
	notifier := New(store)

	rows, err := notifier.Emit(StatusChangedByAssignee{TaskID: 100, ActorID: 1, OldStatus: "To-Do", NewStatus: "Done"})
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no notifications when owner is the actor, got %d", len(rows))
	}
	if len(store.created) != 0 {
		t.Fatalf("nothing should be stored, got %d rows", len(store.created))
	}
}

func TestEmit_StatusChangedByManager(t *testing.T) {
	store := fixtureStore()
	// Manager 5 edits a task in Morgan's project.
	notifier := New(store)

	rows, err := notifier.Emit(StatusChangedByManager{TaskID: 100, ActorID: 5})
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}

	row := expectOne(t, rows)
	if row.UserID != 1 {
		t.Fatalf("expected project owner 1, got %d", row.UserID)
	}
	if row.Type != models.NotificationStatusUpdate {
		t.Fatalf("unexpected type %q", row.Type)
	}
	if row.Message != "Task status changed: 'Write launch checklist' is now Done" {
		t.Fatalf("unexpected message %q", row.Message)
	}

	// Same trigger fired by the owner produces nothing.
	rows, err = notifier.Emit(StatusChangedByManager{TaskID: 100, ActorID: 1})
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected suppression for owner actor, got %d rows", len(rows))
	}
}

func TestEmit_ResolutionFailureWritesNothing(t *testing.T) {
	store := fixtureStore()
	delete(store.users, 2) // actor name lookup will fail
	notifier := New(store)

	_, err := notifier.Emit(StatusChangedByAssignee{TaskID: 100, ActorID: 2, OldStatus: "To-Do", NewStatus: "Done"})
	if err == nil {
		t.Fatal("expected resolution error")
	}
	if len(store.created) != 0 {
		t.Fatalf("all-or-nothing violated: %d rows stored", len(store.created))
	}
}

func TestEmit_MissingTaskWritesNothing(t *testing.T) {
	store := fixtureStore()
	notifier := New(store)

	if _, err := notifier.Emit(TaskCreated{TaskID: 404}); err == nil {
		t.Fatal("expected error for unknown task")
	}
	if len(store.created) != 0 {
		t.Fatalf("expected no stored rows, got %d", len(store.created))
	}
}

func TestEmit_StoreFailurePropagates(t *testing.T) {
	store := fixtureStore()
	store.createErr = errors.New("insert failed")
	notifier := New(store)

	if _, err := notifier.Emit(MemberAdded{ProjectID: 10, UserID: 2}); err == nil {
		t.Fatal("expected create error to propagate")
	}
}

func TestEmit_OnEmitHookReceivesRows(t *testing.T) {
	notifier := New(fixtureStore())

	var pushed []models.Notification
	notifier.OnEmit = func(n models.Notification) {
		pushed = append(pushed, n)
	}

	rows, err := notifier.Emit(MemberAdded{ProjectID: 10, UserID: 2})
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	if len(pushed) != len(rows) {
		t.Fatalf("hook saw %d rows, emit returned %d", len(pushed), len(rows))
	}
}

func TestEmit_ScenarioMemberJoinsThenCompletesTask(t *testing.T) {
	store := fixtureStore()
	store.tasks[100] = TaskInfo{ID: 100, Title: "Write launch checklist", Status: "To-Do", ProjectID: 10, AssignedTo: 2}
	notifier := New(store)

	if _, err := notifier.Emit(MemberAdded{ProjectID: 10, UserID: 2}); err != nil {
		t.Fatalf("member added: %v", err)
	}
	if _, err := notifier.Emit(TaskCreated{TaskID: 100}); err != nil {
		t.Fatalf("task created: %v", err)
	}
	if _, err := notifier.Emit(StatusChangedByAssignee{TaskID: 100, ActorID: 2, OldStatus: "To-Do", NewStatus: "Done"}); err != nil {
		t.Fatalf("status changed: %v", err)
	}

	if len(store.created) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(store.created))
	}

	first, second, third := store.created[0], store.created[1], store.created[2]

	if first.UserID != 2 || first.Type != models.NotificationProjectAssignment || first.RelatedID != 10 {
		t.Fatalf("unexpected first notification %+v", first)
	}
	if second.UserID != 2 || second.Type != models.NotificationNewTaskAssignment || second.RelatedID != 100 {
		t.Fatalf("unexpected second notification %+v", second)
	}
	if third.UserID != 1 || third.Type != models.NotificationTaskStatusUpdate || third.RelatedID != 100 {
		t.Fatalf("unexpected third notification %+v", third)
	}
	if !strings.Contains(third.Message, "To-Do") || !strings.Contains(third.Message, "Done") {
		t.Fatalf("status message must carry both statuses: %q", third.Message)
	}
}
