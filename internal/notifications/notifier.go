// Package notifications turns committed state changes into notification rows.
// Handlers report what happened through a trigger value after the mutation
// commits; this package decides who gets told and with what message.
package notifications

import (
	"fmt"

	"github.com/taskhive-dev/taskhive/internal/models"
)

// Trigger is a structured fact about a committed mutation. Exactly one
// concrete type exists per row of the trigger table.
type Trigger interface {
	isTrigger()
}

// MemberAdded fires after a membership row is inserted.
type MemberAdded struct {
	ProjectID uint
	UserID    uint
}

// TaskCreated fires after a new task is stored.
type TaskCreated struct {
	TaskID uint
}

// TaskReassigned fires when an update moved AssignedTo to a new user.
type TaskReassigned struct {
	TaskID        uint
	NewAssigneeID uint
}

// StatusChangedByAssignee fires when the assignee moved their own task to a
// new status.
type StatusChangedByAssignee struct {
	TaskID    uint
	ActorID   uint
	OldStatus string
	NewStatus string
}

// StatusChangedByManager fires when the owning manager changed the status
// through a full task edit.
type StatusChangedByManager struct {
	TaskID  uint
	ActorID uint
}

func (MemberAdded) isTrigger()             {}
func (TaskCreated) isTrigger()             {}
func (TaskReassigned) isTrigger()          {}
func (StatusChangedByAssignee) isTrigger() {}
func (StatusChangedByManager) isTrigger()  {}

type ProjectInfo struct {
	ID      uint
	Title   string
	OwnerID uint
}

type TaskInfo struct {
	ID         uint
	Title      string
	Status     string
	ProjectID  uint
	AssignedTo uint
}

// Store resolves trigger references and persists the derived rows.
type Store interface {
	Project(id uint) (ProjectInfo, error)
	Task(id uint) (TaskInfo, error)
	UserName(id uint) (string, error)
	CreateNotifications(notifications []models.Notification) error
}

type Notifier struct {
	Store Store

	// OnEmit, when set, receives each stored notification. Used to push rows
	// to connected websocket clients; failures there never propagate.
	OnEmit func(notification models.Notification)
}

func New(store Store) *Notifier {
	return &Notifier{Store: store}
}

// Emit derives and stores the notifications for one trigger. All lookups
// happen before any insert: if any reference fails to resolve, nothing is
// written and the error is returned. The triggering mutation has already
// committed either way and is never rolled back here.
func (n *Notifier) Emit(trigger Trigger) ([]models.Notification, error) {
	rows, err := n.derive(trigger)

	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, nil
	}

	if err := n.Store.CreateNotifications(rows); err != nil {
		return nil, err
	}

	if n.OnEmit != nil {
		for _, row := range rows {
			n.OnEmit(row)
		}
	}

	return rows, nil
}

func (n *Notifier) derive(trigger Trigger) ([]models.Notification, error) {
	switch t := trigger.(type) {
	case MemberAdded:
		project, err := n.Store.Project(t.ProjectID)
		if err != nil {
			return nil, err
		}
		return []models.Notification{{
			UserID:    t.UserID,
			Message:   fmt.Sprintf("You have been added to project '%s'", project.Title),
			Type:      models.NotificationProjectAssignment,
			RelatedID: project.ID,
		}}, nil

	case TaskCreated:
		task, err := n.Store.Task(t.TaskID)
		if err != nil {
			return nil, err
		}
		return []models.Notification{{
			UserID:    task.AssignedTo,
			Message:   fmt.Sprintf("New task assigned: '%s'", task.Title),
			Type:      models.NotificationNewTaskAssignment,
			RelatedID: task.ID,
		}}, nil

	case TaskReassigned:
		task, err := n.Store.Task(t.TaskID)
		if err != nil {
			return nil, err
		}
		return []models.Notification{{
			UserID:    t.NewAssigneeID,
			Message:   fmt.Sprintf("You are now assigned to task '%s'", task.Title),
			Type:      models.NotificationAssignmentChange,
			RelatedID: task.ID,
		}}, nil

	case StatusChangedByAssignee:
		task, err := n.Store.Task(t.TaskID)
		if err != nil {
			return nil, err
		}
		project, err := n.Store.Project(task.ProjectID)
		if err != nil {
			return nil, err
		}
		if project.OwnerID == t.ActorID {
			return nil, nil
		}
		actorName, err := n.Store.UserName(t.ActorID)
		if err != nil {
			return nil, err
		}
		return []models.Notification{{
			UserID: project.OwnerID,
			Message: fmt.Sprintf("%s updated task '%s' from '%s' to '%s'",
				actorName, task.Title, t.OldStatus, t.NewStatus),
			Type:      models.NotificationTaskStatusUpdate,
			RelatedID: task.ID,
		}}, nil

	case StatusChangedByManager:
		task, err := n.Store.Task(t.TaskID)
		if err != nil {
			return nil, err
		}
		project, err := n.Store.Project(task.ProjectID)
		if err != nil {
			return nil, err
		}
		if project.OwnerID == t.ActorID {
			return nil, nil
		}
		return []models.Notification{{
			UserID:    project.OwnerID,
			Message:   fmt.Sprintf("Task status changed: '%s' is now %s", task.Title, task.Status),
			Type:      models.NotificationStatusUpdate,
			RelatedID: task.ID,
		}}, nil
	}

	return nil, fmt.Errorf("unknown trigger %T", trigger)
}
