// Package authz is the single decision point for who may do what. Handlers
// never test roles or ownership themselves; they build an action/resource
// pair and ask Can.
package authz

import (
	"errors"

	"github.com/taskhive-dev/taskhive/internal/models"
)

type Action string

const (
	ActionCreateProject Action = "create_project"
	ActionReadProject   Action = "read_project"
	ActionUpdateProject Action = "update_project"
	ActionDeleteProject Action = "delete_project"

	ActionAddMember    Action = "add_member"
	ActionRemoveMember Action = "remove_member"

	ActionCreateTask Action = "create_task"
	ActionReadTask   Action = "read_task"
	// ActionUpdateTask covers edits to any task field and is reserved for the
	// owning manager. A request that changes only the status field and comes
	// from the assignee is classified ActionUpdateTaskStatus instead; that
	// classification happens at the handler, the policy stays transport-free.
	ActionUpdateTask       Action = "update_task"
	ActionUpdateTaskStatus Action = "update_task_status"
	ActionDeleteTask       Action = "delete_task"

	ActionCreateComment    Action = "create_comment"
	ActionUpdateComment    Action = "update_comment"
	ActionDeleteComment    Action = "delete_comment"
	ActionCreateAttachment Action = "create_attachment"
)

type ResourceKind string

const (
	KindProject    ResourceKind = "project"
	KindTask       ResourceKind = "task"
	KindComment    ResourceKind = "comment"
	KindMembership ResourceKind = "membership"
)

// Resource addresses the entity an action targets. For memberships ID is the
// project and UserID the member; for everything else UserID is unused.
type Resource struct {
	Kind   ResourceKind
	ID     uint
	UserID uint
}

func ProjectRef(id uint) Resource { return Resource{Kind: KindProject, ID: id} }

func TaskRef(id uint) Resource { return Resource{Kind: KindTask, ID: id} }

func CommentRef(id uint) Resource { return Resource{Kind: KindComment, ID: id} }

func MembershipRef(projectID, userID uint) Resource {
	return Resource{Kind: KindMembership, ID: projectID, UserID: userID}
}

// Actor is the verified identity performing the action.
type Actor struct {
	ID   uint
	Role string
}

type Decision struct {
	Allowed bool
	Reason  string
}

const (
	ReasonNotAuthorized = "not authorized"
	ReasonNotFound      = "resource not found"
)

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// ErrNotFound is returned by a Store when the addressed row or one of its
// parents does not exist. The checker turns it into a deny, never a crash.
var ErrNotFound = errors.New("resource not found")

type ProjectFacts struct {
	ID      uint
	OwnerID uint
}

type TaskFacts struct {
	ID         uint
	ProjectID  uint
	AssignedTo uint
}

type CommentFacts struct {
	ID     uint
	TaskID uint
	UserID uint
}

// Store supplies the facts the policy depends on. The production store reads
// the database; tests substitute an in-memory stub.
type Store interface {
	Project(id uint) (ProjectFacts, error)
	Task(id uint) (TaskFacts, error)
	Comment(id uint) (CommentFacts, error)
	IsMember(projectID, userID uint) (bool, error)
}

type Checker struct {
	Store Store
}

func New(store Store) *Checker {
	return &Checker{Store: store}
}

// Can evaluates the precedence table. The first matching rule wins. A non-nil
// error means a store failure, not a policy outcome; callers surface it as an
// internal error.
func (c *Checker) Can(actor Actor, action Action, res Resource) (Decision, error) {
	if actor.Role == models.RoleAdmin {
		return allow(), nil
	}

	switch action {
	case ActionCreateProject:
		if actor.Role == models.RoleManager {
			return allow(), nil
		}
		return deny(ReasonNotAuthorized), nil

	case ActionUpdateProject, ActionDeleteProject,
		ActionAddMember, ActionRemoveMember,
		ActionCreateTask, ActionUpdateTask, ActionDeleteTask:
		project, found, err := c.resolveProject(res)
		if err != nil {
			return Decision{}, err
		}
		if !found {
			return deny(ReasonNotFound), nil
		}
		if actor.Role == models.RoleManager && actor.ID == project.OwnerID {
			return allow(), nil
		}
		return deny(ReasonNotAuthorized), nil

	case ActionUpdateTaskStatus:
		task, err := c.Store.Task(res.ID)
		if errors.Is(err, ErrNotFound) {
			return deny(ReasonNotFound), nil
		}
		if err != nil {
			return Decision{}, err
		}
		if actor.ID == task.AssignedTo {
			return allow(), nil
		}
		return deny(ReasonNotAuthorized), nil

	case ActionReadProject:
		project, found, err := c.resolveProject(res)
		if err != nil {
			return Decision{}, err
		}
		if !found {
			return deny(ReasonNotFound), nil
		}
		return c.readDecision(actor, project, 0)

	case ActionReadTask, ActionCreateComment, ActionCreateAttachment:
		task, err := c.Store.Task(res.ID)
		if errors.Is(err, ErrNotFound) {
			return deny(ReasonNotFound), nil
		}
		if err != nil {
			return Decision{}, err
		}
		project, err := c.Store.Project(task.ProjectID)
		if errors.Is(err, ErrNotFound) {
			return deny(ReasonNotFound), nil
		}
		if err != nil {
			return Decision{}, err
		}
		return c.readDecision(actor, project, task.AssignedTo)

	case ActionUpdateComment, ActionDeleteComment:
		comment, err := c.Store.Comment(res.ID)
		if errors.Is(err, ErrNotFound) {
			return deny(ReasonNotFound), nil
		}
		if err != nil {
			return Decision{}, err
		}
		if actor.ID == comment.UserID {
			return allow(), nil
		}
		return deny(ReasonNotAuthorized), nil
	}

	return deny(ReasonNotAuthorized), nil
}

// readDecision grants access to the project owner, any explicit member, or
// the task assignee when a task is in scope. Ownership counts as membership
// without a stored row.
func (c *Checker) readDecision(actor Actor, project ProjectFacts, taskAssignee uint) (Decision, error) {
	if actor.ID == project.OwnerID {
		return allow(), nil
	}

	if taskAssignee != 0 && actor.ID == taskAssignee {
		return allow(), nil
	}

	member, err := c.Store.IsMember(project.ID, actor.ID)
	if err != nil {
		return Decision{}, err
	}
	if member {
		return allow(), nil
	}

	return deny(ReasonNotAuthorized), nil
}

// resolveProject finds the project governing a resource, following the task
// parent when the action is task-scoped.
func (c *Checker) resolveProject(res Resource) (ProjectFacts, bool, error) {
	projectID := res.ID

	if res.Kind == KindTask {
		task, err := c.Store.Task(res.ID)
		if errors.Is(err, ErrNotFound) {
			return ProjectFacts{}, false, nil
		}
		if err != nil {
			return ProjectFacts{}, false, err
		}
		projectID = task.ProjectID
	}

	project, err := c.Store.Project(projectID)
	if errors.Is(err, ErrNotFound) {
		return ProjectFacts{}, false, nil
	}
	if err != nil {
		return ProjectFacts{}, false, err
	}

	return project, true, nil
}
