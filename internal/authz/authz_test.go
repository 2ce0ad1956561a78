package authz

import (
	"errors"
	"testing"

	"github.com/taskhive-dev/taskhive/internal/models"
)

type stubStore struct {
	projects    map[uint]ProjectFacts
	tasks       map[uint]TaskFacts
	comments    map[uint]CommentFacts
	memberships map[[2]uint]bool

	err error
}

func newStubStore() *stubStore {
	return &stubStore{
		projects:    make(map[uint]ProjectFacts),
		tasks:       make(map[uint]TaskFacts),
		comments:    make(map[uint]CommentFacts),
		memberships: make(map[[2]uint]bool),
	}
}

func (s *stubStore) Project(id uint) (ProjectFacts, error) {
	if s.err != nil {
		return ProjectFacts{}, s.err
	}
	project, ok := s.projects[id]
	if !ok {
		return ProjectFacts{}, ErrNotFound
	}
	return project, nil
}

func (s *stubStore) Task(id uint) (TaskFacts, error) {
	if s.err != nil {
		return TaskFacts{}, s.err
	}
	task, ok := s.tasks[id]
	if !ok {
		return TaskFacts{}, ErrNotFound
	}
	return task, nil
}

func (s *stubStore) Comment(id uint) (CommentFacts, error) {
	if s.err != nil {
		return CommentFacts{}, s.err
	}
	comment, ok := s.comments[id]
	if !ok {
		return CommentFacts{}, ErrNotFound
	}
	return comment, nil
}

func (s *stubStore) IsMember(projectID, userID uint) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.memberships[[2]uint{projectID, userID}], nil
}

// fixtureStore builds the standing scenario: manager 1 owns project 10,
// user 2 is an explicit member, task 100 in project 10 is assigned to user 2,
// comment 1000 on task 100 was written by user 2. User 3 is a stranger.
func fixtureStore() *stubStore {
	s := newStubStore()
	s.projects[10] = ProjectFacts{ID: 10, OwnerID: 1}
	s.tasks[100] = TaskFacts{ID: 100, ProjectID: 10, AssignedTo: 2}
	s.comments[1000] = CommentFacts{ID: 1000, TaskID: 100, UserID: 2}
	s.memberships[[2]uint{10, 2}] = true
	return s
}

var (
	admin    = Actor{ID: 99, Role: models.RoleAdmin}
	owner    = Actor{ID: 1, Role: models.RoleManager}
	member   = Actor{ID: 2, Role: models.RoleMember}
	stranger = Actor{ID: 3, Role: models.RoleMember}
	// A manager who owns nothing in the fixture.
	otherManager = Actor{ID: 4, Role: models.RoleManager}
)

func TestCan_PrecedenceTable(t *testing.T) {
	checker := New(fixtureStore())

	tests := []struct {
		name    string
		actor   Actor
		action  Action
		res     Resource
		allowed bool
		reason  string
	}{
		{"admin can do anything", admin, ActionDeleteProject, ProjectRef(10), true, ""},
		{"admin bypasses missing resource lookups", admin, ActionDeleteTask, TaskRef(12345), true, ""},

		{"manager may create projects", otherManager, ActionCreateProject, ProjectRef(0), true, ""},
		{"member may not create projects", member, ActionCreateProject, ProjectRef(0), false, ReasonNotAuthorized},

		{"owner updates own project", owner, ActionUpdateProject, ProjectRef(10), true, ""},
		{"non-owner manager denied update", otherManager, ActionUpdateProject, ProjectRef(10), false, ReasonNotAuthorized},
		{"member denied delete", member, ActionDeleteProject, ProjectRef(10), false, ReasonNotAuthorized},
		{"owner adds members", owner, ActionAddMember, MembershipRef(10, 3), true, ""},
		{"member cannot add members", member, ActionAddMember, MembershipRef(10, 3), false, ReasonNotAuthorized},
		{"owner creates tasks", owner, ActionCreateTask, ProjectRef(10), true, ""},
		{"owner edits task via project resolution", owner, ActionUpdateTask, TaskRef(100), true, ""},
		{"assignee denied full task edit", member, ActionUpdateTask, TaskRef(100), false, ReasonNotAuthorized},
		{"owner deletes task", owner, ActionDeleteTask, TaskRef(100), true, ""},

		{"assignee changes own task status", member, ActionUpdateTaskStatus, TaskRef(100), true, ""},
		{"non-assignee denied status change", stranger, ActionUpdateTaskStatus, TaskRef(100), false, ReasonNotAuthorized},
		{"owner is not the assignee", owner, ActionUpdateTaskStatus, TaskRef(100), false, ReasonNotAuthorized},

		{"owner reads project", owner, ActionReadProject, ProjectRef(10), true, ""},
		{"member reads project", member, ActionReadProject, ProjectRef(10), true, ""},
		{"stranger denied project read", stranger, ActionReadProject, ProjectRef(10), false, ReasonNotAuthorized},
		{"member reads task", member, ActionReadTask, TaskRef(100), true, ""},
		{"stranger denied task read", stranger, ActionReadTask, TaskRef(100), false, ReasonNotAuthorized},

		{"member comments on visible task", member, ActionCreateComment, TaskRef(100), true, ""},
		{"stranger cannot comment", stranger, ActionCreateComment, TaskRef(100), false, ReasonNotAuthorized},
		{"member attaches to visible task", member, ActionCreateAttachment, TaskRef(100), true, ""},

		{"author deletes own comment", member, ActionDeleteComment, CommentRef(1000), true, ""},
		{"admin deletes any comment", admin, ActionDeleteComment, CommentRef(1000), true, ""},
		{"non-author denied comment delete", owner, ActionDeleteComment, CommentRef(1000), false, ReasonNotAuthorized},
		{"author edits own comment", member, ActionUpdateComment, CommentRef(1000), true, ""},

		{"unknown action denied", member, Action("frobnicate"), ProjectRef(10), false, ReasonNotAuthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := checker.Can(tt.actor, tt.action, tt.res)
			if err != nil {
				t.Fatalf("Can returned error: %v", err)
			}
			if decision.Allowed != tt.allowed {
				t.Fatalf("expected allowed=%v, got %v (reason %q)", tt.allowed, decision.Allowed, decision.Reason)
			}
			if !tt.allowed && decision.Reason != tt.reason {
				t.Fatalf("expected reason %q, got %q", tt.reason, decision.Reason)
			}
		})
	}
}

func TestCan_NonManagerNeverCreatesProjects(t *testing.T) {
	checker := New(fixtureStore())

	for _, role := range []string{models.RoleMember} {
		decision, err := checker.Can(Actor{ID: 7, Role: role}, ActionCreateProject, ProjectRef(0))
		if err != nil {
			t.Fatalf("Can returned error: %v", err)
		}
		if decision.Allowed {
			t.Fatalf("role %s must not create projects", role)
		}
	}
}

func TestCan_OwnerIsImplicitMember(t *testing.T) {
	s := newStubStore()
	s.projects[20] = ProjectFacts{ID: 20, OwnerID: 5}
	s.tasks[200] = TaskFacts{ID: 200, ProjectID: 20, AssignedTo: 6}
	// No membership row for user 5 anywhere.

	checker := New(s)
	projectOwner := Actor{ID: 5, Role: models.RoleManager}

	decision, err := checker.Can(projectOwner, ActionReadProject, ProjectRef(20))
	if err != nil {
		t.Fatalf("Can returned error: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("owner must read own project without a membership row")
	}

	decision, err = checker.Can(projectOwner, ActionReadTask, TaskRef(200))
	if err != nil {
		t.Fatalf("Can returned error: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("owner must read tasks without a membership row")
	}
}

func TestCan_AssigneeReadsTaskWithoutMembership(t *testing.T) {
	s := newStubStore()
	s.projects[20] = ProjectFacts{ID: 20, OwnerID: 5}
	s.tasks[200] = TaskFacts{ID: 200, ProjectID: 20, AssignedTo: 6}

	checker := New(s)
	assignee := Actor{ID: 6, Role: models.RoleMember}

	decision, err := checker.Can(assignee, ActionReadTask, TaskRef(200))
	if err != nil {
		t.Fatalf("Can returned error: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("assignee must read their own task without a membership row")
	}

	// The bare assignment does not extend to the whole project.
	decision, err = checker.Can(assignee, ActionReadProject, ProjectRef(20))
	if err != nil {
		t.Fatalf("Can returned error: %v", err)
	}
	if decision.Allowed {
		t.Fatal("assignment alone must not grant project read")
	}
}

func TestCan_MissingResourcesDenyNotFound(t *testing.T) {
	checker := New(fixtureStore())

	tests := []struct {
		name   string
		action Action
		res    Resource
	}{
		{"missing project", ActionUpdateProject, ProjectRef(77)},
		{"missing task", ActionUpdateTask, TaskRef(77)},
		{"missing task status", ActionUpdateTaskStatus, TaskRef(77)},
		{"missing task read", ActionReadTask, TaskRef(77)},
		{"missing comment", ActionDeleteComment, CommentRef(77)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := checker.Can(owner, tt.action, tt.res)
			if err != nil {
				t.Fatalf("Can returned error: %v", err)
			}
			if decision.Allowed {
				t.Fatal("expected deny for missing resource")
			}
			if decision.Reason != ReasonNotFound {
				t.Fatalf("expected reason %q, got %q", ReasonNotFound, decision.Reason)
			}
		})
	}
}

func TestCan_TaskWithDanglingProject(t *testing.T) {
	s := newStubStore()
	s.tasks[300] = TaskFacts{ID: 300, ProjectID: 999, AssignedTo: 2}

	checker := New(s)

	decision, err := checker.Can(owner, ActionUpdateTask, TaskRef(300))
	if err != nil {
		t.Fatalf("Can returned error: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonNotFound {
		t.Fatalf("expected not-found deny, got %+v", decision)
	}
}

func TestCan_StoreFailureSurfacesAsError(t *testing.T) {
	s := fixtureStore()
	s.err = errors.New("connection refused")

	checker := New(s)

	if _, err := checker.Can(owner, ActionReadProject, ProjectRef(10)); err == nil {
		t.Fatal("expected store failure to propagate")
	}

	// Admin short-circuits before any lookup.
	decision, err := checker.Can(admin, ActionReadProject, ProjectRef(10))
	if err != nil {
		t.Fatalf("admin check must not hit the store: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("admin must be allowed")
	}
}
