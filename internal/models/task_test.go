package models

import "testing"

func TestNormalizeTaskStatus(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"To-Do", TaskStatusTodo, true},
		{"In Progress", TaskStatusInProgress, true},
		{"Done", TaskStatusDone, true},

		// Legacy aliases from older clients.
		{"pending", TaskStatusTodo, true},
		{"todo", TaskStatusTodo, true},
		{"in-progress", TaskStatusInProgress, true},
		{"in progress", TaskStatusInProgress, true},
		{"completed", TaskStatusDone, true},

		{"", "", false},
		{"DONE", "", false},
		{"cancelled", "", false},
		{"archived", "", false},
	}

	for _, tt := range tests {
		got, valid := NormalizeTaskStatus(tt.in)
		if valid != tt.valid {
			t.Errorf("NormalizeTaskStatus(%q) valid=%v, want %v", tt.in, valid, tt.valid)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeTaskStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeRole(t *testing.T) {
	if NormalizeRole("") != RoleMember {
		t.Error("empty role must default to Member")
	}
	if NormalizeRole("User") != RoleMember {
		t.Error("legacy User role must map to Member")
	}
	if NormalizeRole(RoleManager) != RoleManager {
		t.Error("Manager must pass through")
	}
	if ValidRole("Overlord") {
		t.Error("unknown role must be invalid")
	}
}
