package domain_test

import (
	"testing"

	"github.com/shamskabra/AlraedSecurityTaskG/internal/domain"
)

func TestParseRoleAliases(t *testing.T) {
	cases := map[string]domain.Role{
		"BOSS":     domain.RoleBoss,
		"boss":     domain.RoleBoss,
		"admin":    domain.RoleBoss,
		" Admin ":  domain.RoleBoss,
		"USER":     domain.RoleUser,
		"pending":  domain.RolePending,
		"PENDING":  domain.RolePending,
	}
	for in, want := range cases {
		got, err := domain.ParseRole(in)
		if err != nil || got != want {
			t.Fatalf("ParseRole(%q)=%v,%v want %v", in, got, err, want)
		}
	}
	if _, err := domain.ParseRole("supervisor"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestParseStatusAndPriority(t *testing.T) {
	if s, err := domain.ParseStatus("in_progress"); err != nil || s != domain.StatusInProgress {
		t.Fatalf("ParseStatus: %v %v", s, err)
	}
	if _, err := domain.ParseStatus("DONE"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if p, err := domain.ParsePriority(" high "); err != nil || p != domain.PriorityHigh {
		t.Fatalf("ParsePriority: %v %v", p, err)
	}
	if _, err := domain.ParsePriority("URGENT"); err == nil {
		t.Fatal("expected error for unknown priority")
	}
}

func TestTaskAssigned(t *testing.T) {
	task := domain.Task{AssigneeIDs: []string{"u1", "u2"}}
	if !task.Assigned("u1") || task.Assigned("u3") || task.Assigned("") {
		t.Fatalf("unexpected assignment results")
	}
}
