package policy_test

import (
	"testing"

	"github.com/shamskabra/AlraedSecurityTaskG/internal/domain"
	"github.com/shamskabra/AlraedSecurityTaskG/internal/policy"
)

var (
	boss     = domain.User{ID: "b1", Role: domain.RoleBoss}
	creator  = domain.User{ID: "u1", Role: domain.RoleUser}
	assignee = domain.User{ID: "u2", Role: domain.RoleUser}
	outsider = domain.User{ID: "u3", Role: domain.RoleUser}
)

func sampleTask() domain.Task {
	return domain.Task{
		ID:          "t1",
		Title:       "Patrol Sector A",
		CreatorID:   creator.ID,
		AssigneeIDs: []string{assignee.ID},
		Status:      domain.StatusPending,
		Priority:    domain.PriorityHigh,
	}
}

func TestCanView(t *testing.T) {
	task := sampleTask()
	cases := []struct {
		name string
		user domain.User
		want bool
	}{
		{"boss sees everything", boss, true},
		{"creator sees own task", creator, true},
		{"assignee sees assigned task", assignee, true},
		{"outsider sees nothing", outsider, false},
		{"zero user sees nothing", domain.User{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := policy.CanView(tc.user, task); got != tc.want {
				t.Fatalf("CanView=%v want %v", got, tc.want)
			}
			if got := policy.CanMutate(tc.user, task); got != tc.want {
				t.Fatalf("CanMutate=%v want %v", got, tc.want)
			}
		})
	}
}

func TestCanDelete(t *testing.T) {
	task := sampleTask()
	if !policy.CanDelete(boss, task) {
		t.Fatal("boss should delete")
	}
	if !policy.CanDelete(creator, task) {
		t.Fatal("creator should delete")
	}
	if policy.CanDelete(assignee, task) {
		t.Fatal("assignee who is not creator should not delete")
	}
	if policy.CanDelete(outsider, task) {
		t.Fatal("outsider should not delete")
	}
}

func TestCanApproveUsers(t *testing.T) {
	if !policy.CanApproveUsers(boss) {
		t.Fatal("boss should approve")
	}
	if policy.CanApproveUsers(creator) {
		t.Fatal("regular user should not approve")
	}
	if policy.CanApproveUsers(domain.User{ID: "p", Role: domain.RolePending}) {
		t.Fatal("pending user should not approve")
	}
}

func TestUnassignedTaskOnlyVisibleToCreatorAndBoss(t *testing.T) {
	task := sampleTask()
	task.AssigneeIDs = nil
	if !policy.CanView(creator, task) || !policy.CanView(boss, task) {
		t.Fatal("creator and boss should see unassigned task")
	}
	if policy.CanView(assignee, task) {
		t.Fatal("former assignee should not see unassigned task")
	}
}
